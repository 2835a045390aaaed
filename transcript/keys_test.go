package transcript

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveScriptKey(t *testing.T) {
	cases := []struct {
		name     string
		audioKey string
		expected string
	}{
		{
			name:     "upload part key",
			audioKey: "upload/sess-42/audio/recording-part1.mp3",
			expected: "upload/sess-42/script/recording.txt",
		},
		{
			name:     "later part maps to same script",
			audioKey: "upload/sess-42/audio/recording-part2.mp3",
			expected: "upload/sess-42/script/recording.txt",
		},
		{
			name:     "no part suffix",
			audioKey: "upload/sess-7/audio/recording.wav",
			expected: "upload/sess-7/script/recording.txt",
		},
		{
			name:     "leading audio category",
			audioKey: "audio/recording-part3.m4a",
			expected: "script/recording.txt",
		},
		{
			name:     "uppercase extension",
			audioKey: "upload/sess-9/audio/recording.MP3",
			expected: "upload/sess-9/script/recording.txt",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, DeriveScriptKey(tc.audioKey))
		})
	}
}
