package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bare json",
			input:    `{"items": []}`,
			expected: `{"items": []}`,
		},
		{
			name:     "fenced json",
			input:    "```json\n{\"items\": []}\n```",
			expected: `{"items": []}`,
		},
		{
			name:     "fence without language",
			input:    "```\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "unterminated fence",
			input:    "```json\n{\"a\": 1}",
			expected: `{"a": 1}`,
		},
		{
			name:     "surrounding whitespace",
			input:    "  \n{\"a\": 1}\n ",
			expected: `{"a": 1}`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, ExtractJSON(tc.input))
		})
	}
}
