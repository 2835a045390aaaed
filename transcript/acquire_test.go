package transcript

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type transcriberMock struct {
	mu      sync.Mutex
	calls   int
	results map[string]Transcription
	failKey string
	delays  map[string]time.Duration
}

func (mock *transcriberMock) Transcribe(ctx context.Context, audioKey string) (Transcription, error) {
	mock.mu.Lock()
	mock.calls++
	delay := mock.delays[audioKey]
	mock.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	if audioKey == mock.failKey {
		return Transcription{}, errors.New("mock: transcription failed")
	}
	result, ok := mock.results[audioKey]
	if !ok {
		return Transcription{}, fmt.Errorf("mock: no result for %q", audioKey)
	}
	return result, nil
}

func (mock *transcriberMock) callCount() int {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	return mock.calls
}

type blobStoreMock struct {
	blobs    map[string][]byte
	failKeys map[string]bool
}

func (mock *blobStoreMock) Download(key string) ([]byte, error) {
	if mock.failKeys[key] {
		return nil, errors.New("mock: download failed")
	}
	data, ok := mock.blobs[key]
	if !ok {
		return nil, fmt.Errorf("mock: no blob %q", key)
	}
	return data, nil
}

func TestAcquireUploadMergesPartsInRequestOrder(t *testing.T) {
	stt := &transcriberMock{
		results: map[string]Transcription{
			"upload/s1/audio/rec-part1.mp3": {
				Text: "part one",
				Segments: []Segment{
					{ID: 1, Start: 0, End: 10, Text: "part"},
					{ID: 2, Start: 10, End: 25, Text: "one"},
				},
			},
			"upload/s1/audio/rec-part2.mp3": {
				Text:     "part two",
				Segments: []Segment{{ID: 1, Start: 0, End: 15, Text: "two"}},
			},
		},
		// The first part resolves last, order must not change.
		delays: map[string]time.Duration{
			"upload/s1/audio/rec-part1.mp3": 30 * time.Millisecond,
		},
	}
	acquirer := NewAcquirer(stt, &blobStoreMock{})

	acquisition, err := acquirer.AcquireUpload(context.Background(), []string{
		"upload/s1/audio/rec-part1.mp3",
		"upload/s1/audio/rec-part2.mp3",
	})
	require.NoError(t, err)

	require.Equal(t, "part one\npart two", acquisition.Text)
	require.Equal(t, "upload/s1/script/rec.txt", acquisition.ScriptKey)
	require.False(t, acquisition.FromCache)

	require.Len(t, acquisition.Segments, 3)
	require.Equal(t, 25.0, acquisition.Segments[2].Start)
	require.Equal(t, 40.0, acquisition.Segments[2].End)
	require.Equal(t, "two", acquisition.Segments[2].Text)
}

func TestAcquireUploadPartFailureIsFatal(t *testing.T) {
	stt := &transcriberMock{
		results: map[string]Transcription{
			"audio/rec-part1.mp3": {Text: "ok"},
		},
		failKey: "audio/rec-part2.mp3",
	}
	acquirer := NewAcquirer(stt, &blobStoreMock{})

	_, err := acquirer.AcquireUpload(context.Background(), []string{
		"audio/rec-part1.mp3",
		"audio/rec-part2.mp3",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "audio/rec-part2.mp3")
}

func TestAcquireUploadNoKeys(t *testing.T) {
	acquirer := NewAcquirer(&transcriberMock{}, &blobStoreMock{})
	_, err := acquirer.AcquireUpload(context.Background(), nil)
	require.Error(t, err)
}

func TestAcquireCachedSkipsTranscription(t *testing.T) {
	stt := &transcriberMock{}
	blobs := &blobStoreMock{blobs: map[string][]byte{
		"upload/s1/script/rec.txt": []byte("cached transcript"),
	}}
	acquirer := NewAcquirer(stt, blobs)

	acquisition, err := acquirer.AcquireCached(context.Background(), "upload/s1/script/rec.txt")
	require.NoError(t, err)
	require.Equal(t, "cached transcript", acquisition.Text)
	require.True(t, acquisition.FromCache)
	require.Zero(t, stt.callCount())
}

func TestAcquireLiveWithTurnTimestamps(t *testing.T) {
	blobs := &blobStoreMock{blobs: map[string][]byte{
		"live/s2/script/session.txt":      []byte("live transcript"),
		"live/s2/timestamps/session.json": []byte(`{"turnTimestamps":[{"text":"hello","elapsedSec":3.5}],"sessionDurationSec":600}`),
	}}
	acquirer := NewAcquirer(&transcriberMock{}, blobs)

	acquisition, err := acquirer.AcquireLive(
		context.Background(),
		"live/s2/script/session.txt",
		"live/s2/timestamps/session.json",
	)
	require.NoError(t, err)
	require.Equal(t, "live transcript", acquisition.Text)
	require.NotNil(t, acquisition.Turns)
	require.Equal(t, 600.0, acquisition.Turns.SessionDurationSec)
	require.Len(t, acquisition.Turns.Turns, 1)
	require.Equal(t, 3.5, acquisition.Turns.Turns[0].ElapsedSec)
}

func TestAcquireLiveTimestampsFailureDegrades(t *testing.T) {
	blobs := &blobStoreMock{
		blobs: map[string][]byte{
			"live/s2/script/session.txt": []byte("live transcript"),
		},
		failKeys: map[string]bool{"live/s2/timestamps/session.json": true},
	}
	acquirer := NewAcquirer(&transcriberMock{}, blobs)

	acquisition, err := acquirer.AcquireLive(
		context.Background(),
		"live/s2/script/session.txt",
		"live/s2/timestamps/session.json",
	)
	require.NoError(t, err)
	require.Equal(t, "live transcript", acquisition.Text)
	require.Nil(t, acquisition.Turns)
}

func TestAcquireLiveMalformedTimestampsDegrades(t *testing.T) {
	blobs := &blobStoreMock{blobs: map[string][]byte{
		"live/s2/script/session.txt":      []byte("live transcript"),
		"live/s2/timestamps/session.json": []byte("not json"),
	}}
	acquirer := NewAcquirer(&transcriberMock{}, blobs)

	acquisition, err := acquirer.AcquireLive(
		context.Background(),
		"live/s2/script/session.txt",
		"live/s2/timestamps/session.json",
	)
	require.NoError(t, err)
	require.Nil(t, acquisition.Turns)
}

func TestAcquireLiveTranscriptFailureIsFatal(t *testing.T) {
	blobs := &blobStoreMock{failKeys: map[string]bool{"live/s2/script/session.txt": true}}
	acquirer := NewAcquirer(&transcriberMock{}, blobs)

	_, err := acquirer.AcquireLive(context.Background(), "live/s2/script/session.txt", "")
	require.Error(t, err)
}
