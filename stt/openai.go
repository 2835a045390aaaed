package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/kelseyhightower/envconfig"
	"github.com/openai/openai-go"
	"github.com/rs/zerolog"

	"github.com/burnout909/ai-cpx-app-sub001/logger"
	"github.com/burnout909/ai-cpx-app-sub001/transcript"
)

type Config struct {
	Model string `envconfig:"CPX_STT_MODEL" default:"whisper-1"`
}

// BlobStore downloads audio parts by storage key before they are sent to the
// transcription API.
type BlobStore interface {
	Download(key string) ([]byte, error)
}

// OpenAITranscriber implements transcript.Transcriber on the OpenAI audio
// transcription API, requesting segment-level timestamps.
type OpenAITranscriber struct {
	client    openai.Client
	blobs     BlobStore
	model     string
	cpxLogger zerolog.Logger
}

func NewOpenAITranscriber(client openai.Client, blobs BlobStore) (*OpenAITranscriber, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, err
	}
	return &OpenAITranscriber{
		client:    client,
		blobs:     blobs,
		model:     config.Model,
		cpxLogger: logger.NewLogger("OpenAITranscriber"),
	}, nil
}

// verboseTranscription carries the segment fields of the verbose_json
// response shape, which the SDK surfaces only through the raw payload.
type verboseTranscription struct {
	Text     string `json:"text"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

func (t *OpenAITranscriber) Transcribe(ctx context.Context, audioKey string) (transcript.Transcription, error) {
	data, err := t.blobs.Download(audioKey)
	if err != nil {
		return transcript.Transcription{}, fmt.Errorf("download audio %q: %w", audioKey, err)
	}
	t.cpxLogger.Debug().Str("key", audioKey).Int("bytes", len(data)).Msg("Transcribing audio part")

	resp, err := t.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model:                  openai.AudioModel(t.model),
		File:                   openai.File(bytes.NewReader(data), path.Base(audioKey), "application/octet-stream"),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"segment"},
	})
	if err != nil {
		return transcript.Transcription{}, fmt.Errorf("transcription call for %q: %w", audioKey, err)
	}

	var verbose verboseTranscription
	if err := json.Unmarshal([]byte(resp.RawJSON()), &verbose); err != nil {
		return transcript.Transcription{}, fmt.Errorf("decode transcription response for %q: %w", audioKey, err)
	}

	result := transcript.Transcription{Text: verbose.Text}
	for i, segment := range verbose.Segments {
		result.Segments = append(result.Segments, transcript.Segment{
			ID:    i + 1,
			Start: segment.Start,
			End:   segment.End,
			Text:  segment.Text,
		})
	}
	return result, nil
}
