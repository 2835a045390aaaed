package transcript

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/burnout909/ai-cpx-app-sub001/logger"
)

// Transcriber is the speech-to-text collaborator, called once per audio part.
type Transcriber interface {
	Transcribe(ctx context.Context, audioKey string) (Transcription, error)
}

// BlobStore is the narrow download surface the acquirer needs from the object
// store.
type BlobStore interface {
	Download(key string) ([]byte, error)
}

type Acquirer struct {
	stt       Transcriber
	blobs     BlobStore
	cpxLogger zerolog.Logger
}

func NewAcquirer(stt Transcriber, blobs BlobStore) *Acquirer {
	return &Acquirer{
		stt:       stt,
		blobs:     blobs,
		cpxLogger: logger.NewLogger("TranscriptAcquirer"),
	}
}

// AcquireUpload transcribes every audio part concurrently and merges the
// results in audioKeys order. Any part failure is fatal: the pipeline has no
// defined behavior for partial transcripts.
func (a *Acquirer) AcquireUpload(ctx context.Context, audioKeys []string) (Acquisition, error) {
	if len(audioKeys) == 0 {
		return Acquisition{}, errors.New("no audio keys supplied for upload-mode acquisition")
	}

	texts := make([]string, len(audioKeys))
	parts := make([][]Segment, len(audioKeys))

	g, gctx := errgroup.WithContext(ctx)
	for i, key := range audioKeys {
		i, key := i, key
		g.Go(func() error {
			result, err := a.stt.Transcribe(gctx, key)
			if err != nil {
				return fmt.Errorf("transcribe part %q: %w", key, err)
			}
			texts[i] = result.Text
			parts[i] = result.Segments
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Acquisition{}, err
	}

	acquisition := Acquisition{
		Text:      JoinTexts(texts),
		Segments:  MergeParts(parts),
		ScriptKey: DeriveScriptKey(audioKeys[0]),
	}
	a.cpxLogger.Info().
		Int("parts", len(audioKeys)).
		Int("segments", len(acquisition.Segments)).
		Msg("Merged uploaded audio parts into one transcript")
	return acquisition, nil
}

// AcquireCached downloads a previously derived transcript, skipping
// transcription and the derived-upload side effect entirely.
func (a *Acquirer) AcquireCached(ctx context.Context, scriptKey string) (Acquisition, error) {
	if scriptKey == "" {
		return Acquisition{}, errors.New("no script key supplied for cached acquisition")
	}
	data, err := a.blobs.Download(scriptKey)
	if err != nil {
		return Acquisition{}, fmt.Errorf("download cached transcript %q: %w", scriptKey, err)
	}
	return Acquisition{Text: string(data), FromCache: true}, nil
}

// AcquireLive downloads an already-materialized live transcript and, when a
// timestamps key is supplied, its turn timestamps artifact. The timestamps
// artifact is optional: any download or parse failure degrades to "no turn
// data" instead of failing the run.
func (a *Acquirer) AcquireLive(ctx context.Context, transcriptKey, timestampsKey string) (Acquisition, error) {
	if transcriptKey == "" {
		return Acquisition{}, errors.New("no transcript key supplied for live acquisition")
	}
	data, err := a.blobs.Download(transcriptKey)
	if err != nil {
		return Acquisition{}, fmt.Errorf("download live transcript %q: %w", transcriptKey, err)
	}
	acquisition := Acquisition{Text: string(data), FromCache: true}
	if timestampsKey == "" {
		return acquisition, nil
	}

	raw, err := a.blobs.Download(timestampsKey)
	if err != nil {
		a.cpxLogger.Warn().Err(err).
			Str("key", timestampsKey).
			Msg("Could not download turn timestamps, continuing without timing data")
		return acquisition, nil
	}
	var turns TurnData
	if err := json.Unmarshal(raw, &turns); err != nil {
		a.cpxLogger.Warn().Err(err).
			Str("key", timestampsKey).
			Msg("Could not parse turn timestamps, continuing without timing data")
		return acquisition, nil
	}
	acquisition.Turns = &turns
	return acquisition, nil
}
