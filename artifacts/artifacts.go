package artifacts

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/burnout909/ai-cpx-app-sub001/logger"
	"github.com/burnout909/ai-cpx-app-sub001/tasks"
	"github.com/burnout909/ai-cpx-app-sub001/utils"
)

// BlobStore is the narrow upload surface the scheduler needs from the object
// store.
type BlobStore interface {
	Upload(data string, key string) error
}

// Registrar records artifact metadata against a session, minting a session id
// when none is supplied.
type Registrar interface {
	RegisterArtifact(sessionID string, record tasks.ArtifactRecord) (string, string, error)
}

// SessionRef threads the active session id across concurrent branches. The
// registrar may mint a new id mid-run; the first learned id wins and all
// later readers see it. Single-assignment-once-learned, not a counter.
type SessionRef struct {
	mu      sync.RWMutex
	id      string
	adopted bool
}

func NewSessionRef(id string) *SessionRef {
	return &SessionRef{id: id}
}

func (r *SessionRef) ID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.id
}

func (r *SessionRef) adopt(id string) {
	if id == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.adopted || id == r.id {
		return
	}
	r.id = id
	r.adopted = true
}

// UploadRequest describes one derived-transcript persistence job.
type UploadRequest struct {
	Session *SessionRef
	Key     string
	Text    string
}

// Outcome is what the detached upload produced. Observed only for logging
// and tests; the scoring path never blocks on it.
type Outcome struct {
	SessionID string
	RecordID  string
	Key       string
	Err       error
}

const excerptRunes = 200

// Scheduler persists derived transcripts in the background. Failures are
// logged, never retried and never surfaced to the scoring result.
type Scheduler struct {
	blobs     BlobStore
	registrar Registrar
	cpxLogger zerolog.Logger
}

func NewScheduler(blobs BlobStore, registrar Registrar) *Scheduler {
	return &Scheduler{
		blobs:     blobs,
		registrar: registrar,
		cpxLogger: logger.NewLogger("ArtifactScheduler"),
	}
}

// ScheduleTranscriptUpload starts a detached upload-and-register task and
// returns a channel carrying its single outcome. Callers that only want the
// side effect may drop the channel; tests can assert on it.
func (s *Scheduler) ScheduleTranscriptUpload(req UploadRequest) <-chan Outcome {
	outcomeCh := make(chan Outcome, 1)
	go func() {
		defer close(outcomeCh)
		outcome := s.run(req)
		if outcome.Err != nil {
			s.cpxLogger.Err(outcome.Err).
				Str("key", req.Key).
				Msg("Background transcript upload failed")
		} else {
			s.cpxLogger.Info().
				Str("key", req.Key).
				Str("session_id", outcome.SessionID).
				Msg("Persisted derived transcript")
		}
		outcomeCh <- outcome
	}()
	return outcomeCh
}

func (s *Scheduler) run(req UploadRequest) Outcome {
	outcome := Outcome{Key: req.Key, SessionID: req.Session.ID()}
	if err := s.blobs.Upload(req.Text, req.Key); err != nil {
		outcome.Err = err
		return outcome
	}
	record := tasks.ArtifactRecord{
		Type:        tasks.ArtifactTypeScript,
		Key:         req.Key,
		SizeBytes:   len(req.Text),
		Excerpt:     excerpt(req.Text),
		TextLength:  len([]rune(req.Text)),
		ContentHash: utils.HashString(req.Text),
	}
	sessionID, recordID, err := s.registrar.RegisterArtifact(req.Session.ID(), record)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	req.Session.adopt(sessionID)
	outcome.SessionID = req.Session.ID()
	outcome.RecordID = recordID
	return outcome
}

func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= excerptRunes {
		return text
	}
	return string(runes[:excerptRunes])
}
