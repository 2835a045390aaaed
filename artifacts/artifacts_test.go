package artifacts

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/burnout909/ai-cpx-app-sub001/tasks"
)

type blobStoreMock struct {
	fail     bool
	uploaded map[string]string
}

func (mock *blobStoreMock) Upload(data string, key string) error {
	if mock.fail {
		return errors.New("mock: upload failed")
	}
	if mock.uploaded == nil {
		mock.uploaded = map[string]string{}
	}
	mock.uploaded[key] = data
	return nil
}

type registrarMock struct {
	fail     bool
	mintedID string
	calls    int
	lastID   string
	record   tasks.ArtifactRecord
}

func (mock *registrarMock) RegisterArtifact(sessionID string, record tasks.ArtifactRecord) (string, string, error) {
	mock.calls++
	mock.lastID = sessionID
	mock.record = record
	if mock.fail {
		return sessionID, "", errors.New("mock: registration failed")
	}
	if sessionID == "" {
		sessionID = mock.mintedID
	}
	return sessionID, "record-1", nil
}

func awaitOutcome(t *testing.T, ch <-chan Outcome) Outcome {
	t.Helper()
	select {
	case outcome := <-ch:
		return outcome
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for upload outcome")
		return Outcome{}
	}
}

func TestScheduleTranscriptUpload(t *testing.T) {
	blobs := &blobStoreMock{}
	registrar := &registrarMock{}
	scheduler := NewScheduler(blobs, registrar)

	session := NewSessionRef("sess-1")
	outcome := awaitOutcome(t, scheduler.ScheduleTranscriptUpload(UploadRequest{
		Session: session,
		Key:     "upload/sess-1/script/rec.txt",
		Text:    "the transcript",
	}))

	require.NoError(t, outcome.Err)
	require.Equal(t, "sess-1", outcome.SessionID)
	require.Equal(t, "record-1", outcome.RecordID)
	require.Equal(t, "the transcript", blobs.uploaded["upload/sess-1/script/rec.txt"])

	require.Equal(t, tasks.ArtifactTypeScript, registrar.record.Type)
	require.Equal(t, len("the transcript"), registrar.record.SizeBytes)
	require.Equal(t, "the transcript", registrar.record.Excerpt)
	require.NotZero(t, registrar.record.ContentHash)
}

func TestScheduleUploadFailureSkipsRegistration(t *testing.T) {
	blobs := &blobStoreMock{fail: true}
	registrar := &registrarMock{}
	scheduler := NewScheduler(blobs, registrar)

	outcome := awaitOutcome(t, scheduler.ScheduleTranscriptUpload(UploadRequest{
		Session: NewSessionRef("sess-1"),
		Key:     "upload/sess-1/script/rec.txt",
		Text:    "text",
	}))

	require.Error(t, outcome.Err)
	require.Zero(t, registrar.calls)
}

func TestScheduleAdoptsMintedSessionID(t *testing.T) {
	registrar := &registrarMock{mintedID: "minted-42"}
	scheduler := NewScheduler(&blobStoreMock{}, registrar)

	session := NewSessionRef("")
	outcome := awaitOutcome(t, scheduler.ScheduleTranscriptUpload(UploadRequest{
		Session: session,
		Key:     "upload/anon/script/rec.txt",
		Text:    "text",
	}))

	require.NoError(t, outcome.Err)
	require.Equal(t, "minted-42", outcome.SessionID)
	require.Equal(t, "minted-42", session.ID())
}

func TestSessionRefFirstAdoptionWins(t *testing.T) {
	session := NewSessionRef("")
	session.adopt("first")
	session.adopt("second")
	require.Equal(t, "first", session.ID())
}

func TestSessionRefKeepsExistingID(t *testing.T) {
	session := NewSessionRef("given")
	session.adopt("given")
	require.Equal(t, "given", session.ID())

	// A differing learned id still wins once, matching the registrar being
	// the source of truth for minted sessions.
	session.adopt("other")
	require.Equal(t, "other", session.ID())
}
