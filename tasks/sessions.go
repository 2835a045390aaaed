package tasks

import (
	"time"

	"github.com/google/uuid"

	"github.com/burnout909/ai-cpx-app-sub001/redis"
)

const SessionsDB redis.DB = 0

const RFC3339Micro = "2006-01-02T15:04:05.000000-07:00"

// Artifact categories registered against a session.
const (
	ArtifactTypeScript     = "script"
	ArtifactTypeTimestamps = "timestamps"
	ArtifactTypeGrades     = "grades"
)

type ArtifactRecord struct {
	Type         string `json:"type"`
	Key          string `json:"key"`
	SizeBytes    int    `json:"size_bytes"`
	Excerpt      string `json:"excerpt"`
	TextLength   int    `json:"text_length"`
	ContentHash  uint64 `json:"content_hash,string"`
	RegisteredAt string `json:"registered_at"`
}

type SessionTask struct {
	SessionID string                    `json:"session_id"`
	Artifacts map[string]ArtifactRecord `json:"artifacts"`
}

type SessionTasks struct {
	client redis.Client
}

func (tasks SessionTasks) Get(sessionID string) (*SessionTask, error) {
	var task SessionTask
	err := tasks.client.GetDocument(sessionKey(sessionID), &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// RegisterArtifact records artifact metadata against the session, minting a
// new session id when none is supplied. Registration is a merge into the
// stored session document keyed by the artifact's content hash, so re-running
// a pipeline over identical derived text lands on the same record instead of
// accumulating duplicates.
func (tasks SessionTasks) RegisterArtifact(sessionID string, record ArtifactRecord) (string, string, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	recordID := artifactRecordID(record)
	record.RegisteredAt = time.Now().UTC().Format(RFC3339Micro)
	patch := SessionTask{
		SessionID: sessionID,
		Artifacts: map[string]ArtifactRecord{recordID: record},
	}
	if err := tasks.client.MergeDocument(sessionKey(sessionID), patch); err != nil {
		return sessionID, "", err
	}
	return sessionID, recordID, nil
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}

func artifactRecordID(record ArtifactRecord) string {
	if record.ContentHash == 0 {
		return uuid.NewString()
	}
	return record.Type + ":" + uuid.NewSHA1(uuid.NameSpaceOID, []byte(record.Key)).String()
}
