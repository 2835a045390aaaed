package tasks

import (
	"github.com/burnout909/ai-cpx-app-sub001/redis"
)

const ScoresDB redis.DB = 1

type TaskStatus string

const (
	TaskStatusProcessing       TaskStatus = "processing"
	TaskStatusSubmitted        TaskStatus = "submitted"
	TaskStatusStarted          TaskStatus = "started"
	TaskStatusFailed           TaskStatus = "failed"
	TaskStatusCompletedSuccess TaskStatus = "completed - success"
	TaskStatusCompletedFailure TaskStatus = "completed - failure"
	TaskStatusCanceled         TaskStatus = "canceled"
)

func (s TaskStatus) Complete() bool {
	return s == TaskStatusCompletedSuccess || s == TaskStatusCompletedFailure || s == TaskStatusCanceled
}

func (s TaskStatus) Submitted() bool {
	return s == TaskStatusSubmitted || s == TaskStatusStarted || s == TaskStatusProcessing
}

// ScoreTask is the redis record describing one requested scoring run. The
// acquisition fields mirror the two pipeline entry modes: audio part keys for
// upload sessions, a transcript key (plus optional turn timestamps key) for
// live sessions. A non-empty TranscriptKey on an upload task re-uses the
// previously derived transcript instead of re-transcribing.
type ScoreTask struct {
	SessionID     string            `json:"session_id"`
	CaseName      string            `json:"case_name"`
	ChecklistID   string            `json:"checklist_id"`
	ScenarioID    string            `json:"scenario_id"`
	Mode          string            `json:"mode"`
	AudioKeys     []string          `json:"audio_keys"`
	TranscriptKey string            `json:"transcript_key"`
	TimestampsKey string            `json:"timestamps_key"`
	UserCanceled  bool              `json:"user_canceled"`
	TaskStatuses  ScoreTaskStatuses `json:"task_statuses"`
}

type ScoreTaskStatuses struct {
	CPX ScoreTaskInfo `json:"cpx"`
}

type ScoreTaskInfo struct {
	ResultsFileKey string     `json:"results_file_key"`
	StartedAt      *string    `json:"started_at"`
	CompletedAt    *string    `json:"completed_at"`
	Attempts       int        `json:"attempts"`
	Status         TaskStatus `json:"status"`
	ErrorMessages  []string   `json:"error_messages"`
}

type ScoreTasks struct {
	client redis.Client
}

func (tasks ScoreTasks) Get(redisKey string) (*ScoreTask, error) {
	var task ScoreTask
	err := tasks.client.GetDocument(redisKey, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (tasks ScoreTasks) Update(redisKey string, updateFunc func(task *ScoreTask)) error {
	var task ScoreTask
	return tasks.client.UpdateDocument(redisKey, &task, func() {
		updateFunc(&task)
	})
}
