package worker

import (
	"fmt"
	"path"
	"time"

	"github.com/burnout909/ai-cpx-app-sub001/tasks"
)

func getResultsFileKey(task *Task) string {
	return path.Join(
		"processed",
		"sessions",
		task.sessionID,
		"scores",
		fmt.Sprintf("%s.cpx_grades.json", task.redisKey),
	)
}

func getFormattedNow() *string {
	now := time.Now().UTC().Format(tasks.RFC3339Micro)
	return &now
}
