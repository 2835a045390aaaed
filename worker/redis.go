package worker

import (
	"fmt"

	"github.com/burnout909/ai-cpx-app-sub001/tasks"
)

type redisTransactions interface {
	getScoreTask(redisKey string) (*tasks.ScoreTask, error)
	onTaskStarted(task *Task) error
	onTaskCancelled(task *Task, errorMessages ...string) error
	onTaskExceededRetries(task *Task, maxRetries int) error
	onTaskFailedWithError(task *Task, err error) error
	onTaskComplete(task *Task) error
	close()
}

type redisClientWrapper struct {
	tasksClient *tasks.Client
}

func (wrapper *redisClientWrapper) close() {
	wrapper.tasksClient.Close()
}

func (wrapper *redisClientWrapper) onTaskStarted(task *Task) error {
	err := wrapper.tasksClient.Scores.Update(task.redisKey, func(task *tasks.ScoreTask) {
		task.TaskStatuses.CPX.Status = tasks.TaskStatusStarted
		task.TaskStatuses.CPX.Attempts += 1
		task.TaskStatuses.CPX.StartedAt = getFormattedNow()
		task.TaskStatuses.CPX.CompletedAt = nil
	})
	return err
}

func (wrapper *redisClientWrapper) onTaskCancelled(task *Task, errorMessages ...string) error {
	err := wrapper.tasksClient.Scores.Update(task.redisKey, func(scoreTask *tasks.ScoreTask) {
		scoreTask.TaskStatuses.CPX.Status = tasks.TaskStatusCanceled
		scoreTask.TaskStatuses.CPX.StartedAt = getFormattedNow()
		scoreTask.TaskStatuses.CPX.CompletedAt = getFormattedNow()
		scoreTask.TaskStatuses.CPX.Attempts += 1
		scoreTask.TaskStatuses.CPX.ErrorMessages = append(
			scoreTask.TaskStatuses.CPX.ErrorMessages,
			errorMessages...,
		)
	})
	return err
}

func (wrapper *redisClientWrapper) onTaskExceededRetries(task *Task, maxRetries int) error {
	err := wrapper.tasksClient.Scores.Update(task.redisKey, func(scoreTask *tasks.ScoreTask) {
		scoreTask.TaskStatuses.CPX.Status = tasks.TaskStatusCompletedFailure
		scoreTask.TaskStatuses.CPX.StartedAt = getFormattedNow()
		scoreTask.TaskStatuses.CPX.CompletedAt = getFormattedNow()
		scoreTask.TaskStatuses.CPX.Attempts += 1
		scoreTask.TaskStatuses.CPX.ErrorMessages = append(
			scoreTask.TaskStatuses.CPX.ErrorMessages,
			fmt.Sprintf(
				"Task has exceeded retries. (Attempts: %d, max retries: %d )",
				scoreTask.TaskStatuses.CPX.Attempts,
				maxRetries,
			),
		)
	})
	return err
}

func (wrapper *redisClientWrapper) onTaskFailedWithError(task *Task, err error) error {
	return wrapper.tasksClient.Scores.Update(task.redisKey, func(scoreTask *tasks.ScoreTask) {
		scoreTask.TaskStatuses.CPX.Status = tasks.TaskStatusFailed
		scoreTask.TaskStatuses.CPX.CompletedAt = getFormattedNow()
		scoreTask.TaskStatuses.CPX.ErrorMessages = append(scoreTask.TaskStatuses.CPX.ErrorMessages, err.Error())
	})
}

func (wrapper *redisClientWrapper) onTaskComplete(task *Task) error {
	return wrapper.tasksClient.Scores.Update(task.redisKey, func(scoreTask *tasks.ScoreTask) {
		if !scoreTask.TaskStatuses.CPX.Status.Complete() {
			scoreTask.TaskStatuses.CPX.Status = tasks.TaskStatusCompletedSuccess
		}
		scoreTask.TaskStatuses.CPX.CompletedAt = getFormattedNow()
		scoreTask.TaskStatuses.CPX.ResultsFileKey = getResultsFileKey(task)
	})
}

func (wrapper *redisClientWrapper) getScoreTask(redisKey string) (*tasks.ScoreTask, error) {
	return wrapper.tasksClient.Scores.Get(redisKey)
}
