package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"github.com/burnout909/ai-cpx-app-sub001/checklist"
	"github.com/burnout909/ai-cpx-app-sub001/pipeline"
	"github.com/burnout909/ai-cpx-app-sub001/tasks"
	"github.com/burnout909/ai-cpx-app-sub001/utils"
)

type Message struct {
	WorkType string `json:"work_type"`
	RedisKey string `json:"redis_key"`
	Sender   string `json:"sender"`
	Version  string `json:"version"`
}

type Task struct {
	delivery  *amqp.Delivery
	scoreTask *tasks.ScoreTask
	message   *Message
	redisKey  string
	sessionID string
	cpxLogger *zerolog.Logger
}

type scorer interface {
	Run(ctx context.Context, request pipeline.Request) (*pipeline.Result, error)
}

func (worker *Worker) processMessage(delivery *amqp.Delivery) {
	task, err := worker.createTask(delivery)
	rejectLogger := worker.cpxLogger.With().Str("message_id", delivery.MessageId).Logger()
	if err != nil {
		worker.cpxLogger.Err(err).
			Str("message_id", delivery.MessageId).
			Str("tid", string(delivery.Body)).
			Msg("Failed to create task for delivery")
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.processTask(task); err != nil {
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.rmq.pingSequencer(task, *task.message); err != nil {
		task.cpxLogger.Err(err).Msg("Got error while sending message to sequencer queue")
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.rmq.acknowledgeDelivery(delivery); err != nil {
		task.cpxLogger.Err(err).Msg("Failed to acknowledge delivery")
	}
	task.cpxLogger.Info().Msg("Finished processing RMQ message")
}

func (worker *Worker) createTask(delivery *amqp.Delivery) (*Task, error) {
	var message Message
	err := json.Unmarshal(delivery.Body, &message)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal message, got error %w", err)
	}
	scoreTask, err := worker.redis.getScoreTask(message.RedisKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query score task for message, got error %w", err)
	}
	sessionID := scoreTask.SessionID
	if sessionID == "" {
		sessionID = message.RedisKey
	}
	taskLogger := worker.cpxLogger.With().Str("tid", message.RedisKey).Logger()
	task := Task{
		delivery:  delivery,
		scoreTask: scoreTask,
		redisKey:  message.RedisKey,
		sessionID: sessionID,
		message:   &message,
		cpxLogger: &taskLogger,
	}
	return &task, nil
}

func (worker *Worker) processTask(task *Task) error {
	shouldPerform, err := worker.shouldPerformTask(task)
	if err != nil {
		task.cpxLogger.Err(err).
			Msg("Got error while trying to decide whether to run task")
		return err
	}
	if !shouldPerform {
		return nil
	}
	if err = worker.redis.onTaskStarted(task); err != nil {
		task.cpxLogger.Err(err).Msg("Failed to update task info")
		return fmt.Errorf("failed to update TaskInfo: %w", err)
	}
	if err = worker.runPipeline(task); err != nil {
		task.cpxLogger.Err(err).Msg("Got error while running pipeline")
		if err = worker.redis.onTaskFailedWithError(task, err); err != nil {
			return err
		}
		return nil
	}
	task.cpxLogger.Info().Msg("Saved results, marking task as complete")
	if err = worker.redis.onTaskComplete(task); err != nil {
		task.cpxLogger.Err(err).Msg("Got error while trying to mark task as complete")
		return err
	}
	return nil
}

func (worker *Worker) runPipeline(task *Task) (err error) {
	defer utils.RecoverWithError(&err)
	task.cpxLogger.Info().Msgf("Processing message from RMQ, attempt # %d", task.scoreTask.TaskStatuses.CPX.Attempts)
	request := pipeline.Request{
		SessionID: task.scoreTask.SessionID,
		Checklist: checklist.Ref{
			ScenarioID:  task.scoreTask.ScenarioID,
			ChecklistID: task.scoreTask.ChecklistID,
			CaseName:    task.scoreTask.CaseName,
		},
		Mode:          pipeline.Mode(task.scoreTask.Mode),
		AudioKeys:     task.scoreTask.AudioKeys,
		TranscriptKey: task.scoreTask.TranscriptKey,
		TimestampsKey: task.scoreTask.TimestampsKey,
	}
	result, err := worker.scorer.Run(context.Background(), request)
	if err != nil {
		return fmt.Errorf("scoring pipeline failed: %w", err)
	}
	if adopted := result.SessionID; adopted != "" {
		task.sessionID = adopted
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal grade report: %w", err)
	}
	task.cpxLogger.Info().Msg("Finished pipeline, saving results to s3")
	if err = worker.s3.saveResultsFile(task, string(payload)); err != nil {
		task.cpxLogger.Err(err).Msg("Got error while trying to save results")
		return err
	}
	return nil
}

func (worker *Worker) shouldPerformTask(task *Task) (bool, error) {
	taskInfo := task.scoreTask.TaskStatuses.CPX
	taskLogger := task.cpxLogger

	if taskInfo.Status.Complete() {
		taskLogger.Info().Msg("Task is already done. (might indicate issue acking message with RMQ). Sending back to Sequencer.")
		return false, nil
	}
	if task.scoreTask.UserCanceled {
		taskLogger.Info().Msg("Session scoring was canceled, no need to perform this task. Sending back to Sequencer.")
		err := worker.redis.onTaskCancelled(task)
		return false, err
	}
	if taskInfo.Attempts >= worker.config.TaskMaxRetries {
		taskLogger.Info().Msg("CPX task has exceeded retries. Sending back to Sequencer.")
		err := worker.redis.onTaskExceededRetries(task, worker.config.TaskMaxRetries)
		return false, err
	}
	return true, nil
}
