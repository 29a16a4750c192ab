package asynq

import (
	"context"
	"encoding/json"
	"fmt"

	"preflight/internal/model"
	"preflight/pkg/logger"

	"github.com/hibiken/asynq"
)

// CycleRunner runs one full prediction cycle for a job
type CycleRunner interface {
	RunCycle(ctx context.Context, jobName string, requestedBy string) (*model.SavedPrediction, error)
}

// PredictionTaskHandler processes prediction:run tasks
type PredictionTaskHandler struct {
	runner CycleRunner
}

// NewPredictionTaskHandler creates a prediction task handler
func NewPredictionTaskHandler(runner CycleRunner) *PredictionTaskHandler {
	return &PredictionTaskHandler{runner: runner}
}

// ProcessTask implements asynq.Handler. Any cycle error is terminal:
// tasks are enqueued with MaxRetry(0).
func (h *PredictionTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload PredictionPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to decode prediction payload: %v: %w", err, asynq.SkipRetry)
	}

	// Tag the context so every log line of this cycle carries the task id.
	taskID, _ := asynq.GetTaskID(ctx)
	ctx = logger.WithRequestID(ctx, taskID)
	logger.InfoCtx(ctx, "processing prediction task, job: %s, task_id: %s, requested_by: %s",
		payload.JobName, taskID, payload.RequestedBy)

	saved, err := h.runner.RunCycle(ctx, payload.JobName, payload.RequestedBy)
	if err != nil {
		logger.ErrorCtx(ctx, "prediction cycle failed, job: %s: %v", payload.JobName, err)
		return err
	}

	logger.InfoCtx(ctx, "prediction cycle complete, job: %s, prediction_id: %s, should_execute: %v",
		payload.JobName, saved.ID, saved.Prediction.OverallAssessment.ShouldExecute)
	return nil
}
