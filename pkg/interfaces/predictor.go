package interfaces

import (
	"context"

	"preflight/internal/model"
)

// ModelConfig names the hosted model serving a prediction and how it is
// sampled. It travels with every request so one process can serve
// different models per call.
type ModelConfig struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"maxTokens"`
	Temperature float64 `json:"temperature"`
}

// PredictionService boundary to the hosted language model.
// Implementations send the prompt exactly as composed and return the raw
// reply text, untouched. One request per call: a failed call reports an
// error and is never retried at this layer.
type PredictionService interface {
	// Predict sends the prompt and returns the reply body.
	// Cancellation and deadline come from ctx.
	Predict(ctx context.Context, prompt string, cfg ModelConfig) (string, error)
}

// EventSink receives lifecycle events emitted during a prediction
// cycle. Publish must be cheap and must not fail the cycle; slow
// consumers buffer or drop on their side.
type EventSink interface {
	Publish(event *model.PredictionEvent)
}

// TaskEnqueuer schedules background prediction work.
type TaskEnqueuer interface {
	// EnqueuePrediction queues one prediction cycle for jobName and
	// returns the queue task id.
	EnqueuePrediction(ctx context.Context, jobName string) (string, error)
}
