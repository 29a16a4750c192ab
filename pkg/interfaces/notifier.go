package interfaces

import (
	"context"

	"preflight/internal/model"
)

// Notifier pushes prediction alerts to an external channel. Delivery is
// fail-soft: a notification error is logged by the caller and never
// affects the prediction itself.
type Notifier interface {
	// NotifyRisk announces a completed prediction that warrants
	// attention (no-go decision or critical severity).
	NotifyRisk(ctx context.Context, jobName string, result *model.PredictionResult) error
}
