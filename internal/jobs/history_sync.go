package jobs

import (
	"context"
	"time"

	"preflight/pkg/logger"
)

// historySyncer is the slice of the history service the sync job needs.
type historySyncer interface {
	SyncHistory(ctx context.Context) (int, error)
}

// HistorySyncJob keeps the execution-record store current by pulling
// job history from the cluster on a timer. Upserts are idempotent, so
// overlapping windows between runs are harmless.
type HistorySyncJob struct {
	history  historySyncer
	interval time.Duration
}

// NewHistorySyncJob creates the sync job.
func NewHistorySyncJob(history historySyncer, interval time.Duration) *HistorySyncJob {
	return &HistorySyncJob{history: history, interval: interval}
}

func (j *HistorySyncJob) Name() string { return "history_sync" }

func (j *HistorySyncJob) Interval() time.Duration { return j.interval }

func (j *HistorySyncJob) Run(ctx context.Context) error {
	count, err := j.history.SyncHistory(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		logger.InfoCtx(ctx, "history sync stored %d execution records", count)
	}
	return nil
}
