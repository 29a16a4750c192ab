package interfaces

import (
	"context"
	"time"

	"preflight/internal/model"
)

// HistorySource yields past execution records of the scheduled jobs.
// Records come back already normalized: job names stripped of their
// run-hash suffix, failure reasons categorized.
type HistorySource interface {
	// CollectHistory returns every record executed at or after since.
	CollectHistory(ctx context.Context, since time.Time) ([]model.ExecutionRecord, error)
}

// CapacitySource reports what the cluster can currently schedule.
// A collection error means no snapshot: callers must treat that as
// "cannot predict", not as zero capacity.
type CapacitySource interface {
	Snapshot(ctx context.Context) (*model.ClusterSnapshot, error)
}

// MetadataSource enriches predictions with account-level inventory
// (control plane, filesystems, buckets, identity). Collection is
// best-effort per section.
type MetadataSource interface {
	CollectMetadata(ctx context.Context) (*model.ClusterMetadata, error)
}
