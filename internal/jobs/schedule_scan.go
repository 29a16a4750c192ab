package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"preflight/internal/model"
	"preflight/pkg/constants"
	"preflight/pkg/interfaces"
	"preflight/pkg/logger"
	"preflight/pkg/queue/asynq"
	redisstore "preflight/pkg/store/redis"
)

// ScanLockKey guards the scan so only one replica enqueues per period.
const ScanLockKey = "lock:schedule_scan"

// catalogLister is the catalog view the scan needs.
type catalogLister interface {
	ListJobs() []model.JobConfig
}

// ScheduleScanJob walks the job catalog on a timer and enqueues a
// prediction for every job whose next scheduled run falls within the
// horizon. The point is to have a fresh risk assessment ready before
// the job actually starts.
type ScheduleScanJob struct {
	catalog  catalogLister
	enqueuer interfaces.TaskEnqueuer
	lock     redisstore.DistributedLock
	parser   cron.Parser
	interval time.Duration
	horizon  time.Duration
}

// NewScheduleScanJob creates the scan job. lock may wrap a nil Redis
// client for single-instance deployments.
func NewScheduleScanJob(catalog catalogLister, enqueuer interfaces.TaskEnqueuer, lock redisstore.DistributedLock, interval, horizon time.Duration) *ScheduleScanJob {
	return &ScheduleScanJob{
		catalog:  catalog,
		enqueuer: enqueuer,
		lock:     lock,
		parser:   cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
		interval: interval,
		horizon:  horizon,
	}
}

func (j *ScheduleScanJob) Name() string { return "schedule_scan" }

func (j *ScheduleScanJob) Interval() time.Duration { return j.interval }

// Run scans the catalog once. The distributed lock makes the scan
// single-flight across replicas; a replica that loses the race simply
// skips this period.
func (j *ScheduleScanJob) Run(ctx context.Context) error {
	acquired, err := j.lock.TryLock(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire scan lock: %w", err)
	}
	if !acquired {
		logger.DebugCtx(ctx, "schedule scan skipped: another replica holds the lock")
		return nil
	}
	defer func() {
		if err := j.lock.Unlock(ctx); err != nil {
			logger.WarnCtx(ctx, "failed to release scan lock: %v", err)
		}
	}()

	ctx = asynq.WithRequestedBy(ctx, constants.OriginScheduleScan)
	now := time.Now()
	enqueued := 0

	for _, job := range j.catalog.ListJobs() {
		schedule, err := j.parser.Parse(job.Schedule)
		if err != nil {
			logger.WarnCtx(ctx, "schedule scan skipping job %s: bad schedule %q: %v", job.Name, job.Schedule, err)
			continue
		}

		next := schedule.Next(now)
		if next.IsZero() || next.Sub(now) > j.horizon {
			continue
		}

		taskID, err := j.enqueuer.EnqueuePrediction(ctx, job.Name)
		if err != nil {
			logger.ErrorCtx(ctx, "schedule scan failed to enqueue prediction for %s: %v", job.Name, err)
			continue
		}
		enqueued++
		logger.InfoCtx(ctx, "schedule scan enqueued prediction for %s (next run %s, task %s)",
			job.Name, next.Format(time.RFC3339), taskID)
	}

	if enqueued > 0 {
		logger.InfoCtx(ctx, "schedule scan enqueued %d predictions", enqueued)
	}
	return nil
}
