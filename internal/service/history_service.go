package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"preflight/internal/model"
	"preflight/pkg/failure"
	"preflight/pkg/interfaces"
	"preflight/pkg/jobname"
	"preflight/pkg/logger"
	"preflight/pkg/predictor"
	"preflight/pkg/store/mysql"
	storemodel "preflight/pkg/store/mysql/model"
)

// ErrInvalidRecord reports an ingested record that fails validation.
var ErrInvalidRecord = errors.New("invalid execution record")

// HistoryService owns the execution-record store: it syncs records from
// the cluster, accepts records pushed over the API, and derives the
// historical context predictions consume. All reads come from MySQL;
// the collector only ever feeds the sync path.
type HistoryService struct {
	executionRepo *mysql.ExecutionRepository
	collector     interfaces.HistorySource
	classifier    *failure.Classifier
	lookback      time.Duration
}

// NewHistoryService creates a history service. collector may be nil
// when no cluster is reachable; sync then reports an error and the
// store is fed over the API only.
func NewHistoryService(executionRepo *mysql.ExecutionRepository, collector interfaces.HistorySource, lookback time.Duration) *HistoryService {
	return &HistoryService{
		executionRepo: executionRepo,
		collector:     collector,
		classifier:    failure.NewClassifier(),
		lookback:      lookback,
	}
}

// SyncHistory pulls execution records from the cluster for the lookback
// window and upserts them. Records are deduplicated on
// (job_name, executed_at), so repeated syncs converge instead of
// duplicating rows. Returns the number of records seen.
func (s *HistoryService) SyncHistory(ctx context.Context) (int, error) {
	if s.collector == nil {
		return 0, fmt.Errorf("no history collector configured")
	}

	since := time.Now().UTC().Add(-s.lookback)
	records, err := s.collector.CollectHistory(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("failed to collect execution history: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	return s.storeRecords(ctx, records)
}

// IngestRecords accepts execution records pushed over the API.
// Normalization happens here: job names lose their run-hash suffix,
// statuses are upper-cased and checked against the declared enum, and
// uncategorized failures are classified before storage.
func (s *HistoryService) IngestRecords(ctx context.Context, records []model.ExecutionRecord) (int, error) {
	if err := s.normalizeRecords(records); err != nil {
		return 0, err
	}
	return s.storeRecords(ctx, records)
}

// normalizeRecords validates and normalizes ingested records in place.
// A record with an unknown status is rejected: it would inflate the
// summarized total without landing in any status bucket.
func (s *HistoryService) normalizeRecords(records []model.ExecutionRecord) error {
	for i := range records {
		records[i].JobName = jobname.Normalize(records[i].JobName)
		if records[i].JobName == "" {
			return fmt.Errorf("%w: record %d has no job_name", ErrInvalidRecord, i)
		}
		if records[i].ExecutedAt.IsZero() {
			return fmt.Errorf("%w: record %d for job %s has no executed_at", ErrInvalidRecord, i, records[i].JobName)
		}
		records[i].Status = model.ExecutionStatus(strings.ToUpper(string(records[i].Status)))
		if !records[i].Status.IsValid() {
			return fmt.Errorf("%w: record %d for job %s has unknown status %q", ErrInvalidRecord, i, records[i].JobName, records[i].Status)
		}
		if records[i].Status == model.ExecutionStatusFailed && records[i].FailureCategory == "" {
			if category, ok := s.classifier.Classify("", records[i].FailureReason); ok {
				records[i].FailureCategory = category
			}
		}
	}
	return nil
}

// GetHistoricalContext summarizes the stored records of one job over
// the lookback window. Recomputed on every call, never cached.
func (s *HistoryService) GetHistoricalContext(ctx context.Context, jobName string) (model.HistoricalContext, error) {
	records, err := s.RecentExecutions(ctx, jobName)
	if err != nil {
		return model.HistoricalContext{}, err
	}

	return predictor.Summarize(records, jobName), nil
}

// RecentExecutions returns a job's stored execution records over the
// lookback window as domain records.
func (s *HistoryService) RecentExecutions(ctx context.Context, jobName string) ([]model.ExecutionRecord, error) {
	since := time.Now().UTC().Add(-s.lookback)
	rows, err := s.executionRepo.ListSince(ctx, jobName, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load execution records: %w", err)
	}
	return mysql.ToExecutionDomainList(rows), nil
}

// ListRecords returns one page of a job's stored execution records,
// newest first, with the total count.
func (s *HistoryService) ListRecords(ctx context.Context, jobName string, limit, offset int) ([]model.ExecutionRecord, int64, error) {
	rows, total, err := s.executionRepo.ListByJob(ctx, jobName, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list execution records: %w", err)
	}
	return mysql.ToExecutionDomainList(rows), total, nil
}

func (s *HistoryService) storeRecords(ctx context.Context, records []model.ExecutionRecord) (int, error) {
	rows := make([]*storemodel.ExecutionRecord, 0, len(records))
	for i := range records {
		rows = append(rows, mysql.FromExecutionDomain(&records[i]))
	}

	if err := s.executionRepo.UpsertBatch(ctx, rows); err != nil {
		return 0, fmt.Errorf("failed to store execution records: %w", err)
	}

	logger.InfoCtx(ctx, "stored %d execution records", len(rows))
	return len(rows), nil
}
