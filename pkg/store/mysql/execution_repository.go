package mysql

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	storemodel "preflight/pkg/store/mysql/model"
)

// ExecutionRepository handles execution record persistence in MySQL
type ExecutionRepository struct {
	ds *Datastore
}

// NewExecutionRepository creates a new execution record repository
func NewExecutionRepository(ds *Datastore) *ExecutionRepository {
	return &ExecutionRepository{ds: ds}
}

// Upsert inserts a record or refreshes the mutable fields of the row
// with the same job_name + executed_at. History sync replays the same
// runs every interval; the unique index absorbs the replay.
func (r *ExecutionRepository) Upsert(ctx context.Context, record *storemodel.ExecutionRecord) error {
	err := r.ds.DB(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "job_name"}, {Name: "executed_at"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "duration_minutes", "failure_reason", "failure_category", "resources",
		}),
	}).Create(record).Error
	if err != nil {
		return fmt.Errorf("failed to upsert execution record: %w", err)
	}
	return nil
}

// UpsertBatch upserts a batch of records in one transaction
func (r *ExecutionRepository) UpsertBatch(ctx context.Context, records []*storemodel.ExecutionRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.ds.ExecTx(ctx, func(ctx context.Context) error {
		for _, record := range records {
			if err := r.Upsert(ctx, record); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListSince retrieves records for a job executed at or after the cutoff,
// newest first
func (r *ExecutionRepository) ListSince(ctx context.Context, jobName string, since time.Time) ([]*storemodel.ExecutionRecord, error) {
	var records []*storemodel.ExecutionRecord
	err := r.ds.DB(ctx).
		Where("job_name = ? AND executed_at >= ?", jobName, since).
		Order("executed_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list execution records: %w", err)
	}
	return records, nil
}

// ListByJob retrieves a page of records for a job, newest first
func (r *ExecutionRepository) ListByJob(ctx context.Context, jobName string, limit, offset int) ([]*storemodel.ExecutionRecord, int64, error) {
	var total int64
	query := r.ds.DB(ctx).Model(&storemodel.ExecutionRecord{}).Where("job_name = ?", jobName)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count execution records: %w", err)
	}

	var records []*storemodel.ExecutionRecord
	err := query.
		Order("executed_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list execution records: %w", err)
	}
	return records, total, nil
}

// CountByJob counts all records for a job
func (r *ExecutionRepository) CountByJob(ctx context.Context, jobName string) (int64, error) {
	var count int64
	err := r.ds.DB(ctx).Model(&storemodel.ExecutionRecord{}).
		Where("job_name = ?", jobName).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count execution records: %w", err)
	}
	return count, nil
}
