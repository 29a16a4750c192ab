package mysql

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	storemodel "preflight/pkg/store/mysql/model"
)

// PredictionRepository handles prediction record persistence in MySQL
type PredictionRepository struct {
	ds *Datastore
}

// NewPredictionRepository creates a new prediction record repository
func NewPredictionRepository(ds *Datastore) *PredictionRepository {
	return &PredictionRepository{ds: ds}
}

// Create persists a new prediction record
func (r *PredictionRepository) Create(ctx context.Context, record *storemodel.PredictionRecord) error {
	if err := r.ds.DB(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create prediction record: %w", err)
	}
	return nil
}

// Get retrieves a prediction record by its prediction id
func (r *PredictionRepository) Get(ctx context.Context, predictionID string) (*storemodel.PredictionRecord, error) {
	var record storemodel.PredictionRecord
	err := r.ds.DB(ctx).Where("prediction_id = ?", predictionID).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get prediction record: %w", err)
	}
	return &record, nil
}

// LatestByJob retrieves the most recent prediction for a job, or nil
// when none exists
func (r *PredictionRepository) LatestByJob(ctx context.Context, jobName string) (*storemodel.PredictionRecord, error) {
	var record storemodel.PredictionRecord
	err := r.ds.DB(ctx).
		Where("job_name = ?", jobName).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest prediction: %w", err)
	}
	return &record, nil
}

// ListByJob retrieves a page of predictions for a job, newest first
func (r *PredictionRepository) ListByJob(ctx context.Context, jobName string, limit, offset int) ([]*storemodel.PredictionRecord, int64, error) {
	var total int64
	query := r.ds.DB(ctx).Model(&storemodel.PredictionRecord{}).Where("job_name = ?", jobName)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count prediction records: %w", err)
	}

	var records []*storemodel.PredictionRecord
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list prediction records: %w", err)
	}
	return records, total, nil
}
