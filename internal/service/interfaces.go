package service

import (
	"context"

	"preflight/internal/model"
	"preflight/pkg/store/mysql"
	storemodel "preflight/pkg/store/mysql/model"
	redisstore "preflight/pkg/store/redis"
)

// Narrow views of the concrete collaborators, so a prediction cycle can
// be exercised without MySQL or Redis behind it.

type jobCatalog interface {
	ListJobs() []model.JobConfig
	FindJob(name string) *model.JobConfig
}

type historyProvider interface {
	GetHistoricalContext(ctx context.Context, jobName string) (model.HistoricalContext, error)
}

type executionSource interface {
	RecentExecutions(ctx context.Context, jobName string) ([]model.ExecutionRecord, error)
}

type predictionStore interface {
	Create(ctx context.Context, record *storemodel.PredictionRecord) error
	LatestByJob(ctx context.Context, jobName string) (*storemodel.PredictionRecord, error)
	ListByJob(ctx context.Context, jobName string, limit, offset int) ([]*storemodel.PredictionRecord, int64, error)
}

type predictionCache interface {
	SetLatest(ctx context.Context, saved *model.SavedPrediction) error
	GetLatest(ctx context.Context, jobName string) (*model.SavedPrediction, error)
}

// compile-time assertions

var (
	_ jobCatalog      = (*CatalogService)(nil)
	_ historyProvider = (*HistoryService)(nil)
	_ executionSource = (*HistoryService)(nil)
	_ predictionStore = (*mysql.PredictionRepository)(nil)
	_ predictionCache = (*redisstore.PredictionCache)(nil)
)
