package service

import (
	"context"
	"fmt"
	"time"

	"preflight/internal/model"
	"preflight/pkg/interfaces"
	"preflight/pkg/logger"
	"preflight/pkg/predictor"
)

// AnalysisService derives failure-pattern analyses from stored
// execution history. One analysis covers one job's failures over the
// lookback window; the result is never persisted or cached.
type AnalysisService struct {
	catalog  jobCatalog
	source   executionSource
	analyzer *predictor.FailureAnalyzer
	modelCfg interfaces.ModelConfig
}

// NewAnalysisService creates an analysis service.
func NewAnalysisService(catalog jobCatalog, source executionSource, analyzer *predictor.FailureAnalyzer, modelCfg interfaces.ModelConfig) *AnalysisService {
	return &AnalysisService{
		catalog:  catalog,
		source:   source,
		analyzer: analyzer,
		modelCfg: modelCfg,
	}
}

// AnalyzeFailures runs a pattern analysis over a job's recent failures.
// A failure-free history yields a result with FailureCount 0 and empty
// text, without a model call. Boundary failures surface as
// *predictor.ServiceError.
func (s *AnalysisService) AnalyzeFailures(ctx context.Context, jobName string) (*model.FailureAnalysis, error) {
	if s.catalog.FindJob(jobName) == nil {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobName)
	}

	records, err := s.source.RecentExecutions(ctx, jobName)
	if err != nil {
		return nil, fmt.Errorf("failed to load execution records: %w", err)
	}

	text, count, err := s.analyzer.Analyze(ctx, records, s.modelCfg)
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "failure analysis complete: job=%s failures=%d", jobName, count)
	return &model.FailureAnalysis{
		JobName:      jobName,
		FailureCount: count,
		Analysis:     text,
		Model:        s.modelCfg.Model,
		GeneratedAt:  time.Now().UTC(),
	}, nil
}
