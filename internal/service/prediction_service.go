package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/pretty"

	"preflight/internal/model"
	"preflight/pkg/interfaces"
	"preflight/pkg/logger"
	"preflight/pkg/predictor"
	"preflight/pkg/store/mysql"
)

// ErrJobNotFound reports a job name the catalog does not declare.
var ErrJobNotFound = errors.New("job not found")

// PredictionService orchestrates prediction cycles: gather inputs, run
// the engine, persist and fan out the result. Side-effect collaborators
// (repository, cache, notifier, enqueuer) may be nil; a nil collaborator
// skips its step, which is how the one-shot CLI runs a cycle without a
// database.
type PredictionService struct {
	catalog        jobCatalog
	history        historyProvider
	capacity       interfaces.CapacitySource
	engine         *predictor.Engine
	predictionRepo predictionStore
	cache          predictionCache
	notifier       interfaces.Notifier
	enqueuer       interfaces.TaskEnqueuer
	modelCfg       interfaces.ModelConfig
	outputDir      string
}

// NewPredictionService creates a prediction service.
func NewPredictionService(
	catalog jobCatalog,
	history historyProvider,
	capacity interfaces.CapacitySource,
	engine *predictor.Engine,
	predictionRepo predictionStore,
	cache predictionCache,
	notifier interfaces.Notifier,
	enqueuer interfaces.TaskEnqueuer,
	modelCfg interfaces.ModelConfig,
	outputDir string,
) *PredictionService {
	return &PredictionService{
		catalog:        catalog,
		history:        history,
		capacity:       capacity,
		engine:         engine,
		predictionRepo: predictionRepo,
		cache:          cache,
		notifier:       notifier,
		enqueuer:       enqueuer,
		modelCfg:       modelCfg,
		outputDir:      outputDir,
	}
}

// RunCycle executes one full prediction cycle for a job and persists
// the outcome. Failure surfaces as one of the terminal cycle errors:
// ErrJobNotFound, predictor.ErrNoCapacity, *predictor.ServiceError,
// *predictor.ParseSyntaxError or *predictor.SchemaViolation. A failed
// cycle leaves no partial result anywhere.
func (s *PredictionService) RunCycle(ctx context.Context, jobName string, requestedBy string) (*model.SavedPrediction, error) {
	job := s.catalog.FindJob(jobName)
	if job == nil {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobName)
	}

	// History is optional input: an unreadable store degrades to the
	// explicit no-data context instead of blocking the cycle.
	hist, err := s.history.GetHistoricalContext(ctx, jobName)
	if err != nil {
		logger.WarnCtx(ctx, "proceeding without history for job %s: %v", jobName, err)
		hist = model.HistoricalContext{JobName: jobName}
	}

	var snap *model.ClusterSnapshot
	if s.capacity != nil {
		snap, err = s.capacity.Snapshot(ctx)
		if err != nil {
			logger.WarnCtx(ctx, "no capacity snapshot for job %s: %v", jobName, err)
			snap = nil
		}
	}

	result, err := s.engine.Run(ctx, *job, hist, snap, s.modelCfg)
	if err != nil {
		return nil, err
	}

	saved := &model.SavedPrediction{
		ID:         uuid.New().String(),
		JobName:    jobName,
		Model:      s.modelCfg.Model,
		Timestamp:  time.Now().UTC(),
		Prediction: result,
	}

	if s.predictionRepo != nil {
		row, err := mysql.FromPredictionDomain(saved)
		if err != nil {
			return nil, fmt.Errorf("failed to convert prediction: %w", err)
		}
		if err := s.predictionRepo.Create(ctx, row); err != nil {
			return nil, fmt.Errorf("failed to persist prediction: %w", err)
		}
	}

	if s.cache != nil {
		if err := s.cache.SetLatest(ctx, saved); err != nil {
			logger.WarnCtx(ctx, "failed to cache prediction %s: %v", saved.ID, err)
		}
	}

	if s.outputDir != "" {
		if err := s.writePredictionFile(saved); err != nil {
			logger.WarnCtx(ctx, "failed to write prediction file for %s: %v", jobName, err)
		}
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyRisk(ctx, jobName, result); err != nil {
			logger.WarnCtx(ctx, "failed to notify risk for job %s: %v", jobName, err)
		}
	}

	logger.InfoCtx(ctx, "prediction cycle complete: job=%s id=%s requested_by=%s should_execute=%t",
		jobName, saved.ID, requestedBy, result.OverallAssessment.ShouldExecute)
	return saved, nil
}

// GetLatest returns the most recent persisted prediction for a job:
// Redis first, MySQL as fallback with a cache backfill. nil means no
// prediction exists yet.
func (s *PredictionService) GetLatest(ctx context.Context, jobName string) (*model.SavedPrediction, error) {
	if s.cache != nil {
		saved, err := s.cache.GetLatest(ctx, jobName)
		if err != nil {
			logger.WarnCtx(ctx, "prediction cache read failed for %s: %v", jobName, err)
		} else if saved != nil {
			return saved, nil
		}
	}

	if s.predictionRepo == nil {
		return nil, nil
	}
	row, err := s.predictionRepo.LatestByJob(ctx, jobName)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest prediction: %w", err)
	}
	if row == nil {
		return nil, nil
	}

	saved, err := mysql.ToPredictionDomain(row)
	if err != nil {
		return nil, fmt.Errorf("failed to decode stored prediction: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetLatest(ctx, saved); err != nil {
			logger.WarnCtx(ctx, "failed to backfill prediction cache for %s: %v", jobName, err)
		}
	}
	return saved, nil
}

// ListPredictions returns one page of a job's persisted predictions,
// newest first, with the total count.
func (s *PredictionService) ListPredictions(ctx context.Context, jobName string, limit, offset int) ([]*model.SavedPrediction, int64, error) {
	if s.predictionRepo == nil {
		return nil, 0, fmt.Errorf("no prediction store configured")
	}

	rows, total, err := s.predictionRepo.ListByJob(ctx, jobName, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list predictions: %w", err)
	}

	saved := make([]*model.SavedPrediction, 0, len(rows))
	for _, row := range rows {
		sp, err := mysql.ToPredictionDomain(row)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to decode stored prediction %s: %w", row.PredictionID, err)
		}
		saved = append(saved, sp)
	}
	return saved, total, nil
}

// EnqueueBatch queues one prediction task per job. An empty job list
// means every catalog job. Returns job name -> queue task id.
func (s *PredictionService) EnqueueBatch(ctx context.Context, jobs []string) (map[string]string, error) {
	if s.enqueuer == nil {
		return nil, fmt.Errorf("no task queue configured")
	}

	if len(jobs) == 0 {
		for _, job := range s.catalog.ListJobs() {
			jobs = append(jobs, job.Name)
		}
	} else {
		for _, name := range jobs {
			if s.catalog.FindJob(name) == nil {
				return nil, fmt.Errorf("%w: %s", ErrJobNotFound, name)
			}
		}
	}

	tasks := make(map[string]string, len(jobs))
	for _, name := range jobs {
		taskID, err := s.enqueuer.EnqueuePrediction(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to enqueue prediction for %s: %w", name, err)
		}
		tasks[name] = taskID
	}
	return tasks, nil
}

// writePredictionFile dumps the saved prediction as pretty-printed JSON
// under the output directory, one file per cycle.
func (s *PredictionService) writePredictionFile(saved *model.SavedPrediction) error {
	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.Marshal(saved)
	if err != nil {
		return fmt.Errorf("failed to marshal prediction: %w", err)
	}

	name := fmt.Sprintf("%s_%s.json", saved.JobName, saved.Timestamp.Format("20060102_150405"))
	path := filepath.Join(s.outputDir, name)
	if err := os.WriteFile(path, pretty.Pretty(data), 0644); err != nil {
		return fmt.Errorf("failed to write prediction file: %w", err)
	}
	return nil
}
