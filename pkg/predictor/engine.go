package predictor

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"preflight/internal/model"
	"preflight/pkg/interfaces"
	"preflight/pkg/logger"
)

// Engine runs one prediction cycle end to end: compose the prompt, call
// the model, parse the reply. Each cycle is independent and terminal;
// the engine never retries, backs off, or degrades to a partial result.
type Engine struct {
	service interfaces.PredictionService
	sink    interfaces.EventSink
}

// NewEngine builds an engine over the given model boundary. sink may be
// nil when nothing subscribes to lifecycle events.
func NewEngine(service interfaces.PredictionService, sink interfaces.EventSink) *Engine {
	return &Engine{service: service, sink: sink}
}

// Run executes one prediction cycle for a job. Failure comes back as
// one of the cycle's terminal errors: ErrNoCapacity when the snapshot
// is unusable, *ServiceError when the model boundary fails,
// *ParseSyntaxError or *SchemaViolation when the reply is rejected.
func (e *Engine) Run(ctx context.Context, job model.JobConfig, hist model.HistoricalContext, snap *model.ClusterSnapshot, cfg interfaces.ModelConfig) (*model.PredictionResult, error) {
	if !snap.Usable() {
		logger.WarnCtx(ctx, "prediction refused for job %s: %v", job.Name, ErrNoCapacity)
		return nil, ErrNoCapacity
	}

	prompt, err := Compose(job, hist, *snap)
	if err != nil {
		return nil, err
	}

	cycleID := uuid.New().String()
	logger.InfoCtx(ctx, "prediction cycle %s started for job %s (model %s)", cycleID, job.Name, cfg.Model)

	e.emit(ctx, cycleID, job.Name, model.PhaseComposed, nil)
	e.emit(ctx, cycleID, job.Name, model.PhaseSent, nil)
	e.emit(ctx, cycleID, job.Name, model.PhaseAwaitingReply, nil)

	raw, err := e.service.Predict(ctx, prompt, cfg)
	if err != nil {
		var svcErr *ServiceError
		if !errors.As(err, &svcErr) {
			svcErr = &ServiceError{Err: err}
		}
		logger.ErrorCtx(ctx, "prediction cycle %s failed at the model boundary: %v", cycleID, svcErr)
		e.emit(ctx, cycleID, job.Name, model.PhaseServiceError, svcErr)
		return nil, svcErr
	}

	result, err := Parse(raw)
	if err != nil {
		logger.ErrorCtx(ctx, "prediction cycle %s reply rejected: %v", cycleID, err)
		e.emit(ctx, cycleID, job.Name, model.PhaseParseFailed, err)
		return nil, err
	}

	e.emit(ctx, cycleID, job.Name, model.PhaseParsed, nil)
	logger.InfoCtx(ctx, "prediction cycle %s parsed: job %s should_execute=%t overall=%s",
		cycleID, job.Name, result.OverallAssessment.ShouldExecute, result.OverallAssessment.OverallSeverity)
	return result, nil
}

func (e *Engine) emit(ctx context.Context, cycleID, jobName string, phase model.PredictionPhase, cause error) {
	if e.sink == nil {
		return
	}
	event := &model.PredictionEvent{
		CycleID: cycleID,
		JobName: jobName,
		Phase:   phase,
		At:      time.Now().UTC(),
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	e.sink.Publish(event)
	logger.DebugCtx(ctx, "prediction cycle %s phase %s", cycleID, phase)
}
