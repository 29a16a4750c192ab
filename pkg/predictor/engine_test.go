package predictor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"preflight/internal/model"
	"preflight/pkg/interfaces"
)

type fakeService struct {
	reply      string
	err        error
	lastPrompt string
}

func (f *fakeService) Predict(ctx context.Context, prompt string, cfg interfaces.ModelConfig) (string, error) {
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeSink struct {
	phases []model.PredictionPhase
}

func (f *fakeSink) Publish(event *model.PredictionEvent) {
	f.phases = append(f.phases, event.Phase)
}

func engineInputs() (model.JobConfig, model.HistoricalContext, *model.ClusterSnapshot) {
	job := model.JobConfig{Name: "daily_etl", Schedule: "0 2 * * *"}
	hist := model.HistoricalContext{JobName: "daily_etl", HasData: true, TotalExecutions: 10, SuccessCount: 7, FailureCount: 3}
	snap := &model.ClusterSnapshot{
		ClusterName:       "abinitio-batch",
		AvailableCPUCores: 20,
		AvailableMemoryGB: 280,
		NodeCount:         5,
		TakenAt:           time.Now().UTC(),
	}
	return job, hist, snap
}

// TestEngineRun verifies a full cycle: the composed prompt reaches the
// service, the reply is parsed, and the lifecycle phases are published
// in order.
func TestEngineRun(t *testing.T) {
	service := &fakeService{reply: "```json\n" + validReply + "\n```"}
	sink := &fakeSink{}
	engine := NewEngine(service, sink)

	job, hist, snap := engineInputs()
	result, err := engine.Run(context.Background(), job, hist, snap, interfaces.ModelConfig{Model: "claude-3-5-sonnet-20241022"})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.OverallAssessment.ShouldExecute)
	assert.Contains(t, service.lastPrompt, "daily_etl")
	assert.Contains(t, service.lastPrompt, "280")

	assert.Equal(t, []model.PredictionPhase{
		model.PhaseComposed,
		model.PhaseSent,
		model.PhaseAwaitingReply,
		model.PhaseParsed,
	}, sink.phases)
}

// TestEngineRunRefusesWithoutSnapshot verifies a nil or empty snapshot
// refuses the cycle before any model call.
func TestEngineRunRefusesWithoutSnapshot(t *testing.T) {
	service := &fakeService{reply: validReply}
	engine := NewEngine(service, nil)

	job, hist, _ := engineInputs()

	_, err := engine.Run(context.Background(), job, hist, nil, interfaces.ModelConfig{})
	assert.ErrorIs(t, err, ErrNoCapacity)

	_, err = engine.Run(context.Background(), job, hist, &model.ClusterSnapshot{}, interfaces.ModelConfig{})
	assert.ErrorIs(t, err, ErrNoCapacity)

	assert.Empty(t, service.lastPrompt)
}

// TestEngineRunServiceError verifies a boundary failure surfaces as a
// ServiceError and ends the cycle in the SERVICE_ERROR phase.
func TestEngineRunServiceError(t *testing.T) {
	service := &fakeService{err: errors.New("connection reset")}
	sink := &fakeSink{}
	engine := NewEngine(service, sink)

	job, hist, snap := engineInputs()
	result, err := engine.Run(context.Background(), job, hist, snap, interfaces.ModelConfig{})

	assert.Nil(t, result)
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)

	require.NotEmpty(t, sink.phases)
	assert.Equal(t, model.PhaseServiceError, sink.phases[len(sink.phases)-1])
	assert.True(t, sink.phases[len(sink.phases)-1].Terminal())
}

// TestEngineRunParseFailure verifies an unparseable reply ends the
// cycle in PARSE_FAILED with no partial result.
func TestEngineRunParseFailure(t *testing.T) {
	service := &fakeService{reply: "the pipeline looks fine to me"}
	sink := &fakeSink{}
	engine := NewEngine(service, sink)

	job, hist, snap := engineInputs()
	result, err := engine.Run(context.Background(), job, hist, snap, interfaces.ModelConfig{})

	assert.Nil(t, result)
	var syntaxErr *ParseSyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, model.PhaseParseFailed, sink.phases[len(sink.phases)-1])
}

// TestEngineRunNilSink verifies the engine runs without a subscriber.
func TestEngineRunNilSink(t *testing.T) {
	service := &fakeService{reply: validReply}
	engine := NewEngine(service, nil)

	job, hist, snap := engineInputs()
	result, err := engine.Run(context.Background(), job, hist, snap, interfaces.ModelConfig{})

	require.NoError(t, err)
	assert.NotNil(t, result)
}
