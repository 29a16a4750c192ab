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

func analyzerRecords() []model.ExecutionRecord {
	return []model.ExecutionRecord{
		{
			JobName:    "daily_etl",
			ExecutedAt: time.Date(2026, 8, 10, 2, 0, 0, 0, time.UTC),
			Status:     model.ExecutionStatusSuccess,
		},
		{
			JobName:         "daily_etl",
			ExecutedAt:      time.Date(2026, 8, 11, 2, 0, 0, 0, time.UTC),
			Status:          model.ExecutionStatusFailed,
			FailureReason:   "OOMKilled",
			FailureCategory: model.CategoryMemoryOOMKill,
		},
		{
			JobName:       "daily_etl",
			ExecutedAt:    time.Date(2026, 8, 12, 2, 0, 0, 0, time.UTC),
			Status:        model.ExecutionStatusFailed,
			FailureReason: "mount timeout",
		},
	}
}

// TestComposeAnalysisPrompt verifies only failed runs reach the digest
// and the prompt spells out the four analysis asks.
func TestComposeAnalysisPrompt(t *testing.T) {
	prompt, count, err := ComposeAnalysisPrompt(analyzerRecords())
	require.NoError(t, err)

	assert.Equal(t, 2, count)
	assert.Contains(t, prompt, `"job": "daily_etl"`)
	assert.Contains(t, prompt, `"date": "2026-08-11T02:00:00Z"`)
	assert.Contains(t, prompt, `"reason": "OOMKilled"`)
	assert.Contains(t, prompt, `"category": "memory_oomkill"`)
	assert.Contains(t, prompt, "1. Common failure patterns")
	assert.Contains(t, prompt, "4. Priority recommendations")
	assert.NotContains(t, prompt, "2026-08-10", "successful runs stay out of the digest")
}

// TestComposeAnalysisPromptDeterministic verifies composition is pure.
func TestComposeAnalysisPromptDeterministic(t *testing.T) {
	first, _, err := ComposeAnalysisPrompt(analyzerRecords())
	require.NoError(t, err)
	second, _, err := ComposeAnalysisPrompt(analyzerRecords())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// TestAnalyzeNoFailures verifies a failure-free history returns an empty
// analysis without a model call.
func TestAnalyzeNoFailures(t *testing.T) {
	svc := &fakeService{reply: "should never be requested"}
	analyzer := NewFailureAnalyzer(svc)

	records := []model.ExecutionRecord{{
		JobName:    "daily_etl",
		ExecutedAt: time.Date(2026, 8, 10, 2, 0, 0, 0, time.UTC),
		Status:     model.ExecutionStatusSuccess,
	}}
	analysis, count, err := analyzer.Analyze(context.Background(), records, interfaces.ModelConfig{})

	require.NoError(t, err)
	assert.Empty(t, analysis)
	assert.Zero(t, count)
	assert.Empty(t, svc.lastPrompt, "no failures means no model call")
}

// TestAnalyze verifies the reply comes back verbatim.
func TestAnalyze(t *testing.T) {
	svc := &fakeService{reply: "Memory pressure dominates recent failures."}
	analyzer := NewFailureAnalyzer(svc)

	analysis, count, err := analyzer.Analyze(context.Background(), analyzerRecords(), interfaces.ModelConfig{Model: "claude-3-5-sonnet-20241022"})

	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, "Memory pressure dominates recent failures.", analysis)
	assert.Contains(t, svc.lastPrompt, "Analyze these historical job failures")
}

// TestAnalyzeServiceError verifies a boundary failure surfaces as a
// ServiceError without double wrapping.
func TestAnalyzeServiceError(t *testing.T) {
	cause := errors.New("connection reset")
	analyzer := NewFailureAnalyzer(&fakeService{err: cause})

	_, _, err := analyzer.Analyze(context.Background(), analyzerRecords(), interfaces.ModelConfig{})

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.ErrorIs(t, err, cause)

	already := &ServiceError{Err: cause}
	analyzer = NewFailureAnalyzer(&fakeService{err: already})
	_, _, err = analyzer.Analyze(context.Background(), analyzerRecords(), interfaces.ModelConfig{})
	require.ErrorAs(t, err, &svcErr)
	assert.Same(t, already, svcErr)
}
