package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"preflight/internal/model"
	"preflight/internal/service"
	"preflight/pkg/interfaces"
	"preflight/pkg/predictor"
)

type stubCatalog struct {
	jobs []model.JobConfig
}

func (s *stubCatalog) ListJobs() []model.JobConfig {
	return s.jobs
}

func (s *stubCatalog) FindJob(name string) *model.JobConfig {
	for i := range s.jobs {
		if s.jobs[i].Name == name {
			return &s.jobs[i]
		}
	}
	return nil
}

type stubExecutions struct {
	records []model.ExecutionRecord
}

func (s *stubExecutions) RecentExecutions(ctx context.Context, jobName string) ([]model.ExecutionRecord, error) {
	return s.records, nil
}

type stubLLM struct {
	reply string
	err   error
}

func (s *stubLLM) Predict(ctx context.Context, prompt string, cfg interfaces.ModelConfig) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func analysisServer(llm *stubLLM) *gin.Engine {
	catalog := &stubCatalog{jobs: []model.JobConfig{{Name: "daily-etl-pipeline", Schedule: "0 2 * * *"}}}
	executions := &stubExecutions{records: []model.ExecutionRecord{{
		JobName:       "daily-etl-pipeline",
		ExecutedAt:    time.Date(2026, 8, 11, 2, 0, 0, 0, time.UTC),
		Status:        model.ExecutionStatusFailed,
		FailureReason: "OOMKilled",
	}}}

	svc := service.NewAnalysisService(
		catalog,
		executions,
		predictor.NewFailureAnalyzer(llm),
		interfaces.ModelConfig{Model: "claude-3-5-sonnet-20241022"},
	)

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/api/v1/jobs/:name/failure-analysis", NewAnalysisHandler(svc).AnalyzeFailures)
	return engine
}

// TestAnalyzeFailuresEndpoint verifies the happy path returns the
// analysis envelope.
func TestAnalyzeFailuresEndpoint(t *testing.T) {
	engine := analysisServer(&stubLLM{reply: "Memory pressure dominates."})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs/daily-etl-pipeline/failure-analysis", nil)
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var analysis model.FailureAnalysis
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &analysis))
	assert.Equal(t, "daily-etl-pipeline", analysis.JobName)
	assert.Equal(t, 1, analysis.FailureCount)
	assert.Equal(t, "Memory pressure dominates.", analysis.Analysis)
}

// TestAnalyzeFailuresEndpointUnknownJob verifies a job outside the
// catalog yields 404.
func TestAnalyzeFailuresEndpointUnknownJob(t *testing.T) {
	engine := analysisServer(&stubLLM{reply: "unused"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs/no-such-job/failure-analysis", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestAnalyzeFailuresEndpointServiceError verifies a model boundary
// failure yields 502.
func TestAnalyzeFailuresEndpointServiceError(t *testing.T) {
	engine := analysisServer(&stubLLM{err: errors.New("quota exceeded")})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs/daily-etl-pipeline/failure-analysis", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}
