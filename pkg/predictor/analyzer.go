package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"preflight/internal/model"
	"preflight/pkg/interfaces"
	"preflight/pkg/logger"
)

// analysisPromptTemplate is the prompt shape of a failure-pattern
// analysis. Placeholder: the failure digest JSON. Unlike the prediction
// prompt, the reply is operator-facing prose with no schema.
const analysisPromptTemplate = `Analyze these historical job failures and identify patterns:

**Historical Failures:**
` + codeFence + `json
%s
` + codeFence + `

Provide:
1. Common failure patterns
2. Root cause categories
3. Preventive measures
4. Priority recommendations

Format as a concise analysis.`

// failureDigest is the shape of one failed run inside the analysis
// prompt.
type failureDigest struct {
	Job      string `json:"job"`
	Date     string `json:"date"`
	Reason   string `json:"reason,omitempty"`
	Category string `json:"category,omitempty"`
}

// ComposeAnalysisPrompt renders the pattern-analysis prompt for the
// FAILED records in records and reports how many failures it covers.
// Pure: the same failures always yield the same prompt. Zero failures
// yield an empty prompt.
func ComposeAnalysisPrompt(records []model.ExecutionRecord) (string, int, error) {
	var digests []failureDigest
	for i := range records {
		if records[i].Status != model.ExecutionStatusFailed {
			continue
		}
		digests = append(digests, failureDigest{
			Job:      records[i].JobName,
			Date:     records[i].ExecutedAt.UTC().Format(time.RFC3339),
			Reason:   records[i].FailureReason,
			Category: records[i].FailureCategory,
		})
	}
	if len(digests) == 0 {
		return "", 0, nil
	}

	body, err := json.MarshalIndent(digests, "", "  ")
	if err != nil {
		return "", 0, fmt.Errorf("failed to encode failure digest: %w", err)
	}

	return fmt.Sprintf(analysisPromptTemplate, string(body)), len(digests), nil
}

// FailureAnalyzer asks the model for a pattern analysis across a job's
// historical failures. The reply is returned verbatim as prose, never
// parsed against a schema.
type FailureAnalyzer struct {
	service interfaces.PredictionService
}

// NewFailureAnalyzer builds an analyzer over the given model boundary.
func NewFailureAnalyzer(service interfaces.PredictionService) *FailureAnalyzer {
	return &FailureAnalyzer{service: service}
}

// Analyze sends the pattern-analysis prompt for the failures in records
// and returns the analysis text with the number of failures it covers.
// Zero failures skip the model call and return an empty analysis.
// Boundary failures surface as *ServiceError.
func (a *FailureAnalyzer) Analyze(ctx context.Context, records []model.ExecutionRecord, cfg interfaces.ModelConfig) (string, int, error) {
	prompt, count, err := ComposeAnalysisPrompt(records)
	if err != nil {
		return "", 0, err
	}
	if count == 0 {
		return "", 0, nil
	}

	logger.InfoCtx(ctx, "analyzing %d failures (model %s)", count, cfg.Model)

	analysis, err := a.service.Predict(ctx, prompt, cfg)
	if err != nil {
		var svcErr *ServiceError
		if !errors.As(err, &svcErr) {
			svcErr = &ServiceError{Err: err}
		}
		logger.ErrorCtx(ctx, "failure analysis failed at the model boundary: %v", svcErr)
		return "", 0, svcErr
	}

	return analysis, count, nil
}
