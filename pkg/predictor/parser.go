package predictor

import (
	"encoding/json"
	"fmt"
	"strings"

	"preflight/internal/model"
)

const (
	jsonFenceOpen = "```json"
	fenceMarker   = "```"
)

// ExtractPayload isolates the JSON document from a raw model reply.
// Replies usually wrap the document in a ```json fence, sometimes in a
// bare ``` fence, and occasionally return it unwrapped. An unterminated
// fence yields everything after the opening marker.
func ExtractPayload(raw string) string {
	if idx := strings.Index(raw, jsonFenceOpen); idx >= 0 {
		body := raw[idx+len(jsonFenceOpen):]
		if end := strings.Index(body, fenceMarker); end >= 0 {
			body = body[:end]
		}
		return strings.TrimSpace(body)
	}
	if idx := strings.Index(raw, fenceMarker); idx >= 0 {
		body := raw[idx+len(fenceMarker):]
		if end := strings.Index(body, fenceMarker); end >= 0 {
			body = body[:end]
		}
		return strings.TrimSpace(body)
	}
	return strings.TrimSpace(raw)
}

// Parse turns a raw model reply into a validated PredictionResult.
// Malformed JSON produces a *ParseSyntaxError carrying an excerpt of the
// reply; well-formed JSON that does not satisfy the result schema
// produces a *SchemaViolation. No partial result is ever returned.
func Parse(raw string) (*model.PredictionResult, error) {
	payload := ExtractPayload(raw)

	var result model.PredictionResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		switch err.(type) {
		case *json.UnmarshalTypeError:
			return nil, &SchemaViolation{Reason: err.Error()}
		default:
			return nil, &ParseSyntaxError{Excerpt: excerpt(raw), Err: err}
		}
	}

	if err := validate(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

func validate(result *model.PredictionResult) error {
	for _, category := range model.PredictionCategories() {
		pred := result.Predictions.Get(category)
		if pred == nil {
			return &SchemaViolation{Reason: fmt.Sprintf("missing prediction category %q", category)}
		}
		if pred.Probability < 0 || pred.Probability > 100 {
			return &SchemaViolation{Reason: fmt.Sprintf("category %q probability %d outside [0,100]", category, pred.Probability)}
		}
		if !pred.Severity.IsValid() {
			return &SchemaViolation{Reason: fmt.Sprintf("category %q severity %q not recognized", category, pred.Severity)}
		}
	}

	overall := result.OverallAssessment
	if overall == nil {
		return &SchemaViolation{Reason: "missing overall_assessment"}
	}
	if overall.OverallProbability < 0 || overall.OverallProbability > 100 {
		return &SchemaViolation{Reason: fmt.Sprintf("overall probability %d outside [0,100]", overall.OverallProbability)}
	}
	if !overall.OverallSeverity.IsValid() {
		return &SchemaViolation{Reason: fmt.Sprintf("overall severity %q not recognized", overall.OverallSeverity)}
	}

	effort := result.EstimatedEffort
	if effort == nil {
		return &SchemaViolation{Reason: "missing estimated_effort"}
	}
	if !effort.Category.IsValid() {
		return &SchemaViolation{Reason: fmt.Sprintf("effort category %q not recognized", effort.Category)}
	}
	if effort.StoryPoints <= 0 {
		return &SchemaViolation{Reason: fmt.Sprintf("story points %d must be positive", effort.StoryPoints)}
	}
	return nil
}
