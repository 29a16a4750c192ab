package model

import (
	"encoding/json"
	"time"
)

// Severity risk magnitude band
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// IsValid reports whether s is one of the four defined severities.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// EffortCategory remediation effort class
type EffortCategory string

const (
	EffortSimple   EffortCategory = "SIMPLE"
	EffortMedium   EffortCategory = "MEDIUM"
	EffortComplex  EffortCategory = "COMPLEX"
	EffortCritical EffortCategory = "CRITICAL"
)

// IsValid reports whether c is one of the four defined effort categories.
func (c EffortCategory) IsValid() bool {
	switch c {
	case EffortSimple, EffortMedium, EffortComplex, EffortCritical:
		return true
	}
	return false
}

// The five risk dimensions evaluated for every job run. These key names
// are a wire-format compatibility surface: downstream consumers match on
// them exactly.
const (
	CategoryPodScheduling  = "pod_scheduling"
	CategoryEFSMount       = "efs_mount"
	CategoryMemoryOOMKill  = "memory_oomkill"
	CategoryIAMPermissions = "iam_permissions"
	CategoryDataQuality    = "data_quality"
)

// PredictionCategories returns the five category keys in display order.
func PredictionCategories() []string {
	return []string{
		CategoryPodScheduling,
		CategoryEFSMount,
		CategoryMemoryOOMKill,
		CategoryIAMPermissions,
		CategoryDataQuality,
	}
}

// CategoryPrediction the model's judgment for one risk dimension
type CategoryPrediction struct {
	Probability     int      `json:"probability"` // integer 0-100
	Severity        Severity `json:"severity"`
	RootCause       string   `json:"root_cause"`
	Recommendations []string `json:"recommendations"`
}

// PredictionSet all five category predictions. Pointer fields so a
// missing key in the reply is distinguishable from a zero-valued one.
type PredictionSet struct {
	PodScheduling  *CategoryPrediction `json:"pod_scheduling"`
	EFSMount       *CategoryPrediction `json:"efs_mount"`
	MemoryOOMKill  *CategoryPrediction `json:"memory_oomkill"`
	IAMPermissions *CategoryPrediction `json:"iam_permissions"`
	DataQuality    *CategoryPrediction `json:"data_quality"`
}

// Get returns the prediction for a category key, or nil.
func (p *PredictionSet) Get(category string) *CategoryPrediction {
	switch category {
	case CategoryPodScheduling:
		return p.PodScheduling
	case CategoryEFSMount:
		return p.EFSMount
	case CategoryMemoryOOMKill:
		return p.MemoryOOMKill
	case CategoryIAMPermissions:
		return p.IAMPermissions
	case CategoryDataQuality:
		return p.DataQuality
	}
	return nil
}

// OverallAssessment the executive go/no-go judgment. ShouldExecute is
// owned here; nothing downstream may re-derive or override it.
type OverallAssessment struct {
	ShouldExecute      bool     `json:"should_execute"`
	OverallSeverity    Severity `json:"overall_severity"`
	OverallProbability int      `json:"overall_probability"`
	Recommendation     string   `json:"recommendation"`
}

// EffortEstimate predicted remediation effort
type EffortEstimate struct {
	Category       EffortCategory `json:"category"`
	StoryPoints    int            `json:"story_points"`
	EstimatedHours string         `json:"estimated_hours"`
}

// PredictionResult the full structured prediction. Either every field
// below is present and valid, or no result exists at all; a parse
// failure never yields a partial result.
type PredictionResult struct {
	Predictions       PredictionSet      `json:"predictions"`
	OverallAssessment *OverallAssessment `json:"overall_assessment"`
	EstimatedEffort   *EffortEstimate    `json:"estimated_effort"`
}

// ToJSON converts the result to JSON bytes
func (r *PredictionResult) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// FromJSON converts JSON bytes to the result
func (r *PredictionResult) FromJSON(data []byte) error {
	return json.Unmarshal(data, r)
}

// SavedPrediction envelope written to the output directory and returned
// by the prediction history API
type SavedPrediction struct {
	ID         string            `json:"id"`
	JobName    string            `json:"job_name"`
	Model      string            `json:"model,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
	Prediction *PredictionResult `json:"predictions"`
}

// RunPredictionResponse response of POST /api/v1/predictions/:name
type RunPredictionResponse struct {
	ID         string            `json:"id"`
	JobName    string            `json:"job_name"`
	Prediction *PredictionResult `json:"predictions"`
	CreatedAt  time.Time         `json:"created_at"`
}

// BatchPredictRequest payload for POST /api/v1/predictions
type BatchPredictRequest struct {
	Jobs []string `json:"jobs,omitempty"` // empty = every catalog job
}

// BatchPredictResponse maps job name to enqueued task id
type BatchPredictResponse struct {
	Tasks map[string]string `json:"tasks"`
}

// FailureAnalysis operator-facing pattern analysis of a job's stored
// failures. Analysis is free-form prose from the model; a zero
// FailureCount means the history held no failures and no analysis ran.
type FailureAnalysis struct {
	JobName      string    `json:"job_name"`
	FailureCount int       `json:"failure_count"`
	Analysis     string    `json:"analysis"`
	Model        string    `json:"model,omitempty"`
	GeneratedAt  time.Time `json:"generated_at"`
}
