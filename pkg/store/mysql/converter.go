package mysql

import (
	"encoding/json"
	"fmt"

	"preflight/internal/model"
	storemodel "preflight/pkg/store/mysql/model"
)

// FromExecutionDomain converts a domain ExecutionRecord to its MySQL model
func FromExecutionDomain(rec *model.ExecutionRecord) *storemodel.ExecutionRecord {
	if rec == nil {
		return nil
	}

	row := &storemodel.ExecutionRecord{
		JobName:         rec.JobName,
		ExecutedAt:      rec.ExecutedAt,
		Status:          string(rec.Status),
		DurationMinutes: rec.DurationMinutes,
		FailureReason:   rec.FailureReason,
		FailureCategory: rec.FailureCategory,
	}
	if rec.Resources != nil {
		row.Resources = &storemodel.ResourcesJSON{
			PeakMemoryGB:  rec.Resources.PeakMemoryGB,
			AvgCPUCores:   rec.Resources.AvgCPUCores,
			StorageUsedGB: rec.Resources.StorageUsedGB,
		}
	}
	return row
}

// ToExecutionDomain converts a MySQL ExecutionRecord to the domain model
func ToExecutionDomain(row *storemodel.ExecutionRecord) *model.ExecutionRecord {
	if row == nil {
		return nil
	}

	rec := &model.ExecutionRecord{
		JobName:         row.JobName,
		ExecutedAt:      row.ExecutedAt,
		Status:          model.ExecutionStatus(row.Status),
		DurationMinutes: row.DurationMinutes,
		FailureReason:   row.FailureReason,
		FailureCategory: row.FailureCategory,
	}
	if row.Resources != nil {
		rec.Resources = &model.ResourceUsage{
			PeakMemoryGB:  row.Resources.PeakMemoryGB,
			AvgCPUCores:   row.Resources.AvgCPUCores,
			StorageUsedGB: row.Resources.StorageUsedGB,
		}
	}
	return rec
}

// ToExecutionDomainList converts a slice of MySQL rows to domain records
func ToExecutionDomainList(rows []*storemodel.ExecutionRecord) []model.ExecutionRecord {
	records := make([]model.ExecutionRecord, 0, len(rows))
	for _, row := range rows {
		if rec := ToExecutionDomain(row); rec != nil {
			records = append(records, *rec)
		}
	}
	return records
}

// FromPredictionDomain builds a MySQL PredictionRecord from a parsed
// result. The go/no-go columns are copied out of the result so listing
// queries never parse the JSON blob.
func FromPredictionDomain(saved *model.SavedPrediction) (*storemodel.PredictionRecord, error) {
	if saved == nil || saved.Prediction == nil {
		return nil, fmt.Errorf("prediction result is required")
	}
	if saved.Prediction.OverallAssessment == nil {
		return nil, fmt.Errorf("overall assessment is required")
	}

	blob, err := json.Marshal(saved.Prediction)
	if err != nil {
		return nil, fmt.Errorf("failed to encode prediction result: %w", err)
	}

	assessment := saved.Prediction.OverallAssessment
	return &storemodel.PredictionRecord{
		PredictionID:       saved.ID,
		JobName:            saved.JobName,
		Model:              saved.Model,
		ShouldExecute:      assessment.ShouldExecute,
		OverallSeverity:    string(assessment.OverallSeverity),
		OverallProbability: assessment.OverallProbability,
		Result:             storemodel.ResultJSON(blob),
		CreatedAt:          saved.Timestamp,
	}, nil
}

// ToPredictionDomain converts a MySQL PredictionRecord back to the
// saved-prediction envelope
func ToPredictionDomain(row *storemodel.PredictionRecord) (*model.SavedPrediction, error) {
	if row == nil {
		return nil, nil
	}

	var result model.PredictionResult
	if err := json.Unmarshal([]byte(row.Result), &result); err != nil {
		return nil, fmt.Errorf("failed to decode stored prediction: %w", err)
	}

	return &model.SavedPrediction{
		ID:         row.PredictionID,
		JobName:    row.JobName,
		Model:      row.Model,
		Timestamp:  row.CreatedAt,
		Prediction: &result,
	}, nil
}
