package model

import (
	"encoding/json"
	"time"
)

// ExecutionStatus terminal status of one batch job run
type ExecutionStatus string

const (
	ExecutionStatusSuccess ExecutionStatus = "SUCCESS" // run completed
	ExecutionStatusFailed  ExecutionStatus = "FAILED"  // run failed
	ExecutionStatusRunning ExecutionStatus = "RUNNING" // run still active
)

// IsValid checks whether the status is one of the declared values
func (s ExecutionStatus) IsValid() bool {
	switch s {
	case ExecutionStatusSuccess, ExecutionStatusFailed, ExecutionStatusRunning:
		return true
	}
	return false
}

// ResourceUsage resource usage snapshot of one run
type ResourceUsage struct {
	PeakMemoryGB  float64 `json:"peak_memory_gb"`
	AvgCPUCores   float64 `json:"avg_cpu_cores"`
	StorageUsedGB float64 `json:"storage_used_gb"`
}

// ExecutionRecord one completed or in-progress run of a scheduled job.
// JobName is normalized at ingestion (trailing run-hash segment stripped);
// records are immutable once written.
type ExecutionRecord struct {
	JobName         string          `json:"job_name"`
	ExecutedAt      time.Time       `json:"executed_at"`
	Status          ExecutionStatus `json:"status"`
	DurationMinutes *float64        `json:"duration_minutes,omitempty"`
	FailureReason   string          `json:"failure_reason,omitempty"`
	FailureCategory string          `json:"failure_category,omitempty"`
	Resources       *ResourceUsage  `json:"resources,omitempty"`
}

// IngestRecordsRequest payload for POST /api/v1/records
type IngestRecordsRequest struct {
	Records []ExecutionRecord `json:"records" binding:"required"`
}

// ToJSON converts record to JSON bytes
func (r *ExecutionRecord) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// FromJSON converts JSON bytes to record
func (r *ExecutionRecord) FromJSON(data []byte) error {
	return json.Unmarshal(data, r)
}
