package model

import "time"

// FailureSample one recent failure, reduced for the prompt
type FailureSample struct {
	ExecutedAt time.Time `json:"executed_at"`
	Reason     string    `json:"reason"`
}

// ResourceAverages arithmetic means over successful runs that carry a
// resource snapshot. Absent entirely when no such run exists.
type ResourceAverages struct {
	PeakMemoryGB  float64 `json:"peak_memory_gb"`
	AvgCPUCores   float64 `json:"avg_cpu_cores"`
	StorageUsedGB float64 `json:"storage_used_gb"`
}

// HistoricalContext derived summary of one job's execution history.
// Recomputed per prediction cycle, never persisted. HasData=false is the
// explicit no-data marker: callers must not read the zero counts as
// "zero risk".
type HistoricalContext struct {
	JobName         string            `json:"job_name"`
	HasData         bool              `json:"has_data"`
	TotalExecutions int               `json:"total_executions"`
	SuccessCount    int               `json:"success_count"`
	FailureCount    int               `json:"failure_count"`
	RunningCount    int               `json:"running_count"`
	RecentFailures  []FailureSample   `json:"recent_failures,omitempty"`
	AvgResources    *ResourceAverages `json:"avg_resources,omitempty"`
}
