package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ExecutionRecord MySQL model for the execution_records table. One row
// per job run; job_name + executed_at is unique so history sync can
// upsert the same run repeatedly without duplicating it.
type ExecutionRecord struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	JobName         string          `gorm:"column:job_name;type:varchar(255);not null;uniqueIndex:idx_job_executed,priority:1" json:"job_name"`
	ExecutedAt      time.Time       `gorm:"column:executed_at;type:datetime(3);not null;uniqueIndex:idx_job_executed,priority:2;index:idx_executed_at" json:"executed_at"`
	Status          string          `gorm:"column:status;type:varchar(50);not null;index:idx_status" json:"status"`
	DurationMinutes *float64        `gorm:"column:duration_minutes" json:"duration_minutes,omitempty"`
	FailureReason   string          `gorm:"column:failure_reason;type:text" json:"failure_reason,omitempty"`
	FailureCategory string          `gorm:"column:failure_category;type:varchar(100)" json:"failure_category,omitempty"`
	Resources       *ResourcesJSON  `gorm:"column:resources;type:json" json:"resources,omitempty"`
	CreatedAt       time.Time       `gorm:"column:created_at;type:datetime(3);not null;default:CURRENT_TIMESTAMP(3)" json:"created_at"`
}

// TableName specifies the table name for ExecutionRecord
func (ExecutionRecord) TableName() string {
	return "execution_records"
}

// ResourcesJSON resource usage stored as a JSON column
type ResourcesJSON struct {
	PeakMemoryGB  float64 `json:"peak_memory_gb"`
	AvgCPUCores   float64 `json:"avg_cpu_cores"`
	StorageUsedGB float64 `json:"storage_used_gb"`
}

// Value implements driver.Valuer interface for ResourcesJSON
func (r ResourcesJSON) Value() (driver.Value, error) {
	return json.Marshal(r)
}

// Scan implements sql.Scanner interface for ResourcesJSON
func (r *ResourcesJSON) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to scan ResourcesJSON: unsupported type %T", value)
	}

	return json.Unmarshal(bytes, r)
}
