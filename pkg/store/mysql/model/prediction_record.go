package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// PredictionRecord MySQL model for the prediction_records table. The
// full structured result is stored as JSON; the go/no-go columns are
// duplicated out of it so queries never have to parse the blob.
type PredictionRecord struct {
	ID                 int64      `gorm:"primaryKey;autoIncrement" json:"-"`
	PredictionID       string     `gorm:"column:prediction_id;type:varchar(64);not null;uniqueIndex:idx_prediction_id" json:"id"`
	JobName            string     `gorm:"column:job_name;type:varchar(255);not null;index:idx_job_created,priority:1" json:"job_name"`
	Model              string     `gorm:"column:model;type:varchar(100)" json:"model,omitempty"`
	ShouldExecute      bool       `gorm:"column:should_execute;not null" json:"should_execute"`
	OverallSeverity    string     `gorm:"column:overall_severity;type:varchar(20);not null" json:"overall_severity"`
	OverallProbability int        `gorm:"column:overall_probability;not null" json:"overall_probability"`
	Result             ResultJSON `gorm:"column:result;type:json;not null" json:"result"`
	CreatedAt          time.Time  `gorm:"column:created_at;type:datetime(3);not null;default:CURRENT_TIMESTAMP(3);index:idx_job_created,priority:2" json:"created_at"`
}

// TableName specifies the table name for PredictionRecord
func (PredictionRecord) TableName() string {
	return "prediction_records"
}

// ResultJSON full prediction result stored as a JSON column. Kept as
// raw bytes so the stored document round-trips without re-marshaling.
type ResultJSON json.RawMessage

// Value implements driver.Valuer interface for ResultJSON
func (r ResultJSON) Value() (driver.Value, error) {
	if len(r) == 0 {
		return nil, nil
	}
	return []byte(r), nil
}

// Scan implements sql.Scanner interface for ResultJSON
func (r *ResultJSON) Scan(value interface{}) error {
	if value == nil {
		*r = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		*r = append((*r)[:0], v...)
	case string:
		*r = ResultJSON(v)
	default:
		return fmt.Errorf("failed to scan ResultJSON: unsupported type %T", value)
	}
	return nil
}

// MarshalJSON returns the stored document verbatim
func (r ResultJSON) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return []byte(r), nil
}

// UnmarshalJSON stores the document verbatim
func (r *ResultJSON) UnmarshalJSON(data []byte) error {
	*r = append((*r)[:0], data...)
	return nil
}
