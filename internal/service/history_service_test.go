package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"preflight/internal/model"
	"preflight/pkg/predictor"
)

func testHistoryService() *HistoryService {
	// No repository and no collector: these tests exercise validation,
	// which runs before any storage access.
	return NewHistoryService(nil, nil, 30*24*time.Hour)
}

func execRecord(status model.ExecutionStatus) model.ExecutionRecord {
	return model.ExecutionRecord{
		JobName:    "daily-etl-pipeline-a1b2c3",
		ExecutedAt: time.Date(2026, 8, 1, 2, 0, 0, 0, time.UTC),
		Status:     status,
	}
}

// TestNormalizeRecordsUppercasesStatus verifies a lowercase status is
// folded onto the declared enum instead of slipping past the buckets.
func TestNormalizeRecordsUppercasesStatus(t *testing.T) {
	svc := testHistoryService()
	records := []model.ExecutionRecord{execRecord("success"), execRecord("Failed")}

	require.NoError(t, svc.normalizeRecords(records))

	assert.Equal(t, model.ExecutionStatusSuccess, records[0].Status)
	assert.Equal(t, model.ExecutionStatusFailed, records[1].Status)
}

// TestNormalizeRecordsRejectsUnknownStatus verifies a status outside the
// enum fails validation instead of being stored.
func TestNormalizeRecordsRejectsUnknownStatus(t *testing.T) {
	svc := testHistoryService()
	records := []model.ExecutionRecord{execRecord("SUCCEEDED")}

	err := svc.normalizeRecords(records)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRecord)
	assert.Contains(t, err.Error(), "SUCCEEDED")
}

// TestNormalizeRecordsRejectsMissingFields verifies the name and
// timestamp checks still fire.
func TestNormalizeRecordsRejectsMissingFields(t *testing.T) {
	svc := testHistoryService()

	noName := execRecord(model.ExecutionStatusSuccess)
	noName.JobName = ""
	assert.ErrorIs(t, svc.normalizeRecords([]model.ExecutionRecord{noName}), ErrInvalidRecord)

	noTime := execRecord(model.ExecutionStatusSuccess)
	noTime.ExecutedAt = time.Time{}
	assert.ErrorIs(t, svc.normalizeRecords([]model.ExecutionRecord{noTime}), ErrInvalidRecord)
}

// TestNormalizeRecordsBackfillsFailureCategory verifies an
// uncategorized failure picks up a category from its reason.
func TestNormalizeRecordsBackfillsFailureCategory(t *testing.T) {
	svc := testHistoryService()
	rec := execRecord(model.ExecutionStatusFailed)
	rec.FailureReason = "OOMKilled"
	records := []model.ExecutionRecord{rec}

	require.NoError(t, svc.normalizeRecords(records))

	assert.Equal(t, model.CategoryMemoryOOMKill, records[0].FailureCategory)
}

// TestIngestedRecordsPartitionSummaryCounts verifies that after
// normalization every record lands in exactly one status bucket, so the
// summarized counts add up to the total.
func TestIngestedRecordsPartitionSummaryCounts(t *testing.T) {
	svc := testHistoryService()
	records := []model.ExecutionRecord{
		execRecord("success"),
		execRecord(model.ExecutionStatusSuccess),
		execRecord("failed"),
		execRecord("running"),
	}
	for i := range records {
		records[i].ExecutedAt = records[i].ExecutedAt.Add(time.Duration(i) * time.Hour)
	}

	require.NoError(t, svc.normalizeRecords(records))

	hist := predictor.Summarize(records, "daily-etl-pipeline")
	assert.Equal(t, 4, hist.TotalExecutions)
	assert.Equal(t, hist.TotalExecutions, hist.SuccessCount+hist.FailureCount+hist.RunningCount)
	assert.Equal(t, 2, hist.SuccessCount)
}

// TestIngestRecordsRejectsBeforeStorage verifies an invalid batch fails
// fast without touching the store.
func TestIngestRecordsRejectsBeforeStorage(t *testing.T) {
	svc := testHistoryService()

	_, err := svc.IngestRecords(context.Background(), []model.ExecutionRecord{execRecord("UNKNOWN")})

	assert.ErrorIs(t, err, ErrInvalidRecord)
}
