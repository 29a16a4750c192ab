package predictor

import (
	"sort"

	"preflight/internal/model"
)

// maxRecentFailures caps the failure samples embedded into the prompt.
const maxRecentFailures = 3

// Summarize reduces execution records to the historical context for one
// job. Records are matched by exact name equality; the caller applies
// the lookback window when fetching them. An empty match returns the
// explicit no-data marker, never zero counts pretending to be history.
func Summarize(records []model.ExecutionRecord, jobName string) model.HistoricalContext {
	hist := model.HistoricalContext{JobName: jobName}

	var filtered []model.ExecutionRecord
	for _, r := range records {
		if r.JobName == jobName {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) == 0 {
		return hist
	}

	hist.HasData = true
	hist.TotalExecutions = len(filtered)

	var failures []model.ExecutionRecord
	var sums model.ResourceAverages
	measured := 0

	for _, r := range filtered {
		switch r.Status {
		case model.ExecutionStatusSuccess:
			hist.SuccessCount++
			if r.Resources != nil {
				sums.PeakMemoryGB += r.Resources.PeakMemoryGB
				sums.AvgCPUCores += r.Resources.AvgCPUCores
				sums.StorageUsedGB += r.Resources.StorageUsedGB
				measured++
			}
		case model.ExecutionStatusFailed:
			hist.FailureCount++
			failures = append(failures, r)
		case model.ExecutionStatusRunning:
			hist.RunningCount++
		}
	}

	sort.SliceStable(failures, func(i, j int) bool {
		return failures[i].ExecutedAt.After(failures[j].ExecutedAt)
	})
	if len(failures) > maxRecentFailures {
		failures = failures[:maxRecentFailures]
	}
	for _, f := range failures {
		hist.RecentFailures = append(hist.RecentFailures, model.FailureSample{
			ExecutedAt: f.ExecutedAt,
			Reason:     f.FailureReason,
		})
	}

	// Averages only over successful runs that carry a snapshot; absent
	// otherwise so a missing denominator can never become NaN or zero.
	if measured > 0 {
		hist.AvgResources = &model.ResourceAverages{
			PeakMemoryGB:  sums.PeakMemoryGB / float64(measured),
			AvgCPUCores:   sums.AvgCPUCores / float64(measured),
			StorageUsedGB: sums.StorageUsedGB / float64(measured),
		}
	}

	return hist
}
