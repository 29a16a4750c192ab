package predictor

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"preflight/internal/model"
)

const codeFence = "```"

// promptTemplate is the single prompt shape sent to the prediction
// service. Placeholders: job config JSON, history prose, available CPU,
// available memory, cluster name. The schema block spells out the exact
// keys and enums the reply must use; the closing instruction forbids
// any text around the JSON object.
const promptTemplate = `You are an expert in predicting failures for Ab Initio jobs running on AWS EKS.

Analyze this job configuration and predict potential failures:

**Job Configuration:**
` + codeFence + `json
%s
` + codeFence + `

**Historical Execution Data:**
%s

**EKS Cluster State:**
- Available CPU: %s cores
- Available Memory: %s GB
- Cluster: %s

**Analysis Required:**

Predict failures across these categories:
1. **Pod Scheduling** - Will the pod be schedulable given current cluster resources?
2. **EFS Mount** - Will EFS mount succeed?
3. **Memory (OOMKill)** - Will the job exceed memory limits?
4. **IAM Permissions** - Are required AWS permissions in place?
5. **Data Quality** - Will duplicate data cause issues?

For each category, provide:
- **Probability** (0-100%%)
- **Severity** (LOW, MEDIUM, HIGH, CRITICAL)
- **Root Cause** (why this failure might occur)
- **Recommendations** (how to prevent it)

Return your analysis as a JSON object with this structure:
{
  "predictions": {
    "pod_scheduling": {
      "probability": <number>,
      "severity": "<string>",
      "root_cause": "<string>",
      "recommendations": ["<string>", ...]
    },
    "efs_mount": { ... },
    "memory_oomkill": { ... },
    "iam_permissions": { ... },
    "data_quality": { ... }
  },
  "overall_assessment": {
    "should_execute": <boolean>,
    "overall_severity": "<string>",
    "overall_probability": <number>,
    "recommendation": "<string>"
  },
  "estimated_effort": {
    "category": "SIMPLE|MEDIUM|COMPLEX|CRITICAL",
    "story_points": <number>,
    "estimated_hours": "<string>"
  }
}

Provide only the JSON output, no additional text.`

// Compose renders the prediction prompt. It is deterministic: identical
// inputs produce a byte-identical prompt, so prompt contracts stay
// testable without the generative model. A snapshot without capacity
// figures is refused outright.
func Compose(cfg model.JobConfig, hist model.HistoricalContext, snap model.ClusterSnapshot) (string, error) {
	if !snap.Usable() {
		return "", fmt.Errorf("compose prompt for %q: %w", cfg.Name, ErrNoCapacity)
	}

	cfgJSON, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal job config: %w", err)
	}

	return fmt.Sprintf(promptTemplate,
		cfgJSON,
		historyProse(hist),
		figure(snap.AvailableCPUCores),
		figure(snap.AvailableMemoryGB),
		snap.ClusterName,
	), nil
}

// historyProse renders the historical summary block. The no-data marker
// is spelled out so the model is told, not left to infer, that there is
// no history.
func historyProse(hist model.HistoricalContext) string {
	if !hist.HasData {
		return "No historical data available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Historical Context for %s:\n", hist.JobName)
	fmt.Fprintf(&b, "- Total executions: %d\n", hist.TotalExecutions)
	fmt.Fprintf(&b, "- Successes: %d\n", hist.SuccessCount)
	fmt.Fprintf(&b, "- Failures: %d\n", hist.FailureCount)

	if len(hist.RecentFailures) > 0 {
		b.WriteString("\nRecent Failures:\n")
		for _, f := range hist.RecentFailures {
			fmt.Fprintf(&b, "  - %s: %s\n", f.ExecutedAt.UTC().Format("2006-01-02"), f.Reason)
		}
	}

	if hist.AvgResources != nil {
		b.WriteString("\nAverage Resource Usage (Successful Runs):\n")
		fmt.Fprintf(&b, "  - Memory: %.1f GB\n", hist.AvgResources.PeakMemoryGB)
		fmt.Fprintf(&b, "  - CPU: %.1f cores\n", hist.AvgResources.AvgCPUCores)
		fmt.Fprintf(&b, "  - Storage: %.1f GB\n", hist.AvgResources.StorageUsedGB)
	}

	return b.String()
}

// figure formats a capacity number without a trailing ".0".
func figure(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
