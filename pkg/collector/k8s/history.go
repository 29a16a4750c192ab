package k8s

import (
	"context"
	"math"
	"time"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"preflight/internal/model"
	"preflight/pkg/failure"
	"preflight/pkg/jobname"
	"preflight/pkg/logger"
)

// HistoryCollector reads batch/v1 Jobs and turns them into execution
// records. Implements interfaces.HistorySource.
type HistoryCollector struct {
	client        kubernetes.Interface
	namespace     string
	labelSelector string
	classifier    *failure.Classifier
}

// NewHistoryCollector creates a history collector for one namespace
func NewHistoryCollector(client kubernetes.Interface, namespace, labelSelector string) *HistoryCollector {
	return &HistoryCollector{
		client:        client,
		namespace:     namespace,
		labelSelector: labelSelector,
		classifier:    failure.NewClassifier(),
	}
}

// CollectHistory lists jobs created at or after since. History is
// optional prediction input: a list failure logs a warning and yields
// no records instead of failing the cycle.
func (c *HistoryCollector) CollectHistory(ctx context.Context, since time.Time) ([]model.ExecutionRecord, error) {
	jobs, err := c.client.BatchV1().Jobs(c.namespace).List(ctx, metav1.ListOptions{
		LabelSelector: c.labelSelector,
	})
	if err != nil {
		logger.WarnCtx(ctx, "failed to list jobs in %s: %v", c.namespace, err)
		return nil, nil
	}

	records := make([]model.ExecutionRecord, 0, len(jobs.Items))
	for i := range jobs.Items {
		job := &jobs.Items[i]
		created := job.CreationTimestamp.Time
		if created.Before(since) {
			continue
		}

		record := model.ExecutionRecord{
			JobName:    jobname.Normalize(job.Name),
			ExecutedAt: created.UTC(),
			Status:     jobStatus(job),
		}

		if job.Status.CompletionTime != nil {
			minutes := job.Status.CompletionTime.Sub(created).Minutes()
			rounded := math.Round(minutes*10) / 10
			record.DurationMinutes = &rounded
		}

		if record.Status == model.ExecutionStatusFailed {
			reason, message := failedCondition(job)
			record.FailureReason = failureText(reason, message)
			if category, ok := c.classifier.Classify(reason, message); ok {
				record.FailureCategory = category
			}
		}

		records = append(records, record)
	}

	return records, nil
}

func jobStatus(job *batchv1.Job) model.ExecutionStatus {
	if job.Status.Succeeded > 0 {
		return model.ExecutionStatusSuccess
	}
	if job.Status.Failed > 0 {
		return model.ExecutionStatusFailed
	}
	return model.ExecutionStatusRunning
}

func failedCondition(job *batchv1.Job) (reason, message string) {
	for _, cond := range job.Status.Conditions {
		if cond.Type == batchv1.JobFailed && cond.Status == corev1.ConditionTrue {
			return cond.Reason, cond.Message
		}
	}
	return "", ""
}

func failureText(reason, message string) string {
	if message != "" {
		return message
	}
	return reason
}
