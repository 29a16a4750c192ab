// Package notification pushes prediction alerts to a generic JSON
// webhook. Delivery is best-effort; a failed post never fails the
// prediction cycle that triggered it.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"preflight/internal/model"
	"preflight/pkg/config"
	"preflight/pkg/logger"
)

// WebhookNotifier posts risk alerts to a configured HTTP endpoint.
type WebhookNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewWebhookNotifier creates a webhook notifier.
// Priority: config file > environment variable. An empty URL disables
// notifications.
func NewWebhookNotifier() *WebhookNotifier {
	var webhookURL string
	if config.GlobalConfig != nil && config.GlobalConfig.Notification.WebhookURL != "" {
		webhookURL = config.GlobalConfig.Notification.WebhookURL
		logger.Info("Using webhook URL from config file")
	} else {
		webhookURL = os.Getenv("PREFLIGHT_WEBHOOK_URL")
		if webhookURL != "" {
			logger.Info("Using webhook URL from environment variable")
		}
	}

	if webhookURL == "" {
		logger.Warn("Webhook URL not configured (check config file or PREFLIGHT_WEBHOOK_URL env), risk notifications will be disabled")
	}

	return &WebhookNotifier{
		webhookURL: webhookURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// riskAlert wire format of a webhook post
type riskAlert struct {
	JobName            string   `json:"job_name"`
	ShouldExecute      bool     `json:"should_execute"`
	OverallSeverity    string   `json:"overall_severity"`
	OverallProbability int      `json:"overall_probability"`
	Recommendation     string   `json:"recommendation,omitempty"`
	TopRisks           []string `json:"top_risks,omitempty"`
	PredictedAt        string   `json:"predicted_at"`
}

// NotifyRisk posts an alert when the prediction warrants attention:
// a no-go decision or a CRITICAL overall severity. Anything else is a
// no-op.
func (w *WebhookNotifier) NotifyRisk(ctx context.Context, jobName string, result *model.PredictionResult) error {
	if w.webhookURL == "" {
		return nil
	}
	if result == nil || result.OverallAssessment == nil {
		return nil
	}

	assessment := result.OverallAssessment
	if assessment.ShouldExecute && assessment.OverallSeverity != model.SeverityCritical {
		return nil
	}

	alert := riskAlert{
		JobName:            jobName,
		ShouldExecute:      assessment.ShouldExecute,
		OverallSeverity:    string(assessment.OverallSeverity),
		OverallProbability: assessment.OverallProbability,
		Recommendation:     assessment.Recommendation,
		TopRisks:           topRisks(result),
		PredictedAt:        time.Now().UTC().Format(time.RFC3339),
	}

	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal risk alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", w.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send risk notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status code: %d", resp.StatusCode)
	}

	logger.InfoCtx(ctx, "Risk notification sent for job: %s (severity=%s)", jobName, assessment.OverallSeverity)
	return nil
}

// topRisks names the categories at HIGH or CRITICAL severity, in display
// order.
func topRisks(result *model.PredictionResult) []string {
	var risks []string
	for _, category := range model.PredictionCategories() {
		p := result.Predictions.Get(category)
		if p == nil {
			continue
		}
		if p.Severity == model.SeverityHigh || p.Severity == model.SeverityCritical {
			risks = append(risks, category)
		}
	}
	return risks
}
