package predictor

import (
	"fmt"
	"strings"

	"preflight/internal/model"
)

// RiskBand coarse probability classification used for display.
type RiskBand string

const (
	RiskBandHigh   RiskBand = "HIGH"
	RiskBandMedium RiskBand = "MEDIUM"
	RiskBandLow    RiskBand = "LOW"
)

// BandFor maps a probability percentage to its risk band. Defined for
// every int so display code never has an unmapped input.
func BandFor(probability int) RiskBand {
	switch {
	case probability >= 70:
		return RiskBandHigh
	case probability >= 40:
		return RiskBandMedium
	default:
		return RiskBandLow
	}
}

const (
	ansiHeader = "\033[95m"
	ansiCyan   = "\033[96m"
	ansiGreen  = "\033[92m"
	ansiYellow = "\033[93m"
	ansiRed    = "\033[91m"
	ansiBold   = "\033[1m"
	ansiReset  = "\033[0m"
)

// SeverityColor returns the ANSI code for a severity's display class.
// Unknown severities paint with the terminal default.
func SeverityColor(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return ansiRed
	case model.SeverityHigh:
		return ansiYellow
	case model.SeverityMedium:
		return ansiCyan
	case model.SeverityLow:
		return ansiGreen
	}
	return ansiReset
}

func probabilityColor(probability int) string {
	switch BandFor(probability) {
	case RiskBandHigh:
		return ansiRed
	case RiskBandMedium:
		return ansiYellow
	}
	return ansiGreen
}

// Presenter renders prediction results for terminal display. It is a
// read-only view: the go/no-go decision and every figure come straight
// from the result, never recomputed here.
type Presenter struct {
	colorize bool
}

// NewPresenter returns a presenter. With colorize false the output
// carries no ANSI escapes, for logs and tests.
func NewPresenter(colorize bool) *Presenter {
	return &Presenter{colorize: colorize}
}

// Render formats the full prediction report for one job.
func (p *Presenter) Render(jobName string, result *model.PredictionResult) string {
	var b strings.Builder

	if result == nil {
		b.WriteString(p.paint(ansiRed, "No predictions available"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(p.paint(ansiHeader+ansiBold, fmt.Sprintf("=== Prediction Results for %s ===", jobName)))
	b.WriteString("\n\n")

	p.renderOverall(&b, result.OverallAssessment)
	p.renderCategories(&b, &result.Predictions)
	p.renderEffort(&b, result.EstimatedEffort)

	return b.String()
}

func (p *Presenter) renderOverall(b *strings.Builder, overall *model.OverallAssessment) {
	if overall == nil {
		return
	}

	decision := "SAFE TO EXECUTE"
	icon := "✓"
	color := ansiGreen
	if !overall.ShouldExecute {
		decision = "DO NOT EXECUTE"
		icon = "✗"
		color = ansiRed
	}

	b.WriteString(p.paint(color+ansiBold, fmt.Sprintf("%s Overall Decision: %s", icon, decision)))
	b.WriteString("\n")
	fmt.Fprintf(b, "Severity: %s\n", p.paint(SeverityColor(overall.OverallSeverity), string(overall.OverallSeverity)))
	fmt.Fprintf(b, "Recommendation: %s\n\n", overall.Recommendation)
}

func (p *Presenter) renderCategories(b *strings.Builder, set *model.PredictionSet) {
	b.WriteString(p.paint(ansiBold, "Detailed Analysis:"))
	b.WriteString("\n\n")

	for _, category := range model.PredictionCategories() {
		pred := set.Get(category)
		if pred == nil {
			continue
		}

		b.WriteString(p.paint(ansiBold, titleWords(category)))
		b.WriteString("\n")
		fmt.Fprintf(b, "  Probability: %s\n", p.paint(probabilityColor(pred.Probability), fmt.Sprintf("%d%%", pred.Probability)))
		fmt.Fprintf(b, "  Severity: %s\n", p.paint(SeverityColor(pred.Severity), string(pred.Severity)))
		fmt.Fprintf(b, "  Cause: %s\n", pred.RootCause)

		if len(pred.Recommendations) > 0 {
			b.WriteString("  Recommendations:\n")
			for _, rec := range pred.Recommendations {
				fmt.Fprintf(b, "    • %s\n", rec)
			}
		}
		b.WriteString("\n")
	}
}

func (p *Presenter) renderEffort(b *strings.Builder, effort *model.EffortEstimate) {
	if effort == nil {
		return
	}

	b.WriteString(p.paint(ansiBold, "Effort Estimation:"))
	b.WriteString("\n")
	fmt.Fprintf(b, "  Category: %s\n", effort.Category)
	fmt.Fprintf(b, "  Story Points: %d\n", effort.StoryPoints)
	fmt.Fprintf(b, "  Estimated Hours: %s\n\n", effort.EstimatedHours)
}

func (p *Presenter) paint(code, s string) string {
	if !p.colorize {
		return s
	}
	return code + s + ansiReset
}

// titleWords converts a category key like "pod_scheduling" into its
// display heading "Pod Scheduling".
func titleWords(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
