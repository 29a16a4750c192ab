// Property-based tests for display classification totality.
// These verify universal properties that should hold across all inputs.
package predictor

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"preflight/internal/model"
)

// TestProperty_BandTotality tests that every probability in [0,100]
// maps to exactly one of the three risk bands, with the documented
// boundaries.
func TestProperty_BandTotality(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("every probability maps to exactly one band", prop.ForAll(
		func(probability int) bool {
			band := BandFor(probability)
			switch band {
			case RiskBandHigh:
				return probability >= 70
			case RiskBandMedium:
				return probability >= 40 && probability < 70
			case RiskBandLow:
				return probability < 40
			}
			return false
		},
		gen.IntRange(0, 100),
	))

	properties.Property("band boundaries are stable", prop.ForAll(
		func(probability int) bool {
			// Same input twice gives the same band
			return BandFor(probability) == BandFor(probability)
		},
		gen.IntRange(-50, 150),
	))

	properties.TestingRun(t)
}

// TestProperty_SeverityColorTotality tests that each defined severity
// maps to exactly one non-reset display color.
func TestProperty_SeverityColorTotality(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	severities := []model.Severity{
		model.SeverityLow,
		model.SeverityMedium,
		model.SeverityHigh,
		model.SeverityCritical,
	}

	properties.Property("every defined severity has a dedicated color", prop.ForAll(
		func(idx int) bool {
			color := SeverityColor(severities[idx])
			if color == ansiReset {
				return false
			}
			// Each severity keeps its own color: no two collapse together
			for other := range severities {
				if other != idx && SeverityColor(severities[other]) == color {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, len(severities)-1),
	))

	properties.Property("unknown severities paint with the terminal default", prop.ForAll(
		func(raw string) bool {
			severity := model.Severity(raw)
			if severity.IsValid() {
				return true
			}
			return SeverityColor(severity) == ansiReset
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
