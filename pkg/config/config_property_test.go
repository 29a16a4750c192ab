// Property-based tests for configuration default fallback.
// These verify universal properties that should hold across all inputs.
package config

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestProperty_InvalidValuesFallBackToDefaults tests that non-positive
// tunables fall back to their defaults so the process stays operational.
func TestProperty_InvalidValuesFallBackToDefaults(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.MaxSize = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("non-positive queue tunables fall back to defaults", prop.ForAll(
		func(concurrency, timeout int) bool {
			cfg := &Config{}
			cfg.Queue.Concurrency = concurrency
			cfg.Queue.TaskTimeout = timeout

			cfg.applyDefaults()

			return cfg.Queue.Concurrency == 4 && cfg.Queue.TaskTimeout == 300
		},
		gen.IntRange(-1000, 0),
		gen.IntRange(-1000, 0),
	))

	properties.Property("non-positive predictor tunables fall back to defaults", prop.ForAll(
		func(lookback, scanInterval, horizon int) bool {
			cfg := &Config{}
			cfg.Predictor.LookbackDays = lookback
			cfg.Predictor.ScanInterval = scanInterval
			cfg.Predictor.ScanHorizon = horizon

			cfg.applyDefaults()

			return cfg.Predictor.LookbackDays == 30 &&
				cfg.Predictor.ScanInterval == 300 &&
				cfg.Predictor.ScanHorizon == 3600
		},
		gen.IntRange(-1000, 0),
		gen.IntRange(-1000, 0),
		gen.IntRange(-1000, 0),
	))

	properties.Property("empty model falls back to the pinned default", prop.ForAll(
		func(_ int) bool {
			cfg := &Config{}
			cfg.applyDefaults()
			return cfg.Anthropic.Model == "claude-3-5-sonnet-20241022" &&
				cfg.Anthropic.MaxTokens == 4096 &&
				cfg.Anthropic.TimeoutSeconds == 120
		},
		gen.Const(0),
	))

	properties.TestingRun(t)
}

// TestProperty_ValidValuesArePreserved tests that explicitly configured
// values are never overwritten by defaults.
func TestProperty_ValidValuesArePreserved(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.MaxSize = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("positive tunables are preserved", prop.ForAll(
		func(concurrency, lookback, maxTokens int) bool {
			cfg := &Config{}
			cfg.Queue.Concurrency = concurrency
			cfg.Predictor.LookbackDays = lookback
			cfg.Anthropic.MaxTokens = maxTokens

			cfg.applyDefaults()

			return cfg.Queue.Concurrency == concurrency &&
				cfg.Predictor.LookbackDays == lookback &&
				cfg.Anthropic.MaxTokens == maxTokens
		},
		gen.IntRange(1, 64),
		gen.IntRange(1, 365),
		gen.IntRange(1, 8192),
	))

	properties.Property("configured model and namespace are preserved", prop.ForAll(
		func(_ int) bool {
			cfg := &Config{}
			cfg.Anthropic.Model = "claude-3-haiku-20240307"
			cfg.Cluster.Namespace = "etl"

			cfg.applyDefaults()

			return cfg.Anthropic.Model == "claude-3-haiku-20240307" &&
				cfg.Cluster.Namespace == "etl"
		},
		gen.Const(0),
	))

	properties.TestingRun(t)
}

// TestProperty_ApplyDefaultsIsIdempotent tests that applying defaults twice
// produces the same config as applying them once.
func TestProperty_ApplyDefaultsIsIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.MaxSize = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("applyDefaults is idempotent", prop.ForAll(
		func(concurrency, timeout, lookback, cacheTTL int) bool {
			cfg := &Config{}
			cfg.Queue.Concurrency = concurrency
			cfg.Queue.TaskTimeout = timeout
			cfg.Predictor.LookbackDays = lookback
			cfg.Predictor.CacheTTLSeconds = cacheTTL

			cfg.applyDefaults()
			first := *cfg

			cfg.applyDefaults()

			return cfg.Queue.Concurrency == first.Queue.Concurrency &&
				cfg.Queue.TaskTimeout == first.Queue.TaskTimeout &&
				cfg.Predictor.LookbackDays == first.Predictor.LookbackDays &&
				cfg.Predictor.CacheTTLSeconds == first.Predictor.CacheTTLSeconds
		},
		gen.IntRange(-100, 100),
		gen.IntRange(-100, 100),
		gen.IntRange(-100, 100),
		gen.IntRange(-100, 100),
	))

	properties.TestingRun(t)
}
