// Property-based tests for job name normalization.
package jobname

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestProperty_NormalizeRoundTrip tests that for any base and suffix,
// normalizing base+"-"+suffix recovers the base.
func TestProperty_NormalizeRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.MaxSize = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("base is recovered from base-suffix", prop.ForAll(
		func(base string, suffix string) bool {
			return Normalize(base+"-"+suffix) == base
		},
		gen.RegexMatch(`[a-z0-9_]+(-[a-z0-9_]+)*`),
		gen.RegexMatch(`[a-z0-9]+`), // generated run suffixes never contain '-'
	))

	properties.Property("names without dashes are unchanged", prop.ForAll(
		func(name string) bool {
			return Normalize(name) == name
		},
		gen.RegexMatch(`[a-z0-9_]*`),
	))

	properties.Property("result is always a prefix of the input", prop.ForAll(
		func(name string) bool {
			return strings.HasPrefix(name, Normalize(name))
		},
		gen.RegexMatch(`[a-z0-9_-]*`),
	))

	properties.TestingRun(t)
}
