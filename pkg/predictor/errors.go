package predictor

import (
	"errors"
	"fmt"
)

// ErrNoCapacity refuses prompt composition when the cluster snapshot is
// missing or empty. Substituting zero capacity would skew every
// scheduling prediction, so the cycle fails fast instead.
var ErrNoCapacity = errors.New("cluster capacity snapshot unavailable")

// excerptLimit bounds the diagnostic excerpt carried by a syntax error.
const excerptLimit = 500

// ServiceError wraps a prediction-service boundary failure (transport,
// auth, quota, timeout). Opaque to callers; terminal for the cycle.
type ServiceError struct {
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("prediction service: %v", e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// ParseSyntaxError means the reply was not parseable JSON. Excerpt holds
// at most the first 500 characters of the raw reply for diagnostics.
type ParseSyntaxError struct {
	Excerpt string
	Err     error
}

func (e *ParseSyntaxError) Error() string {
	return fmt.Sprintf("reply is not valid JSON: %v", e.Err)
}

func (e *ParseSyntaxError) Unwrap() error {
	return e.Err
}

// SchemaViolation means the reply parsed but failed the required shape
// or enum contract. Distinct from ParseSyntaxError so operators can tell
// "the model violated the contract" from "the reply was not JSON".
type SchemaViolation struct {
	Reason string
}

func (e *SchemaViolation) Error() string {
	return fmt.Sprintf("reply violates the prediction schema: %s", e.Reason)
}

// excerpt returns at most the first excerptLimit characters of raw,
// cut on a rune boundary so a multi-byte reply never yields a mangled
// trailing sequence.
func excerpt(raw string) string {
	if len(raw) <= excerptLimit {
		return raw
	}
	runes := []rune(raw)
	if len(runes) <= excerptLimit {
		return raw
	}
	return string(runes[:excerptLimit])
}
