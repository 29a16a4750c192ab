package model

import (
	"encoding/json"
	"time"
)

// PredictionPhase lifecycle phase of one prediction cycle.
// The lifecycle is linear: COMPOSED -> SENT -> AWAITING_REPLY ->
// {PARSED | PARSE_FAILED | SERVICE_ERROR}. The three end states are
// terminal; nothing retries a finished cycle.
type PredictionPhase string

const (
	PhaseComposed      PredictionPhase = "COMPOSED"       // prompt assembled
	PhaseSent          PredictionPhase = "SENT"           // request issued
	PhaseAwaitingReply PredictionPhase = "AWAITING_REPLY" // waiting on the service
	PhaseParsed        PredictionPhase = "PARSED"         // result validated
	PhaseParseFailed   PredictionPhase = "PARSE_FAILED"   // reply rejected
	PhaseServiceError  PredictionPhase = "SERVICE_ERROR"  // boundary failed
)

// Terminal reports whether the phase ends the cycle.
func (p PredictionPhase) Terminal() bool {
	switch p {
	case PhaseParsed, PhaseParseFailed, PhaseServiceError:
		return true
	}
	return false
}

// PredictionEvent one lifecycle transition, streamed to subscribers
type PredictionEvent struct {
	CycleID string          `json:"cycle_id"`
	JobName string          `json:"job_name"`
	Phase   PredictionPhase `json:"phase"`
	Error   string          `json:"error,omitempty"`
	At      time.Time       `json:"at"`
}

// ToJSON converts the event to JSON bytes
func (e *PredictionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}
