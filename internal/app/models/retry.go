package models

import "time"

// FailureClass groups engine failures by how the retry policy treats them.
type FailureClass string

const (
	FailureTransient  FailureClass = "transient"
	FailureStructural FailureClass = "structural"
	FailureSoft       FailureClass = "soft"
)

// EscalationTarget says where a non-retryable order goes next.
type EscalationTarget string

const (
	EscalateNone     EscalationTarget = ""
	EscalateHuman    EscalationTarget = "human"
	EscalateDocument EscalationTarget = "document"
)

// RetryDecision is the single outcome type every stage consults after a failure.
type RetryDecision struct {
	Class          FailureClass
	Retry          bool
	Backoff        time.Duration
	RefreshSession bool
	Escalation     EscalationTarget
	Reason         string
}
