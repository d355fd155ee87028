// Package retrypolicy is the single decision point for what happens after a
// stage fails: retry with backoff, refresh the session first, or escalate.
package retrypolicy

import (
	"fmt"
	"labbridge-service/internal/app/config"
	"labbridge-service/internal/app/models"
	"labbridge-service/internal/pkg/exceptions"
	"time"
)

type Policy struct {
	maxAttempts int
	backoffBase time.Duration
	backoffCap  time.Duration
}

func NewPolicy(internalConfig *config.InternalConfig) *Policy {
	return &Policy{
		maxAttempts: internalConfig.Retry.MaxAttempts,
		backoffBase: time.Duration(internalConfig.Retry.BackoffBaseMs) * time.Millisecond,
		backoffCap:  time.Duration(internalConfig.Retry.BackoffCapMs) * time.Millisecond,
	}
}

// Decide classifies err and returns what the worker should do with the order.
// attempt is 1-based: the failure being decided on is attempt N.
//
// Transient failures retry with exponential backoff until the attempt budget
// is spent, then escalate to a human. Structural failures never retry; a
// portal-side validation rejection in particular will fail identically every
// time, so it escalates with the document fallback. Soft failures are not
// supposed to reach this point, the stages absorb them; one that does is
// treated as transient.
func (p *Policy) Decide(err error, attempt int, stage models.NavigationStage) models.RetryDecision {
	class := exceptions.ClassOf(err)

	switch class {
	case models.FailureStructural:
		return models.RetryDecision{
			Class:      models.FailureStructural,
			Retry:      false,
			Escalation: p.structuralTarget(err),
			Reason:     err.Error(),
		}
	case models.FailureSoft:
		class = models.FailureTransient
	}

	if attempt >= p.maxAttempts {
		return models.RetryDecision{
			Class:      class,
			Retry:      false,
			Escalation: models.EscalateHuman,
			Reason:     fmt.Sprintf("attempt budget exhausted after %d attempts: %s", attempt, err.Error()),
		}
	}

	return models.RetryDecision{
		Class:   class,
		Retry:   true,
		Backoff: p.backoff(attempt),
		// A transient failure before the patient stages usually means the
		// session died; start the next attempt from a fresh login.
		RefreshSession: stage == models.StageUnauthenticated || stage == models.StageAuthenticated,
		Reason:         err.Error(),
	}
}

// structuralTarget routes portal validation rejections to the document
// fallback: the order data itself was refused, so a human needs a form, not a
// rerun. Everything else structural goes straight to a human.
func (p *Policy) structuralTarget(err error) models.EscalationTarget {
	if custom, ok := exceptions.AsCustomError(err); ok && custom.IsPortalValidation {
		return models.EscalateDocument
	}
	return models.EscalateHuman
}

func (p *Policy) backoff(attempt int) time.Duration {
	backoff := p.backoffBase << (attempt - 1)
	if backoff > p.backoffCap || backoff <= 0 {
		return p.backoffCap
	}
	return backoff
}
