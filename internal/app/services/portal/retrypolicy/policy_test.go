package retrypolicy

import (
	"errors"
	"labbridge-service/internal/app/config"
	"labbridge-service/internal/app/models"
	"labbridge-service/internal/pkg/exceptions"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestPolicy() *Policy {
	return NewPolicy(&config.InternalConfig{
		Retry: config.Retry{
			MaxAttempts:   3,
			BackoffBaseMs: 2000,
			BackoffCapMs:  60000,
		},
	})
}

func TestDecideTransientRetriesWithExponentialBackoff(t *testing.T) {
	policy := newTestPolicy()
	err := exceptions.ErrInteractionTimeout(errors.New("timeout"), "click order.submit")

	first := policy.Decide(err, 1, models.StageOrderDetails)
	second := policy.Decide(err, 2, models.StageOrderDetails)

	assert.True(t, first.Retry)
	assert.Equal(t, 2*time.Second, first.Backoff)
	assert.True(t, second.Retry)
	assert.Equal(t, 4*time.Second, second.Backoff)
	assert.False(t, first.RefreshSession)
	assert.Equal(t, models.EscalateNone, first.Escalation)
}

func TestDecideTransientBudgetExhaustedEscalatesToHuman(t *testing.T) {
	policy := newTestPolicy()
	err := exceptions.ErrInteractionTimeout(errors.New("timeout"), "click order.submit")

	decision := policy.Decide(err, 3, models.StageOrderDetails)

	assert.False(t, decision.Retry)
	assert.Equal(t, models.EscalateHuman, decision.Escalation)
	assert.NotEmpty(t, decision.Reason)
}

func TestDecideBackoffIsCapped(t *testing.T) {
	policy := NewPolicy(&config.InternalConfig{
		Retry: config.Retry{MaxAttempts: 10, BackoffBaseMs: 2000, BackoffCapMs: 10000},
	})
	err := exceptions.ErrNavigationFailed(errors.New("502"), "https://portal.example.com")

	decision := policy.Decide(err, 6, models.StageOrderDetails)

	assert.True(t, decision.Retry)
	assert.Equal(t, 10*time.Second, decision.Backoff)
}

func TestDecideStructuralNeverRetries(t *testing.T) {
	policy := newTestPolicy()
	err := exceptions.ErrElementNotFound("order.submit")

	decision := policy.Decide(err, 1, models.StageOrderDetails)

	assert.False(t, decision.Retry)
	assert.Equal(t, models.FailureStructural, decision.Class)
	assert.Equal(t, models.EscalateHuman, decision.Escalation)
}

func TestDecidePortalValidationGoesToDocumentFallback(t *testing.T) {
	policy := newTestPolicy()
	err := exceptions.ErrPortalValidation("Diagnosis code does not support medical necessity")

	decision := policy.Decide(err, 1, models.StageValidated)

	assert.False(t, decision.Retry)
	assert.Equal(t, models.EscalateDocument, decision.Escalation)
}

func TestDecideAuthStageFailureRefreshesSession(t *testing.T) {
	policy := newTestPolicy()
	err := exceptions.ErrNavigationFailed(errors.New("connection reset"), "https://portal.example.com/login")

	decision := policy.Decide(err, 1, models.StageUnauthenticated)

	assert.True(t, decision.Retry)
	assert.True(t, decision.RefreshSession)
}

func TestDecideUnclassifiedErrorIsTransient(t *testing.T) {
	policy := newTestPolicy()

	decision := policy.Decide(errors.New("driver: bad connection"), 1, models.StageOrderDetails)

	assert.True(t, decision.Retry)
	assert.Equal(t, models.FailureTransient, decision.Class)
}

func TestDecideSoftErrorFallsBackToTransientHandling(t *testing.T) {
	policy := newTestPolicy()
	err := exceptions.ErrOracleUnavailable(errors.New("503"))

	decision := policy.Decide(err, 1, models.StageAuthenticated)

	assert.True(t, decision.Retry)
	assert.Equal(t, models.FailureTransient, decision.Class)
}
