// Package reconciler checks the submitted patient against the eligibility
// oracle and decides which demographics get typed into the portal.
package reconciler

import (
	"context"
	"labbridge-service/internal/app/contracts"
	"labbridge-service/internal/app/models"
	"labbridge-service/internal/pkg/constvars"

	"go.uber.org/zap"
)

type Reconciler struct {
	oracle contracts.EligibilityClient
	log    *zap.Logger
}

func NewReconciler(oracle contracts.EligibilityClient, log *zap.Logger) *Reconciler {
	return &Reconciler{oracle: oracle, log: log}
}

// Enrich returns the patient to enter into the portal. When the oracle
// confirms eligibility and returns demographics, the oracle's address wins
// over the submitted one. An unreachable or malformed oracle never blocks the
// order: the submitted demographics pass through flagged as unverified.
// Patients submitted without a payer member id skip the lookup entirely. The
// input patient is never modified.
func (r *Reconciler) Enrich(ctx context.Context, correlationID string, patient *models.Patient) *models.EnrichedPatient {
	enriched := &models.EnrichedPatient{
		Patient:       *patient,
		AddressSource: models.AddressSourceSubmitted,
	}

	if r.oracle == nil {
		enriched.EligibilityNote = "eligibility checking disabled"
		return enriched
	}

	// Without a payer member id the oracle has nothing to key the lookup on.
	if patient.PayerMemberID == "" {
		enriched.EligibilityNote = "no payer member id, eligibility not checked"
		return enriched
	}

	result, err := r.oracle.Verify(ctx, &contracts.EligibilityRequest{
		FirstName:     patient.FirstName,
		LastName:      patient.LastName,
		DateOfBirth:   patient.DateOfBirth,
		PayerCode:     patient.PayerCode,
		PayerMemberID: patient.PayerMemberID,
	})
	if err != nil {
		r.log.Warn("eligibility oracle unavailable, proceeding unverified",
			zap.String(constvars.LoggingCorrelationIDKey, correlationID),
			zap.Error(err),
		)
		enriched.EligibilityNote = "eligibility oracle unavailable"
		return enriched
	}

	if !result.Eligible {
		r.log.Info("patient not eligible per oracle, proceeding unverified",
			zap.String(constvars.LoggingCorrelationIDKey, correlationID),
		)
		enriched.EligibilityNote = "oracle reported patient not eligible"
		return enriched
	}

	enriched.Verified = true
	if result.Demographics != nil && result.Demographics.Address != (models.Address{}) {
		enriched.Address = result.Demographics.Address
		enriched.AddressSource = models.AddressSourceEligibility
		if patient.Phone == "" && result.Demographics.Phone != "" {
			enriched.Phone = result.Demographics.Phone
		}
	}

	r.log.Info("patient verified against eligibility oracle",
		zap.String(constvars.LoggingCorrelationIDKey, correlationID),
		zap.String("address_source", enriched.AddressSource),
	)
	return enriched
}
