package contracts

import (
	"context"
	"labbridge-service/internal/app/models"
)

type EligibilityRequest struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	DateOfBirth   string `json:"date_of_birth"`
	PayerCode     string `json:"payer_code"`
	PayerMemberID string `json:"payer_member_id"`
}

type EligibilityResult struct {
	Eligible     bool            `json:"eligible"`
	Demographics *models.Patient `json:"demographics,omitempty"`
}

// EligibilityClient queries the external eligibility oracle for a patient's
// authoritative coverage and demographic record.
type EligibilityClient interface {
	Verify(ctx context.Context, request *EligibilityRequest) (*EligibilityResult, error)
}
