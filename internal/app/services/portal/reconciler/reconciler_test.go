package reconciler

import (
	"context"
	"labbridge-service/internal/app/contracts"
	"labbridge-service/internal/app/models"
	"labbridge-service/internal/pkg/exceptions"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubOracle struct {
	result  *contracts.EligibilityResult
	err     error
	lastReq *contracts.EligibilityRequest
}

func (s *stubOracle) Verify(ctx context.Context, request *contracts.EligibilityRequest) (*contracts.EligibilityResult, error) {
	s.lastReq = request
	return s.result, s.err
}

func submittedPatient() *models.Patient {
	return &models.Patient{
		FirstName:     "Maria",
		LastName:      "Santos",
		DateOfBirth:   "1984-03-12",
		Sex:           "F",
		PayerCode:     "AETNA",
		PayerMemberID: "W1234567",
		BillMethod:    "insurance",
		Address: models.Address{
			Line1: "12 Elm St",
			City:  "Springfield",
			State: "IL",
			Zip:   "62704",
		},
	}
}

func TestEnrichEligibleReplacesAddress(t *testing.T) {
	oracleAddress := models.Address{Line1: "500 Oak Ave", City: "Chatham", State: "IL", Zip: "62629"}
	oracle := &stubOracle{result: &contracts.EligibilityResult{
		Eligible:     true,
		Demographics: &models.Patient{Address: oracleAddress},
	}}
	patient := submittedPatient()

	enriched := NewReconciler(oracle, zap.NewNop()).Enrich(context.Background(), "corr-1", patient)

	assert.True(t, enriched.Verified)
	assert.Equal(t, models.AddressSourceEligibility, enriched.AddressSource)
	assert.Equal(t, oracleAddress, enriched.Address)
	require.NotNil(t, oracle.lastReq)
	assert.Equal(t, "W1234567", oracle.lastReq.PayerMemberID)
}

func TestEnrichNeverMutatesInput(t *testing.T) {
	oracle := &stubOracle{result: &contracts.EligibilityResult{
		Eligible:     true,
		Demographics: &models.Patient{Address: models.Address{Line1: "500 Oak Ave", City: "Chatham", State: "IL", Zip: "62629"}},
	}}
	patient := submittedPatient()
	original := *patient

	NewReconciler(oracle, zap.NewNop()).Enrich(context.Background(), "corr-1", patient)

	assert.Equal(t, original, *patient)
}

func TestEnrichEligibleWithoutDemographicsKeepsSubmittedAddress(t *testing.T) {
	oracle := &stubOracle{result: &contracts.EligibilityResult{Eligible: true}}
	patient := submittedPatient()

	enriched := NewReconciler(oracle, zap.NewNop()).Enrich(context.Background(), "corr-1", patient)

	assert.True(t, enriched.Verified)
	assert.Equal(t, models.AddressSourceSubmitted, enriched.AddressSource)
	assert.Equal(t, patient.Address, enriched.Address)
}

func TestEnrichNotEligiblePassesThroughUnverified(t *testing.T) {
	oracle := &stubOracle{result: &contracts.EligibilityResult{Eligible: false}}
	patient := submittedPatient()

	enriched := NewReconciler(oracle, zap.NewNop()).Enrich(context.Background(), "corr-1", patient)

	assert.False(t, enriched.Verified)
	assert.Equal(t, models.AddressSourceSubmitted, enriched.AddressSource)
	assert.Equal(t, patient.Address, enriched.Address)
	assert.NotEmpty(t, enriched.EligibilityNote)
}

func TestEnrichOracleDownPassesThroughUnverified(t *testing.T) {
	oracle := &stubOracle{err: exceptions.ErrOracleUnavailable(assert.AnError)}
	patient := submittedPatient()

	enriched := NewReconciler(oracle, zap.NewNop()).Enrich(context.Background(), "corr-1", patient)

	assert.False(t, enriched.Verified)
	assert.Equal(t, patient.Address, enriched.Address)
	assert.NotEmpty(t, enriched.EligibilityNote)
}

func TestEnrichWithoutPayerMemberIDSkipsLookup(t *testing.T) {
	oracle := &stubOracle{result: &contracts.EligibilityResult{Eligible: true}}
	patient := submittedPatient()
	patient.PayerMemberID = ""

	enriched := NewReconciler(oracle, zap.NewNop()).Enrich(context.Background(), "corr-1", patient)

	assert.False(t, enriched.Verified)
	assert.Nil(t, oracle.lastReq)
	assert.Equal(t, models.AddressSourceSubmitted, enriched.AddressSource)
	assert.NotEmpty(t, enriched.EligibilityNote)
}

func TestEnrichFillsMissingPhoneFromOracle(t *testing.T) {
	oracle := &stubOracle{result: &contracts.EligibilityResult{
		Eligible: true,
		Demographics: &models.Patient{
			Phone:   "2175550199",
			Address: models.Address{Line1: "500 Oak Ave", City: "Chatham", State: "IL", Zip: "62629"},
		},
	}}
	patient := submittedPatient()
	patient.Phone = ""

	enriched := NewReconciler(oracle, zap.NewNop()).Enrich(context.Background(), "corr-1", patient)

	assert.Equal(t, "2175550199", enriched.Phone)
}

func TestEnrichWithoutOracleConfigured(t *testing.T) {
	enriched := NewReconciler(nil, zap.NewNop()).Enrich(context.Background(), "corr-1", submittedPatient())

	assert.False(t, enriched.Verified)
	assert.Equal(t, models.AddressSourceSubmitted, enriched.AddressSource)
}
