package models

import "time"

type OrderStatus string

const (
	OrderStatusPending           OrderStatus = "pending"
	OrderStatusProcessing        OrderStatus = "processing"
	OrderStatusPreview           OrderStatus = "preview"
	OrderStatusCompleted         OrderStatus = "completed"
	OrderStatusFailed            OrderStatus = "failed"
	OrderStatusNeedsManualReview OrderStatus = "needs_manual_review"
)

type Order struct {
	ID               string       `bson:"_id,omitempty" json:"id"`
	CorrelationID    string       `bson:"correlationId" json:"correlation_id"`
	Portal           string       `bson:"portal" json:"portal"`
	Status           OrderStatus  `bson:"status" json:"status"`
	Request          OrderRequest `bson:"request" json:"request"`
	ConfirmationID   string       `bson:"confirmationId,omitempty" json:"confirmation_id,omitempty"`
	FailureReason    string       `bson:"failureReason,omitempty" json:"failure_reason,omitempty"`
	PreviewApproved  bool         `bson:"previewApproved" json:"preview_approved"`
	PreviewRef       string       `bson:"previewRef,omitempty" json:"preview_ref,omitempty"`
	Unverified       bool         `bson:"unverified" json:"unverified"`
	AuditRefs        []AuditEntry `bson:"auditRefs,omitempty" json:"audit_refs,omitempty"`
	Attempts         int          `bson:"attempts" json:"attempts"`
	CreatedAt        time.Time    `bson:"createdAt" json:"created_at"`
	UpdatedAt        time.Time    `bson:"updatedAt" json:"updated_at"`
	LastClaimedAt    *time.Time   `bson:"lastClaimedAt,omitempty" json:"last_claimed_at,omitempty"`
	CompletedAt      *time.Time   `bson:"completedAt,omitempty" json:"completed_at,omitempty"`
	EscalatedAt      *time.Time   `bson:"escalatedAt,omitempty" json:"escalated_at,omitempty"`
	DocumentFallback bool         `bson:"documentFallback" json:"document_fallback"`
}

// OrderRequest is the caller-supplied order. It is never mutated after submission;
// the reconciler works on a copy.
type OrderRequest struct {
	CorrelationID string       `bson:"correlationId" json:"correlation_id"`
	Patient       Patient      `bson:"patient" json:"patient"`
	Tests         []TestEntry  `bson:"tests" json:"tests"`
	Diagnoses     []Diagnosis  `bson:"diagnoses" json:"diagnoses"`
	Provider      Provider     `bson:"provider" json:"provider"`
	Options       OrderOptions `bson:"options" json:"options"`
}

type Patient struct {
	FirstName     string  `bson:"firstName" json:"first_name"`
	LastName      string  `bson:"lastName" json:"last_name"`
	DateOfBirth   string  `bson:"dateOfBirth" json:"date_of_birth"`
	Sex           string  `bson:"sex" json:"sex"`
	Phone         string  `bson:"phone" json:"phone"`
	Address       Address `bson:"address" json:"address"`
	PayerCode     string  `bson:"payerCode,omitempty" json:"payer_code,omitempty"`
	PayerMemberID string  `bson:"payerMemberId,omitempty" json:"payer_member_id,omitempty"`
	BillMethod    string  `bson:"billMethod" json:"bill_method"`
}

type Address struct {
	Line1 string `bson:"line1" json:"line1"`
	Line2 string `bson:"line2,omitempty" json:"line2,omitempty"`
	City  string `bson:"city" json:"city"`
	State string `bson:"state" json:"state"`
	Zip   string `bson:"zip" json:"zip"`
}

type TestEntry struct {
	Code    string `bson:"code" json:"code"`
	Display string `bson:"display" json:"display"`
}

type Diagnosis struct {
	Code    string `bson:"code" json:"code"`
	Display string `bson:"display" json:"display"`
}

type Provider struct {
	FirstName string `bson:"firstName" json:"first_name"`
	LastName  string `bson:"lastName" json:"last_name"`
	NPI       string `bson:"npi" json:"npi"`
}

type OrderOptions struct {
	Preview bool `bson:"preview" json:"preview"`
}

const (
	AddressSourceSubmitted   = "submitted"
	AddressSourceEligibility = "eligibility"
)

// EnrichedPatient is the reconciler output: the patient that will actually be
// typed into the portal, plus provenance of the address that was used.
type EnrichedPatient struct {
	Patient
	Verified        bool   `json:"verified"`
	AddressSource   string `json:"address_source"`
	EligibilityNote string `json:"eligibility_note,omitempty"`
}
