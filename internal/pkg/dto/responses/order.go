package responses

import "labbridge-service/internal/app/models"

type CreateOrder struct {
	OrderID       string `json:"order_id"`
	CorrelationID string `json:"correlation_id"`
	Status        string `json:"status"`
}

type GetOrder struct {
	OrderID        string              `json:"order_id"`
	CorrelationID  string              `json:"correlation_id"`
	Portal         string              `json:"portal"`
	Status         string              `json:"status"`
	ConfirmationID string              `json:"confirmation_id,omitempty"`
	FailureReason  string              `json:"failure_reason,omitempty"`
	Unverified     bool                `json:"unverified"`
	PreviewRef     string              `json:"preview_ref,omitempty"`
	AuditTrail     []models.AuditEntry `json:"audit_trail,omitempty"`
}
