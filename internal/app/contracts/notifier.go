package contracts

import (
	"context"
	"labbridge-service/internal/app/models"
	"time"
)

// EscalationPayload is everything a human needs to pick up a failed order.
type EscalationPayload struct {
	OrderID       string             `json:"order_id"`
	CorrelationID string             `json:"correlation_id"`
	Portal        string             `json:"portal"`
	Patient       models.Patient     `json:"patient"`
	Tests         []models.TestEntry `json:"tests"`
	Diagnoses     []models.Diagnosis `json:"diagnoses"`
	FailureReason string             `json:"failure_reason"`
	ScreenshotURL string             `json:"screenshot_url,omitempty"`
	EscalatedAt   time.Time          `json:"escalated_at"`
}

// EscalationNotifier hands an unresolved failure to the human-notification
// collaborator. Delivery mechanics live outside this service.
type EscalationNotifier interface {
	PublishEscalation(ctx context.Context, payload *EscalationPayload) error
}

// DocumentFallback asks the offline document generator to produce a manual
// submission form for an order the automation abandoned.
type DocumentFallback interface {
	RequestDocument(ctx context.Context, payload *EscalationPayload) error
}
