package contracts

import (
	"context"
	"labbridge-service/internal/app/models"
)

// OrderRepository is the persistent order/result store. Schema ownership lives
// with the dashboard side; the engine only reads pending work and writes
// status transitions, confirmation ids and audit references.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) (string, error)
	FindByID(ctx context.Context, orderID string) (*models.Order, error)
	// ClaimNextPending atomically moves the oldest claimable order to
	// processing and returns it, or nil when the queue is empty.
	ClaimNextPending(ctx context.Context, portal string) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus, failureReason string) error
	MarkPreview(ctx context.Context, orderID string, previewRef string) error
	ApprovePreview(ctx context.Context, orderID string) error
	MarkCompleted(ctx context.Context, orderID string, confirmationID string) error
	MarkUnverified(ctx context.Context, orderID string) error
	MarkEscalated(ctx context.Context, orderID string, documentFallback bool, failureReason string) error
	AppendAuditEntry(ctx context.Context, orderID string, entry models.AuditEntry) error
	IncrementAttempts(ctx context.Context, orderID string) error
}
