package contracts

import (
	"context"
	"time"
)

// AuditStorage persists screenshot bytes and hands back a stable reference.
// Retention and purging belong to the external audit-storage collaborator.
type AuditStorage interface {
	PutScreenshot(ctx context.Context, objectName string, data []byte) (string, error)
	PresignedURL(ctx context.Context, reference string, expiry time.Duration) (string, error)
}
