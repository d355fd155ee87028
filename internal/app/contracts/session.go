package contracts

import (
	"context"
	"labbridge-service/internal/app/models"
	"time"
)

// SessionStore holds at most one valid portal session per portal. Save
// invalidates any prior session for the same portal before the new one becomes
// current; Get returns nil once the stored session has expired.
type SessionStore interface {
	Get(ctx context.Context, portal string) (*models.Session, error)
	Save(ctx context.Context, portal string, state []byte, ttl time.Duration) (*models.Session, error)
	Invalidate(ctx context.Context, portal string) error
}
