package portaltest

import (
	"context"
	"fmt"
	"labbridge-service/internal/app/contracts"
	"labbridge-service/internal/app/models"
	"sort"
	"sync"
	"time"
)

// ClaimLease mirrors the mongo repository's lease on processing claims.
const ClaimLease = 15 * time.Minute

// MemoryOrderRepository is an in-memory contracts.OrderRepository for engine
// package tests.
type MemoryOrderRepository struct {
	mu     sync.Mutex
	nextID int
	Orders map[string]*models.Order

	CreateErr error
	ClaimErr  error
	AppendErr error
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{Orders: map[string]*models.Order{}}
}

var _ contracts.OrderRepository = (*MemoryOrderRepository)(nil)

func (m *MemoryOrderRepository) CreateOrder(ctx context.Context, order *models.Order) (string, error) {
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := fmt.Sprintf("order-%d", m.nextID)
	stored := *order
	stored.ID = id
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	m.Orders[id] = &stored
	return id, nil
}

func (m *MemoryOrderRepository) FindByID(ctx context.Context, orderID string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.Orders[orderID]
	if !ok {
		return nil, nil
	}
	copied := *order
	return &copied, nil
}

func (m *MemoryOrderRepository) ClaimNextPending(ctx context.Context, portal string) (*models.Order, error) {
	if m.ClaimErr != nil {
		return nil, m.ClaimErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var ids []string
	for id := range m.Orders {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		order := m.Orders[id]
		if order.Portal != portal || !claimable(order) {
			continue
		}
		now := time.Now()
		order.Status = models.OrderStatusProcessing
		order.LastClaimedAt = &now
		order.UpdatedAt = now
		copied := *order
		return &copied, nil
	}
	return nil, nil
}

func claimable(order *models.Order) bool {
	if order.Status == models.OrderStatusPending {
		return true
	}
	return order.Status == models.OrderStatusProcessing &&
		order.LastClaimedAt != nil &&
		time.Since(*order.LastClaimedAt) > ClaimLease
}

func (m *MemoryOrderRepository) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus, failureReason string) error {
	return m.update(orderID, func(order *models.Order) {
		order.Status = status
		order.FailureReason = failureReason
	})
}

func (m *MemoryOrderRepository) MarkPreview(ctx context.Context, orderID string, previewRef string) error {
	return m.update(orderID, func(order *models.Order) {
		order.Status = models.OrderStatusPreview
		order.PreviewRef = previewRef
	})
}

func (m *MemoryOrderRepository) ApprovePreview(ctx context.Context, orderID string) error {
	return m.update(orderID, func(order *models.Order) {
		order.Status = models.OrderStatusPending
		order.PreviewApproved = true
	})
}

func (m *MemoryOrderRepository) MarkCompleted(ctx context.Context, orderID string, confirmationID string) error {
	return m.update(orderID, func(order *models.Order) {
		now := time.Now()
		order.Status = models.OrderStatusCompleted
		order.ConfirmationID = confirmationID
		order.CompletedAt = &now
	})
}

func (m *MemoryOrderRepository) MarkUnverified(ctx context.Context, orderID string) error {
	return m.update(orderID, func(order *models.Order) {
		order.Unverified = true
	})
}

func (m *MemoryOrderRepository) MarkEscalated(ctx context.Context, orderID string, documentFallback bool, failureReason string) error {
	return m.update(orderID, func(order *models.Order) {
		now := time.Now()
		order.Status = models.OrderStatusNeedsManualReview
		order.DocumentFallback = documentFallback
		order.FailureReason = failureReason
		order.EscalatedAt = &now
	})
}

func (m *MemoryOrderRepository) AppendAuditEntry(ctx context.Context, orderID string, entry models.AuditEntry) error {
	if m.AppendErr != nil {
		return m.AppendErr
	}
	return m.update(orderID, func(order *models.Order) {
		order.AuditRefs = append(order.AuditRefs, entry)
	})
}

func (m *MemoryOrderRepository) IncrementAttempts(ctx context.Context, orderID string) error {
	return m.update(orderID, func(order *models.Order) {
		order.Attempts++
	})
}

func (m *MemoryOrderRepository) update(orderID string, mutate func(*models.Order)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.Orders[orderID]
	if !ok {
		return fmt.Errorf("order %s not found", orderID)
	}
	mutate(order)
	order.UpdatedAt = time.Now()
	return nil
}
