package audit

import (
	"context"
	"errors"
	"labbridge-service/internal/app/models"
	"labbridge-service/internal/app/services/portal/portaltest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubStorage struct {
	putErr  error
	objects map[string][]byte
}

func newStubStorage() *stubStorage {
	return &stubStorage{objects: map[string][]byte{}}
}

func (s *stubStorage) PutScreenshot(ctx context.Context, objectName string, data []byte) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}
	s.objects[objectName] = data
	return objectName, nil
}

func (s *stubStorage) PresignedURL(ctx context.Context, reference string, expiry time.Duration) (string, error) {
	return "https://audit.example.com/" + reference, nil
}

func seededOrder(t *testing.T, orders *portaltest.MemoryOrderRepository) string {
	t.Helper()
	id, err := orders.CreateOrder(context.Background(), &models.Order{
		Portal: "quest",
		Status: models.OrderStatusProcessing,
	})
	require.NoError(t, err)
	return id
}

func TestCaptureStoresScreenshotAndAppendsEntry(t *testing.T) {
	storage := newStubStorage()
	orders := portaltest.NewMemoryOrderRepository()
	orderID := seededOrder(t, orders)
	page := portaltest.NewFakePage()

	NewRecorder(storage, orders, zap.NewNop()).Capture(context.Background(), page, orderID, 3, "patient_entry")

	assert.Len(t, storage.objects, 1)
	order, err := orders.FindByID(context.Background(), orderID)
	require.NoError(t, err)
	require.Len(t, order.AuditRefs, 1)
	assert.Equal(t, "patient_entry", order.AuditRefs[0].Stage)
	assert.Contains(t, order.AuditRefs[0].Reference, orderID)
	assert.Contains(t, order.AuditRefs[0].Reference, "003_patient_entry")
}

func TestCaptureScreenshotFailureIsSwallowed(t *testing.T) {
	storage := newStubStorage()
	orders := portaltest.NewMemoryOrderRepository()
	orderID := seededOrder(t, orders)
	page := portaltest.NewFakePage()
	page.ShotErr = errors.New("page crashed")

	NewRecorder(storage, orders, zap.NewNop()).Capture(context.Background(), page, orderID, 1, "login")

	assert.Empty(t, storage.objects)
	order, err := orders.FindByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Empty(t, order.AuditRefs)
}

func TestCaptureUploadFailureIsSwallowed(t *testing.T) {
	storage := newStubStorage()
	storage.putErr = errors.New("bucket unavailable")
	orders := portaltest.NewMemoryOrderRepository()
	orderID := seededOrder(t, orders)

	NewRecorder(storage, orders, zap.NewNop()).Capture(context.Background(), portaltest.NewFakePage(), orderID, 1, "login")

	order, err := orders.FindByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Empty(t, order.AuditRefs)
}

func TestCaptureAppendFailureIsSwallowed(t *testing.T) {
	storage := newStubStorage()
	orders := portaltest.NewMemoryOrderRepository()
	orderID := seededOrder(t, orders)
	orders.AppendErr = errors.New("write concern timeout")

	NewRecorder(storage, orders, zap.NewNop()).Capture(context.Background(), portaltest.NewFakePage(), orderID, 1, "login")

	// The screenshot is stored even though the trail append failed.
	assert.Len(t, storage.objects, 1)
}
