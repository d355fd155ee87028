// Package audit captures a screenshot after every navigation transition and
// appends its storage reference to the order's audit trail.
package audit

import (
	"context"
	"fmt"
	"labbridge-service/internal/app/contracts"
	"labbridge-service/internal/app/models"
	"labbridge-service/internal/pkg/constvars"
	"time"

	"go.uber.org/zap"
)

type Recorder struct {
	storage contracts.AuditStorage
	orders  contracts.OrderRepository
	log     *zap.Logger
}

func NewRecorder(storage contracts.AuditStorage, orders contracts.OrderRepository, log *zap.Logger) *Recorder {
	return &Recorder{storage: storage, orders: orders, log: log}
}

// Capture screenshots page and records the reference on the order. A failed
// capture is logged and swallowed: losing one audit frame must never abort an
// order that is otherwise progressing.
func (r *Recorder) Capture(ctx context.Context, page contracts.Page, orderID string, sequence int, stage string) {
	data, err := page.Screenshot(ctx)
	if err != nil {
		r.log.Warn("audit screenshot capture failed",
			zap.String(constvars.LoggingOrderIDKey, orderID),
			zap.String(constvars.LoggingStageKey, stage),
			zap.Error(err),
		)
		return
	}

	now := time.Now()
	objectName := fmt.Sprintf(constvars.MinioAuditObjectFormat, orderID, sequence, stage, now.Unix())
	reference, err := r.storage.PutScreenshot(ctx, objectName, data)
	if err != nil {
		r.log.Warn("audit screenshot upload failed",
			zap.String(constvars.LoggingOrderIDKey, orderID),
			zap.String(constvars.LoggingStageKey, stage),
			zap.Error(err),
		)
		return
	}

	entry := models.AuditEntry{Stage: stage, Reference: reference, CapturedAt: now}
	if err := r.orders.AppendAuditEntry(ctx, orderID, entry); err != nil {
		r.log.Warn("audit trail append failed",
			zap.String(constvars.LoggingOrderIDKey, orderID),
			zap.String(constvars.LoggingReferenceKey, reference),
			zap.Error(err),
		)
	}
}
