// Package agent is the serial portal worker. It claims one pending order at a
// time, gets or refreshes the portal session, runs the navigator, and applies
// the retry policy to whatever comes back. Orders for one portal are never
// processed concurrently; the portals throttle and flag parallel sessions.
package agent

import (
	"context"
	"labbridge-service/internal/app/config"
	"labbridge-service/internal/app/contracts"
	"labbridge-service/internal/app/models"
	"labbridge-service/internal/app/services/portal/authflow"
	"labbridge-service/internal/app/services/portal/navigator"
	"labbridge-service/internal/app/services/portal/reconciler"
	"labbridge-service/internal/app/services/portal/retrypolicy"
	"labbridge-service/internal/pkg/constvars"
	"labbridge-service/internal/pkg/utils"
	"time"

	"go.uber.org/zap"
)

const (
	escalationScreenshotExpiry = 24 * time.Hour
	releaseTimeout             = 5 * time.Second
)

type Agent struct {
	browser    contracts.Browser
	sessions   contracts.SessionStore
	orders     contracts.OrderRepository
	storage    contracts.AuditStorage
	notifier   contracts.EscalationNotifier
	documents  contracts.DocumentFallback
	auth       *authflow.AuthFlow
	navigator  *navigator.Navigator
	reconciler *reconciler.Reconciler
	policy     *retrypolicy.Policy
	portal     config.Portal
	app        config.App
	pollEvery  time.Duration
	log        *zap.Logger
}

func NewAgent(
	browser contracts.Browser,
	sessionStore contracts.SessionStore,
	orderRepository contracts.OrderRepository,
	auditStorage contracts.AuditStorage,
	escalationNotifier contracts.EscalationNotifier,
	documentFallback contracts.DocumentFallback,
	loginFlow *authflow.AuthFlow,
	portalNavigator *navigator.Navigator,
	patientReconciler *reconciler.Reconciler,
	retryPolicy *retrypolicy.Policy,
	internalConfig *config.InternalConfig,
	log *zap.Logger,
) *Agent {
	pollEvery := time.Duration(internalConfig.Portal.PollIntervalSeconds) * time.Second
	if pollEvery <= 0 {
		pollEvery = 5 * time.Second
	}
	return &Agent{
		browser:    browser,
		sessions:   sessionStore,
		orders:     orderRepository,
		storage:    auditStorage,
		notifier:   escalationNotifier,
		documents:  documentFallback,
		auth:       loginFlow,
		navigator:  portalNavigator,
		reconciler: patientReconciler,
		policy:     retryPolicy,
		portal:     internalConfig.Portal,
		app:        internalConfig.App,
		pollEvery:  pollEvery,
		log:        log,
	}
}

// Run polls for work until ctx is cancelled. One order is fully settled,
// completed, previewed or escalated, before the next claim.
func (a *Agent) Run(ctx context.Context) {
	a.log.Info("portal agent started",
		zap.String(constvars.LoggingPortalKey, a.portal.Name),
	)
	for {
		processed, err := a.ProcessNext(ctx)
		if err != nil {
			a.log.Error("order claim failed", zap.Error(err))
		}
		if processed {
			continue
		}
		select {
		case <-ctx.Done():
			a.log.Info("portal agent stopped")
			return
		case <-time.After(a.pollEvery):
		}
	}
}

// ProcessNext claims and settles one pending order. It reports false when the
// queue was empty.
func (a *Agent) ProcessNext(ctx context.Context) (bool, error) {
	order, err := a.orders.ClaimNextPending(ctx, a.portal.Name)
	if err != nil {
		return false, err
	}
	if order == nil {
		return false, nil
	}
	a.processOrder(ctx, order)
	return true, nil
}

func (a *Agent) processOrder(ctx context.Context, order *models.Order) {
	log := a.log.With(
		zap.String(constvars.LoggingOrderIDKey, order.ID),
		zap.String(constvars.LoggingCorrelationIDKey, order.CorrelationID),
	)
	log.Info("processing order")

	enriched := a.reconciler.Enrich(ctx, order.CorrelationID, &order.Request.Patient)
	if !enriched.Verified {
		if err := a.orders.MarkUnverified(ctx, order.ID); err != nil {
			log.Warn("marking order unverified failed", zap.Error(err))
		}
	}

	for attempt := 1; ; attempt++ {
		if err := a.orders.IncrementAttempts(ctx, order.ID); err != nil {
			log.Warn("attempt counter update failed", zap.Error(err))
		}

		result, stage, err := a.attempt(ctx, order, enriched)
		if err == nil {
			a.settleSuccess(ctx, order, result, log)
			return
		}

		// The budget counts attempts across runs: order.Attempts holds what
		// earlier claims already burned.
		decision := a.policy.Decide(err, order.Attempts+attempt, stage)
		log.Warn("order attempt failed",
			zap.Int(constvars.LoggingAttemptKey, attempt),
			zap.String(constvars.LoggingClassKey, string(decision.Class)),
			zap.Bool("retry", decision.Retry),
			zap.Error(err),
		)

		if !decision.Retry {
			a.escalate(ctx, order, decision, log)
			return
		}
		if decision.RefreshSession {
			if err := a.sessions.Invalidate(ctx, a.portal.Name); err != nil {
				log.Warn("session invalidation failed", zap.Error(err))
			}
		}
		select {
		case <-ctx.Done():
			a.release(order, log)
			return
		case <-time.After(decision.Backoff):
		}
	}
}

// release hands a claimed order back to the queue on shutdown. The run
// context is already dead, so the status write gets its own short deadline.
func (a *Agent) release(order *models.Order, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	if err := a.orders.UpdateStatus(ctx, order.ID, models.OrderStatusPending, ""); err != nil {
		log.Error("releasing order on shutdown failed", zap.Error(err))
		return
	}
	log.Info("order released back to pending on shutdown")
}

// attempt runs one full pass: session, page, navigation. The returned stage
// tells the retry policy where the failure happened. The page context is torn
// down on every path.
func (a *Agent) attempt(ctx context.Context, order *models.Order, enriched *models.EnrichedPatient) (*navigator.Result, models.NavigationStage, error) {
	session, err := a.sessions.Get(ctx, a.portal.Name)
	if err != nil {
		return nil, models.StageUnauthenticated, err
	}

	var state []byte
	if session != nil {
		state = session.State
	}
	page, err := a.browser.NewPage(ctx, state)
	if err != nil {
		return nil, models.StageUnauthenticated, err
	}
	defer page.Close()

	if session == nil {
		if _, err := a.auth.Login(ctx, page); err != nil {
			return nil, models.StageUnauthenticated, err
		}
	}

	result, err := a.navigator.Run(ctx, page, order, enriched)
	if err != nil {
		return nil, models.StageOrderDetails, err
	}
	return result, result.Stage, nil
}

func (a *Agent) settleSuccess(ctx context.Context, order *models.Order, result *navigator.Result, log *zap.Logger) {
	if result.PreviewHalted {
		token, err := utils.GeneratePreviewToken(order.ID, a.app.PreviewTokenSecret, time.Duration(a.app.PreviewTokenTTLMinutes)*time.Minute)
		if err != nil {
			log.Error("preview token generation failed", zap.Error(err))
			a.escalate(ctx, order, models.RetryDecision{
				Class:      models.FailureStructural,
				Escalation: models.EscalateHuman,
				Reason:     "preview token generation failed",
			}, log)
			return
		}
		if err := a.orders.MarkPreview(ctx, order.ID, token); err != nil {
			log.Error("marking order previewed failed", zap.Error(err))
			return
		}
		log.Info("order parked in preview, awaiting approval")
		return
	}

	if err := a.orders.MarkCompleted(ctx, order.ID, result.ConfirmationID); err != nil {
		log.Error("marking order completed failed", zap.Error(err))
		return
	}
	log.Info("order completed",
		zap.String("confirmation_id", result.ConfirmationID),
	)
}

// escalate hands the order to a human. Portal data rejections additionally
// request the offline document so the order can be submitted manually.
func (a *Agent) escalate(ctx context.Context, order *models.Order, decision models.RetryDecision, log *zap.Logger) {
	payload := &contracts.EscalationPayload{
		OrderID:       order.ID,
		CorrelationID: order.CorrelationID,
		Portal:        order.Portal,
		Patient:       order.Request.Patient,
		Tests:         order.Request.Tests,
		Diagnoses:     order.Request.Diagnoses,
		FailureReason: decision.Reason,
		ScreenshotURL: a.lastScreenshotURL(ctx, order.ID),
		EscalatedAt:   time.Now(),
	}

	if err := a.notifier.PublishEscalation(ctx, payload); err != nil {
		log.Error("escalation publish failed", zap.Error(err))
	}

	documentFallback := decision.Escalation == models.EscalateDocument
	if documentFallback {
		if err := a.documents.RequestDocument(ctx, payload); err != nil {
			log.Error("document fallback request failed", zap.Error(err))
			documentFallback = false
		}
	}

	if err := a.orders.MarkEscalated(ctx, order.ID, documentFallback, decision.Reason); err != nil {
		log.Error("marking order escalated failed", zap.Error(err))
		return
	}
	log.Info("order escalated for manual review",
		zap.Bool("document_fallback", documentFallback),
		zap.String("reason", decision.Reason),
	)
}

// lastScreenshotURL resolves the most recent audit frame to a link a human
// can open from the escalation message. Best effort only.
func (a *Agent) lastScreenshotURL(ctx context.Context, orderID string) string {
	order, err := a.orders.FindByID(ctx, orderID)
	if err != nil || order == nil || len(order.AuditRefs) == 0 {
		return ""
	}
	last := order.AuditRefs[len(order.AuditRefs)-1]
	url, err := a.storage.PresignedURL(ctx, last.Reference, escalationScreenshotExpiry)
	if err != nil {
		a.log.Warn("presigning escalation screenshot failed",
			zap.String(constvars.LoggingOrderIDKey, orderID),
			zap.Error(err),
		)
		return ""
	}
	return url
}
