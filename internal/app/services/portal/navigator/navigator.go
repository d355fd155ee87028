// Package navigator drives an authenticated portal page through the order
// submission workflow as a forward-only state machine. Before every
// interaction it paces itself and sweeps popups; after every stage it
// captures an audit frame.
package navigator

import (
	"context"
	"labbridge-service/internal/app/config"
	"labbridge-service/internal/app/contracts"
	"labbridge-service/internal/app/models"
	"labbridge-service/internal/app/services/portal/audit"
	"labbridge-service/internal/app/services/portal/resolver"
	"labbridge-service/internal/app/services/portal/sweeper"
	"labbridge-service/internal/pkg/constvars"
	"labbridge-service/internal/pkg/exceptions"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Result is what a completed navigator run produced. PreviewHalted means the
// run stopped on purpose before submit and the order is waiting for approval.
type Result struct {
	Stage          models.NavigationStage
	ConfirmationID string
	PreviewHalted  bool
}

type Navigator struct {
	resolver *resolver.Resolver
	sweeper  *sweeper.Sweeper
	recorder *audit.Recorder
	limiter  *rate.Limiter
	portal   config.Portal
	timeout  time.Duration
	log      *zap.Logger
}

func NewNavigator(
	elementResolver *resolver.Resolver,
	popupSweeper *sweeper.Sweeper,
	auditRecorder *audit.Recorder,
	internalConfig *config.InternalConfig,
	log *zap.Logger,
) *Navigator {
	perSecond := internalConfig.Portal.InteractionsPerSecond
	if perSecond <= 0 {
		perSecond = 2
	}
	return &Navigator{
		resolver: elementResolver,
		sweeper:  popupSweeper,
		recorder: auditRecorder,
		limiter:  rate.NewLimiter(rate.Limit(perSecond), 1),
		portal:   internalConfig.Portal,
		timeout:  time.Duration(internalConfig.Portal.InteractionTimeoutSeconds) * time.Second,
		log:      log,
	}
}

// run tracks one order's pass through the workflow.
type run struct {
	nav      *Navigator
	page     contracts.Page
	order    *models.Order
	patient  *models.EnrichedPatient
	state    *models.NavigationState
	sequence int
}

// Run executes the workflow on an already authenticated page. Cancellation is
// honored at stage boundaries only, so the portal is never abandoned halfway
// through a form it might partially persist.
func (n *Navigator) Run(ctx context.Context, page contracts.Page, order *models.Order, patient *models.EnrichedPatient) (*Result, error) {
	r := &run{nav: n, page: page, order: order, patient: patient, state: models.NewNavigationState(order.ID)}
	r.state.Advance(models.StageAuthenticated)
	r.capture(ctx, models.StageAuthenticated)

	stages := []func(context.Context) error{
		r.openOrderEntry,
		r.ensurePatient,
		r.fillOrderDetails,
		r.validateOrder,
	}
	for _, stage := range stages {
		if err := r.checkpoint(ctx); err != nil {
			r.abandon(err)
			return nil, err
		}
		if err := stage(ctx); err != nil {
			r.fail(ctx, err)
			return nil, err
		}
	}

	if r.order.Request.Options.Preview && !r.order.PreviewApproved {
		r.capture(ctx, models.StageValidated)
		n.log.Info("halting before submit for preview approval",
			zap.String(constvars.LoggingOrderIDKey, order.ID),
		)
		return &Result{Stage: r.state.Stage, PreviewHalted: true}, nil
	}

	if err := r.checkpoint(ctx); err != nil {
		r.abandon(err)
		return nil, err
	}
	confirmationID, err := r.submitOrder(ctx)
	if err != nil {
		r.fail(ctx, err)
		return nil, err
	}

	n.log.Info("order confirmed on portal",
		zap.String(constvars.LoggingOrderIDKey, order.ID),
		zap.String("confirmation_id", confirmationID),
	)
	return &Result{Stage: r.state.Stage, ConfirmationID: confirmationID}, nil
}

func (r *run) openOrderEntry(ctx context.Context) error {
	if r.nav.portal.OrderEntryURL != "" {
		if err := r.page.Goto(ctx, r.nav.portal.OrderEntryURL); err != nil {
			return exceptions.ErrNavigationFailed(err, r.nav.portal.OrderEntryURL)
		}
	} else {
		if err := r.click(ctx, "nav.orderEntry"); err != nil {
			return err
		}
	}
	r.nav.sweeper.Sweep(ctx, r.page)
	return nil
}

// checkpoint honors cancellation between stages.
func (r *run) checkpoint(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return exceptions.ErrInteractionTimeout(err, "run cancelled at stage boundary")
	}
	return nil
}

// advance moves the state machine and captures the audit frame for it.
func (r *run) advance(ctx context.Context, next models.NavigationStage) {
	if r.state.Advance(next) {
		r.capture(ctx, next)
	}
}

// abandon records the frame for a run cut short at a checkpoint. The run
// context is already dead, so the capture gets its own short deadline.
func (r *run) abandon(err error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.nav.timeout)
	defer cancel()
	r.capture(ctx, models.StageAbandoned)
	r.nav.log.Warn("navigation run abandoned",
		zap.String(constvars.LoggingOrderIDKey, r.order.ID),
		zap.String(constvars.LoggingStageKey, string(r.state.Stage)),
		zap.Error(err),
	)
}

func (r *run) fail(ctx context.Context, err error) {
	r.state.Advance(models.StageFailed)
	r.capture(ctx, models.StageFailed)
	r.nav.log.Warn("navigation run failed",
		zap.String(constvars.LoggingOrderIDKey, r.order.ID),
		zap.String(constvars.LoggingStageKey, string(r.state.Stage)),
		zap.String(constvars.LoggingClassKey, string(exceptions.ClassOf(err))),
		zap.Error(err),
	)
}

func (r *run) capture(ctx context.Context, stage models.NavigationStage) {
	r.sequence++
	r.nav.recorder.Capture(ctx, r.page, r.order.ID, r.sequence, string(stage))
}

// interact paces and sweeps before touching the page.
func (r *run) interact(ctx context.Context) error {
	if err := r.nav.limiter.Wait(ctx); err != nil {
		return exceptions.ErrInteractionTimeout(err, "interaction pacing")
	}
	r.nav.sweeper.Sweep(ctx, r.page)
	return nil
}

// fill resolves fieldName and types value into it. Optional fields that
// cannot be resolved are skipped; empty values are skipped outright.
func (r *run) fill(ctx context.Context, fieldName, value string) error {
	if value == "" {
		return nil
	}
	element, err := r.resolveField(ctx, fieldName)
	if err != nil || element == nil {
		return err
	}
	if err := element.Fill(ctx, value); err != nil {
		return exceptions.ErrInteractionTimeout(err, "fill "+fieldName)
	}
	return nil
}

// selectOption resolves fieldName and picks value from it.
func (r *run) selectOption(ctx context.Context, fieldName, value string) error {
	if value == "" {
		return nil
	}
	element, err := r.resolveField(ctx, fieldName)
	if err != nil || element == nil {
		return err
	}
	if err := element.SelectOption(ctx, value); err != nil {
		return exceptions.ErrInteractionTimeout(err, "select "+fieldName)
	}
	return nil
}

// click resolves fieldName and clicks it.
func (r *run) click(ctx context.Context, fieldName string) error {
	element, err := r.resolveField(ctx, fieldName)
	if err != nil || element == nil {
		return err
	}
	if err := element.Click(ctx); err != nil {
		return exceptions.ErrInteractionTimeout(err, "click "+fieldName)
	}
	return nil
}

// resolveField returns (nil, nil) for an optional field that is absent, so
// callers skip it without failing the stage.
func (r *run) resolveField(ctx context.Context, fieldName string) (contracts.Element, error) {
	if err := r.interact(ctx); err != nil {
		return nil, err
	}
	element, err := r.nav.resolver.Resolve(ctx, r.page, fieldName)
	if err != nil {
		if !r.nav.resolver.Catalog.Required(fieldName) {
			r.nav.log.Info("optional field absent, skipping",
				zap.String(constvars.LoggingOrderIDKey, r.order.ID),
				zap.String(constvars.LoggingFieldKey, fieldName),
			)
			return nil, nil
		}
		return nil, err
	}
	return element, nil
}
