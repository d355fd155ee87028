// Package authflow drives the portal login form and turns a fresh page into
// a stored, reusable session.
package authflow

import (
	"context"
	"fmt"
	"labbridge-service/internal/app/config"
	"labbridge-service/internal/app/contracts"
	"labbridge-service/internal/app/models"
	"labbridge-service/internal/app/services/portal/resolver"
	"labbridge-service/internal/app/services/portal/sweeper"
	"labbridge-service/internal/pkg/constvars"
	"labbridge-service/internal/pkg/exceptions"
	"strings"
	"time"

	"go.uber.org/zap"
)

// successURLFragments mark the authenticated area. Any one of them in the
// post-submit URL counts as a login success signal.
var successURLFragments = []string{"dashboard", "home", "order", "landing"}

// failureTextSelectors hold the portal's own rejection message when
// credentials are bad.
var failureTextSelectors = []string{".login-error", "#loginError", ".alert-danger"}

const verifyPollInterval = 500 * time.Millisecond

type AuthFlow struct {
	resolver *resolver.Resolver
	sweeper  *sweeper.Sweeper
	sessions contracts.SessionStore
	portal   config.Portal
	ttl      time.Duration
	timeout  time.Duration
	log      *zap.Logger
}

func NewAuthFlow(
	elementResolver *resolver.Resolver,
	popupSweeper *sweeper.Sweeper,
	sessionStore contracts.SessionStore,
	internalConfig *config.InternalConfig,
	log *zap.Logger,
) *AuthFlow {
	return &AuthFlow{
		resolver: elementResolver,
		sweeper:  popupSweeper,
		sessions: sessionStore,
		portal:   internalConfig.Portal,
		ttl:      time.Duration(internalConfig.Session.TTLMinutes) * time.Minute,
		timeout:  time.Duration(internalConfig.Portal.InteractionTimeoutSeconds) * time.Second,
		log:      log,
	}
}

// Login authenticates page against the portal and stores the resulting
// browser state as the portal's current session. Credentials never appear in
// logs or error messages.
func (a *AuthFlow) Login(ctx context.Context, page contracts.Page) (*models.Session, error) {
	if err := page.Goto(ctx, a.portal.LoginURL); err != nil {
		return nil, exceptions.ErrNavigationFailed(err, a.portal.LoginURL)
	}
	a.sweeper.Sweep(ctx, page)

	username, err := a.resolver.Resolve(ctx, page, "login.username")
	if err != nil {
		return nil, err
	}
	if err := username.Fill(ctx, a.portal.Username); err != nil {
		return nil, exceptions.ErrInteractionTimeout(err, "fill login.username")
	}

	// Some portals split login into a username step and a password step. The
	// continue button is probed, not resolved: its absence is the usual case.
	if cont := a.resolver.ProbeCatalog(ctx, page, "login.continue"); cont != nil {
		if err := cont.Click(ctx); err != nil {
			return nil, exceptions.ErrInteractionTimeout(err, "click login.continue")
		}
		a.sweeper.Sweep(ctx, page)
	}

	password, err := a.resolver.Resolve(ctx, page, "login.password")
	if err != nil {
		return nil, err
	}
	if err := password.Fill(ctx, a.portal.Password); err != nil {
		return nil, exceptions.ErrInteractionTimeout(err, "fill login.password")
	}

	submit, err := a.resolver.Resolve(ctx, page, "login.submit")
	if err != nil {
		return nil, err
	}
	if err := submit.Click(ctx); err != nil {
		return nil, exceptions.ErrInteractionTimeout(err, "click login.submit")
	}

	if err := a.verifyAuthenticated(ctx, page); err != nil {
		return nil, err
	}

	state, err := page.ExportState(ctx)
	if err != nil {
		return nil, exceptions.ErrBrowserStateExport(err)
	}

	session, err := a.sessions.Save(ctx, a.portal.Name, state, a.ttl)
	if err != nil {
		return nil, err
	}
	a.log.Info("portal login succeeded",
		zap.String(constvars.LoggingPortalKey, a.portal.Name),
		zap.Time("session_expires_at", session.ExpiresAt),
	)
	return session, nil
}

// verifyAuthenticated polls for a success signal, either an authenticated-area
// URL or a marker element, until the interaction timeout. An explicit portal
// rejection message short-circuits the wait.
func (a *AuthFlow) verifyAuthenticated(ctx context.Context, page contracts.Page) error {
	deadline := time.Now().Add(a.timeout)
	for {
		a.sweeper.Sweep(ctx, page)

		for _, selector := range failureTextSelectors {
			elements, err := page.Query(ctx, selector)
			if err != nil {
				continue
			}
			for _, element := range elements {
				if element.Visible() && strings.TrimSpace(element.Text()) != "" {
					return exceptions.ErrAuthenticationFailed(
						fmt.Errorf("portal rejected credentials"),
						"login form reported an error",
					)
				}
			}
		}

		if a.hasSuccessSignal(ctx, page) {
			return nil
		}

		if time.Now().After(deadline) {
			return exceptions.ErrAuthenticationFailed(
				fmt.Errorf("no authenticated-area signal within %s", a.timeout),
				"login verification timed out",
			)
		}
		select {
		case <-ctx.Done():
			return exceptions.ErrInteractionTimeout(ctx.Err(), "login verification")
		case <-time.After(verifyPollInterval):
		}
	}
}

func (a *AuthFlow) hasSuccessSignal(ctx context.Context, page contracts.Page) bool {
	url := strings.ToLower(page.URL())
	if url != "" && !strings.Contains(url, "login") {
		for _, fragment := range successURLFragments {
			if strings.Contains(url, fragment) {
				return true
			}
		}
	}
	return a.resolver.ProbeCatalog(ctx, page, "nav.orderEntry") != nil
}
