// Package sweeper clears the modal dialogs, survey prompts and notification
// banners these portals interleave with the order workflow. The navigator
// runs a sweep before every stage so a stray overlay never swallows a click.
package sweeper

import (
	"context"
	"labbridge-service/internal/app/contracts"
	"labbridge-service/internal/pkg/constvars"

	"go.uber.org/zap"
)

// dismissalSelectors are tried in order on every pass. The list is fixed:
// anything not on it is left alone, since clicking unknown controls on a
// clinical portal is worse than leaving a banner up.
var dismissalSelectors = []string{
	"button[aria-label='Close']",
	"button.modal-close",
	".modal-footer button.btn-secondary",
	"#surveyDeclineBtn",
	"button[name='remindLater']",
	".notification-banner .dismiss",
	"button.cookie-accept",
}

// maxPasses caps the sweep so a popup that reappears after dismissal cannot
// loop the worker forever.
const maxPasses = 5

type Sweeper struct {
	Log *zap.Logger
}

func NewSweeper(log *zap.Logger) *Sweeper {
	return &Sweeper{Log: log}
}

// Sweep dismisses every known overlay currently visible and repeats until a
// pass finds nothing or the pass cap is hit. It returns the number of
// dismissals performed. Click failures on a dismissal control are logged and
// skipped; the overlay may already be gone.
func (s *Sweeper) Sweep(ctx context.Context, page contracts.Page) int {
	dismissed := 0
	for pass := 0; pass < maxPasses; pass++ {
		clicked := false
		for _, selector := range dismissalSelectors {
			elements, err := page.Query(ctx, selector)
			if err != nil {
				continue
			}
			for _, element := range elements {
				if !element.Visible() || !element.Enabled() {
					continue
				}
				if err := element.Click(ctx); err != nil {
					s.Log.Warn("popup dismissal click failed",
						zap.String(constvars.LoggingSelectorKey, selector),
						zap.Error(err),
					)
					continue
				}
				dismissed++
				clicked = true
			}
		}
		if !clicked {
			return dismissed
		}
	}

	s.Log.Warn("popup sweep hit pass cap, overlay may be reappearing",
		zap.Int("dismissed", dismissed),
	)
	return dismissed
}
