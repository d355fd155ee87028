package navigator

import (
	"context"
	"labbridge-service/internal/app/models"
	"labbridge-service/internal/pkg/exceptions"
	"regexp"
	"time"
)

// confirmationPatterns are tried in order against the post-submit page text.
// The requisition number is the strongest identifier this family of portals
// prints, so it wins over the generic ones.
var confirmationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)requisition\s*(?:#|number|no\.?)?\s*[:\s]\s*([A-Z0-9][A-Z0-9-]{3,})`),
	regexp.MustCompile(`(?i)confirmation\s*(?:#|number|no\.?)?\s*[:\s]\s*([A-Z0-9][A-Z0-9-]{3,})`),
	regexp.MustCompile(`(?i)order\s*(?:#|number|no\.?)?\s*[:\s]\s*([A-Z0-9][A-Z0-9-]{3,})`),
}

const confirmationPollInterval = 500 * time.Millisecond

// submitOrder clicks submit and waits for the portal to print a confirmation
// identifier. A submit that never produces one is structural: the order may
// or may not have gone through, and only a human can tell which.
func (r *run) submitOrder(ctx context.Context) (string, error) {
	if err := r.click(ctx, "order.submit"); err != nil {
		return "", err
	}
	r.advance(ctx, models.StageSubmitted)

	confirmationID, err := r.awaitConfirmationID(ctx)
	if err != nil {
		return "", err
	}
	r.advance(ctx, models.StageConfirmed)
	return confirmationID, nil
}

func (r *run) awaitConfirmationID(ctx context.Context) (string, error) {
	deadline := time.Now().Add(r.nav.timeout)
	for {
		r.nav.sweeper.Sweep(ctx, r.page)

		text, err := r.page.Text(ctx)
		if err == nil {
			if id := extractConfirmationID(text); id != "" {
				return id, nil
			}
		}

		if time.Now().After(deadline) {
			return "", exceptions.ErrNoConfirmationID()
		}
		select {
		case <-ctx.Done():
			return "", exceptions.ErrInteractionTimeout(ctx.Err(), "await confirmation id")
		case <-time.After(confirmationPollInterval):
		}
	}
}

// extractConfirmationID pulls the first identifier matching the known
// confirmation formats out of text.
func extractConfirmationID(text string) string {
	for _, pattern := range confirmationPatterns {
		if match := pattern.FindStringSubmatch(text); len(match) == 2 {
			return match[1]
		}
	}
	return ""
}
