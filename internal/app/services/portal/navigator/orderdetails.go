package navigator

import (
	"context"
	"fmt"
	"labbridge-service/internal/app/models"
	"labbridge-service/internal/pkg/exceptions"
	"strings"
	"time"
)

const orderDateLayout = "01/02/2006"

// fillOrderDetails selects the ordering provider, adds every test and
// diagnosis through the portal's search-and-pick widgets, and fills the
// remaining order fields.
func (r *run) fillOrderDetails(ctx context.Context) error {
	if err := r.selectProvider(ctx); err != nil {
		return err
	}

	for _, test := range r.order.Request.Tests {
		if err := r.searchAndPick(ctx, "order.testSearch", "order.testSearch.result", test.Code); err != nil {
			return err
		}
	}
	for _, diagnosis := range r.order.Request.Diagnoses {
		if err := r.searchAndPick(ctx, "order.dxSearch", "order.dxSearch.result", diagnosis.Code); err != nil {
			return err
		}
	}

	if err := r.fill(ctx, "order.initials", collectorInitials(r.patient)); err != nil {
		return err
	}
	if err := r.fill(ctx, "order.date", time.Now().Format(orderDateLayout)); err != nil {
		return err
	}

	r.advance(ctx, models.StageOrderDetails)
	return nil
}

// selectProvider tries the provider dropdown first. When the provider is not
// listed there, the NPI lookup sub-flow registers them with the portal before
// the dropdown is retried.
func (r *run) selectProvider(ctx context.Context) error {
	provider := r.order.Request.Provider
	label := fmt.Sprintf("%s, %s", provider.LastName, provider.FirstName)

	if err := r.selectOption(ctx, "order.provider", label); err == nil {
		return nil
	}

	npiSearch, probeErr := r.resolveField(ctx, "order.provider.npiSearch")
	if probeErr != nil || npiSearch == nil {
		return exceptions.ErrElementNotFound("order.provider")
	}
	if err := npiSearch.Fill(ctx, provider.NPI); err != nil {
		return exceptions.ErrInteractionTimeout(err, "fill order.provider.npiSearch")
	}
	if err := r.click(ctx, "order.provider.npiSearchSubmit"); err != nil {
		return err
	}
	r.nav.sweeper.Sweep(ctx, r.page)

	return r.selectOption(ctx, "order.provider", label)
}

// searchAndPick types code into the search field and clicks the result row
// the portal renders for it.
func (r *run) searchAndPick(ctx context.Context, searchField, resultField, code string) error {
	element, err := r.resolveField(ctx, searchField)
	if err != nil || element == nil {
		return err
	}
	if err := element.Fill(ctx, code); err != nil {
		return exceptions.ErrInteractionTimeout(err, "fill "+searchField)
	}
	if err := element.Press(ctx, "Enter"); err != nil {
		return exceptions.ErrInteractionTimeout(err, "press Enter in "+searchField)
	}

	spec, _ := r.nav.resolver.Catalog.Spec(resultField)
	for _, selector := range spec.Selectors {
		row, waitErr := r.page.WaitForSelector(ctx, selector, resultProbeTimeout)
		if waitErr != nil || row == nil {
			continue
		}
		if err := row.Click(ctx); err != nil {
			return exceptions.ErrInteractionTimeout(err, "click "+resultField)
		}
		return nil
	}
	return exceptions.ErrElementNotFound(resultField + " for " + code)
}

// validateOrder clicks the portal's own validation control and reads back any
// rejection it renders. A rejection is the portal refusing the order data, so
// it surfaces as a portal validation failure, not a retryable fault.
func (r *run) validateOrder(ctx context.Context) error {
	if err := r.click(ctx, "order.validate"); err != nil {
		return err
	}
	r.nav.sweeper.Sweep(ctx, r.page)

	if message := r.portalValidationMessage(ctx); message != "" {
		return exceptions.ErrPortalValidation(message)
	}

	r.advance(ctx, models.StageValidated)
	return nil
}

// validationTextSelectors hold the portal's inline rejection messages after a
// validate click.
var validationTextSelectors = []string{".validation-error", ".field-error", "#orderErrors", ".alert-danger"}

func (r *run) portalValidationMessage(ctx context.Context) string {
	var messages []string
	for _, selector := range validationTextSelectors {
		elements, err := r.page.Query(ctx, selector)
		if err != nil {
			continue
		}
		for _, element := range elements {
			if !element.Visible() {
				continue
			}
			if text := strings.TrimSpace(element.Text()); text != "" {
				messages = append(messages, text)
			}
		}
	}
	return strings.Join(messages, "; ")
}

// collectorInitials derives the collector initials some portals require on
// the order form.
func collectorInitials(patient *models.EnrichedPatient) string {
	if patient.FirstName == "" || patient.LastName == "" {
		return ""
	}
	return strings.ToUpper(patient.FirstName[:1] + patient.LastName[:1])
}
