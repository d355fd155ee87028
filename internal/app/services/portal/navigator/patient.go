package navigator

import (
	"context"
	"labbridge-service/internal/app/contracts"
	"labbridge-service/internal/app/models"
	"labbridge-service/internal/pkg/constvars"
	"labbridge-service/internal/pkg/exceptions"
	"time"

	"go.uber.org/zap"
)

// resultProbeTimeout bounds the wait for patient search results to render.
const resultProbeTimeout = 3 * time.Second

// ensurePatient runs the mandatory duplicate check first: every order searches
// for the patient before anything else, even when the caller expects a new
// record. A hit is reused; a miss goes through the create form.
func (r *run) ensurePatient(ctx context.Context) error {
	if err := r.fill(ctx, "patient.search.lastName", r.patient.LastName); err != nil {
		return err
	}
	if err := r.fill(ctx, "patient.search.dob", r.patient.DateOfBirth); err != nil {
		return err
	}
	if err := r.click(ctx, "patient.search.submit"); err != nil {
		return err
	}
	r.nav.sweeper.Sweep(ctx, r.page)

	if row := r.probeSearchResult(ctx); row != nil {
		if err := row.Click(ctx); err != nil {
			return exceptions.ErrInteractionTimeout(err, "click patient.search.result")
		}
		r.nav.log.Info("existing patient record reused",
			zap.String(constvars.LoggingOrderIDKey, r.order.ID),
		)
		r.advance(ctx, models.StagePatientLocated)
		return nil
	}

	if err := r.createPatient(ctx); err != nil {
		return err
	}
	r.advance(ctx, models.StagePatientCreated)
	return nil
}

// probeSearchResult waits briefly for a result row. Results render
// asynchronously on these portals, so a single immediate query would miss
// hits; no row within the window means no match.
func (r *run) probeSearchResult(ctx context.Context) contracts.Element {
	spec, known := r.nav.resolver.Catalog.Spec("patient.search.result")
	if !known {
		return nil
	}
	for _, selector := range spec.Selectors {
		element, err := r.page.WaitForSelector(ctx, selector, resultProbeTimeout)
		if err == nil && element != nil && element.Enabled() {
			return element
		}
	}
	return nil
}

func (r *run) createPatient(ctx context.Context) error {
	if err := r.click(ctx, "patient.create"); err != nil {
		return err
	}

	fills := []struct {
		field string
		value string
	}{
		{"patient.firstName", r.patient.FirstName},
		{"patient.lastName", r.patient.LastName},
		{"patient.dob", r.patient.DateOfBirth},
		{"patient.phone", r.patient.Phone},
		{"patient.address.line1", r.patient.Address.Line1},
		{"patient.address.line2", r.patient.Address.Line2},
		{"patient.address.city", r.patient.Address.City},
		{"patient.address.zip", r.patient.Address.Zip},
		{"patient.memberId", r.patient.PayerMemberID},
	}
	for _, f := range fills {
		if err := r.fill(ctx, f.field, f.value); err != nil {
			return err
		}
	}

	selects := []struct {
		field string
		value string
	}{
		{"patient.sex", r.patient.Sex},
		{"patient.address.state", r.patient.Address.State},
		{"patient.payer", r.patient.PayerCode},
		{"patient.billMethod", r.patient.BillMethod},
	}
	for _, s := range selects {
		if err := r.selectOption(ctx, s.field, s.value); err != nil {
			return err
		}
	}

	if err := r.click(ctx, "patient.save"); err != nil {
		return err
	}
	r.nav.sweeper.Sweep(ctx, r.page)

	// Some portals interject an address standardization dialog after save.
	// Keeping the entered address is always acceptable here; the reconciler
	// already chose the authoritative one.
	if err := r.click(ctx, "patient.addressConfirm"); err != nil {
		return err
	}
	return nil
}
