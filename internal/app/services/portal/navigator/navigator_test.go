package navigator

import (
	"context"
	"labbridge-service/internal/app/config"
	"labbridge-service/internal/app/models"
	"labbridge-service/internal/app/services/portal/audit"
	"labbridge-service/internal/app/services/portal/portaltest"
	"labbridge-service/internal/app/services/portal/resolver"
	"labbridge-service/internal/app/services/portal/sweeper"
	"labbridge-service/internal/pkg/exceptions"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type auditSink struct {
	objects map[string][]byte
}

func (s *auditSink) PutScreenshot(ctx context.Context, objectName string, data []byte) (string, error) {
	s.objects[objectName] = data
	return objectName, nil
}

func (s *auditSink) PresignedURL(ctx context.Context, reference string, expiry time.Duration) (string, error) {
	return "https://audit.example.com/" + reference, nil
}

type fixture struct {
	navigator *Navigator
	orders    *portaltest.MemoryOrderRepository
	sink      *auditSink
}

func newFixture(t *testing.T, timeoutSeconds int) *fixture {
	t.Helper()
	internalConfig := &config.InternalConfig{
		Portal: config.Portal{
			Name:                      "quest",
			OrderEntryURL:             "https://portal.example.com/order/new",
			InteractionTimeoutSeconds: timeoutSeconds,
			InteractionsPerSecond:     1000,
		},
		Adaptive: config.Adaptive{MaxExcerptBytes: 1024, MinConfidence: 0.5},
	}
	log := zap.NewNop()
	orders := portaltest.NewMemoryOrderRepository()
	sink := &auditSink{objects: map[string][]byte{}}
	elementResolver := resolver.NewResolver(resolver.DefaultCatalog("quest"), nil, internalConfig, log)
	popupSweeper := sweeper.NewSweeper(log)
	recorder := audit.NewRecorder(sink, orders, log)
	return &fixture{
		navigator: NewNavigator(elementResolver, popupSweeper, recorder, internalConfig, log),
		orders:    orders,
		sink:      sink,
	}
}

// form holds handles to the elements a test asserts against.
type form struct {
	page          *portaltest.FakePage
	searchSubmit  *portaltest.FakeElement
	createPatient *portaltest.FakeElement
	savePatient   *portaltest.FakeElement
	provider      *portaltest.FakeElement
	testRow       *portaltest.FakeElement
	dxRow         *portaltest.FakeElement
	validate      *portaltest.FakeElement
	submit        *portaltest.FakeElement
	initials      *portaltest.FakeElement
}

func newOrderEntryForm() *form {
	page := portaltest.NewFakePage()
	f := &form{page: page}

	page.Add(portaltest.NewInput("#searchLastName", "searchLastName"))
	page.Add(portaltest.NewInput("#searchDob", "searchDob"))
	f.searchSubmit = portaltest.NewButton("#patientSearchBtn", "Search")
	page.Add(f.searchSubmit)

	f.createPatient = portaltest.NewButton("#createPatientBtn", "Create Patient")
	page.Add(f.createPatient)
	page.Add(portaltest.NewInput("#firstName", "firstName"))
	page.Add(portaltest.NewInput("#lastName", "lastName"))
	page.Add(portaltest.NewInput("#dateOfBirth", "dob"))
	page.Add(newSelect("#sex"))
	page.Add(portaltest.NewInput("#phone", "phone"))
	page.Add(portaltest.NewInput("#addressLine1", "address1"))
	page.Add(portaltest.NewInput("#city", "city"))
	page.Add(newSelect("#state"))
	page.Add(portaltest.NewInput("#zip", "zip"))
	page.Add(portaltest.NewInput("#memberId", "memberId"))
	page.Add(newSelect("#payer"))
	page.Add(newSelect("#billMethod"))
	f.savePatient = portaltest.NewButton("#savePatientBtn", "Save")
	page.Add(f.savePatient)

	f.provider = newSelect("#orderingProvider")
	page.Add(f.provider)
	page.Add(portaltest.NewInput("#testSearch", "testSearch"))
	f.testRow = portaltest.NewButton(".test-result-row", "CBC")
	page.Add(f.testRow)
	page.Add(portaltest.NewInput("#dxSearch", "diagnosisSearch"))
	f.dxRow = portaltest.NewButton(".dx-result-row", "E11.9")
	page.Add(f.dxRow)
	f.initials = portaltest.NewInput("#collectorInitials", "initials")
	page.Add(f.initials)
	page.Add(portaltest.NewInput("#orderDate", "orderDate"))
	f.validate = portaltest.NewButton("#validateOrderBtn", "Validate")
	page.Add(f.validate)

	f.submit = portaltest.NewButton("#submitOrderBtn", "Submit Order")
	f.submit.OnClick = func() {
		page.PageText = "Order received. Requisition #: Q-20260830-114"
	}
	page.Add(f.submit)

	return f
}

func newSelect(selector string) *portaltest.FakeElement {
	return &portaltest.FakeElement{
		Selector:  selector,
		Tag:       "select",
		IsVisible: true,
		IsEnabled: true,
	}
}

func seedOrder(t *testing.T, fx *fixture, preview, approved bool) *models.Order {
	t.Helper()
	order := &models.Order{
		Portal: "quest",
		Status: models.OrderStatusProcessing,
		Request: models.OrderRequest{
			CorrelationID: "corr-1",
			Tests:         []models.TestEntry{{Code: "CBC"}, {Code: "TSH"}},
			Diagnoses:     []models.Diagnosis{{Code: "E11.9"}},
			Provider:      models.Provider{FirstName: "James", LastName: "Wong", NPI: "1234567893"},
			Options:       models.OrderOptions{Preview: preview},
		},
		PreviewApproved: approved,
	}
	id, err := fx.orders.CreateOrder(context.Background(), order)
	require.NoError(t, err)
	order.ID = id
	return order
}

func enrichedPatient() *models.EnrichedPatient {
	return &models.EnrichedPatient{
		Patient: models.Patient{
			FirstName:     "Maria",
			LastName:      "Santos",
			DateOfBirth:   "1984-03-12",
			Sex:           "F",
			Phone:         "2175550188",
			PayerCode:     "AETNA",
			PayerMemberID: "W1234567",
			BillMethod:    "insurance",
			Address: models.Address{
				Line1: "12 Elm St",
				City:  "Springfield",
				State: "IL",
				Zip:   "62704",
			},
		},
		Verified:      true,
		AddressSource: models.AddressSourceEligibility,
	}
}

func TestRunCreatesPatientAndSubmits(t *testing.T) {
	fx := newFixture(t, 2)
	f := newOrderEntryForm()
	order := seedOrder(t, fx, false, false)

	result, err := fx.navigator.Run(context.Background(), f.page, order, enrichedPatient())

	require.NoError(t, err)
	assert.Equal(t, models.StageConfirmed, result.Stage)
	assert.Equal(t, "Q-20260830-114", result.ConfirmationID)
	assert.False(t, result.PreviewHalted)

	// No search hit, so the create form was used.
	assert.Equal(t, 1, f.searchSubmit.Clicks)
	assert.Equal(t, 1, f.createPatient.Clicks)
	assert.Equal(t, 1, f.savePatient.Clicks)
	assert.Equal(t, "Wong, James", f.provider.SelectedValue)
	assert.Equal(t, 2, f.testRow.Clicks)
	assert.Equal(t, 1, f.dxRow.Clicks)
	assert.Equal(t, "MS", f.initials.FilledValue)
	assert.Equal(t, 1, f.validate.Clicks)
	assert.Equal(t, 1, f.submit.Clicks)
	assert.Equal(t, []string{"https://portal.example.com/order/new"}, f.page.GotoLog)
}

func TestRunReusesExistingPatient(t *testing.T) {
	fx := newFixture(t, 2)
	f := newOrderEntryForm()
	row := portaltest.NewButton(".patient-result-row", "SANTOS, MARIA 03/12/1984")
	f.searchSubmit.OnClick = func() { f.page.Add(row) }
	order := seedOrder(t, fx, false, false)

	result, err := fx.navigator.Run(context.Background(), f.page, order, enrichedPatient())

	require.NoError(t, err)
	assert.Equal(t, models.StageConfirmed, result.Stage)
	assert.Equal(t, 1, row.Clicks)
	assert.Zero(t, f.createPatient.Clicks)
	assert.Zero(t, f.savePatient.Clicks)
}

func TestRunPreviewHaltsBeforeSubmit(t *testing.T) {
	fx := newFixture(t, 2)
	f := newOrderEntryForm()
	order := seedOrder(t, fx, true, false)

	result, err := fx.navigator.Run(context.Background(), f.page, order, enrichedPatient())

	require.NoError(t, err)
	assert.True(t, result.PreviewHalted)
	assert.Equal(t, models.StageValidated, result.Stage)
	assert.Empty(t, result.ConfirmationID)
	assert.Zero(t, f.submit.Clicks)
}

func TestRunApprovedPreviewSubmits(t *testing.T) {
	fx := newFixture(t, 2)
	f := newOrderEntryForm()
	order := seedOrder(t, fx, true, true)

	result, err := fx.navigator.Run(context.Background(), f.page, order, enrichedPatient())

	require.NoError(t, err)
	assert.False(t, result.PreviewHalted)
	assert.Equal(t, models.StageConfirmed, result.Stage)
	assert.Equal(t, 1, f.submit.Clicks)
}

func TestRunPortalValidationRejection(t *testing.T) {
	fx := newFixture(t, 2)
	f := newOrderEntryForm()
	f.validate.OnClick = func() {
		f.page.Add(&portaltest.FakeElement{
			Selector:  ".validation-error",
			Tag:       "div",
			TextValue: "Diagnosis does not support medical necessity for TSH",
			IsVisible: true,
			IsEnabled: true,
		})
	}
	order := seedOrder(t, fx, false, false)

	_, err := fx.navigator.Run(context.Background(), f.page, order, enrichedPatient())

	require.Error(t, err)
	custom, ok := exceptions.AsCustomError(err)
	require.True(t, ok)
	assert.True(t, custom.IsPortalValidation)
	assert.Equal(t, models.FailureStructural, exceptions.ClassOf(err))
	assert.Zero(t, f.submit.Clicks)
}

func TestRunProviderNPISubFlow(t *testing.T) {
	fx := newFixture(t, 2)
	f := newOrderEntryForm()
	f.page.Remove("#orderingProvider")
	npiSearch := portaltest.NewInput("#npiSearch", "npi")
	npiSubmit := portaltest.NewButton("#npiSearchBtn", "Search NPI")
	npiSubmit.OnClick = func() { f.page.Add(f.provider) }
	f.page.Add(npiSearch).Add(npiSubmit)
	order := seedOrder(t, fx, false, false)

	result, err := fx.navigator.Run(context.Background(), f.page, order, enrichedPatient())

	require.NoError(t, err)
	assert.Equal(t, models.StageConfirmed, result.Stage)
	assert.Equal(t, "1234567893", npiSearch.FilledValue)
	assert.Equal(t, 1, npiSubmit.Clicks)
	assert.Equal(t, "Wong, James", f.provider.SelectedValue)
}

func TestRunMissingRequiredElementFailsStructural(t *testing.T) {
	fx := newFixture(t, 2)
	f := newOrderEntryForm()
	f.page.Remove("#testSearch")
	order := seedOrder(t, fx, false, false)

	_, err := fx.navigator.Run(context.Background(), f.page, order, enrichedPatient())

	require.Error(t, err)
	assert.Equal(t, models.FailureStructural, exceptions.ClassOf(err))
}

func TestRunNoConfirmationIDIsStructural(t *testing.T) {
	fx := newFixture(t, 0)
	f := newOrderEntryForm()
	f.submit.OnClick = func() {
		f.page.PageText = "Thank you for using the portal."
	}
	order := seedOrder(t, fx, false, false)

	_, err := fx.navigator.Run(context.Background(), f.page, order, enrichedPatient())

	require.Error(t, err)
	assert.Equal(t, models.FailureStructural, exceptions.ClassOf(err))
}

func TestRunRecordsAuditTrail(t *testing.T) {
	fx := newFixture(t, 2)
	f := newOrderEntryForm()
	order := seedOrder(t, fx, false, false)

	_, err := fx.navigator.Run(context.Background(), f.page, order, enrichedPatient())

	require.NoError(t, err)
	stored, err := fx.orders.FindByID(context.Background(), order.ID)
	require.NoError(t, err)

	var stages []string
	for _, entry := range stored.AuditRefs {
		stages = append(stages, entry.Stage)
	}
	assert.Equal(t, []string{
		string(models.StageAuthenticated),
		string(models.StagePatientCreated),
		string(models.StageOrderDetails),
		string(models.StageValidated),
		string(models.StageSubmitted),
		string(models.StageConfirmed),
	}, stages)
	assert.Len(t, fx.sink.objects, 6)
}

func TestRunCancelledAtStageBoundary(t *testing.T) {
	fx := newFixture(t, 2)
	f := newOrderEntryForm()
	order := seedOrder(t, fx, false, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fx.navigator.Run(ctx, f.page, order, enrichedPatient())

	require.Error(t, err)
	assert.Equal(t, models.FailureTransient, exceptions.ClassOf(err))
	assert.Zero(t, f.searchSubmit.Clicks)

	// The cut-short run still left an audit frame naming the abandonment.
	stored, err := fx.orders.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.AuditRefs)
	assert.Equal(t, string(models.StageAbandoned), stored.AuditRefs[len(stored.AuditRefs)-1].Stage)
}
