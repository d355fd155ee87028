package agent

import (
	"context"
	"errors"
	"labbridge-service/internal/app/config"
	"labbridge-service/internal/app/contracts"
	"labbridge-service/internal/app/models"
	"labbridge-service/internal/app/services/portal/audit"
	"labbridge-service/internal/app/services/portal/authflow"
	"labbridge-service/internal/app/services/portal/navigator"
	"labbridge-service/internal/app/services/portal/portaltest"
	"labbridge-service/internal/app/services/portal/reconciler"
	"labbridge-service/internal/app/services/portal/resolver"
	"labbridge-service/internal/app/services/portal/retrypolicy"
	"labbridge-service/internal/app/services/portal/sweeper"
	"labbridge-service/internal/pkg/utils"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubBrowser struct {
	page      contracts.Page
	newErr    error
	calls     int
	lastState []byte
	onNew     func()
}

func (b *stubBrowser) NewPage(ctx context.Context, state []byte) (contracts.Page, error) {
	b.calls++
	b.lastState = state
	if b.onNew != nil {
		b.onNew()
	}
	if b.newErr != nil {
		return nil, b.newErr
	}
	return b.page, nil
}

func (b *stubBrowser) Close() error { return nil }

type stubSessionStore struct {
	session     *models.Session
	getErr      error
	saved       int
	invalidated int
}

func (s *stubSessionStore) Get(ctx context.Context, portal string) (*models.Session, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.session, nil
}

func (s *stubSessionStore) Save(ctx context.Context, portal string, state []byte, ttl time.Duration) (*models.Session, error) {
	s.saved++
	s.session = &models.Session{Portal: portal, State: state, ExpiresAt: time.Now().Add(ttl), Valid: true}
	return s.session, nil
}

func (s *stubSessionStore) Invalidate(ctx context.Context, portal string) error {
	s.invalidated++
	s.session = nil
	return nil
}

type stubNotifier struct {
	escalations []*contracts.EscalationPayload
	documents   []*contracts.EscalationPayload
}

func (s *stubNotifier) PublishEscalation(ctx context.Context, payload *contracts.EscalationPayload) error {
	s.escalations = append(s.escalations, payload)
	return nil
}

func (s *stubNotifier) RequestDocument(ctx context.Context, payload *contracts.EscalationPayload) error {
	s.documents = append(s.documents, payload)
	return nil
}

type stubAuditStorage struct{}

func (stubAuditStorage) PutScreenshot(ctx context.Context, objectName string, data []byte) (string, error) {
	return objectName, nil
}

func (stubAuditStorage) PresignedURL(ctx context.Context, reference string, expiry time.Duration) (string, error) {
	return "https://audit.example.com/" + reference, nil
}

type stubOracle struct{ eligible bool }

func (s stubOracle) Verify(ctx context.Context, request *contracts.EligibilityRequest) (*contracts.EligibilityResult, error) {
	return &contracts.EligibilityResult{Eligible: s.eligible}, nil
}

type agentFixture struct {
	agent    *Agent
	orders   *portaltest.MemoryOrderRepository
	sessions *stubSessionStore
	notifier *stubNotifier
	browser  *stubBrowser
}

func newAgentFixture(t *testing.T, browser *stubBrowser, sessions *stubSessionStore) *agentFixture {
	t.Helper()
	internalConfig := &config.InternalConfig{
		App: config.App{
			PreviewTokenSecret:     "preview-secret",
			PreviewTokenTTLMinutes: 60,
		},
		Portal: config.Portal{
			Name:                      "quest",
			LoginURL:                  "https://portal.example.com/login",
			OrderEntryURL:             "https://portal.example.com/order/new",
			Username:                  "svc-account",
			Password:                  "hunter2",
			InteractionTimeoutSeconds: 2,
			InteractionsPerSecond:     1000,
			PollIntervalSeconds:       1,
		},
		Session:  config.Session{TTLMinutes: 14},
		Retry:    config.Retry{MaxAttempts: 2, BackoffBaseMs: 1, BackoffCapMs: 5},
		Adaptive: config.Adaptive{MaxExcerptBytes: 1024, MinConfidence: 0.5},
	}
	log := zap.NewNop()
	orders := portaltest.NewMemoryOrderRepository()
	notifier := &stubNotifier{}
	storage := stubAuditStorage{}

	elementResolver := resolver.NewResolver(resolver.DefaultCatalog("quest"), nil, internalConfig, log)
	popupSweeper := sweeper.NewSweeper(log)
	recorder := audit.NewRecorder(storage, orders, log)
	loginFlow := authflow.NewAuthFlow(elementResolver, popupSweeper, sessions, internalConfig, log)
	portalNavigator := navigator.NewNavigator(elementResolver, popupSweeper, recorder, internalConfig, log)
	patientReconciler := reconciler.NewReconciler(stubOracle{eligible: true}, log)
	retryPolicy := retrypolicy.NewPolicy(internalConfig)

	return &agentFixture{
		agent: NewAgent(browser, sessions, orders, storage, notifier, notifier,
			loginFlow, portalNavigator, patientReconciler, retryPolicy, internalConfig, log),
		orders:   orders,
		sessions: sessions,
		notifier: notifier,
		browser:  browser,
	}
}

func seededSession() *stubSessionStore {
	return &stubSessionStore{session: &models.Session{
		Portal:    "quest",
		State:     []byte(`{"cookies":[]}`),
		ExpiresAt: time.Now().Add(10 * time.Minute),
		Valid:     true,
	}}
}

// orderEntryPage builds a page with the whole workflow's controls present.
func orderEntryPage() *portaltest.FakePage {
	page := portaltest.NewFakePage()
	page.Add(portaltest.NewInput("#searchLastName", "searchLastName"))
	page.Add(portaltest.NewInput("#searchDob", "searchDob"))
	page.Add(portaltest.NewButton("#patientSearchBtn", "Search"))
	page.Add(portaltest.NewButton("#createPatientBtn", "Create Patient"))
	page.Add(portaltest.NewInput("#firstName", "firstName"))
	page.Add(portaltest.NewInput("#lastName", "lastName"))
	page.Add(portaltest.NewInput("#dateOfBirth", "dob"))
	page.Add(fakeSelect("#sex"))
	page.Add(portaltest.NewInput("#phone", "phone"))
	page.Add(portaltest.NewInput("#addressLine1", "address1"))
	page.Add(portaltest.NewInput("#city", "city"))
	page.Add(fakeSelect("#state"))
	page.Add(portaltest.NewInput("#zip", "zip"))
	page.Add(portaltest.NewInput("#memberId", "memberId"))
	page.Add(fakeSelect("#payer"))
	page.Add(fakeSelect("#billMethod"))
	page.Add(portaltest.NewButton("#savePatientBtn", "Save"))
	page.Add(fakeSelect("#orderingProvider"))
	page.Add(portaltest.NewInput("#testSearch", "testSearch"))
	page.Add(portaltest.NewButton(".test-result-row", "CBC"))
	page.Add(portaltest.NewInput("#dxSearch", "diagnosisSearch"))
	page.Add(portaltest.NewButton(".dx-result-row", "E11.9"))
	page.Add(portaltest.NewInput("#orderDate", "orderDate"))
	page.Add(portaltest.NewButton("#validateOrderBtn", "Validate"))
	submit := portaltest.NewButton("#submitOrderBtn", "Submit Order")
	submit.OnClick = func() {
		page.PageText = "Order received. Requisition #: Q-20260830-114"
	}
	page.Add(submit)
	return page
}

func fakeSelect(selector string) *portaltest.FakeElement {
	return &portaltest.FakeElement{Selector: selector, Tag: "select", IsVisible: true, IsEnabled: true}
}

func pendingOrder(t *testing.T, fx *agentFixture, preview bool) string {
	t.Helper()
	id, err := fx.orders.CreateOrder(context.Background(), &models.Order{
		CorrelationID: "corr-1",
		Portal:        "quest",
		Status:        models.OrderStatusPending,
		Request: models.OrderRequest{
			CorrelationID: "corr-1",
			Patient: models.Patient{
				FirstName:     "Maria",
				LastName:      "Santos",
				DateOfBirth:   "1984-03-12",
				Sex:           "F",
				PayerCode:     "AETNA",
				PayerMemberID: "W1234567",
				BillMethod:    "client",
				Address:       models.Address{Line1: "12 Elm St", City: "Springfield", State: "IL", Zip: "62704"},
			},
			Tests:     []models.TestEntry{{Code: "CBC"}},
			Diagnoses: []models.Diagnosis{{Code: "E11.9"}},
			Provider:  models.Provider{FirstName: "James", LastName: "Wong", NPI: "1234567893"},
			Options:   models.OrderOptions{Preview: preview},
		},
	})
	require.NoError(t, err)
	return id
}

func TestProcessNextEmptyQueue(t *testing.T) {
	fx := newAgentFixture(t, &stubBrowser{page: orderEntryPage()}, seededSession())

	processed, err := fx.agent.ProcessNext(context.Background())

	require.NoError(t, err)
	assert.False(t, processed)
}

func TestProcessNextCompletesOrder(t *testing.T) {
	fx := newAgentFixture(t, &stubBrowser{page: orderEntryPage()}, seededSession())
	orderID := pendingOrder(t, fx, false)

	processed, err := fx.agent.ProcessNext(context.Background())

	require.NoError(t, err)
	assert.True(t, processed)
	order, err := fx.orders.FindByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)
	assert.Equal(t, "Q-20260830-114", order.ConfirmationID)
	assert.Equal(t, 1, order.Attempts)
	assert.NotNil(t, order.CompletedAt)
	// Reused the stored session: page opened with its state, no login.
	assert.Equal(t, []byte(`{"cookies":[]}`), fx.browser.lastState)
	assert.Zero(t, fx.sessions.saved)
}

func TestProcessNextLogsInWhenNoSession(t *testing.T) {
	page := orderEntryPage()
	page.Add(portaltest.NewInput("#username", "username"))
	page.Add(portaltest.NewInput("#password", "password"))
	login := portaltest.NewButton("#loginBtn", "Sign In")
	login.OnClick = func() {
		page.Add(portaltest.NewButton("#newOrderLink", "New Order"))
	}
	page.Add(login)
	fx := newAgentFixture(t, &stubBrowser{page: page}, &stubSessionStore{})
	orderID := pendingOrder(t, fx, false)

	_, err := fx.agent.ProcessNext(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, fx.sessions.saved)
	order, err := fx.orders.FindByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)
}

func TestProcessNextPreviewParksOrder(t *testing.T) {
	fx := newAgentFixture(t, &stubBrowser{page: orderEntryPage()}, seededSession())
	orderID := pendingOrder(t, fx, true)

	_, err := fx.agent.ProcessNext(context.Background())

	require.NoError(t, err)
	order, err := fx.orders.FindByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPreview, order.Status)
	require.NotEmpty(t, order.PreviewRef)

	tokenOrderID, err := utils.ParsePreviewToken(order.PreviewRef, "preview-secret")
	require.NoError(t, err)
	assert.Equal(t, orderID, tokenOrderID)
}

func TestProcessNextApprovedPreviewSubmits(t *testing.T) {
	fx := newAgentFixture(t, &stubBrowser{page: orderEntryPage()}, seededSession())
	orderID := pendingOrder(t, fx, true)
	require.NoError(t, fx.orders.ApprovePreview(context.Background(), orderID))

	_, err := fx.agent.ProcessNext(context.Background())

	require.NoError(t, err)
	order, err := fx.orders.FindByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)
}

func TestProcessNextPortalRejectionEscalatesWithDocument(t *testing.T) {
	page := orderEntryPage()
	validate := portaltest.NewButton("#validateOrderBtn", "Validate")
	validate.OnClick = func() {
		page.Add(&portaltest.FakeElement{
			Selector:  ".validation-error",
			Tag:       "div",
			TextValue: "Diagnosis does not support medical necessity",
			IsVisible: true,
			IsEnabled: true,
		})
	}
	page.Remove("#validateOrderBtn")
	page.Add(validate)
	fx := newAgentFixture(t, &stubBrowser{page: page}, seededSession())
	orderID := pendingOrder(t, fx, false)

	_, err := fx.agent.ProcessNext(context.Background())

	require.NoError(t, err)
	order, err := fx.orders.FindByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusNeedsManualReview, order.Status)
	assert.True(t, order.DocumentFallback)
	assert.Equal(t, 1, order.Attempts)
	require.Len(t, fx.notifier.escalations, 1)
	require.Len(t, fx.notifier.documents, 1)
	assert.Contains(t, fx.notifier.escalations[0].FailureReason, "medical necessity")
	assert.NotEmpty(t, fx.notifier.escalations[0].ScreenshotURL)
}

func TestProcessNextTransientFailureExhaustsAttempts(t *testing.T) {
	browser := &stubBrowser{newErr: errors.New("browser crashed")}
	fx := newAgentFixture(t, browser, seededSession())
	orderID := pendingOrder(t, fx, false)

	_, err := fx.agent.ProcessNext(context.Background())

	require.NoError(t, err)
	order, err := fx.orders.FindByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusNeedsManualReview, order.Status)
	assert.False(t, order.DocumentFallback)
	assert.Equal(t, 2, order.Attempts)
	assert.Len(t, fx.notifier.escalations, 1)
	assert.Empty(t, fx.notifier.documents)
}

func TestProcessNextAuthFailureRefreshesSession(t *testing.T) {
	browser := &stubBrowser{newErr: errors.New("browser crashed")}
	fx := newAgentFixture(t, browser, seededSession())
	pendingOrder(t, fx, false)

	_, err := fx.agent.ProcessNext(context.Background())

	require.NoError(t, err)
	// The first failure happened before any navigation, so the retry started
	// from a fresh login.
	assert.Equal(t, 1, fx.sessions.invalidated)
}

func TestProcessNextShutdownMidRetryReleasesOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// The run context dies while the first attempt is in flight; the attempt
	// fails at the next stage boundary and the retry wait sees the shutdown.
	browser := &stubBrowser{page: orderEntryPage(), onNew: cancel}
	fx := newAgentFixture(t, browser, seededSession())
	orderID := pendingOrder(t, fx, false)

	_, err := fx.agent.ProcessNext(ctx)

	require.NoError(t, err)
	order, err := fx.orders.FindByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, 1, order.Attempts)
	assert.Empty(t, fx.notifier.escalations)
	require.NotEmpty(t, order.AuditRefs)
	assert.Equal(t, string(models.StageAbandoned), order.AuditRefs[len(order.AuditRefs)-1].Stage)

	// A later run claims the released order and finishes it.
	processed, err := fx.agent.ProcessNext(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)
	order, err = fx.orders.FindByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)
}

func TestProcessNextReclaimsStaleClaim(t *testing.T) {
	fx := newAgentFixture(t, &stubBrowser{page: orderEntryPage()}, seededSession())
	orderID := pendingOrder(t, fx, false)
	stale := time.Now().Add(-2 * portaltest.ClaimLease)
	fx.orders.Orders[orderID].Status = models.OrderStatusProcessing
	fx.orders.Orders[orderID].LastClaimedAt = &stale

	processed, err := fx.agent.ProcessNext(context.Background())

	require.NoError(t, err)
	assert.True(t, processed)
	order, err := fx.orders.FindByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)
}

func TestProcessNextSkipsFreshClaim(t *testing.T) {
	fx := newAgentFixture(t, &stubBrowser{page: orderEntryPage()}, seededSession())
	orderID := pendingOrder(t, fx, false)
	now := time.Now()
	fx.orders.Orders[orderID].Status = models.OrderStatusProcessing
	fx.orders.Orders[orderID].LastClaimedAt = &now

	processed, err := fx.agent.ProcessNext(context.Background())

	require.NoError(t, err)
	assert.False(t, processed)
}

func TestProcessNextAttemptBudgetSpansRuns(t *testing.T) {
	browser := &stubBrowser{newErr: errors.New("browser crashed")}
	fx := newAgentFixture(t, browser, seededSession())
	orderID := pendingOrder(t, fx, false)
	// One attempt already burned by an earlier claim.
	require.NoError(t, fx.orders.IncrementAttempts(context.Background(), orderID))

	_, err := fx.agent.ProcessNext(context.Background())

	require.NoError(t, err)
	order, err := fx.orders.FindByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusNeedsManualReview, order.Status)
	assert.Equal(t, 2, order.Attempts)
	assert.Len(t, fx.notifier.escalations, 1)
}

func TestRunStopsOnCancel(t *testing.T) {
	fx := newAgentFixture(t, &stubBrowser{page: orderEntryPage()}, seededSession())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		fx.agent.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("agent did not stop on cancel")
	}
}
