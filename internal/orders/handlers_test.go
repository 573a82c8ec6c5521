package orders

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodsource-dev/foodsource/internal/apperr"
	"github.com/foodsource-dev/foodsource/internal/cart"
	"github.com/foodsource-dev/foodsource/internal/catalog"
	"github.com/foodsource-dev/foodsource/internal/payments"
)

type stubIntents struct {
	intents map[string]payments.Intent
	markErr error
}

func newStubIntents() *stubIntents {
	return &stubIntents{intents: make(map[string]payments.Intent)}
}

func (s *stubIntents) SaveIntent(_ context.Context, intent payments.Intent) error {
	s.intents[intent.ID] = intent
	return nil
}

func (s *stubIntents) IntentByID(_ context.Context, intentID string) (*payments.Intent, error) {
	in, ok := s.intents[intentID]
	if !ok {
		return nil, apperr.E(apperr.NotFound, "test.IntentByID", fmt.Errorf("intent %s", intentID))
	}
	return &in, nil
}

func (s *stubIntents) MarkCompleted(_ context.Context, intentID string) error {
	if s.markErr != nil {
		return s.markErr
	}
	in := s.intents[intentID]
	in.Status = payments.IntentCompleted
	s.intents[intentID] = in
	return nil
}

func (s *stubIntents) ExpireOlderThan(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type checkoutFixture struct {
	handlers *Handlers
	store    *fakeStore
	carts    *cart.Registry
	flows    *payments.Flows
	intents  *stubIntents
}

// checkoutReady wires a buyer cart totaling 10.98 and a presented flow for a
// matching 1098-cent intent destined for seller-a.
func checkoutReady(t *testing.T) *checkoutFixture {
	t.Helper()
	store := newFakeStore()
	carts := cart.NewRegistry()
	flows := payments.NewFlows()
	intents := newStubIntents()
	broker := payments.NewBroker(nil, nil, intents, flows)

	carts.Cart("buyer-1").Add(catalog.Product{
		ID:    "p1",
		Name:  "eggs",
		Price: decimal.RequireFromString("10.98"),
	}, 1)

	require.NoError(t, intents.SaveIntent(context.Background(), payments.Intent{
		ID:          "intent-1",
		SellerID:    "seller-a",
		AmountCents: 1098,
		Status:      payments.IntentPending,
		CreatedAt:   time.Now(),
	}))
	require.NoError(t, flows.Begin("intent-1").Present())

	return &checkoutFixture{
		handlers: NewHandlers(carts, broker, flows, NewRegistrar(store), store),
		store:    store,
		carts:    carts,
		flows:    flows,
		intents:  intents,
	}
}

func postComplete(t *testing.T, h *Handlers, buyerID, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/checkout/complete", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", buyerID)
	require.NoError(t, h.Complete(c))
	return rec
}

const completeBody = `{"intent_id":"intent-1","seller_name":"Green Acres","shipping_address":"1 Farm Rd","outcome":"completed"}`

func TestCompleteRegistersAgainstIntentRecord(t *testing.T) {
	fx := checkoutReady(t)

	// The request carries no seller id at all; the intent record decides.
	rec := postComplete(t, fx.handlers, "buyer-1", completeBody)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, fx.store.orders, 1)
	for _, order := range fx.store.orders {
		assert.Equal(t, "seller-a", order.SellerID)
		assert.Equal(t, int64(1098), order.TotalCents)
	}
	assert.Equal(t, int64(1098), fx.store.earnings["seller-a"])
	assert.Equal(t, payments.IntentCompleted, fx.intents.intents["intent-1"].Status)

	// Cart and flow are released once the order is registered.
	assert.Equal(t, 0, fx.carts.Cart("buyer-1").Len())
	_, ok := fx.flows.Get("intent-1")
	assert.False(t, ok)
}

func TestCompleteRejectsCartIntentAmountMismatch(t *testing.T) {
	fx := checkoutReady(t)
	fx.carts.Cart("buyer-1").Add(catalog.Product{
		ID:    "p2",
		Name:  "honey",
		Price: decimal.RequireFromString("5.00"),
	}, 1)

	rec := postComplete(t, fx.handlers, "buyer-1", completeBody)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, fx.store.orders)
	assert.Empty(t, fx.store.earnings)

	// The flow is still open; removing the extra item lets the buyer finish.
	flow, ok := fx.flows.Get("intent-1")
	require.True(t, ok)
	assert.Equal(t, payments.SheetPresented, flow.State())
}

func TestCompleteSecondAttemptIsRejected(t *testing.T) {
	fx := checkoutReady(t)

	first := postComplete(t, fx.handlers, "buyer-1", completeBody)
	require.Equal(t, http.StatusCreated, first.Code)

	second := postComplete(t, fx.handlers, "buyer-1", completeBody)

	assert.Equal(t, http.StatusNotFound, second.Code)
	assert.Len(t, fx.store.orders, 1)
	assert.Equal(t, int64(1098), fx.store.earnings["seller-a"])
}

func TestCompleteEarningsFailureReportsOrderID(t *testing.T) {
	fx := checkoutReady(t)
	fx.store.failEarnings = true

	rec := postComplete(t, fx.handlers, "buyer-1", completeBody)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "order_id")
	require.Len(t, fx.store.orders, 1)
	for _, order := range fx.store.orders {
		assert.Equal(t, "seller-a", order.SellerID)
	}
	// The intent was not settled and the cart is preserved for follow-up.
	assert.Equal(t, payments.IntentPending, fx.intents.intents["intent-1"].Status)
	assert.Equal(t, 1, fx.carts.Cart("buyer-1").Len())
}

func TestCompleteSettleFailureIsLoggedNotDropped(t *testing.T) {
	fx := checkoutReady(t)
	fx.intents.markErr = fmt.Errorf("connection reset")

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	rec := postComplete(t, fx.handlers, "buyer-1", completeBody)

	// The order stands; the status flip is retried out of band.
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, buf.String(), "settle failed for intent intent-1")
	assert.Equal(t, int64(1098), fx.store.earnings["seller-a"])
}

func TestCompleteCanceledDropsFlowKeepsCart(t *testing.T) {
	fx := checkoutReady(t)

	rec := postComplete(t, fx.handlers, "buyer-1",
		`{"intent_id":"intent-1","outcome":"canceled"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, fx.store.orders)
	assert.Equal(t, 1, fx.carts.Cart("buyer-1").Len())
	_, ok := fx.flows.Get("intent-1")
	assert.False(t, ok)
}
