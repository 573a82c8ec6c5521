package orders

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/foodsource-dev/foodsource/internal/alerts"
	"github.com/foodsource-dev/foodsource/internal/apperr"
	"github.com/foodsource-dev/foodsource/internal/cart"
	"github.com/foodsource-dev/foodsource/internal/db"
	"github.com/foodsource-dev/foodsource/internal/money"
	"github.com/foodsource-dev/foodsource/internal/payments"
)

// Handlers wire the checkout pipeline: cart -> intent -> confirmation
// outcome -> registrar.
type Handlers struct {
	carts     *cart.Registry
	broker    *payments.Broker
	flows     *payments.Flows
	registrar *Registrar
	store     Store
}

func NewHandlers(carts *cart.Registry, broker *payments.Broker, flows *payments.Flows, registrar *Registrar, store Store) *Handlers {
	return &Handlers{carts: carts, broker: broker, flows: flows, registrar: registrar, store: store}
}

// CreateIntent starts a checkout: the buyer's cart total is converted to
// minor units and exchanged for a client secret.
func (h *Handlers) CreateIntent(c echo.Context) error {
	buyerID, ok := c.Get("user_id").(string)
	if !ok || buyerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req struct {
		SellerID        string `json:"seller_id"`
		ShippingAddress string `json:"shipping_address"`
	}
	if err := c.Bind(&req); err != nil || req.SellerID == "" || req.ShippingAddress == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seller_id and shipping_address required"})
	}

	crt := h.carts.Cart(buyerID)
	if crt.Len() == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cart is empty"})
	}

	result, err := h.broker.CreateIntent(c.Request().Context(),
		money.Cents(crt.TotalPrice()), req.SellerID, req.ShippingAddress)
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			return c.JSON(http.StatusConflict, echo.Map{"error": "seller not onboarded for payments"})
		}
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": "could not create payment intent"})
	}
	return c.JSON(http.StatusOK, result)
}

type completeRequest struct {
	IntentID        string `json:"intent_id"`
	SellerName      string `json:"seller_name"`
	ShippingAddress string `json:"shipping_address"`
	Outcome         string `json:"outcome"` // completed | failed | canceled
	Reason          string `json:"reason,omitempty"`
}

// Complete records the terminal outcome of the payment sheet. Only a
// completed outcome registers the order; failed keeps the cart so the buyer
// can retry with a new intent, canceled is a silent no-op. The registered
// order is bound to the stored intent record: its seller and amount, not the
// request's.
func (h *Handlers) Complete(c echo.Context) error {
	buyerID, ok := c.Get("user_id").(string)
	if !ok || buyerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req completeRequest
	if err := c.Bind(&req); err != nil || req.IntentID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	flow, ok := h.flows.Get(req.IntentID)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown payment intent"})
	}

	crt := h.carts.Cart(buyerID)

	switch req.Outcome {
	case "canceled":
		if err := flow.Cancel(); err != nil {
			return c.JSON(http.StatusConflict, echo.Map{"error": "payment already settled"})
		}
		h.flows.Drop(req.IntentID)
		return c.JSON(http.StatusOK, echo.Map{"status": "canceled"})

	case "failed":
		if err := flow.Fail(req.Reason); err != nil {
			return c.JSON(http.StatusConflict, echo.Map{"error": "payment already settled"})
		}
		h.flows.Drop(req.IntentID)
		return c.JSON(http.StatusPaymentRequired, echo.Map{"status": "failed", "reason": req.Reason})

	case "completed":
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid outcome"})
	}

	intent, err := h.broker.Intent(c.Request().Context(), req.IntentID)
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": "unknown payment intent"})
	}
	// The processor captured intent.AmountCents; a cart that no longer sums
	// to it cannot be registered against this payment.
	if money.Cents(crt.TotalPrice()) != intent.AmountCents {
		return c.JSON(http.StatusConflict, echo.Map{"error": "cart changed since the payment intent was created"})
	}

	// One-shot: a second completion for the same intent is rejected here,
	// before any order is written.
	if err := flow.Complete(); err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "payment already settled"})
	}
	h.flows.Drop(req.IntentID)

	items := make([]LineItem, 0, crt.Len())
	for _, line := range crt.Items() {
		items = append(items, LineItem{
			ProductID:  line.Product.ID,
			Name:       line.Product.Name,
			PriceCents: money.Cents(line.Product.Price),
			Quantity:   line.Quantity,
			ImageURL:   line.Product.ImageURL,
		})
	}

	order, err := h.registrar.Register(c.Request().Context(), NewOrder{
		BuyerID:         buyerID,
		SellerID:        intent.SellerID,
		SellerName:      req.SellerName,
		Products:        items,
		TotalCents:      intent.AmountCents,
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		var half *EarningsUpdateError
		if errors.As(err, &half) {
			// The order exists; only the earnings step needs attention. The
			// cart stays untouched either way.
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"error":    "earnings update failed",
				"order_id": half.OrderID,
			})
		}
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": "failed to register order"})
	}

	if err := h.broker.Settle(c.Request().Context(), req.IntentID); err != nil {
		// A captured payment left pending would be misread as abandoned by
		// the expiry sweep; retry the flip off the request path.
		log.Printf("[orders] settle failed for intent %s, retry queued: %v", req.IntentID, err)
		_ = alerts.EnqueueSettleRetry(req.IntentID)
	}
	crt.Clear()
	h.carts.Drop(buyerID)

	// Receipt and payout notices are best-effort.
	if db.Initialized() {
		var buyer struct {
			Email string `bson:"email"`
		}
		_ = db.Collection("buyers").FindOne(c.Request().Context(), bson.M{"_id": buyerID}).Decode(&buyer)
		if buyer.Email != "" {
			_ = alerts.EnqueueOrderReceipt(order.ID, buyerID, buyer.Email, order.TotalAmount().StringFixed(2))
		}
		var seller struct {
			Email string `bson:"email"`
		}
		_ = db.Collection("sellers").FindOne(c.Request().Context(), bson.M{"_id": intent.SellerID}).Decode(&seller)
		if seller.Email != "" {
			_ = alerts.EnqueuePayoutNotice(order.ID, intent.SellerID, seller.Email, order.TotalAmount().StringFixed(2))
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{"order": order})
}

// RetryEarnings re-runs the earnings step for an order whose registration
// half-committed. Safe to call repeatedly only after a reported failure;
// a successful retry must not be repeated.
func (h *Handlers) RetryEarnings(c echo.Context) error {
	orderID := c.Param("id")
	if orderID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing order id in URL"})
	}
	if err := h.registrar.RetryEarnings(c.Request().Context(), orderID); err != nil {
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": "earnings retry failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "earnings settled"})
}

// GetBuyerOrders lists the buyer's orders, newest first.
func (h *Handlers) GetBuyerOrders(c echo.Context) error {
	buyerID, ok := c.Get("user_id").(string)
	if !ok || buyerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	list, err := h.store.OrdersByBuyer(c.Request().Context(), buyerID)
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": "failed to fetch orders"})
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": list})
}

// GetSellerOrders lists orders placed against the authenticated seller.
func (h *Handlers) GetSellerOrders(c echo.Context) error {
	sellerID, ok := c.Get("user_id").(string)
	if !ok || sellerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	list, err := h.store.OrdersBySeller(c.Request().Context(), sellerID)
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": "failed to fetch orders"})
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": list})
}
