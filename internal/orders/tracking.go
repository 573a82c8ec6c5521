package orders

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/foodsource-dev/foodsource/internal/apperr"
	"github.com/foodsource-dev/foodsource/internal/shipping"
)

// TrackingHandlers let a seller attach carrier and tracking number to an
// order and let either party read the shipment status back.
type TrackingHandlers struct {
	store   Store
	tracker *shipping.Tracker
}

func NewTrackingHandlers(store Store, tracker *shipping.Tracker) *TrackingHandlers {
	return &TrackingHandlers{store: store, tracker: tracker}
}

// SetTracking overwrites any prior tracking info unconditionally; the last
// write wins.
func (h *TrackingHandlers) SetTracking(c echo.Context) error {
	sellerID, ok := c.Get("user_id").(string)
	if !ok || sellerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	orderID := c.Param("id")
	if orderID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing order id in URL"})
	}

	var req struct {
		TrackingNumber string `json:"tracking_number"`
		CarrierCode    string `json:"carrier_code"`
	}
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.TrackingNumber) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tracking_number required"})
	}

	order, err := h.store.OrderByID(c.Request().Context(), orderID)
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": "order not found"})
	}
	if order.SellerID != sellerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your order"})
	}

	carrier := strings.ToLower(strings.TrimSpace(req.CarrierCode))
	if err := h.store.SetTracking(c.Request().Context(), orderID, req.TrackingNumber, carrier); err != nil {
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": "failed to update tracking"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "tracking updated"})
}

// GetTracking returns the tracking pair plus a best-effort carrier status.
// An order with no tracking yet is a valid, displayable state.
func (h *TrackingHandlers) GetTracking(c echo.Context) error {
	orderID := c.Param("id")
	if orderID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing order id in URL"})
	}

	number, carrier, err := h.store.Tracking(c.Request().Context(), orderID)
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": "order not found"})
	}

	status := shipping.StatusAwaitingShipment
	if number != "" {
		status = h.tracker.Status(c.Request().Context(), number, carrier)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"tracking_number": number,
		"carrier_code":    carrier,
		"status":          status,
	})
}
