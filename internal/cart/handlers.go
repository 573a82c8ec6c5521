package cart

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/foodsource-dev/foodsource/internal/catalog"
)

type Handlers struct {
	registry *Registry
}

func NewHandlers(registry *Registry) *Handlers {
	return &Handlers{registry: registry}
}

type mutateRequest struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

func (h *Handlers) buyerCart(c echo.Context) (*Cart, bool) {
	buyerID, ok := c.Get("user_id").(string)
	if !ok || buyerID == "" {
		return nil, false
	}
	return h.registry.Cart(buyerID), true
}

func (h *Handlers) Get(c echo.Context) error {
	crt, ok := h.buyerCart(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": crt.Items(), "total_price": crt.TotalPrice()})
}

func (h *Handlers) Add(c echo.Context) error {
	crt, ok := h.buyerCart(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req mutateRequest
	if err := c.Bind(&req); err != nil || req.Product.ID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if !crt.Add(req.Product, req.Quantity) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be greater than 0"})
	}
	return c.JSON(http.StatusOK, echo.Map{"total_price": crt.TotalPrice()})
}

func (h *Handlers) Remove(c echo.Context) error {
	crt, ok := h.buyerCart(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req mutateRequest
	if err := c.Bind(&req); err != nil || req.Product.ID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	crt.Remove(req.Product)
	return c.JSON(http.StatusOK, echo.Map{"total_price": crt.TotalPrice()})
}

// SetQuantity only applies to products already in the cart; setting an
// absent product reports 404 rather than inserting it.
func (h *Handlers) SetQuantity(c echo.Context) error {
	crt, ok := h.buyerCart(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req mutateRequest
	if err := c.Bind(&req); err != nil || req.Product.ID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if !crt.SetQuantity(req.Product, req.Quantity) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not in cart"})
	}
	return c.JSON(http.StatusOK, echo.Map{"total_price": crt.TotalPrice()})
}

func (h *Handlers) Increase(c echo.Context) error {
	crt, ok := h.buyerCart(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req mutateRequest
	if err := c.Bind(&req); err != nil || req.Product.ID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	crt.Increase(req.Product)
	return c.JSON(http.StatusOK, echo.Map{"total_price": crt.TotalPrice()})
}

func (h *Handlers) Decrease(c echo.Context) error {
	crt, ok := h.buyerCart(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req mutateRequest
	if err := c.Bind(&req); err != nil || req.Product.ID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	crt.Decrease(req.Product)
	return c.JSON(http.StatusOK, echo.Map{"total_price": crt.TotalPrice()})
}

func (h *Handlers) Clear(c echo.Context) error {
	crt, ok := h.buyerCart(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	crt.Clear()
	return c.JSON(http.StatusOK, echo.Map{"total_price": crt.TotalPrice()})
}
