package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/foodsource-dev/foodsource/internal/apperr"
)

// EarningsUpdateError reports the half-committed state: the order document
// was written but the seller earnings update failed. The order id lets the
// caller retry just the earnings step or flag the order for reconciliation;
// re-running the full registration would duplicate the order.
type EarningsUpdateError struct {
	OrderID string
	Err     error
}

func (e *EarningsUpdateError) Error() string {
	return fmt.Sprintf("order %s created but earnings update failed: %v", e.OrderID, e.Err)
}

func (e *EarningsUpdateError) Unwrap() error { return e.Err }

func (e *EarningsUpdateError) ErrKind() apperr.Kind { return apperr.PartialCommit }

// Registrar durably records a completed purchase and settles the seller's
// cumulative earnings.
type Registrar struct {
	store Store
}

func NewRegistrar(store Store) *Registrar {
	return &Registrar{store: store}
}

// Register creates the order record and then runs the earnings transaction.
// The order insert happens-before the earnings attempt, so a half-failure
// always means "order exists, earnings lag", never the reverse.
func (r *Registrar) Register(ctx context.Context, in NewOrder) (*Order, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	order := &Order{
		BuyerID:         in.BuyerID,
		SellerID:        in.SellerID,
		SellerName:      in.SellerName,
		Products:        in.Products,
		TotalCents:      in.TotalCents,
		ShippingAddress: in.ShippingAddress,
	}
	if err := r.store.InsertOrder(ctx, order); err != nil {
		return nil, err
	}

	if err := r.store.AddEarnings(ctx, in.SellerID, in.TotalCents); err != nil {
		return order, &EarningsUpdateError{OrderID: order.ID, Err: err}
	}
	return order, nil
}

// RetryEarnings re-runs only the earnings step for an order that previously
// half-committed.
func (r *Registrar) RetryEarnings(ctx context.Context, orderID string) error {
	order, err := r.store.OrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	if err := r.store.AddEarnings(ctx, order.SellerID, order.TotalCents); err != nil {
		return &EarningsUpdateError{OrderID: order.ID, Err: err}
	}
	return nil
}

func validate(in NewOrder) error {
	switch {
	case in.BuyerID == "":
		return apperr.E(apperr.Validation, "orders.Register", fmt.Errorf("buyer id required"))
	case in.SellerID == "":
		return apperr.E(apperr.Validation, "orders.Register", fmt.Errorf("seller id required"))
	case len(in.Products) == 0:
		return apperr.E(apperr.Validation, "orders.Register", fmt.Errorf("order has no products"))
	case strings.TrimSpace(in.ShippingAddress) == "":
		return apperr.E(apperr.Validation, "orders.Register", fmt.Errorf("shipping address required"))
	}

	// The total must equal the line items it was computed from.
	var sum int64
	for _, li := range in.Products {
		if li.Quantity < 1 {
			return apperr.E(apperr.Validation, "orders.Register",
				fmt.Errorf("product %s has quantity %d", li.ProductID, li.Quantity))
		}
		sum += li.PriceCents * int64(li.Quantity)
	}
	if sum != in.TotalCents {
		return apperr.E(apperr.Validation, "orders.Register",
			fmt.Errorf("total %d does not match line items %d", in.TotalCents, sum))
	}
	return nil
}
