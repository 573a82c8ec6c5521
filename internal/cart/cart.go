// Package cart tracks a buyer's selected items and a running total that is
// adjusted inline with every mutation, never recomputed lazily.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/foodsource-dev/foodsource/internal/catalog"
)

// Line is one cart entry. Quantity is always >= 1 for present entries; an
// entry whose quantity reaches 0 is removed, never stored.
type Line struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Cart is buyer-local and single-actor; it carries no locking of its own.
// Products are keyed by id alone.
type Cart struct {
	items map[string]Line
	total decimal.Decimal
}

func New() *Cart {
	return &Cart{items: make(map[string]Line)}
}

// Add inserts the product or increments an existing entry. qty must be > 0.
// An existing entry keeps its stored product: the stored price is what the
// running total tracks, so re-adding the same id at a different price cannot
// make the total and the mapping disagree.
func (c *Cart) Add(p catalog.Product, qty int) bool {
	if qty <= 0 {
		return false
	}
	line, ok := c.items[p.ID]
	if !ok {
		line.Product = p
	}
	line.Quantity += qty
	c.items[p.ID] = line
	c.total = c.total.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(qty))))
	return true
}

// Remove drops the product entirely. Absent products are a no-op.
func (c *Cart) Remove(p catalog.Product) {
	line, ok := c.items[p.ID]
	if !ok {
		return
	}
	c.total = c.total.Sub(line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	delete(c.items, p.ID)
}

// SetQuantity adjusts an existing entry to qty and reports whether the
// product was present. qty <= 0 removes the entry.
func (c *Cart) SetQuantity(p catalog.Product, qty int) bool {
	line, ok := c.items[p.ID]
	if !ok {
		return false
	}
	if qty <= 0 {
		c.Remove(p)
		return true
	}
	diff := qty - line.Quantity
	line.Quantity = qty
	c.items[p.ID] = line
	c.total = c.total.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(diff))))
	return true
}

// Increase bumps the quantity by one, inserting at 1 if absent.
func (c *Cart) Increase(p catalog.Product) {
	c.Add(p, 1)
}

// Decrease lowers the quantity by one; at quantity 1 the entry is removed.
func (c *Cart) Decrease(p catalog.Product) {
	line, ok := c.items[p.ID]
	if !ok {
		return
	}
	if line.Quantity <= 1 {
		c.Remove(p)
		return
	}
	line.Quantity--
	c.items[p.ID] = line
	c.total = c.total.Sub(line.Product.Price)
}

// QuantityOf returns 0 for absent products.
func (c *Cart) QuantityOf(p catalog.Product) int {
	return c.items[p.ID].Quantity
}

// Clear empties the cart after a successful order registration.
func (c *Cart) Clear() {
	c.items = make(map[string]Line)
	c.total = decimal.Zero
}

// TotalPrice is the incrementally maintained sum of price x quantity.
func (c *Cart) TotalPrice() decimal.Decimal {
	return c.total
}

func (c *Cart) Len() int {
	return len(c.items)
}

// Items returns the current lines in no particular order.
func (c *Cart) Items() []Line {
	lines := make([]Line, 0, len(c.items))
	for _, line := range c.items {
		lines = append(lines, line)
	}
	return lines
}
