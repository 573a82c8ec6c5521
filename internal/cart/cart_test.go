package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodsource-dev/foodsource/internal/catalog"
)

func product(id, price string) catalog.Product {
	return catalog.Product{ID: id, Name: "product " + id, Price: decimal.RequireFromString(price)}
}

// recompute sums price x quantity over the final mapping; the running total
// must always match it exactly.
func recompute(c *Cart) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range c.Items() {
		sum = sum.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return sum
}

func TestAddAccumulatesQuantityAndTotal(t *testing.T) {
	c := New()
	p := product("p1", "2.99")

	require.True(t, c.Add(p, 1))
	require.True(t, c.Add(p, 2))

	assert.Equal(t, 3, c.QuantityOf(p))
	assert.True(t, c.TotalPrice().Equal(decimal.RequireFromString("8.97")),
		"got total %s", c.TotalPrice())
}

func TestAddRejectsNonPositiveQuantity(t *testing.T) {
	c := New()
	p := product("p1", "2.99")

	assert.False(t, c.Add(p, 0))
	assert.False(t, c.Add(p, -1))
	assert.Equal(t, 0, c.Len())
	assert.True(t, c.TotalPrice().IsZero())
}

func TestAddSameIDDifferentPriceKeepsStoredPrice(t *testing.T) {
	c := New()
	c.Add(product("p1", "2.99"), 1)
	c.Add(product("p1", "3.99"), 1)

	assert.Equal(t, 2, c.QuantityOf(product("p1", "0")))
	assert.True(t, c.TotalPrice().Equal(decimal.RequireFromString("5.98")),
		"got total %s", c.TotalPrice())
	assert.True(t, c.TotalPrice().Equal(recompute(c)))

	c.Remove(product("p1", "0"))

	assert.Equal(t, 0, c.Len())
	assert.True(t, c.TotalPrice().IsZero(), "empty cart total %s", c.TotalPrice())
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	c := New()
	c.Add(product("p1", "2.99"), 2)

	c.Remove(product("p2", "5.00"))

	assert.Equal(t, 1, c.Len())
	assert.True(t, c.TotalPrice().Equal(decimal.RequireFromString("5.98")))
}

func TestRemoveSubtractsWholeLine(t *testing.T) {
	c := New()
	p1 := product("p1", "2.99")
	p2 := product("p2", "5.00")
	c.Add(p1, 3)
	c.Add(p2, 1)

	c.Remove(p1)

	assert.Equal(t, 0, c.QuantityOf(p1))
	assert.True(t, c.TotalPrice().Equal(decimal.RequireFromString("5.00")))
}

func TestSetQuantityAbsentReportsFalse(t *testing.T) {
	c := New()
	c.Add(product("p1", "2.99"), 1)

	ok := c.SetQuantity(product("p2", "5.00"), 4)

	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())
	assert.True(t, c.TotalPrice().Equal(decimal.RequireFromString("2.99")))
}

func TestSetQuantityAdjustsTotalByDifference(t *testing.T) {
	c := New()
	p := product("p1", "2.99")
	c.Add(p, 5)

	require.True(t, c.SetQuantity(p, 2))

	assert.Equal(t, 2, c.QuantityOf(p))
	assert.True(t, c.TotalPrice().Equal(decimal.RequireFromString("5.98")))
}

func TestSetQuantityZeroRemovesEntry(t *testing.T) {
	c := New()
	p := product("p1", "2.99")
	c.Add(p, 2)

	require.True(t, c.SetQuantity(p, 0))

	assert.Equal(t, 0, c.Len())
	assert.True(t, c.TotalPrice().IsZero())
}

func TestIncreaseInsertsAbsentProductAtOne(t *testing.T) {
	c := New()
	p := product("p1", "2.99")

	c.Increase(p)

	assert.Equal(t, 1, c.QuantityOf(p))
	assert.True(t, c.TotalPrice().Equal(decimal.RequireFromString("2.99")))
}

func TestDecreaseAtQuantityOneRemovesEntry(t *testing.T) {
	c := New()
	p := product("p1", "2.99")
	c.Add(p, 1)

	c.Decrease(p)

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.QuantityOf(p))
	assert.True(t, c.TotalPrice().IsZero())
}

func TestDecreaseNeverLeavesZeroQuantityEntry(t *testing.T) {
	c := New()
	p := product("p1", "2.99")
	c.Add(p, 3)

	c.Decrease(p)
	c.Decrease(p)
	c.Decrease(p)
	c.Decrease(p) // already gone; no-op

	for _, line := range c.Items() {
		assert.GreaterOrEqual(t, line.Quantity, 1)
	}
	assert.Equal(t, 0, c.Len())
	assert.True(t, c.TotalPrice().IsZero())
}

func TestClearEmptiesMappingAndZeroesTotal(t *testing.T) {
	c := New()
	c.Add(product("p1", "2.99"), 2)
	c.Add(product("p2", "5.00"), 1)

	c.Clear()

	assert.Equal(t, 0, c.Len())
	assert.True(t, c.TotalPrice().IsZero())
}

func TestTotalAlwaysRecomputableFromState(t *testing.T) {
	c := New()
	p1 := product("p1", "2.99")
	p2 := product("p2", "5.00")
	p3 := product("p3", "12.49")

	c.Add(p1, 2)
	c.Add(p2, 1)
	c.Increase(p3)
	c.Increase(p1)
	c.Decrease(p2) // removes p2
	c.SetQuantity(p3, 4)
	c.SetQuantity(p2, 7) // absent, no-op
	c.Remove(p1)
	c.Add(p2, 3)
	c.Decrease(p3)

	assert.True(t, c.TotalPrice().Equal(recompute(c)),
		"running total %s != recomputed %s", c.TotalPrice(), recompute(c))
}

func TestCheckoutScenarioTotal(t *testing.T) {
	c := New()
	c.Add(product("p1", "2.99"), 2)
	c.Add(product("p2", "5.00"), 1)

	assert.True(t, c.TotalPrice().Equal(decimal.RequireFromString("10.98")),
		"got total %s", c.TotalPrice())
}

func TestRegistryIsPerBuyer(t *testing.T) {
	r := NewRegistry()
	a := r.Cart("buyer-a")
	b := r.Cart("buyer-b")

	a.Add(product("p1", "2.99"), 1)

	assert.Equal(t, 0, b.Len())
	assert.Same(t, a, r.Cart("buyer-a"))
}

func TestRegistryDropForgetsCart(t *testing.T) {
	r := NewRegistry()
	a := r.Cart("buyer-a")
	a.Add(product("p1", "2.99"), 2)

	r.Drop("buyer-a")

	fresh := r.Cart("buyer-a")
	assert.NotSame(t, a, fresh)
	assert.Equal(t, 0, fresh.Len())
}
