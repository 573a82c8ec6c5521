package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCentsRoundTrip(t *testing.T) {
	cases := []struct {
		amount string
		cents  int64
	}{
		{"0", 0},
		{"0.01", 1},
		{"2.99", 299},
		{"10.98", 1098},
		{"1234.56", 123456},
	}
	for _, tc := range cases {
		d := decimal.RequireFromString(tc.amount)
		assert.Equal(t, tc.cents, Cents(d), "Cents(%s)", tc.amount)
		assert.True(t, FromCents(tc.cents).Equal(d), "FromCents(%d) = %s", tc.cents, FromCents(tc.cents))
	}
}

func TestCentsSurvivesRepeatedAddition(t *testing.T) {
	// 2.99 + 2.99 + 5.00 must be exactly 10.98, never 10.979999...
	sum := decimal.Zero
	for _, s := range []string{"2.99", "2.99", "5.00"} {
		sum = sum.Add(decimal.RequireFromString(s))
	}
	assert.Equal(t, int64(1098), Cents(sum))
}
