// Package money converts between the decimal amounts used at the API surface
// and the integer minor units stored in documents and sent to the processor.
package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Cents converts a dollar amount to integer cents.
func Cents(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}

// FromCents converts integer cents to a dollar amount.
func FromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}
