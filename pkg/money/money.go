package money

import "github.com/shopspring/decimal"

// Prices persist as float64; all arithmetic on them goes through decimal so
// that repeated line sums do not accumulate binary-float drift.

// FromPrice converts a stored unit price into a decimal amount.
func FromPrice(price float64) decimal.Decimal {
	return decimal.NewFromFloat(price)
}

// LineTotal returns price multiplied by quantity.
func LineTotal(price float64, qty int) decimal.Decimal {
	return FromPrice(price).Mul(decimal.NewFromInt(int64(qty)))
}

// Format renders an amount with exactly two fractional digits.
func Format(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
