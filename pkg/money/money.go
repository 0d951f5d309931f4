// Package money holds the rounding and comparison rules shared by every
// monetary calculation in the PMS. Amounts are decimals in the hotel's base
// currency.
package money

import "github.com/shopspring/decimal"

// Tolerance is the largest difference between a stored and a recomputed
// amount that is still considered equal.
var Tolerance = decimal.RequireFromString("0.01")

var hundred = decimal.NewFromInt(100)

// Round2 rounds to cents.
func Round2(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

// Percent returns round2(base * rate / 100). Rate is a percentage.
func Percent(base, rate decimal.Decimal) decimal.Decimal {
	if base.IsZero() || rate.IsZero() {
		return decimal.Zero
	}
	return Round2(base.Mul(rate).Div(hundred))
}

// Sum adds the values.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Equal reports whether a and b differ by no more than Tolerance.
func Equal(a, b decimal.Decimal) bool {
	return WithinTolerance(a, b, Tolerance)
}

// WithinTolerance reports whether |a-b| <= tolerance.
func WithinTolerance(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}

// FromFloat converts a float amount, rounding to cents.
func FromFloat(v float64) decimal.Decimal {
	return Round2(decimal.NewFromFloat(v))
}
