// Package money holds the fixed-point arithmetic helpers used by the pricing
// calculator. Every intermediate amount in a quotation is rounded to two
// decimal places before it feeds the next step, so compounding floating error
// can never change a grand total.
package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Round2 rounds an amount to 2 decimal places. decimal.Round is
// half-away-from-zero, which is half-up for the non-negative amounts this
// domain produces.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percent returns the rounded share of an amount: round(of * pct / 100).
func Percent(of decimal.Decimal, pct decimal.Decimal) decimal.Decimal {
	return Round2(of.Mul(pct).Div(hundred))
}

// Factor returns (1 - pct/100), the multiplier that survives a discount.
func Factor(pct decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(1).Sub(pct.Div(hundred))
}

// ValidPercent reports whether pct lies in [0, 100].
func ValidPercent(pct decimal.Decimal) bool {
	return !pct.IsNegative() && pct.LessThanOrEqual(hundred)
}
