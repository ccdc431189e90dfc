// Package pricing computes the monetary breakdown of a quotation from its
// lines, header discount, shipping cost and tax-inclusion flag. Calculate is
// pure: same input, same breakdown, no side effects.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"procurement-api/internal/money"
)

// ErrValidation marks inputs the calculator refuses to price. It never
// computes a total on partial or out-of-range data.
var ErrValidation = errors.New("invalid pricing input")

type Line struct {
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	TaxRatePercent  decimal.Decimal
}

type Input struct {
	Lines                 []Line
	HeaderDiscountPercent decimal.Decimal
	ShippingCost          decimal.Decimal
	TaxIncluded           bool
}

type LineBreakdown struct {
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	AfterDiscount decimal.Decimal
	Tax           decimal.Decimal
}

type Breakdown struct {
	Lines                   []LineBreakdown
	Subtotal                decimal.Decimal
	TotalLineDiscount       decimal.Decimal
	TotalAfterLineDiscount  decimal.Decimal
	HeaderDiscountAmount    decimal.Decimal
	AmountAfterAllDiscounts decimal.Decimal
	TotalTax                decimal.Decimal
	ShippingCost            decimal.Decimal
	GrandTotal              decimal.Decimal
}

// Calculate prices a quotation. The order is fixed and every intermediate
// value is rounded to 2 decimal places (half up) before the next step uses it:
// line subtotals, line discounts, header discount over the discounted sum,
// per-line tax on the amount left after both discounts, shipping added last,
// untaxed and undiscounted. When TaxIncluded is set, tax rates are kept on the
// lines but contribute nothing.
func Calculate(in Input) (*Breakdown, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	headerFactor := money.Factor(in.HeaderDiscountPercent)

	b := &Breakdown{
		Lines:        make([]LineBreakdown, 0, len(in.Lines)),
		ShippingCost: money.Round2(in.ShippingCost),
	}

	for _, l := range in.Lines {
		var lb LineBreakdown
		lb.Subtotal = money.Round2(l.Quantity.Mul(l.UnitPrice))
		lb.Discount = money.Percent(lb.Subtotal, l.DiscountPercent)
		lb.AfterDiscount = lb.Subtotal.Sub(lb.Discount)

		if !in.TaxIncluded {
			afterHeader := lb.AfterDiscount.Mul(headerFactor)
			lb.Tax = money.Percent(afterHeader, l.TaxRatePercent)
		}

		b.Subtotal = b.Subtotal.Add(lb.Subtotal)
		b.TotalLineDiscount = b.TotalLineDiscount.Add(lb.Discount)
		b.TotalAfterLineDiscount = b.TotalAfterLineDiscount.Add(lb.AfterDiscount)
		b.TotalTax = b.TotalTax.Add(lb.Tax)
		b.Lines = append(b.Lines, lb)
	}

	b.HeaderDiscountAmount = money.Percent(b.TotalAfterLineDiscount, in.HeaderDiscountPercent)
	b.AmountAfterAllDiscounts = b.TotalAfterLineDiscount.Sub(b.HeaderDiscountAmount)
	b.GrandTotal = money.Round2(b.AmountAfterAllDiscounts.Add(b.TotalTax).Add(b.ShippingCost))

	return b, nil
}

func validate(in Input) error {
	if !money.ValidPercent(in.HeaderDiscountPercent) {
		return fmt.Errorf("header discount percent must be in [0,100]: %w", ErrValidation)
	}

	if in.ShippingCost.IsNegative() {
		return fmt.Errorf("shipping cost must not be negative: %w", ErrValidation)
	}

	for i, l := range in.Lines {
		if !l.Quantity.IsPositive() {
			return fmt.Errorf("line %d: quantity must be positive: %w", i+1, ErrValidation)
		}
		if !l.UnitPrice.IsPositive() {
			return fmt.Errorf("line %d: unit price must be positive: %w", i+1, ErrValidation)
		}
		if !money.ValidPercent(l.DiscountPercent) {
			return fmt.Errorf("line %d: discount percent must be in [0,100]: %w", i+1, ErrValidation)
		}
		if !money.ValidPercent(l.TaxRatePercent) {
			return fmt.Errorf("line %d: tax rate percent must be in [0,100]: %w", i+1, ErrValidation)
		}
	}

	return nil
}
