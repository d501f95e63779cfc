package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrPercentOutOfRange is returned for a discount percent that a float64
// could not hold.
var ErrPercentOutOfRange = errors.New("pricing: discount percent out of range")

// Decimal exponent bounds of a finite float64, counting subnormals.
const (
	maxPercentDigits   = 309
	minPercentExponent = -324
)

// Item describes a line item used for invoice calculation.
type Item struct {
	Quantity  int
	UnitPrice decimal.Decimal
}

// Summary aggregates computed invoice components. Values are unrounded; use
// FormatMoney for presentation.
type Summary struct {
	LineTotals      []decimal.Decimal
	Subtotal        decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	Final           decimal.Decimal
	TotalItems      int
}

// Compute calculates invoice totals for items at discountPercent. Any finite
// percent is accepted; only the final amount is floored at zero, so a percent
// above 100 yields a discount larger than the subtotal and a zero final.
func Compute(items []Item, discountPercent decimal.Decimal) Summary {
	lineTotals := make([]decimal.Decimal, len(items))
	subtotal := decimal.Zero
	totalItems := 0
	for i, it := range items {
		if it.Quantity <= 0 {
			lineTotals[i] = decimal.Zero
			continue
		}
		lineTotals[i] = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		subtotal = subtotal.Add(lineTotals[i])
		totalItems += it.Quantity
	}
	discount := subtotal.Mul(discountPercent).Shift(-2)
	final := subtotal.Sub(discount)
	if final.IsNegative() {
		final = decimal.Zero
	}
	return Summary{
		LineTotals:      lineTotals,
		Subtotal:        subtotal,
		DiscountPercent: discountPercent,
		DiscountAmount:  discount,
		Final:           final,
		TotalItems:      totalItems,
	}
}

// ValidatePercent reports whether p is a finite discount percent: its
// magnitude stays below 1e309 and it has no digits finer than 1e-324. Only
// the exponent and coefficient length are read, never the expanded value.
func ValidatePercent(p decimal.Decimal) error {
	if p.IsZero() {
		return nil
	}
	exp := int(p.Exponent())
	if exp < minPercentExponent || p.NumDigits()+exp > maxPercentDigits {
		return ErrPercentOutOfRange
	}
	return nil
}

// FormatMoney renders d with exactly two fractional digits, rounding half away
// from zero.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}
