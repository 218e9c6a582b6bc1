package domain

import "github.com/shopspring/decimal"

// MoneyPlaces is the number of decimal places stored for any amount.
const MoneyPlaces = 2

// LineTotal computes unit × quantity exactly.
func LineTotal(unit decimal.Decimal, quantity int32) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt32(quantity))
}

// SumLineTotals adds line totals without rounding.
func SumLineTotals(lines ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l)
	}
	return total
}

// IsValidPrice reports whether d is a non-negative amount with at most two
// decimal places, i.e. representable in the ledger without rounding.
func IsValidPrice(d decimal.Decimal) bool {
	return !d.IsNegative() && d.Equal(d.Truncate(MoneyPlaces))
}
