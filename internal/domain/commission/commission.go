// Package commission implements the platform's tiered commission schedule.
// Rates depend on the unit price alone, never on quantity or order totals.
package commission

import "github.com/shopspring/decimal"

var (
	rateLow  = decimal.NewFromFloat(0.30)
	rateMid  = decimal.NewFromFloat(0.20)
	rateHigh = decimal.NewFromFloat(0.15)

	tierMid  = decimal.NewFromInt(50)
	tierHigh = decimal.NewFromInt(1000)

	hundred = decimal.NewFromInt(100)
)

// Rate returns the commission rate for a unit price. Tier boundaries are
// inclusive of the lower tier: exactly 50 pays 0.30, exactly 1000 pays 0.20.
func Rate(unitPrice decimal.Decimal) decimal.Decimal {
	switch {
	case unitPrice.GreaterThan(tierHigh):
		return rateHigh
	case unitPrice.GreaterThan(tierMid):
		return rateMid
	default:
		return rateLow
	}
}

// AmountMinor returns the commission for one order line in minor currency
// units, rounded half-up to the smallest unit. Each line is rounded on its
// own; the aggregate application fee is the sum of rounded lines.
func AmountMinor(unitPrice decimal.Decimal, quantity int) int64 {
	raw := unitPrice.
		Mul(decimal.NewFromInt(int64(quantity))).
		Mul(Rate(unitPrice)).
		Mul(hundred)
	return raw.Round(0).IntPart()
}
