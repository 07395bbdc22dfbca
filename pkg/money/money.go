// Package money holds the simple-interest arithmetic and the single
// decimal-to-number conversion used at the API boundary.
package money

import "github.com/shopspring/decimal"

// DefaultRate is the interest rate (percent per period) used when neither
// the offer nor the request carries one.
const DefaultRate = 6.0

var hundred = decimal.NewFromInt(100)

// TotalWithInterest returns principal + principal*ratePct/100, non-compounding,
// rounded to cents.
func TotalWithInterest(principal decimal.Decimal, ratePct float64) decimal.Decimal {
	interest := principal.Mul(decimal.NewFromFloat(ratePct)).Div(hundred)
	return principal.Add(interest).Round(2)
}

// Remaining returns max(0, total - funded).
func Remaining(total, funded decimal.Decimal) decimal.Decimal {
	d := total.Sub(funded)
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// EffectiveRate picks the first non-nil rate, falling back to DefaultRate.
func EffectiveRate(rates ...*float64) float64 {
	for _, r := range rates {
		if r != nil {
			return *r
		}
	}
	return DefaultRate
}

// ToNumber converts a stored decimal to a plain JSON number.
func ToNumber(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// NullToNumber is ToNumber for optional amounts.
func NullToNumber(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	v := ToNumber(d.Decimal)
	return &v
}
