package pricing

import (
	"github.com/shopspring/decimal"
)

// Rules holds the storefront money rules.
type Rules struct {
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
	TaxRate               decimal.Decimal
	Currency              string
}

func DefaultRules() Rules {
	return Rules{
		FreeShippingThreshold: decimal.NewFromInt(6000),
		FlatShippingFee:       decimal.NewFromInt(500),
		TaxRate:               decimal.Zero,
		Currency:              "usd",
	}
}

// Line is one priced cart line.
type Line struct {
	UnitPrice float64
	Quantity  int
}

type Quote struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Subtotal sums price*quantity over the lines.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(decimal.NewFromFloat(l.UnitPrice).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

// ShippingFee is zero only when the subtotal strictly exceeds the threshold.
func (r Rules) ShippingFee(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(r.FreeShippingThreshold) {
		return decimal.Zero
	}
	return r.FlatShippingFee
}

func (r Rules) Quote(lines []Line) Quote {
	sub := Subtotal(lines)
	ship := r.ShippingFee(sub)
	tax := sub.Mul(r.TaxRate).Round(2)
	return Quote{
		Subtotal: sub,
		Shipping: ship,
		Tax:      tax,
		Total:    sub.Add(ship).Add(tax),
	}
}

// MinorUnits converts a major-unit amount to integer cents, rounding half away from zero.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// Float returns the amount rounded to two decimals as a float for persistence.
func Float(amount decimal.Decimal) float64 {
	f, _ := amount.Round(2).Float64()
	return f
}

// Equal compares two stored amounts at cent precision.
func Equal(a, b float64) bool {
	return decimal.NewFromFloat(a).Round(2).Equal(decimal.NewFromFloat(b).Round(2))
}
