// Package pricing derives cart totals from priced lines.
//
// Compute is the single source of truth for money arithmetic: the storefront
// cart and the payment proxy both call it so their figures agree to the penny.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OrderType selects how the order reaches the customer.
type OrderType string

const (
	OrderTypeDelivery OrderType = "delivery"
	OrderTypePickup   OrderType = "pickup"
)

// ParseOrderType accepts "delivery" or "pickup".
func ParseOrderType(s string) (OrderType, error) {
	switch OrderType(s) {
	case OrderTypeDelivery, OrderTypePickup:
		return OrderType(s), nil
	default:
		return "", fmt.Errorf("pricing: unknown order type %q", s)
	}
}

// Policy holds the rates applied on top of the subtotal.
type Policy struct {
	TaxRate     decimal.Decimal
	DeliveryFee decimal.Decimal
}

// DefaultPolicy is 10% tax and a flat £2.50 delivery fee.
func DefaultPolicy() Policy {
	return Policy{
		TaxRate:     decimal.RequireFromString("0.10"),
		DeliveryFee: decimal.RequireFromString("2.50"),
	}
}

// Line is a quantity of something at a unit price.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Amount is the full-precision line amount.
func (l Line) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Totals is the derived money state of a cart or order.
type Totals struct {
	Subtotal    decimal.Decimal
	Tax         decimal.Decimal
	DeliveryFee decimal.Decimal
	Total       decimal.Decimal
}

// Compute derives the totals for lines. Line amounts are summed at full
// precision; only tax and total are rounded, once, to two places. The delivery
// fee is a step function of the order type and is waived for an empty cart.
func Compute(lines []Line, orderType OrderType, policy Policy) Totals {
	subtotal := decimal.Zero
	counted := 0
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		subtotal = subtotal.Add(l.Amount())
		counted++
	}

	if counted == 0 {
		return Totals{
			Subtotal:    decimal.Zero,
			Tax:         decimal.Zero,
			DeliveryFee: decimal.Zero,
			Total:       decimal.Zero,
		}
	}

	tax := subtotal.Mul(policy.TaxRate).Round(2)

	fee := decimal.Zero
	if orderType == OrderTypeDelivery {
		fee = policy.DeliveryFee
	}

	return Totals{
		Subtotal:    subtotal,
		Tax:         tax,
		DeliveryFee: fee,
		Total:       subtotal.Add(tax).Add(fee).Round(2),
	}
}

// ToMinor converts a major-unit amount to minor units (pence), rounding half
// away from zero.
func ToMinor(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// FromMinor converts minor units back to a major-unit amount.
func FromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}
