package checkout

import (
	"time"

	"github.com/farroshouse/ordering/internal/cart"
	"github.com/farroshouse/ordering/internal/pricing"
)

// StatusConfirmed is the status of an order the gateway acknowledged.
const StatusConfirmed = "confirmed"

// Order is the immutable record of a completed checkout.
type Order struct {
	ID                  string
	Lines               []cart.PricedLine
	Totals              pricing.Totals
	Customer            CustomerInfo
	OrderType           pricing.OrderType
	SpecialInstructions string
	PaymentMethod       string
	SessionID           string
	CheckoutURL         string
	Status              string
	EstimatedTime       string
	ReadyBy             time.Time
	CreatedAt           time.Time
}

// ItemCount is the sum of line quantities.
func (o *Order) ItemCount() int {
	n := 0
	for _, l := range o.Lines {
		n += l.Quantity
	}
	return n
}

// EstimatedTime is the quoted preparation window for an order type, with the
// upper bound used for ReadyBy.
func EstimatedTime(t pricing.OrderType) (string, time.Duration) {
	if t == pricing.OrderTypePickup {
		return "15-20 minutes", 20 * time.Minute
	}
	return "30-45 minutes", 45 * time.Minute
}
