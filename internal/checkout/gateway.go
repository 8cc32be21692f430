package checkout

import (
	"context"

	"github.com/farroshouse/ordering/internal/cart"
	"github.com/farroshouse/ordering/internal/pricing"
)

// Submission is the order handed to the payment gateway.
type Submission struct {
	OrderID             string
	Lines               []cart.PricedLine
	Totals              pricing.Totals
	Customer            CustomerInfo
	OrderType           pricing.OrderType
	SpecialInstructions string
	PaymentMethod       string
}

// Receipt is the gateway's acknowledgement of a submission.
type Receipt struct {
	SessionID   string
	CheckoutURL string
}

// Gateway submits orders for payment. Implementations should honour ctx
// cancellation; Flow enforces its timeout either way.
type Gateway interface {
	Submit(ctx context.Context, sub Submission) (*Receipt, error)
}
