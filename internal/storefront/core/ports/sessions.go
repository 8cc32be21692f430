package ports

import (
	"context"

	"github.com/farroshouse/ordering/internal/cart"
	"github.com/farroshouse/ordering/internal/checkout"
	"github.com/farroshouse/ordering/internal/menu"
	"github.com/farroshouse/ordering/internal/payment"
)

// Catalog is the read side of the menu.
type Catalog interface {
	Lookup(id string) (menu.Item, bool)
	Categories() []string
	Filter(category, term string) []menu.Item
}

// Sessions resolves the cart and checkout belonging to a browsing session.
// Cart and Checkout hold the session in memory; View and CheckoutState only
// read it.
type Sessions interface {
	Cart(ctx context.Context, sessionID string) *cart.Engine
	Checkout(ctx context.Context, sessionID string) *checkout.Flow
	View(ctx context.Context, sessionID string) (cart.Snapshot, bool)
	CheckoutState(ctx context.Context, sessionID string) checkout.State
}

// PaymentSessions reads back provider checkout sessions for the order
// confirmation page.
type PaymentSessions interface {
	Session(ctx context.Context, sessionID string) (*payment.SessionView, error)
}
