// Package cart implements the shopping cart aggregate.
//
// An Engine owns the ordered lines of one shopper's cart and recomputes the
// derived totals with pricing.Compute at the end of every mutation, under the
// same lock, so callers never observe lines and totals out of step.
package cart

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/farroshouse/ordering/internal/menu"
	"github.com/farroshouse/ordering/internal/pricing"
)

// Catalog resolves menu items. Prices are read at computation time, never
// cached on a line.
type Catalog interface {
	Lookup(id string) (menu.Item, bool)
}

// Line is one distinct item in the cart.
type Line struct {
	ItemID              string
	Quantity            int
	SpecialInstructions string
}

// PricedLine is a line resolved against the catalog.
type PricedLine struct {
	Line
	Name        string
	Description string
	Image       string
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
}

// Snapshot is a read-only copy of the cart.
type Snapshot struct {
	Lines     []PricedLine
	OrderType pricing.OrderType
	pricing.Totals
}

// Empty reports whether the snapshot has no lines.
func (s Snapshot) Empty() bool { return len(s.Lines) == 0 }

// ItemCount is the sum of line quantities.
func (s Snapshot) ItemCount() int {
	n := 0
	for _, l := range s.Lines {
		n += l.Quantity
	}
	return n
}

// Engine is a single cart. It is safe for concurrent use.
type Engine struct {
	mu        sync.Mutex
	catalog   Catalog
	policy    pricing.Policy
	store     Store
	key       string
	lines     []Line
	orderType pricing.OrderType
	totals    pricing.Totals
	locked    bool
}

// New returns an empty, unpersisted cart for delivery orders.
func New(catalog Catalog, policy pricing.Policy) *Engine {
	e := &Engine{
		catalog:   catalog,
		policy:    policy,
		orderType: pricing.OrderTypeDelivery,
	}
	e.recompute()
	return e
}

// AddItem adds quantity of itemID. An existing line is incremented and its
// special instructions replaced when a new note is given; otherwise a line is
// appended. An increment that would overflow the line fails with
// ErrInvalidQuantity and leaves the cart unchanged.
func (e *Engine) AddItem(ctx context.Context, itemID string, quantity int, specialInstructions string) error {
	if quantity < 1 {
		return fmt.Errorf("add %q x%d: %w", itemID, quantity, ErrInvalidQuantity)
	}
	if _, ok := e.catalog.Lookup(itemID); !ok {
		return fmt.Errorf("add %q: %w", itemID, ErrItemNotFound)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.locked {
		return ErrCheckoutInProgress
	}

	if i := e.indexOf(itemID); i >= 0 {
		if quantity > math.MaxInt-e.lines[i].Quantity {
			return fmt.Errorf("add %q x%d to %d: %w", itemID, quantity, e.lines[i].Quantity, ErrInvalidQuantity)
		}
		e.lines[i].Quantity += quantity
		if specialInstructions != "" {
			e.lines[i].SpecialInstructions = specialInstructions
		}
	} else {
		e.lines = append(e.lines, Line{
			ItemID:              itemID,
			Quantity:            quantity,
			SpecialInstructions: specialInstructions,
		})
	}

	e.commit(ctx)
	return nil
}

// RemoveItem deletes the line for itemID. Removing an absent item is a no-op.
func (e *Engine) RemoveItem(ctx context.Context, itemID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.locked {
		return ErrCheckoutInProgress
	}

	e.remove(itemID)
	e.commit(ctx)
	return nil
}

// SetQuantity replaces the quantity of an existing line. A quantity of zero or
// less removes the line. Lines are only introduced by AddItem.
func (e *Engine) SetQuantity(ctx context.Context, itemID string, quantity int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.locked {
		return ErrCheckoutInProgress
	}

	if quantity <= 0 {
		e.remove(itemID)
		e.commit(ctx)
		return nil
	}

	i := e.indexOf(itemID)
	if i < 0 {
		return fmt.Errorf("set quantity of %q: not in cart: %w", itemID, ErrItemNotFound)
	}
	e.lines[i].Quantity = quantity
	e.commit(ctx)
	return nil
}

// SetOrderType switches between delivery and pickup. Only the delivery fee
// and total change.
func (e *Engine) SetOrderType(ctx context.Context, orderType pricing.OrderType) error {
	if _, err := pricing.ParseOrderType(string(orderType)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidOrderType, orderType)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.locked {
		return ErrCheckoutInProgress
	}

	e.orderType = orderType
	e.commit(ctx)
	return nil
}

// Clear empties the cart.
func (e *Engine) Clear(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.locked {
		return ErrCheckoutInProgress
	}

	e.lines = nil
	e.commit(ctx)
	return nil
}

// Snapshot returns a copy of the current lines and totals.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

// Contains reports whether itemID has a line.
func (e *Engine) Contains(itemID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.indexOf(itemID) >= 0
}

// Locked reports whether a checkout currently holds the cart.
func (e *Engine) Locked() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.locked
}

// BeginCheckout freezes the cart for an in-flight order and returns the
// snapshot the order is built from. Reads keep working; mutations fail with
// ErrCheckoutInProgress until AbortCheckout or CompleteCheckout.
func (e *Engine) BeginCheckout() (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.locked {
		return Snapshot{}, ErrCheckoutInProgress
	}
	e.locked = true
	return e.snapshot(), nil
}

// AbortCheckout releases the cart unmodified.
func (e *Engine) AbortCheckout() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.locked = false
}

// CompleteCheckout clears the cart and releases it in one step.
func (e *Engine) CompleteCheckout(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.locked = false
	e.lines = nil
	e.commit(ctx)
}

func (e *Engine) indexOf(itemID string) int {
	for i, l := range e.lines {
		if l.ItemID == itemID {
			return i
		}
	}
	return -1
}

func (e *Engine) remove(itemID string) {
	if i := e.indexOf(itemID); i >= 0 {
		e.lines = append(e.lines[:i], e.lines[i+1:]...)
	}
}

// commit recomputes totals and writes the record back. Must hold e.mu.
func (e *Engine) commit(ctx context.Context) {
	e.recompute()
	e.persist(ctx)
}

func (e *Engine) recompute() {
	lines := make([]pricing.Line, 0, len(e.lines))
	for _, l := range e.lines {
		item, ok := e.catalog.Lookup(l.ItemID)
		if !ok {
			slog.Warn("cart line references an item missing from the catalog", "item_id", l.ItemID)
			continue
		}
		lines = append(lines, pricing.Line{UnitPrice: item.UnitPrice, Quantity: l.Quantity})
	}
	e.totals = pricing.Compute(lines, e.orderType, e.policy)
}

func (e *Engine) snapshot() Snapshot {
	out := Snapshot{
		Lines:     make([]PricedLine, 0, len(e.lines)),
		OrderType: e.orderType,
		Totals:    e.totals,
	}
	for _, l := range e.lines {
		item, _ := e.catalog.Lookup(l.ItemID)
		out.Lines = append(out.Lines, PricedLine{
			Line:        l,
			Name:        item.Name,
			Description: item.Description,
			Image:       item.Image,
			UnitPrice:   item.UnitPrice,
			Amount:      pricing.Line{UnitPrice: item.UnitPrice, Quantity: l.Quantity}.Amount(),
		})
	}
	return out
}
