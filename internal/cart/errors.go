package cart

import (
	"errors"
	"fmt"
)

var (
	// ErrItemNotFound is returned when an item id is unknown to the catalog,
	// or when a quantity change targets an item that is not in the cart.
	ErrItemNotFound = errors.New("item not found")

	// ErrInvalidQuantity is returned for quantities that are not positive integers.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")

	// ErrInvalidOrderType is returned for order types other than delivery or pickup.
	ErrInvalidOrderType = errors.New("order type must be delivery or pickup")

	// ErrCheckoutInProgress is returned for mutations attempted while a
	// checkout holds the cart.
	ErrCheckoutInProgress = errors.New("checkout in progress")
)

// PersistenceReadError reports a stored cart record that could not be used.
// It is logged and recovered from, never surfaced to the shopper.
type PersistenceReadError struct {
	Key string
	Err error
}

func (e *PersistenceReadError) Error() string {
	return fmt.Sprintf("cart: read %q: %v", e.Key, e.Err)
}

func (e *PersistenceReadError) Unwrap() error { return e.Err }
