package checkout

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrEmptyCart is returned when checkout is attempted on a cart with no lines.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrWrongStep is returned for an action the current step does not allow.
	ErrWrongStep = errors.New("action not allowed at this checkout step")
)

// ValidationError lists the customer fields that failed validation, keyed by
// field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid checkout details: " + strings.Join(parts, "; ")
}

// GatewayError wraps a failed payment gateway round trip. When Retryable is
// set the same cart can be submitted again.
type GatewayError struct {
	Op        string
	Err       error
	Retryable bool
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }
