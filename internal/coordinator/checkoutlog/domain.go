// Package checkoutlog defines the durable audit trail of checkout attempts.
//
// Every transition a checkout goes through (started, step done, compensating,
// completed, failed) and every payment event reported back by the provider is
// appended as one Entry. Rows carry the trace and span id that were active
// when they were written so a row can be joined with its distributed trace.
package checkoutlog

import "time"

// Status is the lifecycle state recorded by an entry.
type Status string

const (
	StatusStarted      Status = "STARTED"
	StatusStepDone     Status = "STEP_DONE"
	StatusCompleted    Status = "COMPLETED"
	StatusCompensating Status = "COMPENSATING"
	StatusFailed       Status = "FAILED"

	// Reported asynchronously by the payment provider.
	StatusPaid          Status = "PAID"
	StatusPaymentFailed Status = "PAYMENT_FAILED"
)

// Entry is a single row of the checkout log.
type Entry struct {
	// CheckoutID identifies the attempt: the order id on the storefront, the
	// provider session id on the payment proxy.
	CheckoutID string

	Status Status

	// Step is the name of the step that just ran or failed.
	Step string

	// Payload is the JSON input of the attempt. Written on STARTED only.
	Payload string

	// Errors is a JSON array of failure messages.
	Errors string

	TraceID string
	SpanID  string

	UpdatedAt time.Time
}
