// Package checkout drives the two-step checkout of a cart: customer details,
// then payment through a Gateway. Payment runs as a saga so a failed or
// timed-out gateway call leaves the cart exactly as it was.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/farroshouse/ordering/internal/cart"
	"github.com/farroshouse/ordering/internal/coordinator"
	"github.com/farroshouse/ordering/internal/coordinator/checkoutlog"
)

// Step is the position of a Flow in the checkout.
type Step string

const (
	StepDetails  Step = "details"
	StepPayment  Step = "payment"
	StepComplete Step = "complete"
)

// DefaultTimeout bounds a gateway round trip when Options.Timeout is zero.
const DefaultTimeout = 15 * time.Second

// DefaultPaymentMethod is used when Pay is called without one.
const DefaultPaymentMethod = "card"

type Options struct {
	Timeout time.Duration
	Log     checkoutlog.Repository // optional
	Now     func() time.Time       // optional, for tests
}

// Flow is one session's checkout. It is safe for concurrent use.
type Flow struct {
	mu      sync.Mutex
	cart    *cart.Engine
	gateway Gateway
	log     checkoutlog.Repository
	timeout time.Duration
	now     func() time.Time

	step    Step
	details *Details
	order   *Order
}

func NewFlow(engine *cart.Engine, gateway Gateway, opts Options) *Flow {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Flow{
		cart:    engine,
		gateway: gateway,
		log:     opts.Log,
		timeout: opts.Timeout,
		now:     opts.Now,
		step:    StepDetails,
	}
}

// State is a read-only view of a Flow.
type State struct {
	Step    Step
	Details *Details
	Order   *Order
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := State{Step: f.step, Order: f.order}
	if f.details != nil {
		d := *f.details
		s.Details = &d
	}
	return s
}

// SubmitDetails validates d, applies its order type to the cart and moves to
// the payment step. Allowed from the details step, and from complete to start
// a new order.
func (f *Flow) SubmitDetails(ctx context.Context, d Details) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step == StepPayment {
		return ErrWrongStep
	}
	if f.cart.Snapshot().Empty() {
		return ErrEmptyCart
	}

	d = d.Normalize()
	if err := Validate(d); err != nil {
		return err
	}
	if err := f.cart.SetOrderType(ctx, d.OrderType); err != nil {
		return err
	}

	f.details = &d
	f.order = nil
	f.step = StepPayment
	return nil
}

// Back returns from payment to details, keeping what was entered.
func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepPayment {
		return ErrWrongStep
	}
	f.step = StepDetails
	return nil
}

// Cancel abandons the checkout and returns to the details step. The cart is
// not touched. A payment already in flight is not aborted.
func (f *Flow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.step = StepDetails
	f.details = nil
	f.order = nil
}

// Pay submits the cart to the gateway. The cart is locked for the duration
// of the call and cleared only once the gateway acknowledges the order. Any
// failure leaves the cart unchanged and the flow on the payment step.
func (f *Flow) Pay(ctx context.Context, paymentMethod string) (*Order, error) {
	f.mu.Lock()
	if f.step != StepPayment || f.details == nil {
		f.mu.Unlock()
		return nil, ErrWrongStep
	}
	details := *f.details
	f.mu.Unlock()

	if paymentMethod == "" {
		paymentMethod = DefaultPaymentMethod
	}

	orderID := uuid.NewString()
	var (
		snap    cart.Snapshot
		receipt *Receipt
	)

	steps := []coordinator.Step{
		coordinator.FuncStep{
			StepName: "lock_cart",
			Do: func(ctx context.Context) error {
				s, err := f.cart.BeginCheckout()
				if err != nil {
					return err
				}
				if s.Empty() {
					f.cart.AbortCheckout()
					return ErrEmptyCart
				}
				snap = s
				return nil
			},
			Undo: func(ctx context.Context) error {
				f.cart.AbortCheckout()
				return nil
			},
		},
		coordinator.FuncStep{
			StepName: "submit_payment",
			Do: func(ctx context.Context) error {
				r, err := f.submit(ctx, Submission{
					OrderID:             orderID,
					Lines:               snap.Lines,
					Totals:              snap.Totals,
					Customer:            details.Customer,
					OrderType:           snap.OrderType,
					SpecialInstructions: details.SpecialInstructions,
					PaymentMethod:       paymentMethod,
				})
				if err != nil {
					return err
				}
				receipt = r
				return nil
			},
		},
		coordinator.FuncStep{
			StepName: "clear_cart",
			Do: func(ctx context.Context) error {
				f.cart.CompleteCheckout(ctx)
				return nil
			},
		},
	}

	payload := logPayload(orderID, f.cart.Snapshot(), details, paymentMethod)
	if err := coordinator.NewOrchestrator(orderID, steps, f.log).Start(ctx, payload); err != nil {
		slog.WarnContext(ctx, "checkout failed", "order_id", orderID, "error", err)
		return nil, err
	}

	createdAt := f.now().UTC()
	estimate, window := EstimatedTime(snap.OrderType)
	order := &Order{
		ID:                  orderID,
		Lines:               snap.Lines,
		Totals:              snap.Totals,
		Customer:            details.Customer,
		OrderType:           snap.OrderType,
		SpecialInstructions: details.SpecialInstructions,
		PaymentMethod:       paymentMethod,
		SessionID:           receipt.SessionID,
		CheckoutURL:         receipt.CheckoutURL,
		Status:              StatusConfirmed,
		EstimatedTime:       estimate,
		ReadyBy:             createdAt.Add(window),
		CreatedAt:           createdAt,
	}

	f.mu.Lock()
	f.order = order
	f.step = StepComplete
	f.mu.Unlock()

	slog.InfoContext(ctx, "order placed",
		"order_id", order.ID,
		"session_id", order.SessionID,
		"total", order.Totals.Total.StringFixed(2),
		"items", order.ItemCount(),
	)
	return order, nil
}

type gatewayResult struct {
	receipt *Receipt
	err     error
}

// submit calls the gateway under the flow timeout. The call runs in its own
// goroutine so a gateway that ignores ctx still cannot hold the cart past the
// deadline.
func (f *Flow) submit(ctx context.Context, sub Submission) (*Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	done := make(chan gatewayResult, 1)
	go func() {
		r, err := f.gateway.Submit(ctx, sub)
		done <- gatewayResult{receipt: r, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			var ge *GatewayError
			if errors.As(res.err, &ge) {
				return nil, ge
			}
			return nil, &GatewayError{Op: "submit", Err: res.err, Retryable: true}
		}
		if res.receipt == nil {
			return nil, &GatewayError{Op: "submit", Err: errors.New("empty receipt"), Retryable: true}
		}
		return res.receipt, nil
	case <-ctx.Done():
		return nil, &GatewayError{Op: "submit", Err: ctx.Err(), Retryable: true}
	}
}

// logPayload is the JSON recorded with the STARTED entry.
func logPayload(orderID string, current cart.Snapshot, d Details, method string) string {
	b, err := json.Marshal(map[string]any{
		"orderId":       orderID,
		"orderType":     current.OrderType,
		"itemCount":     current.ItemCount(),
		"total":         current.Total.StringFixed(2),
		"customerEmail": d.Customer.Email,
		"paymentMethod": method,
	})
	if err != nil {
		return ""
	}
	return string(b)
}
