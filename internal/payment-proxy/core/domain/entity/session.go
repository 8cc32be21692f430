package entity

import "time"

// LineItem is one priced row of a provider checkout session. Amounts are in
// minor units (pence).
type LineItem struct {
	Name        string
	Description string
	Image       string
	UnitAmount  int64
	Quantity    int64
}

func (l LineItem) Amount() int64 {
	return l.UnitAmount * l.Quantity
}

// SessionRequest is everything the provider needs to open a hosted checkout.
type SessionRequest struct {
	ClientReference  string
	Currency         string
	LineItems        []LineItem
	CustomerEmail    string
	CollectShipping  bool
	AllowedCountries []string
	CollectPhone     bool
	SuccessURL       string
	CancelURL        string
	Metadata         map[string]string
}

// AmountTotal is the sum of the line item amounts.
func (r *SessionRequest) AmountTotal() int64 {
	var total int64
	for _, li := range r.LineItems {
		total += li.Amount()
	}
	return total
}

// Session is the provider's checkout session.
type Session struct {
	ID            string
	URL           string
	PaymentStatus string
	CustomerEmail string
	AmountTotal   int64
	Metadata      map[string]string
}

const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventPaymentFailed     = "payment_intent.payment_failed"
)

// Event is a verified webhook notification. ObjectID is the id of the object
// the event is about: a checkout session or a payment intent.
type Event struct {
	ID       string
	Type     string
	ObjectID string
	Created  time.Time
}
