// Package payment holds the JSON contract between the storefront and the
// payment proxy.
package payment

// CheckoutItem is one cart line as sent to the proxy. Price is the unit
// price in major units (pounds).
type CheckoutItem struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Image       string  `json:"image,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type CreateCheckoutSessionRequest struct {
	Items               []CheckoutItem `json:"items"`
	CustomerInfo        *CustomerInfo  `json:"customerInfo"`
	OrderType           string         `json:"orderType"`
	SpecialInstructions string         `json:"specialInstructions,omitempty"`
	OrderID             string         `json:"orderId,omitempty"`
}

type CreateCheckoutSessionResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"sessionId,omitempty"`
	URL       string `json:"url,omitempty"`
	Error     string `json:"error,omitempty"`
	Details   string `json:"details,omitempty"`
}

// SessionView is the provider session as exposed by the proxy.
type SessionView struct {
	ID            string            `json:"id"`
	PaymentStatus string            `json:"payment_status"`
	CustomerEmail string            `json:"customer_email"`
	AmountTotal   int64             `json:"amount_total"`
	Metadata      map[string]string `json:"metadata"`
}

type CheckoutSessionResponse struct {
	Success bool         `json:"success"`
	Session *SessionView `json:"session,omitempty"`
	Error   string       `json:"error,omitempty"`
	Details string       `json:"details,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type WebhookAck struct {
	Received bool `json:"received"`
}

// ErrorResponse is the body of every failed proxy request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Messages returned by the proxy.
const (
	MsgItemsRequired    = "Items are required and must be an array"
	MsgCustomerRequired = "Customer information is required"
	MsgCreateFailed     = "Failed to create checkout session"
	MsgRetrieveFailed   = "Failed to retrieve checkout session"
	MsgNotFound         = "Endpoint not found"
	MsgInternal         = "Internal server error"
)
