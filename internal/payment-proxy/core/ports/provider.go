package ports

import (
	"context"
	"errors"

	"github.com/farroshouse/ordering/internal/payment-proxy/core/domain/entity"
)

var (
	// ErrWebhookNotConfigured is returned when no signing secret is set.
	ErrWebhookNotConfigured = errors.New("webhook secret not configured")

	// ErrInvalidSignature is returned for payloads whose signature does not verify.
	ErrInvalidSignature = errors.New("webhook signature verification failed")

	// ErrSessionNotFound is returned for unknown checkout session ids.
	ErrSessionNotFound = errors.New("checkout session not found")
)

// PaymentProvider opens and reads hosted checkout sessions.
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, req *entity.SessionRequest) (*entity.Session, error)
	GetCheckoutSession(ctx context.Context, id string) (*entity.Session, error)
}

// WebhookVerifier authenticates a raw webhook body against its signature header.
type WebhookVerifier interface {
	Verify(payload []byte, signature string) (*entity.Event, error)
}
