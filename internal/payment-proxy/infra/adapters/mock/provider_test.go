package mock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farroshouse/ordering/internal/payment-proxy/core/domain/entity"
	"github.com/farroshouse/ordering/internal/payment-proxy/core/ports"
)

func sessionRequest(unitAmount int64) *entity.SessionRequest {
	return &entity.SessionRequest{
		LineItems:     []entity.LineItem{{Name: "Mixed Grill", UnitAmount: unitAmount, Quantity: 2}},
		CustomerEmail: "ada@example.com",
		SuccessURL:    "http://localhost:3000/order-confirmation?session_id={CHECKOUT_SESSION_ID}",
		Metadata:      map[string]string{"orderType": "delivery"},
	}
}

func TestProvider_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	p := NewProvider(DefaultDeclineAbove)

	s, err := p.CreateCheckoutSession(ctx, sessionRequest(1299))
	require.NoError(t, err)
	assert.Contains(t, s.ID, "cs_mock_")
	assert.Equal(t, "http://localhost:3000/order-confirmation?session_id="+s.ID, s.URL)
	assert.Equal(t, int64(2598), s.AmountTotal)
	assert.Equal(t, "paid", s.PaymentStatus)

	got, err := p.GetCheckoutSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	// Returned sessions are copies.
	got.Metadata["orderType"] = "pickup"
	again, _ := p.GetCheckoutSession(ctx, s.ID)
	assert.Equal(t, "delivery", again.Metadata["orderType"])
}

func TestProvider_DeclinesOverLimit(t *testing.T) {
	_, err := NewProvider(5000).CreateCheckoutSession(context.Background(), sessionRequest(2501))
	assert.ErrorContains(t, err, "exceeds limit")

	_, err = NewProvider(0).CreateCheckoutSession(context.Background(), sessionRequest(1_000_000))
	assert.NoError(t, err)
}

func TestProvider_UnknownSession(t *testing.T) {
	_, err := NewProvider(0).GetCheckoutSession(context.Background(), "cs_nope")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}
