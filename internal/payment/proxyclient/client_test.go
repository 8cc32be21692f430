package proxyclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farroshouse/ordering/internal/cart"
	"github.com/farroshouse/ordering/internal/checkout"
	"github.com/farroshouse/ordering/internal/payment"
	"github.com/farroshouse/ordering/internal/pkg/reqctx"
	"github.com/farroshouse/ordering/internal/pricing"
)

func submission() checkout.Submission {
	return checkout.Submission{
		OrderID: "order-1",
		Lines: []cart.PricedLine{{
			Line:      cart.Line{ItemID: "1", Quantity: 2, SpecialInstructions: "extra sauce"},
			Name:      "Mixed Grill",
			UnitPrice: decimal.RequireFromString("12.99"),
		}},
		Customer:            checkout.CustomerInfo{Name: "Ada", Email: "ada@example.com", Phone: "+447700900123"},
		OrderType:           pricing.OrderTypeDelivery,
		SpecialInstructions: "ring twice",
	}
}

func TestClient_Submit(t *testing.T) {
	var got payment.CreateCheckoutSessionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/create-checkout-session", r.URL.Path)
		assert.Equal(t, "req-42", r.Header.Get(reqctx.HeaderXRequestID))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(payment.CreateCheckoutSessionResponse{
			Success: true, SessionID: "cs_1", URL: "https://pay.example/cs_1",
		})
	}))
	defer srv.Close()

	ctx := reqctx.WithRequestID(context.Background(), "req-42")
	receipt, err := New(srv.URL+"/").Submit(ctx, submission())
	require.NoError(t, err)

	assert.Equal(t, "cs_1", receipt.SessionID)
	assert.Equal(t, "https://pay.example/cs_1", receipt.CheckoutURL)

	require.Len(t, got.Items, 1)
	assert.Equal(t, 12.99, got.Items[0].Price)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.Equal(t, "delivery", got.OrderType)
	assert.Equal(t, "order-1", got.OrderID)
	assert.Equal(t, "ada@example.com", got.CustomerInfo.Email)
	assert.Equal(t, "ring twice; Mixed Grill: extra sauce", got.SpecialInstructions)
}

func TestClient_SubmitErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		retryable bool
	}{
		{"bad request", http.StatusBadRequest, false},
		{"server error", http.StatusInternalServerError, true},
		{"bad gateway", http.StatusBadGateway, true},
		{"throttled", http.StatusTooManyRequests, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(payment.ErrorResponse{Error: payment.MsgCreateFailed, Details: "card_declined"})
			}))
			defer srv.Close()

			_, err := New(srv.URL).Submit(context.Background(), submission())

			var ge *checkout.GatewayError
			require.ErrorAs(t, err, &ge)
			assert.Equal(t, tt.retryable, ge.Retryable)
			assert.Contains(t, err.Error(), "card_declined")
		})
	}
}

func TestClient_UnreachableIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).Submit(context.Background(), submission())

	var ge *checkout.GatewayError
	require.ErrorAs(t, err, &ge)
	assert.True(t, ge.Retryable)
}

func TestClient_SessionAndHealth(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(payment.HealthResponse{Status: "OK", Message: "up"})
	})
	mux.HandleFunc("/api/checkout-session/cs_1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(payment.CheckoutSessionResponse{
			Success: true,
			Session: &payment.SessionView{ID: "cs_1", PaymentStatus: "paid", AmountTotal: 3108},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL)
	require.NoError(t, c.Health(context.Background()))

	s, err := c.Session(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.Equal(t, "paid", s.PaymentStatus)
	assert.Equal(t, int64(3108), s.AmountTotal)
}
