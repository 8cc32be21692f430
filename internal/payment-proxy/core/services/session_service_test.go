package services

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farroshouse/ordering/internal/coordinator/checkoutlog"
	"github.com/farroshouse/ordering/internal/menu"
	"github.com/farroshouse/ordering/internal/payment"
	"github.com/farroshouse/ordering/internal/payment-proxy/core/domain/entity"
	"github.com/farroshouse/ordering/internal/pricing"
)

type stubProvider struct {
	got *entity.SessionRequest
	err error
}

func (p *stubProvider) CreateCheckoutSession(_ context.Context, req *entity.SessionRequest) (*entity.Session, error) {
	p.got = req
	if p.err != nil {
		return nil, p.err
	}
	return &entity.Session{ID: "cs_1", URL: "https://pay.example/cs_1", AmountTotal: req.AmountTotal()}, nil
}

func (p *stubProvider) GetCheckoutSession(_ context.Context, id string) (*entity.Session, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &entity.Session{ID: id}, nil
}

func newService(p *stubProvider, log checkoutlog.Repository) *SessionService {
	return NewSessionService(p, Config{Policy: pricing.DefaultPolicy(), FrontendURL: "http://localhost:3000/"}, log)
}

func request(orderType string) payment.CreateCheckoutSessionRequest {
	return payment.CreateCheckoutSessionRequest{
		Items: []payment.CheckoutItem{
			{Name: "Mixed Grill", Price: 12.99, Quantity: 2},
		},
		CustomerInfo:        &payment.CustomerInfo{Name: "Ada", Email: "ada@example.com", Phone: "+447700900123"},
		OrderType:           orderType,
		SpecialInstructions: "ring twice",
		OrderID:             "order-1",
	}
}

func TestBuildSessionRequest_Delivery(t *testing.T) {
	s := newService(&stubProvider{}, nil)

	sr, totals, err := s.BuildSessionRequest(request("delivery"))
	require.NoError(t, err)

	assert.Equal(t, "31.08", totals.Total.StringFixed(2))
	require.Len(t, sr.LineItems, 3)
	assert.Equal(t, entity.LineItem{Name: "Mixed Grill", UnitAmount: 1299, Quantity: 2}, sr.LineItems[0])
	assert.Equal(t, entity.LineItem{Name: "Tax (10%)", UnitAmount: 260, Quantity: 1}, sr.LineItems[1])
	assert.Equal(t, entity.LineItem{Name: "Delivery Fee", UnitAmount: 250, Quantity: 1}, sr.LineItems[2])
	assert.Equal(t, int64(3108), sr.AmountTotal())

	assert.True(t, sr.CollectShipping)
	assert.Equal(t, []string{"GB"}, sr.AllowedCountries)
	assert.True(t, sr.CollectPhone)
	assert.Equal(t, "gbp", sr.Currency)
	assert.Equal(t, "order-1", sr.ClientReference)
	assert.Equal(t, "http://localhost:3000/order-confirmation?session_id={CHECKOUT_SESSION_ID}", sr.SuccessURL)
	assert.Equal(t, "http://localhost:3000/checkout?cancelled=true", sr.CancelURL)
	assert.Equal(t, map[string]string{
		"customerName":        "Ada",
		"customerPhone":       "+447700900123",
		"orderType":           "delivery",
		"specialInstructions": "ring twice",
		"itemCount":           "1",
		"totalAmount":         "31.08",
		"orderId":             "order-1",
	}, sr.Metadata)
}

func TestBuildSessionRequest_Pickup(t *testing.T) {
	sr, totals, err := newService(&stubProvider{}, nil).BuildSessionRequest(request("pickup"))
	require.NoError(t, err)

	assert.Equal(t, "28.58", totals.Total.StringFixed(2))
	assert.Len(t, sr.LineItems, 2)
	assert.False(t, sr.CollectShipping)
	assert.Empty(t, sr.AllowedCountries)
}

func TestBuildSessionRequest_FreeItemsHaveNoTaxLine(t *testing.T) {
	req := request("pickup")
	req.Items = []payment.CheckoutItem{{Name: "Water", Price: 0, Quantity: 1}}

	sr, _, err := newService(&stubProvider{}, nil).BuildSessionRequest(req)
	require.NoError(t, err)
	assert.Len(t, sr.LineItems, 1)
	assert.Equal(t, int64(0), sr.AmountTotal())
}

func TestBuildSessionRequest_Validation(t *testing.T) {
	s := newService(&stubProvider{}, nil)

	noItems := request("delivery")
	noItems.Items = nil
	_, _, err := s.BuildSessionRequest(noItems)
	assert.ErrorIs(t, err, ErrItemsRequired)

	noCustomer := request("delivery")
	noCustomer.CustomerInfo = nil
	_, _, err = s.BuildSessionRequest(noCustomer)
	assert.ErrorIs(t, err, ErrCustomerRequired)

	noEmail := request("delivery")
	noEmail.CustomerInfo.Email = " "
	_, _, err = s.BuildSessionRequest(noEmail)
	assert.ErrorIs(t, err, ErrCustomerRequired)

	badQty := request("delivery")
	badQty.Items[0].Quantity = 0
	_, _, err = s.BuildSessionRequest(badQty)
	assert.ErrorIs(t, err, ErrInvalidItem)

	badType := request("drone")
	_, _, err = s.BuildSessionRequest(badType)
	assert.ErrorIs(t, err, ErrInvalidOrderType)

	defaulted, _, err := s.BuildSessionRequest(request(""))
	require.NoError(t, err)
	assert.Equal(t, "delivery", defaulted.Metadata["orderType"])
}

// The proxy's line items must charge exactly what the storefront cart shows.
func TestBuildSessionRequest_MatchesCartTotals(t *testing.T) {
	catalog, err := menu.Default()
	require.NoError(t, err)
	items := catalog.Items()
	s := newService(&stubProvider{}, nil)
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 200; round++ {
		orderType := pricing.OrderTypeDelivery
		if rng.Intn(2) == 0 {
			orderType = pricing.OrderTypePickup
		}

		var lines []pricing.Line
		req := request(string(orderType))
		req.Items = nil
		for i := 0; i < 1+rng.Intn(5); i++ {
			it := items[rng.Intn(len(items))]
			qty := 1 + rng.Intn(6)
			lines = append(lines, pricing.Line{UnitPrice: it.UnitPrice, Quantity: qty})
			req.Items = append(req.Items, payment.CheckoutItem{
				Name:     it.Name,
				Price:    it.UnitPrice.InexactFloat64(),
				Quantity: qty,
			})
		}

		want := pricing.Compute(lines, orderType, pricing.DefaultPolicy())
		sr, got, err := s.BuildSessionRequest(req)
		require.NoError(t, err)

		assert.True(t, want.Total.Equal(got.Total), "round %d: %s != %s", round, want.Total, got.Total)
		assert.Equal(t, pricing.ToMinor(want.Total), sr.AmountTotal(), "round %d", round)
	}
}

func TestCreate(t *testing.T) {
	log := checkoutlog.NewMemoryRepository()
	p := &stubProvider{}

	session, err := newService(p, log).Create(context.Background(), request("delivery"))
	require.NoError(t, err)
	assert.Equal(t, "cs_1", session.ID)
	assert.Equal(t, int64(3108), session.AmountTotal)
	assert.Equal(t, []checkoutlog.Status{checkoutlog.StatusStarted}, log.Statuses("cs_1"))
}

func TestCreate_ProviderFailure(t *testing.T) {
	boom := errors.New("stripe unavailable")
	_, err := newService(&stubProvider{err: boom}, nil).Create(context.Background(), request("delivery"))
	assert.ErrorIs(t, err, boom)
}

func TestHandleEvent(t *testing.T) {
	log := checkoutlog.NewMemoryRepository()
	s := newService(&stubProvider{}, log)
	ctx := context.Background()

	s.HandleEvent(ctx, &entity.Event{ID: "evt_1", Type: entity.EventCheckoutCompleted, ObjectID: "cs_1"})
	s.HandleEvent(ctx, &entity.Event{ID: "evt_2", Type: entity.EventPaymentFailed, ObjectID: "pi_1"})
	s.HandleEvent(ctx, &entity.Event{ID: "evt_3", Type: "customer.created", ObjectID: "cus_1"})

	assert.Equal(t, []checkoutlog.Status{checkoutlog.StatusPaid}, log.Statuses("cs_1"))
	assert.Equal(t, []checkoutlog.Status{checkoutlog.StatusPaymentFailed}, log.Statuses("pi_1"))
	assert.Empty(t, log.Statuses("cus_1"))
}

func TestTaxLineNameFollowsPolicy(t *testing.T) {
	policy := pricing.Policy{TaxRate: decimal.RequireFromString("0.2"), DeliveryFee: decimal.Zero}
	s := NewSessionService(&stubProvider{}, Config{Policy: policy}, nil)

	sr, _, err := s.BuildSessionRequest(request("delivery"))
	require.NoError(t, err)
	require.Len(t, sr.LineItems, 2)
	assert.Equal(t, "Tax (20%)", sr.LineItems[1].Name)
}
