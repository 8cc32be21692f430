// Package stripe adapts Stripe Checkout to the payment proxy ports.
package stripe

import (
	"context"
	"errors"
	"fmt"

	stripego "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/farroshouse/ordering/internal/payment-proxy/core/domain/entity"
	"github.com/farroshouse/ordering/internal/payment-proxy/core/ports"
)

var _ ports.PaymentProvider = (*Provider)(nil)

// Provider creates and reads Stripe Checkout sessions.
type Provider struct {
	sc *client.API
}

// NewProvider returns a provider authenticated with secretKey against the
// live Stripe API.
func NewProvider(secretKey string) *Provider {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &Provider{sc: sc}
}

// NewProviderWithURL points the provider at another API base URL, such as
// stripe-mock or a test server. Network retries are disabled.
func NewProviderWithURL(secretKey, url string) *Provider {
	backend := stripego.GetBackendWithConfig(stripego.APIBackend, &stripego.BackendConfig{
		URL:               stripego.String(url),
		MaxNetworkRetries: stripego.Int64(0),
		LeveledLogger:     &stripego.LeveledLogger{Level: stripego.LevelNull},
	})
	sc := &client.API{}
	sc.Init(secretKey, &stripego.Backends{API: backend, Connect: backend, Uploads: backend})
	return &Provider{sc: sc}
}

func (p *Provider) CreateCheckoutSession(ctx context.Context, req *entity.SessionRequest) (*entity.Session, error) {
	params := &stripego.CheckoutSessionParams{
		PaymentMethodTypes: stripego.StringSlice([]string{"card"}),
		Mode:               stripego.String(string(stripego.CheckoutSessionModePayment)),
		SuccessURL:         stripego.String(req.SuccessURL),
		CancelURL:          stripego.String(req.CancelURL),
		CustomerEmail:      stripego.String(req.CustomerEmail),
	}
	params.Context = ctx

	if req.ClientReference != "" {
		params.ClientReferenceID = stripego.String(req.ClientReference)
	}

	for _, li := range req.LineItems {
		product := &stripego.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripego.String(li.Name),
		}
		if li.Description != "" {
			product.Description = stripego.String(li.Description)
		}
		if li.Image != "" {
			product.Images = stripego.StringSlice([]string{li.Image})
		}
		params.LineItems = append(params.LineItems, &stripego.CheckoutSessionLineItemParams{
			PriceData: &stripego.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripego.String(req.Currency),
				ProductData: product,
				UnitAmount:  stripego.Int64(li.UnitAmount),
			},
			Quantity: stripego.Int64(li.Quantity),
		})
	}

	if req.CollectShipping {
		params.ShippingAddressCollection = &stripego.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripego.StringSlice(req.AllowedCountries),
		}
	}
	if req.CollectPhone {
		params.PhoneNumberCollection = &stripego.CheckoutSessionPhoneNumberCollectionParams{
			Enabled: stripego.Bool(true),
		}
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	s, err := p.sc.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: %w", err)
	}
	return toSession(s), nil
}

func (p *Provider) GetCheckoutSession(ctx context.Context, id string) (*entity.Session, error) {
	params := &stripego.CheckoutSessionParams{}
	params.Context = ctx

	s, err := p.sc.CheckoutSessions.Get(id, params)
	if err != nil {
		var se *stripego.Error
		if errors.As(err, &se) && se.HTTPStatusCode == 404 {
			return nil, fmt.Errorf("stripe: %w: %s", ports.ErrSessionNotFound, se.Msg)
		}
		return nil, fmt.Errorf("stripe: %w", err)
	}
	return toSession(s), nil
}

func toSession(s *stripego.CheckoutSession) *entity.Session {
	return &entity.Session{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: string(s.PaymentStatus),
		CustomerEmail: s.CustomerEmail,
		AmountTotal:   s.AmountTotal,
		Metadata:      s.Metadata,
	}
}
