package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/farroshouse/ordering/internal/coordinator/checkoutlog"
	"github.com/farroshouse/ordering/internal/payment"
	"github.com/farroshouse/ordering/internal/payment-proxy/core/domain/entity"
	"github.com/farroshouse/ordering/internal/payment-proxy/core/ports"
	"github.com/farroshouse/ordering/internal/pricing"
)

var (
	ErrItemsRequired    = errors.New(payment.MsgItemsRequired)
	ErrCustomerRequired = errors.New(payment.MsgCustomerRequired)
	ErrInvalidItem      = errors.New("Each item needs a name, a non-negative price and a positive quantity")
	ErrInvalidOrderType = errors.New("Order type must be delivery or pickup")
)

// Config holds the storefront-facing settings of a checkout session.
type Config struct {
	Currency         string
	Policy           pricing.Policy
	FrontendURL      string
	AllowedCountries []string
}

// SessionService turns storefront checkout requests into provider sessions
// and records provider webhook events.
type SessionService struct {
	provider ports.PaymentProvider
	cfg      Config
	log      checkoutlog.Repository // nil-safe
}

func NewSessionService(provider ports.PaymentProvider, cfg Config, log checkoutlog.Repository) *SessionService {
	if cfg.Currency == "" {
		cfg.Currency = "gbp"
	}
	if len(cfg.AllowedCountries) == 0 {
		cfg.AllowedCountries = []string{"GB"}
	}
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	return &SessionService{provider: provider, cfg: cfg, log: log}
}

// BuildSessionRequest validates req and prices it. Totals are recomputed
// here rather than trusted from the caller; the line items, in pence, sum to
// the total in pence.
func (s *SessionService) BuildSessionRequest(req payment.CreateCheckoutSessionRequest) (*entity.SessionRequest, pricing.Totals, error) {
	if len(req.Items) == 0 {
		return nil, pricing.Totals{}, ErrItemsRequired
	}
	if req.CustomerInfo == nil || strings.TrimSpace(req.CustomerInfo.Email) == "" {
		return nil, pricing.Totals{}, ErrCustomerRequired
	}

	orderType := pricing.OrderTypeDelivery
	if req.OrderType != "" {
		ot, err := pricing.ParseOrderType(req.OrderType)
		if err != nil {
			return nil, pricing.Totals{}, ErrInvalidOrderType
		}
		orderType = ot
	}

	lines := make([]pricing.Line, 0, len(req.Items))
	items := make([]entity.LineItem, 0, len(req.Items)+2)
	for _, it := range req.Items {
		if strings.TrimSpace(it.Name) == "" || it.Price < 0 || it.Quantity < 1 {
			return nil, pricing.Totals{}, ErrInvalidItem
		}
		price := decimal.NewFromFloat(it.Price).Round(2)
		lines = append(lines, pricing.Line{UnitPrice: price, Quantity: it.Quantity})
		items = append(items, entity.LineItem{
			Name:        it.Name,
			Description: it.Description,
			Image:       it.Image,
			UnitAmount:  pricing.ToMinor(price),
			Quantity:    int64(it.Quantity),
		})
	}

	totals := pricing.Compute(lines, orderType, s.cfg.Policy)
	if totals.Tax.IsPositive() {
		items = append(items, entity.LineItem{
			Name:       fmt.Sprintf("Tax (%s%%)", s.cfg.Policy.TaxRate.Shift(2).String()),
			UnitAmount: pricing.ToMinor(totals.Tax),
			Quantity:   1,
		})
	}
	if totals.DeliveryFee.IsPositive() {
		items = append(items, entity.LineItem{
			Name:       "Delivery Fee",
			UnitAmount: pricing.ToMinor(totals.DeliveryFee),
			Quantity:   1,
		})
	}

	c := req.CustomerInfo
	sr := &entity.SessionRequest{
		ClientReference: req.OrderID,
		Currency:        s.cfg.Currency,
		LineItems:       items,
		CustomerEmail:   strings.TrimSpace(c.Email),
		CollectShipping: orderType == pricing.OrderTypeDelivery,
		CollectPhone:    true,
		SuccessURL:      s.cfg.FrontendURL + "/order-confirmation?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:       s.cfg.FrontendURL + "/checkout?cancelled=true",
		Metadata: map[string]string{
			"customerName":        c.Name,
			"customerPhone":       c.Phone,
			"orderType":           string(orderType),
			"specialInstructions": req.SpecialInstructions,
			"itemCount":           strconv.Itoa(len(req.Items)),
			"totalAmount":         totals.Total.StringFixed(2),
		},
	}
	if sr.CollectShipping {
		sr.AllowedCountries = s.cfg.AllowedCountries
	}
	if req.OrderID != "" {
		sr.Metadata["orderId"] = req.OrderID
	}
	return sr, totals, nil
}

// Create opens a provider checkout session for req.
func (s *SessionService) Create(ctx context.Context, req payment.CreateCheckoutSessionRequest) (*entity.Session, error) {
	sr, totals, err := s.BuildSessionRequest(req)
	if err != nil {
		return nil, err
	}

	session, err := s.provider.CreateCheckoutSession(ctx, sr)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	slog.InfoContext(ctx, "checkout session created",
		"session_id", session.ID,
		"order_id", req.OrderID,
		"total", totals.Total.StringFixed(2),
		"amount_minor", sr.AmountTotal(),
	)
	s.record(ctx, session.ID, checkoutlog.StatusStarted, "create_session", sr.Metadata["totalAmount"], nil)
	return session, nil
}

// Get reads a provider checkout session.
func (s *SessionService) Get(ctx context.Context, id string) (*entity.Session, error) {
	session, err := s.provider.GetCheckoutSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get checkout session %q: %w", id, err)
	}
	return session, nil
}

// HandleEvent records a verified webhook event. Unknown event types are
// acknowledged and logged only.
func (s *SessionService) HandleEvent(ctx context.Context, ev *entity.Event) {
	switch ev.Type {
	case entity.EventCheckoutCompleted:
		slog.InfoContext(ctx, "payment succeeded", "session_id", ev.ObjectID, "event_id", ev.ID)
		s.record(ctx, ev.ObjectID, checkoutlog.StatusPaid, ev.Type, "", nil)
	case entity.EventPaymentFailed:
		slog.WarnContext(ctx, "payment failed", "payment_intent_id", ev.ObjectID, "event_id", ev.ID)
		s.record(ctx, ev.ObjectID, checkoutlog.StatusPaymentFailed, ev.Type, "", []string{"payment intent failed"})
	default:
		slog.InfoContext(ctx, "unhandled webhook event type", "type", ev.Type, "event_id", ev.ID)
	}
}

func (s *SessionService) record(ctx context.Context, id string, status checkoutlog.Status, step, payload string, errs []string) {
	if s.log == nil {
		return
	}
	entry := checkoutlog.NewEntry(ctx, id, status, step, payload, errs)
	if err := s.log.Save(context.WithoutCancel(ctx), entry); err != nil {
		slog.ErrorContext(ctx, "failed to write checkout log", "checkout_id", id, "status", status, "error", err)
	}
}
