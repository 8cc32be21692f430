// Package mock is an in-memory payment provider for local development. It
// approves every session immediately unless the amount exceeds a limit.
package mock

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/farroshouse/ordering/internal/payment-proxy/core/domain/entity"
	"github.com/farroshouse/ordering/internal/payment-proxy/core/ports"
)

var _ ports.PaymentProvider = (*Provider)(nil)

// DefaultDeclineAbove is the amount in minor units above which sessions are
// declined.
const DefaultDeclineAbove int64 = 50000

// Provider keeps sessions in memory. Do NOT use in production.
type Provider struct {
	mu           sync.Mutex
	sessions     map[string]*entity.Session
	declineAbove int64
}

// NewProvider returns a mock provider. A declineAbove of zero or less never
// declines.
func NewProvider(declineAbove int64) *Provider {
	return &Provider{
		sessions:     make(map[string]*entity.Session),
		declineAbove: declineAbove,
	}
}

func (p *Provider) CreateCheckoutSession(ctx context.Context, req *entity.SessionRequest) (*entity.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	total := req.AmountTotal()
	if p.declineAbove > 0 && total > p.declineAbove {
		slog.WarnContext(ctx, "mock provider declined session", "amount_minor", total, "limit", p.declineAbove)
		return nil, fmt.Errorf("mock: amount %d exceeds limit %d", total, p.declineAbove)
	}

	id := "cs_mock_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	s := &entity.Session{
		ID:            id,
		URL:           strings.ReplaceAll(req.SuccessURL, "{CHECKOUT_SESSION_ID}", id),
		PaymentStatus: "paid",
		CustomerEmail: req.CustomerEmail,
		AmountTotal:   total,
		Metadata:      maps.Clone(req.Metadata),
	}
	p.sessions[id] = s

	slog.InfoContext(ctx, "mock session approved", "session_id", id, "amount_minor", total)
	out := *s
	return &out, nil
}

func (p *Provider) GetCheckoutSession(_ context.Context, id string) (*entity.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.sessions[id]
	if !ok {
		return nil, fmt.Errorf("mock: %w: %q", ports.ErrSessionNotFound, id)
	}
	out := *s
	out.Metadata = maps.Clone(s.Metadata)
	return &out, nil
}
