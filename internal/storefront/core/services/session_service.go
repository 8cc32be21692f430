package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/farroshouse/ordering/internal/cart"
	"github.com/farroshouse/ordering/internal/checkout"
	"github.com/farroshouse/ordering/internal/storefront/core/ports"
)

var _ ports.Sessions = (*SessionService)(nil)

// SessionService pairs each browsing session with its cart and a checkout
// flow over that cart.
type SessionService struct {
	carts   *cart.Registry
	gateway checkout.Gateway
	opts    checkout.Options

	mu    sync.Mutex
	flows map[string]*checkout.Flow
}

func NewSessionService(carts *cart.Registry, gateway checkout.Gateway, opts checkout.Options) *SessionService {
	return &SessionService{
		carts:   carts,
		gateway: gateway,
		opts:    opts,
		flows:   make(map[string]*checkout.Flow),
	}
}

func (s *SessionService) Cart(ctx context.Context, sessionID string) *cart.Engine {
	return s.carts.Get(ctx, sessionID)
}

// View reads the session's cart without creating one.
func (s *SessionService) View(ctx context.Context, sessionID string) (cart.Snapshot, bool) {
	return s.carts.View(ctx, sessionID)
}

// CheckoutState reads the session's checkout. A session that never started
// one is on the details step.
func (s *SessionService) CheckoutState(ctx context.Context, sessionID string) checkout.State {
	s.mu.Lock()
	f, ok := s.flows[sessionID]
	s.mu.Unlock()
	if !ok {
		return checkout.State{Step: checkout.StepDetails}
	}
	// Keep the cart behind a live checkout from going idle.
	s.carts.Get(ctx, sessionID)
	return f.State()
}

// Checkout returns the session's flow, starting one on first use.
func (s *SessionService) Checkout(ctx context.Context, sessionID string) *checkout.Flow {
	engine := s.carts.Get(ctx, sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.flows[sessionID]; ok {
		return f
	}
	f := checkout.NewFlow(engine, s.gateway, s.opts)
	s.flows[sessionID] = f
	return f
}

// Evict drops the cart and checkout of every session idle for at least idle,
// except those with a payment in flight, and returns how many went.
func (s *SessionService) Evict(idle time.Duration) int {
	// Sweep under mu so Checkout cannot pair a kept flow with a reloaded cart.
	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := s.carts.Sweep(idle)
	for _, id := range dropped {
		delete(s.flows, id)
	}
	return len(dropped)
}

// RunEvictor calls Evict every interval until ctx is done.
func (s *SessionService) RunEvictor(ctx context.Context, idle, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Evict(idle); n > 0 {
				slog.InfoContext(ctx, "evicted idle sessions", "count", n, "idle", idle)
			}
		}
	}
}
