package cart

import (
	"context"
	"sync"
	"time"

	"github.com/farroshouse/ordering/internal/pricing"
)

// Registry hands out one Engine per shopping session, loading each from the
// store the first time the session is seen. Engines left untouched are
// dropped by Sweep; their persisted record is reloaded on the next Get.
type Registry struct {
	mu      sync.Mutex
	engines map[string]*Engine
	touched map[string]time.Time
	catalog Catalog
	policy  pricing.Policy
	store   Store
	now     func() time.Time
}

func NewRegistry(catalog Catalog, policy pricing.Policy, store Store) *Registry {
	return &Registry{
		engines: make(map[string]*Engine),
		touched: make(map[string]time.Time),
		catalog: catalog,
		policy:  policy,
		store:   store,
		now:     time.Now,
	}
}

// Key is the store key for a session's cart.
func Key(sessionID string) string {
	return KeyPrefix + ":" + sessionID
}

// Get returns the session's cart, holding it in memory until it goes idle.
func (r *Registry) Get(ctx context.Context, sessionID string) *Engine {
	r.mu.Lock()
	e, ok := r.engines[sessionID]
	if ok {
		r.touched[sessionID] = r.now()
	}
	r.mu.Unlock()
	if ok {
		return e
	}

	loaded := Open(ctx, r.store, Key(sessionID), r.catalog, r.policy)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.touched[sessionID] = r.now()
	// Another request for the same session may have won the race.
	if e, ok := r.engines[sessionID]; ok {
		return e
	}
	r.engines[sessionID] = loaded
	return loaded
}

// View returns the session's cart and whether a checkout holds it. A session
// that is not in memory is read from the store and not registered.
func (r *Registry) View(ctx context.Context, sessionID string) (Snapshot, bool) {
	r.mu.Lock()
	e, ok := r.engines[sessionID]
	if ok {
		r.touched[sessionID] = r.now()
	}
	r.mu.Unlock()
	if ok {
		return e.Snapshot(), e.Locked()
	}
	return Open(ctx, r.store, Key(sessionID), r.catalog, r.policy).Snapshot(), false
}

// Sweep drops every cart not touched for at least idle and returns the
// dropped session ids. Carts held by a checkout are kept.
func (r *Registry) Sweep(idle time.Duration) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var dropped []string
	for id, e := range r.engines {
		if now.Sub(r.touched[id]) < idle || e.Locked() {
			continue
		}
		delete(r.engines, id)
		delete(r.touched, id)
		dropped = append(dropped, id)
	}
	return dropped
}

// Forget drops the in-memory cart for a session; the persisted record stays.
func (r *Registry) Forget(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.engines, sessionID)
	delete(r.touched, sessionID)
}

// Len is the number of sessions held in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.engines)
}
