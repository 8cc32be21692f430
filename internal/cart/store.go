package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/farroshouse/ordering/internal/pkg/cache"
	"github.com/farroshouse/ordering/internal/pricing"
)

// KeyPrefix namespaces persisted carts.
const KeyPrefix = "farros-cart"

// Store is the key-value slot a cart is persisted to. Load returns nil data
// and no error when the key has never been written.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// Record is the persisted JSON shape of a cart. The money fields are written
// for readers of the record; they are recomputed, never trusted, on load.
type Record struct {
	Lines       []RecordLine `json:"lines"`
	OrderType   string       `json:"orderType,omitempty"`
	Subtotal    float64      `json:"subtotal"`
	Tax         float64      `json:"tax"`
	DeliveryFee float64      `json:"deliveryFee"`
	Total       float64      `json:"total"`
}

// RecordLine is one persisted line.
type RecordLine struct {
	ItemID              string `json:"itemId"`
	Quantity            int    `json:"quantity"`
	SpecialInstructions string `json:"specialInstructions,omitempty"`
}

// Open loads the cart stored under key, or starts an empty one. Unreadable or
// inconsistent records are logged as PersistenceReadError and discarded so the
// session always gets a usable cart.
func Open(ctx context.Context, store Store, key string, catalog Catalog, policy pricing.Policy) *Engine {
	e := New(catalog, policy)
	e.store = store
	e.key = key

	data, err := store.Load(ctx, key)
	if err != nil {
		logReadError(ctx, &PersistenceReadError{Key: key, Err: err})
		return e
	}
	if len(data) == 0 {
		return e
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		logReadError(ctx, &PersistenceReadError{Key: key, Err: err})
		return e
	}

	if ot, err := pricing.ParseOrderType(rec.OrderType); err == nil {
		e.orderType = ot
	}

	for _, rl := range rec.Lines {
		if _, ok := catalog.Lookup(rl.ItemID); !ok {
			logReadError(ctx, &PersistenceReadError{Key: key, Err: fmt.Errorf("line %q: %w", rl.ItemID, ErrItemNotFound)})
			continue
		}
		if rl.Quantity < 1 {
			logReadError(ctx, &PersistenceReadError{Key: key, Err: fmt.Errorf("line %q x%d: %w", rl.ItemID, rl.Quantity, ErrInvalidQuantity)})
			continue
		}
		if i := e.indexOf(rl.ItemID); i >= 0 {
			if rl.Quantity > math.MaxInt-e.lines[i].Quantity {
				logReadError(ctx, &PersistenceReadError{Key: key, Err: fmt.Errorf("line %q x%d: %w", rl.ItemID, rl.Quantity, ErrInvalidQuantity)})
				continue
			}
			e.lines[i].Quantity += rl.Quantity
			continue
		}
		e.lines = append(e.lines, Line{
			ItemID:              rl.ItemID,
			Quantity:            rl.Quantity,
			SpecialInstructions: rl.SpecialInstructions,
		})
	}
	e.recompute()
	return e
}

func logReadError(ctx context.Context, err *PersistenceReadError) {
	slog.WarnContext(ctx, "discarding unreadable cart record", "key", err.Key, "error", err)
}

// record encodes the current state. Must hold e.mu.
func (e *Engine) record() Record {
	rec := Record{
		Lines:       make([]RecordLine, 0, len(e.lines)),
		OrderType:   string(e.orderType),
		Subtotal:    e.totals.Subtotal.InexactFloat64(),
		Tax:         e.totals.Tax.InexactFloat64(),
		DeliveryFee: e.totals.DeliveryFee.InexactFloat64(),
		Total:       e.totals.Total.InexactFloat64(),
	}
	for _, l := range e.lines {
		rec.Lines = append(rec.Lines, RecordLine{
			ItemID:              l.ItemID,
			Quantity:            l.Quantity,
			SpecialInstructions: l.SpecialInstructions,
		})
	}
	return rec
}

// persist writes the record back. A failed write is logged; the in-memory
// cart stays authoritative for the session. Must hold e.mu.
func (e *Engine) persist(ctx context.Context) {
	if e.store == nil {
		return
	}
	data, err := json.Marshal(e.record())
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode cart record", "key", e.key, "error", err)
		return
	}
	if err := e.store.Save(context.WithoutCancel(ctx), e.key, data); err != nil {
		slog.ErrorContext(ctx, "failed to persist cart", "key", e.key, "error", err)
	}
}

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryStore) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(data))
	copy(v, data)
	m.data[key] = v
	return nil
}

// CacheStore persists records in the shared Redis cache.
type CacheStore struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewCacheStore returns a Store over c. A zero ttl keeps records forever.
func NewCacheStore(c cache.Cache, ttl time.Duration) *CacheStore {
	return &CacheStore{cache: c, ttl: ttl}
}

func (s *CacheStore) Load(ctx context.Context, key string) ([]byte, error) {
	v, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if v == "" {
		return nil, nil
	}
	return []byte(v), nil
}

func (s *CacheStore) Save(ctx context.Context, key string, data []byte) error {
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}
