package checkoutlog

import (
	"context"
	"sync"
)

// Repository persists checkout log entries. Save appends; entries are never
// updated in place.
type Repository interface {
	Save(ctx context.Context, entry *Entry) error
}

// MemoryRepository keeps entries in process memory. Used when no database
// path is configured, and in tests.
type MemoryRepository struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) Save(_ context.Context, entry *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	return nil
}

// History returns the entries for one checkout in the order they were saved.
func (m *MemoryRepository) History(checkoutID string) []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Entry
	for _, e := range m.entries {
		if e.CheckoutID == checkoutID {
			out = append(out, e)
		}
	}
	return out
}

// Statuses is History reduced to the status column.
func (m *MemoryRepository) Statuses(checkoutID string) []Status {
	var out []Status
	for _, e := range m.History(checkoutID) {
		out = append(out, e.Status)
	}
	return out
}
