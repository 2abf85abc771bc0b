package cart

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/swiftbuyz/domain"
)

// Persister is the durable storage port of the cart store. Load returns an
// empty state, not an error, when nothing was saved under key.
type Persister interface {
	Load(ctx context.Context, key string) (*domain.CartState, error)
	Save(ctx context.Context, key string, state *domain.CartState) error
}

// MemoryPersister keeps cart blobs in process memory. Used in tests and when
// no durable backend is configured.
type MemoryPersister struct {
	mu     sync.RWMutex
	states map[string]domain.CartState
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{states: make(map[string]domain.CartState)}
}

func (m *MemoryPersister) Load(_ context.Context, key string) (*domain.CartState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.states[key]
	if !ok {
		return &domain.CartState{}, nil
	}
	state.Items = append([]domain.CartLineItem(nil), state.Items...)
	return &state, nil
}

func (m *MemoryPersister) Save(_ context.Context, key string, state *domain.CartState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *state
	copied.Items = append([]domain.CartLineItem(nil), state.Items...)
	m.states[key] = copied
	return nil
}
