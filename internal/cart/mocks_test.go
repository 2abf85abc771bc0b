package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/fjod/go_cart/swiftbuyz/domain"
	"github.com/fjod/go_cart/swiftbuyz/internal/cache"
	"github.com/fjod/go_cart/swiftbuyz/internal/repository"
)

type failingPersister struct {
	saves int
}

func (f *failingPersister) Load(context.Context, string) (*domain.CartState, error) {
	return nil, errors.New("storage unavailable")
}

func (f *failingPersister) Save(context.Context, string, *domain.CartState) error {
	f.saves++
	return errors.New("quota exceeded")
}

type mockRepository struct {
	m      sync.Mutex
	states map[string]*domain.CartState
	gets   int
	err    error
}

func newMockRepository() *mockRepository {
	return &mockRepository{states: make(map[string]*domain.CartState)}
}

func (m *mockRepository) GetCart(_ context.Context, key string) (*domain.CartState, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.gets++
	if m.err != nil {
		return nil, m.err
	}
	state, ok := m.states[key]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	return state, nil
}

func (m *mockRepository) UpsertCart(_ context.Context, key string, state *domain.CartState) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.states[key] = state
	return nil
}

func (m *mockRepository) DeleteCart(_ context.Context, key string) error {
	m.m.Lock()
	defer m.m.Unlock()
	delete(m.states, key)
	return nil
}

type mockCache struct {
	m       sync.Mutex
	states  map[string]*domain.CartState
	deletes int
}

func newMockCache() *mockCache {
	return &mockCache{states: make(map[string]*domain.CartState)}
}

func (m *mockCache) Get(_ context.Context, key string) (*domain.CartState, error) {
	m.m.Lock()
	defer m.m.Unlock()
	state, ok := m.states[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return state, nil
}

func (m *mockCache) Set(_ context.Context, key string, state *domain.CartState) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.states[key] = state
	return nil
}

func (m *mockCache) Delete(_ context.Context, key string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.deletes++
	delete(m.states, key)
	return nil
}

func (m *mockCache) has(key string) bool {
	m.m.Lock()
	defer m.m.Unlock()
	_, ok := m.states[key]
	return ok
}

// flakyPersister wraps a MemoryPersister and fails the next N loads or saves.
type flakyPersister struct {
	*MemoryPersister
	loadFailures int
	saveFailures int
	saves        int
}

func (f *flakyPersister) Load(ctx context.Context, key string) (*domain.CartState, error) {
	if f.loadFailures > 0 {
		f.loadFailures--
		return nil, errors.New("storage timeout")
	}
	return f.MemoryPersister.Load(ctx, key)
}

func (f *flakyPersister) Save(ctx context.Context, key string, state *domain.CartState) error {
	f.saves++
	if f.saveFailures > 0 {
		f.saveFailures--
		return errors.New("storage timeout")
	}
	return f.MemoryPersister.Save(ctx, key, state)
}
