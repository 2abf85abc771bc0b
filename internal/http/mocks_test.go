package http

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/swiftbuyz/domain"
	"github.com/fjod/go_cart/swiftbuyz/internal/cache"
	"github.com/fjod/go_cart/swiftbuyz/internal/orders"
)

type MockAddressBook struct {
	addresses map[string][]domain.Address
	err       error
}

func (m *MockAddressBook) ListByUser(_ context.Context, userID string) ([]domain.Address, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.addresses[userID], nil
}

type MockOrders struct {
	mu     sync.Mutex
	calls  int
	tokens []string
	result *orders.Result
	err    error
}

func (m *MockOrders) CreateOrder(_ context.Context, _ *domain.OrderDraft, token string) (*orders.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.tokens = append(m.tokens, token)
	return m.result, m.err
}

type MockConfirmationStore struct {
	mu    sync.Mutex
	saved map[string]*domain.ConfirmationPayload
	err   error
}

func NewMockConfirmationStore() *MockConfirmationStore {
	return &MockConfirmationStore{saved: make(map[string]*domain.ConfirmationPayload)}
}

func (m *MockConfirmationStore) SaveConfirmation(_ context.Context, userID string, payload *domain.ConfirmationPayload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[userID] = payload
	return nil
}

func (m *MockConfirmationStore) LoadConfirmation(_ context.Context, userID string) (*domain.ConfirmationPayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.saved[userID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return p, nil
}
