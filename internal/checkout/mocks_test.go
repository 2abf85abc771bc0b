package checkout

import (
	"context"
	"sync"
	"testing"

	"github.com/fjod/go_cart/swiftbuyz/domain"
	"github.com/fjod/go_cart/swiftbuyz/internal/cart"
	"github.com/fjod/go_cart/swiftbuyz/internal/orders"
	"github.com/fjod/go_cart/swiftbuyz/internal/publisher"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockOrders struct {
	mu      sync.Mutex
	calls   int
	drafts  []*domain.OrderDraft
	tokens  []string
	result  *orders.Result
	err     error
	started chan struct{}
	release chan struct{}
}

func (m *MockOrders) CreateOrder(ctx context.Context, draft *domain.OrderDraft, token string) (*orders.Result, error) {
	m.mu.Lock()
	m.calls++
	m.drafts = append(m.drafts, draft)
	m.tokens = append(m.tokens, token)
	started, release := m.started, m.release
	m.mu.Unlock()

	if started != nil {
		close(started)
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result, m.err
}

func (m *MockOrders) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockOrders) LastDraft() *domain.OrderDraft {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.drafts) == 0 {
		return nil
	}
	return m.drafts[len(m.drafts)-1]
}

type MockNavigator struct {
	mu       sync.Mutex
	payloads []domain.ConfirmationPayload
	notify   chan struct{}
}

func NewMockNavigator() *MockNavigator {
	return &MockNavigator{notify: make(chan struct{}, 8)}
}

func (m *MockNavigator) NavigateToConfirmation(payload domain.ConfirmationPayload) {
	m.mu.Lock()
	m.payloads = append(m.payloads, payload)
	m.mu.Unlock()
	m.notify <- struct{}{}
}

func (m *MockNavigator) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.payloads)
}

func (m *MockNavigator) Last() domain.ConfirmationPayload {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.payloads[len(m.payloads)-1]
}

type MockConfirmations struct {
	mu    sync.Mutex
	saved map[string]*domain.ConfirmationPayload
	err   error
}

func NewMockConfirmations() *MockConfirmations {
	return &MockConfirmations{saved: make(map[string]*domain.ConfirmationPayload)}
}

func (m *MockConfirmations) SaveConfirmation(_ context.Context, userID string, payload *domain.ConfirmationPayload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saved[userID] = payload
	return nil
}

func (m *MockConfirmations) Get(userID string) *domain.ConfirmationPayload {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved[userID]
}

type MockPublisher struct {
	mu     sync.Mutex
	events []publisher.Event
}

func (m *MockPublisher) Publish(_ context.Context, event publisher.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockPublisher) Types() []publisher.EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]publisher.EventType, 0, len(m.events))
	for _, e := range m.events {
		types = append(types, e.Type)
	}
	return types
}

// stalledAnimator never calls back.
type stalledAnimator struct{}

func (stalledAnimator) Start(context.Context, func(AnimationStage), func()) {}

// manualAnimator hands the done callback to the test.
type manualAnimator struct {
	mu   sync.Mutex
	done func()
	ctx  context.Context
}

func (m *manualAnimator) Start(ctx context.Context, _ func(AnimationStage), done func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ctx = ctx
	m.done = done
}

func (m *manualAnimator) Finish() {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()
	done()
}

type fixture struct {
	cart          *cart.Store
	orders        *MockOrders
	navigator     *MockNavigator
	confirmations *MockConfirmations
	events        *MockPublisher
	animator      Animator
	params        Params
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := cart.NewStore(cart.Key("test-cart", "u1"), cart.NewMemoryPersister(), zap.NewNop())
	require.NoError(t, store.Add(context.Background(), domain.CartLineItem{
		ProductID:       "p1",
		Name:            "Headphones",
		UnitPrice:       decimal.NewFromInt(1000),
		DiscountPercent: decimal.NewFromInt(10),
		Quantity:        2,
		Image:           "p1.png",
	}))

	f := &fixture{
		cart:          store,
		orders:        &MockOrders{result: &orders.Result{OrderID: "abc123456789", Body: []byte(`{"order":{"_id":"abc123456789"}}`)}},
		navigator:     NewMockNavigator(),
		confirmations: NewMockConfirmations(),
		events:        &MockPublisher{},
		animator:      &TimedAnimator{},
	}
	f.params = Params{
		UserID: "u1",
		Token:  "token",
		Cart:   store,
		Addresses: []domain.Address{
			{Street: "1 Main St", City: "Pune", State: "MH", ZipCode: "411001", Country: "IN"},
		},
		Orders:              f.orders,
		Confirmations:       f.confirmations,
		Events:              f.events,
		Navigator:           f.navigator,
		Animator:            f.animator,
		ConfirmationTimeout: DefaultConfirmationTimeout,
		Logger:              zap.NewNop(),
	}
	return f
}

func (f *fixture) controller(t *testing.T) *Controller {
	t.Helper()
	f.params.Animator = f.animator
	c, err := New(f.params)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

// toReview walks a fresh controller to the review step.
func toReview(t *testing.T, c *Controller) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, c.Next(ctx))
	require.NoError(t, c.Next(ctx))
	require.Equal(t, domain.PhaseReview, c.View().Phase)
}
