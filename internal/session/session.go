package session

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/go_cart/swiftbuyz/domain"
	"github.com/fjod/go_cart/swiftbuyz/internal/cart"
	"github.com/fjod/go_cart/swiftbuyz/internal/checkout"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	// IdleTTL is how long an untouched session is kept in memory
	IdleTTL = 30 * time.Minute

	// CleanupInterval is how often idle sessions are evicted
	CleanupInterval = time.Minute
)

// Session is the server-side state of one signed-in user: the cart, the
// running checkout and the navigation state of the last confirmation.
type Session struct {
	UserID string
	Cart   *cart.Store

	mu           sync.Mutex
	checkout     *checkout.Controller
	confirmation *domain.ConfirmationPayload
	lastSeen     time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// NavigateToConfirmation records the confirmation as in-memory navigation state.
func (s *Session) NavigateToConfirmation(payload domain.ConfirmationPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmation = &payload
}

func (s *Session) Confirmation() (*domain.ConfirmationPayload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.confirmation, s.confirmation != nil
}

func (s *Session) Checkout() (*checkout.Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkout, s.checkout != nil
}

// StartCheckout installs c as the running checkout, tearing down the previous
// one. A new checkout also drops the navigation state of the last order.
func (s *Session) StartCheckout(c *checkout.Controller) {
	s.mu.Lock()
	prev := s.checkout
	s.checkout = c
	if c != nil {
		s.confirmation = nil
	}
	s.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
}

func (s *Session) EndCheckout() {
	s.StartCheckout(nil)
}

// Registry keeps one Session per user id. Sessions idle for longer than
// IdleTTL are evicted in the background; their carts stay persisted.
type Registry struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	sfg       singleflight.Group
	persister cart.Persister
	namespace string
	logger    *zap.Logger

	stopCleanup chan struct{}
	closeOnce   sync.Once
	wg          sync.WaitGroup
}

func NewRegistry(persister cart.Persister, namespace string, logger *zap.Logger) *Registry {
	r := &Registry{
		sessions:    make(map[string]*Session),
		persister:   persister,
		namespace:   namespace,
		logger:      logger,
		stopCleanup: make(chan struct{}),
	}

	r.wg.Add(1)
	go r.cleanupLoop()

	return r
}

func (r *Registry) cleanupLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			r.evictIdle(now)
		case <-r.stopCleanup:
			return
		}
	}
}

// evictIdle drops sessions idle for longer than IdleTTL, tearing down their checkout.
func (r *Registry) evictIdle(now time.Time) {
	var evicted []*Session

	r.mu.Lock()
	for id, s := range r.sessions {
		if s.idleSince(now) > IdleTTL {
			delete(r.sessions, id)
			evicted = append(evicted, s)
		}
	}
	r.mu.Unlock()

	for _, s := range evicted {
		s.EndCheckout()
	}
	if len(evicted) > 0 {
		r.logger.Debug("evicted idle sessions", zap.Int("count", len(evicted)))
	}
}

// Get returns the user's session, loading the persisted cart on first use.
// A cart that cannot be loaded starts empty in a session that is not kept:
// its store does not persist, and the next Get loads again.
func (r *Registry) Get(ctx context.Context, userID string) *Session {
	if s := r.lookup(userID); s != nil {
		s.touch(time.Now())
		return s
	}

	v, _, _ := r.sfg.Do(userID, func() (interface{}, error) {
		if s := r.lookup(userID); s != nil {
			return s, nil
		}

		store := cart.NewStore(cart.Key(r.namespace, userID), r.persister, r.logger)
		s := &Session{UserID: userID, Cart: store, lastSeen: time.Now()}
		if err := store.Load(ctx); err != nil {
			r.logger.Warn("failed to load persisted cart", zap.String("user_id", userID), zap.Error(err))
			return s, nil
		}

		r.mu.Lock()
		r.sessions[userID] = s
		r.mu.Unlock()
		return s, nil
	})
	return v.(*Session)
}

func (r *Registry) lookup(userID string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[userID]
}

// Close stops the cleanup loop and tears down every running checkout.
func (r *Registry) Close() {
	r.closeOnce.Do(func() { close(r.stopCleanup) })
	r.wg.Wait()

	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	for _, s := range sessions {
		s.EndCheckout()
	}
}
