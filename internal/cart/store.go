package cart

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/go_cart/swiftbuyz/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultPersistTimeout = 2 * time.Second

var hundred = decimal.NewFromInt(100)

// Key is the persistence key of a user's cart inside namespace.
func Key(namespace, userID string) string {
	return namespace + ":" + userID
}

// Store holds the ordered line items of one cart. Every mutation persists the
// resulting state; persistence failures are logged and never returned.
type Store struct {
	mu      sync.RWMutex
	items   []domain.CartLineItem
	version uint64

	saveMu    sync.Mutex
	attempted uint64
	// unsynced is set while the persisted cart could not be loaded; writes
	// are held back so they cannot overwrite it.
	unsynced  bool

	key            string
	persister      Persister
	persistTimeout time.Duration
	logger         *zap.Logger
}

func NewStore(key string, persister Persister, logger *zap.Logger) *Store {
	return &Store{
		key:            key,
		persister:      persister,
		persistTimeout: defaultPersistTimeout,
		logger:         logger,
	}
}

// Load replaces the in-memory items with the persisted state. After a failed
// load the store stops persisting until a later Load succeeds.
func (s *Store) Load(ctx context.Context) error {
	state, err := s.persister.Load(ctx, s.key)

	s.saveMu.Lock()
	s.unsynced = err != nil
	s.saveMu.Unlock()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]domain.CartLineItem(nil), state.Items...)
	return nil
}

func (s *Store) Items() []domain.CartLineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.CartLineItem(nil), s.items...)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) Totals() Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ComputeTotals(s.items)
}

// Add appends item, or increments the quantity of the line with the same product id.
func (s *Store) Add(ctx context.Context, item domain.CartLineItem) error {
	if item.ProductID == "" || item.UnitPrice.IsNegative() {
		return ErrInvalidItem
	}
	if item.Quantity < 1 {
		return ErrInvalidQuantity
	}
	item.DiscountPercent = clampPercent(item.DiscountPercent)

	s.mu.Lock()
	idx := s.indexOf(item.ProductID)
	if idx < 0 {
		if exceedsStock(item.Quantity, item.Stock) {
			s.mu.Unlock()
			return ErrExceedsStock
		}
		s.items = append(s.items, item)
	} else {
		existing := &s.items[idx]
		stock := existing.Stock
		if item.Stock > 0 {
			stock = item.Stock
		}
		merged := existing.Quantity + item.Quantity
		if exceedsStock(merged, stock) {
			s.mu.Unlock()
			return ErrExceedsStock
		}
		existing.Quantity = merged
		existing.Stock = stock
	}
	state, version := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, state, version)
	return nil
}

func (s *Store) Remove(ctx context.Context, productID string) error {
	s.mu.Lock()
	idx := s.indexOf(productID)
	if idx < 0 {
		s.mu.Unlock()
		return ErrItemNotFound
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	state, version := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, state, version)
	return nil
}

func (s *Store) SetQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	idx := s.indexOf(productID)
	if idx < 0 {
		s.mu.Unlock()
		return ErrItemNotFound
	}
	if exceedsStock(quantity, s.items[idx].Stock) {
		s.mu.Unlock()
		return ErrExceedsStock
	}
	s.items[idx].Quantity = quantity
	state, version := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, state, version)
	return nil
}

func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	state, version := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, state, version)
}

func (s *Store) indexOf(productID string) int {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotLocked() (*domain.CartState, uint64) {
	s.version++
	items := append([]domain.CartLineItem{}, s.items...)
	return &domain.CartState{
		Items:       items,
		TotalAmount: ComputeGrandTotal(items),
	}, s.version
}

// persist writes state unless a newer version has already been attempted,
// failed or not. It is detached from the caller's cancellation so a finished
// request does not abort the write.
func (s *Store) persist(ctx context.Context, state *domain.CartState, version uint64) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if s.unsynced {
		s.logger.Warn("cart persistence skipped, persisted cart was never loaded", zap.String("key", s.key))
		return
	}
	if version <= s.attempted {
		return
	}
	s.attempted = version

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.persistTimeout)
	defer cancel()
	if err := s.persister.Save(saveCtx, s.key, state); err != nil {
		s.logger.Warn("cart persistence failed", zap.String("key", s.key), zap.Error(err))
	}
}

func clampPercent(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return decimal.Zero
	}
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}

func exceedsStock(quantity, stock int) bool {
	return stock > 0 && quantity > stock
}
