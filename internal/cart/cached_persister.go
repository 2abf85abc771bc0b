package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/swiftbuyz/domain"
	"github.com/fjod/go_cart/swiftbuyz/internal/cache"
	"github.com/fjod/go_cart/swiftbuyz/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CachedPersister stores carts in a durable repository and keeps a cache in
// front of it. Reads go cache-first; writes go to the repository and
// invalidate the cache entry.
type CachedPersister struct {
	repo   repository.CartRepository
	cache  cache.CartCache
	sfg    singleflight.Group // Prevents cache stampede
	logger *zap.Logger
}

func NewCachedPersister(repo repository.CartRepository, c cache.CartCache, logger *zap.Logger) *CachedPersister {
	return &CachedPersister{
		repo:   repo,
		cache:  c,
		logger: logger,
	}
}

func (p *CachedPersister) Load(ctx context.Context, key string) (*domain.CartState, error) {
	v, err, _ := p.sfg.Do(key, func() (interface{}, error) {
		state, err := p.cache.Get(ctx, key)
		if err == nil {
			return state, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			p.logger.Warn("cart cache get failed", zap.String("key", key), zap.Error(err))
		}

		state, errGet := p.repo.GetCart(ctx, key)
		if errors.Is(errGet, repository.ErrCartNotFound) {
			return &domain.CartState{}, nil
		}
		if errGet != nil {
			return nil, fmt.Errorf("failed to load cart: %w", errGet)
		}

		go func() {
			if errSet := p.cache.Set(context.Background(), key, state); errSet != nil {
				p.logger.Warn("cart cache set failed", zap.String("key", key), zap.Error(errSet))
			}
		}()

		return state, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.CartState), nil
}

func (p *CachedPersister) Save(ctx context.Context, key string, state *domain.CartState) error {
	if err := p.repo.UpsertCart(ctx, key, state); err != nil {
		return err
	}
	p.invalidate(key)
	return nil
}

func (p *CachedPersister) invalidate(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := p.cache.Delete(ctx, key); err != nil {
		p.logger.Warn("cart cache invalidate failed", zap.String("key", key), zap.Error(err))
	}
}
