package repository

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/swiftbuyz/domain"
)

var ErrCartNotFound = errors.New("cart not found")

// CartRepository is the durable store of cart blobs, keyed by the cart's
// namespaced key.
type CartRepository interface {
	GetCart(ctx context.Context, key string) (*domain.CartState, error)
	UpsertCart(ctx context.Context, key string, state *domain.CartState) error
	DeleteCart(ctx context.Context, key string) error
}

// Indexer is implemented by repositories that manage their own indexes.
type Indexer interface {
	CreateIndexes(ctx context.Context) error
}
