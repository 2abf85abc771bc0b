package cache

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/swiftbuyz/domain"
)

type CartCache interface {
	Get(ctx context.Context, key string) (*domain.CartState, error)
	Set(ctx context.Context, key string, state *domain.CartState) error
	Delete(ctx context.Context, key string) error
}

// ConfirmationStore is the session-scoped handoff of the last confirmation
// payload. The next order overwrites it.
type ConfirmationStore interface {
	SaveConfirmation(ctx context.Context, userID string, payload *domain.ConfirmationPayload) error
	LoadConfirmation(ctx context.Context, userID string) (*domain.ConfirmationPayload, error)
}

var ErrCacheMiss = errors.New("cache miss")
