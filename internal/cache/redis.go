package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/fjod/go_cart/swiftbuyz/domain"
	"github.com/redis/go-redis/v9"
)

const defaultConfirmationTTL = 30 * time.Minute

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:          client,
		baseTTL:         15 * time.Minute,
		confirmationTTL: defaultConfirmationTTL,
	}
}

// WithConfirmationTTL overrides how long a confirmation handoff is kept.
func (r *RedisCache) WithConfirmationTTL(ttl time.Duration) *RedisCache {
	r.confirmationTTL = ttl
	return r
}

type RedisCache struct {
	client          *redis.Client
	baseTTL         time.Duration
	confirmationTTL time.Duration
}

func (r *RedisCache) Get(ctx context.Context, key string) (*domain.CartState, error) {
	data, err := r.client.Get(ctx, cartCacheKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var state domain.CartState
	if err2 := json.Unmarshal(data, &state); err2 != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err2)
	}

	return &state, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, state *domain.CartState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(5)) * time.Minute
	ttl := r.baseTTL + jitter
	if err := r.client.Set(ctx, cartCacheKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, cartCacheKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}

	return nil
}

func (r *RedisCache) SaveConfirmation(ctx context.Context, userID string, payload *domain.ConfirmationPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal confirmation failed: %w", err)
	}
	if err := r.client.Set(ctx, confirmationKey(userID), data, r.confirmationTTL).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) LoadConfirmation(ctx context.Context, userID string) (*domain.ConfirmationPayload, error) {
	data, err := r.client.Get(ctx, confirmationKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var payload domain.ConfirmationPayload
	if err2 := json.Unmarshal(data, &payload); err2 != nil {
		return nil, fmt.Errorf("unmarshal confirmation failed: %w", err2)
	}
	return &payload, nil
}

func cartCacheKey(key string) string {
	return fmt.Sprintf("cart:%s", key)
}

func confirmationKey(userID string) string {
	return fmt.Sprintf("confirmation:%s", userID)
}
