package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const pendingMarker = "processing"

// IdempotencyStore implements usecase.IdempotencyStore using Redis.
type IdempotencyStore struct {
	client *redis.Client
	prefix string
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client *redis.Client, walletID string) *IdempotencyStore {
	return &IdempotencyStore{
		client: client,
		prefix: "wallet:" + walletID + ":idempotency:",
	}
}

// Reserve claims key with a placeholder. If the key exists, its stored
// response is returned instead, or nil while the first request is in flight.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) ([]byte, bool, error) {
	fullKey := s.prefix + key

	set, err := s.client.SetNX(ctx, fullKey, pendingMarker, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if set {
		return nil, true, nil
	}

	existing, err := s.client.Get(ctx, fullKey).Bytes()
	if errors.Is(err, redis.Nil) {
		// Released or expired between SETNX and GET.
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if string(existing) == pendingMarker {
		return nil, false, nil
	}

	return existing, false, nil
}

// Complete stores the final response for key.
func (s *IdempotencyStore) Complete(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, response, ttl).Err()
}

// Release removes the reservation on key.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
