package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agorafi/marketplace/core"
	"github.com/agorafi/marketplace/ports"
)

// compareAndDelete removes the nonce key only when it still holds the
// expected value, so two verifications racing on the same nonce cannot both
// succeed.
var compareAndDelete = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisNonceStore is a Redis implementation of the NonceStore interface.
type RedisNonceStore struct {
	client *redis.Client
	prefix string
}

// NewRedisNonceStore creates a new Redis nonce store.
func NewRedisNonceStore(client *redis.Client) ports.NonceStore {
	return &RedisNonceStore{
		client: client,
		prefix: "marketplace:nonce:",
	}
}

// Put upserts the nonce for an address, replacing any prior one.
func (s *RedisNonceStore) Put(ctx context.Context, address, nonce string, ttl time.Duration) error {
	key := s.prefix + core.NormalizeWallet(address)
	if err := s.client.Set(ctx, key, nonce, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store nonce: %w", err)
	}
	return nil
}

// Get returns the current nonce for an address.
func (s *RedisNonceStore) Get(ctx context.Context, address string) (string, error) {
	key := s.prefix + core.NormalizeWallet(address)
	nonce, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", core.ErrNotFound("nonce not found")
		}
		return "", fmt.Errorf("failed to read nonce: %w", err)
	}
	return nonce, nil
}

// CompareAndDelete atomically consumes the nonce if it is still current.
func (s *RedisNonceStore) CompareAndDelete(ctx context.Context, address, nonce string) (bool, error) {
	key := s.prefix + core.NormalizeWallet(address)
	deleted, err := compareAndDelete.Run(ctx, s.client, []string{key}, nonce).Int()
	if err != nil {
		return false, fmt.Errorf("failed to consume nonce: %w", err)
	}
	return deleted == 1, nil
}
