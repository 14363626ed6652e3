package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ahrav/go-faceoff/internal/ports"
)

// DefaultKeyPrefix namespaces harness keys so Clear never touches anything
// else living in the same Redis database.
const DefaultKeyPrefix = "faceoff:"

// RedisStore is a CacheStore backed by a Redis server. Values are stored
// with Redis's native serialization, so callers should cache strings or
// byte slices.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

var _ ports.CacheStore = (*RedisStore)(nil)

// NewRedisStore creates a Redis-backed cache from a connection URL such as
// "redis://localhost:6379/0". An empty keyPrefix falls back to
// DefaultKeyPrefix. The connection is established lazily on first use.
func NewRedisStore(redisURL, keyPrefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}

	return &RedisStore{client: redis.NewClient(opts), keyPrefix: keyPrefix}, nil
}

func (s *RedisStore) key(key string) string { return s.keyPrefix + key }

// Get retrieves a cached value. A missing key is reported as not found, not
// as an error.
func (s *RedisStore) Get(ctx context.Context, key string) (any, bool, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache key %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores a value. A zero expiration keeps the entry until deleted.
func (s *RedisStore) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if err := s.client.Set(ctx, s.key(key), value, expiration).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %q: %w", key, err)
	}
	return nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete cache key %q: %w", key, err)
	}
	return nil
}

// Clear removes every key under the store's prefix, leaving the rest of the
// database untouched.
func (s *RedisStore) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error { return s.client.Close() }
