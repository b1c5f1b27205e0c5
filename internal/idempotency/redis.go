package idempotency

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces processed-event markers in the shared Redis instance.
const keyPrefix = "invoicing:processed:"

// RedisStore keeps processed-event markers in Redis. Records carry no TTL: a
// committed marker is a permanent dedupe record.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store backed by the given Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, keyPrefix+key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisStore) Set(ctx context.Context, key string) error {
	return s.client.Set(ctx, keyPrefix+key, "1", 0).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, keyPrefix+key).Err()
}

// Ping reports whether the Redis connection is healthy.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
