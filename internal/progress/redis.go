package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/p-n-ai/risk-snapshot/internal/platform/cache"
)

// DefaultRedisTTL bounds how long an abandoned session is kept.
const DefaultRedisTTL = 30 * 24 * time.Hour

// RedisStore keeps snapshots as JSON strings with a TTL.
type RedisStore struct {
	client    redis.Cmdable
	namespace string
	ttl       time.Duration
}

// NewRedisStore creates a Redis-backed progress backend. A zero ttl uses
// DefaultRedisTTL.
func NewRedisStore(c *cache.Cache, ttl time.Duration) (*RedisStore, error) {
	if c == nil || c.Client == nil {
		return nil, fmt.Errorf("cache client is nil")
	}
	return newRedisStore(c.Client, c.Namespace, ttl), nil
}

func newRedisStore(client redis.Cmdable, namespace string, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}
	return &RedisStore{client: client, namespace: namespace, ttl: ttl}
}

func (s *RedisStore) key(k Key) string {
	return cache.Key(s.namespace, "progress", string(k.Track), k.RespondentID)
}

func (s *RedisStore) Put(ctx context.Context, key Key, data []byte) error {
	if err := s.client.Set(ctx, s.key(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("set progress: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key Key) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return data, nil
}

func (s *RedisStore) Delete(ctx context.Context, key Key) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	return nil
}
