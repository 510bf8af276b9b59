package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlink/internal/shortener"
)

// RedisCache is a Redis implementation of shortener.Cache.
// Values are plain strings under "url:<code>" with a whole-second expiry.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache creates a new Redis-backed cache.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: "url:",
	}
}

func (r *RedisCache) Get(ctx context.Context, code shortener.Code) (string, error) {
	originalURL, err := r.client.Get(ctx, r.key(code)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", shortener.ErrCacheMiss
		}

		return "", err
	}

	return originalURL, nil
}

func (r *RedisCache) Set(ctx context.Context, code shortener.Code, originalURL string, ttl time.Duration) error {
	ttl = ttl.Truncate(time.Second)
	if ttl < time.Second {
		return nil
	}

	return r.client.Set(ctx, r.key(code), originalURL, ttl).Err()
}

func (r *RedisCache) Delete(ctx context.Context, code shortener.Code) error {
	return r.client.Del(ctx, r.key(code)).Err()
}

func (r *RedisCache) key(code shortener.Code) string {
	return r.prefix + string(code)
}

// Shutdown is a no-op for RedisCache (client managed externally).
func (r *RedisCache) Shutdown() error {
	return nil
}

// Compile-time check.
var _ shortener.Cache = (*RedisCache)(nil)
