//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCacheIntegration(t *testing.T) {
	client := startRedis(t)
	c := store.NewRedisCache(client)
	ctx := context.Background()

	t.Run("set and get url", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "rcache1", "https://example.com", time.Minute))

		got, err := c.Get(ctx, "rcache1")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", got)

		ttl, err := client.TTL(ctx, "url:rcache1").Result()
		require.NoError(t, err)
		assert.LessOrEqual(t, ttl, time.Minute)
		assert.Greater(t, ttl, 50*time.Second)
	})

	t.Run("sub-second ttl is not written", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "rcache2", "https://example.com", 900*time.Millisecond))

		_, err := c.Get(ctx, "rcache2")
		assert.ErrorIs(t, err, shortener.ErrCacheMiss)
	})

	t.Run("delete purges the key", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "rcache3", "https://example.com", time.Minute))
		require.NoError(t, c.Delete(ctx, "rcache3"))

		_, err := c.Get(ctx, "rcache3")
		assert.ErrorIs(t, err, shortener.ErrCacheMiss)
	})
}

func TestRateLimitRedisStoreIntegration(t *testing.T) {
	client := startRedis(t)
	s := store.NewRateLimitRedisStore(client)
	ctx := context.Background()

	t.Run("counts requests in window", func(t *testing.T) {
		for i := 1; i <= 3; i++ {
			count, err := s.Record(ctx, "client-a", time.Minute)

			require.NoError(t, err)
			assert.Equal(t, int64(i), count)
		}
	})

	t.Run("expired requests fall out of the window", func(t *testing.T) {
		_, _ = s.Record(ctx, "client-b", 50*time.Millisecond)
		time.Sleep(80 * time.Millisecond)

		count, err := s.Record(ctx, "client-b", 50*time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}
