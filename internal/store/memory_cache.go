package store

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/serroba/shortlink/internal/shortener"
)

// DefaultCleanupInterval is how often MemoryCache evicts expired items.
const DefaultCleanupInterval = time.Minute

// MemoryCache is an in-process shortener.Cache with per-item TTLs.
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a new in-process cache.
func NewMemoryCache(cleanupInterval time.Duration) *MemoryCache {
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}

	return &MemoryCache{cache: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

func (c *MemoryCache) Get(_ context.Context, code shortener.Code) (string, error) {
	value, ok := c.cache.Get(string(code))
	if !ok {
		return "", shortener.ErrCacheMiss
	}

	originalURL, ok := value.(string)
	if !ok {
		return "", shortener.ErrCacheMiss
	}

	return originalURL, nil
}

func (c *MemoryCache) Set(_ context.Context, code shortener.Code, originalURL string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	c.cache.Set(string(code), originalURL, ttl)

	return nil
}

func (c *MemoryCache) Delete(_ context.Context, code shortener.Code) error {
	c.cache.Delete(string(code))

	return nil
}

// Compile-time check.
var _ shortener.Cache = (*MemoryCache)(nil)
