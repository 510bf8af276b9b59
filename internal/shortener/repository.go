package shortener

import (
	"context"
	"time"
)

// Repository is the persistent source of truth for short URL entries.
// Lookups and listings only see ACTIVE entries.
type Repository interface {
	FindActiveByCode(ctx context.Context, code Code) (*ShortURL, error)
	ExistsActiveByCode(ctx context.Context, code Code) (bool, error)

	// FindByID returns an entry regardless of its state.
	FindByID(ctx context.Context, id string) (*ShortURL, error)

	// Save inserts a new entry (empty ID) or updates an existing one.
	// It returns ErrAlreadyExists when another ACTIVE entry holds the code.
	Save(ctx context.Context, shortURL *ShortURL) error

	ListActiveByOwner(ctx context.Context, owner string, req PageRequest) (Page[ShortURL], error)
	ListActive(ctx context.Context, req PageRequest) (Page[ShortURL], error)
}

// Cache is a TTL-bounded code -> original URL accelerator in front of the Repository.
type Cache interface {
	// Get returns ErrCacheMiss when the code is not cached.
	Get(ctx context.Context, code Code) (string, error)
	Set(ctx context.Context, code Code, originalURL string, ttl time.Duration) error
	Delete(ctx context.Context, code Code) error
}
