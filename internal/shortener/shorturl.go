package shortener

import "time"

// Code represents a short URL code.
type Code string

// State is the lifecycle state of a short URL entry.
type State string

const (
	StateActive  State = "ACTIVE"
	StateDeleted State = "DELETED"
)

// ShortURL represents a shortened URL entry.
type ShortURL struct {
	ID          string
	Code        Code
	OriginalURL string
	State       State
	ExpiresAt   time.Time
	CreatedBy   string
	CreatedAt   time.Time
}

// IsActive reports whether the entry is visible to lookups.
func (s *ShortURL) IsActive() bool {
	return s.State == StateActive
}

// ExpiredAt reports whether the entry is past its expiration at the given instant.
func (s *ShortURL) ExpiredAt(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && s.ExpiresAt.Before(now)
}

// OwnedBy reports whether the given identity created the entry.
func (s *ShortURL) OwnedBy(owner string) bool {
	return s.CreatedBy == owner
}

// TTL returns the cache lifetime for the entry in whole seconds.
// The result is truncated so a cache entry never outlives ExpiresAt;
// zero means the entry must not be cached.
func (s *ShortURL) TTL(now time.Time) time.Duration {
	remaining := s.ExpiresAt.Sub(now).Truncate(time.Second)
	if remaining < time.Second {
		return 0
	}

	return remaining
}
