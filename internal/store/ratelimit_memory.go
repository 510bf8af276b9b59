package store

import (
	"context"
	"sync"
	"time"
)

// sweepInterval is the number of Record calls between sweeps of idle keys.
const sweepInterval = 1024

type slidingWindow struct {
	hits   []time.Time
	length time.Duration
}

// prune drops hits at or before cutoff. hits are kept in arrival order.
func (w *slidingWindow) prune(cutoff time.Time) {
	i := 0
	for i < len(w.hits) && !w.hits[i].After(cutoff) {
		i++
	}

	w.hits = w.hits[i:]
}

// RateLimitMemoryStore is an in-memory sliding window implementation of ratelimit.Store.
// Keys idle for longer than their window are evicted periodically.
type RateLimitMemoryStore struct {
	mu      sync.Mutex
	windows map[string]*slidingWindow
	records int
}

// NewRateLimitMemoryStore creates a new in-memory rate limit store.
func NewRateLimitMemoryStore() *RateLimitMemoryStore {
	return &RateLimitMemoryStore{
		windows: make(map[string]*slidingWindow),
	}
}

func (s *RateLimitMemoryStore) Record(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	w, ok := s.windows[key]
	if !ok {
		w = &slidingWindow{}
		s.windows[key] = w
	}

	w.length = window
	w.prune(now.Add(-window))
	w.hits = append(w.hits, now)

	s.records++
	if s.records%sweepInterval == 0 {
		s.sweep(now)
	}

	return int64(len(w.hits)), nil
}

// Keys returns the number of tracked keys.
func (s *RateLimitMemoryStore) Keys() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.windows)
}

func (s *RateLimitMemoryStore) sweep(now time.Time) {
	for key, w := range s.windows {
		w.prune(now.Add(-w.length))

		if len(w.hits) == 0 {
			delete(s.windows, key)
		}
	}
}
