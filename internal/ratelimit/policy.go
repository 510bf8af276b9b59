package ratelimit

import "time"

// LimitConfig allows at most Max requests per sliding Window.
type LimitConfig struct {
	Max    int64
	Window time.Duration
}

// Policy maps each scope to the limits a client must stay under. A request is checked against
// every limit of every scope it resolves to.
type Policy struct {
	Limits map[Scope][]LimitConfig
}

// DefaultPolicy returns the limits used when no other policy is configured.
// Redirects get a generous budget of their own; writes and admin calls are the tightest.
func DefaultPolicy() *Policy {
	return &Policy{
		Limits: map[Scope][]LimitConfig{
			ScopeGlobal: {
				{Max: 100, Window: time.Second},
				{Max: 3000, Window: time.Minute},
			},
			ScopeRedirect: {
				{Max: 1200, Window: time.Minute},
			},
			ScopeRead: {
				{Max: 300, Window: time.Minute},
			},
			ScopeWrite: {
				{Max: 30, Window: time.Minute},
				{Max: 500, Window: time.Hour},
			},
			ScopeAdmin: {
				{Max: 60, Window: time.Minute},
			},
		},
	}
}
