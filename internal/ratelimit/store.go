package ratelimit

import (
	"context"
	"time"
)

// Store counts requests per key over a sliding window.
type Store interface {
	// Record adds one request to key and returns how many fall inside the trailing window, itself included.
	Record(ctx context.Context, key string, window time.Duration) (count int64, err error)
}
