package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/serroba/shortlink/internal/analytics"
	"github.com/serroba/shortlink/internal/shortener"
)

// EntryLookup resolves entries by ID regardless of state.
type EntryLookup interface {
	FindByID(ctx context.Context, id string) (*shortener.ShortURL, error)
}

// MemoryClickStore is an in-memory implementation of analytics.Store.
type MemoryClickStore struct {
	mu      sync.RWMutex
	clicks  []analytics.ClickEvent
	entries EntryLookup
}

// NewMemoryClickStore creates a new in-memory click store. entries backs the ACTIVE filter of TopEntries.
func NewMemoryClickStore(entries EntryLookup) *MemoryClickStore {
	return &MemoryClickStore{entries: entries}
}

func (m *MemoryClickStore) SaveClick(_ context.Context, click *analytics.ClickEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clicks = append(m.clicks, *click)

	return nil
}

func (m *MemoryClickStore) CountClicks(_ context.Context, shortURLID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64

	for _, click := range m.clicks {
		if click.ShortURLID == shortURLID {
			count++
		}
	}

	return count, nil
}

func (m *MemoryClickStore) FindClicks(
	_ context.Context,
	filter analytics.ClickFilter,
) (shortener.Page[analytics.ClickEvent], error) {
	m.mu.RLock()

	matched := make([]analytics.ClickEvent, 0)
	for _, click := range m.clicks {
		if filter.Matches(click) {
			matched = append(matched, click)
		}
	}

	m.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return clickLess(matched[i], matched[j], filter.SortBy, filter.Order)
	})

	return paginate(matched, filter.Page), nil
}

func (m *MemoryClickStore) CountByDay(
	_ context.Context,
	shortURLID string,
	from, to time.Time,
	loc *time.Location,
	order analytics.SortOrder,
) ([]analytics.DayCount, error) {
	filter := analytics.ClickFilter{ShortURLID: shortURLID, From: from, To: to}
	counts := make(map[string]int64)

	m.mu.RLock()

	for _, click := range m.clicks {
		if filter.Matches(click) {
			counts[click.ClickedAt.In(loc).Format(shortener.DateLayout)]++
		}
	}

	m.mu.RUnlock()

	days := make([]analytics.DayCount, 0, len(counts))
	for date, count := range counts {
		days = append(days, analytics.DayCount{Date: date, Count: count})
	}

	sort.Slice(days, func(i, j int) bool {
		if order == analytics.SortAsc {
			return days[i].Date < days[j].Date
		}

		return days[i].Date > days[j].Date
	})

	return days, nil
}

func (m *MemoryClickStore) TopEntries(ctx context.Context, limit int, activeOnly bool) ([]analytics.CodeCount, error) {
	counts := make(map[string]int64)

	m.mu.RLock()

	for _, click := range m.clicks {
		counts[click.ShortURLID]++
	}

	m.mu.RUnlock()

	top := make([]analytics.CodeCount, 0, len(counts))

	for id, count := range counts {
		entry, err := m.entries.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, shortener.ErrNotFound) {
				continue
			}

			return nil, err
		}

		if activeOnly && !entry.IsActive() {
			continue
		}

		top = append(top, analytics.CodeCount{ShortURLID: id, Code: entry.Code, Count: count})
	}

	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}

		if top[i].Code != top[j].Code {
			return top[i].Code < top[j].Code
		}

		return top[i].ShortURLID < top[j].ShortURLID
	})

	if len(top) > limit {
		top = top[:limit]
	}

	return top, nil
}

// clickLess orders by field in the requested direction; ties fall back to newest first, then ID.
func clickLess(a, b analytics.ClickEvent, field analytics.SortField, order analytics.SortOrder) bool {
	if field == analytics.SortClickedAt {
		if !a.ClickedAt.Equal(b.ClickedAt) {
			if order == analytics.SortAsc {
				return a.ClickedAt.Before(b.ClickedAt)
			}

			return a.ClickedAt.After(b.ClickedAt)
		}

		return a.ID < b.ID
	}

	if va, vb := analytics.SortValue(a, field), analytics.SortValue(b, field); va != vb {
		if order == analytics.SortAsc {
			return va < vb
		}

		return va > vb
	}

	if !a.ClickedAt.Equal(b.ClickedAt) {
		return a.ClickedAt.After(b.ClickedAt)
	}

	return a.ID < b.ID
}

// Compile-time check.
var _ analytics.Store = (*MemoryClickStore)(nil)
