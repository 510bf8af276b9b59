package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/serroba/shortlink/internal/analytics"
	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clickFixture struct {
	entries *store.MemoryStore
	clicks  *store.MemoryClickStore
	active  *shortener.ShortURL
	other   *shortener.ShortURL
}

func newClickFixture(t *testing.T) *clickFixture {
	t.Helper()

	ctx := context.Background()
	f := &clickFixture{entries: store.NewMemoryStore()}
	f.clicks = store.NewMemoryClickStore(f.entries)

	f.active = newEntry("active", "alice@example.com", baseTime)
	require.NoError(t, f.entries.Save(ctx, f.active))

	f.other = newEntry("other", "bob@example.com", baseTime)
	require.NoError(t, f.entries.Save(ctx, f.other))

	return f
}

func (f *clickFixture) click(t *testing.T, entry *shortener.ShortURL, at time.Time, browser, os, device string) {
	t.Helper()

	require.NoError(t, f.clicks.SaveClick(context.Background(), &analytics.ClickEvent{
		ID:              fmt.Sprintf("%s-%d", entry.Code, at.UnixNano()),
		ShortURLID:      entry.ID,
		Code:            entry.Code,
		IPAddress:       "203.0.113.7",
		Browser:         browser,
		OperatingSystem: os,
		DeviceType:      device,
		Referrer:        analytics.DirectReferrer,
		ClickedAt:       at,
	}))
}

func TestMemoryClickStore_CountClicks(t *testing.T) {
	f := newClickFixture(t)
	f.click(t, f.active, baseTime, "Chrome", "Windows", "Desktop")
	f.click(t, f.active, baseTime.Add(time.Hour), "Firefox", "Linux", "Desktop")
	f.click(t, f.other, baseTime, "Safari", "iPhone OS", "Phone")

	count, err := f.clicks.CountClicks(context.Background(), f.active.ID)

	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestMemoryClickStore_FindClicks(t *testing.T) {
	f := newClickFixture(t)
	f.click(t, f.active, baseTime, "Chrome", "Windows", "Desktop")
	f.click(t, f.active, baseTime.Add(time.Hour), "Firefox", "Linux", "Desktop")
	f.click(t, f.active, baseTime.Add(2*time.Hour), "Mobile Safari", "iPhone OS", "Phone")
	f.click(t, f.other, baseTime, "Chrome", "Windows", "Desktop")

	ctx := context.Background()

	t.Run("defaults to newest first", func(t *testing.T) {
		page, err := f.clicks.FindClicks(ctx, analytics.ClickFilter{
			ShortURLID: f.active.ID,
			SortBy:     analytics.SortClickedAt,
			Order:      analytics.SortDesc,
		})

		require.NoError(t, err)
		require.Len(t, page.Items, 3)
		assert.Equal(t, int64(3), page.TotalItems)
		assert.Equal(t, "Mobile Safari", page.Items[0].Browser)
		assert.Equal(t, "Chrome", page.Items[2].Browser)
	})

	t.Run("filters by case-insensitive substring", func(t *testing.T) {
		page, err := f.clicks.FindClicks(ctx, analytics.ClickFilter{
			ShortURLID: f.active.ID,
			Browser:    "safari",
			SortBy:     analytics.SortClickedAt,
		})

		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "Phone", page.Items[0].DeviceType)
	})

	t.Run("applies inclusive time bounds", func(t *testing.T) {
		page, err := f.clicks.FindClicks(ctx, analytics.ClickFilter{
			ShortURLID: f.active.ID,
			From:       baseTime.Add(time.Hour),
			To:         baseTime.Add(2 * time.Hour),
			SortBy:     analytics.SortClickedAt,
			Order:      analytics.SortAsc,
		})

		require.NoError(t, err)
		require.Len(t, page.Items, 2)
		assert.Equal(t, "Firefox", page.Items[0].Browser)
	})

	t.Run("sorts by another field", func(t *testing.T) {
		page, err := f.clicks.FindClicks(ctx, analytics.ClickFilter{
			ShortURLID: f.active.ID,
			SortBy:     analytics.SortOperatingSystem,
			Order:      analytics.SortAsc,
		})

		require.NoError(t, err)
		require.Len(t, page.Items, 3)
		assert.Equal(t, "Linux", page.Items[0].OperatingSystem)
		assert.Equal(t, "Windows", page.Items[1].OperatingSystem)
		assert.Equal(t, "iPhone OS", page.Items[2].OperatingSystem)
	})

	t.Run("paginates", func(t *testing.T) {
		page, err := f.clicks.FindClicks(ctx, analytics.ClickFilter{
			ShortURLID: f.active.ID,
			SortBy:     analytics.SortClickedAt,
			Page:       shortener.PageRequest{Page: 1, Size: 2},
		})

		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, 2, page.TotalPages)
	})
}

func TestMemoryClickStore_CountByDay(t *testing.T) {
	f := newClickFixture(t)
	day1 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 11, 23, 30, 0, 0, time.UTC)

	f.click(t, f.active, day1, "Chrome", "Windows", "Desktop")
	f.click(t, f.active, day1.Add(time.Hour), "Chrome", "Windows", "Desktop")
	f.click(t, f.active, day2, "Chrome", "Windows", "Desktop")

	ctx := context.Background()

	t.Run("groups by date descending", func(t *testing.T) {
		days, err := f.clicks.CountByDay(ctx, f.active.ID, time.Time{}, time.Time{}, time.UTC, analytics.SortDesc)

		require.NoError(t, err)
		assert.Equal(t, []analytics.DayCount{
			{Date: "2025-03-11", Count: 1},
			{Date: "2025-03-10", Count: 2},
		}, days)
	})

	t.Run("uses the calendar of the given location", func(t *testing.T) {
		tokyo := time.FixedZone("UTC+9", 9*60*60)

		days, err := f.clicks.CountByDay(ctx, f.active.ID, time.Time{}, time.Time{}, tokyo, analytics.SortAsc)

		require.NoError(t, err)
		assert.Equal(t, []analytics.DayCount{
			{Date: "2025-03-10", Count: 2},
			{Date: "2025-03-12", Count: 1},
		}, days)
	})

	t.Run("restricts to the range", func(t *testing.T) {
		days, err := f.clicks.CountByDay(ctx, f.active.ID, day2.Add(-time.Hour), time.Time{}, time.UTC, analytics.SortAsc)

		require.NoError(t, err)
		assert.Equal(t, []analytics.DayCount{{Date: "2025-03-11", Count: 1}}, days)
	})
}

func TestMemoryClickStore_TopEntries(t *testing.T) {
	f := newClickFixture(t)
	ctx := context.Background()

	deleted := newEntry("gone", "carol@example.com", baseTime)
	require.NoError(t, f.entries.Save(ctx, deleted))

	for i := range 3 {
		f.click(t, deleted, baseTime.Add(time.Duration(i)*time.Second), "Chrome", "Windows", "Desktop")
	}

	deleted.State = shortener.StateDeleted
	require.NoError(t, f.entries.Save(ctx, deleted))

	f.click(t, f.active, baseTime, "Chrome", "Windows", "Desktop")
	f.click(t, f.other, baseTime, "Chrome", "Windows", "Desktop")
	f.click(t, f.other, baseTime.Add(time.Second), "Chrome", "Windows", "Desktop")

	t.Run("ranks active entries only", func(t *testing.T) {
		top, err := f.clicks.TopEntries(ctx, 10, true)

		require.NoError(t, err)
		require.Len(t, top, 2)
		assert.Equal(t, shortener.Code("other"), top[0].Code)
		assert.Equal(t, int64(2), top[0].Count)
		assert.Equal(t, shortener.Code("active"), top[1].Code)
	})

	t.Run("includes deleted entries when asked", func(t *testing.T) {
		top, err := f.clicks.TopEntries(ctx, 1, false)

		require.NoError(t, err)
		require.Len(t, top, 1)
		assert.Equal(t, shortener.Code("gone"), top[0].Code)
		assert.Equal(t, int64(3), top[0].Count)
	})
}
