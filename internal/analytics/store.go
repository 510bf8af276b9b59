package analytics

import (
	"context"
	"time"

	"github.com/serroba/shortlink/internal/shortener"
)

// Store persists click events and answers aggregate queries over them.
type Store interface {
	SaveClick(ctx context.Context, click *ClickEvent) error
	CountClicks(ctx context.Context, shortURLID string) (int64, error)
	FindClicks(ctx context.Context, filter ClickFilter) (shortener.Page[ClickEvent], error)

	// CountByDay groups clicks of an entry by calendar date in loc.
	// Zero from or to leaves that side unbounded. Days without clicks are omitted.
	CountByDay(
		ctx context.Context,
		shortURLID string,
		from, to time.Time,
		loc *time.Location,
		order SortOrder,
	) ([]DayCount, error)

	// TopEntries returns up to limit entries with the most clicks, ties broken by code.
	TopEntries(ctx context.Context, limit int, activeOnly bool) ([]CodeCount, error)
}
