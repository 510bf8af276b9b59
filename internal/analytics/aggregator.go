package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/serroba/shortlink/internal/shortener"
)

// MaxTopCount caps the size of the TopClicked ranking.
const MaxTopCount = 100

// TopScope selects which entries TopClicked ranks.
type TopScope string

const (
	// TopActiveOnly ranks ACTIVE entries only.
	TopActiveOnly TopScope = "active"
	// TopAllEntries also ranks soft-deleted entries.
	TopAllEntries TopScope = "all"
)

// ParseTopScope maps a configuration value to a TopScope, defaulting to TopActiveOnly.
func ParseTopScope(raw string) TopScope {
	if strings.EqualFold(strings.TrimSpace(raw), string(TopAllEntries)) {
		return TopAllEntries
	}

	return TopActiveOnly
}

// Authorizer resolves a code to the owner's active entry.
type Authorizer interface {
	Authorize(ctx context.Context, code shortener.Code, owner string) (*shortener.ShortURL, error)
}

// ClickQuery selects a page of click events of one owned entry.
// Start and End accept "yyyy-MM-dd HH:mm:ss" or "yyyy-MM-dd"; a date-only End covers that whole day.
type ClickQuery struct {
	Code            shortener.Code
	Owner           string
	Start           string
	End             string
	Browser         string
	OperatingSystem string
	DeviceType      string
	SortBy          string
	Direction       string
	Page            shortener.PageRequest
}

// Aggregator answers ownership-scoped questions about recorded clicks.
type Aggregator struct {
	authorizer Authorizer
	clicks     Store
	now        func() time.Time
	location   *time.Location
	topScope   TopScope
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithAggregatorClock overrides the time source for the default end bound.
func WithAggregatorClock(now func() time.Time) AggregatorOption {
	return func(a *Aggregator) { a.now = now }
}

// WithAggregatorLocation sets the zone of calendar dates and date bounds.
func WithAggregatorLocation(loc *time.Location) AggregatorOption {
	return func(a *Aggregator) {
		if loc != nil {
			a.location = loc
		}
	}
}

// WithTopScope sets which entries TopClicked ranks.
func WithTopScope(scope TopScope) AggregatorOption {
	return func(a *Aggregator) { a.topScope = scope }
}

// NewAggregator creates a new aggregator.
func NewAggregator(authorizer Authorizer, clicks Store, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		authorizer: authorizer,
		clicks:     clicks,
		now:        time.Now,
		location:   time.UTC,
		topScope:   TopActiveOnly,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// ClickCount returns the total clicks of the owner's active entry.
func (a *Aggregator) ClickCount(ctx context.Context, code shortener.Code, owner string) (int64, error) {
	entry, err := a.authorizer.Authorize(ctx, code, owner)
	if err != nil {
		return 0, err
	}

	count, err := a.clicks.CountClicks(ctx, entry.ID)
	if err != nil {
		return 0, fmt.Errorf("count clicks: %w", err)
	}

	return count, nil
}

// FilteredEvents returns a page of the entry's click events matching q.
// Start defaults to the Unix epoch and End to now.
func (a *Aggregator) FilteredEvents(ctx context.Context, q ClickQuery) (shortener.Page[ClickEvent], error) {
	var empty shortener.Page[ClickEvent]

	entry, err := a.authorizer.Authorize(ctx, q.Code, q.Owner)
	if err != nil {
		return empty, err
	}

	from := time.Unix(0, 0).In(a.location)
	if strings.TrimSpace(q.Start) != "" {
		if from, err = a.parseBound(q.Start, false); err != nil {
			return empty, err
		}
	}

	to := a.now()
	if strings.TrimSpace(q.End) != "" {
		if to, err = a.parseBound(q.End, true); err != nil {
			return empty, err
		}
	}

	sortBy, err := ParseSortField(q.SortBy)
	if err != nil {
		return empty, err
	}

	page, err := a.clicks.FindClicks(ctx, ClickFilter{
		ShortURLID:      entry.ID,
		From:            from,
		To:              to,
		Browser:         strings.TrimSpace(q.Browser),
		OperatingSystem: strings.TrimSpace(q.OperatingSystem),
		DeviceType:      strings.TrimSpace(q.DeviceType),
		SortBy:          sortBy,
		Order:           ParseSortOrder(q.Direction),
		Page:            q.Page.Normalize(),
	})
	if err != nil {
		return empty, fmt.Errorf("find clicks: %w", err)
	}

	return page, nil
}

// DailyStats returns click counts per calendar date, newest first.
func (a *Aggregator) DailyStats(ctx context.Context, code shortener.Code, owner string) ([]DayCount, error) {
	entry, err := a.authorizer.Authorize(ctx, code, owner)
	if err != nil {
		return nil, err
	}

	days, err := a.clicks.CountByDay(ctx, entry.ID, time.Time{}, time.Time{}, a.location, SortDesc)
	if err != nil {
		return nil, fmt.Errorf("count clicks by day: %w", err)
	}

	return days, nil
}

// RangeStats returns click counts per date for the inclusive "yyyy-MM-dd" range, oldest first.
func (a *Aggregator) RangeStats(
	ctx context.Context,
	code shortener.Code,
	owner, start, end string,
) ([]DayCount, error) {
	entry, err := a.authorizer.Authorize(ctx, code, owner)
	if err != nil {
		return nil, err
	}

	from, err := shortener.ParseDate(start, a.location)
	if err != nil {
		return nil, err
	}

	to, err := shortener.ParseDate(end, a.location)
	if err != nil {
		return nil, err
	}

	if from.After(to) {
		return nil, fmt.Errorf("%w: start %s is after end %s", shortener.ErrInvalidRequest, start, end)
	}

	days, err := a.clicks.CountByDay(ctx, entry.ID, from, shortener.EndOfDay(to), a.location, SortAsc)
	if err != nil {
		return nil, fmt.Errorf("count clicks by day: %w", err)
	}

	return days, nil
}

// TopClicked ranks entries by total clicks. It is not scoped to an owner.
func (a *Aggregator) TopClicked(ctx context.Context, count int) ([]CodeCount, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: count must be positive", shortener.ErrInvalidRequest)
	}

	count = min(count, MaxTopCount)

	top, err := a.clicks.TopEntries(ctx, count, a.topScope != TopAllEntries)
	if err != nil {
		return nil, fmt.Errorf("rank entries: %w", err)
	}

	return top, nil
}

func (a *Aggregator) parseBound(raw string, end bool) (time.Time, error) {
	if t, err := shortener.ParseDateTime(raw, a.location); err == nil {
		return t, nil
	}

	day, err := shortener.ParseDate(raw, a.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q, use yyyy-MM-dd HH:mm:ss or yyyy-MM-dd",
			shortener.ErrInvalidDateFormat, raw)
	}

	if end {
		return shortener.EndOfDay(day), nil
	}

	return day, nil
}
