package analytics

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/serroba/shortlink/internal/shortener"
)

const (
	// DirectReferrer is recorded when a click carries no referrer.
	DirectReferrer = "Direct"
	// Unknown labels a user-agent attribute the classifier could not determine.
	Unknown = "Unknown"
)

// Column widths of click_events; longer values are clipped before saving.
const (
	MaxIPAddressLength = 64
	MaxLabelLength     = 128
	MaxDeviceLength    = 32
	MaxReferrerLength  = 2048
)

// ClickEvent is one recorded resolution of a short code. Click events are append-only.
type ClickEvent struct {
	ID              string
	ShortURLID      string
	Code            shortener.Code
	IPAddress       string
	Browser         string
	OperatingSystem string
	DeviceType      string
	Referrer        string
	ClickedAt       time.Time
}

// clip shortens s to at most n characters.
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	return string([]rune(s)[:n])
}

// DayCount is the number of clicks on one calendar date, formatted "yyyy-MM-dd".
type DayCount struct {
	Date  string
	Count int64
}

// CodeCount is the click total of one entry.
type CodeCount struct {
	ShortURLID string
	Code       shortener.Code
	Count      int64
}

// SortField names a sortable click attribute.
type SortField string

const (
	SortClickedAt       SortField = "clickedAt"
	SortBrowser         SortField = "browser"
	SortOperatingSystem SortField = "operatingSystem"
	SortDeviceType      SortField = "deviceType"
	SortReferrer        SortField = "referrer"
	SortIPAddress       SortField = "ipAddress"
)

// ParseSortField maps a request value to a SortField. Empty means SortClickedAt.
func ParseSortField(raw string) (SortField, error) {
	switch field := SortField(strings.TrimSpace(raw)); field {
	case "":
		return SortClickedAt, nil
	case SortClickedAt, SortBrowser, SortOperatingSystem, SortDeviceType, SortReferrer, SortIPAddress:
		return field, nil
	default:
		return "", fmt.Errorf("%w: unknown sort field %q", shortener.ErrInvalidRequest, raw)
	}
}

// SortOrder is ascending or descending.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder returns SortAsc for "asc" in any case and SortDesc otherwise.
func ParseSortOrder(raw string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(raw), string(SortAsc)) {
		return SortAsc
	}

	return SortDesc
}

// ClickFilter selects click events of one entry.
// From and To are inclusive; a zero value leaves that side unbounded.
// Browser, OperatingSystem and DeviceType are case-insensitive substring matches.
type ClickFilter struct {
	ShortURLID      string
	From            time.Time
	To              time.Time
	Browser         string
	OperatingSystem string
	DeviceType      string
	SortBy          SortField
	Order           SortOrder
	Page            shortener.PageRequest
}

// Matches reports whether the event satisfies every criterion of the filter.
func (f ClickFilter) Matches(e ClickEvent) bool {
	if e.ShortURLID != f.ShortURLID {
		return false
	}

	if !f.From.IsZero() && e.ClickedAt.Before(f.From) {
		return false
	}

	if !f.To.IsZero() && e.ClickedAt.After(f.To) {
		return false
	}

	return containsFold(e.Browser, f.Browser) &&
		containsFold(e.OperatingSystem, f.OperatingSystem) &&
		containsFold(e.DeviceType, f.DeviceType)
}

// SortValue returns the attribute of e named by field, for ordering.
func SortValue(e ClickEvent, field SortField) string {
	switch field {
	case SortBrowser:
		return e.Browser
	case SortOperatingSystem:
		return e.OperatingSystem
	case SortDeviceType:
		return e.DeviceType
	case SortReferrer:
		return e.Referrer
	case SortIPAddress:
		return e.IPAddress
	default:
		return ""
	}
}

func containsFold(value, substr string) bool {
	if substr == "" {
		return true
	}

	return strings.Contains(strings.ToLower(value), strings.ToLower(substr))
}
