package handlers

import (
	"github.com/serroba/shortlink/internal/analytics"
	"github.com/serroba/shortlink/internal/shortener"
)

// CreateShortURLRequest is the request body for creating a short URL.
type CreateShortURLRequest struct {
	Body struct {
		URL       string `doc:"The URL to shorten"                                  example:"https://example.com/very/long/path" json:"url"`
		Alias     string `doc:"Custom code; letters, digits, '-' and '_'"           example:"spring-sale"                        json:"alias,omitempty"`
		ExpiresAt string `doc:"Expiry as yyyy-MM-dd HH:mm:ss; defaults to 15 days" example:"2025-12-31 23:59:59"                json:"expiresAt,omitempty"`
	}
}

// ShortURLBody describes one short URL.
type ShortURLBody struct {
	Code        string `doc:"The short code"     example:"abc123"                             json:"code"`
	ShortURL    string `doc:"The full short URL" example:"http://localhost:8888/abc123"       json:"shortUrl"`
	OriginalURL string `doc:"The original URL"   example:"https://example.com/very/long/path" json:"originalUrl"`
	CreatedBy   string `doc:"Owner identity"     example:"alice@example.com"                  json:"createdBy"`
	CreatedAt   string `doc:"Creation time"      example:"2025-03-10 12:00:00"                json:"createdAt"`
	ExpiresAt   string `doc:"Expiry time"        example:"2025-03-25 12:00:00"                json:"expiresAt"`
}

// CreateShortURLResponse is the response for a successfully created short URL.
type CreateShortURLResponse struct {
	Location string `doc:"The short URL location" header:"Location"`
	Body     ShortURLBody
}

// CodeRequest addresses a short URL by code.
type CodeRequest struct {
	Code string `doc:"The short code" example:"abc123" path:"code"`
}

// RedirectResponse sends the client to the original URL.
type RedirectResponse struct {
	Status   int
	Location string `header:"Location"`
}

// ShortURLResponse wraps a single short URL.
type ShortURLResponse struct {
	Body ShortURLBody
}

// PageRequest selects a page of a listing.
type PageRequest struct {
	Page int `default:"0"  doc:"Zero-based page number" maximum:"1000000" minimum:"0" query:"page"`
	Size int `default:"10" doc:"Items per page"         maximum:"100" minimum:"1" query:"size"`
}

// ShortURLPageBody is a page of short URLs.
type ShortURLPageBody struct {
	Items      []ShortURLBody `json:"items"`
	Page       int            `json:"page"`
	Size       int            `json:"size"`
	TotalItems int64          `json:"totalItems"`
	TotalPages int            `json:"totalPages"`
}

// ShortURLPageResponse wraps a page of short URLs.
type ShortURLPageResponse struct {
	Body ShortURLPageBody
}

// ClickCountResponse is the total clicks of a code.
type ClickCountResponse struct {
	Body struct {
		Code   string `example:"abc123" json:"code"`
		Clicks int64  `example:"42"     json:"clicks"`
	}
}

// ClickEventsRequest filters and pages the click events of a code.
type ClickEventsRequest struct {
	Code            string `doc:"The short code"                                   path:"code"`
	Start           string `doc:"Lower bound, yyyy-MM-dd HH:mm:ss or yyyy-MM-dd"    query:"start"`
	End             string `doc:"Upper bound; a date covers the whole day"          query:"end"`
	Browser         string `doc:"Case-insensitive substring of the browser"         query:"browser"`
	OperatingSystem string `doc:"Case-insensitive substring of the operating system" query:"os"`
	DeviceType      string `doc:"Case-insensitive substring of the device type"     query:"deviceType"`
	SortBy          string `default:"clickedAt" doc:"Sort field"                    query:"sortBy"`
	Direction       string `default:"desc"      doc:"asc or desc"                   query:"direction"`
	Page            int    `default:"0"         maximum:"1000000" minimum:"0"        query:"page"`
	Size            int    `default:"10"        maximum:"100" minimum:"1"           query:"size"`
}

// ClickEventBody describes one recorded click.
type ClickEventBody struct {
	ID              string `json:"id"`
	Code            string `json:"code"`
	IPAddress       string `json:"ipAddress"`
	Browser         string `json:"browser"`
	OperatingSystem string `json:"operatingSystem"`
	DeviceType      string `json:"deviceType"`
	Referrer        string `json:"referrer"`
	ClickedAt       string `example:"2025-03-10 12:00:00" json:"clickedAt"`
}

// ClickEventPageResponse wraps a page of click events.
type ClickEventPageResponse struct {
	Body struct {
		Items      []ClickEventBody `json:"items"`
		Page       int              `json:"page"`
		Size       int              `json:"size"`
		TotalItems int64            `json:"totalItems"`
		TotalPages int              `json:"totalPages"`
	}
}

// DayCountBody is the click count of one date.
type DayCountBody struct {
	Date   string `example:"2025-03-10" json:"date"`
	Clicks int64  `example:"7"          json:"clicks"`
}

// DailyStatsResponse lists clicks per date.
type DailyStatsResponse struct {
	Body struct {
		Code string         `json:"code"`
		Days []DayCountBody `json:"days"`
	}
}

// RangeStatsRequest selects an inclusive date range.
type RangeStatsRequest struct {
	Code  string `doc:"The short code"       path:"code"`
	Start string `doc:"First day, yyyy-MM-dd" example:"2025-03-01" query:"start"`
	End   string `doc:"Last day, yyyy-MM-dd"  example:"2025-03-31" query:"end"`
}

// TopClickedRequest sets the ranking size.
type TopClickedRequest struct {
	Count int `default:"10" doc:"Number of entries, at most 100" query:"count"`
}

// TopClickedResponse ranks codes by clicks.
type TopClickedResponse struct {
	Body struct {
		Items []CodeCountBody `json:"items"`
	}
}

// CodeCountBody is the click total of one code.
type CodeCountBody struct {
	Code   string `example:"abc123" json:"code"`
	Clicks int64  `example:"42"     json:"clicks"`
}

func toDayCounts(days []analytics.DayCount) []DayCountBody {
	out := make([]DayCountBody, 0, len(days))
	for _, d := range days {
		out = append(out, DayCountBody{Date: d.Date, Clicks: d.Count})
	}

	return out
}

func toPageRequest(page, size int) shortener.PageRequest {
	return shortener.PageRequest{Page: page, Size: size}
}
