package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/ratelimit"
)

// RegisterRoutes registers the link and analytics routes with their rate limit scopes.
// Static segments take precedence over "/{code}" in the router, so "/shorten/..." and
// "/analytics/..." never reach the redirect.
func RegisterRoutes(api huma.API, urls *URLHandler, stats *AnalyticsHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-short-url",
		Method:        http.MethodPost,
		Path:          "/shorten",
		Summary:       "Create short URL",
		Description:   "Creates a short URL owned by the caller, with an optional custom alias and expiry.",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusCreated,
	}, urls.CreateShortURL)

	huma.Register(api, huma.Operation{
		OperationID: "redirect",
		Method:      http.MethodGet,
		Path:        "/{code}",
		Summary:     "Redirect to original URL",
		Description: "Redirects to the original URL of an active, unexpired code and records the click.",
		Tags:        []string{"URLs"},
		Metadata:    ratelimit.Metadata(ratelimit.EndpointConfig{Scope: ratelimit.ScopeRedirect}),
	}, urls.RedirectToURL)

	huma.Register(api, huma.Operation{
		OperationID: "list-my-urls",
		Method:      http.MethodGet,
		Path:        "/shorten/my",
		Summary:     "List my short URLs",
		Tags:        []string{"URLs"},
	}, urls.ListMyURLs)

	huma.Register(api, huma.Operation{
		OperationID: "get-short-url",
		Method:      http.MethodGet,
		Path:        "/shorten/{code}",
		Summary:     "Get one of my short URLs",
		Tags:        []string{"URLs"},
	}, urls.GetShortURL)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-short-url",
		Method:        http.MethodDelete,
		Path:          "/shorten/{code}",
		Summary:       "Delete one of my short URLs",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusNoContent,
	}, urls.DeleteShortURL)

	huma.Register(api, huma.Operation{
		OperationID: "admin-list-urls",
		Method:      http.MethodGet,
		Path:        "/shorten/admin/urls",
		Summary:     "List all short URLs",
		Tags:        []string{"Admin"},
		Metadata:    adminScope(),
	}, urls.ListAllURLs)

	huma.Register(api, huma.Operation{
		OperationID:   "admin-delete-short-url",
		Method:        http.MethodDelete,
		Path:          "/shorten/admin/{code}",
		Summary:       "Delete any short URL",
		Tags:          []string{"Admin"},
		DefaultStatus: http.StatusNoContent,
		Metadata:      adminScope(),
	}, urls.AdminDeleteShortURL)

	huma.Register(api, huma.Operation{
		OperationID: "click-count",
		Method:      http.MethodGet,
		Path:        "/analytics/{code}/click-count",
		Summary:     "Total clicks",
		Tags:        []string{"Analytics"},
	}, stats.ClickCount)

	huma.Register(api, huma.Operation{
		OperationID: "click-events",
		Method:      http.MethodGet,
		Path:        "/analytics/{code}/click-events",
		Summary:     "Filtered click events",
		Tags:        []string{"Analytics"},
	}, stats.ClickEvents)

	huma.Register(api, huma.Operation{
		OperationID: "click-events-daily",
		Method:      http.MethodGet,
		Path:        "/analytics/{code}/click-events/daily",
		Summary:     "Clicks per day",
		Tags:        []string{"Analytics"},
	}, stats.DailyStats)

	huma.Register(api, huma.Operation{
		OperationID: "click-events-range",
		Method:      http.MethodGet,
		Path:        "/analytics/{code}/click-events/range",
		Summary:     "Clicks per day in a date range",
		Tags:        []string{"Analytics"},
	}, stats.RangeStats)

	huma.Register(api, huma.Operation{
		OperationID: "admin-top-clicked",
		Method:      http.MethodGet,
		Path:        "/analytics/admin/top-clicked",
		Summary:     "Most clicked short URLs",
		Tags:        []string{"Admin"},
		Metadata:    adminScope(),
	}, stats.TopClicked)
}

func adminScope() map[string]any {
	return ratelimit.Metadata(ratelimit.EndpointConfig{Scope: ratelimit.ScopeAdmin})
}
