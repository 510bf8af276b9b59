package handlers

import (
	"context"
	"time"

	"github.com/serroba/shortlink/internal/analytics"
	"github.com/serroba/shortlink/internal/auth"
	"github.com/serroba/shortlink/internal/shortener"
	"go.uber.org/zap"
)

// AnalyticsHandler serves click statistics. Every route except the admin ranking is scoped to the owner.
type AnalyticsHandler struct {
	aggregator *analytics.Aggregator
	location   *time.Location
	logger     *zap.Logger
}

// NewAnalyticsHandler creates a new analytics handler. loc formats click timestamps.
func NewAnalyticsHandler(aggregator *analytics.Aggregator, loc *time.Location, logger *zap.Logger) *AnalyticsHandler {
	if loc == nil {
		loc = time.UTC
	}

	return &AnalyticsHandler{aggregator: aggregator, location: loc, logger: logger}
}

func (h *AnalyticsHandler) ClickCount(ctx context.Context, req *CodeRequest) (*ClickCountResponse, error) {
	principal, err := auth.Require(ctx)
	if err != nil {
		return nil, toHTTPError(h.logger, "click count", err)
	}

	count, err := h.aggregator.ClickCount(ctx, shortener.Code(req.Code), principal.Email)
	if err != nil {
		return nil, toHTTPError(h.logger, "click count", err)
	}

	resp := &ClickCountResponse{}
	resp.Body.Code = req.Code
	resp.Body.Clicks = count

	return resp, nil
}

func (h *AnalyticsHandler) ClickEvents(ctx context.Context, req *ClickEventsRequest) (*ClickEventPageResponse, error) {
	principal, err := auth.Require(ctx)
	if err != nil {
		return nil, toHTTPError(h.logger, "click events", err)
	}

	page, err := h.aggregator.FilteredEvents(ctx, analytics.ClickQuery{
		Code:            shortener.Code(req.Code),
		Owner:           principal.Email,
		Start:           req.Start,
		End:             req.End,
		Browser:         req.Browser,
		OperatingSystem: req.OperatingSystem,
		DeviceType:      req.DeviceType,
		SortBy:          req.SortBy,
		Direction:       req.Direction,
		Page:            toPageRequest(req.Page, req.Size),
	})
	if err != nil {
		return nil, toHTTPError(h.logger, "click events", err)
	}

	events := shortener.MapPage(page, h.toClickBody)

	resp := &ClickEventPageResponse{}
	resp.Body.Items = events.Items
	resp.Body.Page = events.Page
	resp.Body.Size = events.Size
	resp.Body.TotalItems = events.TotalItems
	resp.Body.TotalPages = events.TotalPages

	return resp, nil
}

func (h *AnalyticsHandler) DailyStats(ctx context.Context, req *CodeRequest) (*DailyStatsResponse, error) {
	principal, err := auth.Require(ctx)
	if err != nil {
		return nil, toHTTPError(h.logger, "daily stats", err)
	}

	days, err := h.aggregator.DailyStats(ctx, shortener.Code(req.Code), principal.Email)
	if err != nil {
		return nil, toHTTPError(h.logger, "daily stats", err)
	}

	resp := &DailyStatsResponse{}
	resp.Body.Code = req.Code
	resp.Body.Days = toDayCounts(days)

	return resp, nil
}

func (h *AnalyticsHandler) RangeStats(ctx context.Context, req *RangeStatsRequest) (*DailyStatsResponse, error) {
	principal, err := auth.Require(ctx)
	if err != nil {
		return nil, toHTTPError(h.logger, "range stats", err)
	}

	days, err := h.aggregator.RangeStats(ctx, shortener.Code(req.Code), principal.Email, req.Start, req.End)
	if err != nil {
		return nil, toHTTPError(h.logger, "range stats", err)
	}

	resp := &DailyStatsResponse{}
	resp.Body.Code = req.Code
	resp.Body.Days = toDayCounts(days)

	return resp, nil
}

func (h *AnalyticsHandler) TopClicked(ctx context.Context, req *TopClickedRequest) (*TopClickedResponse, error) {
	if _, err := auth.RequireAdmin(ctx); err != nil {
		return nil, toHTTPError(h.logger, "top clicked", err)
	}

	top, err := h.aggregator.TopClicked(ctx, req.Count)
	if err != nil {
		return nil, toHTTPError(h.logger, "top clicked", err)
	}

	resp := &TopClickedResponse{}
	resp.Body.Items = make([]CodeCountBody, 0, len(top))

	for _, c := range top {
		resp.Body.Items = append(resp.Body.Items, CodeCountBody{Code: string(c.Code), Clicks: c.Count})
	}

	return resp, nil
}

func (h *AnalyticsHandler) toClickBody(c analytics.ClickEvent) ClickEventBody {
	return ClickEventBody{
		ID:              c.ID,
		Code:            string(c.Code),
		IPAddress:       c.IPAddress,
		Browser:         c.Browser,
		OperatingSystem: c.OperatingSystem,
		DeviceType:      c.DeviceType,
		Referrer:        c.Referrer,
		ClickedAt:       shortener.FormatDateTime(c.ClickedAt, h.location),
	}
}
