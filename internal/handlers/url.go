package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/serroba/shortlink/internal/analytics"
	"github.com/serroba/shortlink/internal/auth"
	"github.com/serroba/shortlink/internal/messaging"
	"github.com/serroba/shortlink/internal/middleware"
	"github.com/serroba/shortlink/internal/shortener"
	"go.uber.org/zap"
)

// Publishers groups the typed publish functions of the link lifecycle events.
type Publishers struct {
	URLCreated  messaging.Publish[analytics.URLCreatedEvent]
	URLAccessed messaging.Publish[analytics.URLAccessedEvent]
	URLDeleted  messaging.Publish[analytics.URLDeletedEvent]
}

// URLHandler handles URL shortening, redirects and link management.
type URLHandler struct {
	resolver *shortener.Resolver
	baseURL  string
	publish  Publishers
	logger   *zap.Logger
	now      func() time.Time
}

// NewURLHandler creates a new URL handler.
func NewURLHandler(
	resolver *shortener.Resolver,
	baseURL string,
	publish Publishers,
	logger *zap.Logger,
) *URLHandler {
	return &URLHandler{
		resolver: resolver,
		baseURL:  strings.TrimRight(baseURL, "/"),
		publish:  publish,
		logger:   logger,
		now:      time.Now,
	}
}

func (h *URLHandler) CreateShortURL(ctx context.Context, req *CreateShortURLRequest) (*CreateShortURLResponse, error) {
	principal, err := auth.Require(ctx)
	if err != nil {
		return nil, toHTTPError(h.logger, "create", err)
	}

	shortURL, err := h.resolver.Create(ctx, shortener.CreateParams{
		OriginalURL: req.Body.URL,
		Alias:       req.Body.Alias,
		ExpiresAt:   req.Body.ExpiresAt,
		Owner:       principal.Email,
	})
	if err != nil {
		return nil, toHTTPError(h.logger, "create", err)
	}

	emit(ctx, h.logger, analytics.TopicURLCreated, shortURL.Code, h.publish.URLCreated,
		&analytics.URLCreatedEvent{
			Code:        string(shortURL.Code),
			OriginalURL: shortURL.OriginalURL,
			CreatedBy:   shortURL.CreatedBy,
			ExpiresAt:   shortURL.ExpiresAt,
			CreatedAt:   shortURL.CreatedAt,
		})

	body := h.toBody(shortURL)

	return &CreateShortURLResponse{Location: body.ShortURL, Body: body}, nil
}

// RedirectToURL resolves a code and publishes the click. A failed publish never blocks the redirect.
func (h *URLHandler) RedirectToURL(ctx context.Context, req *CodeRequest) (*RedirectResponse, error) {
	originalURL, err := h.resolver.Resolve(ctx, shortener.Code(req.Code))
	if err != nil {
		return nil, toHTTPError(h.logger, "redirect", err)
	}

	meta := middleware.RequestMetaFrom(ctx)

	emit(ctx, h.logger, analytics.TopicURLAccessed, shortener.Code(req.Code), h.publish.URLAccessed,
		&analytics.URLAccessedEvent{
			Code:       req.Code,
			IPAddress:  meta.ClientIP,
			UserAgent:  meta.UserAgent,
			Referrer:   meta.Referrer,
			AccessedAt: h.now(),
		})

	return &RedirectResponse{Status: http.StatusFound, Location: originalURL}, nil
}

func (h *URLHandler) GetShortURL(ctx context.Context, req *CodeRequest) (*ShortURLResponse, error) {
	principal, err := auth.Require(ctx)
	if err != nil {
		return nil, toHTTPError(h.logger, "get", err)
	}

	shortURL, err := h.resolver.GetForOwner(ctx, shortener.Code(req.Code), principal.Email)
	if err != nil {
		return nil, toHTTPError(h.logger, "get", err)
	}

	return &ShortURLResponse{Body: h.toBody(shortURL)}, nil
}

func (h *URLHandler) ListMyURLs(ctx context.Context, req *PageRequest) (*ShortURLPageResponse, error) {
	principal, err := auth.Require(ctx)
	if err != nil {
		return nil, toHTTPError(h.logger, "list", err)
	}

	page, err := h.resolver.ListForOwner(ctx, principal.Email, toPageRequest(req.Page, req.Size))
	if err != nil {
		return nil, toHTTPError(h.logger, "list", err)
	}

	return h.toPageResponse(page), nil
}

func (h *URLHandler) ListAllURLs(ctx context.Context, req *PageRequest) (*ShortURLPageResponse, error) {
	if _, err := auth.RequireAdmin(ctx); err != nil {
		return nil, toHTTPError(h.logger, "admin list", err)
	}

	page, err := h.resolver.ListAll(ctx, toPageRequest(req.Page, req.Size))
	if err != nil {
		return nil, toHTTPError(h.logger, "admin list", err)
	}

	return h.toPageResponse(page), nil
}

func (h *URLHandler) DeleteShortURL(ctx context.Context, req *CodeRequest) (*struct{}, error) {
	principal, err := auth.Require(ctx)
	if err != nil {
		return nil, toHTTPError(h.logger, "delete", err)
	}

	if err = h.resolver.Delete(ctx, shortener.Code(req.Code), principal.Email); err != nil {
		return nil, toHTTPError(h.logger, "delete", err)
	}

	h.emitDeleted(ctx, req.Code, principal.Email, false)

	return nil, nil
}

func (h *URLHandler) AdminDeleteShortURL(ctx context.Context, req *CodeRequest) (*struct{}, error) {
	principal, err := auth.RequireAdmin(ctx)
	if err != nil {
		return nil, toHTTPError(h.logger, "admin delete", err)
	}

	if err = h.resolver.DeleteAsAdmin(ctx, shortener.Code(req.Code), principal.Email); err != nil {
		return nil, toHTTPError(h.logger, "admin delete", err)
	}

	h.emitDeleted(ctx, req.Code, principal.Email, true)

	return nil, nil
}

func (h *URLHandler) emitDeleted(ctx context.Context, code, by string, asAdmin bool) {
	emit(ctx, h.logger, analytics.TopicURLDeleted, shortener.Code(code), h.publish.URLDeleted,
		&analytics.URLDeletedEvent{
			Code:      code,
			DeletedBy: by,
			AsAdmin:   asAdmin,
			DeletedAt: h.now(),
		})
}

// emit publishes event and logs failures. A nil publish function disables the topic.
func emit[T any](
	ctx context.Context,
	logger *zap.Logger,
	topic string,
	code shortener.Code,
	publish messaging.Publish[T],
	event *T,
) {
	if publish == nil {
		return
	}

	if err := publish(ctx, event); err != nil {
		logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("code", string(code)),
			zap.Error(err),
		)
	}
}

func (h *URLHandler) toBody(s *shortener.ShortURL) ShortURLBody {
	loc := h.resolver.Location()

	return ShortURLBody{
		Code:        string(s.Code),
		ShortURL:    fmt.Sprintf("%s/%s", h.baseURL, s.Code),
		OriginalURL: s.OriginalURL,
		CreatedBy:   s.CreatedBy,
		CreatedAt:   shortener.FormatDateTime(s.CreatedAt, loc),
		ExpiresAt:   shortener.FormatDateTime(s.ExpiresAt, loc),
	}
}

func (h *URLHandler) toPageResponse(page shortener.Page[shortener.ShortURL]) *ShortURLPageResponse {
	body := shortener.MapPage(page, func(s shortener.ShortURL) ShortURLBody { return h.toBody(&s) })

	return &ShortURLPageResponse{Body: ShortURLPageBody{
		Items:      body.Items,
		Page:       body.Page,
		Size:       body.Size,
		TotalItems: body.TotalItems,
		TotalPages: body.TotalPages,
	}}
}
