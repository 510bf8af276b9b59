package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/auth"
	"github.com/serroba/shortlink/internal/shortener"
	"go.uber.org/zap"
)

// toHTTPError maps domain errors to HTTP responses. Unexpected errors are logged and hidden behind a 500.
func toHTTPError(logger *zap.Logger, op string, err error) error {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return huma.Error401Unauthorized(err.Error())
	case errors.Is(err, auth.ErrNotAdmin), errors.Is(err, shortener.ErrForbidden):
		return huma.Error403Forbidden(err.Error())
	case errors.Is(err, shortener.ErrInvalidRequest), errors.Is(err, shortener.ErrInvalidDateFormat):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, shortener.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, shortener.ErrExpired):
		return huma.NewError(http.StatusGone, err.Error())
	case errors.Is(err, shortener.ErrAlreadyExists):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn("request timed out", zap.String("op", op), zap.Error(err))

		return huma.Error504GatewayTimeout("lookup timed out")
	default:
		logger.Error("request failed", zap.String("op", op), zap.Error(err))

		return huma.Error500InternalServerError("internal server error")
	}
}
