package health

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlink/internal/ratelimit"
)

const (
	StatusOK        = "ok"
	StatusDegraded  = "degraded"
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"

	// DefaultTimeout bounds each dependency ping.
	DefaultTimeout = 2 * time.Second
)

// Checker reports whether a dependency is reachable.
type Checker interface {
	Ping(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// NewRedisChecker pings a Redis client.
func NewRedisChecker(client redis.UniversalClient) Checker {
	return CheckerFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}

// NewPostgresChecker pings a PostgreSQL pool.
func NewPostgresChecker(pool *pgxpool.Pool) Checker {
	return CheckerFunc(pool.Ping)
}

// Component is a named dependency.
type Component struct {
	Name    string
	Checker Checker
}

// Handler handles health check operations.
type Handler struct {
	components []Component
	timeout    time.Duration
}

// NewHandler creates a new health handler. With no components the service reports ok.
func NewHandler(components ...Component) *Handler {
	return &Handler{components: components, timeout: DefaultTimeout}
}

// Response is the response for health check endpoint.
type Response struct {
	Body struct {
		Status     string            `example:"ok" json:"status"`
		Components map[string]string `json:"components"`
	}
}

// Check pings every component. Unreachable dependencies degrade the status but never fail the request.
func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	resp := &Response{}
	resp.Body.Status = StatusOK
	resp.Body.Components = make(map[string]string, len(h.components))

	for _, c := range h.components {
		pingCtx, cancel := context.WithTimeout(ctx, h.timeout)
		err := c.Checker.Ping(pingCtx)

		cancel()

		if err != nil {
			resp.Body.Components[c.Name] = StatusUnhealthy
			resp.Body.Status = StatusDegraded

			continue
		}

		resp.Body.Components[c.Name] = StatusHealthy
	}

	return resp, nil
}

// RegisterRoutes registers health check routes. Health checks are exempt from rate limiting.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Service health",
		Tags:        []string{"Health"},
		Metadata:    ratelimit.Metadata(ratelimit.EndpointConfig{Disabled: true}),
	}, h.Check)
}
