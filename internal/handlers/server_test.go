package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/serroba/shortlink/internal/analytics"
	"github.com/serroba/shortlink/internal/auth"
	"github.com/serroba/shortlink/internal/handlers"
	"github.com/serroba/shortlink/internal/middleware"
	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/store"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	baseURL = "http://sho.rt"
	alice   = "X-Auth-Email: alice@example.com"
	bob     = "X-Auth-Email: bob@example.com"
	root    = "X-Auth-Email: root@example.com"
	admin   = "X-Auth-Roles: USER,ADMIN"
)

var createdAt = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// testServer wires the handlers to in-memory stores. Click events are recorded synchronously.
type testServer struct {
	api      humatest.TestAPI
	repo     *store.MemoryStore
	created  []analytics.URLCreatedEvent
	accessed []analytics.URLAccessedEvent
	deleted  []analytics.URLDeletedEvent
	// publishErr, when set, fails every publish after the event is captured.
	publishErr error
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	s := &testServer{repo: store.NewMemoryStore()}
	clicks := store.NewMemoryClickStore(s.repo)

	codes := 0
	generator := func() string {
		codes++

		return fmt.Sprintf("code%02d", codes)
	}

	resolver := shortener.NewResolver(s.repo, store.NewMemoryCache(time.Minute), generator, zap.NewNop(),
		shortener.WithClock(func() time.Time { return createdAt }))
	recorder := analytics.NewRecorder(s.repo, clicks, analytics.NewUserAgentClassifier(), zap.NewNop())
	aggregator := analytics.NewAggregator(resolver, clicks)

	urls := handlers.NewURLHandler(resolver, baseURL+"/", handlers.Publishers{
		URLCreated: func(_ context.Context, e *analytics.URLCreatedEvent) error {
			s.created = append(s.created, *e)

			return s.publishErr
		},
		URLAccessed: func(ctx context.Context, e *analytics.URLAccessedEvent) error {
			s.accessed = append(s.accessed, *e)
			if s.publishErr != nil {
				return s.publishErr
			}

			return recorder.HandleURLAccessed(ctx, e)
		},
		URLDeleted: func(_ context.Context, e *analytics.URLDeletedEvent) error {
			s.deleted = append(s.deleted, *e)

			return s.publishErr
		},
	}, zap.NewNop())
	stats := handlers.NewAnalyticsHandler(aggregator, time.UTC, zap.NewNop())

	_, api := humatest.New(t)
	api.UseMiddleware(auth.Middleware(api), middleware.RequestMetaMiddleware(api))
	handlers.RegisterRoutes(api, urls, stats)

	s.api = api

	return s
}

// create shortens url as the given identity and returns the code.
func (s *testServer) create(t *testing.T, identity string, body map[string]any) string {
	t.Helper()

	resp := s.api.Post("/shorten", identity, body)
	require.Equal(t, 201, resp.Code, resp.Body.String())

	var out handlers.ShortURLBody
	decode(t, resp, &out)

	return out.Code
}

func decode(t *testing.T, resp *httptest.ResponseRecorder, v any) {
	t.Helper()

	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), v), resp.Body.String())
}

var errBrokerDown = errors.New("broker unavailable")
