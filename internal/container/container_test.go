package container_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/serroba/shortlink/internal/container"
	"github.com/serroba/shortlink/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newMemoryService builds the server wiring on in-memory backends and starts its consumers.
func newMemoryService(t *testing.T) http.Handler {
	t.Helper()

	injector := do.New()
	container.Register(injector, memoryOptions())
	do.OverrideValue(injector, zap.NewNop())

	router := do.MustInvoke[*chi.Mux](injector)
	_ = do.MustInvoke[huma.API](injector)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, do.MustInvoke[*messaging.ConsumerGroup](injector).Start(ctx))

	t.Cleanup(func() {
		cancel()
		assert.NoError(t, injector.Shutdown())
	})

	return router
}

func serve(router http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestMemoryService(t *testing.T) {
	router := newMemoryService(t)
	identity := []string{"X-Auth-Email", "alice@example.com"}

	created := serve(router, http.MethodPost, "/shorten", `{"url":"https://example.com/docs"}`, identity...)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())

	var link struct {
		Code     string `json:"code"`
		ShortURL string `json:"shortUrl"`
	}
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &link))
	assert.Len(t, link.Code, 6)
	assert.Equal(t, "http://localhost:8888/"+link.Code, link.ShortURL)

	redirect := serve(router, http.MethodGet, "/"+link.Code, "", "User-Agent", "curl/8.5.0")
	require.Equal(t, http.StatusFound, redirect.Code)
	assert.Equal(t, "https://example.com/docs", redirect.Header().Get("Location"))

	// Clicks travel through the in-process broker to the recorder.
	require.Eventually(t, func() bool {
		resp := serve(router, http.MethodGet, "/analytics/"+link.Code+"/click-count", "", identity...)
		if resp.Code != http.StatusOK {
			return false
		}

		var count struct {
			Clicks int64 `json:"clicks"`
		}

		return json.Unmarshal(resp.Body.Bytes(), &count) == nil && count.Clicks == 1
	}, 2*time.Second, 20*time.Millisecond)

	health := serve(router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, health.Code)
	assert.Contains(t, health.Body.String(), `"status":"ok"`)
}
