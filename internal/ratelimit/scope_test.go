package ratelimit_test

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"mime/multipart"
	"net/url"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/ratelimit"
	"github.com/stretchr/testify/assert"
)

var errMultipartNotSupported = errors.New("multipart not supported in mock")

// mockHumaContext implements huma.Context for testing scope resolution.
type mockHumaContext struct {
	method    string
	operation *huma.Operation
}

func (m *mockHumaContext) Operation() *huma.Operation {
	return m.operation
}
func (m *mockHumaContext) Context() context.Context          { return context.Background() }
func (m *mockHumaContext) TLS() *tls.ConnectionState         { return nil }
func (m *mockHumaContext) Version() huma.ProtoVersion        { return huma.ProtoVersion{} }
func (m *mockHumaContext) Method() string                    { return m.method }
func (m *mockHumaContext) Host() string                      { return "" }
func (m *mockHumaContext) RemoteAddr() string                { return "" }
func (m *mockHumaContext) URL() url.URL                      { return url.URL{} }
func (m *mockHumaContext) Param(_ string) string             { return "" }
func (m *mockHumaContext) Query(_ string) string             { return "" }
func (m *mockHumaContext) Header(_ string) string            { return "" }
func (m *mockHumaContext) EachHeader(_ func(string, string)) {}
func (m *mockHumaContext) BodyReader() io.Reader             { return nil }
func (m *mockHumaContext) GetMultipartForm() (*multipart.Form, error) {
	return nil, errMultipartNotSupported
}
func (m *mockHumaContext) SetReadDeadline(_ time.Time) error { return nil }
func (m *mockHumaContext) SetStatus(_ int)                   {}
func (m *mockHumaContext) Status() int                       { return 0 }
func (m *mockHumaContext) AppendHeader(_, _ string)          {}
func (m *mockHumaContext) SetHeader(_, _ string)             {}
func (m *mockHumaContext) BodyWriter() io.Writer             { return nil }

func TestMethodScopeResolver_Resolve(t *testing.T) {
	t.Parallel()

	read := []ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeRead}
	write := []ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeWrite}

	tests := []struct {
		method string
		want   []ratelimit.Scope
	}{
		{method: "GET", want: read},
		{method: "HEAD", want: read},
		{method: "OPTIONS", want: read},
		{method: "POST", want: write},
		{method: "PUT", want: write},
		{method: "PATCH", want: write},
		{method: "DELETE", want: write},
	}

	resolver := ratelimit.NewMethodScopeResolver()

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, resolver.Resolve(&mockHumaContext{method: tt.method}))
		})
	}
}

func TestOperationScopeResolver_Resolve(t *testing.T) {
	t.Parallel()

	resolver := ratelimit.NewOperationScopeResolver()

	tests := []struct {
		name      string
		method    string
		operation *huma.Operation
		want      []ratelimit.Scope
	}{
		{
			name:   "nil operation uses the method",
			method: "GET",
			want:   []ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeRead},
		},
		{
			name:      "operation without metadata uses the method",
			method:    "DELETE",
			operation: &huma.Operation{},
			want:      []ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeWrite},
		},
		{
			name:      "unrelated metadata uses the method",
			method:    "GET",
			operation: &huma.Operation{Metadata: map[string]any{"other": "value"}},
			want:      []ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeRead},
		},
		{
			name:   "redirect scope replaces read",
			method: "GET",
			operation: &huma.Operation{
				Metadata: ratelimit.Metadata(ratelimit.EndpointConfig{Scope: ratelimit.ScopeRedirect}),
			},
			want: []ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeRedirect},
		},
		{
			name:   "admin scope replaces write",
			method: "DELETE",
			operation: &huma.Operation{
				Metadata: ratelimit.Metadata(ratelimit.EndpointConfig{Scope: ratelimit.ScopeAdmin}),
			},
			want: []ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeAdmin},
		},
		{
			name:   "config with limits but no scope uses the method",
			method: "POST",
			operation: &huma.Operation{
				Metadata: ratelimit.Metadata(ratelimit.EndpointConfig{
					Limits: []ratelimit.LimitConfig{{Max: 10, Window: time.Minute}},
				}),
			},
			want: []ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeWrite},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := &mockHumaContext{method: tt.method, operation: tt.operation}

			assert.Equal(t, tt.want, resolver.Resolve(ctx))
		})
	}
}

func TestGetEndpointConfig(t *testing.T) {
	t.Parallel()

	t.Run("nil operation", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, ratelimit.GetEndpointConfig(&mockHumaContext{}))
	})

	t.Run("wrong metadata type", func(t *testing.T) {
		t.Parallel()

		ctx := &mockHumaContext{operation: &huma.Operation{
			Metadata: map[string]any{ratelimit.MetadataKey: "wrong type"},
		}}

		assert.Nil(t, ratelimit.GetEndpointConfig(ctx))
	})

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()

		ctx := &mockHumaContext{operation: &huma.Operation{
			Metadata: ratelimit.Metadata(ratelimit.EndpointConfig{Scope: ratelimit.ScopeRead, Disabled: true}),
		}}

		cfg := ratelimit.GetEndpointConfig(ctx)

		if assert.NotNil(t, cfg) {
			assert.Equal(t, ratelimit.ScopeRead, cfg.Scope)
			assert.True(t, cfg.Disabled)
		}
	})
}
