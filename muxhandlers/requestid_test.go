package muxhandlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalvas/assetroute/mux"
)

var (
	uuidV4Regex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	uuidV7Regex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-7[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
)

const incomingUUID = "0b6f3c1e-9d2a-4c5b-8e7f-1a2b3c4d5e6f"

func newRequestIDRouter(t *testing.T, cfg RequestIDConfig, h http.HandlerFunc) *mux.Router {
	t.Helper()

	mw, err := RequestIDMiddleware(cfg)
	require.NoError(t, err)

	r := mux.NewRouter()
	r.Action("test").Methods(http.MethodGet).HandlerFunc(h)
	r.Use(mw)

	return r
}

func TestRequestIDMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		config         RequestIDConfig
		incomingHeader string
		wantHeader     string
		wantPattern    *regexp.Regexp
	}{
		{
			name:        "generates UUID v4 by default",
			config:      RequestIDConfig{},
			wantPattern: uuidV4Regex,
		},
		{
			name:        "generates UUID v7 when configured",
			config:      RequestIDConfig{Version: 7},
			wantPattern: uuidV7Regex,
		},
		{
			name:           "does not trust incoming by default",
			config:         RequestIDConfig{},
			incomingHeader: incomingUUID,
			wantPattern:    uuidV4Regex,
		},
		{
			name:           "trusts incoming when configured",
			config:         RequestIDConfig{TrustIncoming: true},
			incomingHeader: incomingUUID,
			wantHeader:     incomingUUID,
		},
		{
			name:           "replaces malformed incoming",
			config:         RequestIDConfig{TrustIncoming: true},
			incomingHeader: "not-a-uuid",
			wantPattern:    uuidV4Regex,
		},
		{
			name:        "generates when trust incoming but no header",
			config:      RequestIDConfig{TrustIncoming: true},
			wantPattern: uuidV4Regex,
		},
		{
			name:       "custom generate func",
			config:     RequestIDConfig{GenerateFunc: func(_ *http.Request) string { return "custom-id" }},
			wantHeader: "custom-id",
		},
		{
			name:       "custom header name",
			config:     RequestIDConfig{HeaderName: "X-Trace-ID", GenerateFunc: func(_ *http.Request) string { return "trace-123" }},
			wantHeader: "trace-123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var capturedRequestHeader string

			headerName := tt.config.HeaderName
			if headerName == "" {
				headerName = DefaultRequestIDHeader
			}

			r := newRequestIDRouter(t, tt.config, func(_ http.ResponseWriter, req *http.Request) {
				capturedRequestHeader = req.Header.Get(headerName)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.incomingHeader != "" {
				req.Header.Set(headerName, tt.incomingHeader)
			}
			r.ServeHTTP(w, req)

			responseHeader := w.Header().Get(headerName)

			if tt.wantPattern != nil {
				assert.Regexp(t, tt.wantPattern, responseHeader)
			} else {
				assert.Equal(t, tt.wantHeader, responseHeader)
			}

			assert.Equal(t, capturedRequestHeader, responseHeader)
		})
	}

	t.Run("unsupported version", func(t *testing.T) {
		_, err := RequestIDMiddleware(RequestIDConfig{Version: 5})
		assert.ErrorIs(t, err, ErrRequestIDVersion)
	})

	t.Run("each request gets unique ID", func(t *testing.T) {
		r := newRequestIDRouter(t, RequestIDConfig{}, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		w1 := httptest.NewRecorder()
		r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/test", nil))

		w2 := httptest.NewRecorder()
		r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/test", nil))

		id1 := w1.Header().Get(DefaultRequestIDHeader)
		id2 := w2.Header().Get(DefaultRequestIDHeader)

		assert.NotEmpty(t, id1)
		assert.NotEmpty(t, id2)
		assert.NotEqual(t, id1, id2)
	})

	t.Run("empty id does not set headers", func(t *testing.T) {
		var capturedRequestHeader string
		var capturedCtxID string

		r := newRequestIDRouter(t, RequestIDConfig{
			GenerateFunc: func(_ *http.Request) string { return "" },
		}, func(_ http.ResponseWriter, req *http.Request) {
			capturedRequestHeader = req.Header.Get(DefaultRequestIDHeader)
			capturedCtxID = RequestIDFromContext(req.Context())
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Empty(t, capturedRequestHeader)
		assert.Empty(t, capturedCtxID)
		assert.Empty(t, w.Header().Get(DefaultRequestIDHeader))
	})

	t.Run("id available via context", func(t *testing.T) {
		var capturedCtxID string
		var attrValue string

		r := newRequestIDRouter(t, RequestIDConfig{}, func(_ http.ResponseWriter, req *http.Request) {
			capturedCtxID = RequestIDFromContext(req.Context())
			attrValue = RequestIDAttr(req.Context()).Value.String()
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.NotEmpty(t, capturedCtxID)
		assert.Equal(t, w.Header().Get(DefaultRequestIDHeader), capturedCtxID)
		assert.Equal(t, capturedCtxID, attrValue)
	})
}

func TestRequestIDFromContext(t *testing.T) {
	t.Run("returns empty for bare context", func(t *testing.T) {
		assert.Empty(t, RequestIDFromContext(context.Background()))
	})

	t.Run("attr key", func(t *testing.T) {
		assert.Equal(t, "request_id", RequestIDAttr(context.Background()).Key)
	})
}

func TestGenerateUUIDv4(t *testing.T) {
	t.Run("format", func(t *testing.T) {
		id := GenerateUUIDv4(nil)
		assert.Regexp(t, uuidV4Regex, id)
		assert.Len(t, id, 36)
	})

	t.Run("uniqueness", func(t *testing.T) {
		seen := make(map[string]struct{}, 100)
		for range 100 {
			id := GenerateUUIDv4(nil)
			_, exists := seen[id]
			assert.False(t, exists, "duplicate UUID generated: %s", id)
			seen[id] = struct{}{}
		}
	})
}

func TestGenerateUUIDv7(t *testing.T) {
	t.Run("format", func(t *testing.T) {
		id := GenerateUUIDv7(nil)
		assert.Regexp(t, uuidV7Regex, id)
		assert.Len(t, id, 36)
	})

	t.Run("time ordered", func(t *testing.T) {
		id1 := GenerateUUIDv7(nil)
		time.Sleep(2 * time.Millisecond)
		id2 := GenerateUUIDv7(nil)

		assert.Less(t, id1, id2)
	})
}

func BenchmarkRequestIDMiddleware(b *testing.B) {
	mw, err := RequestIDMiddleware(RequestIDConfig{})
	require.NoError(b, err)

	r := mux.NewRouter()
	r.Action("test").HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Use(mw)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	b.ResetTimer()
	for b.Loop() {
		r.ServeHTTP(httptest.NewRecorder(), req)
	}
}
