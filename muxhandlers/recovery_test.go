package muxhandlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalvas/assetroute/mux"
)

func TestRecoveryMiddleware(t *testing.T) {
	tests := []struct {
		name          string
		handler       http.HandlerFunc
		logFunc       func(r *http.Request, err any)
		wantCode      int
		wantPanic     bool
		wantLogCalled bool
	}{
		{
			name: "no panic passes through",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
			wantCode: http.StatusOK,
		},
		{
			name: "panic returns 500",
			handler: func(_ http.ResponseWriter, _ *http.Request) {
				panic("something went wrong")
			},
			wantCode:  http.StatusInternalServerError,
			wantPanic: true,
		},
		{
			name: "panic with LogFunc calls logger",
			handler: func(_ http.ResponseWriter, _ *http.Request) {
				panic("log this")
			},
			logFunc:       func(_ *http.Request, _ any) {},
			wantCode:      http.StatusInternalServerError,
			wantPanic:     true,
			wantLogCalled: true,
		},
		{
			name: "panic with integer value",
			handler: func(_ http.ResponseWriter, _ *http.Request) {
				panic(42)
			},
			wantCode:  http.StatusInternalServerError,
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logCalled bool
			var loggedErr any

			cfg := RecoveryConfig{}
			if tt.logFunc != nil {
				cfg.LogFunc = func(r *http.Request, err any) {
					logCalled = true
					loggedErr = err
					tt.logFunc(r, err)
				}
			}

			r := mux.NewRouter()
			r.Action("test").Methods(http.MethodGet).HandlerFunc(tt.handler)
			r.Use(RecoveryMiddleware(cfg))

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)

			if tt.wantLogCalled {
				assert.True(t, logCalled)
				assert.NotNil(t, loggedErr)
			}

			if tt.wantPanic {
				body, err := io.ReadAll(w.Body)
				require.NoError(t, err)
				assert.Contains(t, string(body), http.StatusText(http.StatusInternalServerError))
			}
		})
	}

	t.Run("Logger writes structured record", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))

		r := mux.NewRouter()
		r.Namespace("static").Action("files").HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			panic("expected-value")
		})
		r.Use(RecoveryMiddleware(RecoveryConfig{Logger: logger}))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/files/a.txt", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "panic recovered", record["msg"])
		assert.Equal(t, "ERROR", record["level"])
		assert.Equal(t, "expected-value", record["panic"])
		assert.Equal(t, "/static/files/a.txt", record["path"])
		assert.Equal(t, "/static/files", record["route"])
		assert.NotEmpty(t, record["stack"])
	})

	t.Run("responder panic is recovered", func(t *testing.T) {
		r := mux.NewRouter()
		r.Action("test").Responder(mux.ResponderFunc(func(http.ResponseWriter, *http.Request) error {
			panic("responder")
		}))
		r.Use(RecoveryMiddleware(RecoveryConfig{}))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func BenchmarkRecoveryMiddleware(b *testing.B) {
	b.Run("no panic", func(b *testing.B) {
		r := mux.NewRouter()
		r.Action("test").HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		r.Use(RecoveryMiddleware(RecoveryConfig{}))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)

		b.ResetTimer()
		for b.Loop() {
			r.ServeHTTP(httptest.NewRecorder(), req)
		}
	})

	b.Run("panic recovery", func(b *testing.B) {
		r := mux.NewRouter()
		r.Action("test").HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			panic("bench")
		})
		r.Use(RecoveryMiddleware(RecoveryConfig{}))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)

		b.ResetTimer()
		for b.Loop() {
			r.ServeHTTP(httptest.NewRecorder(), req)
		}
	})
}
