package muxhandlers

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/vitalvas/assetroute/mux"
)

// RecoveryConfig configures the Recovery middleware behaviour.
type RecoveryConfig struct {
	// Logger receives an error record with the request path, the matched
	// private path, the request ID and the stack for every recovered
	// panic. When nil, no record is written.
	Logger *slog.Logger

	// LogFunc is an optional callback invoked with the request and the
	// recovered value when a panic occurs. It is called in addition to
	// Logger.
	LogFunc func(r *http.Request, err any)
}

// RecoveryMiddleware returns a middleware that recovers from panics in
// downstream handlers and responders. When a panic occurs it returns 500
// Internal Server Error to the client.
func RecoveryMiddleware(cfg RecoveryConfig) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if cfg.Logger != nil {
						cfg.Logger.ErrorContext(r.Context(), "panic recovered",
							slog.Any("panic", err),
							slog.String("method", r.Method),
							slog.String("path", r.URL.Path),
							slog.String("route", privatePathOf(r)),
							slog.String("request_id", RequestIDFromContext(r.Context())),
							slog.String("stack", string(debug.Stack())),
						)
					}

					if cfg.LogFunc != nil {
						cfg.LogFunc(r, err)
					}

					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// privatePathOf returns the private path of the matched route, or an
// empty string outside a route.
func privatePathOf(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		return route.GetPrivatePath()
	}
	return ""
}
