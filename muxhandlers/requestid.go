package muxhandlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/vitalvas/assetroute/mux"
)

// ErrRequestIDVersion is returned when RequestIDConfig.Version is neither
// zero, 4 nor 7.
var ErrRequestIDVersion = errors.New("request id: version must be 4 or 7")

// DefaultRequestIDHeader is the header used when RequestIDConfig.HeaderName
// is empty.
const DefaultRequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestIDFromContext returns the request ID stored in the context by
// RequestIDMiddleware. Returns an empty string if no ID is present.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}

	return ""
}

// RequestIDAttr returns the request ID as a slog attribute.
func RequestIDAttr(ctx context.Context) slog.Attr {
	return slog.String("request_id", RequestIDFromContext(ctx))
}

// RequestIDConfig configures the Request ID middleware behaviour.
type RequestIDConfig struct {
	// HeaderName overrides the header used to propagate the request ID.
	// Defaults to DefaultRequestIDHeader when empty.
	HeaderName string

	// Version selects the UUID version of generated IDs: 4 (random) or
	// 7 (time ordered). Zero means 4. Ignored when GenerateFunc is set.
	Version int

	// GenerateFunc is an optional callback that returns a new unique ID.
	GenerateFunc func(r *http.Request) string

	// TrustIncoming, when true, reuses an existing request ID from the
	// incoming request header instead of generating a new one. Incoming
	// IDs that are not valid UUIDs are replaced.
	TrustIncoming bool
}

// RequestIDMiddleware returns a middleware that generates or propagates a
// request ID header. The ID is set on both the request (for downstream
// handlers) and the response (for the caller).
//
// It returns ErrRequestIDVersion for an unsupported Version.
func RequestIDMiddleware(cfg RequestIDConfig) (mux.MiddlewareFunc, error) {
	headerName := cfg.HeaderName
	if headerName == "" {
		headerName = DefaultRequestIDHeader
	}

	generate := cfg.GenerateFunc
	if generate == nil {
		switch cfg.Version {
		case 0, 4:
			generate = GenerateUUIDv4
		case 7:
			generate = GenerateUUIDv7
		default:
			return nil, ErrRequestIDVersion
		}
	}

	trustIncoming := cfg.TrustIncoming

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if trustIncoming {
				if incoming := r.Header.Get(headerName); incoming != "" {
					if err := uuid.Validate(incoming); err == nil {
						id = incoming
					}
				}
			}

			if id == "" {
				id = generate(r)
			}

			if id != "" {
				r.Header.Set(headerName, id)
				w.Header().Set(headerName, id)
				r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

// GenerateUUIDv4 returns a new UUID v4 string.
//
// See https://www.rfc-editor.org/rfc/rfc9562#section-5.4
func GenerateUUIDv4(_ *http.Request) string {
	return uuid.New().String()
}

// GenerateUUIDv7 returns a new UUID v7 string. UUIDs are time-ordered.
//
// See https://www.rfc-editor.org/rfc/rfc9562#section-5.7
func GenerateUUIDv7(_ *http.Request) string {
	return uuid.Must(uuid.NewV7()).String()
}
