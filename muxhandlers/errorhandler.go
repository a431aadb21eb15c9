package muxhandlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vitalvas/assetroute/mux"
	"github.com/vitalvas/assetroute/respond"
)

// StatusClientClosedRequest is the non-standard status recorded when the
// client went away before the response was started.
const StatusClientClosedRequest = 499

// ErrorHandler returns a mux.ErrorHandlerFunc for file routes.
//
//   - respond.ErrRace: the file matched but could not be opened; 500.
//   - respond.ErrStream: the response was already started; only logged.
//   - context.Canceled: the client went away; logged at debug level and
//     answered with StatusClientClosedRequest without a body.
//   - context.DeadlineExceeded: 503 without a body.
//   - anything else: 500.
//
// A nil logger discards the records.
func ErrorHandler(logger *slog.Logger) mux.ErrorHandlerFunc {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return func(w http.ResponseWriter, r *http.Request, err error) {
		attrs := []any{
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("route", privatePathOf(r)),
			RequestIDAttr(r.Context()),
			slog.String("error", err.Error()),
		}

		switch {
		case errors.Is(err, context.Canceled):
			logger.DebugContext(r.Context(), "request canceled", attrs...)
			w.WriteHeader(StatusClientClosedRequest)
			return

		case errors.Is(err, context.DeadlineExceeded):
			logger.WarnContext(r.Context(), "request deadline exceeded", attrs...)
			w.WriteHeader(http.StatusServiceUnavailable)
			return

		case errors.Is(err, respond.ErrStream):
			logger.WarnContext(r.Context(), "response stream interrupted", attrs...)
			return

		case errors.Is(err, respond.ErrRace):
			logger.ErrorContext(r.Context(), "matched file became unavailable", attrs...)

		default:
			logger.ErrorContext(r.Context(), "responder failed", attrs...)
		}

		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
