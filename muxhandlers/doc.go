// Package muxhandlers provides file serving decorators and HTTP middleware
// for the mux router.
//
// # File Routes
//
// FileRoute returns a mux.Decorator that resolves a path template below a
// root directory. The route matches only when the template resolves to a
// regular file; otherwise matching continues with the next route.
//
//	res, err := resolve.New("/srv/assets")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fr, err := muxhandlers.FileRoute(res, muxhandlers.FileRouteConfig{
//	    Template: "/:namespace/*",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	r.Namespace("static").Action("files").Decorate(fr)
//
// With ShowDebugging the resolution diagnostics are sent as JSON in the
// X-Resolve-Debug response header and misses are passed to DebugFunc.
//
// # Sendfile Middleware
//
// SendfileMiddleware replaces the body of file responses with a transport
// hint header carrying the real file path, for front proxies that deliver
// files themselves:
//
//	mw, err := muxhandlers.SendfileMiddleware(muxhandlers.SendfileConfig{
//	    Header: "X-Accel-Redirect",
//	    Root:   "/srv/assets",
//	    Prefix: "/internal",
//	})
//
// # Cache Control Middleware
//
// CacheControlMiddleware sets Cache-Control on successful responses using
// ordered rules keyed by route namespace and content type prefix.
//
// # Error Handler
//
// ErrorHandler logs responder errors with log/slog and answers 500 unless
// the response was already started. A client that went away gets a bare
// StatusClientClosedRequest so metrics record the outcome.
//
// # Metrics
//
// NewMetrics registers Prometheus collectors for resolutions, responses,
// response bytes and durations. Metrics.ObserveResolution plugs into
// FileRouteConfig.ObserveFunc.
//
// # Recovery and Request ID
//
// RecoveryMiddleware turns panics into 500 responses. RequestIDMiddleware
// propagates or generates UUID request IDs (RFC 9562).
package muxhandlers
