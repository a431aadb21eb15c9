// Package mux implements a request router that dispatches requests to
// actions grouped in namespaces.
//
// The package implements routing semantics based on:
//   - RFC 9110 (HTTP Semantics, successor to RFC 7231)
//   - RFC 3986 (URIs)
//
// # Router
//
// Create a router and register actions:
//
//	r := mux.NewRouter()
//	r.Action("favicon.ico").HandlerFunc(faviconHandler)
//	r.Namespace("basic").Action("relative_path").Decorate(fileRoute)
//	http.Handle("/", r)
//
// # Private Paths and Arguments
//
// Every route has a private path built from its namespace and action:
//
//	namespace "basic", action "relative_path" -> "/basic/relative_path"
//	namespace "",      action "favicon.ico"   -> "/favicon.ico"
//
// A request matches a route when its path equals the private path or
// continues it with further segments. The further segments are the
// route's positional arguments:
//
//	GET /basic/relative_path/css/site.css -> args ["css", "site.css"]
//
// Namespace and action names with empty, "." or ".." segments are
// rejected; such a route records an error and never matches.
//
// # Matchers
//
// Routes support matchers that run in the order they were added:
//
//	r.Action("items").Methods(http.MethodGet, http.MethodHead)
//	r.Action("api").Headers("Content-Type", "application/json")
//	r.Action("webp").Headers("Accept", "image/webp")
//	r.Action("pair").Args(2)
//	r.Action("custom").MatcherFunc(func(r *http.Request, m *mux.RouteMatch) bool {
//	    return len(m.Args) > 0
//	})
//
// Matchers see the candidate route and its arguments through
// RouteMatch.Route and RouteMatch.Args, and may publish values for the
// responder with RouteMatch.Set. Values published by a route that does
// not match are discarded.
//
// # Decorators
//
// A Decorator is a Matcher that is also a Responder. Decorate adds it to
// a route as the last matcher and makes it the route's responder. When the
// decorator declines, matching continues with the next route.
//
// # Error Handling
//
// NotFoundHandler is called when no route matches a request. If nil,
// http.NotFoundHandler() is used (RFC 9110 Section 15.5.5).
//
// MethodNotAllowedHandler is called when a route matches everything except
// the method. The Allow header is always set before this handler is
// invoked, per RFC 9110 Section 15.5.6.
//
// ErrorHandler receives errors returned by a Responder. If nil, a plain
// 500 Internal Server Error is written.
//
// # Context Functions
//
//	args := mux.Args(r)
//	route := mux.CurrentRoute(r)
//	v, ok := mux.Value(r, key)
//
// SetArgs sets the arguments for the given request, intended for testing
// route handlers.
//
// # Middleware
//
// Middleware wraps matched handlers in the order it was added:
//
//	r.Use(loggingMiddleware)
//
// # Path Cleaning
//
// By default the router removes dot segments from request paths per
// RFC 3986 Section 5.2.4. SkipClean disables this, so dot segments reach
// routes as arguments.
package mux
