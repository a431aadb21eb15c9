package mux

import (
	"context"
	"errors"
	"net/http"
)

// routeContextKey is an unexported type for the single context key.
type routeContextKey struct{}

// ctxKey is the single context key used to store the route, its
// positional arguments and matcher values.
var ctxKey = routeContextKey{}

// routeContext holds the matched route and the facts published during
// matching.
type routeContext struct {
	route  *Route
	args   []string
	values map[any]any
}

// Args returns the positional arguments of the current request: the path
// segments following the matched route's private path.
func Args(r *http.Request) []string {
	if rc, ok := r.Context().Value(ctxKey).(*routeContext); ok {
		return rc.args
	}
	return nil
}

// CurrentRoute returns the matched route for the current request, if any.
// This only works when called inside the handler of the matched route
// because the matched route is stored in the request context.
func CurrentRoute(r *http.Request) *Route {
	if rc, ok := r.Context().Value(ctxKey).(*routeContext); ok {
		return rc.route
	}
	return nil
}

// Value returns a value published by a matcher through RouteMatch.Set.
func Value(r *http.Request, key any) (any, bool) {
	if rc, ok := r.Context().Value(ctxKey).(*routeContext); ok && rc.values != nil {
		v, exists := rc.values[key]
		return v, exists
	}
	return nil, false
}

// SetArgs sets the positional arguments for the given request, returning
// the modified request. This is intended for testing route handlers.
func SetArgs(r *http.Request, args []string) *http.Request {
	rc := &routeContext{args: args}
	if prev, ok := r.Context().Value(ctxKey).(*routeContext); ok {
		rc.route = prev.route
		rc.values = prev.values
	}
	return r.WithContext(context.WithValue(r.Context(), ctxKey, rc))
}

// setRouteContext stores the match result in the request context using a
// single WithContext call.
func setRouteContext(r *http.Request, match *RouteMatch) *http.Request {
	rc := &routeContext{
		route:  match.Route,
		args:   match.Args,
		values: match.values,
	}
	return r.WithContext(context.WithValue(r.Context(), ctxKey, rc))
}

// RouteMatch stores information about a matched route.
type RouteMatch struct {
	// Route is the route being evaluated. Matchers can read it to learn
	// the namespace, action and private path; after a successful match it
	// is the matched route.
	Route *Route

	// Handler is the handler to use for the matched route.
	Handler http.Handler

	// Args contains the positional arguments of the request.
	Args []string

	// MatchErr is set to ErrMethodMismatch when the request method
	// does not match but everything else does. This triggers a 405
	// response per RFC 7231 Section 6.5.5.
	MatchErr error

	// methodNotAllowed signals that the router should respond with
	// 405 Method Not Allowed (RFC 7231 Section 6.5.5) instead of
	// 404 Not Found (RFC 7231 Section 6.5.4).
	methodNotAllowed bool

	// allowed collects the methods of routes that failed only on the
	// request method.
	allowed []string

	values map[any]any
}

// Set publishes a value for the handler of the route being matched.
// Values set by a route that ends up not matching are discarded.
func (m *RouteMatch) Set(key, value any) {
	if m.values == nil {
		m.values = make(map[any]any)
	}
	m.values[key] = value
}

// Value returns a value published with Set during the current match.
func (m *RouteMatch) Value(key any) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// reset clears the state left by a route that did not match.
func (m *RouteMatch) reset() {
	m.Route = nil
	m.Handler = nil
	m.Args = nil
	m.values = nil
}

// Matcher reports whether a route claims a request. Matchers run in the
// order they were added; the first one returning false skips the route.
type Matcher interface {
	Match(*http.Request, *RouteMatch) bool
}

// MatcherFunc is the function signature used by custom matchers.
type MatcherFunc func(*http.Request, *RouteMatch) bool

// Match implements the Matcher interface.
func (m MatcherFunc) Match(r *http.Request, match *RouteMatch) bool {
	return m(r, match)
}

// Responder produces the response of a matched route. A returned error is
// passed to the router's ErrorHandler.
type Responder interface {
	Respond(http.ResponseWriter, *http.Request) error
}

// ResponderFunc adapts a function to the Responder interface.
type ResponderFunc func(http.ResponseWriter, *http.Request) error

// Respond implements the Responder interface.
func (f ResponderFunc) Respond(w http.ResponseWriter, r *http.Request) error {
	return f(w, r)
}

// Decorator is a route capability: it adds a match condition to a route
// and takes over its response.
type Decorator interface {
	Matcher
	Responder
}

// handlerResponder adapts an http.Handler to the Responder interface.
type handlerResponder struct {
	h http.Handler
}

func (hr handlerResponder) Respond(w http.ResponseWriter, r *http.Request) error {
	hr.h.ServeHTTP(w, r)
	return nil
}

// ErrorHandlerFunc handles an error returned by a Responder.
type ErrorHandlerFunc func(http.ResponseWriter, *http.Request, error)

// WalkFunc is the type of the function called for each route visited by Walk.
type WalkFunc func(route *Route, router *Router) error

// ErrMethodMismatch is returned when the method in the request does not match
// the method defined against the route. Triggers 405 Method Not Allowed
// per RFC 7231 Section 6.5.5.
var ErrMethodMismatch = errors.New("method is not allowed")

// ErrNotFound is returned when no route match is found. Triggers 404 Not Found
// per RFC 7231 Section 6.5.4.
var ErrNotFound = errors.New("no matching route was found")

// SkipRoute is used as a return value from WalkFunc to continue with the
// next route without error.
var SkipRoute = errors.New("skip this route") //nolint:revive,staticcheck // sentinel, not an error condition
