package mux

import (
	"net/http"
	"strings"
	"sync"
)

// Router registers actions grouped in namespaces and dispatches each
// request to the first route that matches it.
//
// It implements the http.Handler interface, so it can be registered to serve
// requests:
//
//	r := mux.NewRouter()
//	r.Namespace("api").Action("status").HandlerFunc(statusHandler)
//	http.ListenAndServe(":8080", r)
type Router struct {
	// NotFoundHandler is called when no route matches.
	// If nil, http.NotFoundHandler() is used.
	// Corresponds to 404 Not Found per RFC 7231 Section 6.5.4.
	NotFoundHandler http.Handler

	// MethodNotAllowedHandler is called when a route matches the path
	// but not the method. If nil, a default 405 handler is used.
	// Per RFC 7231 Section 6.5.5, the Allow header is always set before
	// this handler is invoked.
	MethodNotAllowedHandler http.Handler

	// ErrorHandler is called when a Responder returns an error.
	// If nil, a plain 500 Internal Server Error is written.
	ErrorHandler ErrorHandlerFunc

	routes      []*Route
	namedRoutes map[string]*Route
	middlewares []MiddlewareFunc

	// handlerCache caches the middleware-wrapped handler per route
	// to avoid re-wrapping on every request.
	handlerCache sync.Map // map[*Route]http.Handler

	skipClean bool
}

// NewRouter returns a new router instance.
func NewRouter() *Router {
	return &Router{
		namedRoutes: make(map[string]*Route),
	}
}

// ServeHTTP dispatches the handler registered in the matched route.
// Implements http.Handler per RFC 7230 Section 3.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	req = r.Normalize(req)

	var match RouteMatch
	var handler http.Handler

	if r.Match(req, &match) {
		handler = match.Handler
		if handler == nil {
			handler = defaultNotFoundHandler
		}
		req = setRouteContext(req, &match)
	} else {
		if match.methodNotAllowed {
			// RFC 7231 Section 6.5.5: the origin server MUST generate an
			// Allow header field in a 405 response.
			w.Header().Set("Allow", strings.Join(allowedMethods(match.allowed), ", "))
			handler = r.MethodNotAllowedHandler
			if handler == nil {
				handler = defaultMethodNotAllowedHandler
			}
		} else {
			handler = r.NotFoundHandler
			if handler == nil {
				handler = defaultNotFoundHandler
			}
		}
	}

	handler.ServeHTTP(w, req)
}

// Normalize returns req with its path cleaned per RFC 3986 Section 5.2.4
// (removing dot segments) and rooted at "/", as ServeHTTP does before
// matching. req is returned unchanged when SkipClean is enabled or the
// path is already clean.
func (r *Router) Normalize(req *http.Request) *http.Request {
	if r.skipClean {
		return req
	}

	path := req.URL.Path
	cleaned := cleanPath(path)
	if cleaned == path {
		return req
	}

	u := *req.URL
	u.Path = cleaned
	u.RawPath = ""
	req = req.Clone(req.Context())
	req.URL = &u
	return req
}

// Match attempts to match the given request against the router's routes
// in registration order. Distinguishes between 404 Not Found
// (RFC 7231 Section 6.5.4) and 405 Method Not Allowed
// (RFC 7231 Section 6.5.5) by tracking method mismatches independently
// across route iteration.
func (r *Router) Match(req *http.Request, match *RouteMatch) bool {
	var methodNotAllowed bool
	for _, route := range r.routes {
		if route.Match(req, match) {
			match.Handler = r.handlerFor(route)
			return true
		}
		if match.MatchErr == ErrMethodMismatch {
			methodNotAllowed = true
		}
	}

	if methodNotAllowed {
		match.MatchErr = ErrMethodMismatch
		match.methodNotAllowed = true
		return false
	}

	match.MatchErr = ErrNotFound
	return false
}

// handlerFor returns the middleware-wrapped handler of route, or nil when
// the route has no responder.
func (r *Router) handlerFor(route *Route) http.Handler {
	if route.responder == nil {
		return nil
	}
	if cached, ok := r.handlerCache.Load(route); ok {
		return cached.(http.Handler)
	}

	var h http.Handler = responderHandler{responder: route.responder, router: r}
	h = r.applyMiddleware(h)
	r.handlerCache.Store(route, h)
	return h
}

// responderHandler adapts a Responder to http.Handler, routing errors to
// the router's ErrorHandler.
type responderHandler struct {
	responder Responder
	router    *Router
}

func (h responderHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if err := h.responder.Respond(w, req); err != nil {
		onError := h.router.ErrorHandler
		if onError == nil {
			onError = defaultErrorHandler
		}
		onError(w, req, err)
	}
}

// SkipClean defines the path cleaning behavior.
// When true, the path will not be cleaned (path.Clean will not be called)
// and dot segments reach the routes as positional arguments.
func (r *Router) SkipClean(value bool) *Router {
	r.skipClean = value
	return r
}

// --- Route factory methods ---

// Namespace returns a handle for registering actions below name.
// Nested namespaces are separated by "/".
func (r *Router) Namespace(name string) *Namespace {
	return &Namespace{router: r, name: strings.Trim(name, "/")}
}

// Action registers a new route for an action in the root namespace.
func (r *Router) Action(name string) *Route {
	return r.addRoute(newRoute(r, "", name))
}

func (r *Router) addRoute(route *Route) *Route {
	r.routes = append(r.routes, route)
	return route
}

// Get returns a route registered with the given name.
func (r *Router) Get(name string) *Route {
	return r.namedRoutes[name]
}

// Routes returns the registered routes in matching order.
func (r *Router) Routes() []*Route {
	out := make([]*Route, len(r.routes))
	copy(out, r.routes)
	return out
}

// Walk calls walkFn for each registered route in matching order.
func (r *Router) Walk(walkFn WalkFunc) error {
	for _, route := range r.routes {
		err := walkFn(route, r)
		if err == SkipRoute {
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Namespace registers actions that share a private path prefix.
type Namespace struct {
	router *Router
	name   string
}

// Name returns the namespace path without surrounding slashes.
func (n *Namespace) Name() string {
	return n.name
}

// Namespace returns a nested namespace.
func (n *Namespace) Namespace(name string) *Namespace {
	child := strings.Trim(name, "/")
	if n.name != "" && child != "" {
		child = n.name + "/" + child
	} else if child == "" {
		child = n.name
	}
	return &Namespace{router: n.router, name: child}
}

// Action registers a new route for an action in the namespace.
func (n *Namespace) Action(name string) *Route {
	return n.router.addRoute(newRoute(n.router, n.name, name))
}
