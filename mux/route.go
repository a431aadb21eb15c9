package mux

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"slices"
	"strings"
)

// Route is an action registered in a namespace. Its private path is
// "/" + namespace + "/" + action; requests whose path equals the private
// path, or continues it with further segments, are candidates for the
// route. The further segments are the route's positional arguments.
type Route struct {
	router    *Router
	namespace string
	action    string
	private   string
	matchers  []Matcher
	responder Responder
	name      string
	err       error
}

func newRoute(router *Router, namespace, action string) *Route {
	r := &Route{
		router:    router,
		namespace: strings.Trim(namespace, "/"),
		action:    strings.Trim(action, "/"),
	}
	r.private = "/" + path.Join(r.namespace, r.action)

	if err := validName(r.namespace); err != nil {
		r.err = fmt.Errorf("mux: invalid namespace %q: %w", namespace, err)
	} else if err := validName(r.action); err != nil {
		r.err = fmt.Errorf("mux: invalid action %q: %w", action, err)
	}

	return r
}

// validName rejects names with empty, "." or ".." segments.
func validName(name string) error {
	if name == "" {
		return nil
	}
	for _, seg := range strings.Split(name, "/") {
		switch seg {
		case "":
			return errors.New("empty segment")
		case ".", "..":
			return fmt.Errorf("dot segment %q", seg)
		}
	}
	return nil
}

// Match matches this route against the request. The private path is
// checked first; the positional arguments are then available to the
// route's matchers through match.Args.
func (r *Route) Match(req *http.Request, match *RouteMatch) bool {
	if r.err != nil {
		return false
	}

	args, ok := r.argsFor(req.URL.Path)
	if !ok {
		return false
	}

	match.Route = r
	match.Args = args

	var (
		methodMismatch bool
		mismatched     methodMatcher
	)

	for _, m := range r.matchers {
		if !m.Match(req, match) {
			if methods, ok := m.(methodMatcher); ok {
				methodMismatch = true
				mismatched = methods
				continue
			}
			match.reset()
			return false
		}
	}

	// If method didn't match but everything else did, record the mismatch
	// and the methods the route would have accepted.
	if methodMismatch {
		match.reset()
		match.MatchErr = ErrMethodMismatch
		match.allowed = append(match.allowed, mismatched...)
		return false
	}

	match.MatchErr = nil
	return true
}

// argsFor returns the positional arguments of p when p is below the
// private path.
func (r *Route) argsFor(p string) ([]string, bool) {
	var rest string
	switch {
	case r.private == "/":
		rest = p
	case p == r.private:
		rest = ""
	case strings.HasPrefix(p, r.private+"/"):
		rest = p[len(r.private):]
	default:
		return nil, false
	}

	rest = strings.Trim(rest, "/")
	if rest == "" {
		return nil, true
	}
	return strings.Split(rest, "/"), true
}

// --- Matchers ---

// addMatcher adds a matcher to the route.
func (r *Route) addMatcher(m Matcher) *Route {
	if r.err == nil {
		r.matchers = append(r.matchers, m)
	}
	return r
}

// Methods adds a method matcher to the route. Methods are matched against
// the request method token defined in RFC 7231 Section 4.
// Calling Methods multiple times replaces the previous method matcher.
func (r *Route) Methods(methods ...string) *Route {
	for i, m := range methods {
		methods[i] = strings.ToUpper(m)
	}
	// Remove existing method matchers to allow replacing via chained calls.
	filtered := r.matchers[:0]
	for _, m := range r.matchers {
		if _, ok := m.(methodMatcher); !ok {
			filtered = append(filtered, m)
		}
	}
	r.matchers = filtered
	return r.addMatcher(methodMatcher(methods))
}

// Headers adds a matcher for request headers given as name/value pairs.
// Names are case-insensitive per RFC 7230 Section 3.2. An empty value
// only requires the header to be present.
func (r *Route) Headers(pairs ...string) *Route {
	if r.err != nil {
		return r
	}
	want, err := headerPairs(pairs...)
	if err != nil {
		r.err = err
		return r
	}
	return r.addMatcher(headerMatcher(want))
}

// Args restricts the route to requests with exactly n positional
// arguments. A negative n accepts any number.
func (r *Route) Args(n int) *Route {
	if n < 0 {
		return r
	}
	return r.addMatcher(argsMatcher(n))
}

// MatcherFunc adds a custom matcher function to the route.
func (r *Route) MatcherFunc(f MatcherFunc) *Route {
	return r.addMatcher(f)
}

// --- Responses ---

// Handler sets a handler for the route.
func (r *Route) Handler(handler http.Handler) *Route {
	if r.err == nil {
		r.responder = handlerResponder{h: handler}
	}
	return r
}

// HandlerFunc sets a handler function for the route.
func (r *Route) HandlerFunc(f func(http.ResponseWriter, *http.Request)) *Route {
	return r.Handler(http.HandlerFunc(f))
}

// Responder sets a responder for the route. Errors it returns are passed
// to the router's ErrorHandler.
func (r *Route) Responder(resp Responder) *Route {
	if r.err == nil {
		r.responder = resp
	}
	return r
}

// Decorate attaches a capability to the route: d is appended to the
// matchers and becomes the route's responder. The route keeps its
// namespace, action and previously added matchers.
func (r *Route) Decorate(d Decorator) *Route {
	if d == nil {
		r.err = errors.New("mux: decorator must not be nil")
		return r
	}
	return r.addMatcher(d).Responder(d)
}

// GetResponder returns the responder for the route, if any.
func (r *Route) GetResponder() Responder {
	return r.responder
}

// --- Naming ---

// Name sets the name for the route.
// Returns an error if the name was already used.
func (r *Route) Name(name string) *Route {
	if r.name != "" {
		r.err = fmt.Errorf("mux: route already has name %q, can't set %q", r.name, name)
		return r
	}
	if r.err == nil {
		if _, exists := r.router.namedRoutes[name]; exists {
			r.err = fmt.Errorf("mux: route name %q already in use", name)
			return r
		}
		r.name = name
		r.router.namedRoutes[name] = r
	}
	return r
}

// --- Inspection ---

// GetName returns the name for the route, if any.
func (r *Route) GetName() string {
	return r.name
}

// GetNamespace returns the namespace the route was registered in.
func (r *Route) GetNamespace() string {
	return r.namespace
}

// GetAction returns the action name of the route.
func (r *Route) GetAction() string {
	return r.action
}

// GetPrivatePath returns the route's private path.
func (r *Route) GetPrivatePath() string {
	return r.private
}

// GetMethods returns the methods the route matches against.
func (r *Route) GetMethods() ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, m := range r.matchers {
		if methods, ok := m.(methodMatcher); ok {
			return []string(methods), nil
		}
	}
	return nil, errors.New("mux: route doesn't have methods")
}

// GetError returns any error that was set on the route.
func (r *Route) GetError() error {
	return r.err
}

// --- Internal matchers ---

// methodMatcher matches the request method token (RFC 7231 Section 4)
// against a list of allowed methods.
type methodMatcher []string

func (m methodMatcher) Match(r *http.Request, _ *RouteMatch) bool {
	return slices.Contains(m, r.Method)
}

// headerMatcher matches request headers against expected values.
// Header names are case-insensitive per RFC 7230 Section 3.2.
type headerMatcher map[string]string

func (m headerMatcher) Match(r *http.Request, _ *RouteMatch) bool {
	return hasHeaders(m, r.Header)
}

// argsMatcher matches an exact number of positional arguments.
type argsMatcher int

func (n argsMatcher) Match(_ *http.Request, match *RouteMatch) bool {
	return len(match.Args) == int(n)
}
