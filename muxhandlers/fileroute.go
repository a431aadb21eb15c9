package muxhandlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vitalvas/assetroute/mux"
	"github.com/vitalvas/assetroute/resolve"
	"github.com/vitalvas/assetroute/respond"
)

var (
	// ErrFileRouteNoResolver is returned by FileRoute when no resolver is given.
	ErrFileRouteNoResolver = errors.New("muxhandlers: file route requires a resolver")

	// ErrFileRouteNoResolution is returned by Respond when the request
	// carries no matched resolution.
	ErrFileRouteNoResolution = errors.New("muxhandlers: request has no matched resolution")
)

// DefaultDebugHeader carries JSON diagnostics on responses of routes with
// debugging enabled.
const DefaultDebugHeader = "X-Resolve-Debug"

type resolutionKey struct{}

// FileRouteConfig configures a file route.
type FileRouteConfig struct {
	// Template describes the file location relative to the resolver root.
	// Defaults to resolve.DefaultTemplate when empty.
	Template string

	// ContentType overrides the content type inferred from the extension.
	ContentType string

	// ShowDebugging attaches diagnostics to resolutions, exposes them on
	// responses in DebugHeader and reports misses to DebugFunc.
	ShowDebugging bool

	// DebugHeader defaults to DefaultDebugHeader when empty.
	DebugHeader string

	// DebugFunc is an optional callback invoked for every miss of a route
	// with ShowDebugging enabled.
	DebugFunc func(r *http.Request, res resolve.Resolution)

	// ObserveFunc is an optional callback invoked after every resolution,
	// matched or not.
	ObserveFunc func(r *http.Request, route *mux.Route, res resolve.Resolution)
}

// FileRouteDecorator is a mux.Decorator that claims a request only when
// the configured template resolves to a regular file, and then serves it.
type FileRouteDecorator struct {
	resolver    *resolve.Resolver
	route       resolve.Route
	contentType string
	debugHeader string
	debugFunc   func(r *http.Request, res resolve.Resolution)
	observeFunc func(r *http.Request, route *mux.Route, res resolve.Resolution)
}

// FileRoute returns a decorator serving files below the resolver root.
//
//	fr, err := muxhandlers.FileRoute(res, muxhandlers.FileRouteConfig{
//	    Template: ":namespace/*",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	r.Namespace("static").Action("files").Decorate(fr)
func FileRoute(res *resolve.Resolver, cfg FileRouteConfig) (*FileRouteDecorator, error) {
	if res == nil {
		return nil, ErrFileRouteNoResolver
	}

	debugHeader := cfg.DebugHeader
	if debugHeader == "" {
		debugHeader = DefaultDebugHeader
	}

	route := resolve.Route{ShowDebugging: cfg.ShowDebugging}
	if cfg.Template != "" {
		route.Template = resolve.ParseTemplate(cfg.Template)
	}

	return &FileRouteDecorator{
		resolver:    res,
		route:       route,
		contentType: cfg.ContentType,
		debugHeader: debugHeader,
		debugFunc:   cfg.DebugFunc,
		observeFunc: cfg.ObserveFunc,
	}, nil
}

// Match resolves the request against the route being matched and
// publishes the resolution for Respond.
func (d *FileRouteDecorator) Match(r *http.Request, match *mux.RouteMatch) bool {
	req := resolve.Request{Args: match.Args}
	if route := match.Route; route != nil {
		req.Namespace = route.GetNamespace()
		req.PrivatePath = route.GetPrivatePath()
		req.Action = route.GetAction()
	}

	res := d.resolver.Resolve(r.Context(), d.route, req)

	if d.observeFunc != nil {
		d.observeFunc(r, match.Route, res)
	}

	if !res.Matched {
		if d.route.ShowDebugging && d.debugFunc != nil {
			d.debugFunc(r, res)
		}
		return false
	}

	match.Set(resolutionKey{}, res)

	return true
}

// Respond opens the resolved file and writes it to w. When the request
// passed through SendfileMiddleware the body is replaced by a transport
// hint.
func (d *FileRouteDecorator) Respond(w http.ResponseWriter, r *http.Request) error {
	res, ok := ResolutionFromRequest(r)
	if !ok || !res.Matched {
		return ErrFileRouteNoResolution
	}

	resp, err := respond.Open(r.Context(), res.Path, d.contentType)
	if err != nil {
		return err
	}

	if d.route.ShowDebugging && res.Debug != nil {
		if data, err := json.Marshal(res.Debug); err == nil {
			resp.Header.Set(d.debugHeader, string(data))
		}
	}

	if hint, ok := sendfileFromRequest(r); ok {
		return hint.write(w, r, resp)
	}

	return resp.WriteTo(w, r)
}

// ResolutionFromRequest returns the resolution published by a file route
// for the current request.
func ResolutionFromRequest(r *http.Request) (resolve.Resolution, bool) {
	v, ok := mux.Value(r, resolutionKey{})
	if !ok {
		return resolve.Resolution{}, false
	}

	res, ok := v.(resolve.Resolution)

	return res, ok
}
