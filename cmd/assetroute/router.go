package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vitalvas/assetroute/config"
	"github.com/vitalvas/assetroute/mux"
	"github.com/vitalvas/assetroute/muxhandlers"
	"github.com/vitalvas/assetroute/resolve"
)

type routerOptions struct {
	// debugAll enables diagnostics on every file route.
	debugAll bool

	// observe is called after every resolution, next to the metrics.
	observe func(r *http.Request, route *mux.Route, res resolve.Resolution)
}

// buildRouter wires the configured file routes, the metrics endpoint and
// the middleware chain into a router.
func buildRouter(cfg *config.Config, logger *slog.Logger, reg *prometheus.Registry, opts routerOptions) (*mux.Router, error) {
	resolver, err := resolve.New(cfg.Root)
	if err != nil {
		return nil, err
	}

	metrics, err := muxhandlers.NewMetrics(muxhandlers.MetricsConfig{Registerer: reg})
	if err != nil {
		return nil, err
	}

	observe := metrics.ObserveResolution
	if opts.observe != nil {
		observe = func(r *http.Request, route *mux.Route, res resolve.Resolution) {
			metrics.ObserveResolution(r, route, res)
			opts.observe(r, route, res)
		}
	}

	r := mux.NewRouter()
	r.ErrorHandler = muxhandlers.ErrorHandler(logger)

	metricsRoute := r.Action(cfg.MetricsPath).
		Args(0).
		Methods(http.MethodGet).
		Handler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	if err := metricsRoute.GetError(); err != nil {
		return nil, fmt.Errorf("metrics route: %w", err)
	}

	for i, rc := range cfg.Routes {
		fr, err := muxhandlers.FileRoute(resolver, muxhandlers.FileRouteConfig{
			Template:      rc.Template,
			ContentType:   rc.ContentType,
			ShowDebugging: rc.Debug || opts.debugAll,
			DebugFunc: func(r *http.Request, res resolve.Resolution) {
				logger.DebugContext(r.Context(), "file route missed",
					slog.String("path", r.URL.Path),
					slog.String("reason", res.Reason.String()),
					slog.Any("diagnostics", res.Debug),
					muxhandlers.RequestIDAttr(r.Context()),
				)
			},
			ObserveFunc: observe,
		})
		if err != nil {
			return nil, fmt.Errorf("route %d: %w", i, err)
		}

		route := r.Namespace(rc.Namespace).Action(rc.Action).Methods(rc.Methods...)
		if rc.Args != nil {
			route.Args(*rc.Args)
		}
		if len(rc.Headers) > 0 {
			route.Headers(headerPairs(rc.Headers)...)
		}
		if rc.Name != "" {
			route.Name(rc.Name)
		}
		route.Decorate(fr)

		if err := route.GetError(); err != nil {
			return nil, fmt.Errorf("route %d: %w", i, err)
		}
	}

	requestID, err := muxhandlers.RequestIDMiddleware(muxhandlers.RequestIDConfig{
		HeaderName:    cfg.RequestID.Header,
		Version:       cfg.RequestID.Version,
		TrustIncoming: cfg.RequestID.TrustIncoming,
	})
	if err != nil {
		return nil, err
	}

	r.Use(
		muxhandlers.RecoveryMiddleware(muxhandlers.RecoveryConfig{Logger: logger}),
		requestID,
		metrics.Middleware(),
	)

	if len(cfg.Cache) > 0 {
		rules := make([]muxhandlers.CacheControlRule, len(cfg.Cache))
		for i, rule := range cfg.Cache {
			rules[i] = muxhandlers.CacheControlRule{
				Namespace:   rule.Namespace,
				ContentType: rule.ContentType,
				MaxAge:      rule.MaxAge,
				Public:      rule.Public,
				Immutable:   rule.Immutable,
				NoCache:     rule.NoCache,
			}
		}

		cache, err := muxhandlers.CacheControlMiddleware(muxhandlers.CacheControlConfig{Rules: rules})
		if err != nil {
			return nil, err
		}
		r.Use(cache)
	}

	if sf := cfg.Sendfile; sf != nil {
		sendfile, err := muxhandlers.SendfileMiddleware(muxhandlers.SendfileConfig{
			Header: sf.Header,
			Root:   sf.Root,
			Prefix: sf.Prefix,
		})
		if err != nil {
			return nil, err
		}
		r.Use(sendfile)
	}

	return r, nil
}

// headerPairs flattens headers into name/value pairs ordered by name.
func headerPairs(headers map[string]string) []string {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, 2*len(names))
	for _, name := range names {
		pairs = append(pairs, name, headers[name])
	}
	return pairs
}
