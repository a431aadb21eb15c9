package muxhandlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vitalvas/assetroute/mux"
	"github.com/vitalvas/assetroute/resolve"
)

// ErrMetricsNoRegisterer is returned when MetricsConfig.Registerer is nil.
var ErrMetricsNoRegisterer = errors.New("metrics: registerer is required")

// DefaultMetricsNamespace prefixes metric names when
// MetricsConfig.Namespace is empty.
const DefaultMetricsNamespace = "assetroute"

// MetricsConfig configures the collectors.
type MetricsConfig struct {
	// Registerer receives the collectors. Required.
	Registerer prometheus.Registerer

	// Namespace prefixes every metric name. Defaults to
	// DefaultMetricsNamespace when empty.
	Namespace string

	// Buckets are the request duration histogram buckets in seconds.
	// Defaults to prometheus.DefBuckets when empty.
	Buckets []float64
}

// Metrics records resolutions and served responses per route. The route
// label is the private path of the route.
type Metrics struct {
	resolutions *prometheus.CounterVec
	requests    *prometheus.CounterVec
	bytes       *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with
// cfg.Registerer.
//
//	reg := prometheus.NewRegistry()
//	m, err := muxhandlers.NewMetrics(muxhandlers.MetricsConfig{Registerer: reg})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	r.Use(m.Middleware())
//
// It returns ErrMetricsNoRegisterer if Registerer is nil.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if cfg.Registerer == nil {
		return nil, ErrMetricsNoRegisterer
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = DefaultMetricsNamespace
	}

	buckets := cfg.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	m := &Metrics{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "File route resolutions by route and reason.",
		}, []string{"route", "reason"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Responses of matched routes by route and status code.",
		}, []string{"route", "code"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "response_bytes_total",
			Help:      "Response body bytes written by route.",
		}, []string{"route"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time spent serving matched routes.",
			Buckets:   buckets,
		}, []string{"route"}),
	}

	for _, c := range []prometheus.Collector{m.resolutions, m.requests, m.bytes, m.duration} {
		if err := cfg.Registerer.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// ObserveResolution counts a resolution. Its signature matches
// FileRouteConfig.ObserveFunc.
func (m *Metrics) ObserveResolution(_ *http.Request, route *mux.Route, res resolve.Resolution) {
	m.resolutions.WithLabelValues(routeLabel(route), res.Reason.String()).Inc()
}

// Middleware returns a middleware recording status, size and duration of
// matched routes.
func (m *Metrics) Middleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			mw := &metricsResponseWriter{ResponseWriter: w}

			next.ServeHTTP(mw, r)

			route := routeLabel(mux.CurrentRoute(r))
			status := mw.status
			if status == 0 {
				status = http.StatusOK
			}

			m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
			m.bytes.WithLabelValues(route).Add(float64(mw.written))
			m.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		})
	}
}

func routeLabel(route *mux.Route) string {
	if route == nil {
		return ""
	}
	return route.GetPrivatePath()
}

type metricsResponseWriter struct {
	http.ResponseWriter
	status  int
	written int64
}

func (mw *metricsResponseWriter) WriteHeader(statusCode int) {
	if mw.status == 0 {
		mw.status = statusCode
	}
	mw.ResponseWriter.WriteHeader(statusCode)
}

func (mw *metricsResponseWriter) Write(b []byte) (int, error) {
	if mw.status == 0 {
		mw.status = http.StatusOK
	}
	n, err := mw.ResponseWriter.Write(b)
	mw.written += int64(n)
	return n, err
}

// Unwrap returns the underlying ResponseWriter for middleware compatibility.
func (mw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return mw.ResponseWriter
}
