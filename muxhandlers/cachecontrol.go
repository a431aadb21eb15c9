package muxhandlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vitalvas/assetroute/mux"
)

// ErrNoCacheControlRules is returned when CacheControlConfig.Rules is empty.
var ErrNoCacheControlRules = errors.New("cache control: at least one rule is required")

// ErrCacheControlNegativeMaxAge is returned when a rule has a negative MaxAge.
var ErrCacheControlNegativeMaxAge = errors.New("cache control: max age must not be negative")

// CacheControlRule selects the Cache-Control directives for successful
// responses of a route.
type CacheControlRule struct {
	// Namespace matches the namespace of the serving route and its nested
	// namespaces. Empty matches every route.
	Namespace string

	// ContentType is a case-insensitive prefix of the response
	// Content-Type (e.g. "image/"). Empty matches every type.
	ContentType string

	// MaxAge becomes the max-age directive in whole seconds.
	MaxAge time.Duration

	// Public adds the public directive; otherwise private is used.
	Public bool

	// Immutable adds the immutable directive (RFC 8246).
	Immutable bool

	// NoCache replaces every other directive with no-cache.
	NoCache bool
}

// value renders the rule as a Cache-Control header value (RFC 9111
// Section 5.2.2).
func (r CacheControlRule) value() string {
	if r.NoCache {
		return "no-cache"
	}

	directives := make([]string, 0, 3)
	if r.Public {
		directives = append(directives, "public")
	} else {
		directives = append(directives, "private")
	}
	directives = append(directives, "max-age="+strconv.FormatInt(int64(r.MaxAge/time.Second), 10))
	if r.Immutable {
		directives = append(directives, "immutable")
	}

	return strings.Join(directives, ", ")
}

// matches reports whether the rule applies to a response of namespace
// with content type ct. ct must be lower case.
func (r CacheControlRule) matches(namespace, ct string) bool {
	if r.Namespace != "" {
		ns := strings.Trim(r.Namespace, "/")
		if namespace != ns && !strings.HasPrefix(namespace, ns+"/") {
			return false
		}
	}

	return strings.HasPrefix(ct, strings.ToLower(r.ContentType))
}

// CacheControlConfig configures the CacheControl middleware behaviour.
type CacheControlConfig struct {
	// Rules is the ordered list of rules. The first matching rule wins.
	// Required; at least one must be provided.
	Rules []CacheControlRule
}

// CacheControlMiddleware returns a middleware that sets Cache-Control on
// 200 responses of matched routes. A Cache-Control header already set by
// the responder is kept.
//
// It returns ErrNoCacheControlRules if Rules is empty and
// ErrCacheControlNegativeMaxAge for a negative MaxAge.
func CacheControlMiddleware(cfg CacheControlConfig) (mux.MiddlewareFunc, error) {
	if len(cfg.Rules) == 0 {
		return nil, ErrNoCacheControlRules
	}

	rules := make([]CacheControlRule, len(cfg.Rules))
	for i, rule := range cfg.Rules {
		if rule.MaxAge < 0 {
			return nil, ErrCacheControlNegativeMaxAge
		}
		rules[i] = rule
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var namespace string
			if route := mux.CurrentRoute(r); route != nil {
				namespace = route.GetNamespace()
			}

			next.ServeHTTP(&cacheControlResponseWriter{
				ResponseWriter: w,
				rules:          rules,
				namespace:      namespace,
			}, r)
		})
	}, nil
}

// cacheControlResponseWriter picks the rule once the status and
// Content-Type are known.
type cacheControlResponseWriter struct {
	http.ResponseWriter
	rules       []CacheControlRule
	namespace   string
	wroteHeader bool
}

func (cw *cacheControlResponseWriter) WriteHeader(statusCode int) {
	if cw.wroteHeader {
		return
	}

	cw.wroteHeader = true

	h := cw.Header()
	if statusCode == http.StatusOK && h.Get("Cache-Control") == "" {
		ct := strings.ToLower(h.Get("Content-Type"))
		for _, rule := range cw.rules {
			if rule.matches(cw.namespace, ct) {
				h.Set("Cache-Control", rule.value())
				break
			}
		}
	}

	cw.ResponseWriter.WriteHeader(statusCode)
}

func (cw *cacheControlResponseWriter) Write(b []byte) (int, error) {
	if !cw.wroteHeader {
		cw.WriteHeader(http.StatusOK)
	}

	return cw.ResponseWriter.Write(b)
}

// Unwrap returns the underlying ResponseWriter for middleware compatibility.
func (cw *cacheControlResponseWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}
