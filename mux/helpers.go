package mux

import (
	"fmt"
	"net/http"
	"path"
	"slices"
	"sort"
)

var (
	defaultNotFoundHandler         = http.NotFoundHandler()
	defaultMethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
)

// cleanPath returns p rooted at "/" with . and .. elements removed per
// RFC 3986 Section 5.2.4. A trailing slash is kept.
func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	np := path.Clean(p)
	if p[len(p)-1] == '/' && np != "/" {
		np += "/"
	}
	return np
}

// headerPairs builds the expected request headers from name/value pairs.
// Names are canonicalised per RFC 7230 Section 3.2. An empty value only
// requires the header to be present.
func headerPairs(pairs ...string) (map[string]string, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("mux: header pairs must be name/value, got %d values", len(pairs))
	}
	want := make(map[string]string, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		want[http.CanonicalHeaderKey(pairs[i])] = pairs[i+1]
	}
	return want, nil
}

// hasHeaders reports whether got carries every header of want.
func hasHeaders(want map[string]string, got http.Header) bool {
	for name, value := range want {
		values, ok := got[name]
		if !ok {
			return false
		}
		if value != "" && !slices.Contains(values, value) {
			return false
		}
	}
	return true
}

// allowedMethods returns the sorted, deduplicated methods collected from
// routes that matched everything but the request method. It fills the
// Allow header of 405 responses (RFC 7231 Sections 6.5.5 and 7.4.1).
func allowedMethods(collected []string) []string {
	allowed := make([]string, 0, len(collected))
	for _, method := range collected {
		if !slices.Contains(allowed, method) {
			allowed = append(allowed, method)
		}
	}
	sort.Strings(allowed)
	return allowed
}

// methodNotAllowed writes a bare 405. The Allow header is set by
// Router.ServeHTTP before the handler runs.
func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusMethodNotAllowed)
}

// defaultErrorHandler replies with 500 without exposing the error text.
func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, _ error) {
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
