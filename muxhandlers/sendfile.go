package muxhandlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/vitalvas/assetroute/mux"
	"github.com/vitalvas/assetroute/respond"
)

// ErrSendfilePrefixWithoutRoot is returned when SendfileConfig.Prefix is
// set without SendfileConfig.Root.
var ErrSendfilePrefixWithoutRoot = errors.New("sendfile: prefix requires a root")

// DefaultSendfileHeader is the header used when SendfileConfig.Header is empty.
const DefaultSendfileHeader = "X-Sendfile"

// SendfileConfig configures the Sendfile middleware behaviour.
type SendfileConfig struct {
	// Header names the transport hint header, e.g. "X-Sendfile" for
	// Apache and lighttpd or "X-Accel-Redirect" for nginx.
	// Defaults to DefaultSendfileHeader when empty.
	Header string

	// Root is stripped from the real file path before Prefix is added.
	// Files outside Root are streamed normally. When empty the absolute
	// real path is sent.
	Root string

	// Prefix is prepended to the path relative to Root, e.g. the internal
	// location "/protected" of an nginx X-Accel-Redirect setup.
	Prefix string
}

type sendfileKey struct{}

type sendfileHint struct {
	header string
	root   string
	prefix string
}

// SendfileMiddleware returns a middleware that lets a front proxy deliver
// files served by FileRoute. The response carries the file metadata
// headers and the hint header instead of the body.
//
// It returns ErrSendfilePrefixWithoutRoot if Prefix is set without Root.
func SendfileMiddleware(cfg SendfileConfig) (mux.MiddlewareFunc, error) {
	if cfg.Prefix != "" && cfg.Root == "" {
		return nil, ErrSendfilePrefixWithoutRoot
	}

	hint := &sendfileHint{
		header: cfg.Header,
		prefix: cfg.Prefix,
	}
	if hint.header == "" {
		hint.header = DefaultSendfileHeader
	}

	if cfg.Root != "" {
		root, err := canonicalRoot(cfg.Root)
		if err != nil {
			return nil, fmt.Errorf("sendfile: invalid root %q: %w", cfg.Root, err)
		}
		hint.root = root
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sendfileKey{}, hint)))
		})
	}, nil
}

// canonicalRoot returns root in the form respond reports real paths.
func canonicalRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

func sendfileFromRequest(r *http.Request) (*sendfileHint, bool) {
	hint, ok := r.Context().Value(sendfileKey{}).(*sendfileHint)
	return hint, ok
}

// location maps realPath to the hint header value.
func (h *sendfileHint) location(realPath string) (string, bool) {
	if h.root == "" {
		return realPath, true
	}

	rel, err := filepath.Rel(h.root, realPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}

	return path.Join("/", h.prefix, filepath.ToSlash(rel)), true
}

func (h *sendfileHint) write(w http.ResponseWriter, r *http.Request, resp *respond.Response) error {
	loc, ok := h.location(resp.RealPath)
	if !ok {
		return resp.WriteTo(w, r)
	}

	defer resp.Close()

	dst := w.Header()
	for k, v := range resp.Header {
		dst[k] = v
	}
	dst.Del("Content-Length")
	dst.Set(h.header, loc)
	w.WriteHeader(resp.Status)

	return nil
}
