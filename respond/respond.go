// Package respond builds HTTP responses for files matched by the resolve
// package.
//
// Open opens a resolved file and computes its metadata headers:
//
//	resp, err := respond.Open(r.Context(), resolution.Path, "")
//	if err != nil {
//	    return err // the file vanished or became unreadable after the match
//	}
//	return resp.WriteTo(w, r)
//
// Content-Type comes from an explicit override when set, otherwise from
// the file extension through the mime package, falling back to
// application/octet-stream. Content-Length is the size reported by the
// filesystem and Last-Modified is the modification time as an HTTP date.
//
// Range and conditional requests are not handled.
package respond

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// DefaultContentType is used when neither an override nor the extension
// table yields a type.
const DefaultContentType = "application/octet-stream"

// ErrRace is matched by errors returned from Open when a file that was
// found during matching can no longer be opened or read.
var ErrRace = errors.New("respond: matched file is no longer available")

// ErrStream is matched by errors returned from WriteTo after the status
// line was written. No other response can be sent for the request.
var ErrStream = errors.New("respond: response stream interrupted")

// RaceError reports a failure to open or stat a file after it matched.
type RaceError struct {
	Path string
	Err  error
}

func (e *RaceError) Error() string {
	return fmt.Sprintf("respond: open %s after match: %v", e.Path, e.Err)
}

// Unwrap returns both ErrRace and the underlying cause.
func (e *RaceError) Unwrap() []error {
	return []error{ErrRace, e.Err}
}

// ContentType returns override when it is non-empty, otherwise the type
// registered for the extension of path, otherwise DefaultContentType.
func ContentType(path, override string) string {
	if override != "" {
		return override
	}

	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}

	return DefaultContentType
}

// Response is an open file ready to be written to a client. The caller
// owns Body and must call Close (WriteTo does so).
type Response struct {
	Status int
	Header http.Header
	Body   io.ReadCloser

	// RealPath is the absolute, symlink-resolved location of the file.
	// It is suitable as a sendfile style transport hint.
	RealPath string

	Size    int64
	ModTime time.Time

	closeOnce sync.Once
	closeErr  error
}

// Open opens path and builds a 200 response for it. The context is
// checked before the file is opened.
//
// Errors from opening or reading metadata are returned as *RaceError.
func Open(ctx context.Context, path, contentTypeOverride string) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &RaceError{Path: path, Err: err}
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &RaceError{Path: path, Err: err}
	}

	if !info.Mode().IsRegular() {
		f.Close()
		return nil, &RaceError{Path: path, Err: fmt.Errorf("%s is not a regular file", path)}
	}

	realPath, err := realPath(path)
	if err != nil {
		f.Close()
		return nil, &RaceError{Path: path, Err: err}
	}

	header := make(http.Header, 3)
	header.Set("Content-Type", ContentType(path, contentTypeOverride))
	header.Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	header.Set("Last-Modified", info.ModTime().UTC().Format(http.TimeFormat))

	return &Response{
		Status:   http.StatusOK,
		Header:   header,
		Body:     f,
		RealPath: realPath,
		Size:     info.Size(),
		ModTime:  info.ModTime(),
	}, nil
}

func realPath(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", err
	}
	return filepath.Abs(resolved)
}

// Close releases the file. It is safe to call more than once.
func (r *Response) Close() error {
	r.closeOnce.Do(func() {
		if r.Body != nil {
			r.closeErr = r.Body.Close()
		}
	})
	return r.closeErr
}

// WriteTo copies the headers and status to w and streams the body. The
// body is skipped for HEAD requests. The file is closed before WriteTo
// returns, including when the request context is canceled mid-stream.
func (r *Response) WriteTo(w http.ResponseWriter, req *http.Request) error {
	defer r.Close()

	dst := w.Header()
	for k, v := range r.Header {
		dst[k] = v
	}
	w.WriteHeader(r.Status)

	if req.Method == http.MethodHead || r.Body == nil {
		return nil
	}

	if _, err := io.Copy(w, &ctxReader{ctx: req.Context(), r: r.Body}); err != nil {
		return fmt.Errorf("%w: %w", ErrStream, err)
	}
	return nil
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
