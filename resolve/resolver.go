package resolve

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrEmptyRoot is returned by New when the root directory is empty.
var ErrEmptyRoot = errors.New("resolve: root directory must not be empty")

// StatFunc returns file information for a path, following symlinks.
type StatFunc func(name string) (fs.FileInfo, error)

// Reason describes why a resolution matched or missed.
type Reason int

const (
	ReasonMatched Reason = iota
	ReasonUnsafeArgs
	ReasonEscapesRoot
	ReasonNotFound
	ReasonNotRegular
	ReasonStatFailed
	ReasonCanceled
)

var reasonNames = [...]string{
	ReasonMatched:     "matched",
	ReasonUnsafeArgs:  "unsafe arguments",
	ReasonEscapesRoot: "escapes root",
	ReasonNotFound:    "not found",
	ReasonNotRegular:  "not a regular file",
	ReasonStatFailed:  "stat failed",
	ReasonCanceled:    "canceled",
}

func (r Reason) String() string {
	if r >= 0 && int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// Route is the read-only per-route configuration consumed by Resolve.
type Route struct {
	// Template describes how to build the candidate path. When zero,
	// DefaultTemplate is used.
	Template Template

	// ShowDebugging attaches Diagnostics to every Resolution.
	ShowDebugging bool
}

// Diagnostics is the detail of a single resolution attempt. It is only
// populated for routes with ShowDebugging enabled.
type Diagnostics struct {
	Template  string   `json:"template"`
	Expanded  []string `json:"expanded,omitempty"`
	Mode      string   `json:"mode,omitempty"`
	Candidate string   `json:"candidate,omitempty"`
	Reason    string   `json:"reason"`
	StatErr   string   `json:"stat_error,omitempty"`
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	// Matched is true when Path names an existing regular file.
	Matched bool

	// Path is the resolved file path. Empty unless Matched.
	Path string

	Reason Reason

	// Debug is non-nil only when the route enables debugging.
	Debug *Diagnostics
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithStatFunc replaces os.Stat as the existence check.
func WithStatFunc(fn StatFunc) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.stat = fn
		}
	}
}

// Resolver resolves templates below a fixed root directory.
type Resolver struct {
	root string
	stat StatFunc
}

// New returns a Resolver rooted at root. The root is made absolute once;
// it is not required to exist.
func New(root string, opts ...Option) (*Resolver, error) {
	if root == "" {
		return nil, ErrEmptyRoot
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve: invalid root %q: %w", root, err)
	}

	r := &Resolver{
		root: abs,
		stat: os.Stat,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Root returns the absolute root directory.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve computes the candidate path for req and checks that it names a
// regular file. It never fails: every problem is reported as a miss.
func (r *Resolver) Resolve(ctx context.Context, route Route, req Request) Resolution {
	tpl := route.Template
	if tpl.IsZero() {
		tpl = DefaultTemplate
	}

	var diag *Diagnostics
	if route.ShowDebugging {
		diag = &Diagnostics{Template: tpl.String()}
	}

	miss := func(reason Reason) Resolution {
		if diag != nil {
			diag.Reason = reason.String()
		}
		return Resolution{Reason: reason, Debug: diag}
	}

	if Unsafe(req.Args) {
		return miss(ReasonUnsafeArgs)
	}

	mode := tpl.Mode()
	expanded := Expand(tpl, Build(req))
	candidate := Candidate(r.root, req.PrivatePath, mode, expanded)
	if diag != nil {
		diag.Expanded = expanded
		diag.Mode = mode.String()
		diag.Candidate = candidate
	}

	if !within(r.root, candidate) {
		return miss(ReasonEscapesRoot)
	}

	if ctx.Err() != nil {
		return miss(ReasonCanceled)
	}

	info, err := r.stat(candidate)
	if err != nil {
		if diag != nil {
			diag.StatErr = err.Error()
		}
		if errors.Is(err, fs.ErrNotExist) {
			return miss(ReasonNotFound)
		}
		return miss(ReasonStatFailed)
	}

	if !info.Mode().IsRegular() {
		return miss(ReasonNotRegular)
	}

	if diag != nil {
		diag.Reason = ReasonMatched.String()
	}

	return Resolution{
		Matched: true,
		Path:    candidate,
		Reason:  ReasonMatched,
		Debug:   diag,
	}
}
