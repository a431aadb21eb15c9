package resolve

import (
	"path/filepath"
	"strings"
)

// ParentDir is the argument value rejected by Unsafe.
const ParentDir = ".."

// Unsafe reports whether any argument is exactly "..". Arguments are not
// split on embedded slashes.
func Unsafe(args []string) bool {
	for _, a := range args {
		if a == ParentDir {
			return true
		}
	}
	return false
}

// Mode selects the base a candidate path is built from.
type Mode int

const (
	// ModeRelative joins the expanded segments under the route's private path.
	ModeRelative Mode = iota
	// ModeAbsolute joins the expanded segments directly under the root.
	ModeAbsolute
)

func (m Mode) String() string {
	switch m {
	case ModeAbsolute:
		return "absolute"
	case ModeRelative:
		return "relative"
	default:
		return "unknown"
	}
}

// ModeOf returns ModeAbsolute when the first expanded segment is empty.
// For expansions of a parsed template it agrees with Template.Mode unless
// the template starts with a placeholder that expands to an empty value.
func ModeOf(expanded []string) Mode {
	if len(expanded) > 0 && expanded[0] == "" {
		return ModeAbsolute
	}
	return ModeRelative
}

// Candidate joins expanded under root. In absolute mode the leading empty
// segment is dropped; in relative mode the private path segments come
// first. Segment values are passed verbatim to filepath.Join.
func Candidate(root, privatePath string, mode Mode, expanded []string) string {
	var segs []string
	switch mode {
	case ModeAbsolute:
		if len(expanded) > 0 && expanded[0] == "" {
			expanded = expanded[1:]
		}
		segs = make([]string, 0, 1+len(expanded))
		segs = append(segs, root)
		segs = append(segs, expanded...)
	default:
		base := strings.Split(privatePath, "/")
		segs = make([]string, 0, 1+len(base)+len(expanded))
		segs = append(segs, root)
		segs = append(segs, base...)
		segs = append(segs, expanded...)
	}

	return filepath.Join(segs...)
}

// within reports whether path is root or below it. Both must be clean.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ParentDir && !strings.HasPrefix(rel, ParentDir+string(filepath.Separator))
}
