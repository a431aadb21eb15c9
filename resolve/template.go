package resolve

import "strings"

// Placeholder keys recognised in templates. Matching is exact per segment.
const (
	KeyNamespace      = ":namespace"
	KeyPrivatePath    = ":privatepath"
	KeyPrivatePathAlt = ":private_path"
	KeyAction         = ":actionname"
	KeyActionAlt      = ":action_name"
	KeyArgs           = ":args"
	KeyArgsWildcard   = "*"
)

const templateSeparator = "/"

// DefaultTemplate serves all positional arguments below the route's
// private path, rooted at the resolver root.
var DefaultTemplate = ParseTemplate("/" + KeyPrivatePath + "/" + KeyArgsWildcard)

// Template is a parsed path template. Templates are immutable once parsed.
type Template struct {
	raw      string
	segments []string
}

// IsZero reports whether t was never parsed.
func (t Template) IsZero() bool {
	return t.segments == nil
}

// ParseTemplate splits raw on "/" into segments. It never fails: segments
// that are not placeholders are kept as literals.
func ParseTemplate(raw string) Template {
	return Template{
		raw:      raw,
		segments: strings.Split(raw, templateSeparator),
	}
}

// String returns the template as configured.
func (t Template) String() string {
	return t.raw
}

// Segments returns a copy of the template segments.
func (t Template) Segments() []string {
	out := make([]string, len(t.segments))
	copy(out, t.segments)
	return out
}

// IsAbsolute reports whether the template starts with "/".
func (t Template) IsAbsolute() bool {
	return strings.HasPrefix(t.raw, templateSeparator)
}

// Mode returns ModeAbsolute for templates starting with "/" and
// ModeRelative otherwise.
func (t Template) Mode() Mode {
	if t.IsAbsolute() {
		return ModeAbsolute
	}
	return ModeRelative
}

// Substitutions maps placeholder keys to their values. A single value is
// stored as a one element slice; sequence values are spliced in place.
type Substitutions map[string][]string

// Set stores a single string value for key.
func (s Substitutions) Set(key, value string) {
	s[key] = []string{value}
}

// SetList stores a sequence value for key. The slice is copied.
func (s Substitutions) SetList(key string, values []string) {
	s[key] = append([]string(nil), values...)
}

// Request holds the facts about an incoming request that templates may
// reference.
type Request struct {
	Namespace   string
	PrivatePath string
	Action      string
	Args        []string
}

// Build returns the substitutions for req with every alias filled in.
func Build(req Request) Substitutions {
	subs := make(Substitutions, 7)
	subs.Set(KeyNamespace, req.Namespace)
	subs.Set(KeyPrivatePath, req.PrivatePath)
	subs.Set(KeyPrivatePathAlt, req.PrivatePath)
	subs.Set(KeyAction, req.Action)
	subs.Set(KeyActionAlt, req.Action)
	subs.SetList(KeyArgs, req.Args)
	subs.SetList(KeyArgsWildcard, req.Args)
	return subs
}

// Expand substitutes placeholders in tpl. Segments with no entry in subs
// are kept verbatim. The first element is empty when tpl is absolute.
func Expand(tpl Template, subs Substitutions) []string {
	out := make([]string, 0, len(tpl.segments))
	for _, seg := range tpl.segments {
		if values, ok := subs[seg]; ok {
			out = append(out, values...)
			continue
		}
		out = append(out, seg)
	}
	return out
}
