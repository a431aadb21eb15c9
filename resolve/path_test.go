package resolve

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnsafe(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want bool
	}{
		{name: "nil args", args: nil, want: false},
		{name: "empty args", args: []string{}, want: false},
		{name: "plain args", args: []string{"a", "b.txt"}, want: false},
		{name: "parent dir", args: []string{"a", "..", "b"}, want: true},
		{name: "parent dir only", args: []string{".."}, want: true},
		{name: "substring is not rejected", args: []string{"..a", "a..", "..."}, want: false},
		{name: "embedded slashes are not decomposed", args: []string{"a/../b"}, want: false},
		{name: "current dir is not rejected", args: []string{"."}, want: false},
		{name: "empty segment is not rejected", args: []string{""}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Unsafe(tt.args))
		})
	}
}

func TestModeOf(t *testing.T) {
	assert.Equal(t, ModeAbsolute, ModeOf([]string{"", "a"}))
	assert.Equal(t, ModeAbsolute, ModeOf([]string{""}))
	assert.Equal(t, ModeRelative, ModeOf([]string{"a", ""}))
	assert.Equal(t, ModeRelative, ModeOf(nil))

	for _, raw := range []string{"/x", "/:namespace/*", "/", "//a"} {
		assert.Equal(t, ModeAbsolute, ModeOf(Expand(ParseTemplate(raw), Build(Request{}))), raw)
		assert.Equal(t, ModeAbsolute, ParseTemplate(raw).Mode(), raw)
	}
	for _, raw := range []string{"x", ":namespace/*", "file.txt", "a/"} {
		assert.Equal(t, ModeRelative, ModeOf(Expand(ParseTemplate(raw), Build(Request{Namespace: "ns"}))), raw)
		assert.Equal(t, ModeRelative, ParseTemplate(raw).Mode(), raw)
	}
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "absolute", ModeAbsolute.String())
	assert.Equal(t, "relative", ModeRelative.String())
	assert.Equal(t, "unknown", Mode(42).String())
}

func TestCandidate(t *testing.T) {
	root := filepath.FromSlash("/srv/www")

	t.Run("relative joins under private path", func(t *testing.T) {
		got := Candidate(root, "/basic/relative_path", ModeRelative, []string{"file.txt"})
		assert.Equal(t, filepath.Join(root, "basic", "relative_path", "file.txt"), got)
	})

	t.Run("absolute ignores private path", func(t *testing.T) {
		got := Candidate(root, "/basic/relative_path", ModeAbsolute, []string{"", "example.txt"})
		assert.Equal(t, filepath.Join(root, "example.txt"), got)
	})

	t.Run("absolute with spliced args", func(t *testing.T) {
		got := Candidate(root, "", ModeAbsolute, []string{"", "static", "a", "b", "c.txt"})
		assert.Equal(t, filepath.Join(root, "static", "a", "b", "c.txt"), got)
	})

	t.Run("relative with empty private path", func(t *testing.T) {
		got := Candidate(root, "", ModeRelative, []string{"x.txt"})
		assert.Equal(t, filepath.Join(root, "x.txt"), got)
	})

	t.Run("relative with leading empty placeholder", func(t *testing.T) {
		got := Candidate(root, "/ns/act", ModeRelative, []string{"", "x.txt"})
		assert.Equal(t, filepath.Join(root, "ns", "act", "x.txt"), got)
	})
}

func TestWithin(t *testing.T) {
	root := filepath.FromSlash("/srv/www")

	assert.True(t, within(root, root))
	assert.True(t, within(root, filepath.Join(root, "a")))
	assert.True(t, within(root, filepath.Join(root, "..a")))
	assert.False(t, within(root, filepath.FromSlash("/srv")))
	assert.False(t, within(root, filepath.FromSlash("/srv/wwwx")))
	assert.False(t, within(root, filepath.FromSlash("/etc/passwd")))
}
