package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"dot", ".", ""},
		{"root", "/", "/"},
		{"dot slash", "./", "/"},
		{"dotdot", "..", ""},
		{"dotdot slash", "../", "/"},
		{"plain file", "file.txt", "file.txt"},
		{"plain dir", "dir/", "dir/"},
		{"leading separator", "/a/b/file.txt", "a/b/file.txt"},
		{"leading separator dir", "/a/b/", "a/b/"},
		{"current dir segments", "a/./b/./c", "a/b/c"},
		{"parent dir segments", "a/b/../c", "a/c"},
		{"repeated separators", "a//b///c", "a/b/c"},
		{"mixed", "/a//./b/../c/", "a/c/"},
		{"climb above root", "../etc", "etc"},
		{"climb above root twice", "../../etc/passwd", "etc/passwd"},
		{"climb to root dir", "a/..", ""},
		{"climb to root dir spelled", "a/../", "/"},
		{"glob untouched", "dir/*.txt", "dir/*.txt"},
		{"glob with dotdot", "/dir/../other/**/*.go", "other/**/*.go"},
		{"question mark", "s?me/file", "s?me/file"},
		{"character class", "file[0-9].log", "file[0-9].log"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePath(tt.input))
		})
	}
}

// Normalizing twice must give the same result as normalizing once.
func TestNormalizePath_Idempotent(t *testing.T) {
	inputs := []string{
		"", ".", "/", "./", "..", "../",
		"a/b/c", "a/b/", "/a/../b//c/", "dir/*.txt", "../x",
	}

	for _, input := range inputs {
		once := NormalizePath(input)
		assert.Equal(t, once, NormalizePath(once), "input %q", input)
	}
}

func TestJoinPath(t *testing.T) {
	tests := []struct {
		base string
		rel  string
		want string
	}{
		{"", "file.txt", "file.txt"},
		{"dir", "file.txt", "dir/file.txt"},
		{"dir/", "file.txt", "dir/file.txt"},
		{"/", "file.txt", "file.txt"},
		{"a/b", "c/d", "a/b/c/d"},
		{"a", "sub/", "a/sub/"},
		{"a", "", "a"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, JoinPath(tt.base, tt.rel), "JoinPath(%q, %q)", tt.base, tt.rel)
	}
}

func TestParentPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"", ""},
		{"/", ""},
		{"file.txt", ""},
		{"dir/", ""},
		{"a/b", "a"},
		{"a/b/", "a"},
		{"a/b/c.txt", "a/b"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParentPath(tt.path), "ParentPath(%q)", tt.path)
	}
}

func TestRelPath(t *testing.T) {
	tests := []struct {
		prefix string
		path   string
		want   string
		ok     bool
	}{
		{"", "a/b.txt", "a/b.txt", true},
		{"a", "a/b.txt", "b.txt", true},
		{"a/", "a/b.txt", "b.txt", true},
		{"a", "a", "", true},
		{"a/b", "a/b/c/d.txt", "c/d.txt", true},
		{"a", "other/b.txt", "other/b.txt", false},
		{"a", "ab/c.txt", "ab/c.txt", false},
	}

	for _, tt := range tests {
		got, ok := RelPath(tt.prefix, tt.path)
		assert.Equal(t, tt.want, got, "RelPath(%q, %q)", tt.prefix, tt.path)
		assert.Equal(t, tt.ok, ok, "RelPath(%q, %q) ok", tt.prefix, tt.path)
	}
}

func TestEnsureDirPath(t *testing.T) {
	assert.Equal(t, "", EnsureDirPath(""))
	assert.Equal(t, "", EnsureDirPath("/"))
	assert.Equal(t, "a/", EnsureDirPath("a"))
	assert.Equal(t, "a/b/", EnsureDirPath("a/b/"))
}
