package glob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/ferry/pkg/storage"
)

func TestHasMeta(t *testing.T) {
	assert.True(t, HasMeta("*.txt"))
	assert.True(t, HasMeta("file?.log"))
	assert.True(t, HasMeta("file[0-9]"))
	assert.True(t, HasMeta("{a,b}.go"))
	assert.False(t, HasMeta("plain/path/file.txt"))
	assert.False(t, HasMeta(""))
}

func TestLiteralPrefix(t *testing.T) {
	tests := []struct {
		pattern string
		prefix  string
		isGlob  bool
	}{
		{"path/to/some/**/*.txt", "path/to/some", true},
		{"path/to/s?me/**/*.txt", "path/to", true},
		{"path/to/some/file", "", false},
		{"*.txt", "", true},
		{"dir/*.txt", "dir", true},
		{"a/b/c/*", "a/b/c", true},
		{"", "", false},
	}

	for _, tt := range tests {
		prefix, isGlob := LiteralPrefix(tt.pattern)
		assert.Equal(t, tt.prefix, prefix, "LiteralPrefix(%q)", tt.pattern)
		assert.Equal(t, tt.isGlob, isGlob, "LiteralPrefix(%q) glob flag", tt.pattern)
	}
}

func TestSplit(t *testing.T) {
	base, rest, ok := Split("src/utils/**/*.go")
	assert.True(t, ok)
	assert.Equal(t, "src/utils", base)
	assert.Equal(t, "**/*.go", rest)

	base, rest, ok = Split("no/glob/here")
	assert.False(t, ok)
	assert.Equal(t, "", base)
	assert.Equal(t, "no/glob/here", rest)
}

func TestPatternMatch(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		match   bool
	}{
		{"dir/*.txt", "dir/file.txt", true},
		{"dir/*.txt", "dir/file.log", false},
		{"dir/*.txt", "dir/sub/file.txt", false},
		{"src/**/*.rs", "src/main.rs", true},
		{"src/**/*.rs", "src/utils/helper.rs", true},
		{"src/**/*.rs", "src/utils/deep/down.rs", true},
		{"src/**/*.rs", "other/main.rs", false},
		{"file?.log", "file1.log", true},
		{"file?.log", "file10.log", false},
		{"data/{a,b}.csv", "data/a.csv", true},
		{"data/{a,b}.csv", "data/c.csv", false},
	}

	for _, tt := range tests {
		pattern, err := Compile(tt.pattern)
		require.NoError(t, err, "Compile(%q)", tt.pattern)

		assert.Equal(t, tt.match, pattern.Match(tt.path), "%q against %q", tt.pattern, tt.path)
	}
}

func TestCompileInvalid(t *testing.T) {
	_, err := Compile("broken[")
	assert.ErrorIs(t, err, storage.ErrUnexpected)
}

func TestPatternAccessors(t *testing.T) {
	pattern, err := Compile("a/b/*.go")
	require.NoError(t, err)

	assert.Equal(t, "a/b", pattern.Prefix())
	assert.Equal(t, "a/b/*.go", pattern.String())
}
