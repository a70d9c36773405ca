// Package glob analyzes and matches glob patterns over storage paths.
//
// A glob pattern is a path string containing any of the metacharacters '*',
// '?', '[' or '{'. Patterns are matched against complete entry paths, with
// '**' crossing separator boundaries. The analyzer side of the package
// computes the literal prefix of a pattern, which lets listings be scoped to
// a prefix-rooted recursive scan instead of a full one.
package glob

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/marmos91/ferry/pkg/storage"
)

// HasMeta reports whether s contains any glob metacharacter.
func HasMeta(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}

// LiteralPrefix returns the longest leading sequence of path segments in
// pattern containing no glob metacharacters, and whether the pattern
// actually contains a glob segment. A pattern without metacharacters has no
// literal prefix in this sense — it is a plain path.
//
//	LiteralPrefix("path/to/some/**/*.txt")  // "path/to/some", true
//	LiteralPrefix("path/to/s?me/**/*.txt")  // "path/to", true
//	LiteralPrefix("path/to/some/file")      // "", false
func LiteralPrefix(pattern string) (string, bool) {
	prefix, _, ok := Split(pattern)
	return prefix, ok
}

// Split separates a pattern into its literal prefix and the remaining
// pattern, starting at the first segment that contains a metacharacter.
// Returns ok=false when the pattern has no glob segment at all, in which
// case base is empty and rest is the whole input.
func Split(pattern string) (base, rest string, ok bool) {
	segments := strings.Split(pattern, "/")

	for i, segment := range segments {
		if HasMeta(segment) {
			return strings.Join(segments[:i], "/"), strings.Join(segments[i:], "/"), true
		}
	}

	return "", pattern, false
}

// Pattern is a compiled glob matcher together with the literal prefix it
// was derived from. Compile once per listing; a Pattern is immutable and
// safe for concurrent use.
type Pattern struct {
	source string
	prefix string
}

// Compile validates and compiles a glob pattern. Malformed patterns (for
// example an unterminated character class) are rejected with
// storage.ErrUnexpected.
func Compile(pattern string) (*Pattern, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, storage.ErrUnexpected)
	}

	prefix, _ := LiteralPrefix(pattern)

	return &Pattern{source: pattern, prefix: prefix}, nil
}

// Match reports whether the complete path matches the pattern.
func (p *Pattern) Match(path string) bool {
	ok, err := doublestar.Match(p.source, path)
	if err != nil {
		// The pattern was validated at compile time; a match error here
		// means a path the matcher cannot process, which never matches.
		return false
	}

	return ok
}

// Prefix returns the literal prefix the pattern was compiled with.
func (p *Pattern) Prefix() string {
	return p.prefix
}

// String returns the original pattern source.
func (p *Pattern) String() string {
	return p.source
}
