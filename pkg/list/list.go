// Package list produces listings of backend entries, transparently routing
// glob paths through a prefix-scoped, pattern-filtered recursive scan.
package list

import (
	"context"
	"io"

	"github.com/marmos91/ferry/pkg/glob"
	"github.com/marmos91/ferry/pkg/storage"
)

// List eagerly collects the entries under path.
//
// When path contains glob metacharacters, the listing is rooted at the
// pattern's literal prefix, forced recursive, and filtered so only entries
// whose complete path matches the pattern are returned. Non-matching
// entries are silently dropped. Plain paths delegate directly to the
// backend with the caller's recursion flag.
//
// No ordering is guaranteed beyond whatever the backend yields.
func List(ctx context.Context, store storage.Store, path string, opts storage.ListOptions) ([]storage.Entry, error) {
	lister, err := NewLister(ctx, store, path, opts)
	if err != nil {
		return nil, err
	}

	return storage.Collect(ctx, lister)
}

// NewLister returns a lazy, single-pass lister over the entries under path,
// with the same glob routing as List. The lister is not restartable; it
// reports io.EOF once exhausted.
func NewLister(ctx context.Context, store storage.Store, path string, opts storage.ListOptions) (storage.Lister, error) {
	prefix, isGlob := glob.LiteralPrefix(path)
	if !isGlob {
		return store.List(ctx, path, opts)
	}

	// Glob paths need the full tree below the literal prefix; the caller's
	// recursion flag is irrelevant once a pattern is in play.
	pattern, err := glob.Compile(path)
	if err != nil {
		return nil, err
	}

	inner, err := store.List(ctx, prefix, storage.ListOptions{Recursive: true})
	if err != nil {
		return nil, err
	}

	return &filterLister{inner: inner, pattern: pattern}, nil
}

// filterLister drops entries whose path does not match the compiled
// pattern. Directory entries are filtered by the same rule; callers that
// only want files skip directories themselves.
type filterLister struct {
	inner   storage.Lister
	pattern *glob.Pattern
}

// Next implements storage.Lister.
func (l *filterLister) Next(ctx context.Context) (*storage.Entry, error) {
	for {
		entry, err := l.inner.Next(ctx)
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, err
		}

		if l.pattern.Match(entry.Path) {
			return entry, nil
		}
	}
}
