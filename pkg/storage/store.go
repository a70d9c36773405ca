// Package storage defines the operator capability that every Ferry backend
// implements: stat, list, create-directory, and streaming byte access to a
// single storage namespace.
//
// The copy and listing engines depend only on this package. Backends (local
// filesystem, S3, BadgerDB, in-memory) live in subpackages and never leak
// their concrete types upward; callers inspect failures exclusively through
// the error taxonomy in errors.go.
//
// Path Conventions:
// All paths handled by a Store are root-relative, use '/' as separator, and
// follow the invariants established by NormalizePath: no leading separator,
// no '.' or '..' segments, no repeated separators, and a trailing separator
// present exactly when the path denotes a directory.
package storage

import (
	"context"
	"io"
)

// Store is a capability handle bound to one storage backend.
//
// Implementations must be safe for concurrent use by multiple goroutines.
// All operations respect context cancellation. A Store holds no per-call
// state; two independent Stores (possibly of different kinds) can be used
// as the two sides of a copy.
type Store interface {
	// Stat returns the entry for the given path.
	//
	// Returns an error wrapping ErrNotFound when nothing exists at the path.
	// Directories stat successfully whether they were created explicitly or
	// are implied by deeper entries, depending on the backend's model; the
	// engine never relies on implied directories statting.
	Stat(ctx context.Context, path string) (*Entry, error)

	// CreateDir creates a directory at the given path.
	//
	// Creation is idempotent: creating an existing directory succeeds.
	// Missing parent directories are created as needed. The path may be
	// spelled with or without the trailing separator.
	CreateDir(ctx context.Context, path string) error

	// OpenReader opens a sequential byte stream over the object at path.
	//
	// The caller owns the returned reader and must close it. Returns an
	// error wrapping ErrNotFound when the object does not exist and
	// ErrIsADirectory when the path names a directory.
	OpenReader(ctx context.Context, path string) (io.ReadCloser, error)

	// OpenWriter opens a byte sink at path, replacing any existing object.
	//
	// Bytes become durable per backend semantics only once Close returns
	// successfully. Writers that cannot be finalized should be discarded
	// through Aborter rather than closed. Metadata in opts is attached to
	// the finalized object where the backend supports it.
	OpenWriter(ctx context.Context, path string, opts WriteOptions) (io.WriteCloser, error)

	// List returns a lazy, single-pass iterator over the entries under path.
	//
	// Non-recursive listings yield the immediate children of path: files
	// and subdirectories, the latter with a trailing separator. Recursive
	// listings yield every descendant file plus explicitly created
	// directories. No ordering is guaranteed; callers must not rely on it.
	List(ctx context.Context, path string, opts ListOptions) (Lister, error)
}

// Lister iterates over listing results one entry at a time.
//
// Listers are single-pass and non-restartable: once Next returns io.EOF the
// lister is exhausted. Any other error is terminal as well.
type Lister interface {
	// Next returns the next entry, or io.EOF when the listing is exhausted.
	Next(ctx context.Context) (*Entry, error)
}

// ListOptions controls listing behavior. The zero value lists the immediate
// children only.
type ListOptions struct {
	// Recursive lists every descendant instead of the immediate children.
	Recursive bool
}

// Aborter discards a writer's partial object instead of finalizing it.
//
// Close is the durability point for every backend writer, so a writer that
// failed mid-stream must not be closed: that would commit the truncated
// bytes as a complete object. All built-in writers implement Aborter.
// After Abort the writer is spent; a later Close is a no-op and commits
// nothing.
type Aborter interface {
	Abort() error
}

// WriteOptions carries object metadata to attach when a writer is finalized.
// The zero value attaches nothing.
type WriteOptions struct {
	// ContentType is the MIME type recorded with the object, when the
	// backend has a place for it.
	ContentType string

	// ContentDisposition is the raw Content-Disposition value recorded
	// with the object, when the backend has a place for it. The copy
	// engine itself propagates only ContentType; this field exists for
	// callers that write objects directly.
	ContentDisposition string
}

// SliceLister adapts an in-memory slice of entries to the Lister interface.
//
// Backends that materialize their listing eagerly (memory, badger) return
// one of these; streaming backends implement Lister directly.
type SliceLister struct {
	entries []Entry
	pos     int
}

// NewSliceLister returns a Lister over the given entries.
func NewSliceLister(entries []Entry) *SliceLister {
	return &SliceLister{entries: entries}
}

// Next implements Lister.
func (l *SliceLister) Next(ctx context.Context) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if l.pos >= len(l.entries) {
		return nil, io.EOF
	}

	entry := l.entries[l.pos]
	l.pos++

	return &entry, nil
}

// Collect drains a lister into a slice. It is the bridge from the lazy
// listing surface to the eager one.
func Collect(ctx context.Context, lister Lister) ([]Entry, error) {
	var entries []Entry

	for {
		entry, err := lister.Next(ctx)
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return nil, err
		}

		entries = append(entries, *entry)
	}
}
