// Package copy implements the ferry copy engine: it resolves a source
// (file, directory, or glob pattern) against a destination path on a
// possibly different backend and streams the matching objects across.
//
// Destination semantics follow the usual cp rules: a file copied onto an
// existing directory nests under it, onto an existing file overwrites it,
// and onto a missing path is written literally after its parent directory
// is created. Directory and glob copies reproduce the source's relative
// structure under the destination, creating each intermediate directory at
// most once.
//
// The engine holds no persistent state across invocations and never
// retries: the first backend failure aborts the operation and surfaces to
// the caller. A failed directory copy leaves already-copied files in place;
// re-running the same copy is safe because directory creation tolerates
// existing directories and file transfer always overwrites.
package copy

import (
	"context"
	"fmt"

	"github.com/marmos91/ferry/internal/logger"
	"github.com/marmos91/ferry/pkg/glob"
	"github.com/marmos91/ferry/pkg/metrics"
	"github.com/marmos91/ferry/pkg/storage"
)

// Options controls one copy operation. The zero value copies a directory's
// immediate files only.
type Options struct {
	// Recursive copies every descendant of a source directory instead of
	// its depth-1 files. Glob sources always traverse recursively below
	// their literal prefix, regardless of this flag.
	Recursive bool
}

// Copier copies entries from one store to another. The two stores may be of
// different backend kinds; the copier never inspects which.
//
// A Copier is stateless between calls and safe for concurrent use;
// independent Copy calls may run in parallel at the caller's discretion.
// Within one call the entry loop is strictly sequential — at most one
// transfer is in flight at any time.
type Copier struct {
	source      storage.Store
	destination storage.Store
	metrics     metrics.CopyMetrics
}

// New creates a Copier between two stores. A nil collector disables
// metrics.
func New(source, destination storage.Store, collector metrics.CopyMetrics) *Copier {
	if collector == nil {
		collector = metrics.NewNoopCopyMetrics()
	}

	return &Copier{
		source:      source,
		destination: destination,
		metrics:     collector,
	}
}

// Copy is a convenience wrapper for one-shot copies between two stores.
func Copy(ctx context.Context, source storage.Store, sourcePath string, destination storage.Store, destinationPath string, opts Options) error {
	return New(source, destination, nil).Copy(ctx, sourcePath, destinationPath, opts)
}

// Copy resolves the source path and copies it to the destination path.
//
// Source resolution: a path containing glob metacharacters copies every
// matching file; otherwise the source is stat'ed and copied as a file or a
// directory. A missing source fails with storage.ErrNotFound; a source that
// is neither file nor directory fails with storage.ErrUnsupported.
func (c *Copier) Copy(ctx context.Context, source, destination string, opts Options) error {
	if err := c.copy(ctx, source, destination, opts); err != nil {
		c.metrics.ObserveError()
		return err
	}

	return nil
}

func (c *Copier) copy(ctx context.Context, source, destination string, opts Options) error {
	src := storage.NormalizePath(source)
	dst := storage.NormalizePath(destination)

	if glob.HasMeta(src) {
		return c.copyGlob(ctx, src, dst)
	}

	entry, err := c.source.Stat(ctx, src)
	if err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}

	switch {
	case entry.IsDir():
		return c.copyDir(ctx, src, dst, opts)
	case entry.IsFile():
		return c.copyFile(ctx, src, entry, dst)
	default:
		return fmt.Errorf("copy %s: source mode %s: %w", src, entry.Mode, storage.ErrUnsupported)
	}
}

// copyFile copies a single file, deciding the final destination from what
// already exists there.
func (c *Copier) copyFile(ctx context.Context, src string, srcEntry *storage.Entry, dst string) error {
	final, err := c.resolveFileDestination(ctx, srcEntry, dst)
	if err != nil {
		return err
	}

	if err := c.transfer(ctx, src, final, srcEntry.ContentType); err != nil {
		return err
	}

	logger.Info("copied %s -> %s", src, final)

	return nil
}

// resolveFileDestination implements the overwrite / nest-under-directory /
// create-parents decision for single-file copies.
func (c *Copier) resolveFileDestination(ctx context.Context, srcEntry *storage.Entry, dst string) (string, error) {
	dstEntry, err := c.destination.Stat(ctx, dst)

	switch {
	case err == nil && dstEntry.IsDir():
		// Nest under the directory using the source's filename; fall back
		// to a Content-Disposition suggestion when the path has none.
		name := srcEntry.Name()
		if name == "" {
			return "", fmt.Errorf("copy %s into %s: source has no filename: %w",
				srcEntry.Path, dst, storage.ErrUnexpected)
		}

		return storage.JoinPath(dst, name), nil

	case err == nil:
		// Destination exists as a file: overwrite in place.
		return dst, nil

	case isNotFound(err):
		// Destination does not exist: make sure its parent does, then
		// write at the literal path.
		if parent := storage.ParentPath(dst); parent != "" {
			if err := c.destination.CreateDir(ctx, parent); err != nil {
				return "", fmt.Errorf("create parent %s: %w", parent, err)
			}
		}

		return dst, nil

	default:
		return "", fmt.Errorf("stat destination %s: %w", dst, err)
	}
}
