package copy

import (
	"context"
	"fmt"
	"io"

	"github.com/marmos91/ferry/internal/logger"
	"github.com/marmos91/ferry/pkg/glob"
	"github.com/marmos91/ferry/pkg/list"
	"github.com/marmos91/ferry/pkg/storage"
)

// copyDir copies the files under a source directory into the destination
// directory, preserving their paths relative to the source. Without
// Recursive only the directory's immediate files are copied.
func (c *Copier) copyDir(ctx context.Context, src, dst string, opts Options) error {
	lister, err := list.NewLister(ctx, c.source, src, storage.ListOptions{Recursive: opts.Recursive})
	if err != nil {
		return fmt.Errorf("list %s: %w", src, err)
	}

	return c.copyEntries(ctx, storage.EnsureDirPath(src), lister, dst)
}

// copyGlob copies every file matching the pattern into the destination
// directory. Matches keep their path relative to the pattern's literal
// prefix, so "src/**/*.go" copied to "backup" lands nested files under
// "backup/" with their sub-structure intact.
func (c *Copier) copyGlob(ctx context.Context, pattern, dst string) error {
	prefix, _ := glob.LiteralPrefix(pattern)

	lister, err := list.NewLister(ctx, c.source, pattern, storage.ListOptions{Recursive: true})
	if err != nil {
		return fmt.Errorf("list %s: %w", pattern, err)
	}

	return c.copyEntries(ctx, storage.EnsureDirPath(prefix), lister, dst)
}

// copyEntries drains the lister and transfers each file entry under dst,
// stripping prefix from entry paths to compute their relative location.
//
// Destination directories are memoized for the duration of the call so each
// one is created at most once; the destination root itself is pre-seeded
// since it is verified (or created) before the loop starts. Directory
// entries from the lister are skipped — directories materialize on the
// destination only when a file needs them as a parent.
func (c *Copier) copyEntries(ctx context.Context, prefix string, lister storage.Lister, dst string) error {
	if err := c.prepareDestinationDir(ctx, dst); err != nil {
		return err
	}

	createdDirs := map[string]bool{
		dirKey(dst): true,
	}

	copied := 0

	for {
		entry, err := lister.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("list entries: %w", err)
		}

		if entry.IsDir() {
			continue
		}

		rel, ok := storage.RelPath(prefix, entry.Path)
		if !ok {
			// Entry outside the prefix (backends may surface the prefix
			// itself, or oddly rooted paths): fall back to its full path.
			rel = entry.Path
		}

		target := storage.JoinPath(dst, rel)

		parent := storage.ParentPath(target)
		if !createdDirs[dirKey(parent)] {
			if err := c.destination.CreateDir(ctx, parent); err != nil {
				return fmt.Errorf("create dir %s: %w", parent, err)
			}

			createdDirs[dirKey(parent)] = true
			c.metrics.ObserveDirCreated()
		}

		if err := c.transfer(ctx, entry.Path, target, entry.ContentType); err != nil {
			return err
		}

		copied++
	}

	logger.Info("copied %d files to %s", copied, dst)

	return nil
}

// prepareDestinationDir makes sure dst can receive entries: an existing
// directory passes, an existing file fails with storage.ErrNotADirectory,
// and a missing path is created.
func (c *Copier) prepareDestinationDir(ctx context.Context, dst string) error {
	entry, err := c.destination.Stat(ctx, dst)

	switch {
	case err == nil && entry.IsDir():
		return nil

	case err == nil:
		return fmt.Errorf("destination %s: %w", dst, storage.ErrNotADirectory)

	case isNotFound(err):
		if err := c.destination.CreateDir(ctx, dst); err != nil {
			return fmt.Errorf("create dir %s: %w", dst, err)
		}

		c.metrics.ObserveDirCreated()

		return nil

	default:
		return fmt.Errorf("stat destination %s: %w", dst, err)
	}
}

// dirKey canonicalizes a directory path for memoization, so "other" and
// "other/" share one entry and the root is always the empty string.
func dirKey(dir string) string {
	if dir == "/" {
		return ""
	}

	if len(dir) > 0 && dir[len(dir)-1] == '/' {
		return dir[:len(dir)-1]
	}

	return dir
}
