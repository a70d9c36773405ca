// Package fs implements a Store over a local filesystem directory.
//
// The store is rooted at a base directory chosen at construction time; every
// path it handles is resolved beneath that root. Paths that would escape the
// root are rejected. Content type is not persisted by filesystems, so entries
// report an empty ContentType.
package fs

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/marmos91/ferry/pkg/storage"
)

// Store implements storage.Store on a local directory.
//
// Filesystem operations are thread-safe at the OS level. Concurrent writers
// to the same path race with last-write-wins semantics, as they do on any
// filesystem.
type Store struct {
	root string
}

// New creates a filesystem store rooted at root, creating the directory if
// it does not exist.
func New(ctx context.Context, root string) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", root, err)
	}

	if err := os.MkdirAll(absRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create root %s: %w", absRoot, storage.MapOSError(err))
	}

	return &Store{root: absRoot}, nil
}

// resolve maps a store path onto the filesystem, refusing anything that
// would climb above the root.
func (s *Store) resolve(path string) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(path))

	if full != s.root && !strings.HasPrefix(full, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s escapes store root: %w", path, storage.ErrUnexpected)
	}

	return full, nil
}

// entryFromInfo builds a storage entry for a filesystem object.
func entryFromInfo(path string, info fs.FileInfo) *storage.Entry {
	if info.IsDir() {
		return &storage.Entry{Path: storage.EnsureDirPath(path), Mode: storage.ModeDir}
	}

	mode := storage.ModeUnknown
	if info.Mode().IsRegular() {
		mode = storage.ModeFile
	}

	return &storage.Entry{
		Path: strings.TrimSuffix(path, "/"),
		Mode: mode,
		Size: uint64(info.Size()),
	}
}

// Stat implements storage.Store.
func (s *Store) Stat(ctx context.Context, path string) (*storage.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(full)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, storage.MapOSError(err))
	}

	return entryFromInfo(path, info), nil
}

// CreateDir implements storage.Store. Parents are created as needed;
// creating an existing directory succeeds.
func (s *Store) CreateDir(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	full, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(full, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", path, storage.MapOSError(err))
	}

	return nil
}

// OpenReader implements storage.Store.
func (s *Store) OpenReader(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(full)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, storage.MapOSError(err))
	}
	if info.IsDir() {
		return nil, fmt.Errorf("read %s: %w", path, storage.ErrIsADirectory)
	}

	file, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, storage.MapOSError(err))
	}

	return file, nil
}

// OpenWriter implements storage.Store. The file is created or truncated
// immediately; bytes are durable once Close returns. The parent directory
// must already exist — the copy engine creates parents explicitly before
// writing.
func (s *Store) OpenWriter(ctx context.Context, path string, _ storage.WriteOptions) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Create(full)
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", path, storage.MapOSError(err))
	}

	return &fileWriter{file: file}, nil
}

// fileWriter wraps an os.File so closing twice is a no-op, matching the
// writer contract shared by all backends.
type fileWriter struct {
	file   *os.File
	closed bool
}

func (w *fileWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, fmt.Errorf("write %s: writer already closed: %w", w.file.Name(), storage.ErrUnexpected)
	}

	return w.file.Write(p)
}

func (w *fileWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	return w.file.Close()
}

// Abort implements storage.Aborter. Unlike the buffering backends the file
// already exists on disk, so aborting removes it after releasing the
// descriptor.
func (w *fileWriter) Abort() error {
	if w.closed {
		return nil
	}
	w.closed = true

	name := w.file.Name()
	if err := w.file.Close(); err != nil {
		return storage.MapOSError(err)
	}

	if err := os.Remove(name); err != nil {
		return storage.MapOSError(err)
	}

	return nil
}

// List implements storage.Store. Listing a missing directory yields an
// empty result.
func (s *Store) List(ctx context.Context, path string, opts storage.ListOptions) (storage.Lister, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	base := storage.EnsureDirPath(strings.TrimSuffix(path, "/"))

	var entries []storage.Entry
	if opts.Recursive {
		entries, err = s.walk(ctx, full, base)
	} else {
		entries, err = s.readDir(full, base)
	}
	if err != nil {
		return nil, err
	}

	return storage.NewSliceLister(entries), nil
}

// readDir lists the immediate children of a directory.
func (s *Store) readDir(full, base string) ([]storage.Entry, error) {
	dirents, err := os.ReadDir(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("list %s: %w", base, storage.MapOSError(err))
	}

	entries := make([]storage.Entry, 0, len(dirents))
	for _, dirent := range dirents {
		info, err := dirent.Info()
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", base, storage.MapOSError(err))
		}

		entries = append(entries, *entryFromInfo(base+dirent.Name(), info))
	}

	return entries, nil
}

// walk lists every descendant of a directory.
func (s *Store) walk(ctx context.Context, full, base string) ([]storage.Entry, error) {
	var entries []storage.Entry

	err := filepath.WalkDir(full, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == full {
				return nil
			}

			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if p == full {
			return nil
		}

		rel, err := filepath.Rel(full, p)
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		entries = append(entries, *entryFromInfo(base+filepath.ToSlash(rel), info))

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", base, storage.MapOSError(err))
	}

	return entries, nil
}
