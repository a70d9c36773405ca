// Package memory provides an in-memory Store implementation.
//
// All objects live in a map guarded by an RWMutex. The store is designed
// for tests, development, and ephemeral staging areas: fast, volatile, and
// bounded by available RAM. Reads operate on copies of the stored bytes so
// later writes never race with a caller-held reader.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/marmos91/ferry/pkg/storage"
)

// object is one stored blob plus the metadata the store tracks for it.
type object struct {
	data               []byte
	contentType        string
	contentDisposition string
}

// Store implements storage.Store backed by process memory.
//
// Directories exist in two ways: explicitly via CreateDir, or implied by a
// deeper object's path. Both spellings stat and list as directories, which
// mirrors how object stores behave.
type Store struct {
	mu      sync.RWMutex
	objects map[string]object
	dirs    map[string]bool
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		objects: make(map[string]object),
		dirs:    make(map[string]bool),
	}
}

// objectKey strips the directory marker so lookups work regardless of how
// the caller spelled the path.
func objectKey(path string) string {
	return strings.TrimSuffix(path, "/")
}

// Stat implements storage.Store.
func (s *Store) Stat(ctx context.Context, path string) (*storage.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	key := objectKey(path)

	// Root always exists as a directory.
	if key == "" {
		return &storage.Entry{Path: "/", Mode: storage.ModeDir}, nil
	}

	wantDir := strings.HasSuffix(path, "/")

	if !wantDir {
		if obj, ok := s.objects[key]; ok {
			return &storage.Entry{
				Path:               key,
				Mode:               storage.ModeFile,
				Size:               uint64(len(obj.data)),
				ContentType:        obj.contentType,
				ContentDisposition: obj.contentDisposition,
			}, nil
		}
	}

	if s.dirExistsLocked(key) {
		return &storage.Entry{Path: key + "/", Mode: storage.ModeDir}, nil
	}

	return nil, fmt.Errorf("stat %s: %w", path, storage.ErrNotFound)
}

// dirExistsLocked reports whether key names an explicit or implied
// directory. Caller holds at least a read lock.
func (s *Store) dirExistsLocked(key string) bool {
	if s.dirs[key+"/"] {
		return true
	}

	prefix := key + "/"
	for path := range s.objects {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	for dir := range s.dirs {
		if strings.HasPrefix(dir, prefix) {
			return true
		}
	}

	return false
}

// CreateDir implements storage.Store. Creating an existing directory is a
// no-op.
func (s *Store) CreateDir(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := objectKey(path)
	if key == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.dirs[key+"/"] = true

	return nil
}

// OpenReader implements storage.Store. The returned reader sees a snapshot
// of the content at open time.
func (s *Store) OpenReader(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	key := objectKey(path)

	obj, ok := s.objects[key]
	if !ok {
		if s.dirExistsLocked(key) {
			return nil, fmt.Errorf("read %s: %w", path, storage.ErrIsADirectory)
		}

		return nil, fmt.Errorf("read %s: %w", path, storage.ErrNotFound)
	}

	snapshot := make([]byte, len(obj.data))
	copy(snapshot, obj.data)

	return io.NopCloser(bytes.NewReader(snapshot)), nil
}

// OpenWriter implements storage.Store. The object becomes visible only when
// the writer is closed; closing twice is a no-op.
func (s *Store) OpenWriter(ctx context.Context, path string, opts storage.WriteOptions) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := objectKey(path)
	if key == "" {
		return nil, fmt.Errorf("write %s: %w", path, storage.ErrIsADirectory)
	}

	return &memoryWriter{
		store: s,
		key:   key,
		opts:  opts,
	}, nil
}

// memoryWriter buffers writes and commits the object on Close.
type memoryWriter struct {
	store  *Store
	key    string
	opts   storage.WriteOptions
	buf    bytes.Buffer
	closed bool
}

func (w *memoryWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, fmt.Errorf("write %s: writer already closed: %w", w.key, storage.ErrUnexpected)
	}

	return w.buf.Write(p)
}

// Abort implements storage.Aborter: the buffered bytes are dropped and the
// object map is left untouched.
func (w *memoryWriter) Abort() error {
	w.closed = true
	w.buf.Reset()

	return nil
}

func (w *memoryWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	w.store.mu.Lock()
	defer w.store.mu.Unlock()

	data := make([]byte, w.buf.Len())
	copy(data, w.buf.Bytes())

	w.store.objects[w.key] = object{
		data:               data,
		contentType:        w.opts.ContentType,
		contentDisposition: w.opts.ContentDisposition,
	}

	return nil
}

// List implements storage.Store. Listing a path with no entries yields an
// empty result, not an error; an explicitly created empty directory lists
// as empty.
func (s *Store) List(ctx context.Context, path string, opts storage.ListOptions) (storage.Lister, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	base := ""
	if key := objectKey(path); key != "" {
		base = key + "/"
	}

	var entries []storage.Entry
	if opts.Recursive {
		entries = s.listRecursiveLocked(base)
	} else {
		entries = s.listShallowLocked(base)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	return storage.NewSliceLister(entries), nil
}

func (s *Store) listRecursiveLocked(base string) []storage.Entry {
	var entries []storage.Entry

	for path, obj := range s.objects {
		if !strings.HasPrefix(path, base) {
			continue
		}

		entries = append(entries, storage.Entry{
			Path:               path,
			Mode:               storage.ModeFile,
			Size:               uint64(len(obj.data)),
			ContentType:        obj.contentType,
			ContentDisposition: obj.contentDisposition,
		})
	}

	for dir := range s.dirs {
		if dir == base || !strings.HasPrefix(dir, base) {
			continue
		}

		entries = append(entries, storage.Entry{Path: dir, Mode: storage.ModeDir})
	}

	return entries
}

func (s *Store) listShallowLocked(base string) []storage.Entry {
	var entries []storage.Entry
	childDirs := make(map[string]bool)

	for path, obj := range s.objects {
		rest, found := strings.CutPrefix(path, base)
		if !found || rest == "" {
			continue
		}

		if idx := strings.IndexByte(rest, '/'); idx >= 0 {
			childDirs[base+rest[:idx+1]] = true
			continue
		}

		entries = append(entries, storage.Entry{
			Path:               path,
			Mode:               storage.ModeFile,
			Size:               uint64(len(obj.data)),
			ContentType:        obj.contentType,
			ContentDisposition: obj.contentDisposition,
		})
	}

	for dir := range s.dirs {
		rest, found := strings.CutPrefix(dir, base)
		if !found || rest == "" {
			continue
		}

		if idx := strings.IndexByte(rest, '/'); idx >= 0 {
			childDirs[base+rest[:idx+1]] = true
		}
	}

	for dir := range childDirs {
		entries = append(entries, storage.Entry{Path: dir, Mode: storage.ModeDir})
	}

	return entries
}
