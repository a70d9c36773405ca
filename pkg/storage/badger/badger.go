// Package badger provides a persistent, embedded Store implementation
// backed by BadgerDB.
//
// Storage Model:
// Each stored path maps to up to three keys in one keyspace, separated by
// single-byte namespace prefixes (see keys below):
//   - "f:<path>" holds the object content
//   - "m:<path>" holds the object metadata as JSON
//   - "d:<path>/" marks an explicitly created directory
//
// Range scans over these prefixes give directory listings without any
// secondary index. A directory also exists implicitly whenever a deeper key
// lives below it, matching the in-memory store's model.
//
// Thread Safety:
// BadgerDB transactions provide isolation; all operations here run inside
// View or Update transactions and are safe for concurrent use.
package badger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/marmos91/ferry/pkg/storage"
)

// Key namespaces. The colon keeps prefix scans for one namespace from
// leaking into another.
const (
	filePrefix = "f:"
	metaPrefix = "m:"
	dirPrefix  = "d:"
)

// objectMeta is the JSON metadata stored next to each object.
type objectMeta struct {
	Size               uint64 `json:"size"`
	ContentType        string `json:"content_type,omitempty"`
	ContentDisposition string `json:"content_disposition,omitempty"`
}

// Store implements storage.Store on top of a BadgerDB database.
type Store struct {
	db *badger.DB
}

// Config contains the settings for a Badger store.
type Config struct {
	// Path is the directory where BadgerDB keeps its files. Ignored when
	// InMemory is set.
	Path string

	// InMemory runs the database entirely in memory, mainly for tests.
	InMemory bool
}

// New opens (or creates) a Badger-backed store at the configured path.
// The caller owns the store and must Close it to release the database
// lock and flush pending writes.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cfg.Path == "" && !cfg.InMemory {
		return nil, fmt.Errorf("database path is required")
	}

	opts := badger.DefaultOptions(cfg.Path)
	opts = opts.WithLoggingLevel(badger.WARNING)

	if cfg.InMemory {
		opts = opts.WithInMemory(true).WithDir("").WithValueDir("")
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB at %s: %w", cfg.Path, err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// objectKey strips the directory marker so lookups work regardless of how
// the caller spelled the path.
func objectKey(path string) string {
	return strings.TrimSuffix(path, "/")
}

func fileKey(key string) []byte { return []byte(filePrefix + key) }
func metaKey(key string) []byte { return []byte(metaPrefix + key) }
func dirKey(key string) []byte  { return []byte(dirPrefix + key + "/") }

// Stat implements storage.Store.
func (s *Store) Stat(ctx context.Context, path string) (*storage.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := objectKey(storage.NormalizePath(path))

	// Root always exists as a directory.
	if key == "" {
		return &storage.Entry{Path: "/", Mode: storage.ModeDir}, nil
	}

	wantDir := strings.HasSuffix(path, "/")

	var entry *storage.Entry

	err := s.db.View(func(txn *badger.Txn) error {
		if !wantDir {
			meta, found, err := readMeta(txn, key)
			if err != nil {
				return err
			}
			if found {
				entry = &storage.Entry{
					Path:               key,
					Mode:               storage.ModeFile,
					Size:               meta.Size,
					ContentType:        meta.ContentType,
					ContentDisposition: meta.ContentDisposition,
				}

				return nil
			}
		}

		if dirExists(txn, key) {
			entry = &storage.Entry{Path: key + "/", Mode: storage.ModeDir}
			return nil
		}

		return fmt.Errorf("stat %s: %w", path, storage.ErrNotFound)
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// readMeta fetches the metadata record for key, falling back to the raw
// content length when only the content key exists.
func readMeta(txn *badger.Txn, key string) (objectMeta, bool, error) {
	item, err := txn.Get(metaKey(key))
	if err == nil {
		var meta objectMeta
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &meta)
		}); err != nil {
			return objectMeta{}, false, fmt.Errorf("decode metadata for %s: %w", key, errors.Join(storage.ErrUnexpected, err))
		}

		return meta, true, nil
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return objectMeta{}, false, errors.Join(storage.ErrUnexpected, err)
	}

	item, err = txn.Get(fileKey(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return objectMeta{}, false, nil
	}
	if err != nil {
		return objectMeta{}, false, errors.Join(storage.ErrUnexpected, err)
	}

	return objectMeta{Size: uint64(item.ValueSize())}, true, nil
}

// dirExists reports whether key names an explicit or implied directory: a
// marker key, or any content or marker key below it.
func dirExists(txn *badger.Txn, key string) bool {
	if _, err := txn.Get(dirKey(key)); err == nil {
		return true
	}

	for _, prefix := range [][]byte{
		[]byte(filePrefix + key + "/"),
		[]byte(dirPrefix + key + "/"),
	} {
		if prefixHasKeys(txn, prefix) {
			return true
		}
	}

	return false
}

// prefixHasKeys reports whether at least one key starts with prefix.
func prefixHasKeys(txn *badger.Txn, prefix []byte) bool {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix

	it := txn.NewIterator(opts)
	defer it.Close()

	it.Rewind()

	return it.ValidForPrefix(prefix)
}

// CreateDir implements storage.Store. A single marker key is written; the
// marker alone makes every ancestor resolve as an implied directory, so no
// intermediate markers are needed. Idempotent.
func (s *Store) CreateDir(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := objectKey(storage.NormalizePath(path))
	if key == "" {
		return nil
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(dirKey(key), nil)
	})
	if err != nil {
		return fmt.Errorf("create dir %s: %w", path, errors.Join(storage.ErrUnexpected, err))
	}

	return nil
}

// OpenReader implements storage.Store. The content is copied out of the
// transaction, so the reader stays valid after the transaction ends.
func (s *Store) OpenReader(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := objectKey(storage.NormalizePath(path))

	var data []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(fileKey(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			if dirExists(txn, key) {
				return fmt.Errorf("read %s: %w", path, storage.ErrIsADirectory)
			}

			return fmt.Errorf("read %s: %w", path, storage.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", path, errors.Join(storage.ErrUnexpected, err))
		}

		data, err = item.ValueCopy(nil)

		return err
	})
	if err != nil {
		return nil, err
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

// OpenWriter implements storage.Store. Content and metadata are committed
// in one transaction when the writer is closed.
func (s *Store) OpenWriter(ctx context.Context, path string, opts storage.WriteOptions) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := objectKey(storage.NormalizePath(path))
	if key == "" {
		return nil, fmt.Errorf("write %s: %w", path, storage.ErrIsADirectory)
	}

	return &badgerWriter{
		store: s,
		key:   key,
		opts:  opts,
	}, nil
}

// badgerWriter buffers writes and commits object plus metadata on Close.
type badgerWriter struct {
	store *Store
	key   string
	opts  storage.WriteOptions

	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
}

func (w *badgerWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, fmt.Errorf("write %s: writer already closed: %w", w.key, storage.ErrUnexpected)
	}

	return w.buf.Write(p)
}

// Abort implements storage.Aborter: the buffer is dropped without opening
// a transaction, so neither content nor metadata is committed.
func (w *badgerWriter) Abort() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closed = true
	w.buf.Reset()

	return nil
}

func (w *badgerWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	meta, err := json.Marshal(objectMeta{
		Size:               uint64(w.buf.Len()),
		ContentType:        w.opts.ContentType,
		ContentDisposition: w.opts.ContentDisposition,
	})
	if err != nil {
		return fmt.Errorf("encode metadata for %s: %w", w.key, errors.Join(storage.ErrUnexpected, err))
	}

	err = w.store.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(fileKey(w.key), w.buf.Bytes()); err != nil {
			return err
		}

		return txn.Set(metaKey(w.key), meta)
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", w.key, errors.Join(storage.ErrUnexpected, err))
	}

	return nil
}
