package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/marmos91/ferry/pkg/storage"
)

// List implements storage.Store. The listing is materialized inside one
// View transaction with prefix scans over the content and marker
// namespaces, then returned as a slice-backed lister. A path with nothing
// below it yields an empty result, not an error.
func (s *Store) List(ctx context.Context, path string, opts storage.ListOptions) (storage.Lister, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base := ""
	if key := objectKey(storage.NormalizePath(path)); key != "" {
		base = key + "/"
	}

	var entries []storage.Entry

	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		if opts.Recursive {
			entries, err = listRecursive(txn, base)
		} else {
			entries, err = listShallow(txn, base)
		}

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", path, errors.Join(storage.ErrUnexpected, err))
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	return storage.NewSliceLister(entries), nil
}

// listRecursive returns every content key plus every explicit directory
// marker below base.
func listRecursive(txn *badger.Txn, base string) ([]storage.Entry, error) {
	var entries []storage.Entry

	err := scanPrefix(txn, filePrefix, base, func(path string) error {
		meta, _, err := readMeta(txn, path)
		if err != nil {
			return err
		}

		entries = append(entries, storage.Entry{
			Path:               path,
			Mode:               storage.ModeFile,
			Size:               meta.Size,
			ContentType:        meta.ContentType,
			ContentDisposition: meta.ContentDisposition,
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	err = scanPrefix(txn, dirPrefix, base, func(path string) error {
		if path != base {
			entries = append(entries, storage.Entry{Path: path, Mode: storage.ModeDir})
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// listShallow returns the depth-1 files under base plus one directory
// entry per distinct child directory, whether marked or implied.
func listShallow(txn *badger.Txn, base string) ([]storage.Entry, error) {
	var entries []storage.Entry
	childDirs := make(map[string]bool)

	err := scanPrefix(txn, filePrefix, base, func(path string) error {
		rest := strings.TrimPrefix(path, base)

		if idx := strings.IndexByte(rest, '/'); idx >= 0 {
			childDirs[base+rest[:idx+1]] = true
			return nil
		}

		meta, _, err := readMeta(txn, path)
		if err != nil {
			return err
		}

		entries = append(entries, storage.Entry{
			Path:               path,
			Mode:               storage.ModeFile,
			Size:               meta.Size,
			ContentType:        meta.ContentType,
			ContentDisposition: meta.ContentDisposition,
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	err = scanPrefix(txn, dirPrefix, base, func(path string) error {
		rest := strings.TrimPrefix(path, base)
		if rest == "" {
			return nil
		}

		if idx := strings.IndexByte(rest, '/'); idx >= 0 {
			childDirs[base+rest[:idx+1]] = true
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	for dir := range childDirs {
		entries = append(entries, storage.Entry{Path: dir, Mode: storage.ModeDir})
	}

	return entries, nil
}

// scanPrefix iterates the keys in one namespace below base and calls fn
// with each key's repository path (namespace stripped).
func scanPrefix(txn *badger.Txn, namespace, base string, fn func(path string) error) error {
	prefix := []byte(namespace + base)

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix

	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
		key := string(it.Item().Key())

		if err := fn(strings.TrimPrefix(key, namespace)); err != nil {
			return err
		}
	}

	return nil
}
