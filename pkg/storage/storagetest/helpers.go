package storagetest

import (
	"errors"
	"io"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/ferry/pkg/storage"
)

// AssertErrorIs checks that actual matches expected using errors.Is.
func AssertErrorIs(t *testing.T, expected, actual error) {
	t.Helper()
	if !errors.Is(actual, expected) {
		t.Errorf("expected error %v, got %v", expected, actual)
	}
}

// mustWrite stores data at path and fails the test on error.
func mustWrite(t *testing.T, store storage.Store, path string, data []byte, opts storage.WriteOptions) {
	t.Helper()

	writer, err := store.OpenWriter(testContext(), path, opts)
	require.NoError(t, err, "OpenWriter should succeed")

	_, err = writer.Write(data)
	require.NoError(t, err, "Write should succeed")

	require.NoError(t, writer.Close(), "Close should succeed")
}

// mustRead reads the object at path and fails the test on error.
func mustRead(t *testing.T, store storage.Store, path string) []byte {
	t.Helper()

	reader, err := store.OpenReader(testContext(), path)
	require.NoError(t, err, "OpenReader should succeed")
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err, "reading content should succeed")

	return data
}

// mustStat stats path and fails the test on error.
func mustStat(t *testing.T, store storage.Store, path string) *storage.Entry {
	t.Helper()

	entry, err := store.Stat(testContext(), path)
	require.NoError(t, err, "Stat should succeed")
	require.NotNil(t, entry)

	return entry
}

// mustCreateDir creates a directory and fails the test on error.
func mustCreateDir(t *testing.T, store storage.Store, path string) {
	t.Helper()

	require.NoError(t, store.CreateDir(testContext(), path), "CreateDir should succeed")
}

// mustList collects the entries under path, sorted by path so assertions
// are stable across backends with different native orderings.
func mustList(t *testing.T, store storage.Store, path string, opts storage.ListOptions) []storage.Entry {
	t.Helper()

	lister, err := store.List(testContext(), path, opts)
	require.NoError(t, err, "List should succeed")

	entries, err := storage.Collect(testContext(), lister)
	require.NoError(t, err, "draining the lister should succeed")

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	return entries
}

// entryPaths projects a listing onto its paths.
func entryPaths(entries []storage.Entry) []string {
	paths := make([]string, len(entries))
	for i, entry := range entries {
		paths[i] = entry.Path
	}

	return paths
}

// assertEntryMode finds path in entries and checks its mode.
func assertEntryMode(t *testing.T, entries []storage.Entry, path string, mode storage.EntryMode) {
	t.Helper()

	for _, entry := range entries {
		if entry.Path == path {
			assert.Equal(t, mode, entry.Mode, "mode mismatch for %s", path)
			return
		}
	}

	t.Errorf("entry %s not found in listing %v", path, entryPaths(entries))
}
