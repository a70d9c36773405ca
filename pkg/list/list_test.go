package list

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/ferry/pkg/storage"
	"github.com/marmos91/ferry/pkg/storage/memory"
)

func seedStore(t *testing.T) *memory.Store {
	t.Helper()

	store := memory.New()

	files := []string{
		"readme.md",
		"src/main.rs",
		"src/lib.rs",
		"src/utils/helper.rs",
		"src/utils/notes.txt",
		"docs/guide.md",
	}

	for _, path := range files {
		writer, err := store.OpenWriter(context.Background(), path, storage.WriteOptions{})
		require.NoError(t, err)

		_, err = writer.Write([]byte("content of " + path))
		require.NoError(t, err)
		require.NoError(t, writer.Close())
	}

	return store
}

func paths(entries []storage.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.Path)
	}

	return out
}

func TestList_PlainPath(t *testing.T) {
	store := seedStore(t)

	entries, err := List(context.Background(), store, "src", storage.ListOptions{})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"src/lib.rs", "src/main.rs", "src/utils/"}, paths(entries))
}

func TestList_PlainPathRecursive(t *testing.T) {
	store := seedStore(t)

	entries, err := List(context.Background(), store, "src", storage.ListOptions{Recursive: true})
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]string{"src/lib.rs", "src/main.rs", "src/utils/helper.rs", "src/utils/notes.txt"},
		paths(entries))
}

func TestList_Glob(t *testing.T) {
	store := seedStore(t)

	entries, err := List(context.Background(), store, "src/**/*.rs", storage.ListOptions{})
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]string{"src/lib.rs", "src/main.rs", "src/utils/helper.rs"},
		paths(entries))
}

// A glob listing is always recursive below its literal prefix, whatever the
// caller's recursion flag says.
func TestList_GlobIgnoresRecursionFlag(t *testing.T) {
	store := seedStore(t)

	shallow, err := List(context.Background(), store, "src/**/*.rs", storage.ListOptions{Recursive: false})
	require.NoError(t, err)

	recursive, err := List(context.Background(), store, "src/**/*.rs", storage.ListOptions{Recursive: true})
	require.NoError(t, err)

	assert.ElementsMatch(t, paths(shallow), paths(recursive))
}

func TestList_GlobNoMatches(t *testing.T) {
	store := seedStore(t)

	entries, err := List(context.Background(), store, "src/*.json", storage.ListOptions{})
	require.NoError(t, err)

	assert.Empty(t, entries)
}

func TestList_GlobInvalidPattern(t *testing.T) {
	store := seedStore(t)

	_, err := List(context.Background(), store, "src/[", storage.ListOptions{})
	assert.ErrorIs(t, err, storage.ErrUnexpected)
}

func TestNewLister_Lazy(t *testing.T) {
	store := seedStore(t)

	lister, err := NewLister(context.Background(), store, "*.md", storage.ListOptions{})
	require.NoError(t, err)

	entry, err := lister.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "readme.md", entry.Path)

	_, err = lister.Next(context.Background())
	assert.Equal(t, io.EOF, err)
}
