package memory

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/ferry/pkg/storage"
	"github.com/marmos91/ferry/pkg/storage/storagetest"
)

func TestMemoryStore(t *testing.T) {
	suite := &storagetest.StoreTestSuite{
		NewStore: func(t *testing.T) storage.Store {
			return New()
		},
	}
	suite.Run(t)
}

// Readers must see a snapshot of the content at open time, not later
// writes.
func TestMemoryStore_ReaderSnapshot(t *testing.T) {
	ctx := context.Background()
	store := New()

	writeObject(t, store, "doc.txt", "original")

	reader, err := store.OpenReader(ctx, "doc.txt")
	require.NoError(t, err)
	defer reader.Close()

	writeObject(t, store, "doc.txt", "replaced")

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
}

func TestMemoryStore_ImpliedDirectories(t *testing.T) {
	ctx := context.Background()
	store := New()

	writeObject(t, store, "deep/nested/file.txt", "x")

	entry, err := store.Stat(ctx, "deep")
	require.NoError(t, err)
	assert.True(t, entry.IsDir(), "parent of a stored object should stat as a directory")

	entry, err = store.Stat(ctx, "deep/nested")
	require.NoError(t, err)
	assert.True(t, entry.IsDir())
}

func TestMemoryStore_WriteAfterClose(t *testing.T) {
	ctx := context.Background()
	store := New()

	writer, err := store.OpenWriter(ctx, "w.txt", storage.WriteOptions{})
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	_, err = writer.Write([]byte("late"))
	assert.ErrorIs(t, err, storage.ErrUnexpected)
}

func writeObject(t *testing.T, store *Store, path, data string) {
	t.Helper()

	writer, err := store.OpenWriter(context.Background(), path, storage.WriteOptions{})
	require.NoError(t, err)

	_, err = writer.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
}
