package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/ferry/pkg/storage"
	"github.com/marmos91/ferry/pkg/storage/storagetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := New(context.Background(), Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestBadgerStore(t *testing.T) {
	suite := &storagetest.StoreTestSuite{
		NewStore: func(t *testing.T) storage.Store {
			return newTestStore(t)
		},
	}
	suite.Run(t)
}

// Objects and metadata must survive a close/reopen cycle when backed by
// disk.
func TestBadgerStore_Persistence(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := New(ctx, Config{Path: dir})
	require.NoError(t, err)

	writer, err := store.OpenWriter(ctx, "keep.txt", storage.WriteOptions{ContentType: "text/plain"})
	require.NoError(t, err)

	_, err = writer.Write([]byte("durable"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	require.NoError(t, store.Close())

	reopened, err := New(ctx, Config{Path: dir})
	require.NoError(t, err)
	defer reopened.Close()

	entry, err := reopened.Stat(ctx, "keep.txt")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), entry.Size)
	assert.Equal(t, "text/plain", entry.ContentType)
}

func TestBadgerStore_RequiresPath(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)
}
