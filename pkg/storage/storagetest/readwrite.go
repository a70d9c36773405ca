package storagetest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/ferry/pkg/storage"
)

// RunReadWriteTests executes the reader/writer contract tests.
func (suite *StoreTestSuite) RunReadWriteTests(t *testing.T) {
	t.Run("RoundTrip", suite.testRoundTrip)
	t.Run("Overwrite", suite.testOverwrite)
	t.Run("Empty", suite.testEmptyObject)
	t.Run("ReadMissing", suite.testReadMissing)
	t.Run("ReadDirectory", suite.testReadDirectory)
	t.Run("DoubleClose", suite.testDoubleClose)
	t.Run("AbortDiscards", suite.testAbortDiscards)
}

func (suite *StoreTestSuite) testRoundTrip(t *testing.T) {
	store := suite.NewStore(t)

	data := []byte("the quick brown fox")
	mustWrite(t, store, "fox.txt", data, storage.WriteOptions{})

	assert.Equal(t, data, mustRead(t, store, "fox.txt"))
}

func (suite *StoreTestSuite) testOverwrite(t *testing.T) {
	store := suite.NewStore(t)

	mustWrite(t, store, "note.txt", []byte("first version, longer"), storage.WriteOptions{})
	mustWrite(t, store, "note.txt", []byte("second"), storage.WriteOptions{})

	assert.Equal(t, []byte("second"), mustRead(t, store, "note.txt"))
	assert.Equal(t, uint64(6), mustStat(t, store, "note.txt").Size)
}

func (suite *StoreTestSuite) testEmptyObject(t *testing.T) {
	store := suite.NewStore(t)

	mustWrite(t, store, "empty.bin", nil, storage.WriteOptions{})

	assert.Empty(t, mustRead(t, store, "empty.bin"))
	assert.Equal(t, uint64(0), mustStat(t, store, "empty.bin").Size)
}

func (suite *StoreTestSuite) testReadMissing(t *testing.T) {
	store := suite.NewStore(t)

	_, err := store.OpenReader(testContext(), "ghost.txt")
	AssertErrorIs(t, storage.ErrNotFound, err)
}

func (suite *StoreTestSuite) testReadDirectory(t *testing.T) {
	store := suite.NewStore(t)

	mustCreateDir(t, store, "adir")

	_, err := store.OpenReader(testContext(), "adir")
	AssertErrorIs(t, storage.ErrIsADirectory, err)
}

func (suite *StoreTestSuite) testAbortDiscards(t *testing.T) {
	store := suite.NewStore(t)

	writer, err := store.OpenWriter(testContext(), "halfway.txt", storage.WriteOptions{})
	require.NoError(t, err)

	aborter, ok := writer.(storage.Aborter)
	require.True(t, ok, "writer must support aborting")

	_, err = writer.Write([]byte("trunc"))
	require.NoError(t, err)

	require.NoError(t, aborter.Abort())

	// A close after the abort must not resurrect the partial object.
	assert.NoError(t, writer.Close())

	_, err = store.Stat(testContext(), "halfway.txt")
	AssertErrorIs(t, storage.ErrNotFound, err)
}

func (suite *StoreTestSuite) testDoubleClose(t *testing.T) {
	store := suite.NewStore(t)

	writer, err := store.OpenWriter(testContext(), "once.txt", storage.WriteOptions{})
	require.NoError(t, err)

	_, err = writer.Write([]byte("payload"))
	require.NoError(t, err)

	require.NoError(t, writer.Close())
	assert.NoError(t, writer.Close(), "second close should be a no-op")

	assert.Equal(t, []byte("payload"), mustRead(t, store, "once.txt"))
}
