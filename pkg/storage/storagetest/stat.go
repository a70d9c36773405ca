package storagetest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/ferry/pkg/storage"
)

// RunStatTests executes the Stat contract tests.
func (suite *StoreTestSuite) RunStatTests(t *testing.T) {
	t.Run("Missing", suite.testStatMissing)
	t.Run("Root", suite.testStatRoot)
	t.Run("File", suite.testStatFile)
	t.Run("FileMetadata", suite.testStatFileMetadata)
}

func (suite *StoreTestSuite) testStatMissing(t *testing.T) {
	store := suite.NewStore(t)

	_, err := store.Stat(testContext(), "does/not/exist.txt")
	AssertErrorIs(t, storage.ErrNotFound, err)
}

func (suite *StoreTestSuite) testStatRoot(t *testing.T) {
	store := suite.NewStore(t)

	entry := mustStat(t, store, "/")
	assert.True(t, entry.IsDir(), "root should stat as a directory")
}

func (suite *StoreTestSuite) testStatFile(t *testing.T) {
	store := suite.NewStore(t)

	data := []byte("hello world")
	mustWrite(t, store, "hello.txt", data, storage.WriteOptions{})

	entry := mustStat(t, store, "hello.txt")
	assert.True(t, entry.IsFile(), "written object should stat as a file")
	assert.Equal(t, uint64(len(data)), entry.Size)
}

func (suite *StoreTestSuite) testStatFileMetadata(t *testing.T) {
	if suite.NoMetadata {
		t.Skip("backend does not record object metadata")
	}

	store := suite.NewStore(t)

	mustWrite(t, store, "report.csv", []byte("a,b\n"), storage.WriteOptions{
		ContentType: "text/csv",
	})

	entry := mustStat(t, store, "report.csv")
	assert.Equal(t, "text/csv", entry.ContentType)
}

// RunDirTests executes the CreateDir contract tests.
func (suite *StoreTestSuite) RunDirTests(t *testing.T) {
	t.Run("CreateAndStat", suite.testCreateDir)
	t.Run("Idempotent", suite.testCreateDirIdempotent)
	t.Run("NestedParents", suite.testCreateDirNested)
	t.Run("TrailingSeparator", suite.testCreateDirSpelling)
}

func (suite *StoreTestSuite) testCreateDir(t *testing.T) {
	store := suite.NewStore(t)

	mustCreateDir(t, store, "docs")

	entry := mustStat(t, store, "docs")
	assert.True(t, entry.IsDir())
}

func (suite *StoreTestSuite) testCreateDirIdempotent(t *testing.T) {
	store := suite.NewStore(t)

	mustCreateDir(t, store, "docs")
	mustCreateDir(t, store, "docs")

	entry := mustStat(t, store, "docs")
	assert.True(t, entry.IsDir())
}

func (suite *StoreTestSuite) testCreateDirNested(t *testing.T) {
	store := suite.NewStore(t)

	mustCreateDir(t, store, "a/b/c")

	require.True(t, mustStat(t, store, "a/b/c").IsDir())

	// Ancestors resolve as directories too, explicitly created or implied.
	assert.True(t, mustStat(t, store, "a/b").IsDir())
	assert.True(t, mustStat(t, store, "a").IsDir())
}

func (suite *StoreTestSuite) testCreateDirSpelling(t *testing.T) {
	store := suite.NewStore(t)

	mustCreateDir(t, store, "spelled/")

	entry := mustStat(t, store, "spelled")
	assert.True(t, entry.IsDir())

	entry = mustStat(t, store, "spelled/")
	assert.True(t, entry.IsDir())
}
