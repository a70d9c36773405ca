package storagetest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marmos91/ferry/pkg/storage"
)

// RunListTests executes the List contract tests.
func (suite *StoreTestSuite) RunListTests(t *testing.T) {
	t.Run("Shallow", suite.testListShallow)
	t.Run("Recursive", suite.testListRecursive)
	t.Run("EmptyDir", suite.testListEmptyDir)
	t.Run("Missing", suite.testListMissing)
	t.Run("Subdirectory", suite.testListSubdirectory)
}

// seedTree writes a small fixture tree:
//
//	a.txt
//	b.txt
//	sub/c.txt
func seedTree(t *testing.T, store storage.Store) {
	t.Helper()

	mustWrite(t, store, "a.txt", []byte("aaa"), storage.WriteOptions{})
	mustWrite(t, store, "b.txt", []byte("bb"), storage.WriteOptions{})
	mustCreateDir(t, store, "sub")
	mustWrite(t, store, "sub/c.txt", []byte("c"), storage.WriteOptions{})
}

func (suite *StoreTestSuite) testListShallow(t *testing.T) {
	store := suite.NewStore(t)
	seedTree(t, store)

	entries := mustList(t, store, "", storage.ListOptions{})

	assert.Equal(t, []string{"a.txt", "b.txt", "sub/"}, entryPaths(entries))
	assertEntryMode(t, entries, "a.txt", storage.ModeFile)
	assertEntryMode(t, entries, "sub/", storage.ModeDir)
}

func (suite *StoreTestSuite) testListRecursive(t *testing.T) {
	store := suite.NewStore(t)
	seedTree(t, store)

	entries := mustList(t, store, "", storage.ListOptions{Recursive: true})

	paths := entryPaths(entries)
	assert.Contains(t, paths, "a.txt")
	assert.Contains(t, paths, "b.txt")
	assert.Contains(t, paths, "sub/c.txt")
	assertEntryMode(t, entries, "sub/c.txt", storage.ModeFile)
	assertEntryMode(t, entries, "sub/", storage.ModeDir)
}

func (suite *StoreTestSuite) testListEmptyDir(t *testing.T) {
	store := suite.NewStore(t)

	mustCreateDir(t, store, "vacant")

	entries := mustList(t, store, "vacant", storage.ListOptions{})
	assert.Empty(t, entries, "explicitly created empty directory should list as empty")
}

func (suite *StoreTestSuite) testListMissing(t *testing.T) {
	store := suite.NewStore(t)

	entries := mustList(t, store, "nowhere", storage.ListOptions{})
	assert.Empty(t, entries, "listing a missing path should yield an empty result")
}

func (suite *StoreTestSuite) testListSubdirectory(t *testing.T) {
	store := suite.NewStore(t)
	seedTree(t, store)

	entries := mustList(t, store, "sub", storage.ListOptions{})

	assert.Equal(t, []string{"sub/c.txt"}, entryPaths(entries))
	assertEntryMode(t, entries, "sub/c.txt", storage.ModeFile)
}
