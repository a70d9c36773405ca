// Package storagetest provides a conformance suite for storage.Store
// implementations. It tests the interface contract, not implementation
// details, so every backend (memory, filesystem, S3, Badger) runs the same
// assertions.
package storagetest

import (
	"context"
	"testing"

	"github.com/marmos91/ferry/pkg/storage"
)

// StoreTestSuite exercises the storage.Store contract against a backend.
//
// Usage:
//
//	func TestStore(t *testing.T) {
//	    suite := &storagetest.StoreTestSuite{
//	        NewStore: func(t *testing.T) storage.Store {
//	            return memory.New()
//	        },
//	    }
//	    suite.Run(t)
//	}
type StoreTestSuite struct {
	// NewStore creates a fresh, empty store for each test. Backends that
	// need scratch space use t.TempDir inside the factory.
	NewStore func(t *testing.T) storage.Store

	// NoMetadata skips the content-type assertions for backends with no
	// place to record object metadata (the local filesystem).
	NoMetadata bool
}

// Run executes every test in the suite.
func (suite *StoreTestSuite) Run(t *testing.T) {
	t.Run("Stat", suite.RunStatTests)
	t.Run("Directories", suite.RunDirTests)
	t.Run("ReadWrite", suite.RunReadWriteTests)
	t.Run("List", suite.RunListTests)
}

// testContext returns a standard test context.
func testContext() context.Context {
	return context.Background()
}
