package copy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/ferry/pkg/storage/memory"
)

// countingMetrics records observations for assertions.
type countingMetrics struct {
	files int
	bytes int64
	dirs  int
	errs  int
}

func (m *countingMetrics) ObserveFile(bytes int64) {
	m.files++
	m.bytes += bytes
}

func (m *countingMetrics) ObserveDirCreated() { m.dirs++ }
func (m *countingMetrics) ObserveError()      { m.errs++ }

func TestCopier_MetricsOnSuccess(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seedProject(t, store)

	collector := &countingMetrics{}
	copier := New(store, store, collector)

	err := copier.Copy(ctx, "project", "out", Options{Recursive: true})
	require.NoError(t, err)

	assert.Equal(t, 4, collector.files, "a.txt, b.txt, notes.md, sub/c.txt")
	assert.Equal(t, int64(len("alpha")+len("bravo")+len("notes")+len("charlie")), collector.bytes)
	// "out" plus "out/sub".
	assert.Equal(t, 2, collector.dirs)
	assert.Equal(t, 0, collector.errs)
}

func TestCopier_MetricsOnFailure(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	collector := &countingMetrics{}
	copier := New(store, store, collector)

	err := copier.Copy(ctx, "ghost.txt", "dest.txt", Options{})
	require.Error(t, err)

	assert.Equal(t, 1, collector.errs)
	assert.Equal(t, 0, collector.files)
}

// A memoized destination directory is created only once even when many
// files land in it.
func TestCopier_DirCreatedOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	writeFile(t, store, "many/f1.txt", "1")
	writeFile(t, store, "many/f2.txt", "2")
	writeFile(t, store, "many/f3.txt", "3")

	collector := &countingMetrics{}
	copier := New(store, store, collector)

	err := copier.Copy(ctx, "many", "out", Options{})
	require.NoError(t, err)

	assert.Equal(t, 3, collector.files)
	assert.Equal(t, 1, collector.dirs, "only the destination root should be created")
}
