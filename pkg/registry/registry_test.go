package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/ferry/pkg/storage"
	"github.com/marmos91/ferry/pkg/storage/memory"
)

func TestRegistry_Default(t *testing.T) {
	r := Default()

	assert.Equal(t, []string{"badger", "file", "mem", "s3"}, r.Schemes())
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := New()

	require.NoError(t, r.Register("mem", memoryFactory))
	assert.Error(t, r.Register("mem", memoryFactory))
}

func TestRegistry_OpenMem(t *testing.T) {
	r := Default()

	store, path, err := r.Open(context.Background(), "mem://staging/file.txt")
	require.NoError(t, err)
	require.NotNil(t, store)

	assert.Equal(t, "staging/file.txt", path)
}

func TestRegistry_OpenUnknownScheme(t *testing.T) {
	r := Default()

	_, _, err := r.Open(context.Background(), "carrier-pigeon://nest/egg")
	assert.ErrorIs(t, err, storage.ErrUnsupported)
}

func TestRegistry_OpenKindFilesystem(t *testing.T) {
	r := Default()
	root := t.TempDir()

	store, err := r.OpenKind(context.Background(), "file", map[string]any{"path": root})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.CreateDir(ctx, "made-by-registry"))

	info, err := os.Stat(filepath.Join(root, "made-by-registry"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestRegistry_OpenKindAliases(t *testing.T) {
	r := Default()

	_, err := r.OpenKind(context.Background(), "memory", nil)
	assert.NoError(t, err)

	_, err = r.OpenKind(context.Background(), "filesystem", map[string]any{"path": t.TempDir()})
	assert.NoError(t, err)
}

func TestRegistry_FilesystemRequiresPath(t *testing.T) {
	r := Default()

	_, err := r.OpenKind(context.Background(), "file", map[string]any{})
	assert.Error(t, err)
}

func TestRegistry_OpenBadgerInMemory(t *testing.T) {
	r := Default()

	store, err := r.OpenKind(context.Background(), "badger", map[string]any{"in_memory": true})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.CreateDir(ctx, "dir"))

	entry, err := store.Stat(ctx, "dir")
	require.NoError(t, err)
	assert.True(t, entry.IsDir())
}

func TestRegistry_Profiles(t *testing.T) {
	r := Default()
	r.SetProfiles(map[string]Profile{
		"scratch": {Type: "mem"},
	})

	store, path, err := r.Open(context.Background(), "profile://scratch/work/item.txt")
	require.NoError(t, err)
	require.NotNil(t, store)

	assert.Equal(t, "work/item.txt", path)
}

func TestRegistry_UnknownProfile(t *testing.T) {
	r := Default()

	_, _, err := r.Open(context.Background(), "profile://nope/x")
	assert.ErrorIs(t, err, storage.ErrUnsupported)
}

func TestChain(t *testing.T) {
	declined := func(ctx context.Context, _ map[string]any) (storage.Store, error) {
		return nil, fmt.Errorf("not for me: %w", storage.ErrUnsupported)
	}
	accepted := func(ctx context.Context, _ map[string]any) (storage.Store, error) {
		return memory.New(), nil
	}
	broken := func(ctx context.Context, _ map[string]any) (storage.Store, error) {
		return nil, errors.New("hard failure")
	}

	store, err := Chain(declined, accepted)(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, store)

	// A non-Unsupported error short-circuits: the accepting factory after
	// the broken one is never reached.
	_, err = Chain(declined, broken, accepted)(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, "hard failure", err.Error())

	_, err = Chain(declined, declined)(context.Background(), nil)
	assert.ErrorIs(t, err, storage.ErrUnsupported)
}

func TestParseProfiles(t *testing.T) {
	data := []byte(`
backups:
  type: s3
  bucket: my-bucket
  region: eu-west-1
scratch:
  type: mem
`)

	profiles, err := ParseProfiles(data)
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	assert.Equal(t, "s3", profiles["backups"].Type)
	assert.Equal(t, "my-bucket", profiles["backups"].Options["bucket"])
	assert.Equal(t, "mem", profiles["scratch"].Type)
}

func TestParseProfiles_MissingType(t *testing.T) {
	_, err := ParseProfiles([]byte("bad:\n  bucket: x\n"))
	assert.Error(t, err)
}

func TestLoadProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ferry.yaml")

	content := []byte(`
profiles:
  local:
    type: file
    path: /tmp/ferry-data
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	profiles, err := LoadProfiles(path)
	require.NoError(t, err)
	require.Contains(t, profiles, "local")

	assert.Equal(t, "file", profiles["local"].Type)
	assert.Equal(t, "/tmp/ferry-data", profiles["local"].Options["path"])
}
