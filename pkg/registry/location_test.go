package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/ferry/pkg/storage"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		scheme  string
		host    string
		path    string
		options map[string]any
	}{
		{
			name:   "s3 bucket and path",
			raw:    "s3://my-bucket/backup/2024",
			scheme: "s3",
			host:   "my-bucket",
			path:   "backup/2024",
		},
		{
			name:   "file absolute path",
			raw:    "file:///tmp/data/src.txt",
			scheme: "file",
			path:   "tmp/data/src.txt",
		},
		{
			name:    "query options",
			raw:     "s3://bucket/x?region=eu-west-1&endpoint=http://localhost:4566",
			scheme:  "s3",
			host:    "bucket",
			path:    "x",
			options: map[string]any{"region": "eu-west-1", "endpoint": "http://localhost:4566"},
		},
		{
			name:   "profile",
			raw:    "profile://backups/daily/dump.tar",
			scheme: "profile",
			host:   "backups",
			path:   "daily/dump.tar",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := ParseLocation(tt.raw)
			require.NoError(t, err)

			assert.Equal(t, tt.scheme, loc.Scheme)
			assert.Equal(t, tt.host, loc.Host)
			assert.Equal(t, tt.path, loc.Path)

			for key, want := range tt.options {
				assert.Equal(t, want, loc.Options[key], "option %s", key)
			}
		})
	}
}

func TestParseLocation_NoScheme(t *testing.T) {
	_, err := ParseLocation("/tmp/just/a/path")
	assert.ErrorIs(t, err, storage.ErrUnsupported)
}

func TestLocation_StorePath(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"s3://bucket/backup/2024", "backup/2024"},
		{"file:///tmp/data/src.txt", "tmp/data/src.txt"},
		{"mem://staging/file.txt", "staging/file.txt"},
		{"mem://file.txt", "file.txt"},
		{"badger:///var/db#notes/today.md", "notes/today.md"},
		{"badger:///var/db", ""},
	}

	for _, tt := range tests {
		loc, err := ParseLocation(tt.raw)
		require.NoError(t, err, tt.raw)

		assert.Equal(t, tt.want, loc.StorePath(), "StorePath(%s)", tt.raw)
	}
}

func TestLocation_BackendOptions(t *testing.T) {
	loc, err := ParseLocation("s3://my-bucket/x?region=eu-west-1")
	require.NoError(t, err)

	options := loc.BackendOptions()
	assert.Equal(t, "my-bucket", options["bucket"])
	assert.Equal(t, "eu-west-1", options["region"])

	loc, err = ParseLocation("badger:///var/lib/ferry#a/b")
	require.NoError(t, err)

	options = loc.BackendOptions()
	assert.Equal(t, "/var/lib/ferry", options["path"])
}
