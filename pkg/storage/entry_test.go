package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntryName(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		want  string
	}{
		{
			name:  "from path",
			entry: Entry{Path: "docs/report.pdf", Mode: ModeFile},
			want:  "report.pdf",
		},
		{
			name:  "root has no name",
			entry: Entry{Path: "/", Mode: ModeDir},
			want:  "",
		},
		{
			name: "content disposition fallback",
			entry: Entry{
				Path:               "",
				Mode:               ModeFile,
				ContentDisposition: `attachment; filename="export.csv"`,
			},
			want: "export.csv",
		},
		{
			name: "path wins over disposition",
			entry: Entry{
				Path:               "a/b.txt",
				Mode:               ModeFile,
				ContentDisposition: `attachment; filename="other.txt"`,
			},
			want: "b.txt",
		},
		{
			name:  "no source at all",
			entry: Entry{Path: "", Mode: ModeFile},
			want:  "",
		},
		{
			name: "malformed disposition",
			entry: Entry{
				Path:               "",
				Mode:               ModeFile,
				ContentDisposition: ";;;",
			},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entry.Name())
		})
	}
}

func TestEntryModeString(t *testing.T) {
	assert.Equal(t, "file", ModeFile.String())
	assert.Equal(t, "dir", ModeDir.String())
	assert.Equal(t, "unknown", ModeUnknown.String())
}
