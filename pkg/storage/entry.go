package storage

import (
	"mime"
	"path"
	"strings"
)

// EntryMode identifies what kind of object an entry describes.
type EntryMode int

const (
	// ModeUnknown is reported when the backend cannot classify the entry.
	ModeUnknown EntryMode = iota

	// ModeFile is a regular object with readable content.
	ModeFile

	// ModeDir is a directory. Directory entry paths end with a separator.
	ModeDir
)

// String returns a human-readable mode name for logs and errors.
func (m EntryMode) String() string {
	switch m {
	case ModeFile:
		return "file"
	case ModeDir:
		return "dir"
	default:
		return "unknown"
	}
}

// Entry is one listing or stat result: a path plus the metadata the backend
// knows about it. Entries are produced by backends and read-only to the
// engine.
type Entry struct {
	// Path is the normalized, root-relative path of the entry. Directory
	// paths carry a trailing separator.
	Path string

	// Mode classifies the entry as file or directory.
	Mode EntryMode

	// Size is the content length in bytes. Zero for directories and for
	// backends that do not track sizes.
	Size uint64

	// ContentType is the MIME type recorded with the object, if any.
	ContentType string

	// ContentDisposition is the raw Content-Disposition value recorded with
	// the object, if any. It may suggest a filename for path-less sources.
	ContentDisposition string
}

// IsDir reports whether the entry is a directory.
func (e *Entry) IsDir() bool {
	return e.Mode == ModeDir
}

// IsFile reports whether the entry is a regular object.
func (e *Entry) IsFile() bool {
	return e.Mode == ModeFile
}

// Name returns the filename the entry should take when placed inside a
// directory: the last segment of its path, or failing that a filename
// suggested by the Content-Disposition metadata. Returns an empty string
// when neither source yields a name.
func (e *Entry) Name() string {
	if name := PathName(e.Path); name != "" {
		return name
	}

	return dispositionFilename(e.ContentDisposition)
}

// dispositionFilename extracts the filename parameter from a raw
// Content-Disposition value, e.g. `attachment; filename="report.pdf"`.
func dispositionFilename(disposition string) string {
	if disposition == "" {
		return ""
	}

	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}

	return params["filename"]
}

// PathName returns the last segment of a normalized path, or an empty string
// when the path has none (empty, root, or directory-marked paths).
func PathName(p string) string {
	if p == "" || strings.HasSuffix(p, "/") {
		return ""
	}

	name := path.Base(p)
	if name == "." || name == "/" {
		return ""
	}

	return name
}
