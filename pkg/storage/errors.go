package storage

import (
	"errors"
	"io/fs"
)

// Standard storage errors.
//
// These sentinels form the shared error taxonomy for every backend. The copy
// and listing engines inspect failures only through errors.Is against these
// values, never through backend-specific types. Backends wrap them with the
// path involved:
//
//	if !exists {
//	    return fmt.Errorf("stat %s: %w", path, storage.ErrNotFound)
//	}
//
// No error is caught or retried inside the engine; the first failure aborts
// the operation and surfaces to the caller with its context intact.
var (
	// ErrNotFound indicates nothing exists at the requested path.
	ErrNotFound = errors.New("entry not found")

	// ErrUnsupported indicates the entry mode or operation is not one the
	// engine can handle (for example a source that is neither file nor
	// directory).
	ErrUnsupported = errors.New("operation not supported")

	// ErrNotADirectory indicates a directory was required but a plain file
	// was found, such as a directory copy targeting an existing file.
	ErrNotADirectory = errors.New("not a directory")

	// ErrIsADirectory indicates a file was required but a directory was
	// found, such as opening a reader on a directory path.
	ErrIsADirectory = errors.New("is a directory")

	// ErrPermissionDenied indicates the backend refused access.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrAlreadyExists indicates an exclusive-create collided with an
	// existing entry.
	ErrAlreadyExists = errors.New("entry already exists")

	// ErrUnexpected indicates a failure without a closer-matching kind:
	// a malformed glob pattern, an underivable filename, or a low-level
	// I/O failure the taxonomy cannot classify.
	ErrUnexpected = errors.New("unexpected storage error")
)

// MapOSError translates an os / io/fs error into the shared taxonomy,
// preserving the original error in the chain. Errors already carrying a
// taxonomy sentinel pass through unchanged; nil maps to nil.
func MapOSError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case isTaxonomyError(err):
		return err
	case errors.Is(err, fs.ErrNotExist):
		return errors.Join(ErrNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return errors.Join(ErrPermissionDenied, err)
	case errors.Is(err, fs.ErrExist):
		return errors.Join(ErrAlreadyExists, err)
	default:
		return errors.Join(ErrUnexpected, err)
	}
}

// isTaxonomyError reports whether err already wraps one of the sentinels,
// so mapping never stacks a second kind onto a classified error.
func isTaxonomyError(err error) bool {
	for _, sentinel := range []error{
		ErrNotFound,
		ErrUnsupported,
		ErrNotADirectory,
		ErrIsADirectory,
		ErrPermissionDenied,
		ErrAlreadyExists,
		ErrUnexpected,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}

	return false
}
