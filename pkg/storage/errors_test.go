package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapOSError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"not exist", fs.ErrNotExist, ErrNotFound},
		{"permission", fs.ErrPermission, ErrPermissionDenied},
		{"exists", fs.ErrExist, ErrAlreadyExists},
		{"unclassified", errors.New("disk on fire"), ErrUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapOSError(tt.in)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}

			assert.ErrorIs(t, got, tt.want)
		})
	}
}

// Mapping must not stack a second kind onto an already-classified error.
func TestMapOSError_PassThrough(t *testing.T) {
	classified := fmt.Errorf("stat x: %w", ErrNotFound)

	got := MapOSError(classified)
	assert.ErrorIs(t, got, ErrNotFound)
	assert.NotErrorIs(t, got, ErrUnexpected)
}

// The original cause must stay reachable through the chain.
func TestMapOSError_KeepsCause(t *testing.T) {
	cause := fmt.Errorf("open /x: %w", fs.ErrNotExist)

	got := MapOSError(cause)
	assert.ErrorIs(t, got, ErrNotFound)
	assert.ErrorIs(t, got, fs.ErrNotExist)
}
