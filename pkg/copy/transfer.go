package copy

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/marmos91/ferry/internal/logger"
	"github.com/marmos91/ferry/pkg/storage"
)

// transferBufferSize bounds the memory held per in-flight transfer,
// independent of object size.
const transferBufferSize = 256 * 1024

// transfer streams one file from the source store to the destination store
// through a fixed-size buffer, carrying the source's content type along.
//
// The destination writer is closed exactly once, and only after every byte
// has been written: closing is the durability point for buffering backends.
// On a mid-stream failure the writer is aborted instead, so the truncated
// bytes are never committed as a complete object.
func (c *Copier) transfer(ctx context.Context, src, dst, contentType string) error {
	logger.Debug("transfer %s -> %s", src, dst)

	reader, err := c.source.OpenReader(ctx, src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer reader.Close()

	writer, err := c.destination.OpenWriter(ctx, dst, storage.WriteOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("open %s for writing: %w", dst, err)
	}

	buf := make([]byte, transferBufferSize)

	written, err := io.CopyBuffer(writer, reader, buf)
	if err != nil {
		abortWriter(writer)
		return fmt.Errorf("copy %s -> %s: %w", src, dst, err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", dst, err)
	}

	c.metrics.ObserveFile(written)

	return nil
}

// abortWriter discards a writer that must not finalize. Writers without an
// abort path are abandoned unclosed, which for every built-in backend means
// nothing is committed.
func abortWriter(w io.WriteCloser) {
	if aborter, ok := w.(storage.Aborter); ok {
		_ = aborter.Abort()
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
