package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/marmos91/ferry/pkg/storage"
)

// OpenWriter returns a writer that buffers the object in memory and uploads
// it with one PutObject call when closed.
//
// S3 objects are immutable, so nothing is visible at the key until Close
// returns; an abandoned writer uploads nothing. Objects larger than
// available memory would need a multipart upload here.
func (s *Store) OpenWriter(ctx context.Context, path string, opts storage.WriteOptions) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	normalized := storage.NormalizePath(path)

	if normalized == "" || normalized == "/" || strings.HasSuffix(normalized, "/") {
		return nil, fmt.Errorf("write %s: %w", normalized, storage.ErrIsADirectory)
	}

	return &objectWriter{
		ctx:   ctx,
		store: s,
		key:   s.objectKey(normalized),
		path:  normalized,
		opts:  opts,
	}, nil
}

// objectWriter accumulates bytes and commits them on Close.
type objectWriter struct {
	ctx   context.Context
	store *Store
	key   string
	path  string
	opts  storage.WriteOptions

	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
}

func (w *objectWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, fmt.Errorf("write %s: writer already closed: %w", w.path, storage.ErrUnexpected)
	}

	return w.buf.Write(p)
}

// Abort implements storage.Aborter: the buffer is dropped and no upload
// happens, so nothing ever appears at the key.
func (w *objectWriter) Abort() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closed = true
	w.buf.Reset()

	return nil
}

// Close uploads the buffered object. This is the durability point: only a
// successful Close makes the object visible. Closing twice is a no-op.
func (w *objectWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	input := &awss3.PutObjectInput{
		Bucket:        aws.String(w.store.bucket),
		Key:           aws.String(w.key),
		Body:          bytes.NewReader(w.buf.Bytes()),
		ContentLength: aws.Int64(int64(w.buf.Len())),
	}

	if w.opts.ContentType != "" {
		input.ContentType = aws.String(w.opts.ContentType)
	}

	if w.opts.ContentDisposition != "" {
		input.ContentDisposition = aws.String(w.opts.ContentDisposition)
	}

	if _, err := w.store.client.PutObject(w.ctx, input); err != nil {
		return fmt.Errorf("write %s: %w", w.path, mapError(err))
	}

	return nil
}
