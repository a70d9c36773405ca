package s3

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/marmos91/ferry/pkg/storage"
)

// OpenReader streams the object at path with a single GetObject call. The
// response body is handed to the caller directly, so bytes flow from S3 as
// they are read and never accumulate in memory.
func (s *Store) OpenReader(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	normalized := storage.NormalizePath(path)

	if normalized == "" || normalized == "/" || strings.HasSuffix(normalized, "/") {
		return nil, fmt.Errorf("read %s: %w", normalized, storage.ErrIsADirectory)
	}

	result, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(normalized)),
	})
	if err != nil {
		if isNotFoundErr(err) {
			// The key may still exist as a directory.
			if exists, dirErr := s.dirExists(ctx, storage.EnsureDirPath(normalized)); dirErr == nil && exists {
				return nil, fmt.Errorf("read %s: %w", normalized, storage.ErrIsADirectory)
			}
		}

		return nil, fmt.Errorf("read %s: %w", normalized, mapError(err))
	}

	return result.Body, nil
}
