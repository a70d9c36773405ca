// Package s3 implements the ferry storage backend for Amazon S3 and
// S3-compatible object stores.
//
// Key Design:
//   - Repository paths map directly onto object keys below an optional key
//     prefix, so the bucket mirrors the copied tree and stays inspectable.
//   - Directories are zero-byte marker objects whose key ends in "/".
//   - A path with deeper objects but no marker still stats as a directory,
//     matching how the S3 console presents "folders".
//
// S3 has no rename and no true directories; everything here is expressed
// with HeadObject, PutObject, GetObject and ListObjectsV2.
package s3

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/marmos91/ferry/pkg/storage"
)

// Store is the S3-backed storage.Store.
//
// Safe for concurrent use. Writes are last-write-wins under S3's
// consistency model; the store performs no coordination between writers.
type Store struct {
	client *awss3.Client
	bucket string
	prefix string // "" or "some/prefix/" with trailing separator
}

// Config contains the settings for an S3 store.
type Config struct {
	// Client is the configured S3 client.
	Client *awss3.Client

	// Bucket is the bucket name. The bucket must already exist.
	Bucket string

	// Prefix is an optional key prefix placed in front of every path,
	// for example "backups". Leading and trailing separators are
	// normalized away.
	Prefix string
}

// New creates an S3 store and verifies bucket access with a HeadBucket
// call. The bucket is never created here.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cfg.Client == nil {
		return nil, fmt.Errorf("S3 client is required")
	}

	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}

	_, err := cfg.Client.HeadBucket(ctx, &awss3.HeadBucketInput{
		Bucket: aws.String(cfg.Bucket),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to access bucket %q: %w", cfg.Bucket, err)
	}

	return &Store{
		client: cfg.Client,
		bucket: cfg.Bucket,
		prefix: prefix,
	}, nil
}

// objectKey returns the object key for a file path.
func (s *Store) objectKey(path string) string {
	return s.prefix + strings.TrimSuffix(path, "/")
}

// dirMarkerKey returns the marker object key for a directory path.
func (s *Store) dirMarkerKey(path string) string {
	key := strings.TrimSuffix(path, "/")
	if key == "" {
		return s.prefix
	}

	return s.prefix + key + "/"
}

// entryPath translates an object key back into a repository path.
func (s *Store) entryPath(key string) string {
	return strings.TrimPrefix(key, s.prefix)
}

// Stat returns the entry at path.
//
// The root always stats as a directory. For other paths the store first
// tries HeadObject on the file key, then on the directory marker, and
// finally probes for any object below the path so implied directories
// resolve too.
func (s *Store) Stat(ctx context.Context, path string) (*storage.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	normalized := storage.NormalizePath(path)

	if normalized == "" || normalized == "/" {
		return &storage.Entry{Path: "/", Mode: storage.ModeDir}, nil
	}

	// Directory-spelled paths skip the file probe entirely.
	if !strings.HasSuffix(normalized, "/") {
		head, err := s.client.HeadObject(ctx, &awss3.HeadObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.objectKey(normalized)),
		})
		if err == nil {
			entry := &storage.Entry{
				Path: normalized,
				Mode: storage.ModeFile,
			}
			if head.ContentLength != nil {
				entry.Size = uint64(*head.ContentLength)
			}
			if head.ContentType != nil {
				entry.ContentType = *head.ContentType
			}
			if head.ContentDisposition != nil {
				entry.ContentDisposition = *head.ContentDisposition
			}

			return entry, nil
		}
		if !isNotFoundErr(err) {
			return nil, fmt.Errorf("stat %s: %w", normalized, mapError(err))
		}
	}

	dirPath := storage.EnsureDirPath(normalized)

	exists, err := s.dirExists(ctx, dirPath)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", normalized, err)
	}
	if !exists {
		return nil, fmt.Errorf("stat %s: %w", normalized, storage.ErrNotFound)
	}

	return &storage.Entry{Path: dirPath, Mode: storage.ModeDir}, nil
}

// dirExists reports whether a marker object or any object below the
// directory exists. A single ListObjectsV2 page of one key answers both.
func (s *Store) dirExists(ctx context.Context, dirPath string) (bool, error) {
	out, err := s.client.ListObjectsV2(ctx, &awss3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(s.dirMarkerKey(dirPath)),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return false, mapError(err)
	}

	return len(out.Contents) > 0, nil
}

// CreateDir writes a zero-byte directory marker at path. S3 needs no
// intermediate markers for deeper keys to be listable, but one is written
// so the directory survives even when it stays empty. Idempotent.
func (s *Store) CreateDir(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	normalized := storage.NormalizePath(path)
	if normalized == "" || normalized == "/" {
		return nil
	}

	_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.dirMarkerKey(normalized)),
		Body:          strings.NewReader(""),
		ContentLength: aws.Int64(0),
	})
	if err != nil {
		return fmt.Errorf("create dir %s: %w", normalized, mapError(err))
	}

	return nil
}

// isNotFoundErr reports whether err is any of the shapes S3 uses for a
// missing object. HeadObject returns *types.NotFound, GetObject returns
// *types.NoSuchKey, and some S3-compatible services only set the code.
func isNotFoundErr(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}

	return false
}

// mapError translates an S3 SDK error into the shared taxonomy, keeping
// the SDK error in the chain for diagnostics.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if isNotFoundErr(err) {
		return errors.Join(storage.ErrNotFound, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "Forbidden":
			return errors.Join(storage.ErrPermissionDenied, err)
		}
	}

	return errors.Join(storage.ErrUnexpected, err)
}
