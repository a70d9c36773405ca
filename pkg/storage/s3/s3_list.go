package s3

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/marmos91/ferry/pkg/storage"
)

// List returns a lazy lister over the entries below path, backed by a
// ListObjectsV2 paginator so only one page of keys is held at a time.
//
// Non-recursive listings use the "/" delimiter: objects become file
// entries and common prefixes become directory entries. Recursive listings
// walk the full key range below the path; directory markers surface as
// directory entries, everything else as files. A path with no keys below
// it yields an empty listing.
func (s *Store) List(ctx context.Context, path string, opts storage.ListOptions) (storage.Lister, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base := storage.EnsureDirPath(storage.NormalizePath(path))
	baseKey := s.dirMarkerKey(base)

	input := &awss3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(baseKey),
	}
	if !opts.Recursive {
		input.Delimiter = aws.String("/")
	}

	return &objectLister{
		store:     s,
		baseKey:   baseKey,
		paginator: awss3.NewListObjectsV2Paginator(s.client, input),
	}, nil
}

// objectLister drains ListObjectsV2 pages one at a time.
type objectLister struct {
	store     *Store
	baseKey   string
	paginator *awss3.ListObjectsV2Paginator
	pending   []storage.Entry
}

// Next implements storage.Lister.
func (l *objectLister) Next(ctx context.Context) (*storage.Entry, error) {
	for len(l.pending) == 0 {
		if !l.paginator.HasMorePages() {
			return nil, io.EOF
		}

		page, err := l.paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", mapError(err))
		}

		l.pending = l.store.pageEntries(page, l.baseKey)
	}

	entry := l.pending[0]
	l.pending = l.pending[1:]

	return &entry, nil
}

// pageEntries converts one response page into entries, skipping the listed
// directory's own marker object.
func (s *Store) pageEntries(page *awss3.ListObjectsV2Output, baseKey string) []storage.Entry {
	entries := make([]storage.Entry, 0, len(page.Contents)+len(page.CommonPrefixes))

	for _, obj := range page.Contents {
		if obj.Key == nil || *obj.Key == baseKey {
			continue
		}

		entries = append(entries, s.objectEntry(obj))
	}

	for _, prefix := range page.CommonPrefixes {
		if prefix.Prefix == nil {
			continue
		}

		entries = append(entries, storage.Entry{
			Path: s.entryPath(*prefix.Prefix),
			Mode: storage.ModeDir,
		})
	}

	return entries
}

func (s *Store) objectEntry(obj types.Object) storage.Entry {
	key := *obj.Key

	entry := storage.Entry{Path: s.entryPath(key)}

	if strings.HasSuffix(key, "/") {
		entry.Mode = storage.ModeDir
		return entry
	}

	entry.Mode = storage.ModeFile
	if obj.Size != nil {
		entry.Size = uint64(*obj.Size)
	}

	return entry
}
