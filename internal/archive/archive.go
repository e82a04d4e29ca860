// Package archive mirrors completed downloads to an object store bucket.
//
// Buckets are addressed by gocloud URL (s3://, gs://, file://, mem://); the
// caller links the drivers it wants. Mirroring is best-effort and never
// touches the local copy.
package archive

import (
	"context"
	"fmt"
	"io"
	"os"

	"gocloud.dev/blob"
)

// Archiver writes local files into one bucket.
type Archiver struct {
	bucket *blob.Bucket
}

// Open opens the bucket behind a gocloud URL.
func Open(ctx context.Context, bucketURL string) (*Archiver, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("archive: open bucket: %w", err)
	}
	return &Archiver{bucket: bucket}, nil
}

// New wraps an already-open bucket.
func New(bucket *blob.Bucket) *Archiver {
	return &Archiver{bucket: bucket}
}

// Store uploads the file at path under key, overwriting any previous object.
func (a *Archiver) Store(ctx context.Context, key, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("archive: open %s: %w", path, err)
	}
	defer f.Close()

	w, err := a.bucket.NewWriter(ctx, key, nil)
	if err != nil {
		return fmt.Errorf("archive: create writer for %s: %w", key, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return fmt.Errorf("archive: upload %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("archive: finalize %s: %w", key, err)
	}
	return nil
}

// Close releases the bucket.
func (a *Archiver) Close() error {
	return a.bucket.Close()
}
