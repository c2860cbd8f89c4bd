// Package blob stores uploaded media in the Firebase Storage bucket.
package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// Store uploads and removes objects.
type Store interface {
	// Upload writes r to path and returns a URL the front end can load.
	Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error)
	// DeletePrefix removes every object whose name starts with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}

type bucketStore struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

// NewBucketStore wraps a Cloud Storage bucket handle.
func NewBucketStore(bucket *gcs.BucketHandle, bucketName string) Store {
	if bucket == nil {
		panic("storage bucket is not initialized for blob.Store")
	}
	return &bucketStore{bucket: bucket, bucketName: bucketName}
}

func (s *bucketStore) Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error) {
	w := s.bucket.Object(path).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to upload object %q: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object %q: %w", path, err)
	}
	return DownloadURL(s.bucketName, path), nil
}

func (s *bucketStore) DeletePrefix(ctx context.Context, prefix string) error {
	it := s.bucket.Objects(ctx, &gcs.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to list objects under %q: %w", prefix, err)
		}
		if err := s.bucket.Object(attrs.Name).Delete(ctx); err != nil && err != gcs.ErrObjectNotExist {
			return fmt.Errorf("failed to delete object %q: %w", attrs.Name, err)
		}
	}
}

// DownloadURL builds the Firebase Storage media URL for an object.
func DownloadURL(bucketName, path string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media",
		bucketName, url.PathEscape(path))
}

// ObjectName makes a client-supplied file name safe to use as the last path segment.
func ObjectName(fileName string) string {
	name := strings.TrimSpace(fileName)
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" || name == "." || name == ".." {
		return "upload"
	}
	return name
}
