package storage

import (
	"context"
	"errors"
	"io"
)

var ErrObjectNotFound = errors.New("object not found")

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// ObjectStore is a bucket of keyed blobs.
type ObjectStore interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	// Download returns the object body; the caller closes it.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}
