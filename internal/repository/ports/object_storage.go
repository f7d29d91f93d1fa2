package ports

import (
	"context"
	"io"
)

// ObjectStorage stores profile photos. Upload returns the public URL of the
// stored object.
type ObjectStorage interface {
	Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error)
	Remove(ctx context.Context, bucket, objectName string) error
}
