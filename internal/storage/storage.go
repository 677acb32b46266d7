package storage

import (
	"context"
	"io"
	"time"
)

// Storage abstracts where profile pictures live: MinIO when configured,
// the local uploads directory otherwise.
type Storage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
}

// URLPresigner is implemented by backends that can mint time-limited direct
// download URLs for stored objects. Local storage serves files statically
// instead and does not implement it.
type URLPresigner interface {
	PresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}
