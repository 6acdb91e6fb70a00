package proxyupload

import (
	"context"
	"time"
)

// Presigner produces time-limited URLs for single object operations.
// Implementations compute signatures locally and do not contact the store.
type Presigner interface {
	// PresignPut returns a URL that allows one PUT of key with the given
	// Content-Type header until ttl elapses.
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)

	// PresignGet returns a URL that allows GET of key until ttl elapses.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// KeyGenerator derives a fresh object key for an upload.
type KeyGenerator interface {
	GenerateKey(extension string) (string, error)
}
