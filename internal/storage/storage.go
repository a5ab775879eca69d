// Package storage holds the audio blob backends. The archive depends
// only on the BlobStore interface; main.go picks the implementation
// from STORAGE_TYPE, so swapping local disk for GCS is a wiring change.
package storage

import (
	"context"
	"io"
	"time"
)

// BlobStore is the only interface the archive depends on.
type BlobStore interface {
	// Upload writes the blob under objectName.
	Upload(ctx context.Context, r io.Reader, objectName, contentType string) error

	// SignedURL returns a time-limited playback URL for objectName.
	// Objects are private; this is the only read path.
	SignedURL(ctx context.Context, objectName string, ttl time.Duration) (string, error)

	// Delete removes objectName.
	Delete(ctx context.Context, objectName string) error
}
