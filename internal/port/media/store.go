// Package media defines the blob storage port for uploaded images.
package media

import (
	"context"
	"io"
)

// Store persists uploaded image blobs under opaque names.
type Store interface {
	// Put stores the blob and returns the public path it is served from.
	Put(ctx context.Context, name string, contentType string, r io.Reader) (string, error)

	// Open returns a reader over a stored blob.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Delete removes a stored blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
}
