package driven

import "context"

// BlobStore is an opaque byte persistence backend keyed by name.
// The vector store and the index state are written through it.
type BlobStore interface {
	// Read returns the bytes stored under name.
	// Returns domain.ErrNotFound if nothing was written.
	Read(ctx context.Context, name string) ([]byte, error)

	// Write replaces the bytes stored under name.
	// A write is atomic: readers see the old or the new value, never a mix.
	Write(ctx context.Context, name string, data []byte) error

	// Delete removes name. Deleting a missing name is not an error.
	Delete(ctx context.Context, name string) error

	// Close releases resources.
	Close() error
}
