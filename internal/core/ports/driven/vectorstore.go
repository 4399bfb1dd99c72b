package driven

import (
	"context"

	"github.com/custodia-labs/reqlens/internal/core/domain"
)

// VectorStore holds fixed-dimension unit vectors with parallel chunk metadata.
// Searches may run concurrently; mutations must be serialised by the caller.
type VectorStore interface {
	// Insert appends one vector and returns its record id.
	// Returns domain.ErrDimensionMismatch if len(vector) != Dimension().
	Insert(vector []float32, meta domain.ChunkMetadata) (int, error)

	// InsertBatch appends vectors all-or-nothing.
	InsertBatch(vectors [][]float32, metas []domain.ChunkMetadata) ([]int, error)

	// Search returns up to topK hits scoring at least threshold, by descending
	// score with ties broken by lower record id.
	Search(query []float32, topK int, threshold float64) ([]domain.SearchHit, error)

	// RemoveDocument drops every record of a document and returns how many were removed.
	RemoveDocument(documentID string) int

	// Records returns the metadata of a document's records in chunk order.
	Records(documentID string) []domain.ChunkMetadata

	// Len returns the number of records.
	Len() int

	// Dimension returns the configured vector dimension.
	Dimension() int

	// Stats describes occupancy.
	Stats() domain.StoreStats

	// Reset removes all records.
	Reset()

	// MarshalBinary encodes vectors and metadata.
	MarshalBinary() ([]byte, error)

	// UnmarshalBinary replaces the contents from an encoding.
	// Returns domain.ErrCorruptIndex on any inconsistency, leaving the store untouched.
	UnmarshalBinary(data []byte) error

	// Save persists the store under name.
	Save(ctx context.Context, blobs BlobStore, name string) error

	// Load restores the store from name.
	Load(ctx context.Context, blobs BlobStore, name string) error
}
