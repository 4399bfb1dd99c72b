// Package flat provides an exact, brute-force vector store backed by
// parallel arrays. Vectors are unit-normalised on insert so the inner
// product is the cosine similarity.
package flat

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/reqlens/internal/core/domain"
	"github.com/custodia-labs/reqlens/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is a flat inner-product index. Record i owns
// vectors[i*dim:(i+1)*dim], meta[i] and ids[i].
type Store struct {
	mu      sync.RWMutex
	dim     int
	vectors []float32
	meta    []domain.ChunkMetadata
	ids     []int
	nextID  int
}

// New creates an empty store of the given dimension.
func New(dimension int) (*Store, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", domain.ErrInvalidInput, dimension)
	}
	return &Store{dim: dimension}, nil
}

// Dimension returns the configured vector dimension.
func (s *Store) Dimension() int { return s.dim }

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// Insert appends one vector and returns its record id.
func (s *Store) Insert(vector []float32, meta domain.ChunkMetadata) (int, error) {
	ids, err := s.InsertBatch([][]float32{vector}, []domain.ChunkMetadata{meta})
	if err != nil {
		return 0, err
	}
	return ids[0], nil
}

// InsertBatch validates every vector before appending any of them.
func (s *Store) InsertBatch(vectors [][]float32, metas []domain.ChunkMetadata) ([]int, error) {
	if len(vectors) != len(metas) {
		return nil, fmt.Errorf("%w: %d vectors, %d metadata entries", domain.ErrInvalidInput, len(vectors), len(metas))
	}

	normalised := make([]float32, 0, len(vectors)*s.dim)
	for i, v := range vectors {
		unit, err := s.normalise(v)
		if err != nil {
			return nil, fmt.Errorf("vector %d: %w", i, err)
		}
		normalised = append(normalised, unit...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int, len(vectors))
	for i := range vectors {
		ids[i] = s.nextID
		s.nextID++
	}
	s.vectors = append(s.vectors, normalised...)
	s.meta = append(s.meta, metas...)
	s.ids = append(s.ids, ids...)
	return ids, nil
}

// Search scores every record against query and keeps those reaching threshold.
func (s *Store) Search(query []float32, topK int, threshold float64) ([]domain.SearchHit, error) {
	q, err := s.normalise(query)
	if err != nil {
		return nil, err
	}
	if topK <= 0 {
		return []domain.SearchHit{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make([]domain.SearchHit, 0, topK)
	for i := range s.ids {
		score := float64(dot(q, s.vectors[i*s.dim:(i+1)*s.dim]))
		if score < threshold {
			continue
		}
		hits = append(hits, domain.SearchHit{RecordID: s.ids[i], Metadata: s.meta[i], Score: score})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].RecordID < hits[j].RecordID
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// RemoveDocument compacts the arrays in place, keeping surviving ids.
func (s *Store) RemoveDocument(documentID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := 0
	for i := range s.ids {
		if s.meta[i].DocumentID == documentID {
			continue
		}
		if kept != i {
			copy(s.vectors[kept*s.dim:(kept+1)*s.dim], s.vectors[i*s.dim:(i+1)*s.dim])
			s.meta[kept] = s.meta[i]
			s.ids[kept] = s.ids[i]
		}
		kept++
	}
	removed := len(s.ids) - kept
	s.vectors = s.vectors[:kept*s.dim]
	s.meta = s.meta[:kept]
	s.ids = s.ids[:kept]
	return removed
}

// Records returns a document's chunk metadata ordered by chunk index.
func (s *Store) Records(documentID string) []domain.ChunkMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.ChunkMetadata
	for _, m := range s.meta {
		if m.DocumentID == documentID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Stats describes occupancy. StorageSizeBytes counts the vector buffer only.
func (s *Store) Stats() domain.StoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.StoreStats{
		TotalVectors:     len(s.ids),
		Dimension:        s.dim,
		StorageSizeBytes: len(s.vectors) * 4,
		MetadataEntries:  len(s.meta),
	}
}

// Reset removes all records. Record ids are not reused afterwards.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	s.meta = nil
	s.ids = nil
}

// Save persists the store under name.
func (s *Store) Save(ctx context.Context, blobs driven.BlobStore, name string) error {
	data, err := s.MarshalBinary()
	if err != nil {
		return err
	}
	if err := blobs.Write(ctx, name, data); err != nil {
		return fmt.Errorf("save vector store: %w", err)
	}
	return nil
}

// Load replaces the store with the blob stored under name.
// A missing blob returns domain.ErrNotFound and leaves the store unchanged.
func (s *Store) Load(ctx context.Context, blobs driven.BlobStore, name string) error {
	data, err := blobs.Read(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("load vector store: %w", err)
	}
	return s.UnmarshalBinary(data)
}

func (s *Store) normalise(v []float32) ([]float32, error) {
	if len(v) != s.dim {
		return nil, fmt.Errorf("%w: got %d, want %d", domain.ErrDimensionMismatch, len(v), s.dim)
	}
	norm := math.Sqrt(float64(dot(v, v)))
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return nil, fmt.Errorf("%w: vector has no direction", domain.ErrInvalidInput)
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out, nil
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
