package flat

import (
	"context"
	"encoding/binary"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqlens/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/reqlens/internal/core/domain"
	"github.com/custodia-labs/reqlens/internal/postprocessors/chunker"
)

func meta(docID string, index int) domain.ChunkMetadata {
	return domain.ChunkMetadata{
		Chunk: domain.Chunk{
			DocumentID: docID,
			Index:      index,
			Text:       "chunk text",
			CharStart:  index * 100,
			CharEnd:    index*100 + 100,
			LineNumber: index + 1,
		},
		DocumentName: docID + ".md",
	}
}

// unit returns a 2-d unit vector whose cosine with (1, 0) is cos.
func unit(cos float64) []float32 {
	return []float32{float32(cos), float32(math.Sqrt(1 - cos*cos))}
}

func newStore(t *testing.T, dim int) *Store {
	t.Helper()
	s, err := New(dim)
	require.NoError(t, err)
	return s
}

func TestNew_InvalidDimension(t *testing.T) {
	_, err := New(0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestInsert_DimensionMismatch(t *testing.T) {
	s := newStore(t, 3)

	_, err := s.Insert([]float32{1, 0}, meta("a", 0))

	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	assert.Equal(t, 0, s.Len())
}

func TestInsert_ZeroVector(t *testing.T) {
	s := newStore(t, 2)

	_, err := s.Insert([]float32{0, 0}, meta("a", 0))

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestInsert_MonotonicIDs(t *testing.T) {
	s := newStore(t, 2)

	id0, err := s.Insert([]float32{1, 0}, meta("a", 0))
	require.NoError(t, err)
	id1, err := s.Insert([]float32{0, 1}, meta("a", 1))
	require.NoError(t, err)

	assert.Equal(t, 0, id0)
	assert.Equal(t, 1, id1)

	s.RemoveDocument("a")
	id2, err := s.Insert([]float32{1, 1}, meta("b", 0))
	require.NoError(t, err)
	assert.Equal(t, 2, id2, "ids are never reused")
}

func TestInsertBatch_AllOrNothing(t *testing.T) {
	s := newStore(t, 2)

	_, err := s.InsertBatch(
		[][]float32{{1, 0}, {1, 2, 3}},
		[]domain.ChunkMetadata{meta("a", 0), meta("a", 1)},
	)

	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	assert.Equal(t, 0, s.Len())

	_, err = s.InsertBatch([][]float32{{1, 0}}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearch_Threshold(t *testing.T) {
	s := newStore(t, 2)
	_, err := s.Insert(unit(0.9), meta("low", 0))
	require.NoError(t, err)
	_, err = s.Insert(unit(0.95), meta("high", 0))
	require.NoError(t, err)

	hits, err := s.Search([]float32{1, 0}, 5, 0.92)
	require.NoError(t, err)

	require.Len(t, hits, 1)
	assert.Equal(t, "high", hits[0].Metadata.DocumentID)
	assert.InDelta(t, 0.95, hits[0].Score, 1e-4)
}

func TestSearch_OrderingAndTies(t *testing.T) {
	s := newStore(t, 2)
	_, _ = s.Insert(unit(0.5), meta("c", 0))
	_, _ = s.Insert(unit(0.8), meta("b", 0))
	_, _ = s.Insert(unit(0.8), meta("b", 1))
	_, _ = s.Insert(unit(1.0), meta("a", 0))

	hits, err := s.Search([]float32{2, 0}, 3, 0)
	require.NoError(t, err)

	require.Len(t, hits, 3)
	assert.Equal(t, 3, hits[0].RecordID)
	assert.Equal(t, 1, hits[1].RecordID, "ties broken by lower record id")
	assert.Equal(t, 2, hits[2].RecordID)
}

func TestSearch_EmptyAndInvalid(t *testing.T) {
	s := newStore(t, 2)

	hits, err := s.Search([]float32{1, 0}, 5, 0.7)
	require.NoError(t, err)
	assert.Empty(t, hits)

	_, err = s.Search([]float32{1, 0, 0}, 5, 0.7)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	_, err = s.Search([]float32{0, 0}, 5, 0.7)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearch_OwnVectorScoresOne(t *testing.T) {
	s := newStore(t, 4)
	v := []float32{0.3, -1.2, 4, 0.5}
	_, err := s.Insert(v, meta("a", 0))
	require.NoError(t, err)
	_, err = s.Insert([]float32{1, 1, 0, 0}, meta("b", 0))
	require.NoError(t, err)

	hits, err := s.Search(v, 5, 0)
	require.NoError(t, err)

	require.NotEmpty(t, hits)
	assert.Equal(t, "a", hits[0].Metadata.DocumentID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-5)
}

func TestRemoveDocument_Compacts(t *testing.T) {
	s := newStore(t, 2)
	_, _ = s.Insert(unit(0.1), meta("a", 0))
	_, _ = s.Insert(unit(0.2), meta("b", 0))
	_, _ = s.Insert(unit(0.3), meta("a", 1))
	_, _ = s.Insert(unit(0.4), meta("b", 1))

	removed := s.RemoveDocument("a")

	assert.Equal(t, 2, removed)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []int{1, 3}, s.ids)
	assert.Len(t, s.vectors, 4)
	assert.Empty(t, s.Records("a"))

	hits, err := s.Search(unit(0.4), 1, 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 3, hits[0].RecordID)
	assert.Equal(t, 0, s.RemoveDocument("missing"))
}

func TestRecords_ChunkOrder(t *testing.T) {
	s := newStore(t, 2)
	_, _ = s.Insert(unit(0.1), meta("a", 2))
	_, _ = s.Insert(unit(0.2), meta("a", 0))
	_, _ = s.Insert(unit(0.3), meta("b", 0))
	_, _ = s.Insert(unit(0.4), meta("a", 1))

	records := s.Records("a")

	require.Len(t, records, 3)
	for i, r := range records {
		assert.Equal(t, i, r.Index)
	}
}

func TestStatsAndReset(t *testing.T) {
	s := newStore(t, 3)
	_, _ = s.Insert([]float32{1, 0, 0}, meta("a", 0))
	_, _ = s.Insert([]float32{0, 1, 0}, meta("a", 1))

	stats := s.Stats()
	assert.Equal(t, domain.StoreStats{TotalVectors: 2, Dimension: 3, StorageSizeBytes: 24, MetadataEntries: 2}, stats)

	s.Reset()
	assert.Equal(t, 0, s.Len())
	id, err := s.Insert([]float32{0, 0, 1}, meta("b", 0))
	require.NoError(t, err)
	assert.Equal(t, 2, id)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	blobs := memory.NewBlobStore()

	s := newStore(t, 3)
	vectors := [][]float32{{1, 2, 3}, {-1, 0.5, 2}, {0, 0, 1}, {4, -2, 1}}
	for i, v := range vectors {
		_, err := s.Insert(v, meta([]string{"a", "b"}[i%2], i))
		require.NoError(t, err)
	}
	s.RemoveDocument("nothing")
	require.NoError(t, s.Save(ctx, blobs, "kb.vectors"))

	loaded := newStore(t, 3)
	require.NoError(t, loaded.Load(ctx, blobs, "kb.vectors"))

	for _, q := range [][]float32{{1, 0, 0}, {0.2, 0.4, -1}, {3, 3, 3}} {
		before, err := s.Search(q, 10, -1)
		require.NoError(t, err)
		after, err := loaded.Search(q, 10, -1)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	}

	id, err := loaded.Insert([]float32{1, 1, 1}, meta("c", 0))
	require.NoError(t, err)
	assert.Equal(t, 4, id, "next id survives persistence")
}

func TestSaveLoad_MultiByteChunkText(t *testing.T) {
	ctx := context.Background()
	blobs := memory.NewBlobStore()
	text := strings.Repeat("系统应当记录所有事件", 100)
	doc := &domain.ProcessedDocument{
		DocumentID: "zh.txt",
		Text:       text,
		Spans:      []domain.TrackedSpan{{CharStart: 0, CharEnd: len(text), LineNumber: 1}},
	}

	s := newStore(t, 2)
	chunks := chunker.New().Process(doc)
	require.NotEmpty(t, chunks)
	for i, c := range chunks {
		_, err := s.Insert(unit(0.5+float64(i)*0.1), domain.ChunkMetadata{Chunk: c, DocumentName: "zh.txt"})
		require.NoError(t, err)
	}
	require.NoError(t, s.Save(ctx, blobs, "kb.vectors"))

	loaded := newStore(t, 2)
	require.NoError(t, loaded.Load(ctx, blobs, "kb.vectors"))

	records := loaded.Records("zh.txt")
	require.Len(t, records, len(chunks))
	for i, r := range records {
		assert.Equal(t, chunks[i].Text, r.Chunk.Text)
		assert.Equal(t, text[r.Chunk.CharStart:r.Chunk.CharEnd], r.Chunk.Text)
	}
}

func TestLoad_Missing(t *testing.T) {
	s := newStore(t, 2)

	err := s.Load(context.Background(), memory.NewBlobStore(), "absent")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUnmarshalBinary_Corrupt(t *testing.T) {
	s := newStore(t, 2)
	_, _ = s.Insert([]float32{1, 0}, meta("a", 0))
	_, _ = s.Insert([]float32{0, 1}, meta("a", 1))
	good, err := s.MarshalBinary()
	require.NoError(t, err)

	withCount := func(n uint32) []byte {
		b := append([]byte(nil), good...)
		binary.LittleEndian.PutUint32(b[12:16], n)
		return b
	}

	tests := []struct {
		name string
		dim  int
		data []byte
	}{
		{"empty", 2, nil},
		{"bad magic", 2, append([]byte("XXXX"), good[4:]...)},
		{"dimension differs", 3, good},
		{"truncated", 2, good[:len(good)-5]},
		{"trailing bytes", 2, append(append([]byte(nil), good...), '!')},
		{"count disagrees with metadata", 2, withCount(1)},
		{"count exceeds body", 2, withCount(50)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := newStore(t, tt.dim)
			_, _ = target.Insert(make1(tt.dim), meta("keep", 0))

			err := target.UnmarshalBinary(tt.data)

			assert.ErrorIs(t, err, domain.ErrCorruptIndex)
			assert.Equal(t, 1, target.Len(), "live store is untouched")
		})
	}
}

func make1(dim int) []float32 {
	v := make([]float32, dim)
	v[0] = 1
	return v
}

func TestConcurrentSearchAndInsert(t *testing.T) {
	s := newStore(t, 2)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, _ = s.Insert(unit(float64(i)/10), meta("a", i))
		}(i)
		go func() {
			defer wg.Done()
			_, _ = s.Search([]float32{1, 0}, 3, 0)
		}()
	}
	wg.Wait()
	assert.Equal(t, 8, s.Len())
}
