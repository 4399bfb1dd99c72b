package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchOptions_WithDefaults(t *testing.T) {
	opts := SearchOptions{}.WithDefaults()

	assert.Equal(t, DefaultTopK, opts.TopK)
	assert.Equal(t, DefaultScoreThreshold, opts.ScoreThreshold())
}

func TestSearchOptions_ExplicitZeroThreshold(t *testing.T) {
	opts := SearchOptions{TopK: 3, Threshold: Threshold(0)}.WithDefaults()

	assert.Equal(t, 3, opts.TopK)
	assert.Equal(t, 0.0, opts.ScoreThreshold())
}

func TestNewSearchResult(t *testing.T) {
	hit := SearchHit{
		RecordID: 7,
		Score:    0.91,
		Metadata: ChunkMetadata{
			Chunk: Chunk{
				DocumentID: "doc",
				Text:       "shall be fast",
				CharStart:  10,
				CharEnd:    23,
				LineNumber: 2,
				PageNumber: 4,
			},
			DocumentName: "doc.pdf",
		},
	}

	r := NewSearchResult(hit)

	assert.Equal(t, "shall be fast", r.Text)
	assert.Equal(t, 7, r.RecordID)
	assert.Equal(t, 4, r.PageNumber)
	assert.Equal(t, ResultKey{DocumentID: "doc", CharStart: 10, CharEnd: 23}, r.Key())
}

func TestErrors_Wrapping(t *testing.T) {
	tests := []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrUnsupportedFormat,
		ErrExtraction,
		ErrDimensionMismatch,
		ErrCorruptIndex,
		ErrDocumentNotFound,
		ErrEmbeddingProvider,
	}

	for _, sentinel := range tests {
		t.Run(sentinel.Error(), func(t *testing.T) {
			wrapped := fmt.Errorf("context: %w", sentinel)
			assert.True(t, errors.Is(wrapped, sentinel))
		})
	}
	assert.False(t, errors.Is(ErrCorruptIndex, ErrNotFound))
}

func TestRefreshReport(t *testing.T) {
	r := &RefreshReport{
		Failed: []DocumentFailure{{DocumentID: "a"}, {DocumentID: "b"}},
	}

	assert.Equal(t, []string{"a", "b"}, r.FailedIDs())
	assert.False(t, r.Changed())

	r.Removed = []string{"c"}
	assert.True(t, r.Changed())
}
