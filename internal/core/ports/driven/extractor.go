package driven

import (
	"context"

	"github.com/custodia-labs/reqlens/internal/core/domain"
)

// Extractor turns the bytes of one document format into ordered text runs.
// Offsets are assigned by the document processor, not by extractors.
type Extractor interface {
	// Formats returns the formats this extractor handles.
	Formats() []domain.Format

	// Extract reads data into runs. Runs that fail are reported in
	// Extraction.Skipped; an error means the whole document is unreadable.
	Extract(ctx context.Context, data []byte) (*domain.Extraction, error)
}

// ExtractorRegistry selects the extractor for a format.
type ExtractorRegistry interface {
	// Register adds an extractor for each of its formats, replacing earlier ones.
	Register(extractor Extractor)

	// Get returns the extractor for format.
	// Returns domain.ErrUnsupportedFormat when none is registered.
	Get(format domain.Format) (Extractor, error)

	// Formats returns all registered formats.
	Formats() []domain.Format
}
