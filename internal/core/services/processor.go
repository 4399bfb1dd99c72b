package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/reqlens/internal/core/domain"
	"github.com/custodia-labs/reqlens/internal/core/ports/driven"
	"github.com/custodia-labs/reqlens/internal/logger"
)

// DocumentProcessor extracts a document and assigns every run its offsets in
// the flattened text.
type DocumentProcessor struct {
	registry driven.ExtractorRegistry
}

// NewDocumentProcessor creates a processor backed by registry.
func NewDocumentProcessor(registry driven.ExtractorRegistry) *DocumentProcessor {
	return &DocumentProcessor{registry: registry}
}

// Process extracts content and builds the flattened text. Empty runs are
// dropped; a document with no text is returned empty rather than as an error.
func (p *DocumentProcessor) Process(
	ctx context.Context, docID string, content *domain.SourceContent,
) (*domain.ProcessedDocument, error) {
	if content == nil {
		return nil, fmt.Errorf("process %s: %w", docID, domain.ErrInvalidInput)
	}

	extractor, err := p.registry.Get(content.Format)
	if err != nil {
		return nil, fmt.Errorf("process %s: %w", docID, err)
	}

	ext, err := extractor.Extract(ctx, content.Data)
	if err != nil {
		if !errors.Is(err, domain.ErrExtraction) && !errors.Is(err, domain.ErrInvalidInput) &&
			!errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", domain.ErrExtraction, err)
		}
		return nil, fmt.Errorf("process %s: %w", docID, err)
	}

	doc := Flatten(docID, content.Format, ext)
	for _, s := range doc.Skipped {
		logger.Warn("%s: skipped page %d: %s", docID, s.PageNumber, s.Reason)
	}
	logger.Debug("Processed %s: %d spans, %d bytes", docID, len(doc.Spans), len(doc.Text))
	return doc, nil
}

// Flatten concatenates extraction runs into a ProcessedDocument.
// LineNumber is one plus the number of newlines before the span start.
func Flatten(docID string, format domain.Format, ext *domain.Extraction) *domain.ProcessedDocument {
	doc := &domain.ProcessedDocument{DocumentID: docID, Format: format}
	if ext == nil {
		return doc
	}
	doc.Skipped = ext.Skipped

	var b strings.Builder
	line := 1
	doc.Spans = make([]domain.TrackedSpan, 0, len(ext.Runs))
	for _, run := range ext.Runs {
		if run.Text == "" {
			continue
		}
		kind := run.Kind
		if kind == "" {
			kind = domain.SpanBody
		}
		start := b.Len()
		b.WriteString(run.Text)
		doc.Spans = append(doc.Spans, domain.TrackedSpan{
			CharStart:  start,
			CharEnd:    b.Len(),
			LineNumber: line,
			PageNumber: run.PageNumber,
			Kind:       kind,
		})
		line += strings.Count(run.Text, "\n")
	}
	doc.Text = b.String()
	return doc
}
