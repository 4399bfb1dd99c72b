package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqlens/internal/core/domain"
	"github.com/custodia-labs/reqlens/internal/normalisers"
)

type failingExtractor struct{ err error }

func (f failingExtractor) Formats() []domain.Format { return []domain.Format{domain.FormatPlainText} }

func (f failingExtractor) Extract(context.Context, []byte) (*domain.Extraction, error) {
	return nil, f.err
}

func assertSpansCoverText(t *testing.T, doc *domain.ProcessedDocument) {
	t.Helper()
	var b strings.Builder
	prevEnd := 0
	for _, s := range doc.Spans {
		assert.Equal(t, prevEnd, s.CharStart, "spans are contiguous")
		assert.Less(t, s.CharStart, s.CharEnd)
		assert.Equal(t, strings.Count(doc.Text[:s.CharStart], "\n")+1, s.LineNumber)
		b.WriteString(doc.SpanText(s))
		prevEnd = s.CharEnd
	}
	assert.Equal(t, doc.Text, b.String())
}

func TestFlatten(t *testing.T) {
	ext := &domain.Extraction{
		Runs: []domain.TextRun{
			{Text: "a\n", PageNumber: 1},
			{Text: "", PageNumber: 1},
			{Text: "b", PageNumber: 2, Kind: domain.SpanHeading},
			{Text: "c\n", PageNumber: 2},
		},
		Skipped: []domain.SkippedRun{{PageNumber: 3, Reason: "broken"}},
	}

	doc := Flatten("doc", domain.FormatPDF, ext)

	assert.Equal(t, "a\nbc\n", doc.Text)
	assert.Equal(t, []domain.TrackedSpan{
		{CharStart: 0, CharEnd: 2, LineNumber: 1, PageNumber: 1, Kind: domain.SpanBody},
		{CharStart: 2, CharEnd: 3, LineNumber: 2, PageNumber: 2, Kind: domain.SpanHeading},
		{CharStart: 3, CharEnd: 5, LineNumber: 2, PageNumber: 2, Kind: domain.SpanBody},
	}, doc.Spans)
	assert.Equal(t, ext.Skipped, doc.Skipped)
	assertSpansCoverText(t, doc)
}

func TestDocumentProcessor_Formats(t *testing.T) {
	p := NewDocumentProcessor(normalisers.NewDefaultRegistry())

	tests := []struct {
		name   string
		format domain.Format
		data   string
	}{
		{"plain text", domain.FormatPlainText, "first line\nsecond line\nno newline"},
		{"markdown", domain.FormatMarkdown, "# Scope\n\nThe system shall respond.\n\n## Details\n- item\n"},
		{"html", domain.FormatHTML, "<html><body><h1>Scope</h1><p>The system <b>shall</b> respond.</p></body></html>"},
		{"json", domain.FormatJSON, `{"req": {"id": "R1", "text": "shall respond"}}`},
		{"yaml", domain.FormatYAML, "req:\n  id: R1\n  text: shall respond\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := p.Process(context.Background(), "doc", &domain.SourceContent{Data: []byte(tt.data), Format: tt.format})
			require.NoError(t, err)

			assert.Equal(t, "doc", doc.DocumentID)
			assert.Equal(t, tt.format, doc.Format)
			assert.NotEmpty(t, doc.Spans)
			assertSpansCoverText(t, doc)
		})
	}
}

func TestDocumentProcessor_MarkdownHeadings(t *testing.T) {
	p := NewDocumentProcessor(normalisers.NewDefaultRegistry())

	doc, err := p.Process(context.Background(), "a.md", &domain.SourceContent{
		Data:   []byte("# Title\n\nBody line\n"),
		Format: domain.FormatMarkdown,
	})
	require.NoError(t, err)

	assert.Equal(t, "# Title\n\nBody line\n", doc.Text)
	require.Len(t, doc.Spans, 3)
	assert.Equal(t, domain.SpanHeading, doc.Spans[0].Kind)
	assert.Equal(t, domain.SpanBody, doc.Spans[2].Kind)
	assert.Equal(t, 3, doc.Spans[2].LineNumber)
}

func TestDocumentProcessor_EmptyDocument(t *testing.T) {
	p := NewDocumentProcessor(normalisers.NewDefaultRegistry())

	doc, err := p.Process(context.Background(), "empty.txt", &domain.SourceContent{Data: []byte{}, Format: domain.FormatPlainText})

	require.NoError(t, err)
	assert.True(t, doc.Empty())
	assert.Equal(t, "", doc.Text)
}

func TestDocumentProcessor_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("unsupported format", func(t *testing.T) {
		p := NewDocumentProcessor(normalisers.NewDefaultRegistry())
		_, err := p.Process(ctx, "a.rtf", &domain.SourceContent{Data: []byte("x"), Format: "rtf"})
		assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	})

	t.Run("nil content", func(t *testing.T) {
		p := NewDocumentProcessor(normalisers.NewDefaultRegistry())
		_, err := p.Process(ctx, "a.txt", nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("extractor failure is an extraction error", func(t *testing.T) {
		registry := normalisers.NewRegistry()
		registry.Register(failingExtractor{err: errors.New("boom")})
		p := NewDocumentProcessor(registry)

		_, err := p.Process(ctx, "a.txt", &domain.SourceContent{Data: []byte("x"), Format: domain.FormatPlainText})

		assert.ErrorIs(t, err, domain.ErrExtraction)
		assert.Contains(t, err.Error(), "boom")
	})
}
