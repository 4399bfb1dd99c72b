package domain

import (
	"sort"
	"strings"
)

// SpanKind distinguishes heading text from body text.
// It is an attribute only and never affects coordinates.
type SpanKind string

// Span kinds.
const (
	SpanBody    SpanKind = "body"
	SpanHeading SpanKind = "heading"
)

// TextRun is one unit of text produced by an extractor, before offsets are assigned.
type TextRun struct {
	Text       string
	PageNumber int
	Kind       SpanKind
}

// SkippedRun records a run that could not be extracted.
type SkippedRun struct {
	// PageNumber is the 1-based page of the failed run, or 0 when not paginated.
	PageNumber int `json:"page_number,omitempty"`

	// Reason is the extraction error message.
	Reason string `json:"reason"`
}

// Extraction is the raw output of an extractor.
type Extraction struct {
	Runs    []TextRun
	Skipped []SkippedRun
}

// TrackedSpan is a unit of extracted text plus its origin in the flattened text.
// Invariant: CharStart < CharEnd; spans of one document are non-overlapping and increasing.
type TrackedSpan struct {
	CharStart  int      `json:"char_start"`
	CharEnd    int      `json:"char_end"`
	LineNumber int      `json:"line_number"`
	PageNumber int      `json:"page_number,omitempty"`
	Kind       SpanKind `json:"kind,omitempty"`
}

// Len returns the span length in bytes.
func (s TrackedSpan) Len() int { return s.CharEnd - s.CharStart }

// ProcessedDocument is the flattened text of a document and the spans describing it.
// Concatenating the text of every span in order yields Text exactly.
type ProcessedDocument struct {
	DocumentID string
	Format     Format
	Text       string
	Spans      []TrackedSpan
	Skipped    []SkippedRun
}

// SpanText returns the text covered by a span.
func (d *ProcessedDocument) SpanText(s TrackedSpan) string {
	return d.Text[s.CharStart:s.CharEnd]
}

// SpanAt returns the span containing offset. Offsets past the end map to the
// last span. ok is false only when the document has no spans.
func (d *ProcessedDocument) SpanAt(offset int) (TrackedSpan, bool) {
	if len(d.Spans) == 0 {
		return TrackedSpan{}, false
	}
	i := sort.Search(len(d.Spans), func(i int) bool {
		return d.Spans[i].CharEnd > offset
	})
	if i == len(d.Spans) {
		i = len(d.Spans) - 1
	}
	return d.Spans[i], true
}

// Empty reports whether the document produced no usable text.
func (d *ProcessedDocument) Empty() bool {
	return len(d.Spans) == 0
}

// LineRuns splits text into one body run per line. The trailing newline stays
// with its line so the runs concatenate back to text.
func LineRuns(text string, page int) []TextRun {
	if text == "" {
		return nil
	}
	runs := make([]TextRun, 0, strings.Count(text, "\n")+1)
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		runs = append(runs, TextRun{Text: line, PageNumber: page, Kind: SpanBody})
	}
	return runs
}
