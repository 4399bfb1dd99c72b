package html

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/reqlens/internal/core/domain"
	"github.com/custodia-labs/reqlens/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Extractor = (*Normaliser)(nil)

const (
	blockSelector   = "h1, h2, h3, h4, h5, h6, p, li, blockquote, pre, td, th, dt, dd, caption, figcaption"
	removedSelector = "script, style, noscript, head, svg, template"
)

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Formats returns the formats this normaliser handles.
func (n *Normaliser) Formats() []domain.Format {
	return []domain.Format{domain.FormatHTML}
}

// Extract emits one run per outermost block element, in document order.
func (n *Normaliser) Extract(_ context.Context, data []byte) (*domain.Extraction, error) {
	if data == nil {
		return nil, domain.ErrInvalidInput
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %v", domain.ErrExtraction, err)
	}
	doc.Find(removedSelector).Remove()

	var runs []domain.TextRun
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		// Nested blocks are covered by their outermost ancestor.
		if s.ParentsFiltered(blockSelector).Length() > 0 {
			return
		}
		text := blockText(s)
		if text == "" {
			return
		}
		kind := domain.SpanBody
		if isHeading(goquery.NodeName(s)) {
			kind = domain.SpanHeading
		}
		runs = append(runs, domain.TextRun{Text: text + "\n", Kind: kind})
	})

	if len(runs) == 0 {
		runs = looseText(doc)
	}

	return &domain.Extraction{Runs: runs}, nil
}

// blockText collapses whitespace except inside <pre>.
func blockText(s *goquery.Selection) string {
	if goquery.NodeName(s) == "pre" {
		return strings.Trim(s.Text(), "\n")
	}
	return strings.Join(strings.Fields(s.Text()), " ")
}

func isHeading(name string) bool {
	return len(name) == 2 && name[0] == 'h' && name[1] >= '1' && name[1] <= '6'
}

// looseText handles markup without block elements by taking body lines.
func looseText(doc *goquery.Document) []domain.TextRun {
	var runs []domain.TextRun
	for _, line := range strings.Split(doc.Find("body").Text(), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		runs = append(runs, domain.TextRun{Text: line + "\n", Kind: domain.SpanBody})
	}
	return runs
}
