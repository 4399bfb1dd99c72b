package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/reqlens/internal/core/domain"
	"github.com/custodia-labs/reqlens/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Extractor = (*Normaliser)(nil)

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Formats returns the formats this normaliser handles.
func (n *Normaliser) Formats() []domain.Format {
	return []domain.Format{domain.FormatDOCX}
}

// Extract emits one run per paragraph of word/document.xml, including
// paragraphs inside tables. Heading and Title styles are tagged.
func (n *Normaliser) Extract(_ context.Context, data []byte) (*domain.Extraction, error) {
	if data == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: open docx: %v", domain.ErrExtraction, err)
	}

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open document.xml: %v", domain.ErrExtraction, err)
		}
		defer rc.Close()

		runs, err := parseParagraphs(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: parse document.xml: %v", domain.ErrExtraction, err)
		}
		return &domain.Extraction{Runs: runs}, nil
	}

	return &domain.Extraction{}, nil
}

// parseParagraphs streams the document and collects the text of each w:p.
func parseParagraphs(r io.Reader) ([]domain.TextRun, error) {
	dec := xml.NewDecoder(r)
	var runs []domain.TextRun
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return runs, nil
		}
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "p" {
			continue
		}
		text, style, err := readParagraph(dec)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		kind := domain.SpanBody
		if isHeadingStyle(style) {
			kind = domain.SpanHeading
		}
		runs = append(runs, domain.TextRun{Text: text + "\n", Kind: kind})
	}
}

// readParagraph consumes tokens up to the end of the current paragraph.
func readParagraph(dec *xml.Decoder) (text, style string, err error) {
	var b strings.Builder
	depth := 1
	inText := false
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte(' ')
			case "pStyle":
				for _, a := range t.Attr {
					if a.Name.Local == "val" {
						style = a.Value
					}
				}
			}
		case xml.EndElement:
			depth--
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return b.String(), style, nil
}

func isHeadingStyle(style string) bool {
	s := strings.ToLower(style)
	return strings.HasPrefix(s, "heading") || s == "title"
}
