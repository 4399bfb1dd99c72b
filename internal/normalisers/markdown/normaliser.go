package markdown

import (
	"context"
	"sort"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/custodia-labs/reqlens/internal/core/domain"
	"github.com/custodia-labs/reqlens/internal/core/ports/driven"
	"github.com/custodia-labs/reqlens/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Extractor = (*Normaliser)(nil)

// Normaliser handles Markdown documents.
// Source text is kept verbatim so offsets line up with the file; the AST is
// only used to tag heading lines.
type Normaliser struct {
	md goldmark.Markdown
}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Formats returns the formats this normaliser handles.
func (n *Normaliser) Formats() []domain.Format {
	return []domain.Format{domain.FormatMarkdown}
}

// Extract emits one run per source line, marking heading lines.
func (n *Normaliser) Extract(_ context.Context, data []byte) (*domain.Extraction, error) {
	if data == nil {
		return nil, domain.ErrInvalidInput
	}

	content := plaintext.Decode(data)
	runs := domain.LineRuns(content, 0)
	if len(runs) == 0 {
		return &domain.Extraction{}, nil
	}

	source := []byte(content)
	doc := n.md.Parser().Parse(text.NewReader(source))
	headings := headingLines(doc, lineStarts(content))
	for i := range runs {
		if headings[i] {
			runs[i].Kind = domain.SpanHeading
		}
	}

	return &domain.Extraction{Runs: runs}, nil
}

// lineStarts returns the byte offset at which each line begins.
// Line i here is run i from domain.LineRuns.
func lineStarts(content string) []int {
	starts := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' && i+1 < len(content) {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// headingLines returns the set of line indexes covered by heading nodes.
func headingLines(doc ast.Node, starts []int) map[int]bool {
	out := make(map[int]bool)
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || node.Kind() != ast.KindHeading {
			return ast.WalkContinue, nil
		}
		lines := node.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			out[lineOf(starts, seg.Start)] = true
		}
		return ast.WalkSkipChildren, nil
	})
	return out
}

func lineOf(starts []int, offset int) int {
	return sort.Search(len(starts), func(i int) bool { return starts[i] > offset }) - 1
}
