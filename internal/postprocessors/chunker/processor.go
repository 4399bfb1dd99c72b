// Package chunker splits processed documents into overlapping chunks whose
// offsets stay in the flattened-text coordinates of the source document.
package chunker

import (
	"unicode/utf8"

	"github.com/custodia-labs/reqlens/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// DefaultTolerance is how far a boundary may move to land on a sentence
// end or whitespace.
const DefaultTolerance = 50

// Processor splits document text into size-bounded chunks.
type Processor struct {
	chunkSize int
	overlap   int
	tolerance int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithTolerance sets how far boundaries may be snapped.
func WithTolerance(tolerance int) Option {
	return func(p *Processor) {
		if tolerance >= 0 {
			p.tolerance = tolerance
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		tolerance: DefaultTolerance,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the effective chunk size.
func (p *Processor) ChunkSize() int { return p.chunkSize }

// Overlap returns the effective overlap, after clamping.
func (p *Processor) Overlap() int { return p.overlap }

// Process splits the document text into chunks. Each chunk's line and page
// are those of the span containing its first character.
func (p *Processor) Process(doc *domain.ProcessedDocument) []domain.Chunk {
	if doc == nil || doc.Text == "" {
		return nil
	}

	text := doc.Text
	n := len(text)

	chunks := make([]domain.Chunk, 0, n/(p.chunkSize-p.overlap)+1)
	start := 0
	for start < n {
		end := start + p.chunkSize
		if end >= n {
			end = n
		} else {
			end = p.snapEnd(text, start, end)
		}

		chunks = append(chunks, p.newChunk(doc, len(chunks), start, end))
		if end == n {
			break
		}

		// The next start never passes len-overlap, so the final window keeps
		// at least overlap characters.
		limit := min(end, n-p.overlap)
		next := p.snapStart(text, end-p.overlap, limit)
		if next <= start {
			next = alignForward(text, start+1)
		}
		start = next
	}

	return chunks
}

func (p *Processor) newChunk(doc *domain.ProcessedDocument, index, start, end int) domain.Chunk {
	c := domain.Chunk{
		DocumentID: doc.DocumentID,
		Index:      index,
		Text:       doc.Text[start:end],
		CharStart:  start,
		CharEnd:    end,
		LineNumber: 1,
	}
	if span, ok := doc.SpanAt(start); ok {
		c.LineNumber = span.LineNumber
		c.PageNumber = span.PageNumber
	}
	return c
}

// snapEnd moves end back to a sentence end, else to whitespace, within
// tolerance, else to a rune boundary. The returned end is always greater
// than start.
func (p *Processor) snapEnd(text string, start, end int) int {
	floor := end - p.tolerance
	if floor <= start {
		floor = start + 1
	}

	for i := end; i >= floor; i-- {
		if isSentenceEnd(text, i) {
			return i
		}
	}
	for i := end; i >= floor; i-- {
		if isSpace(text[i-1]) {
			return i
		}
	}
	for i := end; i > start; i-- {
		if utf8.RuneStart(text[i]) {
			return i
		}
	}
	return end
}

// snapStart moves pos forward to the start of the next word, within
// tolerance and before limit. Without a word start it only moves to the
// next rune boundary.
func (p *Processor) snapStart(text string, pos, limit int) int {
	if pos <= 0 {
		return 0
	}
	ceil := pos + p.tolerance
	if ceil > limit {
		ceil = limit
	}
	for i := pos; i < ceil; i++ {
		if isSpace(text[i-1]) && !isSpace(text[i]) {
			return i
		}
	}
	return alignForward(text, pos)
}

// alignForward moves pos to the next rune boundary.
func alignForward(text string, pos int) int {
	for pos < len(text) && !utf8.RuneStart(text[pos]) {
		pos++
	}
	return pos
}

// isSentenceEnd reports whether a chunk may end at i: right after a newline,
// or after terminal punctuation followed by a space.
func isSentenceEnd(text string, i int) bool {
	if i <= 0 || i > len(text) {
		return false
	}
	if text[i-1] == '\n' {
		return true
	}
	if i < 2 || text[i-1] != ' ' {
		return false
	}
	switch text[i-2] {
	case '.', '!', '?':
		return true
	}
	return false
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
