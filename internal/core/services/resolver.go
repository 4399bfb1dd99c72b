package services

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/custodia-labs/reqlens/internal/core/domain"
	"github.com/custodia-labs/reqlens/internal/core/ports/driven"
	"github.com/custodia-labs/reqlens/internal/core/ports/driving"
	"github.com/custodia-labs/reqlens/internal/logger"
)

// Ensure ResolverService implements the interface.
var _ driving.ContextResolver = (*ResolverService)(nil)

// DefaultResolverCacheBytes bounds the processed-text cache.
const DefaultResolverCacheBytes = 64 << 20

// IndexLookup finds the indexed state of a document.
type IndexLookup interface {
	Entry(id string) (domain.IndexEntry, bool)
}

// ResolverService maps character ranges back to document text. Processed
// documents are cached by id and change marker, so a re-indexed document
// misses the cache and is extracted again.
type ResolverService struct {
	index     IndexLookup
	source    driven.DocumentSource
	processor *DocumentProcessor
	cache     *ristretto.Cache[string, *domain.ProcessedDocument]
}

// NewResolverService creates a resolver whose cache holds at most
// cacheBytes of flattened text. Zero selects DefaultResolverCacheBytes.
func NewResolverService(
	index IndexLookup,
	source driven.DocumentSource,
	processor *DocumentProcessor,
	cacheBytes int64,
) (*ResolverService, error) {
	if cacheBytes <= 0 {
		cacheBytes = DefaultResolverCacheBytes
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, *domain.ProcessedDocument]{
		NumCounters: 10_000,
		MaxCost:     cacheBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create resolver cache: %w", err)
	}
	return &ResolverService{
		index:     index,
		source:    source,
		processor: processor,
		cache:     cache,
	}, nil
}

// Resolve returns the text around [CharStart, CharEnd). Out-of-range input is
// clamped to the document, never rejected.
func (r *ResolverService) Resolve(ctx context.Context, req domain.ResolveRequest) (*domain.ResolvedWindow, error) {
	entry, ok := r.index.Entry(req.DocumentID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, req.DocumentID)
	}

	doc, err := r.document(ctx, entry)
	if err != nil {
		return nil, err
	}
	return Window(doc, req), nil
}

func (r *ResolverService) document(ctx context.Context, entry domain.IndexEntry) (*domain.ProcessedDocument, error) {
	if doc, ok := r.cache.Get(cacheKey(entry.DocumentID, entry.ChangeMarker)); ok {
		return doc, nil
	}

	logger.Debug("Resolver cache miss for %s", entry.DocumentID)
	content, err := r.source.Fetch(ctx, entry.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", entry.DocumentID, err)
	}
	doc, err := r.processor.Process(ctx, entry.DocumentID, content)
	if err != nil {
		return nil, err
	}

	// Content edited since the last refresh is cached under its own marker,
	// never under the indexed one.
	marker := entry.ChangeMarker
	if content.ChangeMarker != "" && content.ChangeMarker != marker {
		logger.Debug("%s changed since it was indexed, offsets may not match until the next refresh", entry.DocumentID)
		marker = content.ChangeMarker
	}
	r.cache.Set(cacheKey(entry.DocumentID, marker), doc, max(int64(len(doc.Text)), 1))
	r.cache.Wait()
	return doc, nil
}

func cacheKey(id, marker string) string {
	return id + "\x00" + marker
}

// Close releases the cache.
func (r *ResolverService) Close() {
	r.cache.Close()
}

// Window clamps req to doc and cuts the surrounding text. Offsets inside a
// multi-byte character widen to cover the whole character.
func Window(doc *domain.ProcessedDocument, req domain.ResolveRequest) *domain.ResolvedWindow {
	n := len(doc.Text)

	start, end := req.CharStart, req.CharEnd
	if start > end {
		start, end = end, start
	}
	start = runeFloor(doc.Text, clamp(start, 0, n))
	end = runeCeil(doc.Text, clamp(end, 0, n))

	windowStart, windowEnd := 0, n
	if before := max(req.Before, 0); before < start {
		windowStart = runeFloor(doc.Text, start-before)
	}
	if after := max(req.After, 0); after < n-end {
		windowEnd = runeCeil(doc.Text, end+after)
	}

	w := &domain.ResolvedWindow{
		DocumentID:    doc.DocumentID,
		WindowText:    doc.Text[windowStart:windowEnd],
		WindowStart:   windowStart,
		WindowEnd:     windowEnd,
		RelativeStart: start - windowStart,
		RelativeEnd:   end - windowStart,
	}
	if span, ok := doc.SpanAt(start); ok {
		w.LineNumber = span.LineNumber
		w.PageNumber = span.PageNumber
	}
	return w
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// runeFloor moves i back to the start of the character containing it.
func runeFloor(text string, i int) int {
	for i > 0 && i < len(text) && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}

// runeCeil moves i forward to the next character boundary.
func runeCeil(text string, i int) int {
	for i < len(text) && !utf8.RuneStart(text[i]) {
		i++
	}
	return i
}
