package driving

import (
	"context"

	"github.com/custodia-labs/reqlens/internal/core/domain"
)

// KnowledgeBase keeps the vector store consistent with the source documents
// and answers similarity queries over it.
type KnowledgeBase interface {
	// Refresh re-indexes new and changed documents and drops vanished ones.
	// Per-document failures are reported, not returned.
	Refresh(ctx context.Context, force bool) (*domain.RefreshReport, error)

	// Search embeds query and returns matching chunks.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// MultiSearch runs several queries and merges results, de-duplicated by
	// document id and character range.
	MultiSearch(ctx context.Context, queries []string, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// SectionContext retrieves reference context for one section of a document under analysis.
	SectionContext(ctx context.Context, sectionName, content string) ([]domain.SearchResult, error)

	// DocumentContext returns the stored chunks of the named documents, or of all
	// documents when names is empty.
	DocumentContext(ctx context.Context, names []string) ([]domain.Chunk, error)

	// Documents lists indexed documents.
	Documents(ctx context.Context) ([]domain.IndexEntry, error)

	// Stats summarises the knowledge base.
	Stats(ctx context.Context) (*domain.KnowledgeBaseStats, error)

	// Clear removes everything and persists the empty state.
	Clear(ctx context.Context) error
}
