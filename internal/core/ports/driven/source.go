package driven

import (
	"context"

	"github.com/custodia-labs/reqlens/internal/core/domain"
)

// DocumentSource lists and fetches source documents.
// Concrete bindings cover local directories, GitHub repositories and Drive folders.
type DocumentSource interface {
	// Name identifies the source in logs and reports.
	Name() string

	// List returns every currently available document.
	List(ctx context.Context) ([]domain.SourceDocument, error)

	// Fetch returns the raw bytes and declared format of a listed document.
	// Returns domain.ErrDocumentNotFound for unknown ids.
	Fetch(ctx context.Context, id string) (*domain.SourceContent, error)
}
