package driving

import (
	"context"

	"github.com/custodia-labs/reqlens/internal/core/domain"
)

// ContextResolver turns a character range into a window of surrounding text.
type ContextResolver interface {
	// Resolve clamps the requested window to the document bounds and never
	// rejects out-of-range input. Returns domain.ErrDocumentNotFound for unknown ids.
	Resolve(ctx context.Context, req domain.ResolveRequest) (*domain.ResolvedWindow, error)
}
