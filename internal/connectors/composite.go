package connectors

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/reqlens/internal/core/domain"
	"github.com/custodia-labs/reqlens/internal/core/ports/driven"
)

// Ensure Composite implements the interface.
var _ driven.DocumentSource = (*Composite)(nil)

// Composite lists every source and routes Fetch to the source that owns an id.
type Composite struct {
	sources []driven.DocumentSource

	mu    sync.RWMutex
	owner map[string]int
}

// NewComposite combines sources. Order decides which source wins when two
// list the same id.
func NewComposite(sources ...driven.DocumentSource) *Composite {
	return &Composite{sources: sources, owner: make(map[string]int)}
}

// Sources returns the wrapped sources.
func (c *Composite) Sources() []driven.DocumentSource {
	return c.sources
}

// Name joins the names of the wrapped sources.
func (c *Composite) Name() string {
	names := make([]string, len(c.sources))
	for i, s := range c.sources {
		names[i] = s.Name()
	}
	return strings.Join(names, " + ")
}

// List merges the listings. Any failing source fails the whole listing so a
// transient outage never looks like deleted documents.
func (c *Composite) List(ctx context.Context) ([]domain.SourceDocument, error) {
	owner := make(map[string]int)
	var docs []domain.SourceDocument
	for i, s := range c.sources {
		listed, err := s.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name(), err)
		}
		for _, d := range listed {
			if _, dup := owner[d.ID]; dup {
				continue
			}
			owner[d.ID] = i
			docs = append(docs, d)
		}
	}

	c.mu.Lock()
	c.owner = owner
	c.mu.Unlock()

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// Fetch asks the owning source first. Ids from before the last List are
// tried against every source in order.
func (c *Composite) Fetch(ctx context.Context, id string) (*domain.SourceContent, error) {
	c.mu.RLock()
	idx, ok := c.owner[id]
	c.mu.RUnlock()
	if ok {
		return c.sources[idx].Fetch(ctx, id)
	}

	for _, s := range c.sources {
		content, err := s.Fetch(ctx, id)
		if err == nil {
			return content, nil
		}
		if !errors.Is(err, domain.ErrDocumentNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
}
