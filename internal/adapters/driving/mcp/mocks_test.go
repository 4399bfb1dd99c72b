package mcp

import (
	"context"
	"fmt"

	"github.com/custodia-labs/reqlens/internal/core/domain"
)

// mockKnowledgeBase is a mock implementation of driving.KnowledgeBase.
type mockKnowledgeBase struct {
	results   []domain.SearchResult
	documents []domain.IndexEntry
	chunks    map[string][]domain.Chunk
	err       error

	lastQuery   string
	lastQueries []string
	lastOpts    domain.SearchOptions
	lastSection string
}

func (m *mockKnowledgeBase) Refresh(_ context.Context, _ bool) (*domain.RefreshReport, error) {
	return &domain.RefreshReport{}, m.err
}

func (m *mockKnowledgeBase) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	m.lastQuery = query
	m.lastOpts = opts
	return m.results, m.err
}

func (m *mockKnowledgeBase) MultiSearch(_ context.Context, queries []string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	m.lastQueries = queries
	m.lastOpts = opts
	return m.results, m.err
}

func (m *mockKnowledgeBase) SectionContext(_ context.Context, sectionName, _ string) ([]domain.SearchResult, error) {
	m.lastSection = sectionName
	return m.results, m.err
}

func (m *mockKnowledgeBase) DocumentContext(_ context.Context, names []string) ([]domain.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Chunk
	for _, n := range names {
		chunks, ok := m.chunks[n]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, n)
		}
		out = append(out, chunks...)
	}
	return out, nil
}

func (m *mockKnowledgeBase) Documents(_ context.Context) ([]domain.IndexEntry, error) {
	return m.documents, m.err
}

func (m *mockKnowledgeBase) Stats(_ context.Context) (*domain.KnowledgeBaseStats, error) {
	return &domain.KnowledgeBaseStats{}, m.err
}

func (m *mockKnowledgeBase) Clear(_ context.Context) error {
	return m.err
}

// mockResolver is a mock implementation of driving.ContextResolver.
type mockResolver struct {
	window  *domain.ResolvedWindow
	err     error
	lastReq domain.ResolveRequest
}

func (m *mockResolver) Resolve(_ context.Context, req domain.ResolveRequest) (*domain.ResolvedWindow, error) {
	m.lastReq = req
	return m.window, m.err
}
