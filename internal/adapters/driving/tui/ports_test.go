package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/reqlens/internal/core/domain"
	"github.com/custodia-labs/reqlens/internal/core/ports/driving"
)

// MockKnowledgeBase implements driving.KnowledgeBase for testing.
type MockKnowledgeBase struct {
	SearchFunc      func(ctx context.Context, q string, opts domain.SearchOptions) ([]domain.SearchResult, error)
	MultiSearchFunc func(ctx context.Context, qs []string, opts domain.SearchOptions) ([]domain.SearchResult, error)
	DocumentsFunc   func(ctx context.Context) ([]domain.IndexEntry, error)
	ContextFunc     func(ctx context.Context, names []string) ([]domain.Chunk, error)
	StatsFunc       func(ctx context.Context) (*domain.KnowledgeBaseStats, error)
	RefreshFunc     func(ctx context.Context, force bool) (*domain.RefreshReport, error)
}

func (m *MockKnowledgeBase) Refresh(ctx context.Context, force bool) (*domain.RefreshReport, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, force)
	}
	return &domain.RefreshReport{}, nil
}

func (m *MockKnowledgeBase) Search(ctx context.Context, q string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, q, opts)
	}
	return nil, nil
}

func (m *MockKnowledgeBase) MultiSearch(
	ctx context.Context, qs []string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	if m.MultiSearchFunc != nil {
		return m.MultiSearchFunc(ctx, qs, opts)
	}
	return nil, nil
}

func (m *MockKnowledgeBase) SectionContext(context.Context, string, string) ([]domain.SearchResult, error) {
	return nil, nil
}

func (m *MockKnowledgeBase) DocumentContext(ctx context.Context, names []string) ([]domain.Chunk, error) {
	if m.ContextFunc != nil {
		return m.ContextFunc(ctx, names)
	}
	return nil, nil
}

func (m *MockKnowledgeBase) Documents(ctx context.Context) ([]domain.IndexEntry, error) {
	if m.DocumentsFunc != nil {
		return m.DocumentsFunc(ctx)
	}
	return nil, nil
}

func (m *MockKnowledgeBase) Stats(ctx context.Context) (*domain.KnowledgeBaseStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return &domain.KnowledgeBaseStats{}, nil
}

func (m *MockKnowledgeBase) Clear(context.Context) error {
	return nil
}

// MockResolver implements driving.ContextResolver for testing.
type MockResolver struct {
	ResolveFunc func(ctx context.Context, req domain.ResolveRequest) (*domain.ResolvedWindow, error)
}

func (m *MockResolver) Resolve(ctx context.Context, req domain.ResolveRequest) (*domain.ResolvedWindow, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, req)
	}
	return &domain.ResolvedWindow{DocumentID: req.DocumentID}, nil
}

var (
	_ driving.KnowledgeBase   = (*MockKnowledgeBase)(nil)
	_ driving.ContextResolver = (*MockResolver)(nil)
)

func TestNewPorts(t *testing.T) {
	kb := &MockKnowledgeBase{}
	resolver := &MockResolver{}

	ports := NewPorts(kb, resolver)

	assert.Equal(t, kb, ports.KnowledgeBase)
	assert.Equal(t, resolver, ports.Resolver)
	assert.NoError(t, ports.Validate())
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name  string
		ports *Ports
		want  error
	}{
		{"missing knowledge base", &Ports{Resolver: &MockResolver{}}, ErrMissingKnowledgeBase},
		{"missing resolver", &Ports{KnowledgeBase: &MockKnowledgeBase{}}, ErrMissingResolver},
		{"complete", &Ports{KnowledgeBase: &MockKnowledgeBase{}, Resolver: &MockResolver{}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
