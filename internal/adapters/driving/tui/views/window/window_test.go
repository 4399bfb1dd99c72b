package window

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqlens/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/reqlens/internal/core/domain"
)

const docText = "Intro line.\nThe system shall respond within 2 seconds.\nClosing line."

type fakeResolver struct {
	reqs []domain.ResolveRequest
	err  error
}

func (f *fakeResolver) Resolve(_ context.Context, req domain.ResolveRequest) (*domain.ResolvedWindow, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	start := max(req.CharStart-req.Before, 0)
	end := min(req.CharEnd+req.After, len(docText))
	return &domain.ResolvedWindow{
		DocumentID:    req.DocumentID,
		WindowText:    docText[start:end],
		WindowStart:   start,
		WindowEnd:     end,
		RelativeStart: req.CharStart - start,
		RelativeEnd:   req.CharEnd - start,
		LineNumber:    2,
	}, nil
}

type fakeKB struct {
	chunks []domain.Chunk
	names  []string
	err    error
}

func (f *fakeKB) Refresh(context.Context, bool) (*domain.RefreshReport, error) { return nil, nil }
func (f *fakeKB) Search(context.Context, string, domain.SearchOptions) ([]domain.SearchResult, error) {
	return nil, nil
}
func (f *fakeKB) MultiSearch(context.Context, []string, domain.SearchOptions) ([]domain.SearchResult, error) {
	return nil, nil
}
func (f *fakeKB) SectionContext(context.Context, string, string) ([]domain.SearchResult, error) {
	return nil, nil
}
func (f *fakeKB) DocumentContext(_ context.Context, names []string) ([]domain.Chunk, error) {
	f.names = names
	return f.chunks, f.err
}
func (f *fakeKB) Documents(context.Context) ([]domain.IndexEntry, error)    { return nil, nil }
func (f *fakeKB) Stats(context.Context) (*domain.KnowledgeBaseStats, error) { return nil, nil }
func (f *fakeKB) Clear(context.Context) error                               { return nil }

func hit() domain.SearchResult {
	return domain.SearchResult{
		DocumentID:   "srs.md",
		DocumentName: "srs.md",
		Text:         "The system shall respond",
		CharStart:    12,
		CharEnd:      36,
		LineNumber:   2,
		Score:        0.9,
	}
}

// deliver runs cmd and feeds its message back into the view.
func deliver(t *testing.T, v *View, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	v.Update(cmd())
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewView_Defaults(t *testing.T) {
	v := NewView(nil, nil, nil, nil)

	require.NotNil(t, v)
	assert.Equal(t, DefaultContext, v.ContextSize())
	assert.Equal(t, ModeResult, v.Mode())
	assert.Nil(t, v.Init())
}

func TestShowResult_ResolvesWithDefaultContext(t *testing.T) {
	resolver := &fakeResolver{}
	v := NewView(nil, nil, resolver, nil)

	cmd := v.ShowResult(hit())
	assert.True(t, v.Loading())
	deliver(t, v, cmd)

	require.Len(t, resolver.reqs, 1)
	assert.Equal(t, domain.ResolveRequest{
		DocumentID: "srs.md", CharStart: 12, CharEnd: 36, Before: DefaultContext, After: DefaultContext,
	}, resolver.reqs[0])

	require.NotNil(t, v.Window())
	assert.Equal(t, "The system shall respond", v.Window().Highlighted())
	assert.False(t, v.Loading())

	view := v.View()
	assert.Contains(t, view, "srs.md")
	assert.Contains(t, view, "The system shall respond")
	assert.Contains(t, view, "context ±200")
}

func TestShowResult_ResolverError(t *testing.T) {
	v := NewView(nil, nil, &fakeResolver{err: domain.ErrDocumentNotFound}, nil)

	deliver(t, v, v.ShowResult(hit()))

	assert.ErrorIs(t, v.Err(), domain.ErrDocumentNotFound)
	assert.Contains(t, v.View(), "Error:")
}

func TestShowResult_NoResolver(t *testing.T) {
	v := NewView(nil, nil, nil, nil)

	deliver(t, v, v.ShowResult(hit()))

	assert.ErrorIs(t, v.Err(), ErrNoResolver)
}

func TestContextKeys(t *testing.T) {
	resolver := &fakeResolver{}
	v := NewView(nil, nil, resolver, nil)
	deliver(t, v, v.ShowResult(hit()))

	_, cmd := v.Update(runes("+"))
	deliver(t, v, cmd)
	assert.Equal(t, DefaultContext+ContextStep, v.ContextSize())
	assert.Equal(t, DefaultContext+ContextStep, resolver.reqs[1].Before)

	_, cmd = v.Update(runes("-"))
	deliver(t, v, cmd)
	_, cmd = v.Update(runes("-"))
	deliver(t, v, cmd)
	assert.Equal(t, 0, v.ContextSize())

	_, cmd = v.Update(runes("-"))
	assert.Nil(t, cmd, "no request below zero context")
}

func TestContextKeys_CappedAtMax(t *testing.T) {
	v := NewView(nil, nil, &fakeResolver{}, nil)
	deliver(t, v, v.ShowResult(hit()))

	for v.ContextSize() < MaxContext {
		_, cmd := v.Update(runes("+"))
		deliver(t, v, cmd)
	}
	_, cmd := v.Update(runes("+"))

	assert.Nil(t, cmd)
	assert.Equal(t, MaxContext, v.ContextSize())
}

func TestStaleWindowIgnored(t *testing.T) {
	v := NewView(nil, nil, &fakeResolver{}, nil)
	deliver(t, v, v.ShowResult(hit()))

	v.Update(messages.WindowResolved{Window: &domain.ResolvedWindow{DocumentID: "other.md"}})

	assert.Equal(t, "srs.md", v.Window().DocumentID)
}

func TestShowDocument_LoadsChunks(t *testing.T) {
	kb := &fakeKB{chunks: []domain.Chunk{
		{DocumentID: "plan.pdf", Index: 0, Text: "Scope of work.", CharStart: 0, CharEnd: 14, LineNumber: 1, PageNumber: 1},
		{DocumentID: "plan.pdf", Index: 1, Text: "Schedule.", CharStart: 15, CharEnd: 24, LineNumber: 3, PageNumber: 2},
	}}
	v := NewView(nil, nil, nil, kb)
	v.SetDimensions(100, 40)

	deliver(t, v, v.ShowDocument(domain.IndexEntry{DocumentID: "plan.pdf", Name: "plan.pdf", Type: domain.DocumentTypeGeneral}))

	assert.Equal(t, ModeDocument, v.Mode())
	assert.Equal(t, []string{"plan.pdf"}, kb.names)
	assert.Len(t, v.Chunks(), 2)

	view := v.View()
	assert.Contains(t, view, "#1  chars 15-24  L3 p2")
	assert.Contains(t, view, "Schedule.")
	assert.Contains(t, view, "2 chunks")
}

func TestShowDocument_Empty(t *testing.T) {
	v := NewView(nil, nil, nil, &fakeKB{})
	v.SetDimensions(100, 40)

	deliver(t, v, v.ShowDocument(domain.IndexEntry{DocumentID: "a.md"}))

	assert.Contains(t, v.View(), "No chunks stored")
}

func TestShowDocument_Error(t *testing.T) {
	v := NewView(nil, nil, nil, &fakeKB{err: errors.New("index unreadable")})

	deliver(t, v, v.ShowDocument(domain.IndexEntry{DocumentID: "a.md"}))

	assert.EqualError(t, v.Err(), "index unreadable")
}

func TestStaleChunksIgnored(t *testing.T) {
	v := NewView(nil, nil, nil, &fakeKB{})
	v.ShowDocument(domain.IndexEntry{DocumentID: "a.md"})

	v.Update(messages.ChunksLoaded{DocumentID: "b.md", Chunks: []domain.Chunk{{Text: "x"}}})

	assert.Empty(t, v.Chunks())
	assert.True(t, v.Loading())
}

func TestEscReturnsToPreviousView(t *testing.T) {
	v := NewView(nil, nil, &fakeResolver{}, &fakeKB{})

	v.ShowResult(hit())
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewSearch}, cmd())

	v.ShowDocument(domain.IndexEntry{DocumentID: "a.md"})
	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewDocuments}, cmd())
}

func TestContextKeysIgnoredInDocumentMode(t *testing.T) {
	v := NewView(nil, nil, &fakeResolver{}, &fakeKB{})
	v.ShowDocument(domain.IndexEntry{DocumentID: "a.md"})

	_, cmd := v.Update(runes("+"))

	assert.Equal(t, DefaultContext, v.ContextSize())
	_ = cmd
}

func TestWindowSizeMsg(t *testing.T) {
	v := NewView(nil, nil, nil, nil)

	v.Update(tea.WindowSizeMsg{Width: 120, Height: 50})

	assert.Equal(t, 116, v.viewport.Width)
	assert.Equal(t, 42, v.viewport.Height)
}
