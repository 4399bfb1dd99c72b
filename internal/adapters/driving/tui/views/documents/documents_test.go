package documents

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqlens/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/reqlens/internal/core/domain"
)

type fakeKB struct {
	docs       []domain.IndexEntry
	docsErr    error
	report     *domain.RefreshReport
	refreshErr error
	refreshes  int
}

func (f *fakeKB) Refresh(context.Context, bool) (*domain.RefreshReport, error) {
	f.refreshes++
	return f.report, f.refreshErr
}
func (f *fakeKB) Search(context.Context, string, domain.SearchOptions) ([]domain.SearchResult, error) {
	return nil, nil
}
func (f *fakeKB) MultiSearch(context.Context, []string, domain.SearchOptions) ([]domain.SearchResult, error) {
	return nil, nil
}
func (f *fakeKB) SectionContext(context.Context, string, string) ([]domain.SearchResult, error) {
	return nil, nil
}
func (f *fakeKB) DocumentContext(context.Context, []string) ([]domain.Chunk, error) { return nil, nil }
func (f *fakeKB) Documents(context.Context) ([]domain.IndexEntry, error)            { return f.docs, f.docsErr }
func (f *fakeKB) Stats(context.Context) (*domain.KnowledgeBaseStats, error)         { return nil, nil }
func (f *fakeKB) Clear(context.Context) error                                       { return nil }

func sampleDocs() []domain.IndexEntry {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []domain.IndexEntry{
		{DocumentID: "srs.md", Name: "srs.md", Type: domain.DocumentTypeRequirements, ChunkCount: 12, IndexedAt: at},
		{DocumentID: "semp.pdf", Name: "semp.pdf", Type: domain.DocumentTypeSEMP, ChunkCount: 40, IndexedAt: at},
		{DocumentID: "github:acme/specs/guide.md", Type: domain.DocumentTypeGuide, ChunkCount: 3},
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loaded(t *testing.T, kb *fakeKB) *View {
	t.Helper()
	v := NewView(nil, kb)
	v.SetDimensions(120, 40)
	cmd := v.Load()
	require.NotNil(t, cmd)
	v.Update(cmd())
	return v
}

func TestLoad(t *testing.T) {
	v := loaded(t, &fakeKB{docs: sampleDocs()})

	assert.Len(t, v.Documents(), 3)
	assert.NoError(t, v.Err())

	view := v.View()
	assert.Contains(t, view, "Indexed Documents")
	assert.Contains(t, view, "semp.pdf")
	assert.Contains(t, view, "Requirements")
	assert.Contains(t, view, "github:acme/specs/guide.md", "falls back to the id")
}

func TestLoad_Error(t *testing.T) {
	v := loaded(t, &fakeKB{docsErr: errors.New("corrupt index")})

	assert.EqualError(t, v.Err(), "corrupt index")
	assert.Contains(t, v.View(), "Error: corrupt index")
}

func TestLoad_NoKnowledgeBase(t *testing.T) {
	v := NewView(nil, nil)

	v.Update(v.Load()())

	assert.ErrorIs(t, v.Err(), ErrNoKnowledgeBase)
}

func TestEmpty(t *testing.T) {
	v := loaded(t, &fakeKB{})

	assert.Contains(t, v.View(), "No documents indexed")
}

func TestNavigationAndSelect(t *testing.T) {
	v := loaded(t, &fakeKB{docs: sampleDocs()})

	v.Update(runes("j"))
	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	v.Update(runes("j"))
	assert.Equal(t, 2, v.Selected())

	v.Update(runes("k"))
	assert.Equal(t, 1, v.Selected())

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	sel, ok := cmd().(messages.DocumentSelected)
	require.True(t, ok)
	assert.Equal(t, "semp.pdf", sel.Document.DocumentID)
}

func TestEnterWithoutDocuments(t *testing.T) {
	v := loaded(t, &fakeKB{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Nil(t, v.SelectedDocument())
}

func TestRefreshReloadsDocuments(t *testing.T) {
	kb := &fakeKB{report: &domain.RefreshReport{Updated: []string{"srs.md"}, Unchanged: 2, Chunks: 12}}
	v := loaded(t, kb)
	kb.docs = sampleDocs()

	_, cmd := v.Update(runes("r"))
	require.NotNil(t, cmd)
	assert.Contains(t, v.View(), "Refreshing...")

	_, reload := v.Update(cmd())
	require.NotNil(t, reload)
	v.Update(reload())

	assert.Equal(t, 1, kb.refreshes)
	assert.Len(t, v.Documents(), 3)
	assert.Contains(t, v.View(), "Refreshed: 1 updated, 0 removed, 2 unchanged, 12 chunks")
}

func TestRefreshIgnoredWhileRunning(t *testing.T) {
	v := loaded(t, &fakeKB{})

	_, first := v.Update(runes("r"))
	_, second := v.Update(runes("r"))

	assert.NotNil(t, first)
	assert.Nil(t, second)
}

func TestRefreshError(t *testing.T) {
	v := loaded(t, &fakeKB{refreshErr: domain.ErrRefreshInProgress})

	_, cmd := v.Update(runes("r"))
	v.Update(cmd())

	assert.ErrorIs(t, v.Err(), domain.ErrRefreshInProgress)
}

func TestReportSummary_Failures(t *testing.T) {
	r := &domain.RefreshReport{Failed: []domain.DocumentFailure{{}, {}}}

	assert.Contains(t, ReportSummary(r), "2 failed")
}

func TestEscGoesToMenu(t *testing.T) {
	v := NewView(nil, nil)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)

	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestScrollKeepsSelectionVisible(t *testing.T) {
	docs := make([]domain.IndexEntry, 30)
	for i := range docs {
		docs[i] = domain.IndexEntry{DocumentID: string(rune('a'+i%26)) + ".md"}
	}
	v := loaded(t, &fakeKB{docs: docs})
	v.SetDimensions(100, 14) // five visible rows

	for i := 0; i < 10; i++ {
		v.Update(runes("j"))
	}

	assert.Equal(t, 10, v.Selected())
	assert.Equal(t, 6, v.scrollOffset)
	assert.Contains(t, v.View(), "7-11 of 30")
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "-", formatTime(time.Time{}))
	assert.NotEqual(t, "-", formatTime(time.Now()))
}
