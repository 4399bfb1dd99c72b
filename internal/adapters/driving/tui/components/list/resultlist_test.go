package list

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqlens/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/reqlens/internal/core/domain"
)

func sampleResults() []domain.SearchResult {
	return []domain.SearchResult{
		{DocumentID: "srs.md", DocumentName: "srs.md", Text: "The system shall log in users.", LineNumber: 4, Score: 0.95},
		{DocumentID: "plan.pdf", DocumentName: "plan.pdf", Text: "Backups run nightly.", LineNumber: 12, PageNumber: 3, Score: 0.85},
		{DocumentID: "gdrive:abc", Text: "Retention is 30 days.", LineNumber: 1, Score: 0.75},
	}
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewResultList(t *testing.T) {
	list := NewResultList(styles.DefaultStyles())

	require.NotNil(t, list)
	assert.Equal(t, 0, list.Selected())
	assert.True(t, list.IsEmpty())
	assert.Nil(t, list.Init())
}

func TestNewResultList_NilStyles(t *testing.T) {
	list := NewResultList(nil)

	require.NotNil(t, list)
	assert.NotNil(t, list.styles)
}

func TestResultList_SetResultsResetsSelection(t *testing.T) {
	list := NewResultList(nil)
	list.SetResults(sampleResults())
	list.SetSelected(2)

	list.SetResults(sampleResults()[:1])

	assert.Equal(t, 1, list.Count())
	assert.Equal(t, 0, list.Selected())
}

func TestResultList_Navigation(t *testing.T) {
	list := NewResultList(nil)
	list.SetResults(sampleResults())

	list.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, list.Selected())

	list.Update(key("j"))
	list.Update(key("j"))
	assert.Equal(t, 2, list.Selected(), "stops at the last result")

	list.Update(key("k"))
	assert.Equal(t, 1, list.Selected())

	list.Update(key("g"))
	assert.Equal(t, 0, list.Selected())

	list.Update(key("G"))
	assert.Equal(t, 2, list.Selected())

	list.Update(tea.KeyMsg{Type: tea.KeyUp})
	list.Update(tea.KeyMsg{Type: tea.KeyUp})
	list.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, list.Selected(), "stops at the first result")
}

func TestResultList_SetSelectedOutOfRange(t *testing.T) {
	list := NewResultList(nil)
	list.SetResults(sampleResults())

	list.SetSelected(10)
	assert.Equal(t, 0, list.Selected())

	list.SetSelected(-1)
	assert.Equal(t, 0, list.Selected())
}

func TestResultList_SelectedResult(t *testing.T) {
	list := NewResultList(nil)
	assert.Nil(t, list.SelectedResult())

	list.SetResults(sampleResults())
	list.SetSelected(1)

	got := list.SelectedResult()
	require.NotNil(t, got)
	assert.Equal(t, "plan.pdf", got.DocumentID)
}

func TestResultList_ViewEmpty(t *testing.T) {
	assert.Contains(t, NewResultList(nil).View(), "No results")
}

func TestResultList_View(t *testing.T) {
	list := NewResultList(nil)
	list.SetDimensions(100, 40)
	list.SetResults(sampleResults())

	view := list.View()

	assert.Contains(t, view, "Results (3)")
	assert.Contains(t, view, "srs.md")
	assert.Contains(t, view, "The system shall log in users.")
	assert.Contains(t, view, "L12 p3")
	assert.Contains(t, view, "0.950")
	assert.Contains(t, view, "gdrive:abc", "falls back to the document id")
}

func TestResultList_ViewScrollsToSelection(t *testing.T) {
	list := NewResultList(nil)
	list.SetDimensions(100, 7)
	list.SetResults(sampleResults())
	list.SetSelected(2)

	view := list.View()

	assert.Contains(t, view, "Retention is 30 days.")
	assert.NotContains(t, view, "The system shall log in users.")
}

func TestLocation(t *testing.T) {
	assert.Equal(t, "L4", Location(&domain.SearchResult{LineNumber: 4}))
	assert.Equal(t, "L1 p2", Location(&domain.SearchResult{LineNumber: 1, PageNumber: 2}))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	assert.Equal(t, "ééé...", truncate("éééééééé", 6))
}

func TestResultList_Dimensions(t *testing.T) {
	list := NewResultList(nil)
	list.SetDimensions(120, 30)

	assert.Equal(t, 120, list.Width())
	assert.Equal(t, 30, list.Height())
}
