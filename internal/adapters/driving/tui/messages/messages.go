// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/reqlens/internal/core/domain"
)

// SearchCompleted carries search results back to the model.
type SearchCompleted struct {
	Query   string
	Results []domain.SearchResult
	Err     error
}

// ResultSelected is sent when a search result is opened.
type ResultSelected struct {
	Result domain.SearchResult
}

// WindowResolved carries the resolved context window of a result.
type WindowResolved struct {
	Window *domain.ResolvedWindow
	Err    error
}

// DocumentsLoaded carries the indexed documents.
type DocumentsLoaded struct {
	Documents []domain.IndexEntry
	Err       error
}

// DocumentSelected signals a document was opened from the documents list.
type DocumentSelected struct {
	Document domain.IndexEntry
}

// ChunksLoaded carries the stored chunks of one document.
type ChunksLoaded struct {
	DocumentID string
	Chunks     []domain.Chunk
	Err        error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewSearch is the search input and results view.
	ViewSearch
	// ViewWindow shows resolved source text or a document's chunks.
	ViewWindow
	// ViewDocuments lists indexed documents.
	ViewDocuments
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewSearch:
		return "search"
	case ViewWindow:
		return "window"
	case ViewDocuments:
		return "documents"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// RefreshCompleted carries the outcome of a knowledge base refresh.
type RefreshCompleted struct {
	Report *domain.RefreshReport
	Err    error
}

// StatsLoaded carries knowledge base statistics for the menu header.
type StatsLoaded struct {
	Stats *domain.KnowledgeBaseStats
	Err   error
}
