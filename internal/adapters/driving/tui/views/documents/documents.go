// Package documents provides the indexed documents view for the TUI.
package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/reqlens/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/reqlens/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/reqlens/internal/core/domain"
	"github.com/custodia-labs/reqlens/internal/core/ports/driving"
)

// ErrNoKnowledgeBase indicates that no knowledge base was provided.
var ErrNoKnowledgeBase = errors.New("knowledge base is required")

// View lists indexed documents and can trigger a refresh.
type View struct {
	styles *styles.Styles
	kb     driving.KnowledgeBase
	ctx    context.Context

	documents    []domain.IndexEntry
	selected     int
	scrollOffset int
	width        int
	height       int
	err          error
	loading      bool
	refreshing   bool
	lastReport   *domain.RefreshReport
}

// NewView creates a new documents view.
func NewView(s *styles.Styles, kb driving.KnowledgeBase) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		kb:     kb,
		ctx:    context.Background(),
		width:  80,
		height: 24,
	}
}

// WithContext sets the context for backend calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Load returns a command that lists the indexed documents.
func (v *View) Load() tea.Cmd {
	v.loading = true
	v.err = nil
	kb, ctx := v.kb, v.ctx
	return func() tea.Msg {
		if kb == nil {
			return messages.DocumentsLoaded{Err: ErrNoKnowledgeBase}
		}
		docs, err := kb.Documents(ctx)
		return messages.DocumentsLoaded{Documents: docs, Err: err}
	}
}

func (v *View) refresh() tea.Cmd {
	v.refreshing = true
	v.err = nil
	kb, ctx := v.kb, v.ctx
	return func() tea.Msg {
		if kb == nil {
			return messages.RefreshCompleted{Err: ErrNoKnowledgeBase}
		}
		report, err := kb.Refresh(ctx, false)
		return messages.RefreshCompleted{Report: report, Err: err}
	}
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.DocumentsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.documents = msg.Documents
		v.err = nil
		if v.selected >= len(v.documents) {
			v.selected = max(len(v.documents)-1, 0)
		}
		v.adjustScroll()
		return v, nil

	case messages.RefreshCompleted:
		v.refreshing = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.lastReport = msg.Report
		return v, v.Load()
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case "down", "j":
		if v.selected < len(v.documents)-1 {
			v.selected++
			v.adjustScroll()
		}
	case "enter":
		if doc := v.SelectedDocument(); doc != nil {
			selected := *doc
			return v, func() tea.Msg { return messages.DocumentSelected{Document: selected} }
		}
	case "r":
		if !v.refreshing {
			return v, v.refresh()
		}
	case "esc":
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
	}
	return v, nil
}

func (v *View) visibleRows() int {
	// title, summary, header, blank lines and help
	return max(v.height-9, 1)
}

func (v *View) adjustScroll() {
	rows := v.visibleRows()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	}
	if v.selected >= v.scrollOffset+rows {
		v.scrollOffset = v.selected - rows + 1
	}
}

// View renders the documents view.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Indexed Documents"))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(v.width-4, 60)))
	b.WriteString("\n\n")

	switch {
	case v.refreshing:
		b.WriteString(v.styles.Muted.Render("Refreshing..."))
		b.WriteString("\n\n")
	case v.lastReport != nil && len(v.lastReport.Failed) > 0:
		b.WriteString(v.styles.Warning.Render(ReportSummary(v.lastReport)))
		b.WriteString("\n\n")
	case v.lastReport != nil:
		b.WriteString(v.styles.Success.Render(ReportSummary(v.lastReport)))
		b.WriteString("\n\n")
	}

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading documents..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.documents) == 0:
		b.WriteString(v.styles.Muted.Render("No documents indexed. Press r to refresh."))
	default:
		b.WriteString(v.renderTable())
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] chunks  [r] refresh  [esc] back"))
	return b.String()
}

func (v *View) renderTable() string {
	nameWidth := max(v.width-44, 16)
	lines := []string{v.styles.Subtitle.Render(fmt.Sprintf("  %-*s %-15s %6s  %s", nameWidth, "NAME", "TYPE", "CHUNKS", "INDEXED"))}

	end := min(v.scrollOffset+v.visibleRows(), len(v.documents))
	for i := v.scrollOffset; i < end; i++ {
		d := v.documents[i]
		name := d.Name
		if name == "" {
			name = d.DocumentID
		}
		if r := []rune(name); len(r) > nameWidth {
			name = string(r[:nameWidth-3]) + "..."
		}
		typ := fmt.Sprintf("%-15s", d.Type)
		tail := fmt.Sprintf(" %6d  %s", d.ChunkCount, formatTime(d.IndexedAt))
		if i == v.selected {
			lines = append(lines, v.styles.Selected.Render(fmt.Sprintf("> %-*s %s%s", nameWidth, name, typ, tail)))
		} else {
			lines = append(lines, v.styles.Normal.Render(fmt.Sprintf("  %-*s ", nameWidth, name))+
				v.styles.DocumentType(d.Type).Render(typ)+
				v.styles.Normal.Render(tail))
		}
	}
	if len(v.documents) > v.visibleRows() {
		lines = append(lines, v.styles.Muted.Render(fmt.Sprintf("  %d-%d of %d", v.scrollOffset+1, end, len(v.documents))))
	}
	return strings.Join(lines, "\n")
}

// ReportSummary renders a one-line refresh summary.
func ReportSummary(r *domain.RefreshReport) string {
	s := fmt.Sprintf("Refreshed: %d updated, %d removed, %d unchanged, %d chunks",
		len(r.Updated), len(r.Removed), r.Unchanged, r.Chunks)
	if n := len(r.Failed); n > 0 {
		s += fmt.Sprintf(", %d failed", n)
	}
	return s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.adjustScroll()
}

// Documents returns the loaded documents.
func (v *View) Documents() []domain.IndexEntry {
	return v.documents
}

// SelectedDocument returns the highlighted document, or nil if none.
func (v *View) SelectedDocument() *domain.IndexEntry {
	if v.selected < 0 || v.selected >= len(v.documents) {
		return nil
	}
	return &v.documents[v.selected]
}

// Selected returns the index of the highlighted document.
func (v *View) Selected() int {
	return v.selected
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
