// Package menu provides the main navigation menu view for the TUI.
package menu

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/reqlens/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/reqlens/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/reqlens/internal/core/domain"
	"github.com/custodia-labs/reqlens/internal/core/ports/driving"
)

// Item represents a single menu option.
type Item struct {
	Label string
	View  messages.ViewType
	Quit  bool // selecting this item quits the app
}

// View represents the main menu view.
type View struct {
	styles   *styles.Styles
	kb       driving.KnowledgeBase
	ctx      context.Context
	items    []Item
	selected int
	width    int
	height   int
	ready    bool
	stats    *domain.KnowledgeBaseStats
}

// NewView creates a new menu view. kb may be nil, in which case no
// statistics line is shown.
func NewView(s *styles.Styles, kb driving.KnowledgeBase) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles: s,
		kb:     kb,
		ctx:    context.Background(),
		items: []Item{
			{Label: "Search", View: messages.ViewSearch},
			{Label: "Documents", View: messages.ViewDocuments},
			{Label: "Help", View: messages.ViewHelp},
			{Label: "Quit", Quit: true},
		},
		width:  80,
		height: 24,
	}
}

// WithContext sets the context for backend calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads knowledge base statistics for the header.
func (v *View) Init() tea.Cmd {
	return v.LoadStats()
}

// LoadStats returns a command fetching knowledge base statistics.
func (v *View) LoadStats() tea.Cmd {
	if v.kb == nil {
		return nil
	}
	kb, ctx := v.kb, v.ctx
	return func() tea.Msg {
		stats, err := kb.Stats(ctx)
		return messages.StatsLoaded{Stats: stats, Err: err}
	}
}

// Update handles messages for the menu view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.StatsLoaded:
		if msg.Err == nil {
			v.stats = msg.Stats
		}
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if v.selected > 0 {
				v.selected--
			}
		case "down", "j":
			if v.selected < len(v.items)-1 {
				v.selected++
			}
		case "enter":
			item := v.items[v.selected]
			if item.Quit {
				return v, tea.Quit
			}
			return v, func() tea.Msg {
				return messages.ViewChanged{View: item.View}
			}
		case "q":
			return v, tea.Quit
		}
	}
	return v, nil
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("reqlens"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Muted.Render("Requirements knowledge base"))
	b.WriteString("\n")
	if line := StatsLine(v.stats); line != "" {
		b.WriteString(v.styles.Muted.Render(line))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, item := range v.items {
		cursor := "  "
		style := v.styles.Normal
		if i == v.selected {
			cursor = "> "
			style = lipgloss.NewStyle().Foreground(v.styles.Theme().Secondary).Bold(true)
		}
		b.WriteString(cursor + style.Render(item.Label))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] Select  [q] Quit"))
	return b.String()
}

// StatsLine summarises the knowledge base in one line, or "" without stats.
func StatsLine(s *domain.KnowledgeBaseStats) string {
	if s == nil {
		return ""
	}
	line := fmt.Sprintf("%d documents, %d chunks", s.Documents, s.Store.TotalVectors)
	if s.Store.Dimension > 0 {
		line += fmt.Sprintf(", dim %d", s.Store.Dimension)
	}
	if !s.LastRefresh.IsZero() {
		line += ", refreshed " + s.LastRefresh.Local().Format("2006-01-02 15:04")
	}
	return line
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the currently selected index.
func (v *View) Selected() int {
	return v.selected
}

// Items returns the menu entries.
func (v *View) Items() []Item {
	return v.items
}
