// Package window shows source text for a search hit or a document.
//
// In result mode the view resolves the hit's character range through the
// context resolver and highlights it. In document mode it lists the stored
// chunks of one document with their offsets.
package window

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/reqlens/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/reqlens/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/reqlens/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/reqlens/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/reqlens/internal/core/domain"
	"github.com/custodia-labs/reqlens/internal/core/ports/driving"
)

const (
	// DefaultContext is the initial number of characters shown either side of a hit.
	DefaultContext = 200
	// ContextStep is how much + and - change the context.
	ContextStep = 200
	// MaxContext caps the context on either side.
	MaxContext = 5000
)

// Mode says what the view is showing.
type Mode int

const (
	ModeResult Mode = iota
	ModeDocument
)

// View renders resolved windows and document chunks in a scrollable viewport.
type View struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	resolver driving.ContextResolver
	kb       driving.KnowledgeBase
	ctx      context.Context
	viewport viewport.Model

	mode     Mode
	result   domain.SearchResult
	document domain.IndexEntry
	context  int

	window *domain.ResolvedWindow
	chunks []domain.Chunk

	width   int
	height  int
	loading bool
	err     error
}

// NewView creates a window view.
func NewView(s *styles.Styles, km *keymap.KeyMap, resolver driving.ContextResolver, kb driving.KnowledgeBase) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	v := &View{
		styles:   s,
		keymap:   km,
		resolver: resolver,
		kb:       kb,
		ctx:      context.Background(),
		context:  DefaultContext,
		width:    80,
		height:   24,
	}
	v.viewport = viewport.New(v.contentWidth(), v.contentHeight())
	return v
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

// ShowResult switches to result mode and resolves the hit.
func (v *View) ShowResult(r domain.SearchResult) tea.Cmd {
	v.mode = ModeResult
	v.result = r
	v.context = DefaultContext
	v.window = nil
	v.chunks = nil
	return v.resolve()
}

// ShowDocument switches to document mode and loads the document's chunks.
func (v *View) ShowDocument(doc domain.IndexEntry) tea.Cmd {
	v.mode = ModeDocument
	v.document = doc
	v.window = nil
	v.chunks = nil
	v.err = nil
	v.loading = true
	v.viewport.SetContent("")

	kb, ctx, id := v.kb, v.ctx, doc.DocumentID
	return func() tea.Msg {
		if kb == nil {
			return messages.ChunksLoaded{DocumentID: id, Err: ErrNoKnowledgeBase}
		}
		chunks, err := kb.DocumentContext(ctx, []string{id})
		return messages.ChunksLoaded{DocumentID: id, Chunks: chunks, Err: err}
	}
}

func (v *View) resolve() tea.Cmd {
	v.loading = true
	v.err = nil
	resolver, ctx := v.resolver, v.ctx
	req := domain.ResolveRequest{
		DocumentID: v.result.DocumentID,
		CharStart:  v.result.CharStart,
		CharEnd:    v.result.CharEnd,
		Before:     v.context,
		After:      v.context,
	}
	return func() tea.Msg {
		if resolver == nil {
			return messages.WindowResolved{Err: ErrNoResolver}
		}
		w, err := resolver.Resolve(ctx, req)
		return messages.WindowResolved{Window: w, Err: err}
	}
}

// Update handles messages for the window view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.WindowResolved:
		if v.mode != ModeResult || (msg.Window != nil && msg.Window.DocumentID != v.result.DocumentID) {
			return v, nil
		}
		v.loading = false
		v.err = msg.Err
		v.window = msg.Window
		v.render()
		return v, nil

	case messages.ChunksLoaded:
		if v.mode != ModeDocument || msg.DocumentID != v.document.DocumentID {
			return v, nil
		}
		v.loading = false
		v.err = msg.Err
		v.chunks = msg.Chunks
		v.render()
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	switch {
	case msg.Type == tea.KeyEsc:
		back := messages.ViewSearch
		if v.mode == ModeDocument {
			back = messages.ViewDocuments
		}
		return v, func() tea.Msg { return messages.ViewChanged{View: back} }

	case v.mode == ModeResult && keymap.Matches(key, v.keymap.Wider):
		if v.context < MaxContext {
			v.context = min(v.context+ContextStep, MaxContext)
			return v, v.resolve()
		}
		return v, nil

	case v.mode == ModeResult && keymap.Matches(key, v.keymap.Narrower):
		if v.context > 0 {
			v.context = max(v.context-ContextStep, 0)
			return v, v.resolve()
		}
		return v, nil

	case key == "g" || key == "home":
		v.viewport.GotoTop()
		return v, nil

	case key == "G" || key == "end":
		v.viewport.GotoBottom()
		return v, nil
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// render lays out the current content into the viewport.
func (v *View) render() {
	wrap := lipgloss.NewStyle().Width(v.contentWidth())
	switch {
	case v.err != nil:
		v.viewport.SetContent("")
	case v.mode == ModeResult && v.window != nil:
		v.viewport.SetContent(wrap.Render(v.highlight(v.window)))
		v.viewport.SetYOffset(max(strings.Count(v.window.WindowText[:v.window.RelativeStart], "\n")-2, 0))
	case v.mode == ModeDocument:
		v.viewport.SetContent(v.renderChunks(wrap))
		v.viewport.GotoTop()
	}
}

// highlight marks the requested range inside the window text.
func (v *View) highlight(w *domain.ResolvedWindow) string {
	before := w.WindowText[:w.RelativeStart]
	after := w.WindowText[w.RelativeEnd:]
	var b strings.Builder
	if w.WindowStart > 0 {
		b.WriteString(v.styles.Muted.Render("…"))
	}
	b.WriteString(before)
	b.WriteString(v.styles.Highlight.Render(w.Highlighted()))
	b.WriteString(after)
	return b.String()
}

func (v *View) renderChunks(wrap lipgloss.Style) string {
	if len(v.chunks) == 0 {
		return v.styles.Muted.Render("(No chunks stored for this document)")
	}
	parts := make([]string, 0, len(v.chunks))
	for _, c := range v.chunks {
		head := fmt.Sprintf("#%d  chars %d-%d  L%d", c.Index, c.CharStart, c.CharEnd, c.LineNumber)
		if c.PageNumber > 0 {
			head += fmt.Sprintf(" p%d", c.PageNumber)
		}
		parts = append(parts, v.styles.Subtitle.Render(head)+"\n"+wrap.Render(c.Text))
	}
	return strings.Join(parts, "\n\n")
}

// View renders the window view.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render(v.title()))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(v.subtitle()))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(v.width-4, 60)))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	default:
		b.WriteString(v.viewport.View())
		if v.viewport.TotalLineCount() > v.viewport.Height {
			b.WriteString("\n")
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d%%]", int(v.viewport.ScrollPercent()*100))))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())
	return b.String()
}

func (v *View) title() string {
	if v.mode == ModeDocument {
		if v.document.Name != "" {
			return v.document.Name
		}
		return v.document.DocumentID
	}
	if v.result.DocumentName != "" {
		return v.result.DocumentName
	}
	return v.result.DocumentID
}

func (v *View) subtitle() string {
	if v.mode == ModeDocument {
		return fmt.Sprintf("%s  %d chunks", v.document.Type, len(v.chunks))
	}
	s := fmt.Sprintf("%s  score %.3f  context ±%d", list.Location(&v.result), v.result.Score, v.context)
	if v.window != nil {
		s += fmt.Sprintf("  chars %d-%d", v.window.WindowStart, v.window.WindowEnd)
	}
	return s
}

func (v *View) renderHelp() string {
	if v.mode == ModeDocument {
		return v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [esc] back")
	}
	return v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [+/-] context  [g/G] top/bottom  [esc] back")
}

func (v *View) contentWidth() int {
	return max(v.width-4, 20)
}

// contentHeight leaves room for the title block, percentage and help.
func (v *View) contentHeight() int {
	return max(v.height-8, 1)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.viewport.Width = v.contentWidth()
	v.viewport.Height = v.contentHeight()
	v.render()
}

// Mode returns what the view is showing.
func (v *View) Mode() Mode {
	return v.mode
}

// Window returns the last resolved window.
func (v *View) Window() *domain.ResolvedWindow {
	return v.window
}

// Chunks returns the loaded document chunks.
func (v *View) Chunks() []domain.Chunk {
	return v.chunks
}

// ContextSize returns the characters requested either side of the hit.
func (v *View) ContextSize() int {
	return v.context
}

// Loading reports whether a backend call is in flight.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
