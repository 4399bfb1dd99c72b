package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqlens/internal/core/domain"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()

	require.NotNil(t, theme)
	for name, c := range map[string]lipgloss.Color{
		"primary":    theme.Primary,
		"secondary":  theme.Secondary,
		"background": theme.Background,
		"foreground": theme.Foreground,
		"muted":      theme.Muted,
		"success":    theme.Success,
		"warning":    theme.Warning,
		"error":      theme.Error,
		"border":     theme.Border,
		"mark":       theme.Mark,
	} {
		assert.NotEmpty(t, string(c), name)
	}
}

func TestDefaultTheme_AccentsAreDistinct(t *testing.T) {
	theme := DefaultTheme()

	seen := make(map[lipgloss.Color]bool)
	for _, c := range []lipgloss.Color{theme.Primary, theme.Secondary, theme.Success, theme.Warning, theme.Error, theme.Mark} {
		assert.False(t, seen[c], "duplicate accent: %s", c)
		seen[c] = true
	}
}

func TestNewStyles_WithTheme(t *testing.T) {
	theme := DefaultTheme()
	styles := NewStyles(theme)

	require.NotNil(t, styles)
	assert.Equal(t, theme, styles.Theme())
}

func TestNewStyles_NilTheme(t *testing.T) {
	styles := NewStyles(nil)

	require.NotNil(t, styles)
	assert.NotNil(t, styles.Theme())
}

func TestStyles_AllStylesInitialised(t *testing.T) {
	styles := DefaultStyles()

	assert.NotEqual(t, lipgloss.Style{}, styles.Title)
	assert.NotEqual(t, lipgloss.Style{}, styles.Subtitle)
	assert.NotEqual(t, lipgloss.Style{}, styles.Normal)
	assert.NotEqual(t, lipgloss.Style{}, styles.Muted)
	assert.NotEqual(t, lipgloss.Style{}, styles.Selected)
	assert.NotEqual(t, lipgloss.Style{}, styles.Error)
	assert.NotEqual(t, lipgloss.Style{}, styles.Success)
	assert.NotEqual(t, lipgloss.Style{}, styles.Highlight)
	assert.NotEqual(t, lipgloss.Style{}, styles.InputField)
	assert.NotEqual(t, lipgloss.Style{}, styles.StatusBar)
	assert.NotEqual(t, lipgloss.Style{}, styles.Help)
}

func TestStyles_HighlightUsesMark(t *testing.T) {
	styles := DefaultStyles()

	assert.Equal(t, lipgloss.Color(styles.Theme().Mark), styles.Highlight.GetBackground())
	assert.Contains(t, styles.Highlight.Render("shall"), "shall")
}

func TestStyles_Score(t *testing.T) {
	styles := DefaultStyles()

	assert.Equal(t, styles.Success, styles.Score(0.92))
	assert.Equal(t, styles.Success, styles.Score(StrongScore))
	assert.Equal(t, styles.Normal, styles.Score(0.8))
	assert.Equal(t, styles.Warning, styles.Score(0.71))
}

func TestStyles_DocumentType(t *testing.T) {
	styles := DefaultStyles()
	theme := styles.Theme()

	assert.Equal(t, lipgloss.Color(theme.Primary), styles.DocumentType(domain.DocumentTypeSEMP).GetForeground())
	assert.Equal(t, lipgloss.Color(theme.Secondary), styles.DocumentType(domain.DocumentTypeRequirements).GetForeground())
	assert.Equal(t, styles.Muted, styles.DocumentType(domain.DocumentTypeGeneral))
	assert.Equal(t, styles.Muted, styles.DocumentType("Unknown"))
}
