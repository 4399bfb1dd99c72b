package html

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqlens/internal/core/domain"
)

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
}

func TestFormats(t *testing.T) {
	assert.Equal(t, []domain.Format{domain.FormatHTML}, New().Formats())
}

func runTexts(ext *domain.Extraction) []string {
	out := make([]string, len(ext.Runs))
	for i, r := range ext.Runs {
		out[i] = r.Text
	}
	return out
}

func TestExtract_ReadingOrder(t *testing.T) {
	page := `<html><head><title>Spec</title><style>p{}</style></head><body>
<h1>Scope</h1>
<p>The system   shall
   respond.</p>
<script>var x = 1;</script>
<ul><li>Item <b>one</b></li><li>Item two</li></ul>
<h2>Notes &amp; caveats</h2>
<p></p>
</body></html>`

	ext, err := New().Extract(context.Background(), []byte(page))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Scope\n",
		"The system shall respond.\n",
		"Item one\n",
		"Item two\n",
		"Notes & caveats\n",
	}, runTexts(ext))
	assert.Equal(t, domain.SpanHeading, ext.Runs[0].Kind)
	assert.Equal(t, domain.SpanBody, ext.Runs[1].Kind)
	assert.Equal(t, domain.SpanHeading, ext.Runs[4].Kind)
}

func TestExtract_NestedBlocksEmittedOnce(t *testing.T) {
	page := `<body><blockquote><p>quoted</p></blockquote></body>`

	ext, err := New().Extract(context.Background(), []byte(page))
	require.NoError(t, err)

	assert.Equal(t, []string{"quoted\n"}, runTexts(ext))
}

func TestExtract_PreKeepsWhitespace(t *testing.T) {
	page := "<body><pre>\nline  one\n  line two\n</pre></body>"

	ext, err := New().Extract(context.Background(), []byte(page))
	require.NoError(t, err)

	assert.Equal(t, []string{"line  one\n  line two\n"}, runTexts(ext))
}

func TestExtract_LooseTextFallback(t *testing.T) {
	page := "<body><div>first\n</div><div>second</div></body>"

	ext, err := New().Extract(context.Background(), []byte(page))
	require.NoError(t, err)

	assert.Equal(t, []string{"first\n", "second\n"}, runTexts(ext))
}

func TestExtract_NilDocument(t *testing.T) {
	_, err := New().Extract(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
