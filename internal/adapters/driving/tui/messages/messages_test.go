package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/reqlens/internal/core/domain"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view ViewType
		want string
	}{
		{ViewMenu, "menu"},
		{ViewSearch, "search"},
		{ViewWindow, "window"},
		{ViewDocuments, "documents"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.view.String())
		})
	}
}

func TestViewType_DistinctValues(t *testing.T) {
	seen := map[ViewType]bool{}
	for _, v := range []ViewType{ViewMenu, ViewSearch, ViewWindow, ViewDocuments, ViewHelp} {
		assert.False(t, seen[v], "duplicate view type %d", v)
		seen[v] = true
	}
}

func TestSearchCompleted_CarriesError(t *testing.T) {
	msg := SearchCompleted{Query: "q", Err: errors.New("boom")}

	assert.Nil(t, msg.Results)
	assert.EqualError(t, msg.Err, "boom")
}

func TestResultSelected_CopiesResult(t *testing.T) {
	r := domain.SearchResult{DocumentID: "a.md", CharStart: 1, CharEnd: 4}
	msg := ResultSelected{Result: r}
	r.CharStart = 99

	assert.Equal(t, 1, msg.Result.CharStart)
}
