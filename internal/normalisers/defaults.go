package normalisers

import (
	"github.com/custodia-labs/reqlens/internal/core/domain"
	"github.com/custodia-labs/reqlens/internal/normalisers/docx"
	"github.com/custodia-labs/reqlens/internal/normalisers/html"
	"github.com/custodia-labs/reqlens/internal/normalisers/markdown"
	"github.com/custodia-labs/reqlens/internal/normalisers/pdf"
	"github.com/custodia-labs/reqlens/internal/normalisers/plaintext"
	"github.com/custodia-labs/reqlens/internal/normalisers/structured"
)

// RegisterDefaults registers all built-in extractors with the registry.
// Call this during application initialisation.
func RegisterDefaults(r *Registry) {
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(docx.New())
	r.Register(pdf.New())

	s := structured.New()
	for _, f := range []domain.Format{domain.FormatJSON, domain.FormatYAML, domain.FormatTOML} {
		r.Register(s.ForFormat(f))
	}
}

// NewDefaultRegistry returns a registry with every built-in extractor.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}
