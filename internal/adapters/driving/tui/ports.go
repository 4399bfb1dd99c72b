// Package tui provides an interactive terminal browser for the reqlens
// knowledge base. It is a driving adapter in the hexagonal layout.
package tui

import (
	"github.com/custodia-labs/reqlens/internal/core/domain"
	"github.com/custodia-labs/reqlens/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI needs.
type Ports struct {
	// KnowledgeBase answers searches and lists indexed documents.
	KnowledgeBase driving.KnowledgeBase

	// Resolver expands a search hit into its surrounding source text.
	Resolver driving.ContextResolver

	// SearchOptions are applied to every search issued from the TUI.
	SearchOptions domain.SearchOptions
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(kb driving.KnowledgeBase, resolver driving.ContextResolver) *Ports {
	return &Ports{KnowledgeBase: kb, Resolver: resolver}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.KnowledgeBase == nil {
		return ErrMissingKnowledgeBase
	}
	if p.Resolver == nil {
		return ErrMissingResolver
	}
	return nil
}
