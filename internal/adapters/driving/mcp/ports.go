package mcp

import (
	"github.com/custodia-labs/reqlens/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// KnowledgeBase answers searches and lists indexed documents.
	KnowledgeBase driving.KnowledgeBase

	// Resolver maps character ranges back to source text. Optional.
	Resolver driving.ContextResolver
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.KnowledgeBase == nil {
		return ErrMissingKnowledgeBase
	}
	return nil
}
