// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// DocumentProcessor turns source bytes into coordinate-tracked text,
// KnowledgeBaseService keeps the vector store in step with the sources, and
// ResolverService maps character ranges back to surrounding text.
package services
