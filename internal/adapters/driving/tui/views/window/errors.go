package window

import "errors"

var (
	// ErrNoResolver indicates that no context resolver was provided.
	ErrNoResolver = errors.New("context resolver is required")

	// ErrNoKnowledgeBase indicates that no knowledge base was provided.
	ErrNoKnowledgeBase = errors.New("knowledge base is required")
)
