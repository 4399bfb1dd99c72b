package search

import "errors"

// ErrNoKnowledgeBase indicates that no knowledge base was provided.
var ErrNoKnowledgeBase = errors.New("knowledge base is required")
