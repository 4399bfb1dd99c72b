package tui

import "errors"

// ErrMissingKnowledgeBase is returned when the knowledge base is not provided.
var ErrMissingKnowledgeBase = errors.New("tui: knowledge base is required")

// ErrMissingResolver is returned when the context resolver is not provided.
var ErrMissingResolver = errors.New("tui: context resolver is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
