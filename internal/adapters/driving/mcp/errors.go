// Package mcp provides an MCP (Model Context Protocol) server adapter for reqlens.
// It lets AI assistants query the requirements knowledge base and pull exact
// source context for the passages they cite.
package mcp

import "errors"

// ErrMissingKnowledgeBase is returned when the knowledge base is not provided.
var ErrMissingKnowledgeBase = errors.New("mcp: knowledge base is required")

// ErrMissingResolver is returned by the resolve tool when no resolver is configured.
var ErrMissingResolver = errors.New("mcp: context resolver is not configured")
