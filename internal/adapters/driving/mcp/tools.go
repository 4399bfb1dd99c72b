package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/reqlens/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query     string   `json:"query" jsonschema:"natural-language query against the reference documents"`
	TopK      int      `json:"top_k,omitempty" jsonschema:"maximum number of results (default 5)"`
	Threshold *float64 `json:"threshold,omitempty" jsonschema:"minimum cosine similarity between -1 and 1 (default 0.7)"`
}

// MultiSearchInput is the input schema for the multi_search tool.
type MultiSearchInput struct {
	Queries   []string `json:"queries" jsonschema:"paraphrases of the same information need"`
	TopK      int      `json:"top_k,omitempty" jsonschema:"maximum number of merged results (default 5)"`
	Threshold *float64 `json:"threshold,omitempty" jsonschema:"minimum cosine similarity between -1 and 1 (default 0.7)"`
}

// SectionContextInput is the input schema for the section_context tool.
type SectionContextInput struct {
	SectionName string `json:"section_name" jsonschema:"heading of the section under analysis"`
	Content     string `json:"content,omitempty" jsonschema:"text of the section under analysis"`
}

// ResolveInput is the input schema for the resolve tool.
type ResolveInput struct {
	DocumentID    string `json:"document_id" jsonschema:"document id from a search result"`
	CharStart     int    `json:"char_start" jsonschema:"start offset of the cited range"`
	CharEnd       int    `json:"char_end" jsonschema:"end offset of the cited range"`
	ContextBefore int    `json:"context_before,omitempty" jsonschema:"characters of context before the range (default 200)"`
	ContextAfter  int    `json:"context_after,omitempty" jsonschema:"characters of context after the range (default 200)"`
}

// SearchOutput is the output schema for the search tools.
type SearchOutput struct {
	Results []domain.SearchResult `json:"results"`
	Count   int                   `json:"count"`
}

// ResolveOutput is the output schema for the resolve tool.
type ResolveOutput struct {
	DocumentID    string `json:"document_id"`
	WindowText    string `json:"window_text"`
	WindowStart   int    `json:"window_start"`
	WindowEnd     int    `json:"window_end"`
	RelativeStart int    `json:"relative_start"`
	RelativeEnd   int    `json:"relative_end"`
	Highlighted   string `json:"highlighted"`
	LineNumber    int    `json:"line_number"`
	PageNumber    int    `json:"page_number,omitempty"`
}

// DefaultResolveContext is the context window used when none is given.
const DefaultResolveContext = 200

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Semantic search over the indexed requirements reference documents",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "multi_search",
		Description: "Run several paraphrased queries and merge the results, best score per passage",
	}, s.handleMultiSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "section_context",
		Description: "Retrieve reference guidance for one section of a requirements document",
	}, s.handleSectionContext)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "resolve",
		Description: "Return the source text around a character range of an indexed document",
	}, s.handleResolve)
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	opts := domain.SearchOptions{TopK: input.TopK, Threshold: input.Threshold}
	results, err := s.ports.KnowledgeBase.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return nil, newSearchOutput(results), nil
}

func (s *Server) handleMultiSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input MultiSearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	opts := domain.SearchOptions{TopK: input.TopK, Threshold: input.Threshold}
	results, err := s.ports.KnowledgeBase.MultiSearch(ctx, input.Queries, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return nil, newSearchOutput(results), nil
}

func (s *Server) handleSectionContext(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SectionContextInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	results, err := s.ports.KnowledgeBase.SectionContext(ctx, input.SectionName, input.Content)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return nil, newSearchOutput(results), nil
}

func (s *Server) handleResolve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ResolveInput,
) (*mcp.CallToolResult, ResolveOutput, error) {
	if s.ports.Resolver == nil {
		return nil, ResolveOutput{}, ErrMissingResolver
	}

	before, after := input.ContextBefore, input.ContextAfter
	if before == 0 {
		before = DefaultResolveContext
	}
	if after == 0 {
		after = DefaultResolveContext
	}

	window, err := s.ports.Resolver.Resolve(ctx, domain.ResolveRequest{
		DocumentID: input.DocumentID,
		CharStart:  input.CharStart,
		CharEnd:    input.CharEnd,
		Before:     before,
		After:      after,
	})
	if err != nil {
		return nil, ResolveOutput{}, fmt.Errorf("resolving %s: %w", input.DocumentID, err)
	}
	return nil, ResolveOutput{
		DocumentID:    window.DocumentID,
		WindowText:    window.WindowText,
		WindowStart:   window.WindowStart,
		WindowEnd:     window.WindowEnd,
		RelativeStart: window.RelativeStart,
		RelativeEnd:   window.RelativeEnd,
		Highlighted:   window.Highlighted(),
		LineNumber:    window.LineNumber,
		PageNumber:    window.PageNumber,
	}, nil
}

func newSearchOutput(results []domain.SearchResult) SearchOutput {
	if results == nil {
		results = []domain.SearchResult{}
	}
	return SearchOutput{Results: results, Count: len(results)}
}
