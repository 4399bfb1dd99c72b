package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/reqlens/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for reqlens resources.
	uriScheme = "reqlens://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "Indexed reference documents with their type and chunk counts",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}/chunks",
		Name:        "document-chunks",
		Description: "Stored chunks of one document, with offsets, line and page numbers",
		MIMEType:    "application/json",
	}, s.handleChunksResource)
}

// handleDocumentsResource lists indexed documents.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	entries, err := s.ports.KnowledgeBase.Documents(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	type docInfo struct {
		ID         string              `json:"id"`
		Name       string              `json:"name"`
		Type       domain.DocumentType `json:"type"`
		ChunkCount int                 `json:"chunk_count"`
		URI        string              `json:"chunks_uri"`
	}

	infos := make([]docInfo, len(entries))
	for i, e := range entries {
		infos[i] = docInfo{
			ID:         e.DocumentID,
			Name:       e.Name,
			Type:       e.Type,
			ChunkCount: e.ChunkCount,
			URI:        chunksURI(e.DocumentID),
		}
	}
	return jsonResult(req.Params.URI, infos)
}

// handleChunksResource returns the stored chunks of one document.
func (s *Server) handleChunksResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docID := extractDocumentID(req.Params.URI)
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	chunks, err := s.ports.KnowledgeBase.DocumentContext(ctx, []string{docID})
	if errors.Is(err, domain.ErrDocumentNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("reading chunks: %w", err)
	}
	if chunks == nil {
		chunks = []domain.Chunk{}
	}
	return jsonResult(req.Params.URI, chunks)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// chunksURI builds the chunk resource URI. Ids are path-escaped because
// remote ids contain slashes.
func chunksURI(docID string) string {
	return uriScheme + "documents/" + url.PathEscape(docID) + "/chunks"
}

// extractDocumentID extracts the document ID from reqlens://documents/{documentId}/chunks.
func extractDocumentID(uri string) string {
	const prefix = uriScheme + "documents/"
	const suffix = "/chunks"

	rest, ok := strings.CutPrefix(uri, prefix)
	if !ok {
		return ""
	}
	rest, ok = strings.CutSuffix(rest, suffix)
	if !ok || rest == "" {
		return ""
	}
	id, err := url.PathUnescape(rest)
	if err != nil {
		return ""
	}
	return id
}
