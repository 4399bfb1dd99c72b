// Package domain defines the core retrieval entities for reqlens.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SourceDocument: A document discovered in a source, with its change marker
//   - TrackedSpan: Extracted text with its flattened-text coordinates
//   - ProcessedDocument: Flattened text plus the ordered spans describing it
//   - Chunk: A bounded, overlapping slice of flattened text
//   - IndexState: Last-indexed change marker per document
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
