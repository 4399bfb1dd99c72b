// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - DocumentSource: Lists source documents and fetches their bytes
//   - Extractor: Turns one document format into ordered text runs
//   - ExtractorRegistry: Selects an extractor by format
//   - EmbeddingProvider: Generates embeddings for chunks and queries
//   - VectorStore: Flat vector storage with similarity search
//   - BlobStore: Opaque byte persistence keyed by name
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: internal/core/domain, standard library
//   - Cannot Import: Adapters, services, external dependencies
package driven
