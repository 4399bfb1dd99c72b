package domain

import "errors"

// Domain errors represent retrieval failures callers can branch on with errors.Is.
// Adapters wrap them with context using fmt.Errorf("...: %w", err).
var (
	// ErrNotFound indicates a requested entity or persisted blob does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates no extractor is registered for a document format.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrExtraction indicates a source run or document could not be read.
	// A single failed run is skipped; a failed document is skipped by refresh.
	ErrExtraction = errors.New("extraction failed")

	// ErrDimensionMismatch indicates a vector whose length differs from the
	// configured dimension. Vectors are never truncated or padded.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrCorruptIndex indicates persisted state is internally inconsistent.
	// Callers choose to rebuild from scratch or fail startup.
	ErrCorruptIndex = errors.New("corrupt index")

	// ErrDocumentNotFound indicates an unknown document id.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrEmbeddingProvider indicates the external embedding call failed.
	ErrEmbeddingProvider = errors.New("embedding provider error")

	// ErrRefreshInProgress indicates another refresh holds the writer slot.
	ErrRefreshInProgress = errors.New("refresh in progress")

	// ErrRateLimited indicates a remote API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
