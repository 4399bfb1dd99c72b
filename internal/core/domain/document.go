package domain

// Chunk is a contiguous slice of one document's flattened text.
// Offsets are in document coordinates, not embedding-space positions.
type Chunk struct {
	// DocumentID links to the owning SourceDocument.
	DocumentID string `json:"document_id"`

	// Index is the 0-based ordinal of the chunk within its document.
	Index int `json:"chunk_index"`

	// Text is the literal chunk text.
	Text string `json:"text"`

	// CharStart and CharEnd bound the chunk in the flattened text.
	CharStart int `json:"char_start"`
	CharEnd   int `json:"char_end"`

	// LineNumber is the line of the span containing CharStart.
	LineNumber int `json:"line_number"`

	// PageNumber is the page of that span, or 0 when not paginated.
	PageNumber int `json:"page_number,omitempty"`
}

// ChunkMetadata is the metadata carried alongside a stored vector.
type ChunkMetadata struct {
	Chunk
	DocumentName string `json:"document_name,omitempty"`
}
