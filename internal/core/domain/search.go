package domain

// Default search parameters.
const (
	DefaultTopK           = 5
	DefaultScoreThreshold = 0.7
)

// SearchOptions configures a similarity search.
type SearchOptions struct {
	// TopK is the maximum number of results.
	TopK int

	// Threshold is the minimum similarity a result must reach.
	// Nil means DefaultScoreThreshold, so an explicit 0 stays expressible.
	Threshold *float64
}

// Threshold returns a pointer for SearchOptions.Threshold.
func Threshold(v float64) *float64 { return &v }

// WithDefaults fills unset fields.
func (o SearchOptions) WithDefaults() SearchOptions {
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.Threshold == nil {
		o.Threshold = Threshold(DefaultScoreThreshold)
	}
	return o
}

// ScoreThreshold returns the effective threshold.
func (o SearchOptions) ScoreThreshold() float64 {
	if o.Threshold == nil {
		return DefaultScoreThreshold
	}
	return *o.Threshold
}

// SearchHit is a raw vector store match.
type SearchHit struct {
	RecordID int
	Metadata ChunkMetadata
	Score    float64
}

// SearchResult is a match returned to callers.
type SearchResult struct {
	Text         string  `json:"text"`
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name,omitempty"`
	CharStart    int     `json:"char_start"`
	CharEnd      int     `json:"char_end"`
	LineNumber   int     `json:"line_number"`
	PageNumber   int     `json:"page_number,omitempty"`
	Score        float64 `json:"score"`
	RecordID     int     `json:"record_id"`
}

// NewSearchResult flattens a store hit into a caller-facing result.
func NewSearchResult(h SearchHit) SearchResult {
	m := h.Metadata
	return SearchResult{
		Text:         m.Text,
		DocumentID:   m.DocumentID,
		DocumentName: m.DocumentName,
		CharStart:    m.CharStart,
		CharEnd:      m.CharEnd,
		LineNumber:   m.LineNumber,
		PageNumber:   m.PageNumber,
		Score:        h.Score,
		RecordID:     h.RecordID,
	}
}

// ResultKey identifies a result for de-duplication across queries.
type ResultKey struct {
	DocumentID string
	CharStart  int
	CharEnd    int
}

// Key returns the de-duplication key of a result.
func (r SearchResult) Key() ResultKey {
	return ResultKey{DocumentID: r.DocumentID, CharStart: r.CharStart, CharEnd: r.CharEnd}
}
