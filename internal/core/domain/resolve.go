package domain

// ResolveRequest asks for a window of text around a character range.
type ResolveRequest struct {
	DocumentID string `json:"document_id"`
	CharStart  int    `json:"char_start"`
	CharEnd    int    `json:"char_end"`
	Before     int    `json:"context_before"`
	After      int    `json:"context_after"`
}

// ResolvedWindow is an excerpt of a document's flattened text.
// RelativeStart and RelativeEnd locate the requested range inside WindowText.
type ResolvedWindow struct {
	DocumentID    string `json:"document_id"`
	WindowText    string `json:"window_text"`
	WindowStart   int    `json:"window_start"`
	WindowEnd     int    `json:"window_end"`
	RelativeStart int    `json:"relative_start"`
	RelativeEnd   int    `json:"relative_end"`
	LineNumber    int    `json:"line_number"`
	PageNumber    int    `json:"page_number,omitempty"`
}

// Highlighted returns the requested range inside the window.
func (w *ResolvedWindow) Highlighted() string {
	return w.WindowText[w.RelativeStart:w.RelativeEnd]
}
