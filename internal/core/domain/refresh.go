package domain

import "time"

// DocumentFailure records why one document was skipped during refresh.
type DocumentFailure struct {
	DocumentID string `json:"document_id"`
	Stage      string `json:"stage"`
	Error      string `json:"error"`
}

// RefreshReport is the structured outcome of a refresh batch.
// Partial failures are reported here rather than returned as errors.
type RefreshReport struct {
	RunID     string            `json:"run_id"`
	Updated   []string          `json:"updated"`
	Failed    []DocumentFailure `json:"failed"`
	Removed   []string          `json:"removed"`
	Unchanged int               `json:"unchanged"`
	Chunks    int               `json:"chunks"`
	StartedAt time.Time         `json:"started_at"`
	Duration  time.Duration     `json:"duration"`
	// Interrupted is the document being indexed when the run was cancelled.
	Interrupted string `json:"interrupted,omitempty"`
}

// FailedIDs returns the ids of failed documents.
func (r *RefreshReport) FailedIDs() []string {
	ids := make([]string, len(r.Failed))
	for i, f := range r.Failed {
		ids[i] = f.DocumentID
	}
	return ids
}

// Changed reports whether the refresh mutated the knowledge base.
func (r *RefreshReport) Changed() bool {
	return len(r.Updated) > 0 || len(r.Removed) > 0
}
