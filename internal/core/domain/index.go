package domain

import (
	"sort"
	"time"
)

// IndexEntry is the last-indexed state of one document.
type IndexEntry struct {
	DocumentID   string       `json:"document_id"`
	Name         string       `json:"name"`
	ChangeMarker string       `json:"change_marker"`
	Type         DocumentType `json:"document_type"`
	ChunkCount   int          `json:"chunk_count"`
	IndexedAt    time.Time    `json:"indexed_at"`
}

// IndexState maps document ids to their last-indexed change marker.
// It is persisted together with the vector store.
type IndexState struct {
	Entries     map[string]IndexEntry `json:"entries"`
	LastRefresh time.Time             `json:"last_refresh"`
}

// NewIndexState returns an empty state.
func NewIndexState() *IndexState {
	return &IndexState{Entries: make(map[string]IndexEntry)}
}

// NeedsIndexing reports whether doc is new or its change marker differs.
func (s *IndexState) NeedsIndexing(doc SourceDocument) bool {
	e, ok := s.Entries[doc.ID]
	return !ok || e.ChangeMarker != doc.ChangeMarker
}

// Get returns the entry for id.
func (s *IndexState) Get(id string) (IndexEntry, bool) {
	e, ok := s.Entries[id]
	return e, ok
}

// Put records an entry.
func (s *IndexState) Put(e IndexEntry) {
	if s.Entries == nil {
		s.Entries = make(map[string]IndexEntry)
	}
	s.Entries[e.DocumentID] = e
}

// Remove deletes the entry for id.
func (s *IndexState) Remove(id string) {
	delete(s.Entries, id)
}

// Len returns the number of indexed documents.
func (s *IndexState) Len() int { return len(s.Entries) }

// IDs returns indexed document ids in sorted order.
func (s *IndexState) IDs() []string {
	ids := make([]string, 0, len(s.Entries))
	for id := range s.Entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Sorted returns entries ordered by name, then id.
func (s *IndexState) Sorted() []IndexEntry {
	out := make([]IndexEntry, 0, len(s.Entries))
	for _, e := range s.Entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].DocumentID < out[j].DocumentID
	})
	return out
}

// Clone returns a deep copy.
func (s *IndexState) Clone() *IndexState {
	c := &IndexState{Entries: make(map[string]IndexEntry, len(s.Entries)), LastRefresh: s.LastRefresh}
	for k, v := range s.Entries {
		c.Entries[k] = v
	}
	return c
}
