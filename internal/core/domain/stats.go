package domain

import "time"

// StoreStats describes vector store occupancy.
type StoreStats struct {
	TotalVectors     int `json:"total_vectors"`
	Dimension        int `json:"dimension"`
	StorageSizeBytes int `json:"storage_size_bytes"`
	MetadataEntries  int `json:"metadata_entries"`
}

// KnowledgeBaseStats summarises the knowledge base.
type KnowledgeBaseStats struct {
	Store       StoreStats           `json:"store"`
	Documents   int                  `json:"documents"`
	ByType      map[DocumentType]int `json:"by_type"`
	LastRefresh time.Time            `json:"last_refresh"`
}
