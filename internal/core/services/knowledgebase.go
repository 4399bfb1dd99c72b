package services

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/reqlens/internal/core/domain"
	"github.com/custodia-labs/reqlens/internal/core/ports/driven"
	"github.com/custodia-labs/reqlens/internal/core/ports/driving"
	"github.com/custodia-labs/reqlens/internal/logger"
)

// Ensure KnowledgeBaseService implements the interface.
var _ driving.KnowledgeBase = (*KnowledgeBaseService)(nil)

// Refresh stages, reported in domain.DocumentFailure.
const (
	StageFetch   = "fetch"
	StageProcess = "process"
	StageEmbed   = "embed"
	StageStore   = "store"
)

// Defaults for Config.
const (
	DefaultSnapshotName     = "knowledge_base.snapshot"
	DefaultEmbedConcurrency = 4
	DefaultBatchSize        = 16
)

// Section context retrieval parameters.
const (
	sectionTopK       = 3
	sectionThreshold  = 0.4
	sectionLimit      = 5
	sectionQueryRunes = 200
)

const snapshotVersion = 1

// Chunker splits a processed document into chunks.
type Chunker interface {
	Process(doc *domain.ProcessedDocument) []domain.Chunk
}

// Config tunes the knowledge base.
type Config struct {
	// SnapshotName is the blob the store and index state are persisted under.
	SnapshotName string

	// EmbedConcurrency bounds parallel embedding calls per document.
	EmbedConcurrency int

	// BatchSize is the number of chunks sent per embedding call.
	BatchSize int
}

func (c Config) withDefaults() Config {
	if c.SnapshotName == "" {
		c.SnapshotName = DefaultSnapshotName
	}
	if c.EmbedConcurrency <= 0 {
		c.EmbedConcurrency = DefaultEmbedConcurrency
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	return c
}

// snapshot is the persisted form of the knowledge base.
type snapshot struct {
	Version int
	State   domain.IndexState
	Vectors []byte
}

// KnowledgeBaseService keeps the vector store consistent with a document source.
//
// Lock order: refreshMu, then mu. Searches take mu for reading; commits take
// it for writing, so readers never observe a half-replaced document.
type KnowledgeBaseService struct {
	cfg       Config
	source    driven.DocumentSource
	processor *DocumentProcessor
	chunker   Chunker
	embedder  driven.EmbeddingProvider
	store     driven.VectorStore
	blobs     driven.BlobStore

	refreshMu sync.Mutex
	mu        sync.RWMutex
	state     *domain.IndexState
}

// NewKnowledgeBaseService creates a knowledge base with an empty state.
// Call Load to restore a persisted snapshot.
func NewKnowledgeBaseService(
	cfg Config,
	source driven.DocumentSource,
	processor *DocumentProcessor,
	chunker Chunker,
	embedder driven.EmbeddingProvider,
	store driven.VectorStore,
	blobs driven.BlobStore,
) *KnowledgeBaseService {
	return &KnowledgeBaseService{
		cfg:       cfg.withDefaults(),
		source:    source,
		processor: processor,
		chunker:   chunker,
		embedder:  embedder,
		store:     store,
		blobs:     blobs,
		state:     domain.NewIndexState(),
	}
}

// Load restores the snapshot. A missing snapshot leaves an empty knowledge base.
// Any inconsistency returns domain.ErrCorruptIndex and keeps the live state.
func (s *KnowledgeBaseService) Load(ctx context.Context) error {
	data, err := s.blobs.Read(ctx, s.cfg.SnapshotName)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Debug("No snapshot %q, starting empty", s.cfg.SnapshotName)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return fmt.Errorf("%w: decode snapshot: %v", domain.ErrCorruptIndex, err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("%w: snapshot version %d", domain.ErrCorruptIndex, snap.Version)
	}
	state := &snap.State
	if state.Entries == nil {
		state.Entries = make(map[string]domain.IndexEntry)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	backup, err := s.store.MarshalBinary()
	if err != nil {
		return fmt.Errorf("backup vector store: %w", err)
	}
	if err := s.store.UnmarshalBinary(snap.Vectors); err != nil {
		return err
	}
	if err := checkConsistency(state, s.store); err != nil {
		if restoreErr := s.store.UnmarshalBinary(backup); restoreErr != nil {
			return errors.Join(err, restoreErr)
		}
		return err
	}

	s.state = state
	logger.Info("Loaded knowledge base: %d documents, %d vectors", state.Len(), s.store.Len())
	return nil
}

// checkConsistency verifies every record belongs to an indexed document and
// every entry's chunk count matches the store.
func checkConsistency(state *domain.IndexState, store driven.VectorStore) error {
	total := 0
	for id, e := range state.Entries {
		n := len(store.Records(id))
		if n != e.ChunkCount {
			return fmt.Errorf("%w: %s has %d records, index says %d", domain.ErrCorruptIndex, id, n, e.ChunkCount)
		}
		total += n
	}
	if total != store.Len() {
		return fmt.Errorf("%w: %d records belong to no indexed document", domain.ErrCorruptIndex, store.Len()-total)
	}
	return nil
}

// Save writes the store and the index state as one blob.
func (s *KnowledgeBaseService) Save(ctx context.Context) error {
	s.mu.RLock()
	vectors, err := s.store.MarshalBinary()
	state := s.state.Clone()
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode vector store: %w", err)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snapshot{Version: snapshotVersion, State: *state, Vectors: vectors}); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.blobs.Write(ctx, s.cfg.SnapshotName, buf.Bytes()); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Refresh re-indexes new and changed documents and drops vanished ones.
// Returns domain.ErrRefreshInProgress if another refresh is running.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (s *KnowledgeBaseService) Refresh(ctx context.Context, force bool) (*domain.RefreshReport, error) {
	if !s.refreshMu.TryLock() {
		return nil, domain.ErrRefreshInProgress
	}
	defer s.refreshMu.Unlock()

	report := &domain.RefreshReport{RunID: uuid.NewString(), StartedAt: time.Now()}
	defer func() { report.Duration = time.Since(report.StartedAt) }()

	logger.Section("Refresh")
	docs, err := s.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.source.Name(), err)
	}
	logger.Debug("Run %s: %d documents listed from %s", report.RunID, len(docs), s.source.Name())

	listed := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return report, s.finishInterrupted(ctx, report, err)
		}
		listed[doc.ID] = struct{}{}

		s.mu.RLock()
		needs := force || s.state.NeedsIndexing(doc)
		s.mu.RUnlock()
		if !needs {
			report.Unchanged++
			continue
		}

		metas, vectors, stage, err := s.indexDocument(ctx, doc)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				report.Interrupted = doc.ID
				return report, s.finishInterrupted(ctx, report, ctxErr)
			}
			logger.Document(doc.ID, stage, err)
			report.Failed = append(report.Failed, domain.DocumentFailure{
				DocumentID: doc.ID,
				Stage:      stage,
				Error:      err.Error(),
			})
			continue
		}

		if err := s.commit(doc, metas, vectors); err != nil {
			logger.Document(doc.ID, StageStore, err)
			report.Failed = append(report.Failed, domain.DocumentFailure{
				DocumentID: doc.ID,
				Stage:      StageStore,
				Error:      err.Error(),
			})
			continue
		}
		logger.Document(doc.ID, "indexed", nil)
		report.Updated = append(report.Updated, doc.ID)
		report.Chunks += len(metas)
	}
	if err := ctx.Err(); err != nil {
		return report, s.finishInterrupted(ctx, report, err)
	}

	s.mu.Lock()
	for _, id := range s.state.IDs() {
		if _, ok := listed[id]; ok {
			continue
		}
		s.store.RemoveDocument(id)
		s.state.Remove(id)
		report.Removed = append(report.Removed, id)
	}
	s.state.LastRefresh = report.StartedAt
	s.mu.Unlock()

	logger.Info("Refresh %s: %d updated, %d failed, %d removed, %d unchanged",
		report.RunID, len(report.Updated), len(report.Failed), len(report.Removed), report.Unchanged)

	if report.Changed() {
		if err := s.Save(ctx); err != nil {
			return report, fmt.Errorf("save: %w", err)
		}
	}
	return report, nil
}

// finishInterrupted persists work committed before cancellation and returns cause.
func (s *KnowledgeBaseService) finishInterrupted(ctx context.Context, report *domain.RefreshReport, cause error) error {
	logger.Warn("Refresh %s interrupted after %d documents: %v", report.RunID, len(report.Updated), cause)
	if !report.Changed() {
		return cause
	}
	if err := s.Save(context.WithoutCancel(ctx)); err != nil {
		return errors.Join(cause, fmt.Errorf("save: %w", err))
	}
	return cause
}

// indexDocument runs fetch, process, chunk and embed without touching the store.
func (s *KnowledgeBaseService) indexDocument(
	ctx context.Context, doc domain.SourceDocument,
) ([]domain.ChunkMetadata, [][]float32, string, error) {
	content, err := s.source.Fetch(ctx, doc.ID)
	if err != nil {
		return nil, nil, StageFetch, err
	}
	if content.Format == "" {
		content.Format = doc.Format
	}

	processed, err := s.processor.Process(ctx, doc.ID, content)
	if err != nil {
		return nil, nil, StageProcess, err
	}

	chunks := s.chunker.Process(processed)
	texts := make([]string, len(chunks))
	metas := make([]domain.ChunkMetadata, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
		metas[i] = domain.ChunkMetadata{Chunk: c, DocumentName: doc.Name}
	}

	vectors, err := s.embedAll(ctx, texts)
	if err != nil {
		return nil, nil, StageEmbed, err
	}
	if err := s.validateVectors(vectors); err != nil {
		return nil, nil, StageStore, err
	}
	return metas, vectors, "", nil
}

// embedAll embeds texts in batches with bounded parallelism, preserving order.
func (s *KnowledgeBaseService) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.EmbedConcurrency)

	for start := 0; start < len(texts); start += s.cfg.BatchSize {
		end := min(start+s.cfg.BatchSize, len(texts))
		g.Go(func() error {
			batch, err := s.embedder.EmbedBatch(gctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("%w: %w", domain.ErrEmbeddingProvider, err)
			}
			if len(batch) != end-start {
				return fmt.Errorf("%w: %d embeddings for %d texts", domain.ErrEmbeddingProvider, len(batch), end-start)
			}
			copy(vectors[start:end], batch)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// validateVectors rejects vectors the store would refuse, so a commit never
// removes old records and then fails to insert new ones.
func (s *KnowledgeBaseService) validateVectors(vectors [][]float32) error {
	dim := s.store.Dimension()
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("chunk %d: %w: got %d, want %d", i, domain.ErrDimensionMismatch, len(v), dim)
		}
		nonZero := false
		for _, x := range v {
			if x != 0 {
				nonZero = true
				break
			}
		}
		if !nonZero {
			return fmt.Errorf("chunk %d: %w: zero vector", i, domain.ErrInvalidInput)
		}
	}
	return nil
}

// commit replaces a document's records and index entry under the write lock.
func (s *KnowledgeBaseService) commit(doc domain.SourceDocument, metas []domain.ChunkMetadata, vectors [][]float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.RemoveDocument(doc.ID)
	if len(vectors) > 0 {
		if _, err := s.store.InsertBatch(vectors, metas); err != nil {
			s.state.Remove(doc.ID)
			return err
		}
	}
	s.state.Put(domain.IndexEntry{
		DocumentID:   doc.ID,
		Name:         doc.Name,
		ChangeMarker: doc.ChangeMarker,
		Type:         domain.ClassifyDocument(doc.Name),
		ChunkCount:   len(metas),
		IndexedAt:    time.Now(),
	})
	return nil
}

// Search embeds query and returns the closest chunks.
func (s *KnowledgeBaseService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	opts = opts.WithDefaults()
	logger.Debug("Search %q top_k=%d threshold=%.2f", query, opts.TopK, opts.ScoreThreshold())

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingProvider, err)
	}

	s.mu.RLock()
	hits, err := s.store.Search(vector, opts.TopK, opts.ScoreThreshold())
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	results := make([]domain.SearchResult, len(hits))
	for i, h := range hits {
		results[i] = domain.NewSearchResult(h)
	}
	return results, nil
}

// MultiSearch runs each query and merges the results, keeping the best score
// per document range.
func (s *KnowledgeBaseService) MultiSearch(
	ctx context.Context, queries []string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	opts = opts.WithDefaults()
	return s.multiSearch(ctx, queries, opts, opts.TopK)
}

func (s *KnowledgeBaseService) multiSearch(
	ctx context.Context, queries []string, opts domain.SearchOptions, limit int,
) ([]domain.SearchResult, error) {
	best := make(map[domain.ResultKey]domain.SearchResult)
	ran := 0
	for _, q := range queries {
		if strings.TrimSpace(q) == "" {
			continue
		}
		ran++
		results, err := s.Search(ctx, q, opts)
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			prev, ok := best[r.Key()]
			if !ok || r.Score > prev.Score || (r.Score == prev.Score && r.RecordID < prev.RecordID) {
				best[r.Key()] = r
			}
		}
	}
	if ran == 0 {
		return nil, fmt.Errorf("%w: no queries", domain.ErrInvalidInput)
	}

	merged := make([]domain.SearchResult, 0, len(best))
	for _, r := range best {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		return merged[i].RecordID < merged[j].RecordID
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

// SectionContext retrieves reference material for one section of a document
// under debt analysis.
func (s *KnowledgeBaseService) SectionContext(
	ctx context.Context, sectionName, content string,
) ([]domain.SearchResult, error) {
	queries := SectionQueries(sectionName, content)
	opts := domain.SearchOptions{TopK: sectionTopK, Threshold: domain.Threshold(sectionThreshold)}
	return s.multiSearch(ctx, queries, opts, sectionLimit)
}

// SectionQueries builds the paraphrased queries used for section context.
func SectionQueries(sectionName, content string) []string {
	sectionName = strings.TrimSpace(sectionName)
	queries := []string{
		"requirements debt " + sectionName,
		"SEMP best practices " + sectionName,
	}
	if excerpt := truncateRunes(strings.TrimSpace(content), sectionQueryRunes); excerpt != "" {
		queries = append(queries, excerpt)
	}
	return queries
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// DocumentContext returns the chunks of the named documents in name and chunk
// order. Names match either the document name or its id.
func (s *KnowledgeBaseService) DocumentContext(_ context.Context, names []string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.state.Sorted()
	if len(names) > 0 {
		wanted := make(map[string]bool, len(names))
		for _, n := range names {
			wanted[n] = false
		}
		var selected []domain.IndexEntry
		for _, e := range entries {
			_, byName := wanted[e.Name]
			_, byID := wanted[e.DocumentID]
			if byName || byID {
				selected = append(selected, e)
				wanted[e.Name] = true
				wanted[e.DocumentID] = true
			}
		}
		for _, n := range names {
			if !wanted[n] {
				return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, n)
			}
		}
		entries = selected
	}

	var chunks []domain.Chunk
	for _, e := range entries {
		for _, m := range s.store.Records(e.DocumentID) {
			chunks = append(chunks, m.Chunk)
		}
	}
	return chunks, nil
}

// Documents lists indexed documents by name.
func (s *KnowledgeBaseService) Documents(_ context.Context) ([]domain.IndexEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Sorted(), nil
}

// Entry returns the index entry of a document.
func (s *KnowledgeBaseService) Entry(id string) (domain.IndexEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Get(id)
}

// Stats summarises the store and the index.
func (s *KnowledgeBaseService) Stats(_ context.Context) (*domain.KnowledgeBaseStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &domain.KnowledgeBaseStats{
		Store:       s.store.Stats(),
		Documents:   s.state.Len(),
		ByType:      make(map[domain.DocumentType]int),
		LastRefresh: s.state.LastRefresh,
	}
	for _, e := range s.state.Entries {
		stats.ByType[e.Type]++
	}
	return stats, nil
}

// Clear removes every record and document, then saves the empty state.
func (s *KnowledgeBaseService) Clear(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	s.mu.Lock()
	s.store.Reset()
	s.state = domain.NewIndexState()
	s.mu.Unlock()

	logger.Info("Knowledge base cleared")
	return s.Save(ctx)
}
