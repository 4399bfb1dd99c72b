package services

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqlens/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/reqlens/internal/adapters/driven/vectorstore/flat"
	"github.com/custodia-labs/reqlens/internal/core/domain"
	"github.com/custodia-labs/reqlens/internal/normalisers"
	"github.com/custodia-labs/reqlens/internal/postprocessors/chunker"
)

const testDim = 64

// mockSource is an in-memory DocumentSource.
type mockSource struct {
	mu       sync.Mutex
	docs     map[string]domain.SourceDocument
	contents map[string]string
	listErr  error
	fetchErr map[string]error
	fetches  map[string]int
}

func newMockSource() *mockSource {
	return &mockSource{
		docs:     make(map[string]domain.SourceDocument),
		contents: make(map[string]string),
		fetchErr: make(map[string]error),
		fetches:  make(map[string]int),
	}
}

// put adds or replaces a document; the marker changes with the content.
func (m *mockSource) put(id, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[id] = domain.SourceDocument{
		ID:           id,
		Name:         id,
		Size:         int64(len(content)),
		ChangeMarker: fmt.Sprintf("%x", fnv32(content)),
		Format:       domain.DetectFormat(id, ""),
	}
	m.contents[id] = content
}

func (m *mockSource) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	delete(m.contents, id)
}

func (m *mockSource) Name() string { return "mock" }

func (m *mockSource) List(_ context.Context) ([]domain.SourceDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	ids := make([]string, 0, len(m.docs))
	for id := range m.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]domain.SourceDocument, len(ids))
	for i, id := range ids {
		out[i] = m.docs[id]
	}
	return out, nil
}

func (m *mockSource) Fetch(_ context.Context, id string) (*domain.SourceContent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches[id]++
	if err := m.fetchErr[id]; err != nil {
		return nil, err
	}
	content, ok := m.contents[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	doc := m.docs[id]
	return &domain.SourceContent{Data: []byte(content), Format: doc.Format, ChangeMarker: doc.ChangeMarker}, nil
}

func (m *mockSource) fetchCount(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetches[id]
}

// mockEmbedder hashes words into a bag-of-words vector, so identical texts
// embed identically and score 1.0 against each other.
type mockEmbedder struct {
	mu      sync.Mutex
	dim     int
	calls   int
	texts   int
	failOn  string
	err     error
	entered chan struct{}
	block   chan struct{}
	// cancelOn cancels the refresh when a text containing it is embedded.
	cancelOn string
	cancel   context.CancelFunc
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{dim: testDim}
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vs, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vs[0], nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.cancelOn != "" {
		for _, t := range texts {
			if strings.Contains(t, m.cancelOn) {
				m.cancel()
				return nil, ctx.Err()
			}
		}
	}
	if m.entered != nil {
		m.entered <- struct{}{}
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.texts += len(texts)
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if m.failOn != "" && strings.Contains(t, m.failOn) {
			return nil, errors.New("provider unavailable")
		}
		out[i] = bagOfWords(t, m.dim)
	}
	return out, nil
}

func (m *mockEmbedder) embeddedTexts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.texts
}

func (m *mockEmbedder) Dimensions() int   { return m.dim }
func (m *mockEmbedder) ModelName() string { return "mock-embed" }
func (m *mockEmbedder) Close() error      { return nil }

func bagOfWords(text string, dim int) []float32 {
	v := make([]float32, dim)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		v[fnv32(w)%uint32(dim)]++
	}
	v[dim-1] += 0.01
	return v
}

func fnv32(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

// kbFixture wires a knowledge base over mocks and real in-process adapters.
type kbFixture struct {
	kb       *KnowledgeBaseService
	source   *mockSource
	embedder *mockEmbedder
	store    *flat.Store
	blobs    *memory.BlobStore
}

func newKBFixture(t *testing.T, opts ...chunker.Option) *kbFixture {
	t.Helper()
	store, err := flat.New(testDim)
	require.NoError(t, err)

	f := &kbFixture{
		source:   newMockSource(),
		embedder: newMockEmbedder(),
		store:    store,
		blobs:    memory.NewBlobStore(),
	}
	f.kb = f.newKB(t, opts...)
	return f
}

// newKB builds another service over the same source, embedder and blobs.
func (f *kbFixture) newKB(t *testing.T, opts ...chunker.Option) *KnowledgeBaseService {
	t.Helper()
	store := f.store
	if f.kb != nil {
		var err error
		store, err = flat.New(testDim)
		require.NoError(t, err)
	}
	return NewKnowledgeBaseService(
		Config{BatchSize: 2, EmbedConcurrency: 2},
		f.source,
		NewDocumentProcessor(normalisers.NewDefaultRegistry()),
		chunker.New(opts...),
		f.embedder,
		store,
		f.blobs,
	)
}
