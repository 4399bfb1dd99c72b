package github

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/reqlens/internal/core/domain"
	"github.com/custodia-labs/reqlens/internal/core/ports/driven"
	"github.com/custodia-labs/reqlens/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

const (
	// IDPrefix starts every GitHub document id.
	IDPrefix = "github:"

	// DefaultMaxFileSize skips blobs larger than 10MB.
	DefaultMaxFileSize = 10 * 1024 * 1024
)

// Config holds GitHub source settings.
type Config struct {
	// Repos lists repositories as "owner/repo".
	Repos []string

	// Branch is read from every repository. Empty uses each default branch.
	Branch string

	// PathPrefix keeps only files below this directory.
	PathPrefix string

	// Token is the access token. Empty sends unauthenticated requests.
	Token string

	// BaseURL overrides the API endpoint (GitHub Enterprise, tests).
	BaseURL string

	// RequestsPerSecond overrides the proactive throttle when > 0.
	RequestsPerSecond float64

	// MaxFileSize skips larger blobs. Zero uses DefaultMaxFileSize.
	MaxFileSize int64
}

type repoRef struct {
	owner string
	name  string
}

func (r repoRef) String() string {
	return r.owner + "/" + r.name
}

type blobRef struct {
	repo repoRef
	path string
	sha  string
}

// Source lists and fetches documents from GitHub repositories.
type Source struct {
	client  *Client
	repos   []repoRef
	branch  string
	prefix  string
	maxSize int64

	mu    sync.RWMutex
	blobs map[string]blobRef
}

// New creates a GitHub source. Repository references are validated up front.
func New(ctx context.Context, cfg Config) (*Source, error) {
	if len(cfg.Repos) == 0 {
		return nil, fmt.Errorf("%w: no repositories configured", ErrInvalidRepo)
	}
	repos := make([]repoRef, 0, len(cfg.Repos))
	for _, r := range cfg.Repos {
		ref, err := parseRepo(r)
		if err != nil {
			return nil, err
		}
		repos = append(repos, ref)
	}

	var opts []ClientOption
	if cfg.BaseURL != "" {
		opts = append(opts, WithBaseURL(cfg.BaseURL))
	}
	if cfg.RequestsPerSecond > 0 {
		opts = append(opts, WithRateLimiter(NewRateLimiterWithRate(cfg.RequestsPerSecond, int(cfg.RequestsPerSecond))))
	}
	client, err := NewClientWithToken(ctx, cfg.Token, opts...)
	if err != nil {
		return nil, err
	}

	maxSize := cfg.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	return &Source{
		client:  client,
		repos:   repos,
		branch:  cfg.Branch,
		prefix:  strings.Trim(cfg.PathPrefix, "/"),
		maxSize: maxSize,
		blobs:   make(map[string]blobRef),
	}, nil
}

// Name identifies the source.
func (s *Source) Name() string {
	names := make([]string, len(s.repos))
	for i, r := range s.repos {
		names[i] = r.String()
	}
	return IDPrefix + strings.Join(names, ",")
}

// List reads the tree of every repository and returns supported files sorted by id.
func (s *Source) List(ctx context.Context) ([]domain.SourceDocument, error) {
	var docs []domain.SourceDocument
	for _, repo := range s.repos {
		repoDocs, err := s.listRepo(ctx, repo)
		if err != nil {
			return nil, err
		}
		docs = append(docs, repoDocs...)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

func (s *Source) listRepo(ctx context.Context, repo repoRef) ([]domain.SourceDocument, error) {
	branch := s.branch
	if branch == "" {
		var err error
		branch, err = s.client.DefaultBranch(ctx, repo.owner, repo.name)
		if err != nil {
			return nil, err
		}
	}

	tree, err := s.client.GetTree(ctx, repo.owner, repo.name, branch)
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s@%s", ErrRepoNotFound, repo, branch)
		}
		return nil, err
	}
	if tree.GetTruncated() {
		logger.Warn("github: tree for %s@%s was truncated, some files are missing", repo, branch)
	}

	var docs []domain.SourceDocument
	found := make(map[string]blobRef)
	for _, entry := range tree.Entries {
		p := entry.GetPath()
		if entry.GetType() != "blob" || !s.inScope(p) {
			continue
		}
		if int64(entry.GetSize()) > s.maxSize {
			logger.Debug("github: skipping %s/%s (%d bytes)", repo, p, entry.GetSize())
			continue
		}
		id := IDPrefix + repo.String() + "/" + p
		found[id] = blobRef{repo: repo, path: p, sha: entry.GetSHA()}
		docs = append(docs, domain.SourceDocument{
			ID:           id,
			Name:         path.Base(p),
			Size:         int64(entry.GetSize()),
			ChangeMarker: entry.GetSHA(),
			Format:       domain.DetectFormat(p, ""),
		})
	}

	s.mu.Lock()
	for id, ref := range s.blobs {
		if ref.repo == repo {
			delete(s.blobs, id)
		}
	}
	for id, ref := range found {
		s.blobs[id] = ref
	}
	s.mu.Unlock()

	return docs, nil
}

// inScope reports whether a tree path is a supported document below the prefix.
func (s *Source) inScope(p string) bool {
	if s.prefix != "" && !strings.HasPrefix(p, s.prefix+"/") {
		return false
	}
	for _, part := range strings.Split(p, "/") {
		if strings.HasPrefix(part, ".") {
			return false
		}
	}
	return domain.IsSupportedName(p)
}

// Fetch downloads the blob behind a document id. Ids not seen by a previous
// List trigger a fresh listing of their repository.
func (s *Source) Fetch(ctx context.Context, id string) (*domain.SourceContent, error) {
	ref, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := s.client.GetBlobRaw(ctx, ref.repo.owner, ref.repo.name, ref.sha)
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
		}
		return nil, err
	}
	return &domain.SourceContent{Data: data, Format: domain.DetectFormat(ref.path, ""), ChangeMarker: ref.sha}, nil
}

func (s *Source) lookup(ctx context.Context, id string) (blobRef, error) {
	s.mu.RLock()
	ref, ok := s.blobs[id]
	s.mu.RUnlock()
	if ok {
		return ref, nil
	}

	repo, _, err := parseID(id)
	if err != nil || !s.configured(repo) {
		return blobRef{}, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
	}
	if _, err := s.listRepo(ctx, repo); err != nil {
		return blobRef{}, err
	}

	s.mu.RLock()
	ref, ok = s.blobs[id]
	s.mu.RUnlock()
	if !ok {
		return blobRef{}, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
	}
	return ref, nil
}

func (s *Source) configured(repo repoRef) bool {
	for _, r := range s.repos {
		if r == repo {
			return true
		}
	}
	return false
}

// parseID splits "github:owner/repo/path" into its repository and file path.
func parseID(id string) (repoRef, string, error) {
	rest, ok := strings.CutPrefix(id, IDPrefix)
	if !ok {
		return repoRef{}, "", fmt.Errorf("%w: %s", ErrInvalidRepo, id)
	}
	parts := strings.SplitN(rest, "/", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return repoRef{}, "", fmt.Errorf("%w: %s", ErrInvalidRepo, id)
	}
	return repoRef{owner: parts[0], name: parts[1]}, parts[2], nil
}

func parseRepo(s string) (repoRef, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return repoRef{}, fmt.Errorf("%w: %q", ErrInvalidRepo, s)
	}
	return repoRef{owner: owner, name: name}, nil
}
