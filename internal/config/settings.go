// Package config assembles validated runtime settings from the TOML config
// store and the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/custodia-labs/reqlens/internal/core/domain"
	"github.com/custodia-labs/reqlens/internal/core/ports/driven"
)

// Configuration keys.
const (
	KeyChunkSize          = "chunk.size"
	KeyChunkOverlap       = "chunk.overlap"
	KeyVectorDimension    = "vector.dimension"
	KeySearchTopK         = "search.top_k"
	KeySearchThreshold    = "search.threshold"
	KeyEmbeddingProvider  = "embedding.provider"
	KeyEmbeddingModel     = "embedding.model"
	KeyEmbeddingBaseURL   = "embedding.base_url"
	KeyEmbeddingRPS       = "embedding.requests_per_second"
	KeyEmbeddingWorkers   = "embedding.concurrency"
	KeyStorageBackend     = "storage.backend"
	KeyStoragePath        = "storage.path"
	KeyResolverCacheBytes = "resolver.cache_bytes"
	KeyFilesystemPath     = "sources.filesystem.path"
	KeyGitHubRepos        = "sources.github.repos"
	KeyGitHubBranch       = "sources.github.branch"
	KeyGitHubPathPrefix   = "sources.github.path_prefix"
	KeyGoogleFolderID     = "sources.google.folder_id"
	KeyGoogleContentTypes = "sources.google.content_types"
	KeyLogLevel           = "log.level"
)

// Environment variables. Secrets are only ever read from the environment.
const (
	EnvOpenAIKey   = "OPENAI_API_KEY"
	EnvGeminiKey   = "GEMINI_API_KEY"
	EnvGitHubToken = "GITHUB_TOKEN"
	EnvGoogleToken = "GOOGLE_ACCESS_TOKEN"
	EnvLogLevel    = "LOG_LEVEL"
)

// Defaults.
const (
	DefaultChunkSize          = 1000
	DefaultChunkOverlap       = 200
	DefaultVectorDimension    = 1024
	DefaultTopK               = 5
	DefaultThreshold          = 0.7
	DefaultEmbeddingProvider  = "ollama"
	DefaultEmbeddingWorkers   = 4
	DefaultStorageBackend     = "file"
	DefaultResolverCacheBytes = 64 << 20
	DefaultLogLevel           = "warn"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// ErrNoSources is returned when no document source is configured.
var ErrNoSources = errors.New("no document source configured")

// EmbeddingConfig selects and tunes the embedding provider.
type EmbeddingConfig struct {
	Provider          string `validate:"oneof=openai ollama gemini"`
	Model             string
	BaseURL           string  `validate:"omitempty,url"`
	RequestsPerSecond float64 `validate:"gte=0"`
	Concurrency       int     `validate:"gte=1,lte=64"`
	APIKey            string
}

// StorageConfig selects the blob backend.
type StorageConfig struct {
	Backend string `validate:"oneof=file sqlite badger memory"`
	Path    string
}

// SourcesConfig lists the document sources. Any combination may be set.
type SourcesConfig struct {
	FilesystemPath   string
	GitHubRepos      []string `validate:"dive,required,contains=/"`
	GitHubBranch     string
	GitHubPathPrefix string
	GitHubToken      string
	GoogleFolderID   string
	// GoogleContentTypes is a comma-separated list such as "docs,files".
	GoogleContentTypes string
	GoogleToken        string
}

// Settings is the full runtime configuration.
type Settings struct {
	ChunkSize          int     `validate:"gt=0"`
	ChunkOverlap       int     `validate:"gte=0,ltfield=ChunkSize"`
	VectorDimension    int     `validate:"gt=0"`
	TopK               int     `validate:"gt=0"`
	Threshold          float64 `validate:"gte=-1,lte=1"`
	Embedding          EmbeddingConfig
	Storage            StorageConfig
	ResolverCacheBytes int64 `validate:"gt=0"`
	Sources            SourcesConfig
	LogLevel           string `validate:"oneof=debug info warn error"`
}

// LoadEnv loads .env files into the process environment. Variables already
// set win. Missing files are ignored; with no paths ".env" is tried.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// FromStore builds Settings from the config store, filling defaults for
// missing keys and secrets from the environment, then validates the result.
func FromStore(store driven.ConfigStore) (*Settings, error) {
	s := &Settings{
		ChunkSize:       intOr(store, KeyChunkSize, DefaultChunkSize),
		ChunkOverlap:    intOr(store, KeyChunkOverlap, DefaultChunkOverlap),
		VectorDimension: intOr(store, KeyVectorDimension, DefaultVectorDimension),
		TopK:            intOr(store, KeySearchTopK, DefaultTopK),
		Threshold:       floatOr(store, KeySearchThreshold, DefaultThreshold),
		Embedding: EmbeddingConfig{
			Provider:          strings.ToLower(stringOr(store, KeyEmbeddingProvider, DefaultEmbeddingProvider)),
			Model:             store.GetString(KeyEmbeddingModel),
			BaseURL:           store.GetString(KeyEmbeddingBaseURL),
			RequestsPerSecond: floatOr(store, KeyEmbeddingRPS, 0),
			Concurrency:       intOr(store, KeyEmbeddingWorkers, DefaultEmbeddingWorkers),
		},
		Storage: StorageConfig{
			Backend: strings.ToLower(stringOr(store, KeyStorageBackend, DefaultStorageBackend)),
			Path:    expandHome(store.GetString(KeyStoragePath)),
		},
		ResolverCacheBytes: int64(intOr(store, KeyResolverCacheBytes, DefaultResolverCacheBytes)),
		Sources: SourcesConfig{
			FilesystemPath:     expandHome(store.GetString(KeyFilesystemPath)),
			GitHubRepos:        store.GetStringSlice(KeyGitHubRepos),
			GitHubBranch:       store.GetString(KeyGitHubBranch),
			GitHubPathPrefix:   store.GetString(KeyGitHubPathPrefix),
			GitHubToken:        os.Getenv(EnvGitHubToken),
			GoogleFolderID:     store.GetString(KeyGoogleFolderID),
			GoogleContentTypes: store.GetString(KeyGoogleContentTypes),
			GoogleToken:        os.Getenv(EnvGoogleToken),
		},
		LogLevel: strings.ToLower(stringOr(store, KeyLogLevel, DefaultLogLevel)),
	}

	if level := os.Getenv(EnvLogLevel); level != "" {
		s.LogLevel = strings.ToLower(level)
	}

	switch domain.AIProvider(s.Embedding.Provider) {
	case domain.AIProviderOpenAI:
		s.Embedding.APIKey = os.Getenv(EnvOpenAIKey)
	case domain.AIProviderGemini:
		s.Embedding.APIKey = os.Getenv(EnvGeminiKey)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks field constraints using go-playground/validator.
func (s *Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: invalid settings: %s", domain.ErrInvalidInput, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: invalid settings: %w", domain.ErrInvalidInput, err)
	}
	return nil
}

// HasSources reports whether at least one document source is configured.
func (s *Settings) HasSources() bool {
	return s.Sources.FilesystemPath != "" || len(s.Sources.GitHubRepos) > 0 || s.Sources.GoogleFolderID != ""
}

// EmbeddingSettings converts the embedding section into provider settings.
func (s *Settings) EmbeddingSettings() *domain.EmbeddingSettings {
	return &domain.EmbeddingSettings{
		Provider:          domain.AIProvider(s.Embedding.Provider),
		Model:             s.Embedding.Model,
		BaseURL:           s.Embedding.BaseURL,
		APIKey:            s.Embedding.APIKey,
		Dimensions:        s.VectorDimension,
		RequestsPerSecond: s.Embedding.RequestsPerSecond,
	}
}

// SearchOptions returns the configured search defaults.
func (s *Settings) SearchOptions() domain.SearchOptions {
	return domain.SearchOptions{TopK: s.TopK, Threshold: domain.Threshold(s.Threshold)}
}

func intOr(store driven.ConfigStore, key string, def int) int {
	if _, ok := store.Get(key); !ok {
		return def
	}
	return store.GetInt(key)
}

func floatOr(store driven.ConfigStore, key string, def float64) float64 {
	if _, ok := store.Get(key); !ok {
		return def
	}
	return store.GetFloat(key)
}

func stringOr(store driven.ConfigStore, key, def string) string {
	if v := store.GetString(key); v != "" {
		return v
	}
	return def
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
