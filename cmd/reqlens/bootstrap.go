package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/reqlens/internal/adapters/driven/ai"
	fileconfig "github.com/custodia-labs/reqlens/internal/adapters/driven/config/file"
	"github.com/custodia-labs/reqlens/internal/adapters/driven/storage/badger"
	filestore "github.com/custodia-labs/reqlens/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/reqlens/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/reqlens/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/reqlens/internal/adapters/driven/vectorstore/flat"
	"github.com/custodia-labs/reqlens/internal/adapters/driving/cli"
	"github.com/custodia-labs/reqlens/internal/config"
	"github.com/custodia-labs/reqlens/internal/connectors"
	"github.com/custodia-labs/reqlens/internal/connectors/filesystem"
	"github.com/custodia-labs/reqlens/internal/connectors/github"
	"github.com/custodia-labs/reqlens/internal/connectors/google/drive"
	"github.com/custodia-labs/reqlens/internal/core/domain"
	"github.com/custodia-labs/reqlens/internal/core/ports/driven"
	"github.com/custodia-labs/reqlens/internal/core/services"
	"github.com/custodia-labs/reqlens/internal/logger"
	"github.com/custodia-labs/reqlens/internal/normalisers"
	"github.com/custodia-labs/reqlens/internal/normalisers/pdf"
	"github.com/custodia-labs/reqlens/internal/postprocessors/chunker"
)

const appDir = ".reqlens"

// bootstrap wires the services from the config directory. On error every
// resource opened so far is released.
func bootstrap(ctx context.Context, configDir string) (_ *cli.Services, err error) {
	if configDir == "" {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return nil, fmt.Errorf("locating home directory: %w", herr)
		}
		configDir = filepath.Join(home, appDir)
	}

	if err := config.LoadEnv(".env", filepath.Join(configDir, ".env")); err != nil {
		return nil, err
	}
	store, err := fileconfig.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	settings, err := config.FromStore(store)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(settings.LogLevel)
	logger.Debug("config loaded from %s", store.Path())

	if !settings.HasSources() {
		return nil, fmt.Errorf("%w: set %s, %s or %s in %s",
			config.ErrNoSources, config.KeyFilesystemPath, config.KeyGitHubRepos, config.KeyGoogleFolderID, store.Path())
	}

	var closers []func() error
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}
	defer func() {
		if err != nil {
			_ = closeAll()
		}
	}()

	blobs, err := openBlobStore(settings.Storage, configDir)
	if err != nil {
		return nil, err
	}
	closers = append(closers, blobs.Close)

	source, watchers, err := openSources(ctx, settings)
	if err != nil {
		return nil, err
	}

	embedder, err := ai.CreateEmbeddingProvider(ctx, settings.EmbeddingSettings())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingProvider, err)
	}
	closers = append(closers, embedder.Close)

	vectors, err := flat.New(settings.VectorDimension)
	if err != nil {
		return nil, err
	}

	if err := pdf.CheckAvailable(); err != nil {
		logger.Info("%v: PDF documents will fail to index\n%s", err, pdf.InstallInstructions())
	}
	processor := services.NewDocumentProcessor(normalisers.NewDefaultRegistry())
	chunks := chunker.New(
		chunker.WithChunkSize(settings.ChunkSize),
		chunker.WithOverlap(settings.ChunkOverlap),
	)

	kb := services.NewKnowledgeBaseService(
		services.Config{EmbedConcurrency: settings.Embedding.Concurrency},
		source, processor, chunks, embedder, vectors, blobs,
	)
	if err := kb.Load(ctx); err != nil {
		if !errors.Is(err, domain.ErrCorruptIndex) {
			return nil, fmt.Errorf("loading knowledge base: %w", err)
		}
		logger.Warn("%v: starting empty, run 'reqlens refresh' to rebuild", err)
	}

	resolver, err := services.NewResolverService(kb, source, processor, settings.ResolverCacheBytes)
	if err != nil {
		return nil, err
	}
	closers = append(closers, func() error { resolver.Close(); return nil })

	return &cli.Services{
		KnowledgeBase: kb,
		Resolver:      resolver,
		SearchOptions: settings.SearchOptions(),
		Watchers:      watchers,
		Close:         closeAll,
	}, nil
}

func openBlobStore(cfg config.StorageConfig, configDir string) (driven.BlobStore, error) {
	path := cfg.Path
	if path == "" {
		path = filepath.Join(configDir, "data")
	}
	logger.Debug("storage backend %s at %s", cfg.Backend, path)

	switch cfg.Backend {
	case config.BackendSQLite:
		return sqlite.NewStore(path)
	case config.BackendBadger:
		return badger.NewBlobStore(path)
	case config.BackendMemory:
		return memory.NewBlobStore(), nil
	default:
		return filestore.NewBlobStore(path)
	}
}

// openSources builds one source per configured backend. Local folders are
// also returned as watchers.
func openSources(ctx context.Context, settings *config.Settings) (driven.DocumentSource, []cli.Watcher, error) {
	var (
		sources  []driven.DocumentSource
		watchers []cli.Watcher
	)

	if path := settings.Sources.FilesystemPath; path != "" {
		fs := filesystem.New(path)
		if err := fs.Validate(); err != nil {
			return nil, nil, err
		}
		sources = append(sources, fs)
		watchers = append(watchers, fs)
	}

	if repos := settings.Sources.GitHubRepos; len(repos) > 0 {
		gh, err := github.New(ctx, github.Config{
			Repos:      repos,
			Branch:     settings.Sources.GitHubBranch,
			PathPrefix: settings.Sources.GitHubPathPrefix,
			Token:      settings.Sources.GitHubToken,
		})
		if err != nil {
			return nil, nil, err
		}
		sources = append(sources, gh)
	}

	if folder := settings.Sources.GoogleFolderID; folder != "" {
		gd, err := drive.New(ctx, drive.Config{
			FolderID:     folder,
			Recursive:    true,
			ContentTypes: drive.ParseContentTypes(settings.Sources.GoogleContentTypes),
			Token:        settings.Sources.GoogleToken,
		})
		if err != nil {
			return nil, nil, err
		}
		sources = append(sources, gd)
	}

	if len(sources) == 1 {
		return sources[0], watchers, nil
	}
	return connectors.NewComposite(sources...), watchers, nil
}
