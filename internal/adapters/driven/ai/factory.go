// Package ai provides factory functions for creating embedding provider adapters.
package ai

import (
	"context"
	"fmt"

	"github.com/custodia-labs/reqlens/internal/adapters/driven/embedding"
	geminiembed "github.com/custodia-labs/reqlens/internal/adapters/driven/embedding/gemini"
	ollamaembed "github.com/custodia-labs/reqlens/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/reqlens/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/reqlens/internal/core/domain"
	"github.com/custodia-labs/reqlens/internal/core/ports/driven"
)

// CreateEmbeddingProvider creates the embedding provider named by settings.
// When RequestsPerSecond is positive the provider is wrapped in a limiter.
func CreateEmbeddingProvider(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingProvider, error) {
	if settings == nil {
		return nil, fmt.Errorf("embedding provider is not configured")
	}
	if !settings.Provider.IsValid() {
		return nil, fmt.Errorf("unsupported embedding provider: %q", settings.Provider)
	}
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("embedding provider %s requires an API key", settings.Provider)
	}

	var (
		provider driven.EmbeddingProvider
		err      error
	)
	switch settings.Provider {
	case domain.AIProviderOllama:
		provider = createOllamaEmbedding(settings)
	case domain.AIProviderOpenAI:
		provider, err = createOpenAIEmbedding(settings)
	case domain.AIProviderGemini:
		provider, err = createGeminiEmbedding(ctx, settings)
	}
	if err != nil {
		return nil, err
	}

	if settings.RequestsPerSecond > 0 {
		burst := int(settings.RequestsPerSecond)
		return embedding.NewLimited(provider, settings.RequestsPerSecond, burst), nil
	}
	return provider, nil
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingProvider {
	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: settings.Dimensions,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingProvider, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: settings.Dimensions,
	})
}

// createGeminiEmbedding creates a Gemini embedding service.
func createGeminiEmbedding(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingProvider, error) {
	return geminiembed.NewEmbeddingService(ctx, geminiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: settings.Dimensions,
	})
}
