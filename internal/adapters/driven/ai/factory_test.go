package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqlens/internal/adapters/driven/embedding"
	"github.com/custodia-labs/reqlens/internal/core/domain"
)

func TestCreateEmbeddingProvider(t *testing.T) {
	tests := []struct {
		name        string
		settings    *domain.EmbeddingSettings
		wantModel   string
		wantErr     bool
		errContains string
	}{
		{
			name:        "nil settings",
			settings:    nil,
			wantErr:     true,
			errContains: "not configured",
		},
		{
			name:        "unknown provider",
			settings:    &domain.EmbeddingSettings{Provider: "anthropic"},
			wantErr:     true,
			errContains: "unsupported embedding provider",
		},
		{
			name:        "openai without key",
			settings:    &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI},
			wantErr:     true,
			errContains: "requires an API key",
		},
		{
			name: "ollama",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOllama,
				Model:    "nomic-embed-text",
			},
			wantModel: "nomic-embed-text",
		},
		{
			name: "openai",
			settings: &domain.EmbeddingSettings{
				Provider:   domain.AIProviderOpenAI,
				APIKey:     "sk-test",
				Model:      "text-embedding-3-small",
				Dimensions: 1024,
			},
			wantModel: "text-embedding-3-small",
		},
		{
			name: "gemini",
			settings: &domain.EmbeddingSettings{
				Provider:   domain.AIProviderGemini,
				APIKey:     "g-test",
				Dimensions: 1024,
			},
			wantModel: "gemini-embedding-001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := CreateEmbeddingProvider(context.Background(), tt.settings)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			defer provider.Close()
			assert.Equal(t, tt.wantModel, provider.ModelName())
		})
	}
}

func TestCreateEmbeddingProvider_DimensionsFollowSettings(t *testing.T) {
	provider, err := CreateEmbeddingProvider(context.Background(), &domain.EmbeddingSettings{
		Provider:   domain.AIProviderOllama,
		Model:      "nomic-embed-text",
		Dimensions: 1024,
	})
	require.NoError(t, err)
	assert.Equal(t, 1024, provider.Dimensions())
}

func TestCreateEmbeddingProvider_RateLimited(t *testing.T) {
	provider, err := CreateEmbeddingProvider(context.Background(), &domain.EmbeddingSettings{
		Provider:          domain.AIProviderOllama,
		RequestsPerSecond: 2,
	})
	require.NoError(t, err)

	assert.IsType(t, &embedding.Limited{}, provider)
	assert.Equal(t, 768, provider.Dimensions())
}
