// Package embedding holds provider-agnostic helpers shared by the embedding adapters.
package embedding

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/reqlens/internal/core/ports/driven"
)

// Ensure Limited implements the interface.
var _ driven.EmbeddingProvider = (*Limited)(nil)

// Limited wraps a provider so that every outbound request waits on a token
// bucket. A batch counts as one request.
type Limited struct {
	inner   driven.EmbeddingProvider
	limiter *rate.Limiter
}

// NewLimited wraps inner with a limiter allowing rps requests per second.
// A burst below one is raised to one.
func NewLimited(inner driven.EmbeddingProvider, rps float64, burst int) *Limited {
	if burst < 1 {
		burst = 1
	}
	return &Limited{inner: inner, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Embed waits for a token and then delegates.
func (l *Limited) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return l.inner.Embed(ctx, text)
}

// EmbedBatch waits for a token and then delegates.
func (l *Limited) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return l.inner.EmbedBatch(ctx, texts)
}

// Dimensions returns the wrapped provider's vector size.
func (l *Limited) Dimensions() int { return l.inner.Dimensions() }

// ModelName returns the wrapped provider's model name.
func (l *Limited) ModelName() string { return l.inner.ModelName() }

// Close closes the wrapped provider.
func (l *Limited) Close() error { return l.inner.Close() }
