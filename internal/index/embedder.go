// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kosmos/synesis/pkg/types"
)

// Embedder converts text into a numeric vector representation. The same
// configured embedder must serve both index-time and query-time calls, or
// similarity scores are meaningless.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float64, error)
}

// NewEmbedder returns the embedder selected by cfg.Provider. An empty
// provider defaults to gemini. A missing credential is a configuration
// error surfaced before any network call.
func NewEmbedder(cfg types.EmbeddingConfig, client *http.Client) (Embedder, error) {
	switch cfg.Provider {
	case "gemini", "":
		return NewGeminiEmbedder(cfg, client)
	case "openai":
		return NewOpenAIEmbedder(cfg, client)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q: use gemini or openai", cfg.Provider)
	}
}
