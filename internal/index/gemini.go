// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/kosmos/synesis/internal/httputil"
	"github.com/kosmos/synesis/pkg/types"
)

// geminiEmbedAPIBase is the Gemini API root. Declared as a var so tests
// can substitute an httptest server.
var geminiEmbedAPIBase = "https://generativelanguage.googleapis.com/v1beta"

const defaultGeminiEmbedModel = "text-embedding-004"

// GeminiEmbedder calls the Gemini embedContent API.
type GeminiEmbedder struct {
	apiKey string
	model  string
	client *http.Client
}

// NewGeminiEmbedder validates the credential and returns the embedder.
func NewGeminiEmbedder(cfg types.EmbeddingConfig, client *http.Client) (*GeminiEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini embedding API key missing: set GEMINI_API_KEY or .secrets/gemini-api-key")
	}
	model := cfg.Model
	if model == "" {
		model = defaultGeminiEmbedModel
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &GeminiEmbedder{apiKey: cfg.APIKey, model: model, client: client}, nil
}

// Name returns the embedder identifier.
func (e *GeminiEmbedder) Name() string { return "gemini" }

type geminiEmbedRequest struct {
	Model   string        `json:"model"`
	Content geminiContent `json:"content"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiEmbedResponse struct {
	Embedding struct {
		Values []float64 `json:"values"`
	} `json:"embedding"`
}

// Embed returns the embedding vector for text.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	reqBody := geminiEmbedRequest{
		Model:   "models/" + e.model,
		Content: geminiContent{Parts: []geminiPart{{Text: text}}},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling embed request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:embedContent?key=%s", geminiEmbedAPIBase, e.model, e.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httputil.DoWithRetry(e.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("gemini embed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gemini embed API returned %d: %s", resp.StatusCode, string(msg))
	}

	var out geminiEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding embed response: %w", err)
	}
	if len(out.Embedding.Values) == 0 {
		return nil, fmt.Errorf("gemini embed API returned no values")
	}
	return out.Embedding.Values, nil
}
