// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kosmos/synesis/internal/httputil"
)

// geminiAPIBase is the Gemini API root. Declared as a var so tests can
// substitute an httptest server.
var geminiAPIBase = "https://generativelanguage.googleapis.com/v1beta"

// geminiClient is a thin REST client for the Gemini model listing and
// content generation endpoints.
type geminiClient struct {
	apiKey     string
	maxRetries int
	client     *http.Client
}

// modelInfo describes one entry from the model listing endpoint.
type modelInfo struct {
	Name                       string   `json:"name"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
}

// Supports reports whether the model advertises the given generation
// method.
func (m modelInfo) Supports(method string) bool {
	for _, s := range m.SupportedGenerationMethods {
		if s == method {
			return true
		}
	}
	return false
}

// ListModels returns every model the API key can see, following
// nextPageToken pagination.
func (g *geminiClient) ListModels(ctx context.Context) ([]modelInfo, error) {
	var models []modelInfo
	pageToken := ""
	for {
		url := fmt.Sprintf("%s/models?key=%s", geminiAPIBase, g.apiKey)
		if pageToken != "" {
			url += "&pageToken=" + pageToken
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		resp, err := httputil.DoWithRetry(g.client, req, g.maxRetries)
		if err != nil {
			return nil, fmt.Errorf("listing models: %w", err)
		}

		var page struct {
			Models        []modelInfo `json:"models"`
			NextPageToken string      `json:"nextPageToken"`
		}
		if err := decodeResponse(resp, &page); err != nil {
			return nil, fmt.Errorf("listing models: %w", err)
		}
		models = append(models, page.Models...)
		if page.NextPageToken == "" {
			return models, nil
		}
		pageToken = page.NextPageToken
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// GenerateContent sends the prompt to the model and returns the text of
// the first candidate. The model name may carry the "models/" prefix or
// not; the API path always gets the bare name.
func (g *geminiClient) GenerateContent(ctx context.Context, model, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		geminiAPIBase, strings.TrimPrefix(model, "models/"), g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httputil.DoWithRetry(g.client, req, g.maxRetries)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	var out generateResponse
	if err := decodeResponse(resp, &out); err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("model returned no candidates")
	}

	var b strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String(), nil
}

// decodeResponse consumes resp, turning non-200 statuses into errors
// carrying the body and decoding JSON otherwise.
func decodeResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("gemini API returned %d: %s", resp.StatusCode, string(msg))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
