// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/kosmos/synesis/pkg/types"
)

// QdrantStore is a minimal REST client to a Qdrant collection using
// cosine distance. The collection is created on first write.
type QdrantStore struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client

	initialized bool
}

// NewQdrantStore validates the configuration and returns the store.
func NewQdrantStore(cfg types.IndexConfig, client *http.Client) (*QdrantStore, error) {
	if cfg.QdrantURL == "" {
		return nil, fmt.Errorf("qdrant store selected but qdrant_url is not set")
	}
	collection := cfg.Collection
	if collection == "" {
		collection = defaultCollection
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &QdrantStore{
		url:        cfg.QdrantURL,
		apiKey:     cfg.QdrantAPIKey,
		collection: collection,
		client:     client,
	}, nil
}

// Close is a no-op; the store holds no persistent connection.
func (s *QdrantStore) Close() error { return nil }

// ensureCollection creates the collection with the given vector size if
// it does not exist yet. Qdrant treats re-creation with an identical
// schema as a success.
func (s *QdrantStore) ensureCollection(ctx context.Context, dimension int) error {
	if s.initialized {
		return nil
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	if err := s.doJSON(ctx, http.MethodPut,
		fmt.Sprintf("%s/collections/%s", s.url, s.collection), body, nil); err != nil {
		return fmt.Errorf("creating collection %s: %w", s.collection, err)
	}
	s.initialized = true
	return nil
}

// pointID derives a deterministic UUID-shaped point identifier from a
// chunk ID, since Qdrant accepts only integers and UUIDs as point IDs.
func pointID(chunkID string) string {
	sum := md5.Sum([]byte(chunkID))
	return fmt.Sprintf("%x-%x-%x-%x-%x", sum[0:4], sum[4:6], sum[6:8], sum[8:10], sum[10:16])
}

// ReplacePaper deletes the paper's points by payload filter and upserts
// the new ones. Point IDs are deterministic per chunk ID, so re-indexing
// with the same chunk count overwrites in place.
func (s *QdrantStore) ReplacePaper(ctx context.Context, paperID string, chunks []types.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d vs %d", len(chunks), len(vectors))
	}
	if len(chunks) > 0 {
		if err := s.ensureCollection(ctx, len(vectors[0])); err != nil {
			return err
		}
	}

	del := map[string]any{
		"filter": map[string]any{
			"must": []map[string]any{
				{"key": "paper_id", "match": map[string]any{"value": paperID}},
			},
		},
	}
	if err := s.doJSON(ctx, http.MethodPost,
		fmt.Sprintf("%s/collections/%s/points/delete?wait=true", s.url, s.collection), del, nil); err != nil {
		return fmt.Errorf("deleting old points for %s: %w", paperID, err)
	}

	if len(chunks) == 0 {
		return nil
	}

	points := make([]map[string]any, len(chunks))
	for i, c := range chunks {
		payload := map[string]any{
			"chunk_id": c.ID,
			"paper_id": c.PaperID,
			"index":    c.Index,
			"text":     c.Text,
		}
		for k, v := range c.Metadata {
			payload["meta_"+k] = v
		}
		points[i] = map[string]any{
			"id":      pointID(c.ID),
			"vector":  vectors[i],
			"payload": payload,
		}
	}
	body := map[string]any{"points": points}
	if err := s.doJSON(ctx, http.MethodPut,
		fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.collection), body, nil); err != nil {
		return fmt.Errorf("upserting points for %s: %w", paperID, err)
	}
	return nil
}

// Query runs a similarity search and rebuilds chunks from point payloads.
// A collection that does not exist yet means nothing has been indexed, so
// it yields an empty result rather than an error.
func (s *QdrantStore) Query(ctx context.Context, vector []float64, n int) ([]types.ScoredChunk, error) {
	if n <= 0 {
		return nil, fmt.Errorf("result count must be positive, got %d", n)
	}

	req := map[string]any{
		"vector":       vector,
		"limit":        n,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	err := s.doJSON(ctx, http.MethodPost,
		fmt.Sprintf("%s/collections/%s/points/search", s.url, s.collection), req, &resp)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("searching collection %s: %w", s.collection, err)
	}

	results := make([]types.ScoredChunk, 0, len(resp.Result))
	for _, r := range resp.Result {
		c := types.Chunk{Metadata: map[string]string{}}
		if v, ok := r.Payload["chunk_id"].(string); ok {
			c.ID = v
		}
		if v, ok := r.Payload["paper_id"].(string); ok {
			c.PaperID = v
		}
		if v, ok := r.Payload["index"].(float64); ok {
			c.Index = int(v)
		}
		if v, ok := r.Payload["text"].(string); ok {
			c.Text = v
		}
		for k, v := range r.Payload {
			if sv, ok := v.(string); ok && len(k) > 5 && k[:5] == "meta_" {
				c.Metadata[k[5:]] = sv
			}
		}
		results = append(results, types.ScoredChunk{Chunk: c, Score: r.Score})
	}
	return results, nil
}

// statusError is a non-2xx Qdrant response, carrying the status code so
// callers can distinguish "not found" from real failures.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("qdrant returned %d: %s", e.code, e.body)
}

// doJSON issues a JSON request and decodes the response into out when
// out is non-nil. Non-2xx responses become statusErrors carrying the body.
func (s *QdrantStore) doJSON(ctx context.Context, method, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(resp.Body)
		return &statusError{code: resp.StatusCode, body: string(msg)}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
