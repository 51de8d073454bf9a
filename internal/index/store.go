// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index persists embedded chunks in a vector store and retrieves
// the most similar chunks for a query.
package index

import (
	"context"
	"fmt"
	"math"
	"net/http"

	"github.com/kosmos/synesis/pkg/types"
)

// VectorStore persists embedded chunks and supports similarity search.
// The store exclusively owns persisted chunk records; retrieval only
// reads.
type VectorStore interface {
	// ReplacePaper atomically replaces all chunks of one paper: every
	// previously stored chunk for paperID is removed and the given
	// chunks written in a single observable step. Re-indexing with a
	// different chunk count therefore leaves no orphans.
	ReplacePaper(ctx context.Context, paperID string, chunks []types.Chunk, vectors [][]float64) error

	// Query returns up to n chunks ranked by descending cosine
	// similarity to the vector. An empty store yields an empty slice,
	// not an error.
	Query(ctx context.Context, vector []float64, n int) ([]types.ScoredChunk, error)

	// Close releases the store's resources.
	Close() error
}

// NewStore returns the vector store selected by cfg.Store. An empty
// selection defaults to the persistent sqlite store.
func NewStore(cfg types.IndexConfig, client *http.Client) (VectorStore, error) {
	switch cfg.Store {
	case "sqlite", "":
		return NewSQLiteStore(cfg)
	case "qdrant":
		return NewQdrantStore(cfg, client)
	default:
		return nil, fmt.Errorf("unknown vector store %q: use sqlite or qdrant", cfg.Store)
	}
}

// cosine returns the cosine similarity of two vectors. Mismatched or
// zero-magnitude vectors score 0.
func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
