// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"fmt"

	"github.com/kosmos/synesis/pkg/types"
)

// Retriever answers similarity queries against the vector store using
// the same embedder that indexed the chunks.
type Retriever struct {
	store    VectorStore
	embedder Embedder
}

// NewRetriever wires a store and an embedder into a Retriever. The
// embedder must be configured identically to the one used at index time.
func NewRetriever(store VectorStore, embedder Embedder) *Retriever {
	return &Retriever{store: store, embedder: embedder}
}

// Retrieve returns the top nResults chunks most similar to query, ranked
// by descending score. An empty index yields an empty result and no
// error; a store or embedding failure is returned as an error, distinct
// from "no results".
func (r *Retriever) Retrieve(ctx context.Context, query string, nResults int) (types.RetrievalResult, error) {
	if query == "" {
		return types.RetrievalResult{}, fmt.Errorf("query is empty")
	}
	if nResults <= 0 {
		return types.RetrievalResult{}, fmt.Errorf("result count must be positive, got %d", nResults)
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return types.RetrievalResult{}, fmt.Errorf("embedding query: %w", err)
	}

	ranked, err := r.store.Query(ctx, vec, nResults)
	if err != nil {
		return types.RetrievalResult{}, fmt.Errorf("querying store: %w", err)
	}

	return types.RetrievalResult{Query: query, Chunks: ranked}, nil
}
