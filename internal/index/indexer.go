// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"fmt"

	"github.com/kosmos/synesis/pkg/types"
)

// Indexer embeds chunk texts and writes them to the vector store. It
// does not implement similarity math itself; embedding is delegated to
// the injected Embedder.
type Indexer struct {
	store    VectorStore
	embedder Embedder
}

// NewIndexer wires a store and an embedder into an Indexer.
func NewIndexer(store VectorStore, embedder Embedder) *Indexer {
	return &Indexer{store: store, embedder: embedder}
}

// IndexPaper indexes the given chunk texts under paperID and returns the
// number of chunks written.
//
// len(chunks) must equal len(metas); violating that is a caller error
// and fails fast. Empty chunks are a no-op returning (0, nil): nothing
// to index is not a failure. Chunk IDs are "{paper_id}_{i}", so
// re-indexing the same paper overwrites rather than duplicates, and the
// store's atomic replace removes chunks from any previous run with a
// different count. A store or embedding failure leaves the previous
// state observable and reports the whole batch as failed.
func (ix *Indexer) IndexPaper(ctx context.Context, paperID string, chunks []string, metas []map[string]string) (int, error) {
	if paperID == "" {
		return 0, fmt.Errorf("paper ID is empty")
	}
	if len(chunks) != len(metas) {
		return 0, fmt.Errorf("chunks and metadata length mismatch: %d vs %d", len(chunks), len(metas))
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	records := make([]types.Chunk, len(chunks))
	vectors := make([][]float64, len(chunks))
	for i, text := range chunks {
		if text == "" {
			return 0, fmt.Errorf("chunk %d of %s is empty", i, paperID)
		}
		vec, err := ix.embedder.Embed(ctx, text)
		if err != nil {
			return 0, fmt.Errorf("embedding chunk %d of %s: %w", i, paperID, err)
		}
		records[i] = types.Chunk{
			ID:       types.ChunkID(paperID, i),
			PaperID:  paperID,
			Index:    i,
			Text:     text,
			Metadata: metas[i],
		}
		vectors[i] = vec
	}

	if err := ix.store.ReplacePaper(ctx, paperID, records, vectors); err != nil {
		return 0, fmt.Errorf("indexing %s: %w", paperID, err)
	}
	return len(records), nil
}
