// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// Chunk is a contiguous span of extracted text belonging to one paper.
// Chunks are immutable once written; they are replaced wholesale when a
// paper is re-indexed.
type Chunk struct {
	// ID is derived deterministically from the paper ID and the chunk's
	// position: "{paper_id}_{index}". It uniquely identifies the
	// (paper, position) pair, making re-indexing an overwrite rather
	// than a duplication.
	ID string `json:"id" yaml:"id"`

	// PaperID is the owning paper's arXiv identifier.
	PaperID string `json:"paper_id" yaml:"paper_id"`

	// Index is the chunk's zero-based position within the paper.
	Index int `json:"index" yaml:"index"`

	// Text is the chunk content. Never empty for a persisted chunk.
	Text string `json:"text" yaml:"text"`

	// Metadata maps string keys to scalar values. Always includes at
	// least "paper_id" and "title".
	Metadata map[string]string `json:"metadata" yaml:"metadata"`
}

// ChunkID returns the deterministic chunk identifier for a paper and
// position.
func ChunkID(paperID string, index int) string {
	return fmt.Sprintf("%s_%d", paperID, index)
}

// ScoredChunk pairs a chunk with its similarity score for a query.
// Higher scores mean more similar.
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk" yaml:"chunk"`
	Score float64 `json:"score" yaml:"score"`
}

// RetrievalResult holds the ranked chunks returned for one query.
// It is ephemeral and never persisted.
type RetrievalResult struct {
	// Query is the input string the chunks were ranked against.
	Query string `json:"query" yaml:"query"`

	// Chunks is ordered by descending score. Empty when the index is
	// empty or nothing matched; a store failure is reported as an error
	// instead, never as an empty result.
	Chunks []ScoredChunk `json:"chunks" yaml:"chunks"`
}

// Texts returns the chunk texts in rank order, ready for prompt assembly.
func (r RetrievalResult) Texts() []string {
	texts := make([]string, len(r.Chunks))
	for i, sc := range r.Chunks {
		texts[i] = sc.Chunk.Text
	}
	return texts
}
