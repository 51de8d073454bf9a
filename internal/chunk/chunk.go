// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chunk splits extracted paper text into indexable chunks.
// Retrieval quality depends directly on the chunking policy, so it is
// configurable: a sliding word window with overlap (default), or the
// whole document as a single chunk.
package chunk

import (
	"fmt"
	"strings"

	"github.com/kosmos/synesis/pkg/types"
)

const (
	defaultWindowWords  = 300
	defaultOverlapWords = 50
)

// Splitter applies a ChunkConfig to paper text.
type Splitter struct {
	mode    types.ChunkMode
	window  int
	overlap int
}

// NewSplitter validates cfg and returns a Splitter. Zero values fall back
// to defaults; a non-zero overlap must be smaller than the window.
func NewSplitter(cfg types.ChunkConfig) (*Splitter, error) {
	mode := cfg.Mode
	if mode == "" {
		mode = types.ModeWindow
	}
	if mode != types.ModeWindow && mode != types.ModeDocument {
		return nil, fmt.Errorf("unknown chunk mode %q: use window or document", cfg.Mode)
	}

	window := cfg.WindowWords
	if window == 0 {
		window = defaultWindowWords
	}
	if window < 0 {
		return nil, fmt.Errorf("window_words must be positive, got %d", window)
	}

	overlap := cfg.OverlapWords
	if overlap == 0 && cfg.WindowWords == 0 {
		overlap = defaultOverlapWords
	}
	if overlap < 0 || overlap >= window {
		return nil, fmt.Errorf("overlap_words must be >= 0 and < window_words, got %d", overlap)
	}

	return &Splitter{mode: mode, window: window, overlap: overlap}, nil
}

// Split normalizes whitespace and cuts text into chunk texts with their
// metadata, one map per chunk. Every metadata map carries at least
// paper_id and title. Blank text yields zero chunks.
func (s *Splitter) Split(paperID, title, text string) ([]string, []map[string]string) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, nil
	}

	var texts []string
	switch s.mode {
	case types.ModeDocument:
		texts = []string{strings.Join(words, " ")}
	default:
		step := s.window - s.overlap
		for start := 0; start < len(words); start += step {
			end := start + s.window
			if end > len(words) {
				end = len(words)
			}
			texts = append(texts, strings.Join(words[start:end], " "))
			if end == len(words) {
				break
			}
		}
	}

	metas := make([]map[string]string, len(texts))
	for i := range texts {
		metas[i] = map[string]string{
			"paper_id": paperID,
			"title":    title,
		}
	}
	return texts, metas
}
