// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kosmos/synesis/internal/chunk"
	"github.com/kosmos/synesis/internal/collector"
	"github.com/kosmos/synesis/internal/extract"
	"github.com/kosmos/synesis/internal/index"
	"github.com/kosmos/synesis/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index [paper-ids...]",
	Short: "Extract, chunk, and index downloaded papers",
	Long: `Index reads downloaded papers from the papers directory, extracts
their text, splits it into chunks, embeds each chunk, and writes the
result to the vector store. With no arguments every paper in the
directory is indexed; otherwise only the named paper IDs.

Re-indexing a paper replaces its previous chunks. A failure on one
paper is reported and does not abort the batch.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().String("papers-dir", defaultPapersDir, "directory with downloaded papers")
	indexCmd.Flags().String("backend", "", "extraction backend: pdf or pdftotext")
	indexCmd.Flags().String("chunk-mode", "", "chunking policy: window or document")
	indexCmd.Flags().Int("window", 0, "chunk size in words (0 = default)")
	indexCmd.Flags().Int("overlap", 0, "words shared between consecutive chunks (0 = default)")

	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	papersDir := stringSetting(cmd, "papers-dir", "collector.papers_dir", defaultPapersDir)

	papers, err := papersToIndex(papersDir, args)
	if err != nil {
		return err
	}
	if len(papers) == 0 {
		fmt.Println("No papers to index. Run fetch first.")
		return nil
	}

	extractor, err := extract.New(types.ExtractorConfig{
		Backend: types.ExtractorBackend(stringSetting(cmd, "backend", "extractor.backend", "")),
	})
	if err != nil {
		return err
	}

	splitter, err := chunk.NewSplitter(types.ChunkConfig{
		Mode:         types.ChunkMode(stringSetting(cmd, "chunk-mode", "chunking.mode", "")),
		WindowWords:  intSetting(cmd, "window", "chunking.window_words", 0),
		OverlapWords: intSetting(cmd, "overlap", "chunking.overlap_words", 0),
	})
	if err != nil {
		return err
	}

	client := newHTTPClient()
	embedder, err := index.NewEmbedder(embeddingConfig(), client)
	if err != nil {
		return err
	}
	store, err := index.NewStore(indexConfig(), client)
	if err != nil {
		return err
	}
	defer store.Close()

	indexer := index.NewIndexer(store, embedder)

	indexed, failed := 0, 0
	for _, paper := range papers {
		text, err := extractor.ExtractText(paper.PDFPath)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stdout, "failed:  %s (extracting text: %v)\n", paper.ID, err)
			continue
		}

		texts, metas := splitter.Split(paper.ID, paper.Title, text)
		n, err := indexer.IndexPaper(cmd.Context(), paper.ID, texts, metas)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stdout, "failed:  %s (%v)\n", paper.ID, err)
			continue
		}
		indexed++
		fmt.Fprintf(os.Stdout, "indexed: %s (%d chunks)\n", paper.ID, n)
	}

	fmt.Fprintf(os.Stdout, "\nIndex summary: %d indexed, %d failed (total: %d)\n",
		indexed, failed, len(papers))
	if failed > 0 {
		return fmt.Errorf("%d paper(s) failed indexing", failed)
	}
	return nil
}

// papersToIndex loads paper records from the metadata sidecars in
// papersDir. With explicit IDs, a missing sidecar is an error; without,
// every sidecar in the directory is used.
func papersToIndex(papersDir string, ids []string) ([]types.Paper, error) {
	if len(ids) > 0 {
		papers := make([]types.Paper, 0, len(ids))
		for _, id := range ids {
			slug := strings.ReplaceAll(id, "/", "_")
			paper, err := collector.ReadMetadata(filepath.Join(papersDir, slug+".yaml"))
			if err != nil {
				return nil, fmt.Errorf("paper %s not found in %s: %w", id, papersDir, err)
			}
			papers = append(papers, paper)
		}
		return papers, nil
	}

	entries, err := os.ReadDir(papersDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading papers directory: %w", err)
	}

	var papers []types.Paper
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		paper, err := collector.ReadMetadata(filepath.Join(papersDir, e.Name()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: skipping %s: %v\n", e.Name(), err)
			continue
		}
		papers = append(papers, paper)
	}
	return papers, nil
}
