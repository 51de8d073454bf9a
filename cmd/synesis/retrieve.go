// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kosmos/synesis/internal/index"
	"github.com/kosmos/synesis/pkg/types"
)

const defaultRetrieveResults = 5

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Find the indexed chunks most similar to a query",
	Long: `Retrieve embeds the query with the configured embedder and returns
the most similar chunks from the vector store, ranked by descending
similarity. Useful for inspecting what context ask and hypothesize
would be grounded in.`,
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().Int("n-results", defaultRetrieveResults, "number of chunks to return")
	retrieveCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a query, e.g.: synesis retrieve \"attention mechanism\"")
	}
	query := strings.Join(args, " ")
	nResults := intSetting(cmd, "n-results", "index.max_results", defaultRetrieveResults)

	retriever, cleanup, err := newRetriever()
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := retriever.Retrieve(cmd.Context(), query, nResults)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRetrieveOutput(result, jsonOutput)
}

// newRetriever builds the retriever from the shared embedding and store
// configuration. The cleanup closes the store.
func newRetriever() (*index.Retriever, func(), error) {
	client := newHTTPClient()
	embedder, err := index.NewEmbedder(embeddingConfig(), client)
	if err != nil {
		return nil, nil, err
	}
	store, err := index.NewStore(indexConfig(), client)
	if err != nil {
		return nil, nil, err
	}
	return index.NewRetriever(store, embedder), func() { store.Close() }, nil
}

func formatRetrieveOutput(result types.RetrievalResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if len(result.Chunks) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-7s  %-20s  %-40s  %s\n",
		"Rank", "Score", "Paper", "Title", "Text")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for i, sc := range result.Chunks {
		text := clip(strings.Join(strings.Fields(sc.Chunk.Text), " "), 60)
		title := clip(sc.Chunk.Metadata["title"], 40)
		paper := clip(sc.Chunk.PaperID, 20)
		fmt.Fprintf(os.Stdout, "%-4d  %-7.4f  %-20s  %-40s  %s\n",
			i+1, sc.Score, paper, title, text)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(result.Chunks))
	return nil
}

// clip shortens s to max runes, ellipsizing. Slicing runes rather than
// bytes keeps multibyte text intact.
func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
