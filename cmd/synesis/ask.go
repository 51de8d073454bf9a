// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kosmos/synesis/internal/generate"
)

const defaultAskResults = 3

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question grounded in the indexed papers",
	Long: `Ask retrieves the chunks most relevant to the question and sends
them to the generative model as context. The answer cites the paper
metadata of the excerpts it draws on; when the context does not hold
the answer, the model says so instead of inventing one.`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().Int("n-results", defaultAskResults, "number of context chunks to retrieve")

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a question, e.g.: synesis ask \"what is an attention mechanism?\"")
	}
	question := strings.Join(args, " ")
	nResults, _ := cmd.Flags().GetInt("n-results")

	retriever, cleanup, err := newRetriever()
	if err != nil {
		return err
	}
	defer cleanup()

	generator, err := generate.NewGenerator(cmd.Context(), generationConfig(), newHTTPClient(), os.Stderr)
	if err != nil {
		return err
	}

	result, err := retriever.Retrieve(cmd.Context(), question, nResults)
	if err != nil {
		return err
	}

	answer := generator.GenerateResponse(cmd.Context(), question, result.Texts())
	fmt.Println(answer)

	if len(result.Chunks) > 0 {
		fmt.Println("\nSources:")
		seen := map[string]bool{}
		for _, sc := range result.Chunks {
			key := sc.Chunk.PaperID
			if seen[key] {
				continue
			}
			seen[key] = true
			fmt.Printf("  - %s %q\n", sc.Chunk.PaperID, sc.Chunk.Metadata["title"])
		}
	}
	return nil
}
