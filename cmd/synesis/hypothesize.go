// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kosmos/synesis/internal/generate"
)

// defaultHypothesizeResults is deliberately broad: hypothesis generation
// wants wide context across the corpus, not just the closest matches.
const defaultHypothesizeResults = 100

var hypothesizeCmd = &cobra.Command{
	Use:   "hypothesize [topic]",
	Short: "Generate a research hypothesis about a topic",
	Long: `Hypothesize retrieves a broad slice of the indexed corpus related
to the topic and asks the generative model for a novel research
hypothesis connecting or extending the ideas found there. The result
is printed and saved as a note under the notes directory.`,
	RunE: runHypothesize,
}

func init() {
	hypothesizeCmd.Flags().Int("n-results", defaultHypothesizeResults, "number of context chunks to retrieve")
	hypothesizeCmd.Flags().Bool("no-save", false, "print the hypothesis without saving a note")

	rootCmd.AddCommand(hypothesizeCmd)
}

func runHypothesize(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a topic, e.g.: synesis hypothesize \"efficient transformers\"")
	}
	topic := strings.Join(args, " ")
	nResults, _ := cmd.Flags().GetInt("n-results")

	retriever, cleanup, err := newRetriever()
	if err != nil {
		return err
	}
	defer cleanup()

	genCfg := generationConfig()
	generator, err := generate.NewGenerator(cmd.Context(), genCfg, newHTTPClient(), os.Stderr)
	if err != nil {
		return err
	}

	result, err := retriever.Retrieve(cmd.Context(), topic, nResults)
	if err != nil {
		return err
	}

	hypothesis := generator.GenerateHypothesis(cmd.Context(), topic, result.Texts())
	fmt.Println(hypothesis)

	if noSave, _ := cmd.Flags().GetBool("no-save"); noSave {
		return nil
	}
	path, err := saveNote(genCfg.NotesDir, topic, hypothesis)
	if err != nil {
		return fmt.Errorf("saving note: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Saved to %s\n", path)
	return nil
}

// saveNote writes the hypothesis as a timestamped markdown note and
// returns its path.
func saveNote(notesDir, topic, hypothesis string) (string, error) {
	if err := os.MkdirAll(notesDir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("hypothesis-%s-%s.md",
		time.Now().Format("20060102-150405"), topicSlug(topic))
	path := filepath.Join(notesDir, name)

	var b strings.Builder
	fmt.Fprintf(&b, "# Hypothesis: %s\n\n", topic)
	fmt.Fprintf(&b, "Generated: %s\n\n", time.Now().Format(time.RFC3339))
	b.WriteString(hypothesis)
	b.WriteString("\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// topicSlug reduces a topic to a short filename-safe slug.
func topicSlug(topic string) string {
	words := strings.Fields(strings.ToLower(topic))
	if len(words) > 5 {
		words = words[:5]
	}
	slug := strings.Join(words, "-")
	var b strings.Builder
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}
