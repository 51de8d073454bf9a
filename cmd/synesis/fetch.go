// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kosmos/synesis/internal/collector"
	"github.com/kosmos/synesis/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [query]",
	Short: "Search arXiv and download matching papers",
	Long: `Fetch queries the arXiv API for papers matching the search terms,
ordered by submission date descending, and downloads each result's PDF
to the papers directory with a YAML metadata sidecar. Papers already
on disk are skipped.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Int("max-results", defaultMaxResults, "maximum number of search results")
	fetchCmd.Flags().String("papers-dir", defaultPapersDir, "directory for downloaded papers")
	fetchCmd.Flags().Int("concurrency", 0, "simultaneous downloads (0 = default)")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a search query, e.g.: synesis fetch \"quantum machine learning\"")
	}
	query := strings.Join(args, " ")

	maxResults := intSetting(cmd, "max-results", "collector.max_results", defaultMaxResults)
	concurrency, _ := cmd.Flags().GetInt("concurrency")

	cfg := types.CollectorConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   defaultTimeout,
			UserAgent: defaultUserAgent,
		},
		PapersDir:   stringSetting(cmd, "papers-dir", "collector.papers_dir", defaultPapersDir),
		MaxResults:  maxResults,
		Concurrency: concurrency,
	}

	result, err := collector.SearchAndDownload(cmd.Context(), newHTTPClient(), query, maxResults, cfg, os.Stdout)
	if err != nil {
		return err
	}
	if result.Failed > 0 {
		return fmt.Errorf("%d paper(s) failed to download", result.Failed)
	}
	return nil
}
