// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package collector queries the arXiv API and materializes matching papers
// (metadata plus PDF payload) under a local papers directory.
package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"

	"github.com/kosmos/synesis/internal/httputil"
	"github.com/kosmos/synesis/pkg/types"
)

const defaultConcurrency = 3

// BatchResult holds the outcome of a search-and-download run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
	Papers     []types.Paper
}

// Total returns the number of search results processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// SearchAndDownload searches arXiv for papers matching query, ordered by
// submission date descending, and downloads each result's PDF to
// {papers_dir}/{id}.pdf with a YAML metadata sidecar next to it.
//
// Downloads run concurrently up to cfg.Concurrency workers; they are
// independent and idempotent per paper ID, so an existing PDF is kept and
// counted as skipped. A failure downloading one paper is logged to w and
// does not abort the batch. Returned papers keep the search order and
// contain only successfully materialized entries. A search-level failure
// is returned as an error since no partial progress is possible.
func SearchAndDownload(ctx context.Context, client *http.Client, query string, maxResults int, cfg types.CollectorConfig, w io.Writer) (BatchResult, error) {
	if strings.TrimSpace(query) == "" {
		return BatchResult{}, fmt.Errorf("query is empty")
	}
	if maxResults <= 0 {
		return BatchResult{}, fmt.Errorf("max results must be positive, got %d", maxResults)
	}

	results, err := search(ctx, client, query, maxResults, cfg)
	if err != nil {
		return BatchResult{}, err
	}
	if len(results) == 0 {
		fmt.Fprintln(w, "No papers found.")
		return BatchResult{}, nil
	}

	if err := os.MkdirAll(cfg.PapersDir, 0o755); err != nil {
		return BatchResult{}, fmt.Errorf("creating papers directory: %w", err)
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	type outcome struct {
		paper   types.Paper
		skipped bool
		err     error
	}

	outcomes := make([]outcome, len(results))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex // serializes status output

	for i, r := range results {
		wg.Add(1)
		go func(i int, r searchResult) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			paper, skipped, err := materialize(ctx, client, r, cfg)
			outcomes[i] = outcome{paper: paper, skipped: skipped, err: err}

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				fmt.Fprintf(w, "failed:     %s (%v)\n", r.paper.ID, err)
			case skipped:
				fmt.Fprintf(w, "skipped:    %s (already exists)\n", r.paper.ID)
			default:
				fmt.Fprintf(w, "downloaded: %s %q\n", r.paper.ID, truncate(r.paper.Title, 60))
			}
		}(i, r)
	}
	wg.Wait()

	var batch BatchResult
	for _, o := range outcomes {
		if o.err != nil {
			batch.Failed++
			continue
		}
		if o.skipped {
			batch.Skipped++
		} else {
			batch.Downloaded++
		}
		batch.Papers = append(batch.Papers, o.paper)
	}

	fmt.Fprintf(w, "\nBatch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		batch.Downloaded, batch.Skipped, batch.Failed, batch.Total())
	return batch, nil
}

// materialize downloads one search result's PDF and writes its metadata
// sidecar. An existing PDF short-circuits the download.
func materialize(ctx context.Context, client *http.Client, r searchResult, cfg types.CollectorConfig) (types.Paper, bool, error) {
	paper := r.paper
	slug := strings.ReplaceAll(paper.ID, "/", "_")
	pdfPath := filepath.Join(cfg.PapersDir, slug+".pdf")
	metaPath := filepath.Join(cfg.PapersDir, slug+".yaml")
	paper.SourceURL = r.pdfURL
	paper.PDFPath = pdfPath

	if _, err := os.Stat(pdfPath); err == nil {
		// An earlier run may have died between the PDF rename and the
		// sidecar write; restore the sidecar so indexing can find the
		// paper.
		if _, err := os.Stat(metaPath); os.IsNotExist(err) {
			if err := writeMetadata(paper, metaPath); err != nil {
				return types.Paper{}, false, err
			}
		}
		return paper, true, nil
	}

	if err := downloadFile(ctx, client, r.pdfURL, pdfPath, cfg); err != nil {
		return types.Paper{}, false, err
	}

	if err := writeMetadata(paper, metaPath); err != nil {
		return types.Paper{}, false, err
	}
	return paper, false, nil
}

// downloadFile fetches url to destPath using a temporary file, renaming
// on success so a partial download never lands at the final path.
func downloadFile(ctx context.Context, client *http.Client, url, destPath string, cfg types.CollectorConfig) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := httputil.DoWithRetry(client, req, 0)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// writeMetadata writes a Paper record to a YAML sidecar file.
func writeMetadata(paper types.Paper, path string) error {
	data, err := yaml.Marshal(paper)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadMetadata reads a Paper record from a YAML sidecar file.
func ReadMetadata(path string) (types.Paper, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Paper{}, err
	}
	var paper types.Paper
	if err := yaml.Unmarshal(data, &paper); err != nil {
		return types.Paper{}, fmt.Errorf("parsing metadata %s: %w", path, err)
	}
	return paper, nil
}

// truncate shortens s to max runes, ellipsizing. Slicing runes rather
// than bytes keeps multibyte titles intact.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
