// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collector

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/kosmos/synesis/pkg/types"
)

const feedTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
%s
</feed>`

func feedEntry(base, id, title string) string {
	return fmt.Sprintf(`<entry>
  <id>http://arxiv.org/abs/%sv1</id>
  <title>%s</title>
  <summary>Summary of %s.</summary>
  <published>2023-01-17T12:00:00Z</published>
  <author><name>Ada Lovelace</name></author>
  <author><name>Alan Turing</name></author>
  <link title="pdf" href="%s/pdf/%s"/>
</entry>`, id, title, id, base, id)
}

// newArxivServer serves an Atom feed for /query and PDF bytes for
// /pdf/{id}. IDs listed in broken get a 404 on download.
func newArxivServer(t *testing.T, ids []string, broken map[string]bool) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/query", func(w http.ResponseWriter, r *http.Request) {
		var entries []string
		for _, id := range ids {
			entries = append(entries, feedEntry(srv.URL, id, "Paper "+id))
		}
		fmt.Fprintf(w, feedTemplate, strings.Join(entries, "\n"))
	})
	mux.HandleFunc("/pdf/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/pdf/")
		if broken[id] {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, "%%PDF-1.4 fake body for %s", id)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	origAPI, origPDF := arxivAPIBase, arxivPDFBase
	arxivAPIBase = srv.URL + "/query"
	arxivPDFBase = srv.URL + "/pdf"
	t.Cleanup(func() {
		arxivAPIBase = origAPI
		arxivPDFBase = origPDF
	})
	return srv
}

func testCfg(dir string) types.CollectorConfig {
	return types.CollectorConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "synesis-test/0.1",
		},
		PapersDir:   dir,
		Concurrency: 2,
	}
}

func TestSearchAndDownload(t *testing.T) {
	newArxivServer(t, []string{"2301.00001", "2301.00002"}, nil)
	dir := t.TempDir()

	var out bytes.Buffer
	batch, err := SearchAndDownload(context.Background(), http.DefaultClient, "large language models", 10, testCfg(dir), &out)
	if err != nil {
		t.Fatalf("SearchAndDownload() error = %v", err)
	}

	if batch.Downloaded != 2 || batch.Failed != 0 {
		t.Fatalf("batch = %+v, want 2 downloaded, 0 failed", batch)
	}
	if len(batch.Papers) != 2 {
		t.Fatalf("len(Papers) = %d, want 2", len(batch.Papers))
	}

	// Search order preserved.
	if batch.Papers[0].ID != "2301.00001" || batch.Papers[1].ID != "2301.00002" {
		t.Errorf("paper order = %s, %s", batch.Papers[0].ID, batch.Papers[1].ID)
	}

	for _, p := range batch.Papers {
		if p.Title == "" || len(p.Authors) != 2 || p.Published.IsZero() {
			t.Errorf("paper %s metadata incomplete: %+v", p.ID, p)
		}
		wantPath := filepath.Join(dir, p.ID+".pdf")
		if p.PDFPath != wantPath {
			t.Errorf("PDFPath = %q, want %q", p.PDFPath, wantPath)
		}
		if _, err := os.Stat(wantPath); err != nil {
			t.Errorf("PDF not on disk: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, p.ID+".yaml")); err != nil {
			t.Errorf("metadata sidecar missing: %v", err)
		}
	}
}

func TestSearchAndDownloadOneFailureDoesNotAbortBatch(t *testing.T) {
	newArxivServer(t, []string{"2301.00001", "2301.00002", "2301.00003"},
		map[string]bool{"2301.00002": true})
	dir := t.TempDir()

	var out bytes.Buffer
	batch, err := SearchAndDownload(context.Background(), http.DefaultClient, "q", 10, testCfg(dir), &out)
	if err != nil {
		t.Fatalf("SearchAndDownload() error = %v", err)
	}

	if batch.Downloaded != 2 || batch.Failed != 1 {
		t.Fatalf("batch = %+v, want 2 downloaded, 1 failed", batch)
	}
	if len(batch.Papers) != 2 {
		t.Fatalf("len(Papers) = %d, want 2", len(batch.Papers))
	}
	for _, p := range batch.Papers {
		if p.ID == "2301.00002" {
			t.Error("failed paper present in results")
		}
	}
	if !strings.Contains(out.String(), "failed") {
		t.Error("failure not reported in output")
	}
}

func TestSearchAndDownloadIdempotent(t *testing.T) {
	newArxivServer(t, []string{"2301.00001"}, nil)
	dir := t.TempDir()
	cfg := testCfg(dir)

	var out bytes.Buffer
	if _, err := SearchAndDownload(context.Background(), http.DefaultClient, "q", 5, cfg, &out); err != nil {
		t.Fatal(err)
	}

	pdfPath := filepath.Join(dir, "2301.00001.pdf")
	before, err := os.Stat(pdfPath)
	if err != nil {
		t.Fatal(err)
	}

	batch, err := SearchAndDownload(context.Background(), http.DefaultClient, "q", 5, cfg, &out)
	if err != nil {
		t.Fatal(err)
	}
	if batch.Skipped != 1 || batch.Downloaded != 0 {
		t.Fatalf("batch = %+v, want 1 skipped", batch)
	}
	// Paper still returned on skip.
	if len(batch.Papers) != 1 {
		t.Fatalf("len(Papers) = %d, want 1", len(batch.Papers))
	}

	after, err := os.Stat(pdfPath)
	if err != nil {
		t.Fatal(err)
	}
	if !before.ModTime().Equal(after.ModTime()) {
		t.Error("existing PDF was rewritten")
	}

	entries, _ := os.ReadDir(dir)
	var pdfs int
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".pdf" {
			pdfs++
		}
	}
	if pdfs != 1 {
		t.Errorf("pdf count = %d, want 1 (no duplicate on-disk storage)", pdfs)
	}
}

func TestSearchAndDownloadRestoresMissingSidecar(t *testing.T) {
	newArxivServer(t, []string{"2301.00001"}, nil)
	dir := t.TempDir()
	cfg := testCfg(dir)

	var out bytes.Buffer
	if _, err := SearchAndDownload(context.Background(), http.DefaultClient, "q", 5, cfg, &out); err != nil {
		t.Fatal(err)
	}

	// Simulate a run that died between the PDF rename and the sidecar
	// write.
	metaPath := filepath.Join(dir, "2301.00001.yaml")
	if err := os.Remove(metaPath); err != nil {
		t.Fatal(err)
	}

	batch, err := SearchAndDownload(context.Background(), http.DefaultClient, "q", 5, cfg, &out)
	if err != nil {
		t.Fatal(err)
	}
	if batch.Skipped != 1 {
		t.Fatalf("batch = %+v, want 1 skipped", batch)
	}

	paper, err := ReadMetadata(metaPath)
	if err != nil {
		t.Fatalf("sidecar not restored on skip: %v", err)
	}
	if paper.ID != "2301.00001" || paper.PDFPath != filepath.Join(dir, "2301.00001.pdf") {
		t.Errorf("restored sidecar = %+v", paper)
	}
}

func TestSearchAndDownloadRejectsBadArguments(t *testing.T) {
	if _, err := SearchAndDownload(context.Background(), http.DefaultClient, "  ", 5, testCfg(t.TempDir()), os.Stderr); err == nil {
		t.Error("empty query accepted")
	}
	if _, err := SearchAndDownload(context.Background(), http.DefaultClient, "q", 0, testCfg(t.TempDir()), os.Stderr); err == nil {
		t.Error("zero max results accepted")
	}
}

func TestTruncateMultibyte(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten chars!", 18, "exactly ten chars!"},
		{"a very long ascii title here", 10, "a very ..."},
		{"Überraschungsmaße in der Ökonomie", 10, "Überras..."},
		{"量子もつれとテンソルネットワーク", 10, "量子もつれとテ..."},
	}
	for _, tt := range tests {
		got := truncate(tt.in, tt.max)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("truncate(%q, %d) produced invalid UTF-8: %q", tt.in, tt.max, got)
		}
	}
}

func TestExtractArxivID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://arxiv.org/abs/2301.07041v1", "2301.07041"},
		{"http://arxiv.org/abs/2301.07041", "2301.07041"},
		{"http://arxiv.org/abs/2301.07041v12", "2301.07041"},
		{"http://example.com/nothing", ""},
	}
	for _, tt := range tests {
		if got := extractArxivID(tt.in); got != tt.want {
			t.Errorf("extractArxivID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
