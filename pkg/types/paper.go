// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the synesis pipeline:
// papers fetched from arXiv, text chunks indexed in the vector store, and
// retrieval results handed to the generator.
package types

import "time"

// Paper holds metadata and the local payload path for one arXiv paper.
// A Paper is created when a search result is received and never mutated
// afterwards; PDFPath is set only once the download has succeeded.
type Paper struct {
	// ID is the arXiv identifier without version suffix (e.g. "2301.07041").
	// Unique within the collector's namespace; the on-disk filename is
	// derived from it, so re-downloading the same paper never duplicates
	// storage.
	ID string `json:"id" yaml:"id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Summary is the paper abstract.
	Summary string `json:"summary" yaml:"summary"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Published is the submission timestamp reported by arXiv.
	Published time.Time `json:"published" yaml:"published"`

	// SourceURL is the URL the PDF was downloaded from.
	SourceURL string `json:"source_url,omitempty" yaml:"source_url,omitempty"`

	// PDFPath is the local filesystem path of the downloaded PDF.
	PDFPath string `json:"pdf_path,omitempty" yaml:"pdf_path,omitempty"`
}
