// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract converts downloaded PDFs to plain text with pluggable
// backends. Extraction concatenates page text in document order and does
// no cleanup; whitespace normalization is the chunker's responsibility.
package extract

import (
	"fmt"

	"github.com/kosmos/synesis/pkg/types"
)

// Extractor converts a stored PDF into plain text. Different backends
// (in-process parser, pdftotext binary) implement this interface.
type Extractor interface {
	// ExtractText reads the PDF at path and returns its full text, page
	// texts concatenated in document order. A missing, corrupted, or
	// unreadable file yields an error, never a panic, and never leaks
	// an open file handle.
	ExtractText(path string) (string, error)
}

// New returns the extractor selected by cfg.Backend. An empty backend
// defaults to the in-process parser.
func New(cfg types.ExtractorConfig) (Extractor, error) {
	switch cfg.Backend {
	case types.BackendPDF, "":
		return &PDFExtractor{}, nil
	case types.BackendPdftotext:
		return &PdftotextExtractor{}, nil
	default:
		return nil, fmt.Errorf("unknown extractor backend %q: use pdf or pdftotext", cfg.Backend)
	}
}
