// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kosmos/synesis/pkg/types"
)

func TestNewSelectsBackend(t *testing.T) {
	tests := []struct {
		backend types.ExtractorBackend
		want    any
		wantErr bool
	}{
		{types.BackendPDF, &PDFExtractor{}, false},
		{"", &PDFExtractor{}, false},
		{types.BackendPdftotext, &PdftotextExtractor{}, false},
		{"grobid", nil, true},
	}
	for _, tt := range tests {
		got, err := New(types.ExtractorConfig{Backend: tt.backend})
		if tt.wantErr {
			if err == nil {
				t.Errorf("New(%q) error = nil, want error", tt.backend)
			}
			continue
		}
		if err != nil {
			t.Errorf("New(%q) error = %v", tt.backend, err)
			continue
		}
		switch tt.want.(type) {
		case *PDFExtractor:
			if _, ok := got.(*PDFExtractor); !ok {
				t.Errorf("New(%q) = %T, want *PDFExtractor", tt.backend, got)
			}
		case *PdftotextExtractor:
			if _, ok := got.(*PdftotextExtractor); !ok {
				t.Errorf("New(%q) = %T, want *PdftotextExtractor", tt.backend, got)
			}
		}
	}
}

func TestPDFExtractorMissingFile(t *testing.T) {
	e := &PDFExtractor{}
	if _, err := e.ExtractText(filepath.Join(t.TempDir(), "nope.pdf")); err == nil {
		t.Error("missing file did not produce an error")
	}
}

func TestPDFExtractorCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.pdf")
	if err := os.WriteFile(path, []byte("this is not a pdf at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	e := &PDFExtractor{}
	if _, err := e.ExtractText(path); err == nil {
		t.Error("corrupt file did not produce an error")
	}
}

func TestPdftotextExtractorMissingFile(t *testing.T) {
	e := &PdftotextExtractor{}
	if _, err := e.ExtractText(filepath.Join(t.TempDir(), "nope.pdf")); err == nil {
		t.Error("missing file did not produce an error")
	}
}

// TestPdftotextExtractorIdempotent substitutes cat for pdftotext so the
// test does not depend on poppler being installed: cat echoes the file
// content, which is enough to verify the exec plumbing and idempotence.
func TestPdftotextExtractorIdempotent(t *testing.T) {
	orig := pdftotextBin
	pdftotextBin = "cat"
	t.Cleanup(func() { pdftotextBin = orig })

	path := filepath.Join(t.TempDir(), "doc.pdf")
	const content = "page one text\npage two text\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	e := &PdftotextExtractor{}
	first, err := e.ExtractText(path)
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}
	second, err := e.ExtractText(path)
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}
	if first != second {
		t.Error("ExtractText not idempotent: two calls returned different text")
	}
	if first != content {
		t.Errorf("ExtractText() = %q, want %q", first, content)
	}
}
