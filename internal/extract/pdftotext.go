// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
)

// pdftotextBin is the binary name, a var so tests can substitute it.
var pdftotextBin = "pdftotext"

// PdftotextExtractor shells out to the pdftotext binary (poppler-utils).
// Useful where the in-process parser struggles with a PDF's encoding.
type PdftotextExtractor struct{}

// ExtractText runs pdftotext on the file and returns its stdout.
func (e *PdftotextExtractor) ExtractText(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("PDF not found: %w", err)
	}

	cmd := exec.Command(pdftotextBin, path, "-")
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftotext failed on %s: %w: %s", path, err, stderr.String())
	}
	return out.String(), nil
}
