// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor parses PDFs in-process.
type PDFExtractor struct{}

// ExtractText opens the PDF at path and concatenates the plain text of
// every page in order. The file is closed on every exit path.
func (e *PDFExtractor) ExtractText(path string) (text string, err error) {
	// The parser panics on some malformed files; convert that into an
	// error so one corrupt download cannot take the batch down.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("parsing PDF %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("reading page %d of %s: %w", i, path, err)
		}
		b.WriteString(pageText)
	}
	return b.String(), nil
}
