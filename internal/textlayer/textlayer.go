// Package textlayer reads the embedded text of native (non-scanned) PDFs.
package textlayer

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Reader extracts text from every page of a PDF.
type Reader struct{}

// New returns a text-layer reader.
func New() *Reader {
	return &Reader{}
}

// Text concatenates the plain text of all pages, one page per line block.
// Pages that fail to decode are skipped.
func (r *Reader) Text(ctx context.Context, path string) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("read text layer %s: %v", path, rec)
		}
	}()

	f, doc, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(content)
	}
	return b.String(), nil
}
