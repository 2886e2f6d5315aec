// Package tesseract implements ocr.Engine with Tesseract via gosseract.
// It requires libtesseract and the requested language data to be installed.
package tesseract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Engine recognizes text with a fresh Tesseract client per call, since a
// gosseract client must not be shared between goroutines.
type Engine struct {
	PageSegMode gosseract.PageSegMode
}

// New returns an engine using fully automatic page segmentation.
func New() *Engine {
	return &Engine{PageSegMode: gosseract.PSM_AUTO}
}

// Recognize runs OCR on an encoded image (PNG, TIFF, JPEG).
func (e *Engine) Recognize(ctx context.Context, image []byte, lang string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(lang); err != nil {
		return "", fmt.Errorf("set language %q: %w", lang, err)
	}
	if err := client.SetPageSegMode(e.PageSegMode); err != nil {
		return "", fmt.Errorf("set page segmentation: %w", err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	return text, nil
}
