// Package ocr defines the recognition contract and its explicit result type.
package ocr

import (
	"context"
	"errors"
	"fmt"
)

// DefaultLanguage is the Tesseract Spanish language pack.
const DefaultLanguage = "spa"

var ErrEmptyImage = errors.New("empty image")

// Engine turns an encoded image into text.
type Engine interface {
	Recognize(ctx context.Context, image []byte, lang string) (string, error)
}

// Result is either recognized text or the reason recognition failed.
// An OK result with empty Text means nothing was found.
type Result struct {
	Text string
	Err  error
}

// Ok wraps recognized text.
func Ok(text string) Result { return Result{Text: text} }

// Failed wraps a recognition failure.
func Failed(err error) Result { return Result{Err: err} }

func (r Result) OK() bool { return r.Err == nil }

// Run calls the engine and converts errors and panics into a Failed result,
// so a crashing engine never aborts the caller.
func Run(ctx context.Context, e Engine, image []byte, lang string) (res Result) {
	defer func() {
		if rec := recover(); rec != nil {
			res = Failed(fmt.Errorf("ocr engine panic: %v", rec))
		}
	}()
	if len(image) == 0 {
		return Failed(ErrEmptyImage)
	}
	if lang == "" {
		lang = DefaultLanguage
	}
	text, err := e.Recognize(ctx, image, lang)
	if err != nil {
		return Failed(err)
	}
	return Ok(text)
}
