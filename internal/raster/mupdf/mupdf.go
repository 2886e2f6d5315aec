// Package mupdf renders PDF pages to images with MuPDF (go-fitz).
package mupdf

import (
	"context"
	"fmt"

	"github.com/gen2brain/go-fitz"

	"actas/internal/raster"
)

// Renderer renders only the requested pages of a document.
type Renderer struct{}

// New returns a MuPDF renderer.
func New() *Renderer {
	return &Renderer{}
}

// Render opens path and rasterizes each request in order. Any failure (bad
// file, zero pages, render error) returns no pages at all.
func (r *Renderer) Render(ctx context.Context, path string, reqs []raster.Request) (pages []raster.Page, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			pages, err = nil, fmt.Errorf("render %s: %v", path, rec)
		}
	}()

	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	n := doc.NumPage()
	if n == 0 {
		return nil, raster.ErrNoPages
	}

	pages = make([]raster.Page, 0, len(reqs))
	for _, rq := range reqs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		idx, err := raster.Resolve(rq.Index, n)
		if err != nil {
			return nil, err
		}
		img, err := doc.ImageDPI(idx, rq.DPI)
		if err != nil {
			return nil, fmt.Errorf("render page %d: %w", idx+1, err)
		}
		pages = append(pages, raster.Page{Index: idx, Image: img})
	}
	return pages, nil
}
