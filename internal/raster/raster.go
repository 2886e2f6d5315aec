// Package raster describes page rendering requests and results.
// The MuPDF-backed implementation lives in the mupdf subpackage.
package raster

import (
	"errors"
	"fmt"
	"image"
)

var (
	ErrNoPages   = errors.New("pdf has no pages")
	ErrPageRange = errors.New("page index out of range")
)

const (
	FirstPage = 0
	LastPage  = -1
)

// Request asks for one page at a given resolution. Negative indexes count
// from the end of the document, so LastPage is the final page.
type Request struct {
	Index int
	DPI   float64
}

// Page is a rendered page. Index is zero-based and already resolved.
type Page struct {
	Index int
	Image image.Image
}

// Resolve maps a possibly negative page index onto [0, n).
func Resolve(index, n int) (int, error) {
	if n <= 0 {
		return 0, ErrNoPages
	}
	i := index
	if i < 0 {
		i = n + i
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("%w: %d of %d", ErrPageRange, index, n)
	}
	return i, nil
}
