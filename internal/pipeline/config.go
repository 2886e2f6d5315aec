package pipeline

import (
	"fmt"
	"strings"

	"actas/internal/extract"
	"actas/internal/ocr"
	"actas/internal/preprocess"
)

// PageSelection names the pages that are rasterized and recognized.
type PageSelection string

const (
	PagesFirst PageSelection = "first"
	PagesLast  PageSelection = "last"
	PagesBoth  PageSelection = "both"
)

// Backend chooses where document text comes from.
type Backend string

const (
	// BackendOCR rasterizes and recognizes the selected pages.
	BackendOCR Backend = "ocr"
	// BackendText reads the embedded text layer only.
	BackendText Backend = "text"
	// BackendAuto reads the text layer and falls back to OCR when it is blank.
	BackendAuto Backend = "auto"
)

// Config is the single configurable rule set that replaces the per-variant
// copies of the extraction flow.
type Config struct {
	Pages          PageSelection
	DPI            float64
	InstitutionDPI float64
	CropFraction   float64
	Upscale        float64
	Language       string
	Keywords       []string
	IDDelimiters   string
	Backend        Backend
}

// DefaultConfig mirrors the signature-page flow: last page at 120 DPI,
// bottom 40% only, space-delimited IDs.
func DefaultConfig() Config {
	return Config{
		Pages:          PagesLast,
		DPI:            120,
		InstitutionDPI: 300,
		CropFraction:   0.4,
		Upscale:        preprocess.MinUpscale,
		Language:       ocr.DefaultLanguage,
		Keywords:       append([]string(nil), extract.DefaultKeywords...),
		IDDelimiters:   extract.DelimitersSpaceOnly,
		Backend:        BackendOCR,
	}
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	switch c.Pages {
	case PagesFirst, PagesLast, PagesBoth:
	default:
		return fmt.Errorf("invalid page selection %q", c.Pages)
	}
	switch c.Backend {
	case BackendOCR, BackendText, BackendAuto:
	default:
		return fmt.Errorf("invalid backend %q", c.Backend)
	}
	if c.DPI <= 0 || c.InstitutionDPI <= 0 {
		return fmt.Errorf("dpi must be positive")
	}
	if c.CropFraction < 0 {
		return fmt.Errorf("crop fraction must not be negative")
	}
	if strings.TrimSpace(c.Language) == "" {
		return fmt.Errorf("ocr language is required")
	}
	return nil
}

// ParseKeywords splits a comma-separated keyword list, dropping blanks.
func ParseKeywords(s string) []string {
	var out []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			out = append(out, k)
		}
	}
	return out
}
