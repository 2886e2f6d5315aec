// Package cli runs the extraction pipeline offline over a directory, a ZIP
// or a single PDF and writes the table to disk.
package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"actas/internal/export"
	"actas/internal/pipeline"
)

// EnvPrefix namespaces environment overrides (ACTAS_PAGES, ACTAS_DPI, ...).
const EnvPrefix = "ACTAS"

var ErrInputRequired = errors.New("--input is required")

// Options is the resolved command line.
type Options struct {
	Input    string
	Out      string
	Format   export.Format
	LogLevel string
	Pipeline pipeline.Config
}

// Load parses args (without the program name). Flags win over ACTAS_*
// environment variables, which win over defaults.
func Load(args []string, usage io.Writer) (*Options, error) {
	def := pipeline.DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs := pflag.NewFlagSet("actas", pflag.ContinueOnError)
	fs.SetOutput(usage)
	fs.String("input", "", "Directory, .zip or .pdf to process")
	fs.String("out", export.FormatCSV.Filename(), "Output file (.csv or .xlsx)")
	fs.String("pages", string(def.Pages), "Pages to recognize: first, last or both")
	fs.Float64("dpi", def.DPI, "Render resolution for the signature page")
	fs.Float64("institution-dpi", def.InstitutionDPI, "Render resolution for the first page")
	fs.Float64("crop", def.CropFraction, "Bottom fraction of the last page to keep (0 keeps the full page)")
	fs.Float64("upscale", def.Upscale, "Upscale factor before binarization (1.3 to 1.5)")
	fs.String("lang", def.Language, "Tesseract language")
	fs.String("keywords", strings.Join(def.Keywords, ","), "Comma-separated responsible-name keywords")
	fs.String("id-delimiters", def.IDDelimiters, "Characters that end the filename ID")
	fs.String("backend", string(def.Backend), "Text source: ocr, text or auto")
	fs.String("loglevel", "info", "Log level (debug, info, warn, error)")
	fs.Usage = func() {
		fmt.Fprintf(usage, "Usage: actas --input <dir|file.zip|file.pdf> [--out resultado.csv|resultado.xlsx]\n\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(usage, "\nEvery option can also be set as %s_<OPTION> (dashes become underscores).\n", EnvPrefix)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	opts := &Options{
		Input:    v.GetString("input"),
		Out:      v.GetString("out"),
		LogLevel: v.GetString("loglevel"),
		Pipeline: pipeline.Config{
			Pages:          pipeline.PageSelection(strings.ToLower(v.GetString("pages"))),
			DPI:            v.GetFloat64("dpi"),
			InstitutionDPI: v.GetFloat64("institution-dpi"),
			CropFraction:   v.GetFloat64("crop"),
			Upscale:        v.GetFloat64("upscale"),
			Language:       v.GetString("lang"),
			Keywords:       pipeline.ParseKeywords(v.GetString("keywords")),
			IDDelimiters:   v.GetString("id-delimiters"),
			Backend:        pipeline.Backend(strings.ToLower(v.GetString("backend"))),
		},
	}

	if opts.Input == "" {
		return nil, ErrInputRequired
	}
	f, err := export.ParseFormat(strings.TrimPrefix(filepath.Ext(opts.Out), "."))
	if err != nil {
		return nil, fmt.Errorf("--out: %w", err)
	}
	opts.Format = f
	if err := opts.Pipeline.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return opts, nil
}
