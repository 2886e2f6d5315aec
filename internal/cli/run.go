package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"actas/internal/archive"
	"actas/internal/export"
	"actas/internal/model"
	"actas/internal/pipeline"
)

// Processor is the batch driver; *pipeline.Pipeline satisfies it.
type Processor interface {
	Run(ctx context.Context, current model.Collection, sources []pipeline.Source) model.Collection
}

// Sources resolves input into PDF sources. ZIP archives are extracted
// under scratch, which the caller owns.
func Sources(input, scratch string) ([]pipeline.Source, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}

	root := input
	switch {
	case info.IsDir():
	case archive.IsZip(input):
		root = filepath.Join(scratch, "extracted")
		if err := archive.NewExtractor().Extract(input, root); err != nil {
			return nil, err
		}
	case archive.IsPDF(input):
		return []pipeline.Source{{Path: input, Filename: filepath.Base(input)}}, nil
	default:
		return nil, fmt.Errorf("unsupported input %q: want a directory, .zip or .pdf", input)
	}

	paths, err := archive.DiscoverPDFs(root)
	if err != nil {
		return nil, err
	}
	out := make([]pipeline.Source, 0, len(paths))
	for _, p := range paths {
		out = append(out, pipeline.Source{Path: p, Filename: filepath.Base(p)})
	}
	return out, nil
}

// Run processes opts.Input and writes the table to opts.Out.
func Run(ctx context.Context, opts *Options, proc Processor, log zerolog.Logger) (model.Collection, error) {
	scratch, err := os.MkdirTemp("", "actas-cli-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	sources, err := Sources(opts.Input, scratch)
	if err != nil {
		return nil, err
	}
	log.Info().Str("event", "batch_start").Str("input", opts.Input).Int("documents", len(sources)).Send()

	recs := proc.Run(ctx, nil, sources)

	f, err := os.Create(opts.Out)
	if err != nil {
		return recs, fmt.Errorf("create output: %w", err)
	}
	if err := export.Write(f, opts.Format, recs); err != nil {
		f.Close()
		return recs, fmt.Errorf("write output: %w", err)
	}
	if err := f.Close(); err != nil {
		return recs, fmt.Errorf("close output: %w", err)
	}

	log.Info().
		Str("event", "batch_done").
		Str("out", opts.Out).
		Int("documents", len(recs)).
		Int("failed", recs.FailedCount()).
		Send()
	return recs, nil
}
