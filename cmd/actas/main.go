package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"actas/internal/cli"
	"actas/internal/logging"
	"actas/internal/ocr/tesseract"
	"actas/internal/pipeline"
	"actas/internal/raster/mupdf"
	"actas/internal/textlayer"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, err := cli.Load(os.Args[1:], os.Stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	log := logging.New(os.Stderr, logging.LoadLocation(os.Getenv("TZ")))
	if err != nil {
		log.Error().Str("event", "invalid_arguments").Err(err).Send()
		return 2
	}
	if lvl, err := zerolog.ParseLevel(opts.LogLevel); err == nil {
		log = log.Level(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipe, err := pipeline.New(opts.Pipeline, mupdf.New(), tesseract.New(),
		pipeline.WithTextReader(textlayer.New()),
		pipeline.WithLogger(logging.Component(log, "pipeline")),
	)
	if err != nil {
		log.Error().Str("event", "pipeline_init_failed").Err(err).Send()
		return 1
	}

	if _, err := cli.Run(ctx, opts, pipe, logging.Component(log, "cli")); err != nil {
		log.Error().Str("event", "batch_failed").Err(err).Send()
		return 1
	}
	return 0
}
