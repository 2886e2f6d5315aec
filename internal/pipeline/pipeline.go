// Package pipeline turns one PDF into one record (rasterize, preprocess,
// recognize, extract) and drives that over a batch of documents.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"actas/internal/extract"
	"actas/internal/model"
	"actas/internal/ocr"
	"actas/internal/preprocess"
	"actas/internal/raster"
)

var errNoTextReader = errors.New("text layer reader not configured")

// Rasterizer renders selected PDF pages to images.
type Rasterizer interface {
	Render(ctx context.Context, path string, reqs []raster.Request) ([]raster.Page, error)
}

// TextReader reads a PDF's embedded text layer.
type TextReader interface {
	Text(ctx context.Context, path string) (string, error)
}

// Source is one discovered PDF: where it is on disk and the name the
// operator knows it by.
type Source struct {
	Path     string
	Filename string
}

// Pipeline extracts a record from a single document.
type Pipeline struct {
	cfg       Config
	raster    Rasterizer
	engine    ocr.Engine
	text      TextReader
	extractor *extract.Extractor
	metrics   *Metrics
	tracer    trace.Tracer
	log       zerolog.Logger
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

func WithTextReader(r TextReader) Option { return func(p *Pipeline) { p.text = r } }

func WithMetrics(m *Metrics) Option { return func(p *Pipeline) { p.metrics = m } }

func WithLogger(l zerolog.Logger) Option { return func(p *Pipeline) { p.log = l } }

func WithTracer(t trace.Tracer) Option { return func(p *Pipeline) { p.tracer = t } }

// New builds a pipeline. The rasterizer and engine are required for the OCR
// and auto backends.
func New(cfg Config, r Rasterizer, e ocr.Engine, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Backend != BackendText && (r == nil || e == nil) {
		return nil, fmt.Errorf("backend %q needs a rasterizer and an ocr engine", cfg.Backend)
	}
	p := &Pipeline{
		cfg:       cfg,
		raster:    r,
		engine:    e,
		extractor: extract.New(cfg.IDDelimiters, cfg.Keywords, nil),
		tracer:    otel.Tracer("actas/pipeline"),
		log:       zerolog.New(io.Discard),
	}
	for _, o := range opts {
		o(p)
	}
	if cfg.Backend == BackendText && p.text == nil {
		return nil, fmt.Errorf("backend %q needs a text reader", cfg.Backend)
	}
	return p, nil
}

// Config returns the rules this pipeline runs with.
func (p *Pipeline) Config() Config { return p.cfg }

// pagePlan is one page to recognize and the role its text plays.
type pagePlan struct {
	req    raster.Request
	header bool
	crop   float64
}

func (p *Pipeline) plan() []pagePlan {
	first := pagePlan{req: raster.Request{Index: raster.FirstPage, DPI: p.cfg.InstitutionDPI}, header: true}
	last := pagePlan{req: raster.Request{Index: raster.LastPage, DPI: p.cfg.DPI}, crop: p.cfg.CropFraction}
	switch p.cfg.Pages {
	case PagesFirst:
		return []pagePlan{first}
	case PagesBoth:
		return []pagePlan{first, last}
	default:
		return []pagePlan{last}
	}
}

// Process runs one document through the pipeline. It always returns a
// record: failures leave text-derived fields empty and set Status/Reason,
// while the filename-derived ID is always filled.
func (p *Pipeline) Process(ctx context.Context, src Source) model.Record {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "pipeline.Process",
		trace.WithAttributes(attribute.String("document.filename", src.Filename)))
	defer span.End()

	rec := model.Record{
		ID:             p.extractor.ID(src.Filename),
		SourceFilename: src.Filename,
		Status:         model.StatusOK,
	}

	var (
		fields extract.Fields
		status model.Status
		reason string
	)
	switch p.cfg.Backend {
	case BackendText:
		fields, status, reason = p.fromTextLayer(ctx, src)
	case BackendAuto:
		if text, err := p.readText(ctx, src); err == nil && strings.TrimSpace(text) != "" {
			fields, status = p.extractor.FromTextLayer(text), model.StatusOK
		} else {
			fields, status, reason = p.fromOCR(ctx, src)
		}
	default:
		fields, status, reason = p.fromOCR(ctx, src)
	}

	rec.Institution = fields.Institution
	rec.ResponsibleName = fields.ResponsibleName
	rec.DNI = fields.DNI
	rec.Status = status
	rec.Reason = reason

	elapsed := time.Since(start)
	p.metrics.observe(rec.Status, elapsed)
	span.SetAttributes(attribute.String("document.status", string(rec.Status)))

	if rec.Failed() {
		span.SetStatus(codes.Error, reason)
		p.log.Warn().
			Str("event", "document_failed").
			Str("filename", src.Filename).
			Str("status", string(rec.Status)).
			Str("reason", reason).
			Msg("text extraction failed")
	}
	p.log.Info().
		Str("event", "document_processed").
		Str("filename", src.Filename).
		Str("status", string(rec.Status)).
		Int64("duration_ms", elapsed.Milliseconds()).
		Msg("document processed")
	return rec
}

func (p *Pipeline) readText(ctx context.Context, src Source) (string, error) {
	if p.text == nil {
		return "", errNoTextReader
	}
	ctx, span := p.tracer.Start(ctx, "pipeline.ReadTextLayer")
	defer span.End()
	return p.text.Text(ctx, src.Path)
}

func (p *Pipeline) fromTextLayer(ctx context.Context, src Source) (extract.Fields, model.Status, string) {
	text, err := p.readText(ctx, src)
	if err != nil {
		return extract.Fields{}, model.StatusUnreadable, err.Error()
	}
	return p.extractor.FromTextLayer(text), model.StatusOK, ""
}

func (p *Pipeline) fromOCR(ctx context.Context, src Source) (extract.Fields, model.Status, string) {
	plans := p.plan()
	reqs := make([]raster.Request, len(plans))
	for i, pl := range plans {
		reqs[i] = pl.req
	}

	pages, err := p.raster.Render(ctx, src.Path, reqs)
	if err != nil {
		return extract.Fields{}, model.StatusUnreadable, err.Error()
	}
	if len(pages) != len(plans) {
		return extract.Fields{}, model.StatusUnreadable, raster.ErrNoPages.Error()
	}

	var (
		header string
		body   []string
		failed []string
	)
	for i, pg := range pages {
		pl := plans[i]
		res := p.recognize(ctx, pg, pl)
		if !res.OK() {
			failed = append(failed, fmt.Sprintf("page %d: %v", pg.Index+1, res.Err))
			continue
		}
		if pl.header {
			header = res.Text
		}
		body = append(body, res.Text)
	}

	fields := p.extractor.FromOCR(header, strings.Join(body, "\n"))
	if len(failed) > 0 {
		return fields, model.StatusOCRFailed, strings.Join(failed, "; ")
	}
	return fields, model.StatusOK, ""
}

func (p *Pipeline) recognize(ctx context.Context, pg raster.Page, pl pagePlan) ocr.Result {
	ctx, span := p.tracer.Start(ctx, "pipeline.Recognize",
		trace.WithAttributes(attribute.Int("page.index", pg.Index)))
	defer span.End()

	bin := preprocess.Binarize(pg.Image, preprocess.Options{Upscale: p.cfg.Upscale, CropFraction: pl.crop})
	data, err := preprocess.EncodePNG(bin)
	if err != nil {
		return ocr.Failed(fmt.Errorf("encode page: %w", err))
	}
	res := ocr.Run(ctx, p.engine, data, p.cfg.Language)
	if !res.OK() {
		span.SetStatus(codes.Error, res.Err.Error())
	}
	return res
}

