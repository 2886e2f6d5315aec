package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"actas/docs"
	"actas/internal/config"
	"actas/internal/database"
	"actas/internal/database/migration"
	handlers "actas/internal/http/handler"
	"actas/internal/http/middleware"
	"actas/internal/logging"
	"actas/internal/ocr/tesseract"
	tracing "actas/internal/otel"
	"actas/internal/pipeline"
	"actas/internal/raster/mupdf"
	"actas/internal/repository/postgres"
	"actas/internal/service"
	"actas/internal/session"
	"actas/internal/storage"
	"actas/internal/textlayer"
)

// @title Actas API
// @version 1.0
// @description OCR field extraction for scanned actas.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logging.New(os.Stdout, logging.LoadLocation(cfg.Timezone))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var svcOpts []service.Option

	// Batch audit trail (optional)
	var db *sql.DB
	if cfg.Database.Enabled() {
		db, err = database.NewPostgres(cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()

		if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
		svcOpts = append(svcOpts, service.WithBatchRepository(postgres.NewBatchPostgres(db)))
	} else {
		log.Info().Str("event", "audit_disabled").Msg("DB_HOST not set; batch audit trail disabled")
	}

	// Raw upload archive (optional)
	if cfg.MinIO.Enabled() {
		objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize object storage")
		}
		svcOpts = append(svcOpts, service.WithStorage(objStore))
	} else {
		log.Info().Str("event", "archive_disabled").Msg("MINIO_ENDPOINT not set; uploads are not archived")
	}

	pipe, err := newPipeline(cfg.Pipeline, reg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build pipeline")
	}

	sessions := session.NewStore()
	go sessions.Janitor(ctx, cfg.Session.SweepInterval, cfg.Session.TTL)

	recordSvc := service.NewRecordService(pipe, sessions, svcOpts...)

	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register http metrics")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    cfg.MaxUploadBytes,
	})

	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Session(cfg.Session.Cookie, cfg.Session.TTL))
	app.Use(middleware.Logger(log))
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	handlers.RegisterRoutes(app, db, recordSvc)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		log.Info().Str("event", "shutdown").Msg("shutting down")
		_ = app.ShutdownWithTimeout(30 * time.Second)
	}()

	addr := ":" + cfg.Port
	log.Info().
		Str("event", "startup").
		Str("addr", addr).
		Str("backend", string(cfg.Pipeline.Backend)).
		Str("pages", string(cfg.Pipeline.Pages)).
		Msg("listening")
	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		log.Error().Err(err).Str("event", "tracing_shutdown_failed").Send()
	}
}

func newPipeline(cfg pipeline.Config, reg prometheus.Registerer, log zerolog.Logger) (*pipeline.Pipeline, error) {
	metrics, err := pipeline.NewMetrics(reg)
	if err != nil {
		return nil, err
	}
	return pipeline.New(cfg, mupdf.New(), tesseract.New(),
		pipeline.WithTextReader(textlayer.New()),
		pipeline.WithMetrics(metrics),
		pipeline.WithLogger(logging.Component(log, "pipeline")),
	)
}
