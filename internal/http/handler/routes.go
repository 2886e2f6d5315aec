package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"actas/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// db may be nil when the audit trail is disabled. Record routes expect
// middleware.Session to run first.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc service.RecordService) {
	app.Get("/", Index(svc))

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Post("/records", UploadRecords(svc))
	app.Get("/records", ListRecords(svc))
	app.Delete("/records", ClearRecords(svc))
	app.Get("/records/export", ExportRecords(svc))

	app.Get("/batches", ListBatches(svc))
	app.Get("/batches/:id/upload", DownloadBatchUpload(svc))
}
