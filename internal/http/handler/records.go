package handler

import (
	"github.com/gofiber/fiber/v2"

	"actas/internal/export"
	"actas/internal/http/middleware"
	"actas/internal/service"
)

func sessionRequired(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusBadRequest, "SESSION_REQUIRED", "session is required")
}

// UploadRecords processes an uploaded PDF or ZIP into the session table.
//
//	@Summary	Process a PDF or ZIP of PDFs
//	@Tags		records
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		file	formData	file	true	"PDF or ZIP"
//	@Success	201		{object}	service.UploadResult
//	@Failure	400		{object}	errorPayload
//	@Failure	415		{object}	errorPayload
//	@Failure	422		{object}	errorPayload
//	@Router		/records [post]
func UploadRecords(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := middleware.SessionID(c)
		if sid == "" {
			return sessionRequired(c)
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		res, err := svc.Upload(c.UserContext(), sid, f, fh.Filename, ct)
		if err != nil {
			return writeServiceError(c, err)
		}
		// Browser form posts go back to the table.
		if c.Accepts(fiber.MIMEApplicationJSON, fiber.MIMETextHTML) == fiber.MIMETextHTML {
			return c.Redirect("/", fiber.StatusSeeOther)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// ListRecords returns the session's accumulated table.
//
//	@Summary	Current record table
//	@Tags		records
//	@Produce	json
//	@Success	200	{object}	map[string]interface{}
//	@Router		/records [get]
func ListRecords(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := middleware.SessionID(c)
		if sid == "" {
			return sessionRequired(c)
		}
		recs := svc.Records(sid)
		return c.JSON(fiber.Map{"data": recs, "total": len(recs)})
	}
}

// ClearRecords replaces the session's table with an empty one.
//
//	@Summary	Clear the record table
//	@Tags		records
//	@Success	204
//	@Router		/records [delete]
func ClearRecords(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := middleware.SessionID(c)
		if sid == "" {
			return sessionRequired(c)
		}
		svc.Clear(sid)
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ExportRecords downloads the session's table as CSV or XLSX.
//
//	@Summary	Export the record table
//	@Tags		records
//	@Produce	text/csv
//	@Produce	application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Param		format	query	string	false	"csv or xlsx"	default(csv)
//	@Success	200
//	@Failure	400	{object}	errorPayload
//	@Router		/records/export [get]
func ExportRecords(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := middleware.SessionID(c)
		if sid == "" {
			return sessionRequired(c)
		}
		f, err := export.ParseFormat(c.Query("format", string(export.FormatCSV)))
		if err != nil {
			return writeServiceError(c, err)
		}
		data, err := svc.Export(sid, f)
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Attachment(f.Filename())
		c.Set(fiber.HeaderContentType, f.ContentType())
		return c.Send(data)
	}
}
