package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"actas/internal/archive"
	"actas/internal/export"
	"actas/internal/http/middleware"
	"actas/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ARCHIVE", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

type domainError struct {
	err     error
	status  int
	code    string
	message string
}

// domainErrors maps service and archive failures to safe client responses.
// Order matters: the first match wins.
var domainErrors = []domainError{
	{service.ErrUnsupportedFile, fiber.StatusUnsupportedMediaType, "UNSUPPORTED_FILE", "only .pdf and .zip files are accepted"},
	{archive.ErrTooLarge, fiber.StatusRequestEntityTooLarge, "ARCHIVE_TOO_LARGE", "zip archive expands beyond the size limit"},
	{archive.ErrMalformedZip, fiber.StatusUnprocessableEntity, "INVALID_ARCHIVE", "zip archive is malformed"},
	{export.ErrUnknownFormat, fiber.StatusBadRequest, "INVALID_FORMAT", "format must be csv or xlsx"},
	{service.ErrAuditDisabled, fiber.StatusNotFound, "AUDIT_DISABLED", "batch audit trail is not configured"},
	{service.ErrArchiveDisabled, fiber.StatusNotFound, "ARCHIVE_DISABLED", "upload archive is not configured"},
	{service.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "batch not found"},
	{service.ErrNotArchived, fiber.StatusNotFound, "NOT_ARCHIVED", "batch upload was not archived"},
}

// writeServiceError translates err through domainErrors, falling back to 500.
func writeServiceError(c *fiber.Ctx, err error) error {
	for _, d := range domainErrors {
		if errors.Is(err, d.err) {
			return writeError(c, d.status, d.code, d.message)
		}
	}
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var e *fiber.Error
		if errors.As(err, &e) {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "upload exceeds the size limit")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
