package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"actas/internal/service"
)

// ListBatches returns the upload audit trail with limit & offset.
//
//	@Summary	Upload audit trail
//	@Tags		batches
//	@Produce	json
//	@Param		limit	query		int	false	"page size"	default(10)
//	@Param		offset	query		int	false	"offset"	default(0)
//	@Success	200		{object}	service.BatchListResult
//	@Failure	400		{object}	errorPayload
//	@Failure	404		{object}	errorPayload
//	@Router		/batches [get]
func ListBatches(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.ListBatches(c.UserContext(), limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// DownloadBatchUpload redirects to a presigned link for the archived upload.
//
//	@Summary	Download an archived upload
//	@Tags		batches
//	@Param		id	path	string	true	"batch id"
//	@Success	302
//	@Failure	400	{object}	errorPayload
//	@Failure	404	{object}	errorPayload
//	@Router		/batches/{id}/upload [get]
func DownloadBatchUpload(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		url, err := svc.DownloadURL(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Redirect(url, fiber.StatusFound)
	}
}
