package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"actas/internal/archive"
	"actas/internal/export"
	"actas/internal/http/middleware"
	"actas/internal/model"
	"actas/internal/service"
	serviceMocks "actas/internal/service/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(middleware.RequestID())
	app.Use(middleware.Session("", 0))
	return app
}

func withSession(req *http.Request, id string) *http.Request {
	req.Header.Set(middleware.SessionHeader, id)
	return req
}

func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	part.Write(content)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "up", body["database"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})

	t.Run("database disabled", func(t *testing.T) {
		app := fiber.New()
		app.Get("/health", HealthCheck(nil))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "disabled", body["database"])
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUploadRecords(t *testing.T) {
	mockSvc := new(serviceMocks.MockRecordService)
	app := newApp()
	app.Post("/records", UploadRecords(mockSvc))

	t.Run("success", func(t *testing.T) {
		body, ct := multipartBody(t, "AY-0039.pdf", []byte("%PDF-1.4"))

		expected := &service.UploadResult{
			Batch:   model.Batch{ID: uuid.New().String(), Filename: "AY-0039.pdf", Kind: model.UploadPDF, Documents: 1},
			Records: model.Collection{{ID: "AY-0039", DNI: "12345678", Status: model.StatusOK}},
			Total:   1,
		}
		mockSvc.On("Upload", mock.Anything, "s1", mock.Anything, "AY-0039.pdf", mock.Anything).Return(expected, nil).Once()

		req := withSession(httptest.NewRequest(http.MethodPost, "/records", body), "s1")
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result service.UploadResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, expected.Batch.ID, result.Batch.ID)
		require.Len(t, result.Records, 1)
		assert.Equal(t, "12345678", result.Records[0].DNI)
		mockSvc.AssertExpectations(t)
	})

	t.Run("browser form redirects to index", func(t *testing.T) {
		body, ct := multipartBody(t, "AY-0040.pdf", []byte("%PDF-1.4"))

		res := &service.UploadResult{Records: model.Collection{{ID: "AY-0040", Status: model.StatusOK}}, Total: 1}
		mockSvc.On("Upload", mock.Anything, "s1", mock.Anything, "AY-0040.pdf", mock.Anything).Return(res, nil).Once()

		req := withSession(httptest.NewRequest(http.MethodPost, "/records", body), "s1")
		req.Header.Set("Content-Type", ct)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get("Location"))
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		req := withSession(httptest.NewRequest(http.MethodPost, "/records", nil), "s1")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FILE_REQUIRED", res.Error.Code)
		assert.NotEmpty(t, res.RequestID)
	})

	errorCases := []struct {
		name     string
		filename string
		err      error
		status   int
		code     string
	}{
		{"unsupported file", "notes.docx", service.ErrUnsupportedFile, http.StatusUnsupportedMediaType, "UNSUPPORTED_FILE"},
		{"malformed zip", "lote.zip", fmt.Errorf("%w: not a zip file", archive.ErrMalformedZip), http.StatusUnprocessableEntity, "INVALID_ARCHIVE"},
		{"zip too large", "lote.zip", archive.ErrTooLarge, http.StatusRequestEntityTooLarge, "ARCHIVE_TOO_LARGE"},
		{"service error", "AY-0039.pdf", errors.New("upload failed"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			body, ct := multipartBody(t, tc.filename, []byte("data"))
			mockSvc.On("Upload", mock.Anything, "s1", mock.Anything, tc.filename, mock.Anything).Return(nil, tc.err).Once()

			req := withSession(httptest.NewRequest(http.MethodPost, "/records", body), "s1")
			req.Header.Set("Content-Type", ct)
			resp, _ := app.Test(req)

			assert.Equal(t, tc.status, resp.StatusCode)
			var res errorPayload
			json.NewDecoder(resp.Body).Decode(&res)
			assert.Equal(t, tc.code, res.Error.Code)
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestUploadRecords_NoSession(t *testing.T) {
	mockSvc := new(serviceMocks.MockRecordService)
	app := fiber.New()
	app.Post("/records", UploadRecords(mockSvc))

	resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/records", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var res errorPayload
	json.NewDecoder(resp.Body).Decode(&res)
	assert.Equal(t, "SESSION_REQUIRED", res.Error.Code)
	mockSvc.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListAndClearRecords(t *testing.T) {
	mockSvc := new(serviceMocks.MockRecordService)
	app := newApp()
	app.Get("/records", ListRecords(mockSvc))
	app.Delete("/records", ClearRecords(mockSvc))

	mockSvc.On("Records", "s1").Return(model.Collection{
		{ID: "AY-0039", Status: model.StatusOK},
		{SourceFilename: "bad.pdf", Status: model.StatusUnreadable},
	}).Once()

	resp, _ := app.Test(withSession(httptest.NewRequest(http.MethodGet, "/records", nil), "s1"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data  []model.Record `json:"data"`
		Total int            `json:"total"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Equal(t, 2, body.Total)
	assert.Equal(t, model.StatusUnreadable, body.Data[1].Status)

	mockSvc.On("Clear", "s1").Return().Once()
	resp, _ = app.Test(withSession(httptest.NewRequest(http.MethodDelete, "/records", nil), "s1"))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	mockSvc.AssertExpectations(t)
}

func TestExportRecords(t *testing.T) {
	mockSvc := new(serviceMocks.MockRecordService)
	app := newApp()
	app.Get("/records/export", ExportRecords(mockSvc))

	t.Run("csv by default", func(t *testing.T) {
		mockSvc.On("Export", "s1", export.FormatCSV).Return([]byte("ID\n"), nil).Once()

		resp, _ := app.Test(withSession(httptest.NewRequest(http.MethodGet, "/records/export", nil), "s1"))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, export.FormatCSV.ContentType(), resp.Header.Get("Content-Type"))
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "resultado_actas.csv")

		data, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "ID\n", string(data))
	})

	t.Run("xlsx", func(t *testing.T) {
		mockSvc.On("Export", "s1", export.FormatXLSX).Return([]byte("PK"), nil).Once()

		resp, _ := app.Test(withSession(httptest.NewRequest(http.MethodGet, "/records/export?format=xlsx", nil), "s1"))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "resultado_actas.xlsx")
	})

	t.Run("invalid format", func(t *testing.T) {
		resp, _ := app.Test(withSession(httptest.NewRequest(http.MethodGet, "/records/export?format=pdf", nil), "s1"))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_FORMAT", res.Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Export", "s1", export.FormatCSV).Return(nil, errors.New("boom")).Once()

		resp, _ := app.Test(withSession(httptest.NewRequest(http.MethodGet, "/records/export?format=csv", nil), "s1"))
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
	mockSvc.AssertExpectations(t)
}

func TestListBatches(t *testing.T) {
	mockSvc := new(serviceMocks.MockRecordService)
	app := fiber.New()
	app.Get("/batches", ListBatches(mockSvc))

	t.Run("success", func(t *testing.T) {
		expectedRes := &service.BatchListResult{
			Items: []model.Batch{{ID: uuid.New().String(), Filename: "lote.zip", Kind: model.UploadZIP}},
			Total: 1,
		}
		mockSvc.On("ListBatches", mock.Anything, 10, 0).Return(expectedRes, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/batches?limit=10&offset=0", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.BatchListResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/batches?limit=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_LIMIT", body.Error.Code)
	})

	t.Run("audit disabled", func(t *testing.T) {
		mockSvc.On("ListBatches", mock.Anything, 10, 0).Return(nil, service.ErrAuditDisabled).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/batches", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "AUDIT_DISABLED", body.Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("ListBatches", mock.Anything, 10, 0).Return(nil, errors.New("service error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/batches", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestDownloadBatchUpload(t *testing.T) {
	mockSvc := new(serviceMocks.MockRecordService)
	app := fiber.New()
	app.Get("/batches/:id/upload", DownloadBatchUpload(mockSvc))

	t.Run("redirects to presigned url", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("DownloadURL", mock.Anything, id).Return("https://minio.local/actas/uploads/x.zip?sig=1", nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/batches/"+id+"/upload", nil))
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "https://minio.local/actas/uploads/x.zip?sig=1", resp.Header.Get("Location"))
	})

	t.Run("invalid id", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/batches/invalid-uuid/upload", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_ID", res.Error.Code)
	})

	cases := []struct {
		err  error
		code string
	}{
		{service.ErrNotFound, "NOT_FOUND"},
		{service.ErrNotArchived, "NOT_ARCHIVED"},
		{service.ErrArchiveDisabled, "ARCHIVE_DISABLED"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			id := uuid.New().String()
			mockSvc.On("DownloadURL", mock.Anything, id).Return("", tc.err).Once()

			resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/batches/"+id+"/upload", nil))
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
			var res errorPayload
			json.NewDecoder(resp.Body).Decode(&res)
			assert.Equal(t, tc.code, res.Error.Code)
		})
	}
	mockSvc.AssertExpectations(t)
}

func TestIndex(t *testing.T) {
	mockSvc := new(serviceMocks.MockRecordService)
	app := newApp()
	app.Get("/", Index(mockSvc))

	mockSvc.On("Records", "s1").Return(model.Collection{
		{ID: "AY-0039-A01", Institution: "UGEL HUAMANGA", ResponsibleName: "JUAN PEREZ GOMEZ", DNI: "45678912", SourceFilename: "AY-0039-A01.pdf", Status: model.StatusOK},
		{SourceFilename: "roto.pdf", Status: model.StatusOCRFailed, Reason: "tesseract failed"},
	}).Once()

	resp, _ := app.Test(withSession(httptest.NewRequest(http.MethodGet, "/", nil), "s1"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	data, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(data), `name="file"`)
	assert.Contains(t, string(data), "Registros acumulados: 2 (1 con error)")
	assert.Contains(t, string(data), "<th>Institución</th>")
	assert.Contains(t, string(data), "<td>AY-0039-A01</td><td>UGEL HUAMANGA</td><td>JUAN PEREZ GOMEZ</td><td>45678912</td>")
	assert.Contains(t, string(data), "<td>roto.pdf</td><td>ocr_failed: tesseract failed</td>")
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	mockSvc := new(serviceMocks.MockRecordService)
	RegisterRoutes(app, nil, mockSvc)

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "METHOD_NOT_ALLOWED", res.Error.Code)
	})
}
