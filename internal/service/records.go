package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"actas/internal/archive"
	"actas/internal/export"
	"actas/internal/model"
	"actas/internal/pipeline"
	"actas/internal/repository"
	"actas/internal/session"
	"actas/internal/storage"
)

var (
	ErrReaderNil       = errors.New("reader is nil")
	ErrSessionRequired = errors.New("session id is required")
	ErrUnsupportedFile = errors.New("only .pdf and .zip uploads are supported")
	ErrIDRequired      = errors.New("id is required")
	ErrNotFound        = errors.New("batch not found")
	ErrAuditDisabled   = errors.New("batch audit trail is not configured")
	ErrArchiveDisabled = errors.New("upload archive is not configured")
	ErrNotArchived     = errors.New("batch upload was not archived")
)

// DownloadURLExpiry is the lifetime of presigned upload download links.
const DownloadURLExpiry = 15 * time.Minute

// Processor turns PDF sources into records appended to current.
// *pipeline.Pipeline satisfies it.
type Processor interface {
	Run(ctx context.Context, current model.Collection, sources []pipeline.Source) model.Collection
}

// UploadResult is the outcome of processing one upload.
type UploadResult struct {
	Batch   model.Batch      `json:"batch"`
	Records model.Collection `json:"records"`
	Total   int              `json:"total"`
}

// BatchListResult is the service-level DTO for paginated batches.
type BatchListResult struct {
	Items []model.Batch `json:"data"`
	Total int           `json:"total"`
}

// RecordService defines the operator use cases around the record table.
type RecordService interface {
	// Upload processes a PDF or ZIP upload and appends one record per PDF to
	// the session's table. The raw upload is archived and audited when those
	// backends are configured; the archive is rolled back if the audit fails.
	Upload(ctx context.Context, sessionID string, r io.Reader, filename, contentType string) (*UploadResult, error)

	// Records returns the session's current table.
	Records(sessionID string) model.Collection

	// Clear replaces the session's table with an empty one.
	Clear(sessionID string)

	// Export serializes the session's table.
	Export(sessionID string, f export.Format) ([]byte, error)

	// ListBatches returns the audit trail using limit/offset.
	ListBatches(ctx context.Context, limit, offset int) (*BatchListResult, error)

	// DownloadURL returns a presigned link to a batch's archived upload.
	DownloadURL(ctx context.Context, batchID string) (string, error)
}

// Option configures optional backends of the record service.
type Option func(*recordService)

// WithStorage enables archiving raw uploads.
func WithStorage(s storage.Storage) Option { return func(rs *recordService) { rs.store = s } }

// WithBatchRepository enables the batch audit trail.
func WithBatchRepository(r repository.BatchRepository) Option {
	return func(rs *recordService) { rs.repo = r }
}

// WithExtractor overrides the ZIP extractor.
func WithExtractor(e *archive.Extractor) Option { return func(rs *recordService) { rs.unzip = e } }

type recordService struct {
	proc     Processor
	sessions *session.Store
	unzip    *archive.Extractor
	store    storage.Storage
	repo     repository.BatchRepository
}

// NewRecordService constructs a RecordService. Storage and the batch
// repository are optional.
func NewRecordService(proc Processor, sessions *session.Store, opts ...Option) RecordService {
	s := &recordService{proc: proc, sessions: sessions, unzip: archive.NewExtractor()}
	for _, o := range opts {
		o(s)
	}
	return s
}

func uploadKind(filename string) (model.UploadKind, error) {
	switch {
	case archive.IsPDF(filename):
		return model.UploadPDF, nil
	case archive.IsZip(filename):
		return model.UploadZIP, nil
	default:
		return "", ErrUnsupportedFile
	}
}

func (s *recordService) Upload(ctx context.Context, sessionID string, r io.Reader, filename, contentType string) (*UploadResult, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	if sessionID == "" {
		return nil, ErrSessionRequired
	}
	kind, err := uploadKind(filename)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "actas-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	ext := filepath.Ext(filename)
	saved := filepath.Join(dir, "upload"+ext)
	size, err := saveFile(saved, r)
	if err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}

	sources, err := s.sources(kind, saved, filename, dir)
	if err != nil {
		return nil, err
	}

	batch := model.Batch{
		ID:       uuid.New().String(),
		Filename: filepath.Base(filepath.ToSlash(filename)),
		Kind:     kind,
	}
	if s.store != nil {
		key, err := s.archive(ctx, saved, batch.ID+ext, filename, contentType, size)
		if err != nil {
			return nil, err
		}
		batch.StoragePath = key
	}

	recs := s.proc.Run(ctx, nil, sources)
	batch.Documents = len(recs)
	batch.Failed = recs.FailedCount()
	batch.CreatedAt = time.Now().UTC()

	if s.repo != nil {
		stored, err := s.repo.Create(ctx, &batch)
		if err != nil {
			if batch.StoragePath != "" {
				if delErr := s.store.Delete(ctx, batch.StoragePath); delErr != nil {
					return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
				}
			}
			return nil, fmt.Errorf("db save failed: %w", err)
		}
		batch = *stored
	}

	total := s.sessions.Append(sessionID, recs...)
	return &UploadResult{Batch: batch, Records: recs, Total: len(total)}, nil
}

// sources lists the PDFs an upload contributes, in processing order.
func (s *recordService) sources(kind model.UploadKind, saved, filename, dir string) ([]pipeline.Source, error) {
	if kind == model.UploadPDF {
		return []pipeline.Source{{Path: saved, Filename: filepath.Base(filepath.ToSlash(filename))}}, nil
	}

	root := filepath.Join(dir, "extracted")
	if err := s.unzip.Extract(saved, root); err != nil {
		return nil, err
	}
	paths, err := archive.DiscoverPDFs(root)
	if err != nil {
		return nil, fmt.Errorf("discover pdfs: %w", err)
	}
	out := make([]pipeline.Source, 0, len(paths))
	for _, p := range paths {
		out = append(out, pipeline.Source{Path: p, Filename: filepath.Base(p)})
	}
	return out, nil
}

func (s *recordService) archive(ctx context.Context, path, name, original, contentType string, size int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	key := filepath.ToSlash(filepath.Join("uploads", name))
	info, err := s.store.Put(ctx, key, f, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": original,
		},
	})
	if err != nil {
		return "", fmt.Errorf("upload to storage: %w", err)
	}
	return info.Key, nil
}

func saveFile(path string, r io.Reader) (int64, error) {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, r)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return n, err
}

func (s *recordService) Records(sessionID string) model.Collection {
	recs := s.sessions.Get(sessionID)
	if recs == nil {
		return model.Collection{}
	}
	return recs
}

func (s *recordService) Clear(sessionID string) {
	s.sessions.Clear(sessionID)
}

func (s *recordService) Export(sessionID string, f export.Format) ([]byte, error) {
	return export.Bytes(f, s.Records(sessionID))
}

// ListBatches returns paginated batches without exposing repository types.
func (s *recordService) ListBatches(ctx context.Context, limit, offset int) (*BatchListResult, error) {
	if s.repo == nil {
		return nil, ErrAuditDisabled
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &BatchListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *recordService) DownloadURL(ctx context.Context, batchID string) (string, error) {
	if batchID == "" {
		return "", ErrIDRequired
	}
	if s.repo == nil {
		return "", ErrAuditDisabled
	}
	if s.store == nil {
		return "", ErrArchiveDisabled
	}
	b, err := s.repo.FindByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	if b.StoragePath == "" {
		return "", ErrNotArchived
	}
	return s.store.PresignGet(ctx, b.StoragePath, DownloadURLExpiry)
}
