package postgres

import (
	"context"
	"database/sql"

	"actas/internal/model"
	"actas/internal/repository"
)

// BatchPostgres is a PostgreSQL implementation of repository.BatchRepository.
type BatchPostgres struct {
	db *sql.DB
}

// NewBatchPostgres creates a new BatchPostgres repository.
func NewBatchPostgres(db *sql.DB) *BatchPostgres {
	return &BatchPostgres{db: db}
}

var _ repository.BatchRepository = (*BatchPostgres)(nil)

const batchColumns = `id, filename, kind, storage_path, documents, failed, created_at`

func scanBatch(s interface{ Scan(...any) error }) (model.Batch, error) {
	var b model.Batch
	var kind string
	err := s.Scan(&b.ID, &b.Filename, &kind, &b.StoragePath, &b.Documents, &b.Failed, &b.CreatedAt)
	b.Kind = model.UploadKind(kind)
	return b, err
}

// Create inserts a batch row and returns the stored record.
func (r *BatchPostgres) Create(ctx context.Context, b *model.Batch) (*model.Batch, error) {
	const q = `
		INSERT INTO batches (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + batchColumns
	row := r.db.QueryRowContext(ctx, q,
		b.ID,
		b.Filename,
		string(b.Kind),
		b.StoragePath,
		b.Documents,
		b.Failed,
		b.CreatedAt,
	)
	out, err := scanBatch(row)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a batch by ID. Returns sql.ErrNoRows if not found.
func (r *BatchPostgres) FindByID(ctx context.Context, id string) (*model.Batch, error) {
	const q = `SELECT ` + batchColumns + ` FROM batches WHERE id = $1`
	b, err := scanBatch(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// List returns batches using LIMIT/OFFSET pagination and a total count.
func (r *BatchPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Batch], error) {
	const qCount = `SELECT COUNT(*) FROM batches`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + batchColumns + `
		FROM batches
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Batch, 0)
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Batch]{
		Items: items,
		Total: total,
	}, nil
}
