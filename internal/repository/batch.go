// Package repository contains data access abstractions for the batch audit
// trail. Implementations live in subpackages (e.g. postgres).
package repository

import (
	"context"

	"actas/internal/model"
)

// BatchRepository persists one audit row per processed upload.
// Extracted records themselves are never stored.
type BatchRepository interface {
	// Create inserts a batch row and returns the stored value.
	Create(ctx context.Context, b *model.Batch) (*model.Batch, error)

	// FindByID returns the batch with the given ID or sql.ErrNoRows.
	FindByID(ctx context.Context, id string) (*model.Batch, error)

	// List returns a page of batches, newest first, and the total count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Batch], error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
