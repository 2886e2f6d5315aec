package mocks

import (
	"context"

	"actas/internal/model"
	"actas/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockBatchRepository struct {
	mock.Mock
}

func (m *MockBatchRepository) Create(ctx context.Context, b *model.Batch) (*model.Batch, error) {
	args := m.Called(ctx, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Batch), args.Error(1)
}

func (m *MockBatchRepository) FindByID(ctx context.Context, id string) (*model.Batch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Batch), args.Error(1)
}

func (m *MockBatchRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Batch], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Batch]), args.Error(1)
}
