package mocks

import (
	"context"
	"io"

	"actas/internal/export"
	"actas/internal/model"
	"actas/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockRecordService struct {
	mock.Mock
}

func (m *MockRecordService) Upload(ctx context.Context, sessionID string, r io.Reader, filename, contentType string) (*service.UploadResult, error) {
	args := m.Called(ctx, sessionID, r, filename, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadResult), args.Error(1)
}

func (m *MockRecordService) Records(sessionID string) model.Collection {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(model.Collection)
}

func (m *MockRecordService) Clear(sessionID string) {
	m.Called(sessionID)
}

func (m *MockRecordService) Export(sessionID string, f export.Format) ([]byte, error) {
	args := m.Called(sessionID, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockRecordService) ListBatches(ctx context.Context, limit, offset int) (*service.BatchListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BatchListResult), args.Error(1)
}

func (m *MockRecordService) DownloadURL(ctx context.Context, batchID string) (string, error) {
	args := m.Called(ctx, batchID)
	return args.String(0), args.Error(1)
}
