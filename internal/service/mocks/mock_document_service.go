package mocks

import (
	"context"
	"io"

	"github.com/AnishKajan/VaultGuardian-AI/internal/model"
	"github.com/AnishKajan/VaultGuardian-AI/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Submit(ctx context.Context, raw []byte, originalFilename, contentType, ownerID string) (*model.Document, error) {
	args := m.Called(ctx, raw, originalFilename, contentType, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, id string) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, limit, offset int, ownerID string) (*service.DocumentListResult, error) {
	args := m.Called(ctx, limit, offset, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentListResult), args.Error(1)
}

func (m *MockDocumentService) Download(ctx context.Context, id, requesterID string) (io.ReadCloser, *model.Document, error) {
	args := m.Called(ctx, id, requesterID)
	rc, _ := args.Get(0).(io.ReadCloser)
	if args.Get(1) == nil {
		return rc, nil, args.Error(2)
	}
	return rc, args.Get(1).(*model.Document), args.Error(2)
}

func (m *MockDocumentService) Delete(ctx context.Context, id, requesterID string) error {
	args := m.Called(ctx, id, requesterID)
	return args.Error(0)
}

func (m *MockDocumentService) Quarantine(ctx context.Context, id, reason, requesterID string) (*model.Document, error) {
	args := m.Called(ctx, id, reason, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}
