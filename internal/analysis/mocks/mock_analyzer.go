package mocks

import (
	"context"

	"github.com/AnishKajan/VaultGuardian-AI/internal/analysis"

	"github.com/stretchr/testify/mock"
)

type MockAnalyzerClient struct {
	mock.Mock
}

func (m *MockAnalyzerClient) Analyze(ctx context.Context, text, filename string) (*analysis.ModelResult, error) {
	args := m.Called(ctx, text, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analysis.ModelResult), args.Error(1)
}
