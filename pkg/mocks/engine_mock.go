package mocks

import (
	"context"

	"github.com/dukex/hl7autoct/pkg/engine"
	"github.com/dukex/hl7autoct/pkg/models"
	"github.com/stretchr/testify/mock"
)

// MockEngine is a mock implementation of engine.Engine interface.
type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) Start(ctx context.Context, input engine.StartInput) (models.ExecutionHandle, error) {
	args := m.Called(ctx, input)

	return args.Get(0).(models.ExecutionHandle), args.Error(1)
}

func (m *MockEngine) Describe(ctx context.Context, handle models.ExecutionHandle) (*engine.Description, error) {
	args := m.Called(ctx, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*engine.Description), args.Error(1)
}
