package mocks

import (
	"context"
	"time"

	"github.com/dukex/hl7autoct/pkg/models"
	"github.com/stretchr/testify/mock"
)

// MockPersistence is a mock implementation of persistence.Persistence interface.
type MockPersistence struct {
	mock.Mock
}

func (m *MockPersistence) SaveLaunch(ctx context.Context, launch *models.Launch) error {
	args := m.Called(ctx, launch)

	return args.Error(0)
}

func (m *MockPersistence) LaunchByHandle(ctx context.Context, handle models.ExecutionHandle) (*models.Launch, error) {
	args := m.Called(ctx, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Launch), args.Error(1)
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

// MockPruner is a mock implementation of persistence.Pruner interface.
type MockPruner struct {
	mock.Mock
}

func (m *MockPruner) PruneLaunches(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)

	return args.Get(0).(int64), args.Error(1)
}
