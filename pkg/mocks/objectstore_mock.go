package mocks

import (
	"context"

	"github.com/dukex/hl7autoct/pkg/models"
	"github.com/dukex/hl7autoct/pkg/objectstore"
	"github.com/stretchr/testify/mock"
)

// MockObjectStore is a mock implementation of objectstore.Store interface.
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) MintURL(ctx context.Context, ref objectstore.Reference, kind models.ArtifactType) (objectstore.MintedURL, error) {
	args := m.Called(ctx, ref, kind)

	return args.Get(0).(objectstore.MintedURL), args.Error(1)
}
