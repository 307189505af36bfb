package blob

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of Store using testify/mock.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	args := m.Called(ctx, key, contentType, data)
	return args.Error(0)
}

func (m *MockStore) Get(ctx context.Context, key string) (Object, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(Object), args.Error(1)
}
