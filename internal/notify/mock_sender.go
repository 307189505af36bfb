package notify

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockSender is a mock implementation of Sender using testify/mock.
type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendCredentials(ctx context.Context, c Credentials) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}
