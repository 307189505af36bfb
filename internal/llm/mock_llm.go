package llm

import (
	"context"

	"github.com/stretchr/testify/mock"

	"hiring-agents/internal/prompt"
)

// MockInvoker is a mock implementation of Invoker using testify/mock.
type MockInvoker struct {
	mock.Mock
}

func (m *MockInvoker) Invoke(ctx context.Context, p prompt.Bound, cfg ModelConfig) (Response, error) {
	args := m.Called(ctx, p, cfg)
	return args.Get(0).(Response), args.Error(1)
}

func (m *MockInvoker) Provider() string {
	return "mock"
}
