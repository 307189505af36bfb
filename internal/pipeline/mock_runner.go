package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"hiring-agents/internal/contract"
)

// MockRunner is a mock implementation of Runner using testify/mock.
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Summarize(ctx context.Context, resumeText string) (string, error) {
	args := m.Called(ctx, resumeText)
	return args.String(0), args.Error(1)
}

func (m *MockRunner) Score(ctx context.Context, conversationText string) (contract.ScoreRecord, error) {
	args := m.Called(ctx, conversationText)
	return args.Get(0).(contract.ScoreRecord), args.Error(1)
}
