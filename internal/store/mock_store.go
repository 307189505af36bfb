package store

import (
	"context"

	"github.com/stretchr/testify/mock"

	"hiring-agents/internal/contract"
)

// MockStore is a mock implementation of Store using testify/mock.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateCandidate(ctx context.Context, c NewCandidate) (Candidate, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(Candidate), args.Error(1)
}

func (m *MockStore) GetCandidate(ctx context.Context, id int64) (Candidate, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Candidate), args.Error(1)
}

func (m *MockStore) GetCandidateByEmail(ctx context.Context, email string) (Candidate, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(Candidate), args.Error(1)
}

func (m *MockStore) ListCandidates(ctx context.Context, statuses []CandidateStatus) ([]Candidate, error) {
	args := m.Called(ctx, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Candidate), args.Error(1)
}

func (m *MockStore) SaveSummary(ctx context.Context, id int64, summary string) error {
	args := m.Called(ctx, id, summary)
	return args.Error(0)
}

func (m *MockStore) SaveConversation(ctx context.Context, id int64, conversation string) error {
	args := m.Called(ctx, id, conversation)
	return args.Error(0)
}

func (m *MockStore) SaveScore(ctx context.Context, id int64, rec contract.ScoreRecord) error {
	args := m.Called(ctx, id, rec)
	return args.Error(0)
}

func (m *MockStore) UpdateStatus(ctx context.Context, id int64, status CandidateStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockStore) ListPendingScores(ctx context.Context, limit int) ([]Candidate, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Candidate), args.Error(1)
}
