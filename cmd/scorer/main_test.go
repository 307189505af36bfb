package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hiring-agents/internal/app"
	"hiring-agents/internal/config"
	"hiring-agents/internal/contract"
	"hiring-agents/internal/llm"
	"hiring-agents/internal/pipeline"
	"hiring-agents/internal/queue"
	"hiring-agents/internal/store"
)

func newTestDeps(st store.Store, q queue.Queue, p pipeline.Runner) app.Deps {
	return app.Deps{
		Store:    st,
		Queue:    q,
		Pipeline: p,
		Config: config.Config{
			ScoreSweepSpec:  "@hourly",
			ScoreSweepBatch: 10,
			ScoreSweepGrace: 15 * time.Minute,
		},
		Log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestHandleScore(t *testing.T) {
	const transcript = "ASSISTANT: Tell me about yourself.\nUSER: I build Go services."
	interviewed := store.Candidate{ID: 4, ConversationText: transcript, Status: store.StatusInterviewed}
	record := contract.Validate("```json\n{\"score\": \"71\", \"analysis\": \"Hire\"}\n```").Record()
	firstTry := queue.Task{ID: uuid.New(), Type: queue.TaskTypeScore, MaxAttempts: 3}
	lastTry := queue.Task{ID: uuid.New(), Type: queue.TaskTypeScore, Attempts: 2, MaxAttempts: 3}
	rateLimited := &llm.ModelUnavailableError{Provider: "openai", Reason: llm.ReasonRateLimited, StatusCode: 429}

	tests := []struct {
		name          string
		task          queue.Task
		setup         func(*store.MockStore, *pipeline.MockRunner)
		wantErr       bool
		wantPermanent bool
	}{
		{
			name: "scores and saves",
			task: firstTry,
			setup: func(s *store.MockStore, p *pipeline.MockRunner) {
				s.On("GetCandidate", mock.Anything, int64(4)).Return(interviewed, nil).Once()
				p.On("Score", mock.Anything, transcript).Return(record, nil).Once()
				s.On("SaveScore", mock.Anything, int64(4), mock.MatchedBy(func(r contract.ScoreRecord) bool {
					return r.Score() == 71 && r.Analysis() == "Hire"
				})).Return(nil).Once()
			},
		},
		{
			name: "already scored is skipped",
			task: firstTry,
			setup: func(s *store.MockStore, p *pipeline.MockRunner) {
				scored := interviewed
				scored.Status = store.StatusScored
				s.On("GetCandidate", mock.Anything, int64(4)).Return(scored, nil).Once()
			},
		},
		{
			name: "missing transcript is permanent",
			task: firstTry,
			setup: func(s *store.MockStore, p *pipeline.MockRunner) {
				s.On("GetCandidate", mock.Anything, int64(4)).Return(store.Candidate{ID: 4}, nil).Once()
			},
			wantErr:       true,
			wantPermanent: true,
		},
		{
			name: "unknown candidate is permanent",
			task: firstTry,
			setup: func(s *store.MockStore, p *pipeline.MockRunner) {
				s.On("GetCandidate", mock.Anything, int64(4)).Return(store.Candidate{}, store.ErrCandidateNotFound).Once()
			},
			wantErr:       true,
			wantPermanent: true,
		},
		{
			name: "contract violation marks score failed",
			task: firstTry,
			setup: func(s *store.MockStore, p *pipeline.MockRunner) {
				s.On("GetCandidate", mock.Anything, int64(4)).Return(interviewed, nil).Once()
				p.On("Score", mock.Anything, transcript).
					Return(contract.ScoreRecord{}, contract.Validate(`{"score": true, "analysis": "x"}`).Err()).Once()
				s.On("UpdateStatus", mock.Anything, int64(4), store.StatusScoreFailed).Return(nil).Once()
			},
			wantErr:       true,
			wantPermanent: true,
		},
		{
			name: "rate limit is retried",
			task: firstTry,
			setup: func(s *store.MockStore, p *pipeline.MockRunner) {
				s.On("GetCandidate", mock.Anything, int64(4)).Return(interviewed, nil).Once()
				p.On("Score", mock.Anything, transcript).Return(contract.ScoreRecord{}, rateLimited).Once()
			},
			wantErr: true,
		},
		{
			name: "rate limit on last attempt marks score failed",
			task: lastTry,
			setup: func(s *store.MockStore, p *pipeline.MockRunner) {
				s.On("GetCandidate", mock.Anything, int64(4)).Return(interviewed, nil).Once()
				p.On("Score", mock.Anything, transcript).Return(contract.ScoreRecord{}, rateLimited).Once()
				s.On("UpdateStatus", mock.Anything, int64(4), store.StatusScoreFailed).Return(nil).Once()
			},
			wantErr:       true,
			wantPermanent: true,
		},
		{
			name: "rejected credentials are permanent",
			task: firstTry,
			setup: func(s *store.MockStore, p *pipeline.MockRunner) {
				s.On("GetCandidate", mock.Anything, int64(4)).Return(interviewed, nil).Once()
				p.On("Score", mock.Anything, transcript).
					Return(contract.ScoreRecord{}, &llm.ModelUnavailableError{Provider: "openai", Reason: llm.ReasonAuth, StatusCode: 401}).Once()
				s.On("UpdateStatus", mock.Anything, int64(4), store.StatusScoreFailed).Return(nil).Once()
			},
			wantErr:       true,
			wantPermanent: true,
		},
		{
			name: "store failure is retried",
			task: firstTry,
			setup: func(s *store.MockStore, p *pipeline.MockRunner) {
				s.On("GetCandidate", mock.Anything, int64(4)).Return(store.Candidate{}, errors.New("db error")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStore := new(store.MockStore)
			mockRunner := new(pipeline.MockRunner)
			tt.setup(mockStore, mockRunner)

			deps := newTestDeps(mockStore, nil, mockRunner)
			err := handleScore(context.Background(), deps, tt.task, queue.ScorePayload{CandidateID: 4})

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantPermanent, queue.IsPermanent(err))

			mockStore.AssertExpectations(t)
			mockRunner.AssertExpectations(t)
		})
	}
}

func TestSweep(t *testing.T) {
	idle := time.Now().Add(-time.Hour)

	t.Run("enqueues every pending candidate", func(t *testing.T) {
		mockStore := new(store.MockStore)
		mockQueue := new(queue.MockQueue)
		mockStore.On("ListPendingScores", mock.Anything, 10).
			Return([]store.Candidate{{ID: 1, UpdatedAt: idle}, {ID: 2, UpdatedAt: idle}}, nil).Once()
		var ids []int64
		mockQueue.On("Enqueue", mock.Anything, mock.MatchedBy(func(task queue.Task) bool {
			var p queue.ScorePayload
			if task.Type != queue.TaskTypeScore || task.Decode(&p) != nil {
				return false
			}
			ids = append(ids, p.CandidateID)
			return true
		})).Return(nil).Twice()

		n, err := sweep(context.Background(), newTestDeps(mockStore, mockQueue, nil))

		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, []int64{1, 2}, ids)
		mockStore.AssertExpectations(t)
		mockQueue.AssertExpectations(t)
	})

	t.Run("stops at first enqueue failure", func(t *testing.T) {
		mockStore := new(store.MockStore)
		mockQueue := new(queue.MockQueue)
		mockStore.On("ListPendingScores", mock.Anything, 10).
			Return([]store.Candidate{{ID: 1, UpdatedAt: idle}, {ID: 2, UpdatedAt: idle}}, nil).Once()
		mockQueue.On("Enqueue", mock.Anything, mock.Anything).Return(errors.New("queue down")).Once()

		n, err := sweep(context.Background(), newTestDeps(mockStore, mockQueue, nil))

		assert.Error(t, err)
		assert.Equal(t, 0, n)
		mockQueue.AssertExpectations(t)
	})

	t.Run("skips candidates inside the grace window", func(t *testing.T) {
		mockStore := new(store.MockStore)
		mockQueue := new(queue.MockQueue)
		mockStore.On("ListPendingScores", mock.Anything, 10).
			Return([]store.Candidate{{ID: 1, UpdatedAt: idle}, {ID: 2, UpdatedAt: time.Now()}}, nil).Once()
		mockQueue.On("Enqueue", mock.Anything, mock.MatchedBy(func(task queue.Task) bool {
			var p queue.ScorePayload
			return task.Decode(&p) == nil && p.CandidateID == 1
		})).Return(nil).Once()

		n, err := sweep(context.Background(), newTestDeps(mockStore, mockQueue, nil))

		require.NoError(t, err)
		assert.Equal(t, 1, n)
		mockStore.AssertExpectations(t)
		mockQueue.AssertExpectations(t)
	})
}

func TestRunSweeperRejectsBadSpec(t *testing.T) {
	deps := newTestDeps(new(store.MockStore), new(queue.MockQueue), nil)
	deps.Config.ScoreSweepSpec = "every tuesday"

	err := runSweeper(context.Background(), deps)

	assert.Error(t, err)
}

func TestRunSweeperStopsWithContext(t *testing.T) {
	deps := newTestDeps(new(store.MockStore), new(queue.MockQueue), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, runSweeper(ctx, deps))
}
