package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hiring-agents/internal/retry"
)

// TaskType enumerates supported task categories.
type TaskType string

const (
	TaskTypeSummarize TaskType = "summarize"
	TaskTypeNotify    TaskType = "notify"
	TaskTypeScore     TaskType = "score"
)

const (
	defaultMaxAttempts = 5
	retryBase          = time.Second
)

// Task represents a unit of work shared across services.
type Task struct {
	ID          uuid.UUID
	Type        TaskType
	Payload     []byte
	Attempts    int
	MaxAttempts int
	NotBefore   time.Time
}

// SummarizePayload asks the summarizer to summarize a candidate's resume.
type SummarizePayload struct {
	CandidateID int64 `json:"candidate_id"`
}

// NotifyPayload asks the mailer to deliver login credentials.
type NotifyPayload struct {
	CandidateID int64  `json:"candidate_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

// ScorePayload asks the scorer to grade a candidate's interview transcript.
type ScorePayload struct {
	CandidateID int64 `json:"candidate_id"`
}

// NewTask marshals payload into a task of type t.
func NewTask(t TaskType, payload any) (Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Task{}, fmt.Errorf("encode %s payload: %w", t, err)
	}
	return Task{ID: uuid.New(), Type: t, Payload: body, MaxAttempts: defaultMaxAttempts}, nil
}

// LastAttempt reports whether a failure of this delivery would exhaust the
// task's retries.
func (t Task) LastAttempt() bool {
	limit := t.MaxAttempts
	if limit == 0 {
		limit = defaultMaxAttempts
	}
	return t.Attempts+1 >= limit
}

// Decode unmarshals the task payload into v.
func (t Task) Decode(v any) error {
	if err := json.Unmarshal(t.Payload, v); err != nil {
		return Permanent(fmt.Errorf("decode %s payload: %w", t.Type, err))
	}
	return nil
}

type Handler func(context.Context, Task) error

// Queue exposes a minimal contract to enqueue and consume tasks.
type Queue interface {
	Enqueue(ctx context.Context, task Task) error
	Worker(ctx context.Context, taskType TaskType, handler Handler) error
	// Close releases the broker connection.
	Close() error
}

// queueName is the subject or queue a task type is published to.
func queueName(t TaskType) string { return "tasks." + string(t) }

// ErrPermanent marks handler failures that must not be retried.
var ErrPermanent = errors.New("permanent failure")

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() []error {
	return []error{ErrPermanent, e.err}
}

// Permanent wraps err so the queue drops the task instead of retrying it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was wrapped with Permanent.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrPermanent)
}

// nextAttempt decides whether a failed task is retried. It returns the task
// to re-enqueue with its attempt counter and NotBefore advanced.
func nextAttempt(task Task, handlerErr error, now time.Time) (Task, bool) {
	if IsPermanent(handlerErr) {
		return task, false
	}
	task.Attempts++
	if task.MaxAttempts == 0 {
		task.MaxAttempts = defaultMaxAttempts
	}
	if task.Attempts >= task.MaxAttempts {
		return task, false
	}
	task.NotBefore = now.Add(retry.ExponentialBackoff(task.Attempts, retryBase))
	return task, true
}

// waitUntil blocks until t or until ctx is done.
func waitUntil(ctx context.Context, t time.Time) error {
	d := time.Until(t)
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// EnqueueWithRetry attempts to enqueue with retries and exponential backoff.
func EnqueueWithRetry(ctx context.Context, q Queue, task Task, attempts int, base time.Duration) error {
	return retry.Do(ctx, attempts, base, func(ctx context.Context) error {
		return q.Enqueue(ctx, task)
	})
}
