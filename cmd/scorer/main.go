package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"hiring-agents/internal/app"
	"hiring-agents/internal/contract"
	"hiring-agents/internal/httputil"
	"hiring-agents/internal/llm"
	"hiring-agents/internal/queue"
	"hiring-agents/internal/store"
)

var errNoConversation = errors.New("candidate has no conversation to score")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Build(ctx, app.WithPipeline)
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Close()
	deps.Log.Info("scorer worker starting")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return deps.Queue.Worker(ctx, queue.TaskTypeScore, func(ctx context.Context, task queue.Task) error {
			var payload queue.ScorePayload
			if err := task.Decode(&payload); err != nil {
				return err
			}
			return handleScore(ctx, deps, task, payload)
		})
	})

	g.Go(func() error {
		return runSweeper(ctx, deps)
	})

	g.Go(func() error {
		return httputil.ServeHealth(ctx, deps, "scorer")
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("scorer service stopped", "err", err)
	}
}

// runSweeper periodically re-enqueues interviewed candidates that were never
// scored until ctx is done.
func runSweeper(ctx context.Context, deps app.Deps) error {
	c := cron.New()
	_, err := c.AddFunc(deps.Config.ScoreSweepSpec, func() {
		n, err := sweep(ctx, deps)
		if err != nil {
			deps.Log.Error("score sweep failed", "err", err, "enqueued", n)
			return
		}
		deps.Log.Info("score sweep finished", "enqueued", n)
	})
	if err != nil {
		return fmt.Errorf("invalid SCORE_SWEEP_SPEC %q: %w", deps.Config.ScoreSweepSpec, err)
	}
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// sweep enqueues a score task for every pending candidate that has been idle
// longer than the grace window and returns how many were enqueued.
func sweep(ctx context.Context, deps app.Deps) (int, error) {
	pending, err := deps.Store.ListPendingScores(ctx, deps.Config.ScoreSweepBatch)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, c := range pending {
		if time.Since(c.UpdatedAt) < deps.Config.ScoreSweepGrace {
			deps.Log.Debug("score task may still be in flight; skipping", "candidate_id", c.ID)
			continue
		}
		task, err := queue.NewTask(queue.TaskTypeScore, queue.ScorePayload{CandidateID: c.ID})
		if err != nil {
			return n, err
		}
		if err := deps.Queue.Enqueue(ctx, task); err != nil {
			return n, fmt.Errorf("enqueue score for candidate %d: %w", c.ID, err)
		}
		n++
	}
	return n, nil
}

func handleScore(ctx context.Context, deps app.Deps, task queue.Task, payload queue.ScorePayload) error {
	log := deps.Log.With("candidate_id", payload.CandidateID, "task_id", task.ID)

	c, err := deps.Store.GetCandidate(ctx, payload.CandidateID)
	if errors.Is(err, store.ErrCandidateNotFound) {
		return queue.Permanent(err)
	}
	if err != nil {
		return err
	}
	if c.Status == store.StatusScored {
		log.Info("candidate already scored; skipping")
		return nil
	}
	if strings.TrimSpace(c.ConversationText) == "" {
		return queue.Permanent(errNoConversation)
	}

	rec, err := deps.Pipeline.Score(ctx, c.ConversationText)
	if err != nil {
		if !contract.IsViolation(err) && retryable(err) && !task.LastAttempt() {
			return err
		}
		log.Warn("scoring failed permanently", "err", err, "offending_text", contract.OffendingText(err))
		if upErr := deps.Store.UpdateStatus(ctx, c.ID, store.StatusScoreFailed); upErr != nil {
			log.Error("failed to mark score failed", "err", upErr)
		}
		return queue.Permanent(err)
	}

	if err := deps.Store.SaveScore(ctx, c.ID, rec); err != nil {
		return err
	}
	log.Info("conversation scored", "score", rec.Score())
	return nil
}

// retryable reports whether a later attempt may succeed.
func retryable(err error) bool {
	var mu *llm.ModelUnavailableError
	return errors.As(err, &mu) && mu.Retryable()
}
