package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"hiring-agents/internal/app"
	"hiring-agents/internal/cache"
	"hiring-agents/internal/httputil"
	"hiring-agents/internal/llm"
	"hiring-agents/internal/queue"
	"hiring-agents/internal/store"
)

var errEmptySummary = errors.New("model returned an empty summary")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Build(ctx, app.WithPipeline, app.WithCache)
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Close()
	deps.Log.Info("summarizer worker starting")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return deps.Queue.Worker(ctx, queue.TaskTypeSummarize, func(ctx context.Context, task queue.Task) error {
			var payload queue.SummarizePayload
			if err := task.Decode(&payload); err != nil {
				return err
			}
			return handleSummarize(ctx, deps, task, payload)
		})
	})

	g.Go(func() error {
		return httputil.ServeHealth(ctx, deps, "summarizer")
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("summarizer service stopped", "err", err)
	}
}

func handleSummarize(ctx context.Context, deps app.Deps, task queue.Task, payload queue.SummarizePayload) error {
	log := deps.Log.With("candidate_id", payload.CandidateID, "task_id", task.ID)

	c, err := deps.Store.GetCandidate(ctx, payload.CandidateID)
	if errors.Is(err, store.ErrCandidateNotFound) {
		return queue.Permanent(err)
	}
	if err != nil {
		return err
	}

	key := cache.ResumeKey(c.ResumeText)
	if strings.TrimSpace(c.ResumeText) != "" {
		cached, ok, err := deps.Cache.GetSummary(ctx, key)
		if err != nil {
			log.Warn("summary cache read failed", "err", err)
		}
		switch {
		case ok && strings.TrimSpace(cached) == "":
			log.Warn("dropping blank cached summary")
			invalidate(ctx, deps, log, key)
		case ok:
			log.Info("summary cache hit")
			if err := deps.Store.SaveSummary(ctx, c.ID, cached); err != nil {
				// The retry regenerates the summary instead of reusing this entry.
				invalidate(ctx, deps, log, key)
				return err
			}
			return nil
		}
	}

	summary, err := deps.Pipeline.Summarize(ctx, c.ResumeText)
	if err == nil && summary == "" {
		err = errEmptySummary
	}
	if err != nil {
		if retryable(err) && !task.LastAttempt() {
			return err
		}
		if upErr := deps.Store.UpdateStatus(ctx, c.ID, store.StatusSummaryFailed); upErr != nil {
			log.Error("failed to mark summary failed", "err", upErr)
		}
		return queue.Permanent(err)
	}

	if err := deps.Store.SaveSummary(ctx, c.ID, summary); err != nil {
		return err
	}
	if err := deps.Cache.SetSummary(ctx, key, summary, deps.Config.SummaryCacheTTL); err != nil {
		log.Warn("summary cache write failed", "err", err)
	}
	log.Info("resume summarized", "chars", len(summary))
	return nil
}

func invalidate(ctx context.Context, deps app.Deps, log *slog.Logger, key string) {
	if err := deps.Cache.Invalidate(ctx, key); err != nil {
		log.Warn("summary cache invalidate failed", "err", err)
	}
}

// retryable reports whether a later attempt may succeed.
func retryable(err error) bool {
	var mu *llm.ModelUnavailableError
	return errors.As(err, &mu) && mu.Retryable()
}
