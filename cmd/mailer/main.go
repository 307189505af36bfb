package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"hiring-agents/internal/app"
	"hiring-agents/internal/httputil"
	"hiring-agents/internal/notify"
	"hiring-agents/internal/queue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Build(ctx, app.WithMailer)
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Close()
	deps.Log.Info("mailer worker starting")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return deps.Queue.Worker(ctx, queue.TaskTypeNotify, func(ctx context.Context, task queue.Task) error {
			var payload queue.NotifyPayload
			if err := task.Decode(&payload); err != nil {
				return err
			}
			return handleNotify(ctx, deps, payload)
		})
	})

	g.Go(func() error {
		return httputil.ServeHealth(ctx, deps, "mailer")
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("mailer service stopped", "err", err)
	}
}

func handleNotify(ctx context.Context, deps app.Deps, payload queue.NotifyPayload) error {
	log := deps.Log.With("candidate_id", payload.CandidateID)
	if payload.Email == "" || payload.Password == "" {
		return queue.Permanent(errors.New("notify payload missing email or password"))
	}
	err := deps.Mailer.SendCredentials(ctx, notify.Credentials{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		return err
	}
	log.Info("credentials email sent")
	return nil
}
