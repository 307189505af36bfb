package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"hiring-agents/internal/app"
	"hiring-agents/internal/httputil"
)

func main() {
	deps, err := app.Build(context.Background(), app.WithPipeline, app.WithBlob)
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", deps.Config.Port),
		Handler:           newRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
	deps.Log.Info("gateway listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil {
		deps.Log.Error("server failed", "err", err)
	}
}

func newRouter(deps app.Deps) *chi.Mux {
	r := httputil.NewRouter(deps.Log)

	r.Route("/api/candidates", func(r chi.Router) {
		r.Post("/", createCandidateHandler(deps))
		r.Post("/upload", uploadCandidateHandler(deps))
		r.Get("/", listCandidatesHandler(deps))
		r.Get("/{id}", getCandidateHandler(deps))
		r.Get("/{id}/resume", resumeHandler(deps))
		r.Get("/{id}/interview", interviewHandler(deps))
		r.Put("/{id}/conversation", conversationHandler(deps))
	})
	r.Post("/api/login", loginHandler(deps))
	r.Post("/api/score_conversation", scoreConversationHandler(deps))
	r.Get("/healthz", httputil.HealthHandler(deps))

	return r
}
