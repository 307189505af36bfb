// Command hirectl runs the resume summary and interview scoring pipeline on
// local files.
package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"hiring-agents/internal/app"
	"hiring-agents/internal/config"
	"hiring-agents/internal/logger"
	"hiring-agents/internal/pipeline"
)

func main() {
	_ = godotenv.Load()
	cmd := newRootCmd(func(ctx context.Context, provider string) (pipeline.Runner, error) {
		cfg := config.Load()
		if provider != "" {
			cfg.LLMProvider = provider
		}
		return app.BuildPipeline(ctx, cfg, logger.New(cfg.LogLevel))
	})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
