package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/streadway/amqp"

	"hiring-agents/internal/blob"
	"hiring-agents/internal/cache"
	"hiring-agents/internal/config"
	"hiring-agents/internal/llm"
	"hiring-agents/internal/logger"
	"hiring-agents/internal/notify"
	"hiring-agents/internal/pipeline"
	"hiring-agents/internal/queue"
	"hiring-agents/internal/retry"
	"hiring-agents/internal/store"
)

// Component selects optional dependencies for Build.
type Component int

const (
	WithPipeline Component = iota
	WithCache
	WithBlob
	WithMailer
)

// Deps bundles common runtime dependencies for services. Optional fields are
// nil unless requested from Build.
type Deps struct {
	Config   config.Config
	Log      *slog.Logger
	Store    store.Store
	Queue    queue.Queue
	Pipeline pipeline.Runner
	Cache    cache.Cache
	Blob     blob.Store
	Mailer   notify.Sender
}

// Build loads env, config, and shared components plus any optional ones.
func Build(ctx context.Context, components ...Component) (Deps, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Deps{}, fmt.Errorf("failed to load environment variables: %w", err)
	}
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	st, err := buildStore(ctx, cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	deps := Deps{Config: cfg, Log: log, Store: st}
	if deps.Queue, err = buildQueue(ctx, cfg, log); err != nil {
		deps.Close()
		return Deps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	return assemble(ctx, deps, components...)
}

// assemble adds the optional components to deps. On failure everything
// already opened in deps is closed.
func assemble(ctx context.Context, deps Deps, components ...Component) (Deps, error) {
	if err := deps.add(ctx, components...); err != nil {
		deps.Close()
		return Deps{}, err
	}
	return deps, nil
}

func (d *Deps) add(ctx context.Context, components ...Component) error {
	var err error
	for _, c := range components {
		switch c {
		case WithPipeline:
			if d.Pipeline, err = BuildPipeline(ctx, d.Config, d.Log); err != nil {
				return fmt.Errorf("failed to initialize pipeline: %w", err)
			}
		case WithCache:
			d.Cache = buildCache(d.Config, d.Log)
		case WithBlob:
			if d.Blob, err = buildBlob(ctx, d.Config, d.Log); err != nil {
				return fmt.Errorf("failed to initialize blob store: %w", err)
			}
		case WithMailer:
			if d.Mailer, err = buildMailer(d.Config, d.Log); err != nil {
				return fmt.Errorf("failed to initialize mailer: %w", err)
			}
		}
	}
	return nil
}

func buildStore(ctx context.Context, cfg config.Config, log *slog.Logger) (store.Store, error) {
	if cfg.DBURL == "" {
		return nil, errors.New("DB_URL is required")
	}
	db, err := store.NewPostgres(ctx, cfg.DBURL, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
	}
	log.Info("using Postgres store")
	return db, nil
}

func buildQueue(ctx context.Context, cfg config.Config, log *slog.Logger) (queue.Queue, error) {
	if cfg.QueueURL == "" {
		return nil, fmt.Errorf("QUEUE_URL is required when QUEUE_PROVIDER=%s", cfg.QueueProvider)
	}
	switch cfg.QueueProvider {
	case "nats":
		nc, err := retry.Value(ctx, 5, 500*time.Millisecond, func(context.Context) (*nats.Conn, error) {
			return nats.Connect(cfg.QueueURL)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS queue")
		return queue.NewNATS(log, nc), nil
	case "rabbitmq":
		conn, err := retry.Value(ctx, 5, 500*time.Millisecond, func(context.Context) (*amqp.Connection, error) {
			return amqp.Dial(cfg.QueueURL)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		log.Info("using RabbitMQ queue")
		return queue.NewAMQP(log, conn)
	default:
		return nil, fmt.Errorf("invalid QUEUE_PROVIDER: %s (valid options: nats, rabbitmq)", cfg.QueueProvider)
	}
}

// BuildInvoker selects the model provider. A missing API key is not fatal:
// the invoker reports ModelUnavailableError on use so the service can still
// start and serve its other routes.
func BuildInvoker(ctx context.Context, cfg config.Config, log *slog.Logger) (llm.Invoker, error) {
	if cfg.APIKey() == "" {
		log.Warn("LLM API key is not set; model calls will fail", "provider", cfg.LLMProvider)
	}
	switch cfg.LLMProvider {
	case llm.ProviderGemini:
		inv, err := llm.NewGeminiInvoker(ctx, cfg.GoogleAPIKey, cfg.LLMTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
		}
		return inv, nil
	case llm.ProviderOpenAI:
		return llm.NewOpenAIInvoker(cfg.OpenAIKey, cfg.LLMTimeout), nil
	case llm.ProviderAnthropic:
		return llm.NewAnthropicInvoker(cfg.AnthropicKey, cfg.LLMTimeout), nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid options: gemini, openai, anthropic)", cfg.LLMProvider)
	}
}

// BuildPipeline wires the invoker into the summarize and score pipeline.
func BuildPipeline(ctx context.Context, cfg config.Config, log *slog.Logger) (*pipeline.Pipeline, error) {
	inv, err := BuildInvoker(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	p, err := pipeline.New(inv, pipeline.Config{
		Summary: llm.ModelConfig{Model: cfg.SummaryModel, Temperature: cfg.LLMTemperature},
		Score:   llm.ModelConfig{Model: cfg.ScoreModel, Temperature: cfg.LLMTemperature},
	}, log)
	if err != nil {
		return nil, err
	}
	log.Info("using LLM pipeline", "provider", inv.Provider())
	return p, nil
}

func buildCache(cfg config.Config, log *slog.Logger) cache.Cache {
	if cfg.RedisAddr == "" {
		log.Info("summary cache disabled")
		return cache.NewNoOpCache()
	}
	c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Warn("redis unavailable; summary cache disabled", "err", err)
		return cache.NewNoOpCache()
	}
	log.Info("using Redis summary cache", "addr", cfg.RedisAddr)
	return c
}

func buildBlob(ctx context.Context, cfg config.Config, log *slog.Logger) (blob.Store, error) {
	switch cfg.BlobProvider {
	case "none", "":
		log.Info("resume archive disabled")
		return blob.NewNoOpStore(), nil
	case "s3":
		s, err := blob.NewS3(ctx, blob.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		log.Info("using S3 resume archive", "bucket", cfg.S3Bucket)
		return s, nil
	default:
		return nil, fmt.Errorf("invalid BLOB_PROVIDER: %s (valid options: none, s3)", cfg.BlobProvider)
	}
}

func buildMailer(cfg config.Config, log *slog.Logger) (notify.Sender, error) {
	m, err := notify.NewSMTPSender(notify.SMTPConfig{
		Host:         cfg.SMTPHost,
		Port:         cfg.SMTPPort,
		Username:     cfg.SMTPUsername,
		Password:     cfg.SMTPPassword,
		From:         cfg.SenderEmail,
		InterviewURL: cfg.InterviewURL,
	})
	if err != nil {
		return nil, err
	}
	log.Info("using SMTP mailer", "host", cfg.SMTPHost, "port", cfg.SMTPPort)
	return m, nil
}

// Close releases the queue, cache and database connections that were built.
func (d Deps) Close() {
	if d.Queue != nil {
		if err := d.Queue.Close(); err != nil {
			d.Log.Warn("failed to close queue", "err", err)
		}
	}
	if d.Cache != nil {
		if err := d.Cache.Close(); err != nil {
			d.Log.Warn("failed to close cache", "err", err)
		}
	}
	if c, ok := d.Store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			d.Log.Warn("failed to close store", "err", err)
		}
	}
}
