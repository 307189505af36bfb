package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration shared by every service.
type Config struct {
	// Server
	Port       int    `env:"PORT" envDefault:"8080"`
	HealthPort int    `env:"HEALTH_PORT" envDefault:"8081"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	// Upload limits
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"` // 10MB in bytes

	// Store
	DBURL string `env:"DB_URL"`

	// Queue
	QueueProvider string `env:"QUEUE_PROVIDER" envDefault:"nats"` // "nats" or "rabbitmq"
	QueueURL      string `env:"QUEUE_URL"`

	// LLM
	LLMProvider    string        `env:"LLM_PROVIDER" envDefault:"gemini"` // "gemini", "openai" or "anthropic"
	GoogleAPIKey   string        `env:"GOOGLE_API_KEY"`
	OpenAIKey      string        `env:"OPENAI_API_KEY"`
	AnthropicKey   string        `env:"ANTHROPIC_API_KEY"`
	SummaryModel   string        `env:"SUMMARY_MODEL"` // provider default when empty
	ScoreModel     string        `env:"SCORE_MODEL"`
	LLMTemperature float32       `env:"LLM_TEMPERATURE" envDefault:"0.3"`
	LLMTimeout     time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`

	// Summary cache
	RedisAddr       string        `env:"REDIS_ADDR"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	SummaryCacheTTL time.Duration `env:"SUMMARY_CACHE_TTL" envDefault:"168h"`

	// Resume archive
	BlobProvider      string `env:"BLOB_PROVIDER" envDefault:"none"` // "none" or "s3"
	S3Bucket          string `env:"S3_BUCKET"`
	S3Region          string `env:"S3_REGION" envDefault:"auto"`
	S3Endpoint        string `env:"S3_ENDPOINT"` // set for R2 or other S3-compatible stores
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`

	// Mail
	SMTPHost     string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SENDER_PASSWORD"`
	SenderEmail  string `env:"SENDER_EMAIL"`
	InterviewURL string `env:"INTERVIEW_URL" envDefault:"http://localhost:3000"`

	// Scorer
	ScoreSweepSpec  string `env:"SCORE_SWEEP_SPEC" envDefault:"@hourly"`
	ScoreSweepBatch int    `env:"SCORE_SWEEP_BATCH" envDefault:"50"`

	// Candidates updated more recently than this may still have a score
	// task waiting on retry backoff, so the sweep leaves them alone.
	ScoreSweepGrace time.Duration `env:"SCORE_SWEEP_GRACE" envDefault:"15m"`
}

// APIKey returns the credential for the configured LLM provider.
func (c Config) APIKey() string {
	switch c.LLMProvider {
	case "openai":
		return c.OpenAIKey
	case "anthropic":
		return c.AnthropicKey
	default:
		return c.GoogleAPIKey
	}
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}
