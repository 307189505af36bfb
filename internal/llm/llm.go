// Package llm invokes generative text models and reduces their responses to
// canonical text.
package llm

import (
	"context"
	"time"

	"hiring-agents/internal/prompt"
)

// Supported providers.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

const (
	// DefaultTemperature biases models toward deterministic, format-compliant output.
	DefaultTemperature float32 = 0.3
	defaultTimeout             = 60 * time.Second
)

// ModelConfig selects the model and sampling parameters for one invocation.
type ModelConfig struct {
	Model       string
	Temperature float32
}

// Invoker sends a bound prompt as a single user message and returns the raw
// response. Implementations make exactly one round-trip and never retry.
type Invoker interface {
	Invoke(ctx context.Context, p prompt.Bound, cfg ModelConfig) (Response, error)
	Provider() string
}

// DefaultModels returns the summary and score models used when none are configured.
func DefaultModels(provider string) (summary, score string) {
	switch provider {
	case ProviderOpenAI:
		return "gpt-4o-mini", "gpt-4o-mini"
	case ProviderAnthropic:
		return "claude-3-5-haiku-latest", "claude-3-5-haiku-latest"
	default:
		return "gemini-2.5-flash-lite", "gemini-flash-latest"
	}
}

func orDefaultTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultTimeout
	}
	return d
}
