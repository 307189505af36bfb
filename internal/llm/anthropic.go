package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"hiring-agents/internal/prompt"
)

const anthropicMaxTokens = 4096

// AnthropicInvoker calls the Anthropic Messages API.
type AnthropicInvoker struct {
	client  *anthropic.Client
	timeout time.Duration
}

// NewAnthropicInvoker builds an invoker. An empty apiKey is accepted; every
// Invoke then fails with ReasonMissingCredentials without touching the network.
func NewAnthropicInvoker(apiKey string, timeout time.Duration) *AnthropicInvoker {
	a := &AnthropicInvoker{timeout: orDefaultTimeout(timeout)}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return a
	}
	cli := anthropic.NewClient(option.WithAPIKey(apiKey))
	a.client = &cli
	return a
}

func (a *AnthropicInvoker) Provider() string { return ProviderAnthropic }

func (a *AnthropicInvoker) Invoke(ctx context.Context, p prompt.Bound, cfg ModelConfig) (Response, error) {
	if a == nil || a.client == nil {
		return Response{}, missingCredentials(ProviderAnthropic)
	}
	reqCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	msg, err := a.client.Messages.New(reqCtx, anthropic.MessageNewParams{
		Model:       anthropic.Model(cfg.Model),
		MaxTokens:   anthropicMaxTokens,
		Temperature: anthropic.Float(float64(cfg.Temperature)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(p.Text())),
		},
	})
	if err != nil {
		status := 0
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		return Response{}, unavailable(reqCtx, ProviderAnthropic, status, err)
	}
	return anthropicResponse(msg), nil
}

func anthropicResponse(msg *anthropic.Message) Response {
	if msg == nil {
		return Response{Content: RawContent{}}
	}
	out := Response{Model: string(msg.Model), FinishReason: string(msg.StopReason)}
	blocks := make(BlockSequence, 0, len(msg.Content))
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			blocks = append(blocks, TextBlock{Text: block.Text})
		case "tool_use":
			args, _ := json.Marshal(block.Input)
			blocks = append(blocks, ToolCallBlock{ID: block.ID, Name: block.Name, Arguments: string(args)})
		case "thinking":
			blocks = append(blocks, ThoughtBlock{Text: block.Thinking})
		default:
			blocks = append(blocks, OpaqueBlock{Type: block.Type})
		}
	}
	out.Content = blocks
	return out
}
