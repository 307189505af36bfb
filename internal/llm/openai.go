package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"hiring-agents/internal/prompt"
)

// OpenAIInvoker calls the OpenAI Chat Completions API.
type OpenAIInvoker struct {
	client  *openai.Client
	timeout time.Duration
}

// NewOpenAIInvoker builds an invoker. An empty apiKey is accepted; every
// Invoke then fails with ReasonMissingCredentials without touching the network.
func NewOpenAIInvoker(apiKey string, timeout time.Duration) *OpenAIInvoker {
	o := &OpenAIInvoker{timeout: orDefaultTimeout(timeout)}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return o
	}
	cli := openai.NewClient(option.WithAPIKey(apiKey))
	o.client = &cli
	return o
}

func (o *OpenAIInvoker) Provider() string { return ProviderOpenAI }

func (o *OpenAIInvoker) Invoke(ctx context.Context, p prompt.Bound, cfg ModelConfig) (Response, error) {
	if o == nil || o.client == nil {
		return Response{}, missingCredentials(ProviderOpenAI)
	}
	reqCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.client.Chat.Completions.New(reqCtx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(cfg.Model),
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(p.Text())},
		Temperature: openai.Float(float64(cfg.Temperature)),
	})
	if err != nil {
		status := 0
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		return Response{}, unavailable(reqCtx, ProviderOpenAI, status, err)
	}
	return openAIResponse(resp), nil
}

// openAIResponse keeps plain message content as PlainText and switches to a
// block sequence only when the model also requested tool calls.
func openAIResponse(resp *openai.ChatCompletion) Response {
	if resp == nil || len(resp.Choices) == 0 {
		return Response{Content: RawContent{}}
	}
	choice := resp.Choices[0]
	out := Response{Model: resp.Model, FinishReason: string(choice.FinishReason)}
	msg := choice.Message

	if len(msg.ToolCalls) == 0 {
		if msg.Content == "" && msg.Refusal != "" {
			out.Content = BlockSequence{OpaqueBlock{Type: "refusal"}}
			return out
		}
		out.Content = PlainText(msg.Content)
		return out
	}

	blocks := make(BlockSequence, 0, len(msg.ToolCalls)+1)
	if msg.Content != "" {
		blocks = append(blocks, TextBlock{Text: msg.Content})
	}
	for _, tc := range msg.ToolCalls {
		blocks = append(blocks, ToolCallBlock{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	out.Content = blocks
	return out
}
