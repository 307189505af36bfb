package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"hiring-agents/internal/prompt"
)

// GeminiInvoker calls the Gemini API through the genai SDK.
type GeminiInvoker struct {
	client  *genai.Client
	timeout time.Duration
}

// NewGeminiInvoker builds an invoker. An empty apiKey is accepted; every
// Invoke then fails with ReasonMissingCredentials without touching the network.
func NewGeminiInvoker(ctx context.Context, apiKey string, timeout time.Duration) (*GeminiInvoker, error) {
	g := &GeminiInvoker{timeout: orDefaultTimeout(timeout)}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return g, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	g.client = client
	return g, nil
}

func (g *GeminiInvoker) Provider() string { return ProviderGemini }

func (g *GeminiInvoker) Invoke(ctx context.Context, p prompt.Bound, cfg ModelConfig) (Response, error) {
	if g == nil || g.client == nil {
		return Response{}, missingCredentials(ProviderGemini)
	}
	reqCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	temperature := cfg.Temperature
	contents := []*genai.Content{genai.NewContentFromText(p.Text(), genai.RoleUser)}
	resp, err := g.client.Models.GenerateContent(reqCtx, cfg.Model, contents, &genai.GenerateContentConfig{
		Temperature: &temperature,
	})
	if err != nil {
		return Response{}, unavailable(reqCtx, ProviderGemini, geminiStatus(err), err)
	}
	return geminiResponse(cfg.Model, resp), nil
}

func geminiStatus(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code
	}
	return 0
}

// geminiResponse maps the first candidate's parts onto a block sequence.
func geminiResponse(model string, resp *genai.GenerateContentResponse) Response {
	out := Response{Model: model}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		out.Content = RawContent{}
		return out
	}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	cand := resp.Candidates[0]
	out.FinishReason = string(cand.FinishReason)
	if cand.Content == nil {
		out.Content = RawContent{}
		return out
	}

	blocks := make(BlockSequence, 0, len(cand.Content.Parts))
	for _, part := range cand.Content.Parts {
		if part == nil {
			continue
		}
		switch {
		case part.Thought:
			blocks = append(blocks, ThoughtBlock{Text: part.Text})
		case part.FunctionCall != nil:
			args, _ := json.Marshal(part.FunctionCall.Args)
			blocks = append(blocks, ToolCallBlock{
				ID:        part.FunctionCall.ID,
				Name:      part.FunctionCall.Name,
				Arguments: string(args),
			})
		case part.InlineData != nil:
			blocks = append(blocks, OpaqueBlock{Type: "inline_data"})
		case part.ExecutableCode != nil:
			blocks = append(blocks, OpaqueBlock{Type: "executable_code"})
		case part.CodeExecutionResult != nil:
			blocks = append(blocks, OpaqueBlock{Type: "code_execution_result"})
		default:
			blocks = append(blocks, TextBlock{Text: part.Text})
		}
	}
	out.Content = blocks
	return out
}
