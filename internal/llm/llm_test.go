package llm

import (
	"context"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"hiring-agents/internal/prompt"
)

func boundSummary(t *testing.T) prompt.Bound {
	t.Helper()
	b, err := prompt.Summary.Bind(map[string]string{prompt.KeyResumeText: "Go developer"})
	require.NoError(t, err)
	return b
}

func TestInvokeWithoutCredentials(t *testing.T) {
	gemini, err := NewGeminiInvoker(context.Background(), "  ", 0)
	require.NoError(t, err)

	invokers := []Invoker{
		gemini,
		NewOpenAIInvoker("", 0),
		NewAnthropicInvoker("", 0),
	}

	for _, inv := range invokers {
		t.Run(inv.Provider(), func(t *testing.T) {
			_, err := inv.Invoke(context.Background(), boundSummary(t), ModelConfig{Model: "m", Temperature: DefaultTemperature})

			var mu *ModelUnavailableError
			require.ErrorAs(t, err, &mu)
			assert.Equal(t, ReasonMissingCredentials, mu.Reason)
			assert.Equal(t, inv.Provider(), mu.Provider)
		})
	}
}

func TestDefaultModels(t *testing.T) {
	for _, p := range []string{ProviderGemini, ProviderOpenAI, ProviderAnthropic, "unknown"} {
		summary, score := DefaultModels(p)
		assert.NotEmpty(t, summary, p)
		assert.NotEmpty(t, score, p)
	}
}

func TestGeminiResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		ModelVersion: "gemini-test-001",
		Candidates: []*genai.Candidate{{
			FinishReason: genai.FinishReasonStop,
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "planning", Thought: true},
				{FunctionCall: &genai.FunctionCall{Name: "lookup", Args: map[string]any{"q": "go"}}},
				{Text: "A"},
				nil,
				{Text: "B"},
			}},
		}},
	}

	out := geminiResponse("gemini-test", resp)

	assert.Equal(t, "gemini-test-001", out.Model)
	assert.Equal(t, "STOP", out.FinishReason)
	blocks, ok := out.Content.(BlockSequence)
	require.True(t, ok)
	require.Len(t, blocks, 4)
	assert.Equal(t, KindThought, blocks[0].Kind())
	assert.Equal(t, ToolCallBlock{Name: "lookup", Arguments: `{"q":"go"}`}, blocks[1])
	assert.Equal(t, "A\nB", Normalize(out))
}

func TestGeminiResponseWithoutCandidates(t *testing.T) {
	out := geminiResponse("m", &genai.GenerateContentResponse{})
	assert.Equal(t, "", Normalize(out))
	assert.Equal(t, "m", out.Model)
}

func TestOpenAIResponse(t *testing.T) {
	resp := &openai.ChatCompletion{
		Model: "gpt-test",
		Choices: []openai.ChatCompletionChoice{{
			FinishReason: "stop",
			Message:      openai.ChatCompletionMessage{Content: "  {\"score\": 8}  "},
		}},
	}

	out := openAIResponse(resp)

	assert.Equal(t, PlainText("  {\"score\": 8}  "), out.Content)
	assert.Equal(t, "stop", out.FinishReason)
	assert.Equal(t, `{"score": 8}`, Normalize(out))
}

func TestOpenAIResponseRefusal(t *testing.T) {
	resp := &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Refusal: "I can't help with that"},
		}},
	}
	assert.Equal(t, "", Normalize(openAIResponse(resp)))
	assert.Equal(t, "", Normalize(openAIResponse(&openai.ChatCompletion{})))
}

func TestAnthropicResponse(t *testing.T) {
	msg := &anthropic.Message{
		Model:      "claude-test",
		StopReason: "end_turn",
		Content: []anthropic.ContentBlockUnion{
			{Type: "thinking", Thinking: "hmm"},
			{Type: "tool_use", ID: "toolu_1", Name: "lookup"},
			{Type: "text", Text: "A"},
			{Type: "redacted_thinking"},
			{Type: "text", Text: "B"},
		},
	}

	out := anthropicResponse(msg)

	assert.Equal(t, "claude-test", out.Model)
	assert.Equal(t, "end_turn", out.FinishReason)
	blocks, ok := out.Content.(BlockSequence)
	require.True(t, ok)
	require.Len(t, blocks, 5)
	assert.Equal(t, KindToolCall, blocks[1].Kind())
	assert.Equal(t, BlockKind("redacted_thinking"), blocks[3].Kind())
	assert.Equal(t, "A\nB", Normalize(out))
}
