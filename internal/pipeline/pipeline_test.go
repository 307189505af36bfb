package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hiring-agents/internal/contract"
	"hiring-agents/internal/llm"
	"hiring-agents/internal/prompt"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newPipeline(t *testing.T, inv llm.Invoker) *Pipeline {
	t.Helper()
	p, err := New(inv, Config{
		Summary: llm.ModelConfig{Model: "summary-model", Temperature: 0.2},
		Score:   llm.ModelConfig{Model: "score-model"},
	}, testLogger())
	require.NoError(t, err)
	return p
}

func promptContaining(s string) interface{} {
	return mock.MatchedBy(func(b prompt.Bound) bool { return strings.Contains(b.Text(), s) })
}

func TestSummarize(t *testing.T) {
	inv := new(llm.MockInvoker)
	resume := "Built a templating engine with {placeholders} and {{escapes}}."
	inv.On("Invoke", mock.Anything, promptContaining(resume), llm.ModelConfig{Model: "summary-model", Temperature: 0.2}).
		Return(llm.Response{Content: llm.PlainText("  **Role and Summary** Go developer\n")}, nil)

	p := newPipeline(t, inv)
	got, err := p.Summarize(context.Background(), resume)

	require.NoError(t, err)
	assert.Equal(t, "**Role and Summary** Go developer", got)
	inv.AssertExpectations(t)
}

func TestSummarizeBlockResponse(t *testing.T) {
	inv := new(llm.MockInvoker)
	inv.On("Invoke", mock.Anything, mock.Anything, mock.Anything).
		Return(llm.Response{Content: llm.BlockSequence{
			llm.ToolCallBlock{Name: "lookup"},
			llm.TextBlock{Text: "A"},
			llm.TextBlock{Text: "B"},
		}}, nil)

	got, err := newPipeline(t, inv).Summarize(context.Background(), "resume")

	require.NoError(t, err)
	assert.Equal(t, "A\nB", got)
}

func TestSummarizeEmptyModelOutput(t *testing.T) {
	inv := new(llm.MockInvoker)
	inv.On("Invoke", mock.Anything, mock.Anything, mock.Anything).
		Return(llm.Response{Content: llm.BlockSequence{llm.ThoughtBlock{Text: "..."}}}, nil)

	got, err := newPipeline(t, inv).Summarize(context.Background(), "resume")

	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestEmptyInputSkipsInvocation(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t"} {
		inv := new(llm.MockInvoker)
		p := newPipeline(t, inv)

		_, err := p.Summarize(context.Background(), input)
		var empty *EmptyInputError
		assert.ErrorAs(t, err, &empty)

		_, err = p.Score(context.Background(), input)
		assert.ErrorAs(t, err, &empty)

		inv.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		reply    llm.Content
		score    int
		analysis string
	}{
		{
			name:     "plain json",
			reply:    llm.PlainText(`{"score": 82, "analysis": "Strong communicator."}`),
			score:    82,
			analysis: "Strong communicator.",
		},
		{
			name:     "fenced json",
			reply:    llm.PlainText("```json\n{\"score\": 40, \"analysis\": \"Weak technical depth.\"}\n```"),
			score:    40,
			analysis: "Weak technical depth.",
		},
		{
			name: "json split over text blocks",
			reply: llm.BlockSequence{
				llm.ThoughtBlock{Text: "grading"},
				llm.TextBlock{Text: `{"score": 91,`},
				llm.TextBlock{Text: `"analysis": "Strong Hire"}`},
			},
			score:    91,
			analysis: "Strong Hire",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transcript := "USER: I use map[string]struct{} for sets."
			inv := new(llm.MockInvoker)
			inv.On("Invoke", mock.Anything, promptContaining(transcript), mock.Anything).
				Return(llm.Response{Content: tt.reply}, nil)

			rec, err := newPipeline(t, inv).Score(context.Background(), transcript)

			require.NoError(t, err)
			assert.Equal(t, tt.score, rec.Score())
			assert.Equal(t, tt.analysis, rec.Analysis())
			inv.AssertExpectations(t)
		})
	}
}

func TestScorePromptCarriesInstructions(t *testing.T) {
	inv := new(llm.MockInvoker)
	inv.On("Invoke", mock.Anything, mock.MatchedBy(func(b prompt.Bound) bool {
		text := b.Text()
		return b.Template() == "score" &&
			strings.Contains(text, "SCORING GUIDELINES") &&
			strings.Contains(text, "\"score\": <number between 0 and 100>")
	}), mock.Anything).Return(llm.Response{Content: llm.PlainText(`{"score": 1, "analysis": "x"}`)}, nil)

	_, err := newPipeline(t, inv).Score(context.Background(), "USER: hi")

	require.NoError(t, err)
	inv.AssertExpectations(t)
}

func TestScoreContractViolations(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		check func(t *testing.T, err error)
	}{
		{
			name:  "schema",
			reply: `{"analysis": "missing score"}`,
			check: func(t *testing.T, err error) {
				var se *contract.SchemaError
				assert.ErrorAs(t, err, &se)
			},
		},
		{
			name:  "formatting",
			reply: "not json at all",
			check: func(t *testing.T, err error) {
				var fe *contract.FormattingError
				assert.ErrorAs(t, err, &fe)
				assert.Equal(t, "not json at all", contract.OffendingText(err))
			},
		},
		{
			name:  "type",
			reply: `{"score": "excellent", "analysis": "x"}`,
			check: func(t *testing.T, err error) {
				var te *contract.TypeError
				assert.ErrorAs(t, err, &te)
			},
		},
		{
			name:  "empty output",
			reply: "",
			check: func(t *testing.T, err error) {
				var fe *contract.FormattingError
				assert.ErrorAs(t, err, &fe)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := new(llm.MockInvoker)
			inv.On("Invoke", mock.Anything, mock.Anything, mock.Anything).
				Return(llm.Response{Content: llm.PlainText(tt.reply)}, nil)

			rec, err := newPipeline(t, inv).Score(context.Background(), "USER: hello")

			require.Error(t, err)
			assert.True(t, contract.IsViolation(err))
			assert.Equal(t, contract.ScoreRecord{}, rec)
			tt.check(t, err)
		})
	}
}

func TestModelUnavailablePropagates(t *testing.T) {
	unavailable := &llm.ModelUnavailableError{Provider: "mock", Reason: llm.ReasonRateLimited, Err: errors.New("slow down")}
	inv := new(llm.MockInvoker)
	inv.On("Invoke", mock.Anything, mock.Anything, mock.Anything).Return(llm.Response{}, unavailable)
	p := newPipeline(t, inv)

	_, err := p.Summarize(context.Background(), "resume")
	assert.Same(t, unavailable, err)

	_, err = p.Score(context.Background(), "USER: hi")
	assert.Same(t, unavailable, err)
}

func TestMissingCredentialsBeforeNetwork(t *testing.T) {
	gemini, err := llm.NewGeminiInvoker(context.Background(), "", 0)
	require.NoError(t, err)

	for _, inv := range []llm.Invoker{gemini, llm.NewOpenAIInvoker("", 0), llm.NewAnthropicInvoker("", 0)} {
		t.Run(inv.Provider(), func(t *testing.T) {
			p, err := New(inv, Config{}, testLogger())
			require.NoError(t, err)

			_, err = p.Summarize(context.Background(), "resume")
			var mu *llm.ModelUnavailableError
			require.ErrorAs(t, err, &mu)
			assert.Equal(t, llm.ReasonMissingCredentials, mu.Reason)

			_, err = p.Score(context.Background(), "USER: hi")
			require.ErrorAs(t, err, &mu)
			assert.Equal(t, llm.ReasonMissingCredentials, mu.Reason)
		})
	}
}

func TestNewDefaults(t *testing.T) {
	inv := new(llm.MockInvoker)
	p, err := New(inv, Config{}, nil)
	require.NoError(t, err)

	summary, score := llm.DefaultModels("mock")
	assert.Equal(t, summary, p.cfg.Summary.Model)
	assert.Equal(t, score, p.cfg.Score.Model)
	assert.Zero(t, p.cfg.Score.Temperature)
	assert.Equal(t, prompt.ScoringGuidelines, p.cfg.ScoringInstructions)
	assert.Equal(t, "summary", p.cfg.Templates.Summary.Name())
}

func TestSummarizeKeepsZeroTemperature(t *testing.T) {
	inv := new(llm.MockInvoker)
	p, err := New(inv, Config{Summary: llm.ModelConfig{Model: "summary-model"}}, testLogger())
	require.NoError(t, err)

	inv.On("Invoke", mock.Anything, mock.Anything, llm.ModelConfig{Model: "summary-model", Temperature: 0}).
		Return(llm.Response{Content: llm.PlainText("Role: Go engineer")}, nil).Once()

	_, err = p.Summarize(context.Background(), "Ada Lovelace")
	require.NoError(t, err)
	inv.AssertExpectations(t)
}

func TestNewRejectsTemplateMismatch(t *testing.T) {
	inv := new(llm.MockInvoker)

	_, err := New(inv, Config{Templates: Templates{
		Summary: prompt.MustParse("custom-summary", "Summarize {resume_text} for {audience}"),
	}}, testLogger())

	var missing *prompt.MissingPlaceholderError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"audience"}, missing.Names)

	_, err = New(nil, Config{}, testLogger())
	assert.Error(t, err)
}
