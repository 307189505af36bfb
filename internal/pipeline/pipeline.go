// Package pipeline composes prompt binding, model invocation, normalization
// and validation into the summarize and score operations.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"hiring-agents/internal/contract"
	"hiring-agents/internal/llm"
	"hiring-agents/internal/prompt"
)

// EmptyInputError is returned when the caller supplies blank text. No model
// call is made.
type EmptyInputError struct {
	Field string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("%s is empty", e.Field)
}

// Runner is the caller-facing surface of the pipeline.
type Runner interface {
	Summarize(ctx context.Context, resumeText string) (string, error)
	Score(ctx context.Context, conversationText string) (contract.ScoreRecord, error)
}

// Templates are the instruction templates used by each operation.
type Templates struct {
	Summary prompt.Template
	Score   prompt.Template
}

// DefaultTemplates returns the built-in summary and score templates.
func DefaultTemplates() Templates {
	return Templates{Summary: prompt.Summary, Score: prompt.Score}
}

// Config selects models and templates. Zero fields fall back to defaults.
type Config struct {
	Summary             llm.ModelConfig
	Score               llm.ModelConfig
	ScoringInstructions string
	Templates           Templates
}

// Pipeline implements Runner on top of an llm.Invoker. It holds no mutable
// state and is safe for concurrent use.
type Pipeline struct {
	inv llm.Invoker
	cfg Config
	log *slog.Logger
}

// New validates the templates against the values each operation supplies.
// A mismatch is a build-time defect and is returned as an error.
func New(inv llm.Invoker, cfg Config, log *slog.Logger) (*Pipeline, error) {
	if inv == nil {
		return nil, errors.New("pipeline: nil invoker")
	}
	if log == nil {
		log = slog.Default()
	}
	if cfg.Templates.Summary.Name() == "" {
		cfg.Templates.Summary = prompt.Summary
	}
	if cfg.Templates.Score.Name() == "" {
		cfg.Templates.Score = prompt.Score
	}
	if cfg.ScoringInstructions == "" {
		cfg.ScoringInstructions = prompt.ScoringGuidelines
	}
	summaryModel, scoreModel := llm.DefaultModels(inv.Provider())
	if cfg.Summary.Model == "" {
		cfg.Summary.Model = summaryModel
	}
	if cfg.Score.Model == "" {
		cfg.Score.Model = scoreModel
	}

	if err := cfg.Templates.Summary.Require(prompt.KeyResumeText); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	if err := cfg.Templates.Score.Require(prompt.KeyConversationText, prompt.KeyScoringInstructions); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	return &Pipeline{inv: inv, cfg: cfg, log: log}, nil
}

// Summarize returns the model's summary of resumeText. An empty result is
// returned as "" with a nil error; callers decide how to treat it.
func (p *Pipeline) Summarize(ctx context.Context, resumeText string) (string, error) {
	if strings.TrimSpace(resumeText) == "" {
		return "", &EmptyInputError{Field: "resume text"}
	}
	bound, err := p.cfg.Templates.Summary.Bind(map[string]string{
		prompt.KeyResumeText: resumeText,
	})
	if err != nil {
		return "", err
	}

	resp, err := p.inv.Invoke(ctx, bound, p.cfg.Summary)
	if err != nil {
		return "", err
	}
	text := llm.Normalize(resp)
	if text == "" {
		p.log.Warn("model returned empty summary", "model", resp.Model, "finish_reason", resp.FinishReason)
	}
	return text, nil
}

// Score asks the model to grade conversationText and validates the reply.
func (p *Pipeline) Score(ctx context.Context, conversationText string) (contract.ScoreRecord, error) {
	if strings.TrimSpace(conversationText) == "" {
		return contract.ScoreRecord{}, &EmptyInputError{Field: "conversation text"}
	}
	bound, err := p.cfg.Templates.Score.Bind(map[string]string{
		prompt.KeyConversationText:    conversationText,
		prompt.KeyScoringInstructions: p.cfg.ScoringInstructions,
	})
	if err != nil {
		return contract.ScoreRecord{}, err
	}

	resp, err := p.inv.Invoke(ctx, bound, p.cfg.Score)
	if err != nil {
		return contract.ScoreRecord{}, err
	}
	text := llm.Normalize(resp)

	res := contract.Validate(text)
	if !res.OK() {
		p.log.Warn("score output rejected",
			"kind", res.Kind().String(),
			"err", res.Err(),
			"model", resp.Model,
			"text", text)
		return contract.ScoreRecord{}, res.Err()
	}
	return res.Record(), nil
}
