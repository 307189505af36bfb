package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hiring-agents/internal/contract"
	"hiring-agents/internal/pipeline"
)

func init() {
	color.NoColor = true
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, r pipeline.Runner, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := newRootCmd(func(ctx context.Context, provider string) (pipeline.Runner, error) {
		return r, nil
	})
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestSummarizeCommand(t *testing.T) {
	path := writeFile(t, "cv.txt", "Ada Lovelace\nhttps://ada.dev\n")
	runner := new(pipeline.MockRunner)
	runner.On("Summarize", mock.Anything, "Ada Lovelace\nhttps://ada.dev").Return("Role: engineer", nil).Once()

	out, _, err := run(t, runner, "summarize", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Summary of cv.txt")
	assert.Contains(t, out, "Role: engineer")
	assert.Contains(t, out, "https://ada.dev")
	runner.AssertExpectations(t)
}

func TestSummarizeCommandErrors(t *testing.T) {
	t.Run("unsupported file", func(t *testing.T) {
		path := writeFile(t, "cv.exe", "MZ")
		_, errOut, err := run(t, new(pipeline.MockRunner), "summarize", path)
		assert.Error(t, err)
		assert.Contains(t, errOut, "error:")
	})

	t.Run("empty summary", func(t *testing.T) {
		path := writeFile(t, "cv.txt", "Ada")
		runner := new(pipeline.MockRunner)
		runner.On("Summarize", mock.Anything, "Ada").Return("", nil).Once()
		_, errOut, err := run(t, runner, "summarize", path)
		assert.Error(t, err)
		assert.Contains(t, errOut, "empty summary")
	})

	t.Run("missing argument", func(t *testing.T) {
		_, _, err := run(t, new(pipeline.MockRunner), "summarize")
		assert.Error(t, err)
	})
}

func TestScoreCommand(t *testing.T) {
	path := writeFile(t, "interview.txt", "USER: I know Go.")
	record := contract.Validate(`{"score": 64, "analysis": "Borderline"}`).Record()

	t.Run("text output", func(t *testing.T) {
		runner := new(pipeline.MockRunner)
		runner.On("Score", mock.Anything, "USER: I know Go.").Return(record, nil).Once()

		out, _, err := run(t, runner, "score", path)

		require.NoError(t, err)
		assert.Contains(t, out, "Score: 64")
		assert.Contains(t, out, "Borderline")
	})

	t.Run("json output", func(t *testing.T) {
		runner := new(pipeline.MockRunner)
		runner.On("Score", mock.Anything, "USER: I know Go.").Return(record, nil).Once()

		out, _, err := run(t, runner, "score", "--json", path)

		require.NoError(t, err)
		assert.JSONEq(t, `{"score": 64, "analysis": "Borderline"}`, out)
	})

	t.Run("contract violation shows model output", func(t *testing.T) {
		runner := new(pipeline.MockRunner)
		runner.On("Score", mock.Anything, "USER: I know Go.").
			Return(contract.ScoreRecord{}, contract.Validate("Sure! Here is the score: 64").Err()).Once()

		_, errOut, err := run(t, runner, "score", path)

		assert.True(t, contract.IsViolation(err))
		assert.Contains(t, errOut, "Sure! Here is the score: 64")
	})

	t.Run("runner construction failure", func(t *testing.T) {
		cmd := newRootCmd(func(ctx context.Context, provider string) (pipeline.Runner, error) {
			return nil, errors.New("invalid LLM_PROVIDER")
		})
		cmd.SetOut(new(bytes.Buffer))
		cmd.SetErr(new(bytes.Buffer))
		cmd.SetArgs([]string{"score", path})
		assert.Error(t, cmd.ExecuteContext(context.Background()))
	})
}

func TestProviderFlag(t *testing.T) {
	path := writeFile(t, "interview.txt", "USER: hi")
	var got string
	cmd := newRootCmd(func(ctx context.Context, provider string) (pipeline.Runner, error) {
		got = provider
		return nil, errors.New("stop")
	})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"--provider", "anthropic", "score", path})

	_ = cmd.ExecuteContext(context.Background())

	assert.Equal(t, "anthropic", got)
}
