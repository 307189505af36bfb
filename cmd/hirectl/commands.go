package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"hiring-agents/internal/contract"
	"hiring-agents/internal/extract"
	"hiring-agents/internal/pipeline"
)

type runnerFactory func(ctx context.Context, provider string) (pipeline.Runner, error)

var (
	heading = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	failure = color.New(color.FgRed, color.Bold)
)

func newRootCmd(newRunner runnerFactory) *cobra.Command {
	var provider string
	root := &cobra.Command{
		Use:           "hirectl",
		Short:         "Summarize resumes and score interview transcripts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&provider, "provider", "", "model provider override (gemini, openai, anthropic)")

	runner := func(cmd *cobra.Command) (pipeline.Runner, error) {
		return newRunner(cmd.Context(), provider)
	}
	root.AddCommand(newSummarizeCmd(runner), newScoreCmd(runner))
	return root
}

func newSummarizeCmd(runner func(*cobra.Command) (pipeline.Runner, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <resume-file>",
		Short: "Summarize a PDF, DOCX, HTML or text resume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readResume(args[0])
			if err != nil {
				return report(cmd, err)
			}
			p, err := runner(cmd)
			if err != nil {
				return report(cmd, err)
			}
			summary, err := p.Summarize(cmd.Context(), doc.Text)
			if err != nil {
				return report(cmd, err)
			}
			if summary == "" {
				return report(cmd, fmt.Errorf("model returned an empty summary for %s", args[0]))
			}
			out := cmd.OutOrStdout()
			heading.Fprintf(out, "Summary of %s\n", filepath.Base(args[0]))
			fmt.Fprintln(out, summary)
			if len(doc.Links) > 0 {
				heading.Fprintln(out, "Links")
				for _, l := range doc.Links {
					fmt.Fprintf(out, "  %s\n", l)
				}
			}
			return nil
		},
	}
}

func newScoreCmd(runner func(*cobra.Command) (pipeline.Runner, error)) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "score <transcript-file>",
		Short: "Score an interview transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return report(cmd, err)
			}
			p, err := runner(cmd)
			if err != nil {
				return report(cmd, err)
			}
			rec, err := p.Score(cmd.Context(), string(data))
			if err != nil {
				return report(cmd, err)
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rec)
			}
			success.Fprintf(out, "Score: %d\n", rec.Score())
			heading.Fprintln(out, "Analysis")
			fmt.Fprintln(out, rec.Analysis())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the score record as JSON")
	return cmd
}

func readResume(path string) (extract.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return extract.Document{}, err
	}
	format, err := extract.Detect(path, "")
	if err != nil {
		return extract.Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return extract.Resume(format, data)
}

// report prints err to stderr, including the model output that broke the
// score contract, and returns it.
func report(cmd *cobra.Command, err error) error {
	errOut := cmd.ErrOrStderr()
	failure.Fprintf(errOut, "error: %v\n", err)
	if text := contract.OffendingText(err); text != "" {
		fmt.Fprintf(errOut, "model output:\n%s\n", text)
	}
	return err
}
