package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/ghaworkflow/internal/decode"
	"github.com/mrz1836/ghaworkflow/internal/errors"
	"github.com/mrz1836/ghaworkflow/internal/loader"
	"github.com/mrz1836/ghaworkflow/internal/tui"
)

// AddCheckCommand adds the check command to the root command.
func AddCheckCommand(root *cobra.Command, flags *GlobalFlags) {
	root.AddCommand(newCheckCmd(flags))
}

func newCheckCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check [files...]",
		Short: "Check that workflow files decode",
		Long: `Decode every given workflow file and report a pass or fail line per file.

Unlike decode, a failing file does not stop the others. The command exits
with status 1 when any file fails.

Examples:
  ghaworkflow check
  ghaworkflow check .github/workflows/*.yml
  ghaworkflow check -o json ci.yml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), args, flags.Output, cmd.OutOrStdout())
		},
	}
}

// CheckResult is the outcome for one file in json and yaml output.
type CheckResult struct {
	File       string      `json:"file" yaml:"file"`
	OK         bool        `json:"ok" yaml:"ok"`
	DurationMs int64       `json:"duration_ms" yaml:"duration_ms"`
	Error      *CheckError `json:"error,omitempty" yaml:"error,omitempty"`
}

// CheckError describes why a file failed. Decode failures carry the
// kind, path and position; read and parse failures carry only Message.
type CheckError struct {
	Message string   `json:"message" yaml:"message"`
	Kind    string   `json:"kind,omitempty" yaml:"kind,omitempty"`
	Path    string   `json:"path,omitempty" yaml:"path,omitempty"`
	Line    int      `json:"line,omitempty" yaml:"line,omitempty"`
	Column  int      `json:"column,omitempty" yaml:"column,omitempty"`
	Detail  string   `json:"detail,omitempty" yaml:"detail,omitempty"`
	Tried   []string `json:"tried,omitempty" yaml:"tried,omitempty"`
}

func newCheckError(err error) *CheckError {
	ce := &CheckError{Message: err.Error()}
	if de, ok := decode.AsError(err); ok {
		ce.Kind = de.Kind.Error()
		ce.Path = de.Path.String()
		ce.Line = de.Pos.Line
		ce.Column = de.Pos.Column
		ce.Detail = de.Detail
		ce.Tried = de.Tried
	}
	return ce
}

func runCheck(ctx context.Context, args []string, format string, w io.Writer) error {
	cfg := ConfigFromContext(ctx)
	l := loader.New("", cfg.DecodeOptions(), loader.WithConcurrency(cfg.Concurrency))

	paths, err := resolvePaths(l, args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.ErrNoInputFiles
	}

	results := l.Collect(ctx, paths)
	report := make([]CheckResult, len(results))
	failed := 0
	for i, r := range results {
		report[i] = CheckResult{File: r.Path, OK: r.OK(), DurationMs: r.Duration.Milliseconds()}
		if !r.OK() {
			failed++
			report[i].Error = newCheckError(r.Err)
		}
	}

	switch format {
	case OutputJSON:
		if err := tui.NewJSONOutput(w).JSON(report); err != nil {
			return err
		}
	case OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return err
		}
	default:
		out := tui.NewTTYOutput(w)
		for _, r := range results {
			if r.OK() {
				out.Success(r.Path)
			} else {
				out.Error(r.Err)
			}
		}
		out.Info(fmt.Sprintf("%d checked, %d failed", len(results), failed))
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d files", errors.ErrCheckFailed, failed, len(results))
	}
	return nil
}
