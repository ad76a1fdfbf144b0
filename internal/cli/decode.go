package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrz1836/ghaworkflow/internal/constants"
	"github.com/mrz1836/ghaworkflow/internal/loader"
	"github.com/mrz1836/ghaworkflow/internal/tui"
	"github.com/mrz1836/ghaworkflow/internal/value"
	"github.com/mrz1836/ghaworkflow/internal/workflow"
)

// AddDecodeCommand adds the decode command to the root command.
func AddDecodeCommand(root *cobra.Command, flags *GlobalFlags) {
	root.AddCommand(newDecodeCmd(flags))
}

func newDecodeCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "decode [files...]",
		Short: "Decode workflow files and print the normalized model",
		Long: `Decode one or more workflow files and print the normalized model.

Without arguments every workflow file in .github/workflows is decoded.
The first file that fails stops the command.

Output formats:
  text  a summary of events and jobs per file
  json  the normalized workflow per file
  yaml  the normalized workflow per file, one document each

Examples:
  ghaworkflow decode .github/workflows/ci.yml
  ghaworkflow decode -o yaml ci.yml release.yml
  ghaworkflow decode --unknown-fields lenient`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd.Context(), args, flags.Output, cmd.OutOrStdout())
		},
	}
}

// decodedFile is one entry of the json output.
type decodedFile struct {
	File     string      `json:"file"`
	Workflow *value.Node `json:"workflow"`
}

func runDecode(ctx context.Context, args []string, format string, w io.Writer) error {
	cfg := ConfigFromContext(ctx)
	l := loader.New("", cfg.DecodeOptions(), loader.WithConcurrency(cfg.Concurrency))

	paths, err := resolvePaths(l, args)
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Debug().Strs("files", paths).Msg("decoding workflows")
	wfs, err := l.LoadAll(ctx, paths)
	if err != nil {
		return err
	}

	switch format {
	case OutputJSON:
		out := make([]decodedFile, len(wfs))
		for i, wf := range wfs {
			out[i] = decodedFile{File: paths[i], Workflow: workflow.Encode(wf)}
		}
		return tui.NewJSONOutput(w).JSON(out)
	case OutputYAML:
		return writeYAMLDocuments(w, paths, wfs)
	default:
		writeSummaries(w, paths, wfs)
		return nil
	}
}

// resolvePaths returns args, or the discovered workflow files when args is empty.
func resolvePaths(l *loader.Loader, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	return l.Discover(constants.WorkflowsDir)
}

func writeYAMLDocuments(w io.Writer, paths []string, wfs []*workflow.Workflow) error {
	for i, wf := range wfs {
		data, err := value.Marshal(workflow.Encode(wf))
		if err != nil {
			return fmt.Errorf("%s: %w", paths[i], err)
		}
		if _, err := fmt.Fprintf(w, "---\n# %s\n%s", paths[i], data); err != nil {
			return err
		}
	}
	return nil
}

func writeSummaries(w io.Writer, paths []string, wfs []*workflow.Workflow) {
	out := tui.NewTTYOutput(w)
	for i, wf := range wfs {
		s := workflow.Summarize(wf)
		title := paths[i]
		if s.Name != "" {
			title += " (" + s.Name + ")"
		}
		out.Success(title)
		out.Info("on: " + strings.Join(s.Events, ", "))

		rows := make([][]string, len(s.Jobs))
		for j, job := range s.Jobs {
			steps := "-"
			if job.Kind == workflow.JobKindSteps {
				steps = fmt.Sprint(job.Steps)
			}
			rows[j] = []string{job.ID, job.Kind, job.Target, steps, strings.Join(job.Needs, ",")}
		}
		out.Table([]string{"JOB", "KIND", "TARGET", "STEPS", "NEEDS"}, rows)
		if i < len(wfs)-1 {
			_, _ = fmt.Fprintln(w)
		}
	}
}
