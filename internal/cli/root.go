// Package cli provides the command-line interface for ghaworkflow.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrz1836/ghaworkflow/internal/config"
	"github.com/mrz1836/ghaworkflow/internal/errors"
	"github.com/mrz1836/ghaworkflow/internal/tui"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	// Version is the semantic version (e.g., "1.0.0").
	Version string
	// Commit is the git commit hash.
	Commit string
	// Date is the build date.
	Date string
}

// configKey is the context key for the loaded configuration.
type configKey struct{}

// ConfigFromContext returns the configuration loaded by the root command,
// or the defaults when none was loaded.
func ConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	return config.DefaultConfig()
}

// newRootCmd creates and returns the root command for the ghaworkflow CLI.
func newRootCmd(flags *GlobalFlags, info BuildInfo) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ghaworkflow",
		Short: "Decode and check GitHub Actions workflow files",
		Long: `ghaworkflow decodes GitHub Actions workflow files into a typed model.

Every field that GitHub accepts in more than one form (a label or a list of
labels, a boolean or an expression, an event name or an event mapping) is
resolved to exactly one form, and the first problem is reported with its
path and source position.

Configuration is read from ~/.ghaworkflow/config.yaml, .ghaworkflow/config.yaml
and GHAWORKFLOW_* environment variables. Flags take precedence.`,
		Version: formatVersion(info),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !IsValidOutputFormat(flags.Output) {
				return errors.NewExitCode2Error(fmt.Errorf("%w: %q must be one of %v",
					errors.ErrInvalidOutputFormat, flags.Output, ValidOutputFormats()))
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			logger := InitLogger(flags.Verbose, flags.Quiet, flags.LogFile, cmd.ErrOrStderr())
			ctx = logger.WithContext(ctx)

			cfg, err := config.LoadWithFlags(ctx, cmd.Root().PersistentFlags())
			if err != nil {
				return errors.NewExitCode2Error(err)
			}

			// A config file may enable the log file when the flag did not.
			if cfg.Log.File && !flags.LogFile {
				logger = InitLogger(flags.Verbose, flags.Quiet, true, cmd.ErrOrStderr())
				ctx = logger.WithContext(ctx)
			}

			cmd.SetContext(context.WithValue(ctx, configKey{}, cfg))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(cmd, flags)

	AddDecodeCommand(cmd, flags)
	AddCheckCommand(cmd, flags)

	return cmd
}

// formatVersion creates the version string from build info.
func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command with the provided context and build info.
// Errors are reported on stderr before being returned.
func Execute(ctx context.Context, info BuildInfo) error {
	return execute(ctx, info, os.Args[1:], os.Stdout, os.Stderr)
}

func execute(ctx context.Context, info BuildInfo, args []string, stdout, stderr io.Writer) error {
	defer CloseLogFile()

	flags := &GlobalFlags{}
	//nolint:contextcheck // Cobra command pattern uses cmd.Context() internally
	cmd := newRootCmd(flags, info)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	// The logger lives on the context of the command that ran, which
	// PersistentPreRunE replaced; the root keeps the original context.
	ran, err := cmd.ExecuteContextC(ctx)
	if err != nil {
		if ran != nil {
			zerolog.Ctx(ran.Context()).Debug().Err(err).Msg("command failed")
		}
		format := flags.Output
		if !IsValidOutputFormat(format) || format == OutputYAML {
			format = OutputText
		}
		tui.NewOutput(stderr, format).Error(err)
	}
	return err
}
