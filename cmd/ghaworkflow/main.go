// Package main provides the entry point for the ghaworkflow CLI.
package main

import (
	"context"
	"os"

	"github.com/mrz1836/ghaworkflow/internal/cli"
	"github.com/mrz1836/ghaworkflow/internal/signal"
)

// Set at build time via ldflags.
var (
	version = "" //nolint:gochecknoglobals // ldflags target
	commit  = "" //nolint:gochecknoglobals // ldflags target
	date    = "" //nolint:gochecknoglobals // ldflags target
)

func main() {
	h := signal.NewHandler(context.Background())
	err := h.Err(cli.Execute(h.Context(), cli.BuildInfo{Version: version, Commit: commit, Date: date}))
	h.Stop()
	os.Exit(cli.ExitCodeForError(err))
}
