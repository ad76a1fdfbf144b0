package cli

import (
	"io"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mrz1836/ghaworkflow/internal/config"
	"github.com/mrz1836/ghaworkflow/internal/logging"
)

// activeLogger holds the logger that owns the log file, for cleanup.
var (
	activeLogger   *logging.Logger //nolint:gochecknoglobals // Needed for cleanup
	activeLoggerMu sync.Mutex      //nolint:gochecknoglobals // Protects activeLogger
)

// InitLogger creates the CLI logger from the verbosity flags.
//
// Log levels are set as follows:
//   - verbose=true: Debug level (most detailed)
//   - quiet=true: Warn level (errors and warnings only)
//   - default: Info level (normal operation)
//
// When withFile is set the logger also writes to
// ~/.ghaworkflow/logs/ghaworkflow.log with rotation enabled. If the log
// file cannot be created, the logger continues with console-only output
// and the failure is logged as a warning.
func InitLogger(verbose, quiet, withFile bool, console io.Writer) zerolog.Logger {
	opts := logging.Options{Verbose: verbose, Quiet: quiet, Console: console}
	if withFile {
		if dir, err := config.LogDir(); err == nil {
			opts.FileDir = dir
		}
	}

	l, err := logging.New(opts)
	if err != nil {
		l.Warn().Err(err).Msg("log file unavailable, logging to console only")
	}

	activeLoggerMu.Lock()
	if activeLogger != nil {
		_ = activeLogger.Close()
	}
	activeLogger = l
	log.Logger = l.Logger
	activeLoggerMu.Unlock()

	return l.Logger
}

// CloseLogFile closes the log file writer if one was opened.
// This should be called during application shutdown for clean cleanup.
func CloseLogFile() {
	activeLoggerMu.Lock()
	defer activeLoggerMu.Unlock()
	if activeLogger != nil {
		_ = activeLogger.Close()
		activeLogger = nil
	}
}
