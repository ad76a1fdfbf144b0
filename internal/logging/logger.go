package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mrz1836/ghaworkflow/internal/constants"
)

// Options selects the level and sinks of a logger built by New.
type Options struct {
	// Verbose selects debug level. It wins over Quiet.
	Verbose bool
	// Quiet selects warn level.
	Quiet bool
	// Console is the console sink. Nil means os.Stderr.
	Console io.Writer
	// FileDir enables the rotating log file in that directory when non-empty.
	FileDir string
}

// Logger is a zerolog.Logger plus the file sink it may own.
type Logger struct {
	zerolog.Logger

	file io.Closer
}

// Close releases the log file, if one was opened.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// New builds a logger from opts.
//
// Output format is determined by the console sink:
//   - a terminal without NO_COLOR gets a zerolog.ConsoleWriter
//   - anything else gets JSON lines
//
// When the log file cannot be created, New falls back to console-only
// output and returns the error alongside a usable logger.
func New(opts Options) (*Logger, error) {
	console := selectOutput(opts.Console)
	l := &Logger{}

	var (
		writer  io.Writer = console
		fileErr error
	)
	if opts.FileDir != "" {
		fw, err := newFileWriter(opts.FileDir)
		if err != nil {
			fileErr = err
		} else {
			l.file = fw
			writer = zerolog.MultiLevelWriter(console, fw)
		}
	}

	l.Logger = zerolog.New(writer).
		Level(SelectLevel(opts.Verbose, opts.Quiet)).
		Hook(NewSensitiveDataHook()).
		With().Timestamp().Logger()
	return l, fileErr
}

// SelectLevel maps the verbosity flags to a level.
func SelectLevel(verbose, quiet bool) zerolog.Level {
	switch {
	case verbose:
		return zerolog.DebugLevel
	case quiet:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

func selectOutput(w io.Writer) io.Writer {
	if w == nil {
		w = os.Stderr
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) && os.Getenv("NO_COLOR") == "" {
		return zerolog.ConsoleWriter{Out: f, TimeFormat: time.Kitchen}
	}
	return w
}

// filteringWriteCloser is a FilteringWriter that closes the file beneath it.
type filteringWriteCloser struct {
	*FilteringWriter

	closer io.Closer
}

func (f *filteringWriteCloser) Close() error {
	return f.closer.Close()
}

// newFileWriter opens the rotating log file in dir.
func newFileWriter(dir string) (io.WriteCloser, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	lj := &lumberjack.Logger{
		Filename:   filepath.Join(dir, constants.CLILogFileName),
		MaxSize:    constants.LogMaxSizeMB,
		MaxBackups: constants.LogMaxBackups,
		MaxAge:     constants.LogMaxAgeDays,
		Compress:   constants.LogCompress,
	}
	return &filteringWriteCloser{FilteringWriter: NewFilteringWriter(lj), closer: lj}, nil
}
