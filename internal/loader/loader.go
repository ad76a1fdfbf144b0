// Package loader reads workflow files from disk and decodes them, one at a
// time or many in parallel.
package loader

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/ghaworkflow/internal/clock"
	"github.com/mrz1836/ghaworkflow/internal/constants"
	"github.com/mrz1836/ghaworkflow/internal/ctxutil"
	"github.com/mrz1836/ghaworkflow/internal/decode"
	wferrors "github.com/mrz1836/ghaworkflow/internal/errors"
	"github.com/mrz1836/ghaworkflow/internal/logging"
	"github.com/mrz1836/ghaworkflow/internal/workflow"
)

// Result is the outcome of loading one file.
type Result struct {
	// Path is the path as given by the caller.
	Path string
	// Workflow is set when Err is nil.
	Workflow *workflow.Workflow
	// Err is the read, parse or decode failure.
	Err error
	// Duration is how long reading and decoding took.
	Duration time.Duration
}

// OK reports whether the file decoded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Loader loads workflow files.
type Loader struct {
	basePath    string
	opts        decode.Options
	concurrency int
	clock       clock.Clock
}

// Option configures a Loader.
type Option func(*Loader)

// WithConcurrency bounds how many files LoadAll and Collect decode at once.
// Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		if n >= 1 {
			l.concurrency = n
		}
	}
}

// WithClock sets the clock Collect times each file with.
func WithClock(c clock.Clock) Option {
	return func(l *Loader) {
		if c != nil {
			l.clock = c
		}
	}
}

// New creates a loader. basePath is used to resolve relative workflow paths
// (typically the repository root).
func New(basePath string, opts decode.Options, options ...Option) *Loader {
	l := &Loader{
		basePath:    basePath,
		opts:        opts,
		concurrency: constants.DefaultConcurrency,
		clock:       clock.RealClock{},
	}
	for _, o := range options {
		o(l)
	}
	return l
}

// LoadFile reads, parses and decodes a single workflow file.
// The returned error names the file and wraps the underlying failure, so
// decode.AsError and errors.Is keep working on it.
func (l *Loader) LoadFile(ctx context.Context, path string) (*workflow.Workflow, error) {
	if err := ctxutil.CanceledFor(ctx, path); err != nil {
		return nil, err
	}

	data, err := l.read(path)
	if err != nil {
		return nil, err
	}

	wf, err := workflow.DecodeBytes(data, l.opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if log := zerolog.Ctx(ctx); log.Debug().Enabled() {
		env := zerolog.Dict()
		for scope, vars := range workflow.EnvScopes(wf) {
			env.Interface(scope, logging.RedactEnv(vars))
		}
		log.Debug().
			Str("file", path).
			Int("jobs", len(wf.Jobs)).
			Dict("env", env).
			Msg("workflow decoded")
	}
	return wf, nil
}

// LoadAll decodes every path concurrently and returns the workflows in the
// order of paths. The first failure cancels the remaining loads and is
// returned (fail-fast behavior).
func (l *Loader) LoadAll(ctx context.Context, paths []string) ([]*workflow.Workflow, error) {
	if len(paths) == 0 {
		return nil, wferrors.ErrNoInputFiles
	}

	out := make([]*workflow.Workflow, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)

	for i, path := range paths {
		g.Go(func() error {
			wf, err := l.LoadFile(gctx, path)
			if err != nil {
				return err
			}
			out[i] = wf
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Collect decodes every path concurrently and reports a Result per path,
// in the order of paths. Failures do not stop the other files.
func (l *Loader) Collect(ctx context.Context, paths []string) []Result {
	results := make([]Result, len(paths))
	g := new(errgroup.Group)
	g.SetLimit(l.concurrency)

	for i, path := range paths {
		g.Go(func() error {
			start := l.clock.Now()
			wf, err := l.LoadFile(ctx, path)
			results[i] = Result{Path: path, Workflow: wf, Err: err, Duration: clock.Since(l.clock, start)}
			return nil
		})
	}

	_ = g.Wait()

	log := zerolog.Ctx(ctx)
	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	log.Debug().Int("files", len(results)).Int("failed", failed).Msg("collect finished")
	return results
}

// Discover lists the workflow files directly inside dir, sorted by name.
// A relative dir is resolved against the loader's base path.
func (l *Loader) Discover(dir string) ([]string, error) {
	resolved := l.resolvePath(dir)
	entries, err := os.ReadDir(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", wferrors.ErrWorkflowFileMissing, resolved)
		}
		return nil, fmt.Errorf("%w: %w", wferrors.ErrWorkflowLoadFailed, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !IsWorkflowFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}

// IsWorkflowFile reports whether name has a workflow file extension.
func IsWorkflowFile(name string) bool {
	return slices.Contains(constants.WorkflowExtensions, strings.ToLower(filepath.Ext(name)))
}

// read loads a file, refusing anything larger than MaxWorkflowFileSize.
func (l *Loader) read(path string) ([]byte, error) {
	resolved := l.resolvePath(path)

	f, err := os.Open(resolved) //nolint:gosec // Path is given by the user
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", wferrors.ErrWorkflowFileMissing, resolved)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: permission denied: %s", wferrors.ErrWorkflowLoadFailed, resolved)
		}
		return nil, fmt.Errorf("%w: %w", wferrors.ErrWorkflowLoadFailed, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, constants.MaxWorkflowFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", wferrors.ErrWorkflowLoadFailed, resolved, err)
	}
	if len(data) > constants.MaxWorkflowFileSize {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes",
			wferrors.ErrWorkflowLoadFailed, resolved, constants.MaxWorkflowFileSize)
	}
	return data, nil
}

// resolvePath resolves a workflow path, supporting both absolute and relative paths.
// Relative paths are resolved relative to the loader's basePath.
func (l *Loader) resolvePath(path string) string {
	if filepath.IsAbs(path) || l.basePath == "" {
		return path
	}
	return filepath.Join(l.basePath, path)
}
