// Package ctxutil holds context helpers shared by the loader and the CLI.
package ctxutil

import (
	"context"
	"fmt"
)

// Canceled returns ctx.Err(): nil while the context is live, otherwise
// context.Canceled or context.DeadlineExceeded.
func Canceled(ctx context.Context) error {
	return ctx.Err()
}

// CanceledFor is Canceled with the error prefixed by what was being
// worked on, so a canceled batch names the file it stopped at.
func CanceledFor(ctx context.Context, what string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", what, context.Cause(ctx))
	}
	return nil
}
