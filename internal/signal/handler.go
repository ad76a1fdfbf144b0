// Package signal turns SIGINT and SIGTERM into context cancellation for
// the CLI, with errors.ErrInterrupted as the cancellation cause.
package signal

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	wferrors "github.com/mrz1836/ghaworkflow/internal/errors"
)

// Handler cancels its context on the first SIGINT or SIGTERM.
type Handler struct {
	ctx         context.Context //nolint:containedctx // handler owns the context lifecycle
	cancel      context.CancelCauseFunc
	interrupted chan struct{}
	done        chan struct{}
	sigChan     chan os.Signal
	once        sync.Once
	stopOnce    sync.Once
}

// NewHandler starts listening for signals. Callers must call Stop.
//
//	h := signal.NewHandler(ctx)
//	defer h.Stop()
//	err := run(h.Context())
//	err = h.Err(err)
func NewHandler(parent context.Context) *Handler {
	ctx, cancel := context.WithCancelCause(parent)
	h := &Handler{
		ctx:         ctx,
		cancel:      cancel,
		interrupted: make(chan struct{}),
		done:        make(chan struct{}),
		sigChan:     make(chan os.Signal, 1),
	}

	signal.Notify(h.sigChan, syscall.SIGINT, syscall.SIGTERM)
	go h.listen()

	return h
}

// Context is canceled with cause ErrInterrupted when a signal arrives.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Interrupted is closed once a signal has been received.
func (h *Handler) Interrupted() <-chan struct{} {
	return h.interrupted
}

// Err returns err unless a signal arrived, in which case it returns an
// error that matches both err and errors.ErrInterrupted. A nil err is
// replaced by errors.ErrInterrupted.
func (h *Handler) Err(err error) error {
	select {
	case <-h.interrupted:
	default:
		return err
	}
	if err == nil || stderrors.Is(err, wferrors.ErrInterrupted) {
		return wferrors.ErrInterrupted
	}
	return fmt.Errorf("%w: %w", wferrors.ErrInterrupted, err)
}

// Stop stops listening and cancels the context. It is idempotent.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.sigChan)
		close(h.done)
		h.cancel(context.Canceled)
	})
}

func (h *Handler) handleSignal() {
	h.once.Do(func() {
		close(h.interrupted)
		h.cancel(wferrors.ErrInterrupted)
	})
}

// listen keeps draining sigChan until Stop or cancellation; only the first
// signal has an effect.
func (h *Handler) listen() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case <-h.done:
			return
		case <-h.sigChan:
			h.handleSignal()
		}
	}
}
