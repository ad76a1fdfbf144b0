package signal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wferrors "github.com/mrz1836/ghaworkflow/internal/errors"
)

var errDecode = errors.New("decode failed")

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestHandler_InitialState(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	require.NoError(t, h.Context().Err())
	assert.False(t, isClosed(h.Interrupted()))
	assert.NoError(t, h.Err(nil))
	assert.Equal(t, errDecode, h.Err(errDecode))
}

func TestHandler_Signal_CancelsWithCause(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	h.handleSignal()

	require.ErrorIs(t, h.Context().Err(), context.Canceled)
	require.ErrorIs(t, context.Cause(h.Context()), wferrors.ErrInterrupted)
	assert.True(t, isClosed(h.Interrupted()))
}

func TestHandler_MultipleSignals_OnlyProcessedOnce(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	assert.NotPanics(t, func() {
		h.handleSignal()
		h.handleSignal()
		h.handleSignal()
	})
	assert.True(t, isClosed(h.Interrupted()))
}

func TestHandler_Err_AfterSignal(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()
	h.handleSignal()

	require.ErrorIs(t, h.Err(nil), wferrors.ErrInterrupted)

	err := h.Err(errDecode)
	require.ErrorIs(t, err, wferrors.ErrInterrupted)
	require.ErrorIs(t, err, errDecode)
	assert.Equal(t, "interrupted: decode failed", err.Error())

	assert.Equal(t, wferrors.ErrInterrupted, h.Err(wferrors.ErrInterrupted))
}

func TestHandler_Stop(t *testing.T) {
	h := NewHandler(context.Background())

	h.Stop()
	assert.NotPanics(t, h.Stop)

	require.ErrorIs(t, h.Context().Err(), context.Canceled)
	assert.NotErrorIs(t, context.Cause(h.Context()), wferrors.ErrInterrupted)
	assert.False(t, isClosed(h.Interrupted()))
	assert.NoError(t, h.Err(nil))
}

func TestHandler_ParentCanceled(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	h := NewHandler(parent)
	defer h.Stop()

	cancel()

	select {
	case <-h.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("context was not canceled with its parent")
	}
	assert.False(t, isClosed(h.Interrupted()))
}

func TestHandler_SignalDeliveredThroughChannel(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	h.sigChan <- nil

	select {
	case <-h.Interrupted():
	case <-time.After(time.Second):
		t.Fatal("signal was not handled")
	}
	require.ErrorIs(t, context.Cause(h.Context()), wferrors.ErrInterrupted)
}
