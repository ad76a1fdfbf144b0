package testutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/ghaworkflow/internal/value"
)

func TestFailingWriter(t *testing.T) {
	t.Parallel()

	n, err := FailingWriter{}.Write([]byte("x"))
	assert.Zero(t, n)
	require.ErrorIs(t, err, ErrMockWrite)

	custom := errors.New("disk full")
	_, err = FailingWriter{Err: custom}.Write(nil)
	require.ErrorIs(t, err, custom)
}

func TestMustParse(t *testing.T) {
	t.Parallel()

	n := MustParse(t, Lines("on: push", "jobs: {}"))
	assert.Equal(t, value.KindMapping, n.Kind())
	assert.Equal(t, []string{"on", "jobs"}, n.Keys())
}

func TestWriteFile(t *testing.T) {
	t.Parallel()

	path := WriteFile(t, t.TempDir(), "nested/ci.yml", "on: push\n")
	assert.FileExists(t, path)
}
