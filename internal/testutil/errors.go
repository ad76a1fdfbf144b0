// Package testutil provides testing utilities for ghaworkflow.
//
// This package contains mock errors and fixture helpers used across test files.
// It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for testing purposes.
var (
	// ErrMockWrite indicates a mock writer failed (used in tests).
	ErrMockWrite = errors.New("write failed")

	// ErrMockRead indicates a mock reader failed (used in tests).
	ErrMockRead = errors.New("read failed")
)

// FailingWriter is an io.Writer whose writes always fail with Err.
type FailingWriter struct {
	Err error
}

// Write implements io.Writer.
func (w FailingWriter) Write([]byte) (int, error) {
	if w.Err == nil {
		return 0, ErrMockWrite
	}
	return 0, w.Err
}
