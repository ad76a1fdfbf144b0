// Package errors provides centralized error handling for ghaworkflow.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Decode error kinds. Every failure produced by the decoding engine wraps
// exactly one of these, so callers can branch on the kind with errors.Is().
var (
	// ErrTypeMismatch indicates a scalar accessor was used against a node
	// of a different concrete kind.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrShapeMismatch indicates a record or sequence decoder was invoked
	// against an incompatible node kind.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrNoMatchingShape indicates none of a union's candidate shapes
	// accepted the node.
	ErrNoMatchingShape = errors.New("no matching shape")

	// ErrUnknownVariant indicates an enum keyword did not match any entry
	// in its table.
	ErrUnknownVariant = errors.New("unknown variant")

	// ErrUnknownField indicates a mapping contained a key the target schema
	// does not declare (strict mode only).
	ErrUnknownField = errors.New("unknown field")

	// ErrMissingRequiredField indicates a field with no declared default was absent.
	ErrMissingRequiredField = errors.New("missing required field")
)

// Document and loading errors.
var (
	// ErrDocumentParse indicates the raw document bytes are not valid YAML or JSON.
	ErrDocumentParse = errors.New("document parse error")

	// ErrDuplicateKey indicates a mapping in the document repeats a key.
	ErrDuplicateKey = errors.New("duplicate mapping key")

	// ErrUnsupportedNode indicates the parser produced a node the value tree cannot represent.
	ErrUnsupportedNode = errors.New("unsupported document node")

	// ErrWorkflowFileMissing indicates the workflow file does not exist.
	ErrWorkflowFileMissing = errors.New("workflow file not found")

	// ErrWorkflowLoadFailed indicates a workflow file could not be read.
	ErrWorkflowLoadFailed = errors.New("workflow load failed")

	// ErrNoInputFiles indicates a command that needs workflow files received none.
	ErrNoInputFiles = errors.New("no workflow files given")
)

// Configuration and CLI errors.
var (
	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrInvalidPolicy indicates an unknown-field policy other than strict or lenient.
	ErrInvalidPolicy = errors.New("invalid unknown-field policy")

	// ErrValueOutOfRange indicates that a value is outside the allowed range.
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrCheckFailed indicates one or more workflow files failed to decode
	// during a check run. The per-file diagnostics have already been printed.
	ErrCheckFailed = errors.New("workflow check failed")

	// ErrInterrupted is the cancellation cause when SIGINT or SIGTERM arrives.
	ErrInterrupted = errors.New("interrupted")
)

// DecodeKinds returns the decode error kinds in a stable order.
// It is used to classify wrapped errors and to document the error surface.
func DecodeKinds() []error {
	return []error{
		ErrTypeMismatch,
		ErrShapeMismatch,
		ErrNoMatchingShape,
		ErrUnknownVariant,
		ErrUnknownField,
		ErrMissingRequiredField,
	}
}

// KindOf returns the decode error kind wrapped by err, or nil when err does
// not carry one.
func KindOf(err error) error {
	for _, kind := range DecodeKinds() {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// ExitCode2Error wraps an error to indicate exit code 2 should be used.
type ExitCode2Error struct {
	Err error
}

// NewExitCode2Error wraps an error to indicate exit code 2.
func NewExitCode2Error(err error) *ExitCode2Error {
	return &ExitCode2Error{Err: err}
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// IsExitCode2Error checks if an error should result in exit code 2.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}
