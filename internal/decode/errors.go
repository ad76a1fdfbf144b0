package decode

import (
	"errors"
	"strings"

	"github.com/mrz1836/ghaworkflow/internal/value"
)

// Error is the single failure a decode call reports. Kind is one of the
// decode sentinels in internal/errors, so errors.Is works on it.
type Error struct {
	Kind   error
	Path   Path
	Pos    value.Position
	Detail string
	// Tried lists the union shapes attempted, for no-matching-shape failures.
	Tried []string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Path.String())
	if !e.Pos.IsZero() {
		b.WriteString(" (" + e.Pos.String() + ")")
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Detail != "" {
		b.WriteString(": " + e.Detail)
	}
	return b.String()
}

// Unwrap returns the error kind.
func (e *Error) Unwrap() error {
	return e.Kind
}

// AsError extracts a decode *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
