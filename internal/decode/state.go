package decode

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	wferrors "github.com/mrz1836/ghaworkflow/internal/errors"
	"github.com/mrz1836/ghaworkflow/internal/value"
)

// Policy controls what a record decoder does with keys its schema does not declare.
type Policy uint8

const (
	// Strict fails with an unknown field error. It is the default.
	Strict Policy = iota
	// Lenient silently skips undeclared keys.
	Lenient
)

// String returns the policy keyword.
func (p Policy) String() string {
	switch p {
	case Strict:
		return "strict"
	case Lenient:
		return "lenient"
	default:
		return "policy(" + strconv.Itoa(int(p)) + ")"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePolicy converts "strict" or "lenient" (case-insensitive) to a Policy.
// An empty string selects Strict.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return Strict, nil
	case "lenient":
		return Lenient, nil
	default:
		return Strict, fmt.Errorf("%w: %q must be strict or lenient", wferrors.ErrInvalidPolicy, s)
	}
}

// Options is the whole configuration surface of a decode call.
type Options struct {
	UnknownFields Policy
}

// DefaultOptions returns strict decoding options.
func DefaultOptions() Options {
	return Options{UnknownFields: Strict}
}

// PathElem is one step from the document root: a mapping key or a sequence index.
type PathElem struct {
	Key     string
	Index   int
	IsIndex bool
}

// Path locates a node from the document root.
type Path []PathElem

// String renders the path as jobs.build.steps[2].with. The root is "<root>".
func (p Path) String() string {
	if len(p) == 0 {
		return "<root>"
	}
	var b strings.Builder
	for i, e := range p {
		if e.IsIndex {
			b.WriteString("[" + strconv.Itoa(e.Index) + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(e.Key)
	}
	return b.String()
}

// State carries the options and current path through a single decode call.
// It is never shared between calls.
type State struct {
	opts Options
	path Path
}

// NewState starts a decode at the document root.
func NewState(opts Options) *State {
	return &State{opts: opts}
}

// Options returns the options of the running decode.
func (s *State) Options() Options {
	return s.opts
}

// Path returns a copy of the current path.
func (s *State) Path() Path {
	return slices.Clone(s.path)
}

// Field descends into a mapping key.
func (s *State) Field(key string) *State {
	return &State{opts: s.opts, path: append(slices.Clip(s.path), PathElem{Key: key})}
}

// Index descends into a sequence element.
func (s *State) Index(i int) *State {
	return &State{opts: s.opts, path: append(slices.Clip(s.path), PathElem{Index: i, IsIndex: true})}
}

// Fail builds an *Error of the given kind positioned at n.
func (s *State) Fail(kind error, n *value.Node, format string, args ...any) *Error {
	return s.FailAt(kind, n.Pos(), format, args...)
}

// FailAt builds an *Error of the given kind at an explicit position.
func (s *State) FailAt(kind error, pos value.Position, format string, args ...any) *Error {
	return &Error{
		Kind:   kind,
		Path:   s.Path(),
		Pos:    pos,
		Detail: fmt.Sprintf(format, args...),
	}
}

// Wrap attaches the current path to an error from a lower layer, such as a
// value accessor. Errors that already carry a path pass through unchanged.
func (s *State) Wrap(err error, n *value.Node) error {
	if err == nil {
		return nil
	}
	if _, ok := AsError(err); ok {
		return err
	}
	kind := wferrors.KindOf(err)
	if kind == nil {
		return &Error{Kind: err, Path: s.Path(), Pos: n.Pos()}
	}
	return &Error{
		Kind:   kind,
		Path:   s.Path(),
		Pos:    n.Pos(),
		Detail: strings.TrimPrefix(err.Error(), kind.Error()+": "),
	}
}

// Run decodes root with dec using a fresh state.
func Run[T any](root *value.Node, opts Options, dec Decoder[T]) (T, error) {
	return dec(NewState(opts), root)
}
