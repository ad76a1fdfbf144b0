package decode

import (
	"strings"

	wferrors "github.com/mrz1836/ghaworkflow/internal/errors"
	"github.com/mrz1836/ghaworkflow/internal/value"
)

// Candidate is one legal shape of a union.
type Candidate[T any] struct {
	// Shape names the candidate in diagnostics, e.g. "bare event".
	Shape  string
	Match  Matcher
	Decode Decoder[T]
}

// Variant builds a candidate whose decoder yields a V that wrap lifts into
// the union type T.
func Variant[T, V any](shape string, match Matcher, dec Decoder[V], wrap func(V) T) Candidate[T] {
	return Candidate[T]{Shape: shape, Match: match, Decode: Map(dec, wrap)}
}

// Union resolves a node against an ordered list of candidates.
type Union[T any] struct {
	name       string
	candidates []Candidate[T]
}

// NewUnion declares a union. Candidate order is part of its meaning: the
// first matcher that accepts a node wins.
func NewUnion[T any](name string, candidates ...Candidate[T]) *Union[T] {
	return &Union[T]{name: name, candidates: candidates}
}

// Name returns the union's type name.
func (u *Union[T]) Name() string {
	return u.name
}

// Shapes returns the candidate shape names in declared order.
func (u *Union[T]) Shapes() []string {
	shapes := make([]string, len(u.candidates))
	for i, c := range u.candidates {
		shapes[i] = c.Shape
	}
	return shapes
}

// Decode commits to the first candidate whose matcher accepts n and returns
// that candidate's result, success or failure. Later candidates are not
// tried after a commit.
func (u *Union[T]) Decode(st *State, n *value.Node) (T, error) {
	for _, c := range u.candidates {
		if c.Match(n) {
			return c.Decode(st, n)
		}
	}

	var zero T
	tried := u.Shapes()
	err := st.Fail(wferrors.ErrNoMatchingShape, n, "%s cannot be a %s, expected one of: %s",
		u.name, n.Kind(), strings.Join(tried, ", "))
	err.Tried = tried
	return zero, err
}
