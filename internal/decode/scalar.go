package decode

import (
	wferrors "github.com/mrz1836/ghaworkflow/internal/errors"
	"github.com/mrz1836/ghaworkflow/internal/value"
)

// Decoder extracts a T from a node. On failure it returns an *Error that
// carries the path held by st.
type Decoder[T any] func(st *State, n *value.Node) (T, error)

// String decodes a string node.
func String(st *State, n *value.Node) (string, error) {
	s, err := n.AsString()
	if err != nil {
		return "", st.Wrap(err, n)
	}
	return s, nil
}

// Bool decodes a boolean node.
func Bool(st *State, n *value.Node) (bool, error) {
	b, err := n.AsBool()
	if err != nil {
		return false, st.Wrap(err, n)
	}
	return b, nil
}

// Number decodes a numeric node.
func Number(st *State, n *value.Node) (float64, error) {
	f, err := n.AsNumber()
	if err != nil {
		return 0, st.Wrap(err, n)
	}
	return f, nil
}

// Raw keeps a node undecoded. The result is a detached copy, so the model
// holds no reference into the parsed document.
func Raw(_ *State, n *value.Node) (*value.Node, error) {
	return n.Detach(), nil
}

// SequenceOf decodes every element of a sequence with dec.
func SequenceOf[T any](dec Decoder[T]) Decoder[[]T] {
	return func(st *State, n *value.Node) ([]T, error) {
		if n.Kind() != value.KindSequence {
			return nil, st.Fail(wferrors.ErrShapeMismatch, n, "expected sequence, got %s", n.Kind())
		}
		out := make([]T, 0, n.Len())
		for i, item := range n.Items() {
			v, err := dec(st.Index(i), item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
}

// MapOf decodes every value of a mapping with dec. Keys are kept as-is.
func MapOf[T any](dec Decoder[T]) Decoder[map[string]T] {
	return func(st *State, n *value.Node) (map[string]T, error) {
		if n.Kind() != value.KindMapping {
			return nil, st.Fail(wferrors.ErrShapeMismatch, n, "expected mapping, got %s", n.Kind())
		}
		out := make(map[string]T, n.Len())
		for k, v := range n.Entries() {
			decoded, err := dec(st.Field(k), v)
			if err != nil {
				return nil, err
			}
			out[k] = decoded
		}
		return out, nil
	}
}

// Nullable decodes null as nil and anything else with dec.
func Nullable[T any](dec Decoder[T]) Decoder[*T] {
	return func(st *State, n *value.Node) (*T, error) {
		if n.IsNull() {
			return nil, nil
		}
		v, err := dec(st, n)
		if err != nil {
			return nil, err
		}
		return &v, nil
	}
}

// Map adapts a Decoder[V] into a Decoder[T] through a pure conversion.
func Map[V, T any](dec Decoder[V], fn func(V) T) Decoder[T] {
	return func(st *State, n *value.Node) (T, error) {
		v, err := dec(st, n)
		if err != nil {
			var zero T
			return zero, err
		}
		return fn(v), nil
	}
}
