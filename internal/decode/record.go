package decode

import (
	"slices"
	"strings"

	wferrors "github.com/mrz1836/ghaworkflow/internal/errors"
	"github.com/mrz1836/ghaworkflow/internal/value"
)

// Field declares one key of a record schema.
type Field[R any] struct {
	key       string
	remainder bool
	present   func(st *State, n *value.Node, r *R) error
	absent    func(st *State, parent *value.Node, r *R) error
	rest      func(st *State, key string, n *value.Node, r *R) error
}

// Key returns the field's mapping key.
func (f Field[R]) Key() string {
	return f.key
}

// Required declares a field that must be present.
func Required[R, T any](key string, dec Decoder[T], ref func(*R) *T) Field[R] {
	return Field[R]{
		key: key,
		present: func(st *State, n *value.Node, r *R) error {
			v, err := dec(st, n)
			if err != nil {
				return err
			}
			*ref(r) = v
			return nil
		},
		absent: func(st *State, parent *value.Node, _ *R) error {
			return st.Fail(wferrors.ErrMissingRequiredField, parent, "%q is required", key)
		},
	}
}

// Optional declares a field that stays nil when absent or null.
func Optional[R, T any](key string, dec Decoder[T], ref func(*R) **T) Field[R] {
	return Field[R]{
		key: key,
		present: func(st *State, n *value.Node, r *R) error {
			if n.IsNull() {
				return nil
			}
			v, err := dec(st, n)
			if err != nil {
				return err
			}
			*ref(r) = &v
			return nil
		},
		absent: func(*State, *value.Node, *R) error { return nil },
	}
}

// OptionalValue declares a field that keeps the zero T when absent or null.
// It suits interface-typed unions, slices and maps, where nil already
// reads as "not set".
func OptionalValue[R, T any](key string, dec Decoder[T], ref func(*R) *T) Field[R] {
	return Field[R]{
		key: key,
		present: func(st *State, n *value.Node, r *R) error {
			if n.IsNull() {
				return nil
			}
			v, err := dec(st, n)
			if err != nil {
				return err
			}
			*ref(r) = v
			return nil
		},
		absent: func(*State, *value.Node, *R) error { return nil },
	}
}

// Default declares a field that takes def when absent. def is copied by
// assignment, so it must not be a map or slice that callers could mutate;
// use DefaultFunc for those.
func Default[R, T any](key string, dec Decoder[T], def T, ref func(*R) *T) Field[R] {
	return DefaultFunc(key, dec, func() T { return def }, ref)
}

// DefaultFunc declares a field whose default is built fresh by mk each time
// the key is absent.
func DefaultFunc[R, T any](key string, dec Decoder[T], mk func() T, ref func(*R) *T) Field[R] {
	f := Required(key, dec, ref)
	f.absent = func(_ *State, _ *value.Node, r *R) error {
		*ref(r) = mk()
		return nil
	}
	return f
}

// Remainder collects every key the schema does not declare into a map,
// decoding each value with dec. A schema with a remainder never reports
// unknown fields.
func Remainder[R, T any](dec Decoder[T], ref func(*R) *map[string]T) Field[R] {
	return Field[R]{
		remainder: true,
		rest: func(st *State, key string, n *value.Node, r *R) error {
			v, err := dec(st, n)
			if err != nil {
				return err
			}
			m := ref(r)
			if *m == nil {
				*m = make(map[string]T)
			}
			(*m)[key] = v
			return nil
		},
	}
}

// Schema declares the field set of a record type R.
type Schema[R any] struct {
	name   string
	fields []Field[R]
	index  map[string]int
	rest   func(st *State, key string, n *value.Node, r *R) error
}

// NewSchema declares a record. name is used in diagnostics. Declaring the
// same key twice or more than one remainder is a programming error and panics.
func NewSchema[R any](name string, fields ...Field[R]) *Schema[R] {
	s := &Schema[R]{name: name, index: make(map[string]int, len(fields))}
	for _, f := range fields {
		if f.remainder {
			if s.rest != nil {
				panic("decode: schema " + name + " declares two remainders")
			}
			s.rest = f.rest
			continue
		}
		if _, dup := s.index[f.key]; dup {
			panic("decode: schema " + name + " declares " + f.key + " twice")
		}
		s.index[f.key] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s
}

// Name returns the record name.
func (s *Schema[R]) Name() string {
	return s.name
}

// Keys returns the declared keys in declaration order.
func (s *Schema[R]) Keys() []string {
	keys := make([]string, len(s.fields))
	for i, f := range s.fields {
		keys[i] = f.key
	}
	return keys
}

// Decode walks a mapping in document order, decoding declared keys and
// applying the unknown-field policy to the rest, then fills in absent
// fields in declaration order. The first error aborts the record.
func (s *Schema[R]) Decode(st *State, n *value.Node) (R, error) {
	var r R
	if n.Kind() != value.KindMapping {
		return r, st.Fail(wferrors.ErrShapeMismatch, n, "%s must be a mapping, got %s", s.name, n.Kind())
	}

	seen := make([]bool, len(s.fields))
	for _, e := range n.EntryList() {
		i, ok := s.index[e.Key]
		if !ok {
			if s.rest != nil {
				if err := s.rest(st.Field(e.Key), e.Key, e.Value, &r); err != nil {
					return r, err
				}
				continue
			}
			if st.opts.UnknownFields == Lenient {
				continue
			}
			return r, st.Field(e.Key).FailAt(wferrors.ErrUnknownField, e.KeyPos,
				"%q is not a field of %s (known: %s)", e.Key, s.name, strings.Join(s.sortedKeys(), ", "))
		}
		seen[i] = true
		if err := s.fields[i].present(st.Field(e.Key), e.Value, &r); err != nil {
			return r, err
		}
	}

	for i, f := range s.fields {
		if seen[i] {
			continue
		}
		if err := f.absent(st.Field(f.key), n, &r); err != nil {
			return r, err
		}
	}

	return r, nil
}

func (s *Schema[R]) sortedKeys() []string {
	keys := s.Keys()
	slices.Sort(keys)
	return keys
}
