package decode

import (
	"strings"

	wferrors "github.com/mrz1836/ghaworkflow/internal/errors"
	"github.com/mrz1836/ghaworkflow/internal/value"
)

// EnumEntry pairs a canonical keyword with its variant.
type EnumEntry[V comparable] struct {
	Keyword string
	Value   V
}

// EnumValue is shorthand for an EnumEntry.
func EnumValue[V comparable](keyword string, v V) EnumEntry[V] {
	return EnumEntry[V]{Keyword: keyword, Value: v}
}

// Enum maps keyword scalars to variants. It is read-only after NewEnum.
type Enum[V comparable] struct {
	name     string
	keywords []string
	table    map[string]V
	names    map[V]string
}

// NewEnum builds a keyword table. Keywords are matched after
// NormalizeKeyword; two keywords that normalize the same panic.
func NewEnum[V comparable](name string, entries ...EnumEntry[V]) *Enum[V] {
	e := &Enum[V]{
		name:     name,
		keywords: make([]string, 0, len(entries)),
		table:    make(map[string]V, len(entries)),
		names:    make(map[V]string, len(entries)),
	}
	for _, entry := range entries {
		key := NormalizeKeyword(entry.Keyword)
		if _, dup := e.table[key]; dup {
			panic("decode: enum " + name + " repeats keyword " + entry.Keyword)
		}
		e.table[key] = entry.Value
		e.names[entry.Value] = entry.Keyword
		e.keywords = append(e.keywords, entry.Keyword)
	}
	return e
}

// Name returns the enum's type name.
func (e *Enum[V]) Name() string {
	return e.name
}

// Keywords returns the canonical keywords in declared order.
func (e *Enum[V]) Keywords() []string {
	out := make([]string, len(e.keywords))
	copy(out, e.keywords)
	return out
}

// Keyword returns the canonical keyword of v, or "" if v is not in the table.
func (e *Enum[V]) Keyword(v V) string {
	return e.names[v]
}

// Lookup resolves a raw keyword.
func (e *Enum[V]) Lookup(s string) (V, bool) {
	v, ok := e.table[NormalizeKeyword(s)]
	return v, ok
}

// Resolve returns def when n is nil (the field is absent) without
// consulting the table, and otherwise decodes n.
func (e *Enum[V]) Resolve(st *State, n *value.Node, def V) (V, error) {
	if n == nil {
		return def, nil
	}
	return e.Decode(st, n)
}

// Decode resolves a present keyword node.
func (e *Enum[V]) Decode(st *State, n *value.Node) (V, error) {
	var zero V
	s, err := n.AsString()
	if err != nil {
		return zero, st.Wrap(err, n)
	}
	v, ok := e.Lookup(s)
	if !ok {
		return zero, st.Fail(wferrors.ErrUnknownVariant, n, "%q is not a valid %s, expected one of: %s",
			s, e.name, strings.Join(e.keywords, ", "))
	}
	return v, nil
}

// EnumField declares a record field resolved through e, with def used when
// the key is absent.
func EnumField[R any, V comparable](key string, e *Enum[V], def V, ref func(*R) *V) Field[R] {
	return Field[R]{
		key: key,
		present: func(st *State, n *value.Node, r *R) error {
			v, err := e.Resolve(st, n, def)
			if err != nil {
				return err
			}
			*ref(r) = v
			return nil
		},
		absent: func(st *State, _ *value.Node, r *R) error {
			v, err := e.Resolve(st, nil, def)
			if err != nil {
				return err
			}
			*ref(r) = v
			return nil
		},
	}
}
