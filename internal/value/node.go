// Package value provides the generic, already-parsed document tree that the
// decoder consumes: scalars, sequences and mappings with source positions.
//
// Nodes are immutable once built. Everything in this package is purely
// inspective and safe for concurrent readers.
package value

import (
	"fmt"
	"iter"
	"math"
	"slices"

	wferrors "github.com/mrz1836/ghaworkflow/internal/errors"
)

// Kind is the concrete structural kind of a node.
type Kind uint8

// Node kinds.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
)

// String returns the lowercase kind name used in diagnostics.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Position is a 1-based source location. The zero value means unknown.
type Position struct {
	Line   int
	Column int
}

// IsZero reports whether the position is unknown.
func (p Position) IsZero() bool {
	return p.Line == 0 && p.Column == 0
}

func (p Position) String() string {
	if p.IsZero() {
		return "unknown position"
	}
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// Entry is one key/value pair of a mapping node.
type Entry struct {
	Key    string
	KeyPos Position
	Value  *Node
}

// Node is one value in the document tree.
//
// A nil *Node behaves like a null node for every read-only method.
type Node struct {
	kind    Kind
	b       bool
	num     float64
	str     string
	items   []*Node
	entries []Entry
	index   map[string]int
	pos     Position
}

// Null returns a null node.
func Null() *Node {
	return &Node{kind: KindNull}
}

// Bool returns a boolean node.
func Bool(b bool) *Node {
	return &Node{kind: KindBool, b: b}
}

// Number returns a numeric node.
func Number(f float64) *Node {
	return &Node{kind: KindNumber, num: f}
}

// String returns a string node.
func String(s string) *Node {
	return &Node{kind: KindString, str: s}
}

// Sequence returns a sequence node holding items in order.
func Sequence(items ...*Node) *Node {
	return &Node{kind: KindSequence, items: slices.Clone(items)}
}

// Mapping returns a mapping node. Entries keep their order; when a key is
// repeated the later value replaces the earlier one in place.
func Mapping(entries ...Entry) *Node {
	n := &Node{
		kind:    KindMapping,
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if i, ok := n.index[e.Key]; ok {
			n.entries[i] = e
			continue
		}
		n.index[e.Key] = len(n.entries)
		n.entries = append(n.entries, e)
	}
	return n
}

// Pair is shorthand for an Entry without a key position.
func Pair(key string, v *Node) Entry {
	return Entry{Key: key, Value: v}
}

// At returns a copy of n that carries pos.
func (n *Node) At(pos Position) *Node {
	if n == nil {
		return &Node{kind: KindNull, pos: pos}
	}
	c := *n
	c.pos = pos
	return &c
}

// Detach returns a deep copy of n with every position cleared. Decoded
// models keep detached copies so they do not pin the parsed document.
func (n *Node) Detach() *Node {
	switch n.Kind() {
	case KindSequence:
		items := make([]*Node, 0, len(n.items))
		for _, item := range n.items {
			items = append(items, item.Detach())
		}
		return Sequence(items...)
	case KindMapping:
		entries := make([]Entry, 0, len(n.entries))
		for _, e := range n.entries {
			entries = append(entries, Pair(e.Key, e.Value.Detach()))
		}
		return Mapping(entries...)
	case KindNull:
		return Null()
	default:
		c := *n
		c.pos = Position{}
		return &c
	}
}

// Kind returns the node's kind.
func (n *Node) Kind() Kind {
	if n == nil {
		return KindNull
	}
	return n.kind
}

// Pos returns the node's source position, if known.
func (n *Node) Pos() Position {
	if n == nil {
		return Position{}
	}
	return n.pos
}

// Len returns the number of children of a sequence or mapping, and 0 otherwise.
func (n *Node) Len() int {
	switch n.Kind() {
	case KindSequence:
		return len(n.items)
	case KindMapping:
		return len(n.entries)
	default:
		return 0
	}
}

// IsNull reports whether n is null.
func (n *Node) IsNull() bool {
	return n.Kind() == KindNull
}

func (n *Node) mismatch(want Kind) error {
	return fmt.Errorf("%w: expected %s, got %s", wferrors.ErrTypeMismatch, want, n.Kind())
}

// AsBool returns the boolean value, or a type mismatch error.
func (n *Node) AsBool() (bool, error) {
	if n.Kind() != KindBool {
		return false, n.mismatch(KindBool)
	}
	return n.b, nil
}

// AsNumber returns the numeric value, or a type mismatch error.
func (n *Node) AsNumber() (float64, error) {
	if n.Kind() != KindNumber {
		return 0, n.mismatch(KindNumber)
	}
	return n.num, nil
}

// AsString returns the string value, or a type mismatch error.
func (n *Node) AsString() (string, error) {
	if n.Kind() != KindString {
		return "", n.mismatch(KindString)
	}
	return n.str, nil
}

// Items iterates the children of a sequence. It yields nothing for other
// kinds and may be ranged over any number of times.
func (n *Node) Items() iter.Seq2[int, *Node] {
	return func(yield func(int, *Node) bool) {
		if n.Kind() != KindSequence {
			return
		}
		for i, item := range n.items {
			if !yield(i, item) {
				return
			}
		}
	}
}

// Entries iterates a mapping in insertion order.
func (n *Node) Entries() iter.Seq2[string, *Node] {
	return func(yield func(string, *Node) bool) {
		if n.Kind() != KindMapping {
			return
		}
		for _, e := range n.entries {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

// EntryList returns a copy of the mapping entries, including key positions.
func (n *Node) EntryList() []Entry {
	if n.Kind() != KindMapping {
		return nil
	}
	return slices.Clone(n.entries)
}

// Keys returns the mapping keys in insertion order.
func (n *Node) Keys() []string {
	if n.Kind() != KindMapping {
		return nil
	}
	keys := make([]string, len(n.entries))
	for i, e := range n.entries {
		keys[i] = e.Key
	}
	return keys
}

// Lookup returns the value stored under key in a mapping.
func (n *Node) Lookup(key string) (*Node, bool) {
	if n.Kind() != KindMapping {
		return nil, false
	}
	i, ok := n.index[key]
	if !ok {
		return nil, false
	}
	return n.entries[i].Value, true
}

// Has reports whether a mapping holds key.
func (n *Node) Has(key string) bool {
	_, ok := n.Lookup(key)
	return ok
}

// KeyPos returns the position of key inside a mapping.
func (n *Node) KeyPos(key string) Position {
	if n.Kind() != KindMapping {
		return Position{}
	}
	if i, ok := n.index[key]; ok {
		return n.entries[i].KeyPos
	}
	return Position{}
}

// Equal reports whether two trees hold the same values. Positions are
// ignored and mapping order matters.
func (n *Node) Equal(other *Node) bool {
	if n.Kind() != other.Kind() {
		return false
	}
	switch n.Kind() {
	case KindNull:
		return true
	case KindBool:
		return n.b == other.b
	case KindNumber:
		if math.IsNaN(n.num) && math.IsNaN(other.num) {
			return true
		}
		return n.num == other.num
	case KindString:
		return n.str == other.str
	case KindSequence:
		return slices.EqualFunc(n.items, other.items, (*Node).Equal)
	case KindMapping:
		return slices.EqualFunc(n.entries, other.entries, func(a, b Entry) bool {
			return a.Key == b.Key && a.Value.Equal(b.Value)
		})
	}
	return false
}

// GoString renders a compact debugging form, e.g. {on: [push, fork]}.
func (n *Node) GoString() string {
	switch n.Kind() {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%t", n.b)
	case KindNumber:
		return fmt.Sprintf("%g", n.num)
	case KindString:
		return fmt.Sprintf("%q", n.str)
	case KindSequence:
		s := "["
		for i, item := range n.items {
			if i > 0 {
				s += ", "
			}
			s += item.GoString()
		}
		return s + "]"
	default:
		s := "{"
		for i, e := range n.entries {
			if i > 0 {
				s += ", "
			}
			s += e.Key + ": " + e.Value.GoString()
		}
		return s + "}"
	}
}
