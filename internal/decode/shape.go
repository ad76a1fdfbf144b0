package decode

import (
	"strings"

	"github.com/mrz1836/ghaworkflow/internal/value"
)

// Expression delimiters of an unevaluated placeholder.
const (
	ExprOpen  = "${{"
	ExprClose = "}}"
)

// Matcher reports whether a node has a shape a candidate can decode.
// Matchers only inspect; they never convert between kinds.
type Matcher func(n *value.Node) bool

func kindIs(k value.Kind) Matcher {
	return func(n *value.Node) bool { return n.Kind() == k }
}

// Kind matchers.
//
//nolint:gochecknoglobals // Stateless predicates
var (
	IsNull     = kindIs(value.KindNull)
	IsBool     = kindIs(value.KindBool)
	IsNumber   = kindIs(value.KindNumber)
	IsString   = kindIs(value.KindString)
	IsSequence = kindIs(value.KindSequence)
	IsMapping  = kindIs(value.KindMapping)
)

// IsScalar matches strings, numbers and booleans. Null is not a scalar here.
func IsScalar(n *value.Node) bool {
	switch n.Kind() {
	case value.KindBool, value.KindNumber, value.KindString:
		return true
	default:
		return false
	}
}

// IsExpression matches a string whose trimmed text is wrapped in ${{ }}.
func IsExpression(n *value.Node) bool {
	s, err := n.AsString()
	if err != nil {
		return false
	}
	return LooksLikeExpression(s)
}

// LooksLikeExpression reports whether s is syntactically an expression placeholder.
func LooksLikeExpression(s string) bool {
	t := strings.TrimSpace(s)
	return len(t) >= len(ExprOpen)+len(ExprClose) &&
		strings.HasPrefix(t, ExprOpen) &&
		strings.HasSuffix(t, ExprClose)
}

// MappingWithKey matches a mapping that contains key.
func MappingWithKey(key string) Matcher {
	return func(n *value.Node) bool {
		return n.Kind() == value.KindMapping && n.Has(key)
	}
}

// AnyOf matches when any of ms matches.
func AnyOf(ms ...Matcher) Matcher {
	return func(n *value.Node) bool {
		for _, m := range ms {
			if m(n) {
				return true
			}
		}
		return false
	}
}
