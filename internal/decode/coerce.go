package decode

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// Rule names one of the fixed value normalizations applied after shape resolution.
type Rule string

// The coercion rules. There are no others.
const (
	RuleStringifyScalar  Rule = "stringify-scalar"
	RuleSingularExpand   Rule = "singular-expand"
	RuleKeywordNormalize Rule = "keyword-normalize"
)

// StringifyNumber renders a number as the shortest decimal text that reads
// back to the same value: 1 not 1.0, 0.5, 1000000000000000000000.
func StringifyNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	default:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}

// StringifyBool renders true or false.
func StringifyBool(b bool) string {
	return strconv.FormatBool(b)
}

// SingularExpand wraps a single resolved value in a fresh one-element slice.
func SingularExpand[T any](v T) []T {
	return []T{v}
}

// NormalizeKeyword folds a keyword for table lookup: surrounding space is
// trimmed, case is folded without regard to locale, and '_', '.' and
// spaces become '-'.
func NormalizeKeyword(s string) string {
	// cases.Caser is stateful, so each call gets its own.
	folded := cases.Fold().String(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch r {
		case '_', '.', ' ', '-':
			return '-'
		default:
			return r
		}
	}, folded)
}
