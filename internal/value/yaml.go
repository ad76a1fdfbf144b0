package value

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	wferrors "github.com/mrz1836/ghaworkflow/internal/errors"
)

// YAML short tags the converter distinguishes. Any other scalar tag is
// treated as text.
const (
	tagNull  = "!!null"
	tagBool  = "!!bool"
	tagInt   = "!!int"
	tagFloat = "!!float"
	tagStr   = "!!str"
	tagMerge = "!!merge"
	tagSeq   = "!!seq"
	tagMap   = "!!map"
)

// Parse parses YAML (or JSON, which is a subset) into a value tree.
// Only the first document is read; an empty input yields a null node.
func Parse(data []byte) (*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", wferrors.ErrDocumentParse, err)
	}
	return FromYAML(&doc)
}

// Alias expansion limits. A document may expand to at most
// aliasExpansionRatio times its literal node count, and never less than
// minExpansionBudget nodes.
const (
	minExpansionBudget  = 1 << 16
	aliasExpansionRatio = 16
)

// FromYAML converts a yaml.v3 node tree. Aliases are followed, merge keys
// are expanded, and duplicate mapping keys are rejected. An alias target is
// converted once and shared; a document whose expanded size exceeds the
// alias budget fails with ErrDocumentParse.
func FromYAML(n *yaml.Node) (*Node, error) {
	c := &converter{
		memo:   make(map[*yaml.Node]*Node),
		sizes:  make(map[*Node]int),
		budget: max(minExpansionBudget, aliasExpansionRatio*literalCount(n)),
	}
	return c.convert(n)
}

// literalCount is the number of nodes written in the document, with
// aliases counted once and not followed.
func literalCount(n *yaml.Node) int {
	if n == nil {
		return 0
	}
	count := 1
	for _, child := range n.Content {
		count += literalCount(child)
	}
	return count
}

type converter struct {
	memo   map[*yaml.Node]*Node
	sizes  map[*Node]int
	budget int
}

// keep records the expanded size of out and charges it against the budget.
func (c *converter) keep(out *Node, size int, at *yaml.Node) (*Node, error) {
	c.sizes[out] = size
	if size > c.budget {
		return nil, fmt.Errorf("%w: alias expansion exceeds %d nodes at %s",
			wferrors.ErrDocumentParse, c.budget, posOf(at))
	}
	return out, nil
}

func (c *converter) convert(n *yaml.Node) (*Node, error) {
	if n == nil {
		return Null(), nil
	}
	if done, ok := c.memo[n]; ok {
		return done, nil
	}

	out, err := c.convertNode(n)
	if err != nil {
		return nil, err
	}
	c.memo[n] = out
	return out, nil
}

func (c *converter) convertNode(n *yaml.Node) (*Node, error) {
	switch n.Kind {
	case 0:
		return c.keep(Null(), 1, n)
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return c.keep(Null().At(posOf(n)), 1, n)
		}
		return c.convert(n.Content[0])
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, fmt.Errorf("%w: dangling alias %q at %s", wferrors.ErrUnsupportedNode, n.Value, posOf(n))
		}
		target, err := c.convert(n.Alias)
		if err != nil {
			return nil, err
		}
		return c.keep(target.At(posOf(n)), c.sizes[target], n)
	case yaml.ScalarNode:
		out, err := fromScalar(n)
		if err != nil {
			return nil, err
		}
		return c.keep(out, 1, n)
	case yaml.SequenceNode:
		items := make([]*Node, 0, len(n.Content))
		size := 1
		for _, child := range n.Content {
			item, err := c.convert(child)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			size += c.sizes[item]
		}
		return c.keep(Sequence(items...).At(posOf(n)), size, n)
	case yaml.MappingNode:
		return c.fromMapping(n)
	default:
		return nil, fmt.Errorf("%w: yaml kind %d at %s", wferrors.ErrUnsupportedNode, n.Kind, posOf(n))
	}
}

func posOf(n *yaml.Node) Position {
	return Position{Line: n.Line, Column: n.Column}
}

func fromScalar(n *yaml.Node) (*Node, error) {
	pos := posOf(n)
	switch n.ShortTag() {
	case tagNull:
		return Null().At(pos), nil
	case tagBool:
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, fmt.Errorf("%w: %w", wferrors.ErrDocumentParse, err)
		}
		return Bool(b).At(pos), nil
	case tagInt, tagFloat:
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, fmt.Errorf("%w: %w", wferrors.ErrDocumentParse, err)
		}
		return Number(f).At(pos), nil
	default:
		return String(n.Value).At(pos), nil
	}
}

func (c *converter) fromMapping(n *yaml.Node) (*Node, error) {
	entries := make([]Entry, 0, len(n.Content)/2)
	seen := make(map[string]struct{}, len(n.Content)/2)
	var merged []Entry

	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind == yaml.AliasNode && k.Alias != nil {
			k = k.Alias
		}
		if k.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: non-scalar mapping key at %s", wferrors.ErrUnsupportedNode, posOf(k))
		}
		if k.ShortTag() == tagMerge {
			m, err := c.mergeSources(v)
			if err != nil {
				return nil, err
			}
			merged = append(merged, m...)
			continue
		}
		if _, dup := seen[k.Value]; dup {
			return nil, fmt.Errorf("%w: %q at %s", wferrors.ErrDuplicateKey, k.Value, posOf(k))
		}
		child, err := c.convert(v)
		if err != nil {
			return nil, err
		}
		seen[k.Value] = struct{}{}
		entries = append(entries, Entry{Key: k.Value, KeyPos: posOf(k), Value: child})
	}

	// Explicit keys win over merged ones.
	for _, e := range merged {
		if _, ok := seen[e.Key]; ok {
			continue
		}
		seen[e.Key] = struct{}{}
		entries = append(entries, e)
	}

	size := 1
	for _, e := range entries {
		size += 1 + c.sizeOf(e.Value)
	}
	return c.keep(Mapping(entries...).At(posOf(n)), size, n)
}

// sizeOf is the recorded expanded size of a converted node.
func (c *converter) sizeOf(n *Node) int {
	if size, ok := c.sizes[n]; ok {
		return size
	}
	return 1
}

// mergeSources returns the entries contributed by a `<<` value: one mapping
// or a sequence of mappings, where earlier mappings take precedence.
func (c *converter) mergeSources(v *yaml.Node) ([]Entry, error) {
	src, err := c.convert(v)
	if err != nil {
		return nil, err
	}

	switch src.Kind() {
	case KindMapping:
		return src.EntryList(), nil
	case KindSequence:
		var out []Entry
		have := make(map[string]struct{})
		for _, item := range src.Items() {
			if item.Kind() != KindMapping {
				return nil, fmt.Errorf("%w: merge sequence holds a %s at %s", wferrors.ErrUnsupportedNode, item.Kind(), item.Pos())
			}
			for _, e := range item.EntryList() {
				if _, ok := have[e.Key]; ok {
					continue
				}
				have[e.Key] = struct{}{}
				out = append(out, e)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: merge value is a %s at %s", wferrors.ErrUnsupportedNode, src.Kind(), src.Pos())
	}
}

// ToYAML converts a value tree back into a yaml.v3 node tree.
func ToYAML(n *Node) *yaml.Node {
	switch n.Kind() {
	case KindNull:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagNull, Value: "null"}
	case KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagBool, Value: strconv.FormatBool(n.b)}
	case KindNumber:
		return numberToYAML(n.num)
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagStr, Value: n.str}
	case KindSequence:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: tagSeq}
		for _, item := range n.items {
			out.Content = append(out.Content, ToYAML(item))
		}
		return out
	default:
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: tagMap}
		for _, e := range n.entries {
			out.Content = append(out.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: tagStr, Value: e.Key},
				ToYAML(e.Value),
			)
		}
		return out
	}
}

func numberToYAML(f float64) *yaml.Node {
	switch {
	case math.IsNaN(f):
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagFloat, Value: ".nan"}
	case math.IsInf(f, 1):
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagFloat, Value: ".inf"}
	case math.IsInf(f, -1):
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagFloat, Value: "-.inf"}
	case f == 0 && math.Signbit(f):
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagFloat, Value: "-0.0"}
	case f == math.Trunc(f) && math.Abs(f) < 1e15:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagInt, Value: strconv.FormatInt(int64(f), 10)}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagFloat, Value: strconv.FormatFloat(f, 'g', -1, 64)}
	}
}

// Marshal renders a value tree as a YAML document indented by two spaces.
func Marshal(n *Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(ToYAML(n)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
