package value

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// MarshalJSON implements json.Marshaler. Mapping order is kept. Non-finite
// numbers have no JSON form and are written as their YAML spelling in a string.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *Node) writeJSON(buf *bytes.Buffer) error {
	switch n.Kind() {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(n.b))
	case KindNumber:
		switch {
		case math.IsNaN(n.num):
			buf.WriteString(`".nan"`)
		case math.IsInf(n.num, 1):
			buf.WriteString(`".inf"`)
		case math.IsInf(n.num, -1):
			buf.WriteString(`"-.inf"`)
		default:
			buf.WriteString(strconv.FormatFloat(n.num, 'g', -1, 64))
		}
	case KindString:
		b, err := json.Marshal(n.str)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindSequence:
		buf.WriteByte('[')
		for i, item := range n.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMapping:
		buf.WriteByte('{')
		for i, e := range n.entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(e.Key)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			if err := e.Value.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}
