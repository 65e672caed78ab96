package fileconv

import (
	"errors"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

type nodeKind uint8

const (
	nullNode nodeKind = iota
	boolNode
	numberNode
	stringNode
	arrayNode
	objectNode
)

// node is an ordered JSON-like value. Object fields follow JavaScript
// property order: array-index keys ascending, then the rest in insertion
// order. A nil *node is "undefined": serializers omit it and CSV renders it
// empty.
type node struct {
	kind   nodeKind
	str    string
	num    float64
	b      bool
	items  []*node
	fields []field
}

type field struct {
	key string
	val *node
}

func newString(s string) *node  { return &node{kind: stringNode, str: s} }
func newNumber(f float64) *node { return &node{kind: numberNode, num: f} }
func newArray(items ...*node) *node {
	return &node{kind: arrayNode, items: items}
}
func newObject() *node { return &node{kind: objectNode} }

// set assigns key. An existing key keeps its position and takes the new value.
func (n *node) set(key string, val *node) {
	for i := range n.fields {
		if n.fields[i].key == key {
			n.fields[i].val = val
			return
		}
	}
	idx, ok := arrayIndex(key)
	if !ok {
		n.fields = append(n.fields, field{key: key, val: val})
		return
	}
	pos := 0
	for pos < len(n.fields) {
		other, isIndex := arrayIndex(n.fields[pos].key)
		if !isIndex || other > idx {
			break
		}
		pos++
	}
	n.fields = slices.Insert(n.fields, pos, field{key: key, val: val})
}

// arrayIndex reports whether key is a canonical array index: a decimal
// integer in [0, 2^32-2] without leading zeros.
func arrayIndex(key string) (uint32, bool) {
	if key == "" || len(key) > 10 || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	for i := 0; i < len(key); i++ {
		if key[i] < '0' || key[i] > '9' {
			return 0, false
		}
	}
	v, err := strconv.ParseUint(key, 10, 64)
	if err != nil || v > math.MaxUint32-1 {
		return 0, false
	}
	return uint32(v), true
}

func (n *node) get(key string) *node {
	for _, f := range n.fields {
		if f.key == key {
			return f.val
		}
	}
	return nil
}

// keys returns the object's defined keys in order.
func (n *node) keys() []string {
	out := make([]string, 0, len(n.fields))
	for _, f := range n.fields {
		if f.val != nil {
			out = append(out, f.key)
		}
	}
	return out
}

var errInvalidJSON = errors.New("parsing failed")

// parseJSON parses text into an ordered tree. Duplicate keys keep the first
// position and the last value.
func parseJSON(text string) (*node, error) {
	if !gjson.Valid(text) {
		return nil, &ValidationError{Format: JSON, Err: errInvalidJSON}
	}
	return fromGJSON(gjson.Parse(text)), nil
}

func fromGJSON(r gjson.Result) *node {
	switch r.Type {
	case gjson.Null:
		return &node{kind: nullNode}
	case gjson.True:
		return &node{kind: boolNode, b: true}
	case gjson.False:
		return &node{kind: boolNode}
	case gjson.Number:
		f, err := strconv.ParseFloat(strings.TrimSpace(r.Raw), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			f = r.Num
		}
		return newNumber(f)
	case gjson.String:
		return newString(r.String())
	}

	if r.IsArray() {
		arr := newArray()
		r.ForEach(func(_, v gjson.Result) bool {
			arr.items = append(arr.items, fromGJSON(v))
			return true
		})
		return arr
	}

	obj := newObject()
	r.ForEach(func(k, v gjson.Result) bool {
		obj.set(k.String(), fromGJSON(v))
		return true
	})
	return obj
}

// formatNumber renders a float the way JavaScript's Number#toString does.
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[0]
		exp = strings.TrimLeft(exp[1:], "0")
		return mant + "e" + string(sign) + exp
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// scalarString renders a value the way JavaScript's String() and
// Array#join do: null and undefined become empty, arrays are comma-joined
// and objects collapse to a fixed placeholder.
func scalarString(n *node) string {
	if n == nil {
		return ""
	}
	switch n.kind {
	case nullNode:
		return ""
	case boolNode:
		return strconv.FormatBool(n.b)
	case numberNode:
		return formatNumber(n.num)
	case stringNode:
		return n.str
	case arrayNode:
		parts := make([]string, len(n.items))
		for i, it := range n.items {
			parts[i] = scalarString(it)
		}
		return strings.Join(parts, ",")
	}
	return "[object Object]"
}

// marshalJSON serializes n. With indent set, nested values are placed on their
// own lines, indent repeated per depth.
func marshalJSON(n *node, indent string) string {
	var b strings.Builder
	writeJSON(&b, n, indent, "")
	return b.String()
}

func writeJSON(b *strings.Builder, n *node, indent, prefix string) {
	if n == nil {
		b.WriteString("null")
		return
	}

	switch n.kind {
	case nullNode:
		b.WriteString("null")
	case boolNode:
		b.WriteString(strconv.FormatBool(n.b))
	case numberNode:
		if math.IsNaN(n.num) || math.IsInf(n.num, 0) {
			b.WriteString("null")
		} else {
			b.WriteString(formatNumber(n.num))
		}
	case stringNode:
		writeJSONString(b, n.str)
	case arrayNode:
		if len(n.items) == 0 {
			b.WriteString("[]")
			return
		}
		inner := prefix + indent
		b.WriteByte('[')
		for i, it := range n.items {
			if i > 0 {
				b.WriteByte(',')
			}
			newline(b, indent, inner)
			writeJSON(b, it, indent, inner)
		}
		newline(b, indent, prefix)
		b.WriteByte(']')
	case objectNode:
		inner := prefix + indent
		wrote := false
		b.WriteByte('{')
		for _, f := range n.fields {
			if f.val == nil {
				continue
			}
			if wrote {
				b.WriteByte(',')
			}
			newline(b, indent, inner)
			writeJSONString(b, f.key)
			b.WriteByte(':')
			if indent != "" {
				b.WriteByte(' ')
			}
			writeJSON(b, f.val, indent, inner)
			wrote = true
		}
		if wrote {
			newline(b, indent, prefix)
		}
		b.WriteByte('}')
	}
}

func newline(b *strings.Builder, indent, prefix string) {
	if indent == "" {
		return
	}
	b.WriteByte('\n')
	b.WriteString(prefix)
}

const hexDigits = "0123456789abcdef"

// writeJSONString quotes s with the same escapes JSON.stringify uses. Unlike
// encoding/json it leaves <, > and & alone.
func writeJSONString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); {
		c := s[i]
		if c >= utf8.RuneSelf {
			r, size := utf8.DecodeRuneInString(s[i:])
			b.WriteRune(r)
			i += size
			continue
		}
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 {
				b.WriteString(`\u00`)
				b.WriteByte(hexDigits[c>>4])
				b.WriteByte(hexDigits[c&0xF])
			} else {
				b.WriteByte(c)
			}
		}
		i++
	}
	b.WriteByte('"')
}
