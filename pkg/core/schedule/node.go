// Package schedule defines the in-memory document model for ASI survey
// schedules: order-preserving nested key/value documents whose leaves are
// always strings, plus the numeric cell parsing and formatting policies
// shared by every calculation engine.
package schedule

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// NodeKind discriminates the two shapes a document node can take.
type NodeKind int

const (
	// KindCell is a leaf string value. The empty string is the canonical
	// "unset" sentinel.
	KindCell NodeKind = iota
	// KindObject is an ordered mapping of string keys to child nodes.
	KindObject
)

// Node is one node of a schedule document: either a cell (string) or an
// ordered object of child nodes. The key contract of the surrounding system
// is externally imposed: keys are never added, removed, renamed or reordered
// by serialization, so Node keeps explicit insertion order and round-trips
// through JSON byte-stably.
type Node struct {
	kind     NodeKind
	cell     string
	keys     []string
	children map[string]*Node
}

// NewCell returns a leaf node holding the given string.
func NewCell(value string) *Node {
	return &Node{kind: KindCell, cell: value}
}

// NewObject returns an empty ordered object node.
func NewObject() *Node {
	return &Node{kind: KindObject, children: make(map[string]*Node)}
}

// Kind reports whether the node is a cell or an object.
func (n *Node) Kind() NodeKind { return n.kind }

// IsObject reports whether the node is an ordered object.
func (n *Node) IsObject() bool { return n.kind == KindObject }

// Cell returns the leaf value. For object nodes it returns the empty string.
func (n *Node) Cell() string {
	if n.kind != KindCell {
		return ""
	}
	return n.cell
}

// SetCellValue replaces the leaf value of a cell node. It is a no-op on
// object nodes.
func (n *Node) SetCellValue(value string) {
	if n.kind == KindCell {
		n.cell = value
	}
}

// Keys returns the child keys of an object node in insertion order. The
// returned slice is shared; callers must not mutate it.
func (n *Node) Keys() []string {
	return n.keys
}

// Len returns the number of children of an object node.
func (n *Node) Len() int { return len(n.keys) }

// Child returns the named child of an object node.
func (n *Node) Child(key string) (*Node, bool) {
	if n.kind != KindObject {
		return nil, false
	}
	child, ok := n.children[key]
	return child, ok
}

// CellOf returns the leaf value of the named child. The second return is
// false when the child is absent or is an object where a scalar was
// expected (the structural-mismatch case every summation must skip).
func (n *Node) CellOf(key string) (string, bool) {
	child, ok := n.Child(key)
	if !ok || child.kind != KindCell {
		return "", false
	}
	return child.cell, true
}

// Set attaches a child to an object node, appending the key when it is new
// and replacing the value in place when it already exists.
func (n *Node) Set(key string, child *Node) {
	if n.kind != KindObject {
		return
	}
	if _, exists := n.children[key]; !exists {
		n.keys = append(n.keys, key)
	}
	n.children[key] = child
}

// SetCell is shorthand for Set(key, NewCell(value)).
func (n *Node) SetCell(key, value string) {
	n.Set(key, NewCell(value))
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	if n.kind == KindCell {
		return NewCell(n.cell)
	}
	out := NewObject()
	for _, key := range n.keys {
		out.Set(key, n.children[key].Clone())
	}
	return out
}

// MarshalJSON renders the node with its keys in insertion order.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.appendJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *Node) appendJSON(buf *bytes.Buffer) error {
	if n.kind == KindCell {
		return appendString(buf, n.cell)
	}
	buf.WriteByte('{')
	for i, key := range n.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := appendString(buf, key); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := n.children[key].appendJSON(buf); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// appendString encodes a JSON string without HTML escaping. Row keys like
// "3. Plant & Machinery" must survive serialization byte-for-byte;
// json.Marshal would turn the ampersand into \u0026.
func appendString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode terminates every value with a newline the compact form
	// must not carry.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// UnmarshalJSON decodes a node preserving key order. Cells are always
// strings on the wire, but upstream extraction occasionally emits bare
// numbers or nulls; those are coerced to their literal string and "".
func (n *Node) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	decoded, err := decodeNode(dec)
	if err != nil {
		return err
	}
	*n = *decoded

	// Anything after the first value is a malformed document.
	if _, err := dec.Token(); err == nil {
		return fmt.Errorf("schedule: trailing data after document")
	}
	return nil
}

func decodeNode(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeValue(dec, tok)
}

func decodeValue(dec *json.Decoder, tok json.Token) (*Node, error) {
	switch v := tok.(type) {
	case string:
		return NewCell(v), nil
	case json.Number:
		return NewCell(v.String()), nil
	case bool:
		return NewCell(strconv.FormatBool(v)), nil
	case nil:
		return NewCell(""), nil
	case json.Delim:
		if v != '{' {
			return nil, fmt.Errorf("schedule: unsupported token %q in document", v.String())
		}
		obj := NewObject()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("schedule: non-string object key %v", keyTok)
			}
			child, err := decodeNode(dec)
			if err != nil {
				return nil, err
			}
			obj.Set(key, child)
		}
		// Consume the closing '}'.
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("schedule: unsupported token %v", tok)
	}
}
