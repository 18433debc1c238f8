package codec

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/kiesman99/spritepack/pkg/sheet"
)

// ValueKind is the type tag of a property list value.
type ValueKind int

const (
	KindString ValueKind = iota
	KindInteger
	KindReal
	KindBool
	KindDict
	KindArray
)

// Value is one decoded property list node.
type Value struct {
	Kind  ValueKind
	Str   string
	Int   int64
	Real  float64
	Bool  bool
	Dict  *Dict
	Array []Value
}

// Dict is a property list dictionary that remembers key order.
type Dict struct {
	keys   []string
	values map[string]Value
}

func newDict() *Dict {
	return &Dict{values: make(map[string]Value)}
}

// Keys returns the keys in document order.
func (d *Dict) Keys() []string {
	return d.keys
}

// Get returns the value stored under key.
func (d *Dict) Get(key string) (Value, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Len returns the number of keys.
func (d *Dict) Len() int {
	return len(d.keys)
}

func (d *Dict) set(key string, v Value) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v
}

// Text returns the value as text when it is a string.
func (v Value) Text() (string, bool) {
	if v.Kind != KindString {
		return "", false
	}
	return v.Str, true
}

// Truthy interprets booleans, "true"/"YES" strings and non-zero numbers.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindInteger:
		return v.Int != 0
	case KindReal:
		return v.Real != 0
	case KindString:
		s := strings.ToLower(strings.TrimSpace(v.Str))
		return s == "true" || s == "yes" || s == "1"
	}
	return false
}

// node is a raw XML element before type interpretation.
type node struct {
	name     string
	text     []byte
	children []*node
}

func parseXML(content []byte) (*node, error) {
	dec := xml.NewDecoder(bytes.NewReader(content))
	doc := &node{}
	stack := []*node{doc}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: t.Name.Local}
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, n)
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			top := stack[len(stack)-1]
			top.text = append(top.text, t...)
		}
	}
	return doc, nil
}

// ParsePlist decodes a property list document and returns its root
// dictionary, which is either the first dict inside <plist> or a bare
// top-level dict.
func ParsePlist(content []byte) (*Dict, error) {
	doc, err := parseXML(content)
	if err != nil {
		return nil, sheet.Wrap(sheet.ErrInvalidConfig, err, "parse plist xml")
	}

	for _, n := range doc.children {
		switch n.name {
		case "plist":
			for _, child := range n.children {
				if child.name == "dict" {
					return decodeDict(child)
				}
			}
		case "dict":
			return decodeDict(n)
		}
	}
	return nil, sheet.Errorf(sheet.ErrInvalidConfig, "plist has no root dict")
}

func decodeDict(n *node) (*Dict, error) {
	d := newDict()
	var key string
	haveKey := false

	for _, child := range n.children {
		if child.name == "key" {
			key, haveKey = string(child.text), true
			continue
		}
		if !haveKey {
			continue
		}
		if _, dup := d.values[key]; dup {
			return nil, sheet.Errorf(sheet.ErrInvalidConfig, "duplicate key %q", key)
		}
		v, err := decodeValue(child)
		if err != nil {
			return nil, err
		}
		d.set(key, v)
		haveKey = false
	}
	return d, nil
}

func decodeValue(n *node) (Value, error) {
	text := strings.TrimSpace(string(n.text))

	switch n.name {
	case "dict":
		d, err := decodeDict(n)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindDict, Dict: d}, nil
	case "array":
		arr := make([]Value, 0, len(n.children))
		for _, child := range n.children {
			v, err := decodeValue(child)
			if err != nil {
				return Value{}, err
			}
			arr = append(arr, v)
		}
		return Value{Kind: KindArray, Array: arr}, nil
	case "string", "date", "data":
		return Value{Kind: KindString, Str: string(n.text)}, nil
	case "integer":
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return Value{Kind: KindInteger, Int: i}, nil
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Value{}, sheet.Wrap(sheet.ErrInvalidConfig, err, "plist integer %q", text)
		}
		return Value{Kind: KindInteger, Int: int64(f)}, nil
	case "real":
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Value{}, sheet.Wrap(sheet.ErrInvalidConfig, err, "plist real %q", text)
		}
		return Value{Kind: KindReal, Real: f}, nil
	case "true":
		return Value{Kind: KindBool, Bool: true}, nil
	case "false":
		return Value{Kind: KindBool, Bool: false}, nil
	}
	return Value{}, sheet.Errorf(sheet.ErrInvalidConfig, "unsupported plist element <%s>", n.name)
}
