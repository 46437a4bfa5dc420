// Package jsonvalue models arbitrary JSON documents as a tagged variant so that
// nested payloads can be traversed without reflection. Object member order is
// preserved as decoded, which keeps traversal order stable.
package jsonvalue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// Kind identifies the variant held by a Value
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Member is a single key/value pair of an object
type Member struct {
	Key   string
	Value Value
}

// Value is an immutable JSON value. The zero Value is null.
type Value struct {
	kind    Kind
	boolean bool
	text    string // string content, or the literal of a number
	items   []Value
	members []Member
}

func Null() Value { return Value{} }

func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

func String(s string) Value { return Value{kind: KindString, text: s} }

func Array(items ...Value) Value { return Value{kind: KindArray, items: items} }

func Object(members ...Member) Value { return Value{kind: KindObject, members: members} }

// Number builds a number from its JSON literal
func Number(literal string) Value { return Value{kind: KindNumber, text: literal} }

// Int builds a number from an int
func Int(n int) Value { return Number(strconv.Itoa(n)) }

// Strings builds an array of strings
func Strings(items []string) Value {
	out := make([]Value, len(items))
	for i, s := range items {
		out[i] = String(s)
	}
	return Array(out...)
}

// M is shorthand for building an object member
func M(key string, v Value) Member { return Member{Key: key, Value: v} }

func (v Value) Kind() Kind { return v.kind }

// Str returns the string content and whether v is a string
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.text, true
}

// Items returns array elements; nil for non-arrays
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.items
}

// Members returns object members in order; nil for non-objects
func (v Value) Members() []Member {
	if v.kind != KindObject {
		return nil
	}
	return v.members
}

// Get returns the member value for key. The last duplicate key wins, like encoding/json.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	for i := len(v.members) - 1; i >= 0; i-- {
		if v.members[i].Key == key {
			return v.members[i].Value, true
		}
	}
	return Value{}, false
}

// Visit calls fn for every string leaf under v. Object members extend the path
// with ".key" and array elements with "[i]" using 1-based indices.
func Visit(prefix string, v Value, fn func(path, s string)) {
	switch v.kind {
	case KindString:
		fn(prefix, v.text)
	case KindArray:
		for i, item := range v.items {
			Visit(fmt.Sprintf("%s[%d]", prefix, i+1), item, fn)
		}
	case KindObject:
		for _, m := range v.members {
			Visit(prefix+"."+m.Key, m.Value, fn)
		}
	}
}

// Parse decodes a JSON document, keeping object member order.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, fmt.Errorf("jsonvalue: unexpected data after top-level value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '[':
			var items []Value
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Array(items...), nil
		case '{':
			var members []Member
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, _ := keyTok.(string)
				val, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				members = append(members, Member{Key: key, Value: val})
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Object(members...), nil
		}
		return Value{}, fmt.Errorf("jsonvalue: unexpected delimiter %q", t)
	case bool:
		return Bool(t), nil
	case json.Number:
		return Number(t.String()), nil
	case string:
		return String(t), nil
	case nil:
		return Null(), nil
	}
	return Value{}, fmt.Errorf("jsonvalue: unexpected token %v", tok)
}

// FromAny converts a value produced by encoding/json or yaml.v3 decoding.
// Map keys are sorted since Go maps carry no order.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case json.Number:
		return Number(t.String())
	case float64:
		return Number(strconv.FormatFloat(t, 'f', -1, 64))
	case int:
		return Int(t)
	case int64:
		return Number(strconv.FormatInt(t, 10))
	case []string:
		return Strings(t)
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = FromAny(item)
		}
		return Array(items...)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		members := make([]Member, len(keys))
		for i, k := range keys {
			members[i] = Member{Key: k, Value: FromAny(t[k])}
		}
		return Object(members...)
	default:
		return String(fmt.Sprint(t))
	}
}

// MarshalJSON encodes v with member order preserved
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes into v with member order preserved
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.boolean))
	case KindNumber:
		buf.WriteString(v.text)
	case KindString:
		b, err := json.Marshal(v.text)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// String renders v as text: strings verbatim, everything else as compact JSON.
func (v Value) String() string {
	if v.kind == KindString {
		return v.text
	}
	b, err := v.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(b)
}
