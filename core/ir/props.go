package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Type identifies the variant held by a PropValue.
type Type int

// Property value type constants.
const (
	StringType Type = iota
	IntType
	FloatType
	BoolType
	ListType
	MapType
)

// String returns the human-readable name of the type.
func (t Type) String() string {
	switch t {
	case StringType:
		return "String"
	case IntType:
		return "Int"
	case FloatType:
		return "Float"
	case BoolType:
		return "Bool"
	case ListType:
		return "List"
	case MapType:
		return "Map"
	default:
		return "<unknown type>"
	}
}

// PropValue is a tagged union over the six property value variants.
// The zero value is the empty string.
type PropValue struct {
	typ  Type
	str  string
	num  int64
	fnum float64
	b    bool
	list []PropValue
	m    Properties
}

// String creates a string property value.
func String(s string) PropValue { return PropValue{typ: StringType, str: s} }

// Int creates a 64-bit integer property value.
func Int(i int64) PropValue { return PropValue{typ: IntType, num: i} }

// Float creates a 64-bit float property value.
func Float(f float64) PropValue { return PropValue{typ: FloatType, fnum: f} }

// Bool creates a boolean property value.
func Bool(b bool) PropValue { return PropValue{typ: BoolType, b: b} }

// List creates a list property value. Lists preserve order and may hold
// heterogeneous element types.
func List(items ...PropValue) PropValue {
	return PropValue{typ: ListType, list: items}
}

// MapValue creates a nested map property value.
func MapValue(p Properties) PropValue { return PropValue{typ: MapType, m: p} }

// Type returns the variant tag of the value.
func (v PropValue) Type() Type { return v.typ }

// AsString returns the string value, if this is a string.
func (v PropValue) AsString() (string, bool) {
	if v.typ == StringType {
		return v.str, true
	}
	return "", false
}

// AsInt returns the integer value, if this is an int.
func (v PropValue) AsInt() (int64, bool) {
	if v.typ == IntType {
		return v.num, true
	}
	return 0, false
}

// AsFloat returns the float value, if this is a float.
func (v PropValue) AsFloat() (float64, bool) {
	if v.typ == FloatType {
		return v.fnum, true
	}
	return 0, false
}

// AsBool returns the boolean value, if this is a bool.
func (v PropValue) AsBool() (bool, bool) {
	if v.typ == BoolType {
		return v.b, true
	}
	return false, false
}

// AsList returns the list elements, if this is a list.
func (v PropValue) AsList() ([]PropValue, bool) {
	if v.typ == ListType {
		return v.list, true
	}
	return nil, false
}

// AsMap returns the nested properties, if this is a map.
func (v PropValue) AsMap() (Properties, bool) {
	if v.typ == MapType {
		return v.m, true
	}
	return Properties{}, false
}

// Equal reports deep value equality.
func (v PropValue) Equal(o PropValue) bool {
	if v.typ != o.typ {
		return false
	}
	switch v.typ {
	case StringType:
		return v.str == o.str
	case IntType:
		return v.num == o.num
	case FloatType:
		return v.fnum == o.fnum
	case BoolType:
		return v.b == o.b
	case ListType:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case MapType:
		return v.m.Equal(o.m)
	}
	return false
}

// Clone returns a deep copy of the value.
func (v PropValue) Clone() PropValue {
	switch v.typ {
	case ListType:
		items := make([]PropValue, len(v.list))
		for i, item := range v.list {
			items[i] = item.Clone()
		}
		return PropValue{typ: ListType, list: items}
	case MapType:
		return PropValue{typ: MapType, m: v.m.Clone()}
	default:
		return v
	}
}

// GoString returns a debug representation of the value.
func (v PropValue) GoString() string {
	switch v.typ {
	case StringType:
		return fmt.Sprintf("String(%q)", v.str)
	case IntType:
		return fmt.Sprintf("Int(%d)", v.num)
	case FloatType:
		return fmt.Sprintf("Float(%g)", v.fnum)
	case BoolType:
		return fmt.Sprintf("Bool(%t)", v.b)
	case ListType:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.GoString()
		}
		return "List(" + strings.Join(parts, ", ") + ")"
	case MapType:
		return "Map(" + v.m.GoString() + ")"
	}
	return "<invalid>"
}

// MarshalJSON encodes the value as natural JSON. Floats always carry a
// decimal point or exponent so the decoder can distinguish them from ints.
func (v PropValue) MarshalJSON() ([]byte, error) {
	switch v.typ {
	case StringType:
		return json.Marshal(v.str)
	case IntType:
		return strconv.AppendInt(nil, v.num, 10), nil
	case FloatType:
		return appendFloat(nil, v.fnum)
	case BoolType:
		return strconv.AppendBool(nil, v.b), nil
	case ListType:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, item := range v.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := item.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case MapType:
		return v.m.MarshalJSON()
	}
	return nil, fmt.Errorf("invalid property value type %d", v.typ)
}

// appendFloat formats f so that the result always reads back as a float.
func appendFloat(dst []byte, f float64) ([]byte, error) {
	b := strconv.AppendFloat(dst, f, 'g', -1, 64)
	s := string(b)
	if strings.ContainsAny(s, "nI") {
		// NaN, Inf: not representable in JSON.
		return nil, fmt.Errorf("cannot encode %s as JSON", s)
	}
	if !strings.ContainsAny(s, ".eE") {
		b = append(b, '.', '0')
	}
	return b, nil
}

// UnmarshalJSON decodes natural JSON into a property value. Numbers with a
// fractional part or exponent become floats, all others ints. JSON null has
// no PropValue counterpart and is rejected.
func (v *PropValue) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	pv, err := decodeValue(dec)
	if err != nil {
		return err
	}
	*v = pv
	return nil
}

func decodeValue(dec *json.Decoder) (PropValue, error) {
	tok, err := dec.Token()
	if err != nil {
		return PropValue{}, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (PropValue, error) {
	switch t := tok.(type) {
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		s := t.String()
		if strings.ContainsAny(s, ".eE") {
			f, err := t.Float64()
			if err != nil {
				return PropValue{}, err
			}
			return Float(f), nil
		}
		i, err := t.Int64()
		if err != nil {
			return PropValue{}, err
		}
		return Int(i), nil
	case json.Delim:
		switch t {
		case '[':
			items := []PropValue{}
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return PropValue{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return PropValue{}, err
			}
			return List(items...), nil
		case '{':
			props, err := decodeObject(dec)
			if err != nil {
				return PropValue{}, err
			}
			return MapValue(props), nil
		}
	case nil:
		return PropValue{}, fmt.Errorf("property values cannot be null")
	}
	return PropValue{}, fmt.Errorf("unexpected JSON token %v", tok)
}

// decodeObject reads object members up to and including the closing brace.
// The opening brace has already been consumed.
func decodeObject(dec *json.Decoder) (Properties, error) {
	props := NewProperties()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Properties{}, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return Properties{}, fmt.Errorf("unexpected object key %v", keyTok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return Properties{}, err
		}
		props.Set(key, val)
	}
	if _, err := dec.Token(); err != nil { // consume '}'
		return Properties{}, err
	}
	return props, nil
}

// Properties is a mapping from string key to PropValue. Keys are unique;
// insertion order is irrelevant to equality but preserved for emission.
// The zero value is an empty, usable property set.
type Properties struct {
	keys []string
	vals map[string]PropValue
}

// NewProperties creates an empty property set.
func NewProperties() Properties {
	return Properties{vals: make(map[string]PropValue)}
}

// Set stores a value under key, replacing any existing value.
func (p *Properties) Set(key string, v PropValue) {
	if p.vals == nil {
		p.vals = make(map[string]PropValue)
	}
	if _, exists := p.vals[key]; !exists {
		p.keys = append(p.keys, key)
	}
	p.vals[key] = v
}

// Get returns the value stored under key.
func (p Properties) Get(key string) (PropValue, bool) {
	v, ok := p.vals[key]
	return v, ok
}

// Delete removes key from the set. Removing an absent key is a no-op.
func (p *Properties) Delete(key string) {
	if _, ok := p.vals[key]; !ok {
		return
	}
	delete(p.vals, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
}

// Contains reports whether key is present.
func (p Properties) Contains(key string) bool {
	_, ok := p.vals[key]
	return ok
}

// Len returns the number of properties.
func (p Properties) Len() int { return len(p.keys) }

// IsEmpty reports whether the set has no properties.
func (p Properties) IsEmpty() bool { return len(p.keys) == 0 }

// Keys returns the keys in insertion order.
func (p Properties) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// GetString returns the string value under key, or "" if absent or not a string.
func (p Properties) GetString(key string) string {
	if v, ok := p.vals[key]; ok {
		if s, ok := v.AsString(); ok {
			return s
		}
	}
	return ""
}

// GetInt returns the int value under key, or def if absent or not an int.
func (p Properties) GetInt(key string, def int64) int64 {
	if v, ok := p.vals[key]; ok {
		if i, ok := v.AsInt(); ok {
			return i
		}
	}
	return def
}

// GetFloat returns the float value under key, or def if absent or not a float.
func (p Properties) GetFloat(key string, def float64) float64 {
	if v, ok := p.vals[key]; ok {
		if f, ok := v.AsFloat(); ok {
			return f
		}
	}
	return def
}

// GetBool returns the bool value under key, or false if absent or not a bool.
func (p Properties) GetBool(key string) bool {
	if v, ok := p.vals[key]; ok {
		if b, ok := v.AsBool(); ok {
			return b
		}
	}
	return false
}

// Equal reports deep equality. Key order does not participate.
func (p Properties) Equal(o Properties) bool {
	if len(p.keys) != len(o.keys) {
		return false
	}
	for k, v := range p.vals {
		ov, ok := o.vals[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the property set, preserving key order.
func (p Properties) Clone() Properties {
	out := Properties{vals: make(map[string]PropValue, len(p.keys))}
	out.keys = make([]string, len(p.keys))
	copy(out.keys, p.keys)
	for k, v := range p.vals {
		out.vals[k] = v.Clone()
	}
	return out
}

// GoString returns a debug representation of the property set.
func (p Properties) GoString() string {
	parts := make([]string, len(p.keys))
	for i, k := range p.keys {
		parts[i] = fmt.Sprintf("%q: %s", k, p.vals[k].GoString())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// MarshalJSON encodes the set as a JSON object in key insertion order.
func (p Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := p.vals[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into the property set, replacing any
// existing contents.
func (p *Properties) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("properties must be a JSON object, got %v", tok)
	}
	props, err := decodeObject(dec)
	if err != nil {
		return err
	}
	*p = props
	return nil
}
