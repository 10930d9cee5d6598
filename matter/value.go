package matter

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
)

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
	}
	return "unknown"
}

// Value is the small recursive sum type used for decoded metadata fields:
// null, boolean, number, string, ordered sequence or ordered mapping.
// Values are built bottom-up by the decoder from a single pass over the
// structured data, so a Value can never reference an ancestor.
type Value struct {
	kind   Kind
	boolv  bool
	isInt  bool
	intv   int64
	floatv float64
	strv   string
	seq    []Value
	mapv   *Mapping
}

func NullValue() Value               { return Value{kind: KindNull} }
func BoolValue(b bool) Value         { return Value{kind: KindBool, boolv: b} }
func IntValue(i int64) Value         { return Value{kind: KindNumber, isInt: true, intv: i} }
func FloatValue(f float64) Value     { return Value{kind: KindNumber, floatv: f} }
func StringValue(s string) Value     { return Value{kind: KindString, strv: s} }
func SequenceValue(vs []Value) Value { return Value{kind: KindSequence, seq: vs} }
func MapValue(m *Mapping) Value      { return Value{kind: KindMapping, mapv: m} }

func (v Value) Kind() Kind { return v.kind }

// Bool returns the boolean payload; false for any other kind.
func (v Value) Bool() bool { return v.kind == KindBool && v.boolv }

// Int returns the integer payload. The second result is false when the value
// is not a number or was decoded as a float.
func (v Value) Int() (int64, bool) {
	if v.kind != KindNumber || !v.isInt {
		return 0, false
	}
	return v.intv, true
}

// Float returns the numeric payload as a float64, converting integers.
func (v Value) Float() float64 {
	if v.kind != KindNumber {
		return 0
	}
	if v.isInt {
		return float64(v.intv)
	}
	return v.floatv
}

// Str returns the string payload; empty for any other kind.
func (v Value) Str() string {
	if v.kind != KindString {
		return ""
	}
	return v.strv
}

// Seq returns the sequence items. The caller must not modify the result.
func (v Value) Seq() []Value {
	if v.kind != KindSequence {
		return nil
	}
	return v.seq
}

// Map returns the mapping payload, or nil for any other kind.
func (v Value) Map() *Mapping {
	if v.kind != KindMapping {
		return nil
	}
	return v.mapv
}

// Interface converts the value to plain Go types (nil, bool, int64, float64,
// string, []any, map[string]any). Mapping order is lost; this form is meant
// for consumers like the template stage that address fields by name.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.boolv
	case KindNumber:
		if v.isInt {
			return v.intv
		}
		return v.floatv
	case KindString:
		return v.strv
	case KindSequence:
		items := make([]any, len(v.seq))
		for i, it := range v.seq {
			items[i] = it.Interface()
		}
		return items
	case KindMapping:
		return v.mapv.Interface()
	}
	return nil
}

// MarshalJSON writes the value preserving mapping insertion order.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindBool:
		return json.Marshal(v.boolv)
	case KindNumber:
		if v.isInt {
			return []byte(strconv.FormatInt(v.intv, 10)), nil
		}
		// JSON has no NaN or infinity; fall back to null.
		if math.IsNaN(v.floatv) || math.IsInf(v.floatv, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.floatv)
	case KindString:
		return json.Marshal(v.strv)
	case KindSequence:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, it := range v.seq {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := it.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case KindMapping:
		return v.mapv.MarshalJSON()
	}
	return []byte("null"), nil
}

// Mapping is an ordered String to Value map. Keys are unique and enumerate
// in insertion order.
type Mapping struct {
	keys   []string
	values map[string]Value
}

func NewMapping() *Mapping {
	return &Mapping{values: make(map[string]Value)}
}

// Set adds or replaces a key. A replaced key keeps its original position.
func (m *Mapping) Set(key string, v Value) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

func (m *Mapping) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *Mapping) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Delete removes a key, preserving the order of the remaining keys.
func (m *Mapping) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order. The result is a copy.
func (m *Mapping) Keys() []string {
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

func (m *Mapping) Len() int { return len(m.keys) }

// Interface converts the mapping to a plain map[string]any.
func (m *Mapping) Interface() map[string]any {
	out := make(map[string]any, len(m.keys))
	for _, k := range m.keys {
		out[k] = m.values[k].Interface()
	}
	return out
}

// MarshalJSON writes the mapping as a JSON object in insertion order.
func (m *Mapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := m.values[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
