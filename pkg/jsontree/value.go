// Package jsontree provides an order-preserving JSON document model.
//
// Values decoded with this package keep object member order and the literal
// text of numbers, so a document can be decoded, edited and encoded again
// without reshuffling keys or reformatting numbers that were not touched.
package jsontree

import (
	"strconv"
)

// Kind identifies the JSON type held by a Value.
type Kind int

// JSON value kinds.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the JSON name of the kind.
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
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a decoded JSON value. It is one of Null, Bool, Number, String,
// Array or *Object.
type Value interface {
	Kind() Kind
}

// Null is the JSON null literal.
type Null struct{}

// Bool is a JSON boolean.
type Bool bool

// Number is a JSON number kept as its literal text.
type Number string

// String is a JSON string.
type String string

// Array is a JSON array.
type Array []Value

// Member is a single key/value pair of an Object.
type Member struct {
	Key   string
	Value Value
}

// Object is a JSON object with members in document order.
type Object struct {
	Members []Member
}

func (Null) Kind() Kind    { return KindNull }
func (Bool) Kind() Kind    { return KindBool }
func (Number) Kind() Kind  { return KindNumber }
func (String) Kind() Kind  { return KindString }
func (Array) Kind() Kind   { return KindArray }
func (*Object) Kind() Kind { return KindObject }

// Float64 parses the number literal.
func (n Number) Float64() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}

// Int64 parses the number literal as an integer. Literals with a fraction
// or exponent fail.
func (n Number) Int64() (int64, error) {
	return strconv.ParseInt(string(n), 10, 64)
}

// Float formats f as a JSON number that always carries a fractional part,
// e.g. 1 becomes "1.0".
func Float(f float64) Number {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	for _, c := range s {
		if c == '.' || c == 'e' || c == 'E' || c == 'N' || c == 'I' {
			return Number(s)
		}
	}
	return Number(s + ".0")
}

// Int formats i as a JSON number.
func Int(i int64) Number {
	return Number(strconv.FormatInt(i, 10))
}

// NewObject returns an empty object with room for n members.
func NewObject(n int) *Object {
	return &Object{Members: make([]Member, 0, n)}
}

// Len returns the number of members.
func (o *Object) Len() int {
	return len(o.Members)
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	for i := range o.Members {
		if o.Members[i].Key == key {
			return o.Members[i].Value, true
		}
	}
	return nil, false
}

// Set stores v under key. An existing key keeps its position; a new key is
// appended.
func (o *Object) Set(key string, v Value) {
	for i := range o.Members {
		if o.Members[i].Key == key {
			o.Members[i].Value = v
			return
		}
	}
	o.Members = append(o.Members, Member{Key: key, Value: v})
}

// Keys returns member keys in order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.Members))
	for i, m := range o.Members {
		keys[i] = m.Key
	}
	return keys
}

// Clone returns a deep copy of v. Scalars are immutable and returned as-is.
func Clone(v Value) Value {
	switch t := v.(type) {
	case Array:
		if t == nil {
			return Array(nil)
		}
		out := make(Array, len(t))
		for i, item := range t {
			out[i] = Clone(item)
		}
		return out
	case *Object:
		if t == nil {
			return t
		}
		out := NewObject(len(t.Members))
		for _, m := range t.Members {
			out.Members = append(out.Members, Member{Key: m.Key, Value: Clone(m.Value)})
		}
		return out
	default:
		return v
	}
}

// Equal reports whether a and b are structurally equal. Numbers compare by
// literal text.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch ta := a.(type) {
	case Array:
		tb := b.(Array)
		if len(ta) != len(tb) {
			return false
		}
		for i := range ta {
			if !Equal(ta[i], tb[i]) {
				return false
			}
		}
		return true
	case *Object:
		tb := b.(*Object)
		if len(ta.Members) != len(tb.Members) {
			return false
		}
		for i := range ta.Members {
			if ta.Members[i].Key != tb.Members[i].Key || !Equal(ta.Members[i].Value, tb.Members[i].Value) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
