// Package option provides the typed value attached to session options: a
// closed union over seven scalar/list kinds with an exhaustive visitor for
// read access.
package option

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the active case of a Value.
type Kind int

const (
	// KindInvalid is the kind of the zero Value. It is never produced by a
	// constructor and never accepted by the wire codec.
	KindInvalid Kind = iota
	KindString
	KindBool
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindStringList
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindStringList:
		return "string_list"
	default:
		return "invalid"
	}
}

// Value holds exactly one of the seven permitted session option kinds.
// Values are immutable after construction: list payloads are copied on the
// way in and on the way out, and there is no setter. Replace a session
// option by storing a new Value, not by mutating an old one.
//
// The zero Value is invalid; use the constructors.
type Value struct {
	kind Kind
	str  string
	b    bool
	i32  int32
	i64  int64
	f32  float32
	f64  float64
	list []string
}

// String constructs a UTF-8 string value.
func String(v string) Value { return Value{kind: KindString, str: v} }

// Bool constructs a boolean value.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Int32 constructs a 32-bit signed integer value.
func Int32(v int32) Value { return Value{kind: KindInt32, i32: v} }

// Int64 constructs a 64-bit signed integer value.
func Int64(v int64) Value { return Value{kind: KindInt64, i64: v} }

// Float32 constructs a 32-bit float value.
func Float32(v float32) Value { return Value{kind: KindFloat32, f32: v} }

// Float64 constructs a 64-bit float value.
func Float64(v float64) Value { return Value{kind: KindFloat64, f64: v} }

// StringList constructs an ordered list-of-strings value. The slice is
// copied; later changes to v do not affect the Value.
func StringList(v []string) Value {
	list := make([]string, len(v))
	copy(list, v)
	return Value{kind: KindStringList, list: list}
}

// Kind reports the active case.
func (v Value) Kind() Kind { return v.kind }

// Valid reports whether the Value was produced by a constructor.
func (v Value) Valid() bool { return v.kind != KindInvalid }

// Visitor receives the single active case of a Value. All seven fields must
// be set: Visit panics when the field for the active case is nil, which is
// a wiring defect at the consumption site, not a runtime condition.
type Visitor struct {
	String     func(string)
	Bool       func(bool)
	Int32      func(int32)
	Int64      func(int64)
	Float32    func(float32)
	Float64    func(float64)
	StringList func([]string)
}

// Visit dispatches the active case to the matching visitor field. Visiting
// the zero Value panics.
func (v Value) Visit(vis Visitor) {
	switch v.kind {
	case KindString:
		vis.String(v.str)
	case KindBool:
		vis.Bool(v.b)
	case KindInt32:
		vis.Int32(v.i32)
	case KindInt64:
		vis.Int64(v.i64)
	case KindFloat32:
		vis.Float32(v.f32)
	case KindFloat64:
		vis.Float64(v.f64)
	case KindStringList:
		list := make([]string, len(v.list))
		copy(list, v.list)
		vis.StringList(list)
	default:
		panic("option: visit of invalid Value")
	}
}

// Equal reports whether two values hold the same case with the same
// payload. List values compare element-wise in order.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindBool:
		return v.b == o.b
	case KindInt32:
		return v.i32 == o.i32
	case KindInt64:
		return v.i64 == o.i64
	case KindFloat32:
		return v.f32 == o.f32
	case KindFloat64:
		return v.f64 == o.f64
	case KindStringList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != o.list[i] {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// String renders the value for logs and error messages.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return strconv.Quote(v.str)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt32:
		return strconv.FormatInt(int64(v.i32), 10)
	case KindInt64:
		return strconv.FormatInt(v.i64, 10)
	case KindFloat32:
		return strconv.FormatFloat(float64(v.f32), 'g', -1, 32)
	case KindFloat64:
		return strconv.FormatFloat(v.f64, 'g', -1, 64)
	case KindStringList:
		quoted := make([]string, len(v.list))
		for i, s := range v.list {
			quoted[i] = strconv.Quote(s)
		}
		return fmt.Sprintf("[%s]", strings.Join(quoted, ", "))
	default:
		return "<invalid>"
	}
}
