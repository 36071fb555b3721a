// Package wire maps session option values and their request/response
// envelopes to and from the protobuf wire format.
//
// The schema is carried as explicit field-number tables rather than
// generated code. An option value is a oneof over seven cases; decoding a
// value that selects no case fails with rpcsession.ErrUnsetValue, never a
// default. Map fields are emitted in sorted key order so encoding is
// deterministic.
package wire

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/creastat/rpcsession"
	"github.com/creastat/rpcsession/option"
)

// Field numbers of the option-value oneof. Int32/int64 ride as sfixed32/
// sfixed64, floats as fixed32/fixed64, the string list as a nested message.
const (
	fieldStringValue     protowire.Number = 1
	fieldBoolValue       protowire.Number = 2
	fieldInt32Value      protowire.Number = 3
	fieldInt64Value      protowire.Number = 4
	fieldFloatValue      protowire.Number = 5
	fieldDoubleValue     protowire.Number = 6
	fieldStringListValue protowire.Number = 7
)

// Inside the nested string-list message.
const fieldStringListValues protowire.Number = 1

// AppendValue appends the wire form of v to b and returns the extended
// buffer. v must be a constructed value; appending the zero option.Value
// panics (callers validate with option.Value.Valid first).
func AppendValue(b []byte, v option.Value) []byte {
	v.Visit(option.Visitor{
		String: func(s string) {
			b = protowire.AppendTag(b, fieldStringValue, protowire.BytesType)
			b = protowire.AppendString(b, s)
		},
		Bool: func(x bool) {
			b = protowire.AppendTag(b, fieldBoolValue, protowire.VarintType)
			b = protowire.AppendVarint(b, protowire.EncodeBool(x))
		},
		Int32: func(x int32) {
			b = protowire.AppendTag(b, fieldInt32Value, protowire.Fixed32Type)
			b = protowire.AppendFixed32(b, uint32(x))
		},
		Int64: func(x int64) {
			b = protowire.AppendTag(b, fieldInt64Value, protowire.Fixed64Type)
			b = protowire.AppendFixed64(b, uint64(x))
		},
		Float32: func(x float32) {
			b = protowire.AppendTag(b, fieldFloatValue, protowire.Fixed32Type)
			b = protowire.AppendFixed32(b, math.Float32bits(x))
		},
		Float64: func(x float64) {
			b = protowire.AppendTag(b, fieldDoubleValue, protowire.Fixed64Type)
			b = protowire.AppendFixed64(b, math.Float64bits(x))
		},
		StringList: func(list []string) {
			var inner []byte
			for _, s := range list {
				inner = protowire.AppendTag(inner, fieldStringListValues, protowire.BytesType)
				inner = protowire.AppendString(inner, s)
			}
			b = protowire.AppendTag(b, fieldStringListValue, protowire.BytesType)
			b = protowire.AppendBytes(b, inner)
		},
	})
	return b
}

// ParseValue decodes one option value from data. Following oneof semantics
// the last recognized case wins and unknown fields are skipped; a value
// that sets no case fails with rpcsession.ErrUnsetValue.
func ParseValue(data []byte) (option.Value, error) {
	var val option.Value
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return option.Value{}, protowire.ParseError(n)
		}
		data = data[n:]

		switch num {
		case fieldStringValue:
			s, n, err := consumeString(num, typ, data)
			if err != nil {
				return option.Value{}, err
			}
			val = option.String(s)
			data = data[n:]
		case fieldBoolValue:
			if typ != protowire.VarintType {
				return option.Value{}, fieldTypeError(num, typ)
			}
			x, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return option.Value{}, protowire.ParseError(n)
			}
			val = option.Bool(protowire.DecodeBool(x))
			data = data[n:]
		case fieldInt32Value:
			x, n, err := consumeFixed32(num, typ, data)
			if err != nil {
				return option.Value{}, err
			}
			val = option.Int32(int32(x))
			data = data[n:]
		case fieldInt64Value:
			x, n, err := consumeFixed64(num, typ, data)
			if err != nil {
				return option.Value{}, err
			}
			val = option.Int64(int64(x))
			data = data[n:]
		case fieldFloatValue:
			x, n, err := consumeFixed32(num, typ, data)
			if err != nil {
				return option.Value{}, err
			}
			val = option.Float32(math.Float32frombits(x))
			data = data[n:]
		case fieldDoubleValue:
			x, n, err := consumeFixed64(num, typ, data)
			if err != nil {
				return option.Value{}, err
			}
			val = option.Float64(math.Float64frombits(x))
			data = data[n:]
		case fieldStringListValue:
			if typ != protowire.BytesType {
				return option.Value{}, fieldTypeError(num, typ)
			}
			inner, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return option.Value{}, protowire.ParseError(n)
			}
			list, err := parseStringList(inner)
			if err != nil {
				return option.Value{}, err
			}
			val = option.StringList(list)
			data = data[n:]
		default:
			n, err := consumeUnknown(num, typ, data)
			if err != nil {
				return option.Value{}, err
			}
			data = data[n:]
		}
	}

	if !val.Valid() {
		return option.Value{}, rpcsession.ErrUnsetValue
	}
	return val, nil
}

// parseStringList decodes the nested string-list message. An empty body is
// a legal, empty list.
func parseStringList(data []byte) ([]string, error) {
	list := []string{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]

		if num != fieldStringListValues {
			n, err := consumeUnknown(num, typ, data)
			if err != nil {
				return nil, err
			}
			data = data[n:]
			continue
		}
		s, n, err := consumeString(num, typ, data)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
		data = data[n:]
	}
	return list, nil
}

func consumeString(num protowire.Number, typ protowire.Type, data []byte) (string, int, error) {
	if typ != protowire.BytesType {
		return "", 0, fieldTypeError(num, typ)
	}
	s, n := protowire.ConsumeString(data)
	if n < 0 {
		return "", 0, protowire.ParseError(n)
	}
	return s, n, nil
}

func consumeFixed32(num protowire.Number, typ protowire.Type, data []byte) (uint32, int, error) {
	if typ != protowire.Fixed32Type {
		return 0, 0, fieldTypeError(num, typ)
	}
	x, n := protowire.ConsumeFixed32(data)
	if n < 0 {
		return 0, 0, protowire.ParseError(n)
	}
	return x, n, nil
}

func consumeFixed64(num protowire.Number, typ protowire.Type, data []byte) (uint64, int, error) {
	if typ != protowire.Fixed64Type {
		return 0, 0, fieldTypeError(num, typ)
	}
	x, n := protowire.ConsumeFixed64(data)
	if n < 0 {
		return 0, 0, protowire.ParseError(n)
	}
	return x, n, nil
}

// consumeUnknown skips a well-formed unrecognized field.
func consumeUnknown(num protowire.Number, typ protowire.Type, data []byte) (int, error) {
	n := protowire.ConsumeFieldValue(num, typ, data)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	return n, nil
}

func fieldTypeError(num protowire.Number, typ protowire.Type) error {
	return fmt.Errorf("field %d: unexpected wire type %d", num, typ)
}
