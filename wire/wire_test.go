package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/creastat/rpcsession"
	"github.com/creastat/rpcsession/option"
)

func TestValueRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		val  option.Value
	}{
		{"string", option.String("hello")},
		{"empty string", option.String("")},
		{"bool true", option.Bool(true)},
		{"bool false", option.Bool(false)},
		{"int32", option.Int32(-123)},
		{"int64", option.Int64(1 << 40)},
		{"float32", option.Float32(1.5)},
		{"float64", option.Float64(-2.25)},
		{"string list", option.StringList([]string{"a", "b", "c"})},
		{"empty string list", option.StringList(nil)},
		{"list with empty element", option.StringList([]string{"", "x"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := AppendValue(nil, tt.val)
			got, err := ParseValue(data)
			require.NoError(t, err)
			assert.True(t, tt.val.Equal(got), "decode(encode(%s)) = %s", tt.val, got)
		})
	}
}

func TestParseValueUnsetRejected(t *testing.T) {
	// No case selected: empty message.
	_, err := ParseValue(nil)
	require.ErrorIs(t, err, rpcsession.ErrUnsetValue)

	// Only unknown fields present is unset too.
	data := protowire.AppendTag(nil, 99, protowire.VarintType)
	data = protowire.AppendVarint(data, 7)
	_, err = ParseValue(data)
	require.ErrorIs(t, err, rpcsession.ErrUnsetValue)
}

func TestParseValueUnknownFieldSkipped(t *testing.T) {
	data := protowire.AppendTag(nil, 99, protowire.VarintType)
	data = protowire.AppendVarint(data, 7)
	data = AppendValue(data, option.Bool(true))

	got, err := ParseValue(data)
	require.NoError(t, err)
	assert.True(t, option.Bool(true).Equal(got))
}

func TestParseValueLastCaseWins(t *testing.T) {
	data := AppendValue(nil, option.String("first"))
	data = AppendValue(data, option.Int32(2))

	got, err := ParseValue(data)
	require.NoError(t, err)
	assert.True(t, option.Int32(2).Equal(got))
}

func TestParseValueWrongWireType(t *testing.T) {
	// string_value carried as a varint instead of bytes.
	data := protowire.AppendTag(nil, fieldStringValue, protowire.VarintType)
	data = protowire.AppendVarint(data, 1)
	_, err := ParseValue(data)
	require.Error(t, err)
	assert.NotErrorIs(t, err, rpcsession.ErrUnsetValue)
}

func TestParseValueTruncated(t *testing.T) {
	data := AppendValue(nil, option.String("hello"))
	_, err := ParseValue(data[:len(data)-2])
	require.Error(t, err)
}

func TestAppendValueInvalidPanics(t *testing.T) {
	require.Panics(t, func() { AppendValue(nil, option.Value{}) })
}
