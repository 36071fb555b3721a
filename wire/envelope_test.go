package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/creastat/rpcsession"
	"github.com/creastat/rpcsession/option"
)

func TestSetSessionOptionsRequestRoundTrip(t *testing.T) {
	req := &SetSessionOptionsRequest{
		SessionOptions: map[string]option.Value{
			"catalog":     option.String("main"),
			"readonly":    option.Bool(true),
			"max_rows":    option.Int64(10000),
			"sample_rate": option.Float64(0.25),
			"schemas":     option.StringList([]string{"public", "audit"}),
		},
	}

	data, err := req.Marshal()
	require.NoError(t, err)

	var got SetSessionOptionsRequest
	require.NoError(t, got.Unmarshal(data))
	require.Len(t, got.SessionOptions, len(req.SessionOptions))
	for name, want := range req.SessionOptions {
		assert.True(t, want.Equal(got.SessionOptions[name]), "option %q", name)
	}
}

func TestSetSessionOptionsRequestDeterministic(t *testing.T) {
	req := &SetSessionOptionsRequest{
		SessionOptions: map[string]option.Value{
			"b": option.Int32(2),
			"a": option.Int32(1),
			"c": option.Int32(3),
		},
	}

	first, err := req.Marshal()
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := req.Marshal()
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestSetSessionOptionsRequestRejectsInvalidValue(t *testing.T) {
	req := &SetSessionOptionsRequest{
		SessionOptions: map[string]option.Value{"x": {}},
	}
	_, err := req.Marshal()
	require.ErrorIs(t, err, rpcsession.ErrUnsetValue)
}

func TestSetSessionOptionsRequestRejectsUnsetEntry(t *testing.T) {
	// Map entry whose value submessage selects no case.
	entry := protowire.AppendTag(nil, fieldMapKey, protowire.BytesType)
	entry = protowire.AppendString(entry, "x")
	entry = protowire.AppendTag(entry, fieldMapValue, protowire.BytesType)
	entry = protowire.AppendBytes(entry, nil)
	data := protowire.AppendTag(nil, fieldSessionOptions, protowire.BytesType)
	data = protowire.AppendBytes(data, entry)

	var req SetSessionOptionsRequest
	require.ErrorIs(t, req.Unmarshal(data), rpcsession.ErrUnsetValue)

	// Map entry with no value submessage at all.
	entry = protowire.AppendTag(nil, fieldMapKey, protowire.BytesType)
	entry = protowire.AppendString(entry, "x")
	data = protowire.AppendTag(nil, fieldSessionOptions, protowire.BytesType)
	data = protowire.AppendBytes(data, entry)
	require.ErrorIs(t, req.Unmarshal(data), rpcsession.ErrUnsetValue)
}

func TestSetSessionOptionsResultRoundTrip(t *testing.T) {
	res := &SetSessionOptionsResult{
		Statuses: map[string]SetSessionOptionStatus{
			"catalog":  SetSessionOptionOK,
			"bogus":    SetSessionOptionInvalidName,
			"negative": SetSessionOptionInvalidValue,
			"broken":   SetSessionOptionError,
			"other":    SetSessionOptionUnspecified,
		},
	}

	data, err := res.Marshal()
	require.NoError(t, err)

	var got SetSessionOptionsResult
	require.NoError(t, got.Unmarshal(data))
	assert.Equal(t, res.Statuses, got.Statuses)
}

func TestSetSessionOptionsResultUnknownCode(t *testing.T) {
	// Encoding an out-of-enumeration status fails.
	res := &SetSessionOptionsResult{
		Statuses: map[string]SetSessionOptionStatus{"x": SetSessionOptionStatus(42)},
	}
	_, err := res.Marshal()
	require.ErrorIs(t, err, rpcsession.ErrUnknownStatus)

	// So does decoding an out-of-enumeration numeral.
	entry := protowire.AppendTag(nil, fieldMapKey, protowire.BytesType)
	entry = protowire.AppendString(entry, "x")
	entry = protowire.AppendTag(entry, fieldMapValue, protowire.VarintType)
	entry = protowire.AppendVarint(entry, 42)
	data := protowire.AppendTag(nil, fieldStatuses, protowire.BytesType)
	data = protowire.AppendBytes(data, entry)

	var got SetSessionOptionsResult
	require.ErrorIs(t, got.Unmarshal(data), rpcsession.ErrUnknownStatus)
}

func TestGetSessionOptionsRoundTrip(t *testing.T) {
	var req GetSessionOptionsRequest
	data, err := req.Marshal()
	require.NoError(t, err)
	assert.Empty(t, data)
	require.NoError(t, req.Unmarshal(data))

	res := &GetSessionOptionsResult{
		SessionOptions: map[string]option.Value{
			"x": option.String("hello"),
		},
	}
	data, err = res.Marshal()
	require.NoError(t, err)

	var got GetSessionOptionsResult
	require.NoError(t, got.Unmarshal(data))
	require.Len(t, got.SessionOptions, 1)
	assert.True(t, option.String("hello").Equal(got.SessionOptions["x"]))
}

func TestGetSessionOptionsResultEmpty(t *testing.T) {
	res := &GetSessionOptionsResult{}
	data, err := res.Marshal()
	require.NoError(t, err)
	assert.Empty(t, data)

	var got GetSessionOptionsResult
	require.NoError(t, got.Unmarshal(data))
	assert.Empty(t, got.SessionOptions)
}

func TestCloseSessionRoundTrip(t *testing.T) {
	var req CloseSessionRequest
	data, err := req.Marshal()
	require.NoError(t, err)
	assert.Empty(t, data)
	require.NoError(t, req.Unmarshal(data))

	statuses := []CloseSessionStatus{
		CloseSessionUnspecified,
		CloseSessionClosed,
		CloseSessionClosing,
		CloseSessionNotCloseable,
		CloseSessionNotFound,
	}
	for _, status := range statuses {
		t.Run(status.String(), func(t *testing.T) {
			res := &CloseSessionResult{Status: status}
			data, err := res.Marshal()
			require.NoError(t, err)

			var got CloseSessionResult
			require.NoError(t, got.Unmarshal(data))
			assert.Equal(t, status, got.Status)
		})
	}
}

func TestCloseSessionResultUnknownCode(t *testing.T) {
	res := &CloseSessionResult{Status: CloseSessionStatus(-1)}
	_, err := res.Marshal()
	require.ErrorIs(t, err, rpcsession.ErrUnknownStatus)

	data := protowire.AppendTag(nil, fieldCloseStatus, protowire.VarintType)
	data = protowire.AppendVarint(data, 99)
	var got CloseSessionResult
	require.ErrorIs(t, got.Unmarshal(data), rpcsession.ErrUnknownStatus)
}

func TestCloseSessionResultAbsentFieldUnspecified(t *testing.T) {
	got := CloseSessionResult{Status: CloseSessionClosed}
	require.NoError(t, got.Unmarshal(nil))
	assert.Equal(t, CloseSessionUnspecified, got.Status)
}

func TestEmptyRequestsIgnoreUnknownFields(t *testing.T) {
	data := protowire.AppendTag(nil, 5, protowire.BytesType)
	data = protowire.AppendString(data, "future field")

	var getReq GetSessionOptionsRequest
	require.NoError(t, getReq.Unmarshal(data))
	var closeReq CloseSessionRequest
	require.NoError(t, closeReq.Unmarshal(data))

	// Truncated garbage still fails.
	require.Error(t, getReq.Unmarshal(data[:len(data)-3]))
}
