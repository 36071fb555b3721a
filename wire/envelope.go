package wire

import (
	"fmt"
	"sort"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/creastat/rpcsession"
	"github.com/creastat/rpcsession/option"
)

// SetSessionOptionStatus is the per-option outcome of a set-options call.
type SetSessionOptionStatus int

const (
	SetSessionOptionUnspecified SetSessionOptionStatus = iota
	SetSessionOptionOK
	SetSessionOptionInvalidName
	SetSessionOptionInvalidValue
	SetSessionOptionError
)

// String returns the lower-case name of the status.
func (s SetSessionOptionStatus) String() string {
	switch s {
	case SetSessionOptionUnspecified:
		return "unspecified"
	case SetSessionOptionOK:
		return "ok"
	case SetSessionOptionInvalidName:
		return "invalid_name"
	case SetSessionOptionInvalidValue:
		return "invalid_value"
	case SetSessionOptionError:
		return "error"
	default:
		return fmt.Sprintf("set_session_option_status(%d)", int(s))
	}
}

// CloseSessionStatus is the outcome of a close-session call.
type CloseSessionStatus int

const (
	CloseSessionUnspecified CloseSessionStatus = iota
	CloseSessionClosed
	CloseSessionClosing
	CloseSessionNotCloseable
	CloseSessionNotFound
)

// String returns the lower-case name of the status.
func (s CloseSessionStatus) String() string {
	switch s {
	case CloseSessionUnspecified:
		return "unspecified"
	case CloseSessionClosed:
		return "closed"
	case CloseSessionClosing:
		return "closing"
	case CloseSessionNotCloseable:
		return "not_closeable"
	case CloseSessionNotFound:
		return "not_found"
	default:
		return fmt.Sprintf("close_session_status(%d)", int(s))
	}
}

// Wire numerals for the status enumerations. The in-memory constants are
// ordered independently of the protocol; conversion always goes through
// these tables and a numeral outside them fails with ErrUnknownStatus.
var setOptionStatusToWire = map[SetSessionOptionStatus]uint64{
	SetSessionOptionUnspecified:  0,
	SetSessionOptionOK:           1,
	SetSessionOptionInvalidName:  2,
	SetSessionOptionInvalidValue: 3,
	SetSessionOptionError:        4,
}

var setOptionStatusFromWire = map[uint64]SetSessionOptionStatus{
	0: SetSessionOptionUnspecified,
	1: SetSessionOptionOK,
	2: SetSessionOptionInvalidName,
	3: SetSessionOptionInvalidValue,
	4: SetSessionOptionError,
}

var closeStatusToWire = map[CloseSessionStatus]uint64{
	CloseSessionUnspecified:  0,
	CloseSessionClosed:       1,
	CloseSessionClosing:      2,
	CloseSessionNotCloseable: 3,
	CloseSessionNotFound:     4,
}

var closeStatusFromWire = map[uint64]CloseSessionStatus{
	0: CloseSessionUnspecified,
	1: CloseSessionClosed,
	2: CloseSessionClosing,
	3: CloseSessionNotCloseable,
	4: CloseSessionNotFound,
}

// Envelope field numbers. Map fields follow the protobuf map encoding:
// repeated entries with key = 1, value = 2.
const (
	fieldSessionOptions protowire.Number = 1
	fieldStatuses       protowire.Number = 1
	fieldCloseStatus    protowire.Number = 1

	fieldMapKey   protowire.Number = 1
	fieldMapValue protowire.Number = 2
)

// SetSessionOptionsRequest carries the option dictionary a client wants
// applied to its session.
type SetSessionOptionsRequest struct {
	SessionOptions map[string]option.Value
}

// Marshal encodes the request. Every value must be a constructed
// option.Value; a zero value fails with ErrUnsetValue.
func (r *SetSessionOptionsRequest) Marshal() ([]byte, error) {
	return appendValueMap(nil, fieldSessionOptions, r.SessionOptions)
}

// Unmarshal decodes data into r, replacing its contents.
func (r *SetSessionOptionsRequest) Unmarshal(data []byte) error {
	m, err := parseValueMap(data, fieldSessionOptions)
	if err != nil {
		return err
	}
	r.SessionOptions = m
	return nil
}

// SetSessionOptionsResult carries one status per submitted option name.
type SetSessionOptionsResult struct {
	Statuses map[string]SetSessionOptionStatus
}

// Marshal encodes the result.
func (r *SetSessionOptionsResult) Marshal() ([]byte, error) {
	var b []byte
	for _, name := range sortedKeys(r.Statuses) {
		code, ok := setOptionStatusToWire[r.Statuses[name]]
		if !ok {
			return nil, fmt.Errorf("option %q: status %d: %w", name, r.Statuses[name], rpcsession.ErrUnknownStatus)
		}
		entry := protowire.AppendTag(nil, fieldMapKey, protowire.BytesType)
		entry = protowire.AppendString(entry, name)
		entry = protowire.AppendTag(entry, fieldMapValue, protowire.VarintType)
		entry = protowire.AppendVarint(entry, code)
		b = protowire.AppendTag(b, fieldStatuses, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}
	return b, nil
}

// Unmarshal decodes data into r, replacing its contents. A status numeral
// outside the declared enumeration fails with ErrUnknownStatus.
func (r *SetSessionOptionsResult) Unmarshal(data []byte) error {
	statuses := make(map[string]SetSessionOptionStatus)
	err := eachMapEntry(data, fieldStatuses, func(entry []byte) error {
		name, code, err := parseStatusEntry(entry)
		if err != nil {
			return err
		}
		status, ok := setOptionStatusFromWire[code]
		if !ok {
			return fmt.Errorf("option %q: status code %d: %w", name, code, rpcsession.ErrUnknownStatus)
		}
		statuses[name] = status
		return nil
	})
	if err != nil {
		return err
	}
	r.Statuses = statuses
	return nil
}

// GetSessionOptionsRequest addresses the session via the affinity cookie
// only; it has no payload.
type GetSessionOptionsRequest struct{}

// Marshal encodes the (empty) request.
func (*GetSessionOptionsRequest) Marshal() ([]byte, error) { return nil, nil }

// Unmarshal checks data is a well-formed message and ignores its fields.
func (*GetSessionOptionsRequest) Unmarshal(data []byte) error { return skipAll(data) }

// GetSessionOptionsResult carries the session's full resolved option
// dictionary.
type GetSessionOptionsResult struct {
	SessionOptions map[string]option.Value
}

// Marshal encodes the result.
func (r *GetSessionOptionsResult) Marshal() ([]byte, error) {
	return appendValueMap(nil, fieldSessionOptions, r.SessionOptions)
}

// Unmarshal decodes data into r, replacing its contents.
func (r *GetSessionOptionsResult) Unmarshal(data []byte) error {
	m, err := parseValueMap(data, fieldSessionOptions)
	if err != nil {
		return err
	}
	r.SessionOptions = m
	return nil
}

// CloseSessionRequest addresses the session via the affinity cookie only;
// it has no payload.
type CloseSessionRequest struct{}

// Marshal encodes the (empty) request.
func (*CloseSessionRequest) Marshal() ([]byte, error) { return nil, nil }

// Unmarshal checks data is a well-formed message and ignores its fields.
func (*CloseSessionRequest) Unmarshal(data []byte) error { return skipAll(data) }

// CloseSessionResult carries the close outcome.
type CloseSessionResult struct {
	Status CloseSessionStatus
}

// Marshal encodes the result.
func (r *CloseSessionResult) Marshal() ([]byte, error) {
	code, ok := closeStatusToWire[r.Status]
	if !ok {
		return nil, fmt.Errorf("close-session status %d: %w", r.Status, rpcsession.ErrUnknownStatus)
	}
	b := protowire.AppendTag(nil, fieldCloseStatus, protowire.VarintType)
	b = protowire.AppendVarint(b, code)
	return b, nil
}

// Unmarshal decodes data into r. A status numeral outside the declared
// enumeration fails with ErrUnknownStatus; an absent field decodes as
// CloseSessionUnspecified.
func (r *CloseSessionResult) Unmarshal(data []byte) error {
	status := CloseSessionUnspecified
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		if num != fieldCloseStatus {
			n, err := consumeUnknown(num, typ, data)
			if err != nil {
				return err
			}
			data = data[n:]
			continue
		}
		if typ != protowire.VarintType {
			return fieldTypeError(num, typ)
		}
		code, n := protowire.ConsumeVarint(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		var ok bool
		if status, ok = closeStatusFromWire[code]; !ok {
			return fmt.Errorf("close-session status code %d: %w", code, rpcsession.ErrUnknownStatus)
		}
		data = data[n:]
	}
	r.Status = status
	return nil
}

// appendValueMap emits a map<string, option value> field in sorted key
// order.
func appendValueMap(b []byte, num protowire.Number, m map[string]option.Value) ([]byte, error) {
	for _, name := range sortedKeys(m) {
		v := m[name]
		if !v.Valid() {
			return nil, fmt.Errorf("option %q: %w", name, rpcsession.ErrUnsetValue)
		}
		entry := protowire.AppendTag(nil, fieldMapKey, protowire.BytesType)
		entry = protowire.AppendString(entry, name)
		entry = protowire.AppendTag(entry, fieldMapValue, protowire.BytesType)
		entry = protowire.AppendBytes(entry, AppendValue(nil, v))
		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}
	return b, nil
}

func parseValueMap(data []byte, num protowire.Number) (map[string]option.Value, error) {
	m := make(map[string]option.Value)
	err := eachMapEntry(data, num, func(entry []byte) error {
		var (
			name    string
			val     option.Value
			haveVal bool
		)
		for len(entry) > 0 {
			num, typ, n := protowire.ConsumeTag(entry)
			if n < 0 {
				return protowire.ParseError(n)
			}
			entry = entry[n:]

			switch num {
			case fieldMapKey:
				s, n, err := consumeString(num, typ, entry)
				if err != nil {
					return err
				}
				name = s
				entry = entry[n:]
			case fieldMapValue:
				if typ != protowire.BytesType {
					return fieldTypeError(num, typ)
				}
				body, n := protowire.ConsumeBytes(entry)
				if n < 0 {
					return protowire.ParseError(n)
				}
				v, err := ParseValue(body)
				if err != nil {
					return fmt.Errorf("option %q: %w", name, err)
				}
				val = v
				haveVal = true
				entry = entry[n:]
			default:
				n, err := consumeUnknown(num, typ, entry)
				if err != nil {
					return err
				}
				entry = entry[n:]
			}
		}
		// An absent value submessage is the unset sentinel too.
		if !haveVal {
			return fmt.Errorf("option %q: %w", name, rpcsession.ErrUnsetValue)
		}
		m[name] = val
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// eachMapEntry walks a message whose only recognized field is the repeated
// map entry numbered num, invoking fn with each entry's body.
func eachMapEntry(data []byte, num protowire.Number, fn func(entry []byte) error) error {
	for len(data) > 0 {
		fieldNum, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		if fieldNum != num {
			n, err := consumeUnknown(fieldNum, typ, data)
			if err != nil {
				return err
			}
			data = data[n:]
			continue
		}
		if typ != protowire.BytesType {
			return fieldTypeError(fieldNum, typ)
		}
		entry, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		if err := fn(entry); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

func parseStatusEntry(entry []byte) (string, uint64, error) {
	var (
		name string
		code uint64
	)
	for len(entry) > 0 {
		num, typ, n := protowire.ConsumeTag(entry)
		if n < 0 {
			return "", 0, protowire.ParseError(n)
		}
		entry = entry[n:]

		switch num {
		case fieldMapKey:
			s, n, err := consumeString(num, typ, entry)
			if err != nil {
				return "", 0, err
			}
			name = s
			entry = entry[n:]
		case fieldMapValue:
			if typ != protowire.VarintType {
				return "", 0, fieldTypeError(num, typ)
			}
			x, n := protowire.ConsumeVarint(entry)
			if n < 0 {
				return "", 0, protowire.ParseError(n)
			}
			code = x
			entry = entry[n:]
		default:
			n, err := consumeUnknown(num, typ, entry)
			if err != nil {
				return "", 0, err
			}
			entry = entry[n:]
		}
	}
	return name, code, nil
}

// skipAll checks data is a well-formed message without keeping anything.
func skipAll(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		n, err := consumeUnknown(num, typ, data)
		if err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
