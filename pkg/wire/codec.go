package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Siege-Wizard/buttplug-go/pkg/version"
)

var (
	// ErrMalformedMessage reports wire text that is not a valid frame of
	// recognized message shapes.
	ErrMalformedMessage = errors.New("malformed message")

	// ErrUnsupportedVersion reports a message kind outside the negotiated
	// schema version.
	ErrUnsupportedVersion = errors.New("unsupported message version")
)

// Encode serializes a single message into a wire frame: a JSON array
// holding exactly one tagged message object. The kind must be valid at the
// given schema version.
func Encode(m Message, v version.Spec) ([]byte, error) {
	name := m.Kind().String()

	if u, ok := m.(*Unrecognized); ok {
		// Re-emit exactly what was received.
		if u.Name == "" || len(u.Raw) == 0 {
			return nil, fmt.Errorf("%w: unrecognized message without raw body", ErrMalformedMessage)
		}
		return encodeFrame(u.Name, u.Raw)
	}

	info, ok := kindTable[m.Kind()]
	if !ok {
		return nil, fmt.Errorf("%w: unknown kind %d", ErrMalformedMessage, m.Kind())
	}
	if err := checkVersion(info, v); err != nil {
		return nil, err
	}

	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding %s: %v", ErrMalformedMessage, name, err)
	}
	return encodeFrame(name, body)
}

// Decode parses a wire frame into the messages it carries, in array order.
// Kinds this library does not know decode into Unrecognized; known kinds
// outside the negotiated version fail with ErrUnsupportedVersion.
func Decode(data []byte, v version.Spec) ([]Message, error) {
	var frame []map[string]json.RawMessage
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	msgs := make([]Message, 0, len(frame))
	for i, obj := range frame {
		if len(obj) != 1 {
			return nil, fmt.Errorf("%w: frame entry %d holds %d kinds, want 1", ErrMalformedMessage, i, len(obj))
		}
		for name, body := range obj {
			m, err := decodeOne(name, body, v)
			if err != nil {
				return nil, err
			}
			msgs = append(msgs, m)
		}
	}
	return msgs, nil
}

func decodeOne(name string, body json.RawMessage, v version.Spec) (Message, error) {
	kind, known := kindsByName[name]
	if !known {
		u := &Unrecognized{Name: name, Raw: append(json.RawMessage(nil), body...)}
		// Best effort: pushes carry Id 0, replies their request id.
		var probe struct {
			ID uint32 `json:"Id"`
		}
		if err := json.Unmarshal(body, &probe); err == nil {
			u.ID = probe.ID
		}
		return u, nil
	}

	info := kindTable[kind]
	if err := checkVersion(info, v); err != nil {
		return nil, err
	}

	m := info.newMsg()
	if err := json.Unmarshal(body, m); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrMalformedMessage, name, err)
	}
	return m, nil
}

func checkVersion(info kindInfo, v version.Spec) error {
	if !v.Supports(info.min) {
		return fmt.Errorf("%w: %s requires %s, negotiated %s", ErrUnsupportedVersion, info.name, info.min, v)
	}
	if v > info.max {
		return fmt.Errorf("%w: %s was removed in %s, negotiated %s", ErrUnsupportedVersion, info.name, info.max+1, v)
	}
	return nil
}

func encodeFrame(name string, body json.RawMessage) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`[{`)
	keyBytes, err := json.Marshal(name)
	if err != nil {
		return nil, err
	}
	buf.Write(keyBytes)
	buf.WriteByte(':')
	buf.Write(body)
	buf.WriteString(`}]`)
	return buf.Bytes(), nil
}
