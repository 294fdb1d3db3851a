package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Device describes one remote device inside DeviceList and DeviceAdded.
// DeviceDisplayName and DeviceMessageTimingGap are sent from v3 on.
type Device struct {
	DeviceName             string         `json:"DeviceName"`
	DeviceIndex            uint32         `json:"DeviceIndex"`
	DeviceMessages         DeviceMessages `json:"DeviceMessages"`
	DeviceMessageTimingGap uint32         `json:"DeviceMessageTimingGap,omitempty"`
	DeviceDisplayName      string         `json:"DeviceDisplayName,omitempty"`
}

// MessageAttributes describes one addressable feature behind a command or
// sensor kind. StepCount is the actuator step resolution (0 when the device
// does not declare one). SensorRange lists the inclusive [min, max] bounds
// of each value in a sensor's reading vector.
type MessageAttributes struct {
	FeatureDescriptor string       `json:"FeatureDescriptor,omitempty"`
	StepCount         uint32       `json:"StepCount,omitempty"`
	ActuatorType      ActuatorType `json:"ActuatorType,omitempty"`
	SensorType        SensorType   `json:"SensorType,omitempty"`
	SensorRange       [][2]int32   `json:"SensorRange,omitempty"`
	Endpoints         []string     `json:"Endpoint,omitempty"`
}

// DeviceMessages maps a message kind name to the attribute sets of the
// features reachable through it, in feature-index order.
//
// The wire shape changed with every schema revision: v0 sends a bare list
// of kind names, v1 and v2 send one attribute object per kind holding
// FeatureCount plus parallel arrays, v3 sends one attribute object per
// feature. Decoding normalizes all three into this form; encoding always
// produces the v3 form.
type DeviceMessages map[string][]MessageAttributes

// legacyAttributes is the v1/v2 single-object shape: one object per kind,
// features described by a count and parallel StepCount array.
type legacyAttributes struct {
	FeatureCount uint32   `json:"FeatureCount"`
	StepCount    []uint32 `json:"StepCount"`
}

// expand converts the count-and-arrays shape into per-feature attributes.
// A kind with no declared count still addresses one implicit feature.
func (l legacyAttributes) expand() []MessageAttributes {
	count := l.FeatureCount
	if count == 0 {
		count = 1
	}
	attrs := make([]MessageAttributes, count)
	for i := range attrs {
		if i < len(l.StepCount) {
			attrs[i].StepCount = l.StepCount[i]
		}
	}
	return attrs
}

// UnmarshalJSON accepts the v0, v1/v2, and v3 capability shapes.
func (dm *DeviceMessages) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty device messages")
	}

	if trimmed[0] == '[' {
		// v0: list of supported kind names.
		var names []string
		if err := json.Unmarshal(trimmed, &names); err != nil {
			return err
		}
		m := make(DeviceMessages, len(names))
		for _, name := range names {
			m[name] = []MessageAttributes{{}}
		}
		*dm = m
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	m := make(DeviceMessages, len(raw))
	for name, body := range raw {
		body = bytes.TrimSpace(body)
		if len(body) > 0 && body[0] == '[' {
			// v3: one attribute object per feature.
			var attrs []MessageAttributes
			if err := json.Unmarshal(body, &attrs); err != nil {
				return fmt.Errorf("attributes of %s: %w", name, err)
			}
			m[name] = attrs
			continue
		}
		// v1/v2: one object per kind.
		var legacy legacyAttributes
		if err := json.Unmarshal(body, &legacy); err != nil {
			return fmt.Errorf("attributes of %s: %w", name, err)
		}
		m[name] = legacy.expand()
	}
	*dm = m
	return nil
}
