package device

import (
	"errors"
	"fmt"

	"github.com/Siege-Wizard/buttplug-go/pkg/version"
	"github.com/Siege-Wizard/buttplug-go/pkg/wire"
)

// Device errors.
var (
	ErrDeviceNotFound      = errors.New("device not found")
	ErrFeatureNotFound     = errors.New("feature not found")
	ErrInvalidCommandValue = errors.New("invalid command value")
)

// CapabilityKind is the family of a device feature.
type CapabilityKind uint8

const (
	// CapabilityActuator features are driven by scalar levels
	// (ScalarCmd, VibrateCmd).
	CapabilityActuator CapabilityKind = iota

	// CapabilityRotator features rotate with speed and direction (RotateCmd).
	CapabilityRotator

	// CapabilityLinear features move to positions over time (LinearCmd).
	CapabilityLinear

	// CapabilitySensor features return reading vectors (SensorReadCmd).
	CapabilitySensor

	// CapabilitySensorSubscribe features push readings when subscribed.
	CapabilitySensorSubscribe
)

// String returns the capability kind name.
func (k CapabilityKind) String() string {
	switch k {
	case CapabilityActuator:
		return "ACTUATOR"
	case CapabilityRotator:
		return "ROTATOR"
	case CapabilityLinear:
		return "LINEAR"
	case CapabilitySensor:
		return "SENSOR"
	case CapabilitySensorSubscribe:
		return "SENSOR_SUBSCRIBE"
	default:
		return "UNKNOWN"
	}
}

// Capability describes one addressable feature of a device. FeatureIndex is
// the index inside the feature's family, assigned by the server. StepCount
// is 0 when the device declares no step resolution; command values then
// range over [0, 1] instead of [0, StepCount].
type Capability struct {
	Kind         CapabilityKind
	FeatureIndex uint32
	Descriptor   string
	ActuatorType wire.ActuatorType
	StepCount    uint32
	SensorType   wire.SensorType
	SensorRange  [][2]int32
}

// Device is an immutable snapshot of one remote device. Devices are created
// from wire descriptions by the Registry and replaced wholesale when the
// server re-announces an index.
type Device struct {
	index       uint32
	name        string
	displayName string

	actuators     []Capability
	rotators      []Capability
	linears       []Capability
	sensors       []Capability
	subscribables []Capability

	stoppable bool
}

// FromWire parses a wire device description into a Device.
func FromWire(wd wire.Device) *Device {
	d := &Device{
		index:       wd.DeviceIndex,
		name:        wd.DeviceName,
		displayName: wd.DeviceDisplayName,
	}

	// v3 devices advertise ScalarCmd; older ones VibrateCmd or the v0
	// single-motor command. Prefer the newest shape when several appear.
	if attrs, ok := wd.DeviceMessages[wire.KindScalarCmd.String()]; ok {
		d.actuators = capabilities(CapabilityActuator, attrs, wire.ActuatorVibrate)
	} else if attrs, ok := wd.DeviceMessages[wire.KindVibrateCmd.String()]; ok {
		d.actuators = capabilities(CapabilityActuator, attrs, wire.ActuatorVibrate)
	} else if attrs, ok := wd.DeviceMessages["SingleMotorVibrateCmd"]; ok {
		d.actuators = capabilities(CapabilityActuator, attrs, wire.ActuatorVibrate)
	}

	if attrs, ok := wd.DeviceMessages[wire.KindRotateCmd.String()]; ok {
		d.rotators = capabilities(CapabilityRotator, attrs, wire.ActuatorRotate)
	}
	if attrs, ok := wd.DeviceMessages[wire.KindLinearCmd.String()]; ok {
		d.linears = capabilities(CapabilityLinear, attrs, wire.ActuatorPosition)
	}
	if attrs, ok := wd.DeviceMessages[wire.KindSensorReadCmd.String()]; ok {
		d.sensors = capabilities(CapabilitySensor, attrs, "")
	}
	if attrs, ok := wd.DeviceMessages[wire.KindSensorSubscribeCmd.String()]; ok {
		d.subscribables = capabilities(CapabilitySensorSubscribe, attrs, "")
	}
	if _, ok := wd.DeviceMessages[wire.KindStopDeviceCmd.String()]; ok {
		d.stoppable = true
	}

	return d
}

func capabilities(kind CapabilityKind, attrs []wire.MessageAttributes, defaultActuator wire.ActuatorType) []Capability {
	caps := make([]Capability, len(attrs))
	for i, a := range attrs {
		caps[i] = Capability{
			Kind:         kind,
			FeatureIndex: uint32(i),
			Descriptor:   a.FeatureDescriptor,
			ActuatorType: a.ActuatorType,
			StepCount:    a.StepCount,
			SensorType:   a.SensorType,
			SensorRange:  a.SensorRange,
		}
		if caps[i].ActuatorType == "" && kind != CapabilitySensor && kind != CapabilitySensorSubscribe {
			caps[i].ActuatorType = defaultActuator
		}
	}
	return caps
}

// Index returns the server-assigned device index.
func (d *Device) Index() uint32 { return d.index }

// Name returns the device name reported by the server.
func (d *Device) Name() string { return d.name }

// DisplayName returns the user-facing name, or the device name when the
// server sent none.
func (d *Device) DisplayName() string {
	if d.displayName != "" {
		return d.displayName
	}
	return d.name
}

// Actuators returns the scalar actuator features in index order.
func (d *Device) Actuators() []Capability { return d.actuators }

// Rotators returns the rotating features in index order.
func (d *Device) Rotators() []Capability { return d.rotators }

// Linears returns the linear-motion features in index order.
func (d *Device) Linears() []Capability { return d.linears }

// Sensors returns the readable sensor features in index order.
func (d *Device) Sensors() []Capability { return d.sensors }

// Subscribables returns the sensors that support pushed readings.
func (d *Device) Subscribables() []Capability { return d.subscribables }

// Stoppable reports whether the device accepts StopDeviceCmd.
func (d *Device) Stoppable() bool { return d.stoppable }

// Capability returns the feature of the given family and index.
func (d *Device) Capability(kind CapabilityKind, feature uint32) (Capability, error) {
	list := d.family(kind)
	if int(feature) >= len(list) {
		return Capability{}, fmt.Errorf("%w: device %d has no %s feature %d", ErrFeatureNotFound, d.index, kind, feature)
	}
	return list[feature], nil
}

func (d *Device) family(kind CapabilityKind) []Capability {
	switch kind {
	case CapabilityActuator:
		return d.actuators
	case CapabilityRotator:
		return d.rotators
	case CapabilityLinear:
		return d.linears
	case CapabilitySensor:
		return d.sensors
	case CapabilitySensorSubscribe:
		return d.subscribables
	default:
		return nil
	}
}

// normalize validates a value against a capability's step domain and maps
// it onto the [0, 1] wire range. Values are in step units when the device
// declares a StepCount, otherwise already normalized.
func normalize(c Capability, value float64) (float64, error) {
	limit := float64(1)
	if c.StepCount > 0 {
		limit = float64(c.StepCount)
	}
	if value < 0 || value > limit {
		return 0, fmt.Errorf("%w: %v outside [0, %v] for %s feature %d",
			ErrInvalidCommandValue, value, limit, c.Kind, c.FeatureIndex)
	}
	return value / limit, nil
}

// ScalarCommand builds a command driving one scalar actuator to value,
// expressed in the feature's step units. At v3 this is a ScalarCmd, before
// that a VibrateCmd.
func (d *Device) ScalarCommand(feature uint32, value float64, spec version.Spec) (wire.Message, error) {
	c, err := d.Capability(CapabilityActuator, feature)
	if err != nil {
		return nil, err
	}
	level, err := normalize(c, value)
	if err != nil {
		return nil, err
	}

	if spec.Supports(version.V3) {
		return &wire.ScalarCmd{
			DeviceIndex: d.index,
			Scalars:     []wire.Scalar{{Index: feature, Scalar: level, ActuatorType: c.ActuatorType}},
		}, nil
	}
	return &wire.VibrateCmd{
		DeviceIndex: d.index,
		Speeds:      []wire.Speed{{Index: feature, Speed: level}},
	}, nil
}

// RotateCommand builds a command rotating one feature at value (step units)
// in the given direction.
func (d *Device) RotateCommand(feature uint32, value float64, clockwise bool) (wire.Message, error) {
	c, err := d.Capability(CapabilityRotator, feature)
	if err != nil {
		return nil, err
	}
	speed, err := normalize(c, value)
	if err != nil {
		return nil, err
	}
	return &wire.RotateCmd{
		DeviceIndex: d.index,
		Rotations:   []wire.Rotation{{Index: feature, Speed: speed, Clockwise: clockwise}},
	}, nil
}

// LinearCommand builds a command moving one linear feature to value (step
// units) over durationMillis.
func (d *Device) LinearCommand(feature uint32, durationMillis uint32, value float64) (wire.Message, error) {
	c, err := d.Capability(CapabilityLinear, feature)
	if err != nil {
		return nil, err
	}
	position, err := normalize(c, value)
	if err != nil {
		return nil, err
	}
	return &wire.LinearCmd{
		DeviceIndex: d.index,
		Vectors:     []wire.Vector{{Index: feature, Duration: durationMillis, Position: position}},
	}, nil
}

// SensorReadCommand builds a one-shot read of one sensor feature.
func (d *Device) SensorReadCommand(feature uint32) (*wire.SensorReadCmd, error) {
	c, err := d.Capability(CapabilitySensor, feature)
	if err != nil {
		return nil, err
	}
	return &wire.SensorReadCmd{
		DeviceIndex: d.index,
		SensorIndex: feature,
		SensorType:  c.SensorType,
	}, nil
}

// SensorSubscribeCommand builds a subscription to one sensor feature.
func (d *Device) SensorSubscribeCommand(feature uint32) (*wire.SensorSubscribeCmd, error) {
	c, err := d.Capability(CapabilitySensorSubscribe, feature)
	if err != nil {
		return nil, err
	}
	return &wire.SensorSubscribeCmd{
		DeviceIndex: d.index,
		SensorIndex: feature,
		SensorType:  c.SensorType,
	}, nil
}

// SensorUnsubscribeCommand builds the cancellation of a sensor subscription.
func (d *Device) SensorUnsubscribeCommand(feature uint32) (*wire.SensorUnsubscribeCmd, error) {
	c, err := d.Capability(CapabilitySensorSubscribe, feature)
	if err != nil {
		return nil, err
	}
	return &wire.SensorUnsubscribeCmd{
		DeviceIndex: d.index,
		SensorIndex: feature,
		SensorType:  c.SensorType,
	}, nil
}

// StopCommand builds a StopDeviceCmd for this device.
func (d *Device) StopCommand() *wire.StopDeviceCmd {
	return &wire.StopDeviceCmd{DeviceIndex: d.index}
}
