package wire

import (
	"encoding/json"

	"github.com/Siege-Wizard/buttplug-go/pkg/version"
)

// PushID is the message identifier reserved for server-pushed events and
// for commands that expect no reply.
const PushID uint32 = 0

// Kind identifies a protocol message kind.
type Kind uint8

const (
	KindUnrecognized Kind = iota
	KindOk
	KindError
	KindPing
	KindRequestLog
	KindLog
	KindRequestServerInfo
	KindServerInfo
	KindStartScanning
	KindStopScanning
	KindScanningFinished
	KindRequestDeviceList
	KindDeviceList
	KindDeviceAdded
	KindDeviceRemoved
	KindStopDeviceCmd
	KindStopAllDevices
	KindVibrateCmd
	KindRotateCmd
	KindLinearCmd
	KindScalarCmd
	KindSensorReadCmd
	KindSensorReading
	KindSensorSubscribeCmd
	KindSensorUnsubscribeCmd
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	if info, ok := kindTable[k]; ok {
		return info.name
	}
	return "Unknown"
}

// Message is implemented by every protocol message.
type Message interface {
	// Kind reports the wire kind of the message.
	Kind() Kind
	// MessageID returns the correlation identifier carried by the message.
	MessageID() uint32
	// SetMessageID stamps the correlation identifier before sending.
	SetMessageID(id uint32)
}

// Base carries the message identifier common to every message kind.
// It is embedded by all message structs.
type Base struct {
	ID uint32 `json:"Id"`
}

// MessageID returns the correlation identifier.
func (b *Base) MessageID() uint32 { return b.ID }

// SetMessageID stamps the correlation identifier.
func (b *Base) SetMessageID(id uint32) { b.ID = id }

// Ok acknowledges a request that succeeded.
type Ok struct {
	Base
}

// Error reports a request that failed, or a server-side protocol fault when
// pushed with Id 0.
type Error struct {
	Base
	ErrorMessage string    `json:"ErrorMessage"`
	ErrorCode    ErrorCode `json:"ErrorCode"`
}

// Ping keeps the connection alive when the server enforces a ping timeout.
type Ping struct {
	Base
}

// RequestLog asks the server to forward its internal log at the given level.
// Removed in v3.
type RequestLog struct {
	Base
	LogLevel LogLevel `json:"LogLevel"`
}

// Log carries one server log line requested via RequestLog. Removed in v3.
type Log struct {
	Base
	LogLevel   LogLevel `json:"LogLevel"`
	LogMessage string   `json:"LogMessage"`
}

// RequestServerInfo opens the handshake. MessageVersion advertises the
// newest schema version the client speaks; servers at v0 ignore it.
type RequestServerInfo struct {
	Base
	ClientName     string       `json:"ClientName"`
	MessageVersion version.Spec `json:"MessageVersion"`
}

// ServerInfo answers RequestServerInfo. MessageVersion is the schema version
// the conversation will use. MaxPingTime is the ping interval ceiling in
// milliseconds, 0 when the server does not enforce pings. The version triple
// is sent by servers up to v2 and absent from v3 on.
type ServerInfo struct {
	Base
	ServerName     string       `json:"ServerName"`
	MajorVersion   uint32       `json:"MajorVersion,omitempty"`
	MinorVersion   uint32       `json:"MinorVersion,omitempty"`
	BuildVersion   uint32       `json:"BuildVersion,omitempty"`
	MessageVersion version.Spec `json:"MessageVersion"`
	MaxPingTime    uint32       `json:"MaxPingTime"`
}

// StartScanning asks the server to start scanning for devices.
type StartScanning struct {
	Base
}

// StopScanning asks the server to stop scanning for devices.
type StopScanning struct {
	Base
}

// ScanningFinished is pushed when the server stops scanning on its own.
type ScanningFinished struct {
	Base
}

// RequestDeviceList asks for the full set of connected devices.
type RequestDeviceList struct {
	Base
}

// DeviceList answers RequestDeviceList with every connected device.
type DeviceList struct {
	Base
	Devices []Device `json:"Devices"`
}

// DeviceAdded is pushed when a device connects to the server.
type DeviceAdded struct {
	Base
	Device
}

// DeviceRemoved is pushed when a device disconnects from the server.
type DeviceRemoved struct {
	Base
	DeviceIndex uint32 `json:"DeviceIndex"`
}

// StopDeviceCmd halts all activity on one device.
type StopDeviceCmd struct {
	Base
	DeviceIndex uint32 `json:"DeviceIndex"`
}

// StopAllDevices halts all activity on every connected device.
type StopAllDevices struct {
	Base
}

// Speed is one vibration motor target inside VibrateCmd.
type Speed struct {
	Index uint32  `json:"Index"`
	Speed float64 `json:"Speed"`
}

// VibrateCmd drives vibration motors. Introduced in v1, replaced by
// ScalarCmd in v3.
type VibrateCmd struct {
	Base
	DeviceIndex uint32  `json:"DeviceIndex"`
	Speeds      []Speed `json:"Speeds"`
}

// Rotation is one rotator target inside RotateCmd.
type Rotation struct {
	Index     uint32  `json:"Index"`
	Speed     float64 `json:"Speed"`
	Clockwise bool    `json:"Clockwise"`
}

// RotateCmd drives rotating features.
type RotateCmd struct {
	Base
	DeviceIndex uint32     `json:"DeviceIndex"`
	Rotations   []Rotation `json:"Rotations"`
}

// Vector is one linear-axis target inside LinearCmd: move to Position over
// Duration milliseconds.
type Vector struct {
	Index    uint32  `json:"Index"`
	Duration uint32  `json:"Duration"`
	Position float64 `json:"Position"`
}

// LinearCmd drives linear-motion features.
type LinearCmd struct {
	Base
	DeviceIndex uint32   `json:"DeviceIndex"`
	Vectors     []Vector `json:"Vectors"`
}

// Scalar is one actuator target inside ScalarCmd. Scalar is the normalized
// target level in [0, 1].
type Scalar struct {
	Index        uint32       `json:"Index"`
	Scalar       float64      `json:"Scalar"`
	ActuatorType ActuatorType `json:"ActuatorType"`
}

// ScalarCmd drives any scalar actuator. Introduced in v3 as the generic
// replacement for VibrateCmd.
type ScalarCmd struct {
	Base
	DeviceIndex uint32   `json:"DeviceIndex"`
	Scalars     []Scalar `json:"Scalars"`
}

// SensorReadCmd requests a one-shot reading from a sensor.
type SensorReadCmd struct {
	Base
	DeviceIndex uint32     `json:"DeviceIndex"`
	SensorIndex uint32     `json:"SensorIndex"`
	SensorType  SensorType `json:"SensorType"`
}

// SensorReading answers SensorReadCmd, or is pushed for subscribed sensors.
type SensorReading struct {
	Base
	DeviceIndex uint32     `json:"DeviceIndex"`
	SensorIndex uint32     `json:"SensorIndex"`
	SensorType  SensorType `json:"SensorType"`
	Data        []int32    `json:"Data"`
}

// SensorSubscribeCmd asks the server to push readings for a sensor.
type SensorSubscribeCmd struct {
	Base
	DeviceIndex uint32     `json:"DeviceIndex"`
	SensorIndex uint32     `json:"SensorIndex"`
	SensorType  SensorType `json:"SensorType"`
}

// SensorUnsubscribeCmd cancels a sensor subscription.
type SensorUnsubscribeCmd struct {
	Base
	DeviceIndex uint32     `json:"DeviceIndex"`
	SensorIndex uint32     `json:"SensorIndex"`
	SensorType  SensorType `json:"SensorType"`
}

// Unrecognized preserves a message of a kind this library does not know,
// so sessions against newer servers keep working. Name is the wire kind
// name, Raw the undecoded message body.
type Unrecognized struct {
	Base
	Name string
	Raw  json.RawMessage
}

func (*Ok) Kind() Kind                   { return KindOk }
func (*Error) Kind() Kind                { return KindError }
func (*Ping) Kind() Kind                 { return KindPing }
func (*RequestLog) Kind() Kind           { return KindRequestLog }
func (*Log) Kind() Kind                  { return KindLog }
func (*RequestServerInfo) Kind() Kind    { return KindRequestServerInfo }
func (*ServerInfo) Kind() Kind           { return KindServerInfo }
func (*StartScanning) Kind() Kind        { return KindStartScanning }
func (*StopScanning) Kind() Kind         { return KindStopScanning }
func (*ScanningFinished) Kind() Kind     { return KindScanningFinished }
func (*RequestDeviceList) Kind() Kind    { return KindRequestDeviceList }
func (*DeviceList) Kind() Kind           { return KindDeviceList }
func (*DeviceAdded) Kind() Kind          { return KindDeviceAdded }
func (*DeviceRemoved) Kind() Kind        { return KindDeviceRemoved }
func (*StopDeviceCmd) Kind() Kind        { return KindStopDeviceCmd }
func (*StopAllDevices) Kind() Kind       { return KindStopAllDevices }
func (*VibrateCmd) Kind() Kind           { return KindVibrateCmd }
func (*RotateCmd) Kind() Kind            { return KindRotateCmd }
func (*LinearCmd) Kind() Kind            { return KindLinearCmd }
func (*ScalarCmd) Kind() Kind            { return KindScalarCmd }
func (*SensorReadCmd) Kind() Kind        { return KindSensorReadCmd }
func (*SensorReading) Kind() Kind        { return KindSensorReading }
func (*SensorSubscribeCmd) Kind() Kind   { return KindSensorSubscribeCmd }
func (*SensorUnsubscribeCmd) Kind() Kind { return KindSensorUnsubscribeCmd }
func (*Unrecognized) Kind() Kind         { return KindUnrecognized }

// kindInfo describes one wire kind: its name, the schema versions that
// carry it, and a constructor for decoding.
type kindInfo struct {
	name   string
	min    version.Spec
	max    version.Spec
	newMsg func() Message
}

var kindTable = map[Kind]kindInfo{
	KindOk:                   {"Ok", version.V0, version.Latest, func() Message { return &Ok{} }},
	KindError:                {"Error", version.V0, version.Latest, func() Message { return &Error{} }},
	KindPing:                 {"Ping", version.V0, version.Latest, func() Message { return &Ping{} }},
	KindRequestLog:           {"RequestLog", version.V0, version.V2, func() Message { return &RequestLog{} }},
	KindLog:                  {"Log", version.V0, version.V2, func() Message { return &Log{} }},
	KindRequestServerInfo:    {"RequestServerInfo", version.V0, version.Latest, func() Message { return &RequestServerInfo{} }},
	KindServerInfo:           {"ServerInfo", version.V0, version.Latest, func() Message { return &ServerInfo{} }},
	KindStartScanning:        {"StartScanning", version.V0, version.Latest, func() Message { return &StartScanning{} }},
	KindStopScanning:         {"StopScanning", version.V0, version.Latest, func() Message { return &StopScanning{} }},
	KindScanningFinished:     {"ScanningFinished", version.V0, version.Latest, func() Message { return &ScanningFinished{} }},
	KindRequestDeviceList:    {"RequestDeviceList", version.V0, version.Latest, func() Message { return &RequestDeviceList{} }},
	KindDeviceList:           {"DeviceList", version.V0, version.Latest, func() Message { return &DeviceList{} }},
	KindDeviceAdded:          {"DeviceAdded", version.V0, version.Latest, func() Message { return &DeviceAdded{} }},
	KindDeviceRemoved:        {"DeviceRemoved", version.V0, version.Latest, func() Message { return &DeviceRemoved{} }},
	KindStopDeviceCmd:        {"StopDeviceCmd", version.V0, version.Latest, func() Message { return &StopDeviceCmd{} }},
	KindStopAllDevices:       {"StopAllDevices", version.V0, version.Latest, func() Message { return &StopAllDevices{} }},
	KindVibrateCmd:           {"VibrateCmd", version.V1, version.V2, func() Message { return &VibrateCmd{} }},
	KindRotateCmd:            {"RotateCmd", version.V1, version.Latest, func() Message { return &RotateCmd{} }},
	KindLinearCmd:            {"LinearCmd", version.V1, version.Latest, func() Message { return &LinearCmd{} }},
	KindScalarCmd:            {"ScalarCmd", version.V3, version.Latest, func() Message { return &ScalarCmd{} }},
	KindSensorReadCmd:        {"SensorReadCmd", version.V3, version.Latest, func() Message { return &SensorReadCmd{} }},
	KindSensorReading:        {"SensorReading", version.V3, version.Latest, func() Message { return &SensorReading{} }},
	KindSensorSubscribeCmd:   {"SensorSubscribeCmd", version.V3, version.Latest, func() Message { return &SensorSubscribeCmd{} }},
	KindSensorUnsubscribeCmd: {"SensorUnsubscribeCmd", version.V3, version.Latest, func() Message { return &SensorUnsubscribeCmd{} }},
	KindUnrecognized:         {"Unrecognized", version.V0, version.Latest, func() Message { return &Unrecognized{} }},
}

// kindsByName resolves wire names during decoding. Unrecognized is excluded:
// it is a decoder artifact, not a wire kind.
var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindTable))
	for k, info := range kindTable {
		if k == KindUnrecognized {
			continue
		}
		m[info.name] = k
	}
	return m
}()
