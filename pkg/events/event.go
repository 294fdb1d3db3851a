package events

import (
	"github.com/Siege-Wizard/buttplug-go/pkg/device"
	"github.com/Siege-Wizard/buttplug-go/pkg/wire"
)

// Type identifies what a push event reports.
type Type uint8

const (
	// TypeDeviceAdded reports a device joining the server.
	TypeDeviceAdded Type = iota

	// TypeDeviceRemoved reports a device leaving the server.
	TypeDeviceRemoved

	// TypeDeviceList reports a full device list pushed by the server
	// outside any request, replacing the known set wholesale.
	TypeDeviceList

	// TypeScanningFinished reports the end of a device scan.
	TypeScanningFinished

	// TypeSensorReading reports an unsolicited reading from a
	// subscribed sensor.
	TypeSensorReading

	// TypeServerLog reports a server-side log entry.
	TypeServerLog

	// TypeServerError reports an Error push not tied to any request.
	TypeServerError

	// TypeDisconnected reports loss of the connection.
	TypeDisconnected

	// TypeUnrecognized reports a push of a kind this client does not
	// know. The raw message is preserved in the Message field.
	TypeUnrecognized
)

// String returns a human-readable event type name.
func (t Type) String() string {
	switch t {
	case TypeDeviceAdded:
		return "DEVICE_ADDED"
	case TypeDeviceRemoved:
		return "DEVICE_REMOVED"
	case TypeDeviceList:
		return "DEVICE_LIST"
	case TypeScanningFinished:
		return "SCANNING_FINISHED"
	case TypeSensorReading:
		return "SENSOR_READING"
	case TypeServerLog:
		return "SERVER_LOG"
	case TypeServerError:
		return "SERVER_ERROR"
	case TypeDisconnected:
		return "DISCONNECTED"
	case TypeUnrecognized:
		return "UNRECOGNIZED"
	default:
		return "UNKNOWN"
	}
}

// Event is a single server push or connection notice. Type discriminates
// which of the remaining fields are meaningful.
type Event struct {
	Type Type

	// Device carries the parsed device for TypeDeviceAdded. For
	// TypeDeviceRemoved it is the entry that was dropped, nil when the
	// index was never known.
	Device *device.Device

	// Devices carries the replacement set for TypeDeviceList.
	Devices []*device.Device

	// DeviceIndex is set for TypeDeviceRemoved and TypeSensorReading.
	DeviceIndex uint32

	// SensorIndex, SensorType and Data carry a sensor reading.
	SensorIndex uint32
	SensorType  wire.SensorType
	Data        []int32

	// LogLevel and LogMessage carry a server log entry.
	LogLevel   wire.LogLevel
	LogMessage string

	// Err carries the error behind TypeServerError and
	// TypeDisconnected. A nil Err on TypeDisconnected means the close
	// was requested locally.
	Err error

	// Message is the wire message the event was built from, nil for
	// TypeDisconnected.
	Message wire.Message
}
