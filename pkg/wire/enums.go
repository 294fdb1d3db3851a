package wire

// ErrorCode classifies a server-sent Error message.
type ErrorCode uint8

const (
	// ErrorCodeUnknown is an unclassified server failure.
	ErrorCodeUnknown ErrorCode = 0

	// ErrorCodeInit reports a failed handshake, for example an unsupported
	// client version.
	ErrorCodeInit ErrorCode = 1

	// ErrorCodePing reports a missed ping deadline; the server will drop
	// the connection.
	ErrorCodePing ErrorCode = 2

	// ErrorCodeMessage reports a message the server could not parse or
	// does not accept at the negotiated version.
	ErrorCodeMessage ErrorCode = 3

	// ErrorCodeDevice reports a device-level failure, for example a
	// command to a disconnected device.
	ErrorCodeDevice ErrorCode = 4
)

// String returns the error code name.
func (c ErrorCode) String() string {
	switch c {
	case ErrorCodeUnknown:
		return "UNKNOWN"
	case ErrorCodeInit:
		return "INIT"
	case ErrorCodePing:
		return "PING"
	case ErrorCodeMessage:
		return "MESSAGE"
	case ErrorCodeDevice:
		return "DEVICE"
	default:
		return "UNKNOWN"
	}
}

// ActuatorType names the physical action of a scalar actuator feature.
// The wire carries these as strings.
type ActuatorType string

const (
	ActuatorVibrate   ActuatorType = "Vibrate"
	ActuatorRotate    ActuatorType = "Rotate"
	ActuatorOscillate ActuatorType = "Oscillate"
	ActuatorConstrict ActuatorType = "Constrict"
	ActuatorInflate   ActuatorType = "Inflate"
	ActuatorPosition  ActuatorType = "Position"
)

// SensorType names what a sensor feature measures. The wire carries these
// as strings.
type SensorType string

const (
	SensorBattery  SensorType = "Battery"
	SensorRSSI     SensorType = "RSSI"
	SensorButton   SensorType = "Button"
	SensorPressure SensorType = "Pressure"
)

// LogLevel is the verbosity of server log forwarding via RequestLog.
// Valid through v2; v3 removed server log messages.
type LogLevel string

const (
	LogLevelOff   LogLevel = "Off"
	LogLevelFatal LogLevel = "Fatal"
	LogLevelError LogLevel = "Error"
	LogLevelWarn  LogLevel = "Warn"
	LogLevelInfo  LogLevel = "Info"
	LogLevelDebug LogLevel = "Debug"
	LogLevelTrace LogLevel = "Trace"
)
