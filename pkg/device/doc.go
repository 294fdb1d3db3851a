// Package device tracks the devices known to a session and builds validated
// device commands.
//
// The Registry holds the server's view of connected devices. It is fed by
// the session from DeviceList, DeviceAdded and DeviceRemoved messages and is
// the sole owner of the device set: a DeviceList replaces the whole set, a
// DeviceAdded replaces any entry with the same index, and removing an absent
// index is a no-op.
//
// Each Device exposes its capabilities as ordered feature lists per family
// (scalar actuators, rotators, linear axes, sensors). Command constructors
// validate the target feature and value domain locally and return a wire
// message only when the command is valid, so invalid commands never reach
// the server.
package device
