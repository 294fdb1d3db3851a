// Package wire defines the JSON wire format types for the device-control
// protocol and the codec that translates between wire frames and typed
// messages.
//
// A wire frame is a JSON array of one or more message objects. Each message
// object has exactly one key, the message kind name, whose value carries the
// fields of that message:
//
//	[{"RequestServerInfo": {"Id": 1, "ClientName": "example", "MessageVersion": 3}}]
//
// Every message carries an integer Id. Id 0 is reserved for server-pushed
// events and for commands that expect no reply; identifiers of outstanding
// requests are assigned by the interaction layer and never 0.
//
// # Schema versions
//
// The set of valid message kinds and some field shapes depend on the schema
// version negotiated during the handshake. Encode and Decode take the
// negotiated version and reject kinds outside it with ErrUnsupportedVersion.
// Kinds introduced by servers newer than this library decode into
// Unrecognized instead of failing, so a forward-compatible server does not
// break the session.
//
// # Devices
//
// DeviceList and DeviceAdded carry device descriptions whose capability
// shape changed in every schema revision. All revisions decode into the one
// normalized DeviceMessages form, one attribute set per addressable feature.
package wire
