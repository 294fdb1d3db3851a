// Package version defines the protocol schema versions this library speaks.
package version

import "fmt"

// Spec is a protocol schema version. Each revision changes the set of valid
// message kinds and their fields, so a connection always operates at exactly
// one negotiated Spec.
type Spec uint32

const (
	// V0 is the original revision with device-specific command messages.
	V0 Spec = 0
	// V1 added version negotiation and the generic vibrate/rotate/linear
	// commands with per-feature counts.
	V1 Spec = 1
	// V2 added battery and RSSI reads and trimmed ServerInfo.
	V2 Spec = 2
	// V3 replaced the typed actuator commands with ScalarCmd and added the
	// generic sensor read/subscribe model.
	V3 Spec = 3

	// Latest is the newest schema version implemented by this library.
	Latest = V3
)

// String returns the version in "v3" form.
func (s Spec) String() string {
	return fmt.Sprintf("v%d", uint32(s))
}

// Supports reports whether a conversation negotiated at s may carry a
// message kind introduced in min.
func (s Spec) Supports(min Spec) bool {
	return s >= min
}
