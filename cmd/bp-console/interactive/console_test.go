package interactive

import (
	"testing"

	"github.com/Siege-Wizard/buttplug-go/pkg/wire"
)

func TestParseServerLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want wire.LogLevel
	}{
		{"off", wire.LogLevelOff},
		{"fatal", wire.LogLevelFatal},
		{"error", wire.LogLevelError},
		{"warn", wire.LogLevelWarn},
		{"info", wire.LogLevelInfo},
		{"debug", wire.LogLevelDebug},
		{"trace", wire.LogLevelTrace},
		{"INFO", wire.LogLevelInfo},
		{"Debug", wire.LogLevelDebug},
	}

	for _, tt := range tests {
		got, err := parseServerLogLevel(tt.in)
		if err != nil {
			t.Errorf("parseServerLogLevel(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseServerLogLevel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseServerLogLevelUnknown(t *testing.T) {
	if _, err := parseServerLogLevel("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestFormatReading(t *testing.T) {
	tests := []struct {
		data []int32
		want string
	}{
		{nil, "[]"},
		{[]int32{42}, "[42]"},
		{[]int32{0, -15, 100}, "[0 -15 100]"},
	}

	for _, tt := range tests {
		if got := formatReading(tt.data); got != tt.want {
			t.Errorf("formatReading(%v) = %q, want %q", tt.data, got, tt.want)
		}
	}
}
