package log

import (
	"bytes"
	"testing"
	"time"

	"github.com/Siege-Wizard/buttplug-go/pkg/wire"
)

func TestEventCBORRoundTrip(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 123456789, time.UTC)
	index := uint32(2)
	original := Event{
		Timestamp:   ts,
		SessionID:   "abc12345-def6-7890-abcd-ef1234567890",
		Direction:   DirectionOut,
		Layer:       LayerWire,
		Category:    CategoryMessage,
		ServerAddr:  "ws://192.168.1.100:12345",
		DeviceIndex: &index,
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if !decoded.Timestamp.Equal(original.Timestamp) {
		t.Errorf("Timestamp: got %v, want %v", decoded.Timestamp, original.Timestamp)
	}
	if decoded.SessionID != original.SessionID {
		t.Errorf("SessionID: got %q, want %q", decoded.SessionID, original.SessionID)
	}
	if decoded.Direction != original.Direction {
		t.Errorf("Direction: got %v, want %v", decoded.Direction, original.Direction)
	}
	if decoded.Layer != original.Layer {
		t.Errorf("Layer: got %v, want %v", decoded.Layer, original.Layer)
	}
	if decoded.Category != original.Category {
		t.Errorf("Category: got %v, want %v", decoded.Category, original.Category)
	}
	if decoded.ServerAddr != original.ServerAddr {
		t.Errorf("ServerAddr: got %q, want %q", decoded.ServerAddr, original.ServerAddr)
	}
	if decoded.DeviceIndex == nil || *decoded.DeviceIndex != index {
		t.Errorf("DeviceIndex: got %v, want %d", decoded.DeviceIndex, index)
	}
}

func TestFrameEventCBORRoundTrip(t *testing.T) {
	original := Event{
		Timestamp: time.Now(),
		SessionID: "session-1",
		Direction: DirectionIn,
		Layer:     LayerTransport,
		Category:  CategoryMessage,
		Frame: &FrameEvent{
			Size:      256,
			Data:      []byte(`[{"Ok":{"Id":1}}]`),
			Truncated: true,
		},
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.Frame == nil {
		t.Fatal("Frame is nil after round trip")
	}
	if decoded.Frame.Size != original.Frame.Size {
		t.Errorf("Frame.Size: got %d, want %d", decoded.Frame.Size, original.Frame.Size)
	}
	if !bytes.Equal(decoded.Frame.Data, original.Frame.Data) {
		t.Errorf("Frame.Data: got %q, want %q", decoded.Frame.Data, original.Frame.Data)
	}
	if !decoded.Frame.Truncated {
		t.Error("Frame.Truncated: got false, want true")
	}
}

func TestMessageEventCBORRoundTrip(t *testing.T) {
	rtt := 12 * time.Millisecond
	code := wire.ErrorCodeDevice
	original := Event{
		Timestamp: time.Now(),
		SessionID: "session-2",
		Direction: DirectionIn,
		Layer:     LayerWire,
		Category:  CategoryMessage,
		Message: &MessageEvent{
			Kind:      "Error",
			MessageID: 42,
			ErrorCode: &code,
			RoundTrip: &rtt,
		},
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.Message == nil {
		t.Fatal("Message is nil after round trip")
	}
	if decoded.Message.Kind != "Error" {
		t.Errorf("Message.Kind: got %q, want %q", decoded.Message.Kind, "Error")
	}
	if decoded.Message.MessageID != 42 {
		t.Errorf("Message.MessageID: got %d, want 42", decoded.Message.MessageID)
	}
	if decoded.Message.ErrorCode == nil || *decoded.Message.ErrorCode != wire.ErrorCodeDevice {
		t.Errorf("Message.ErrorCode: got %v, want %v", decoded.Message.ErrorCode, wire.ErrorCodeDevice)
	}
	if decoded.Message.RoundTrip == nil || *decoded.Message.RoundTrip != rtt {
		t.Errorf("Message.RoundTrip: got %v, want %v", decoded.Message.RoundTrip, rtt)
	}
}

func TestStateChangeEventCBORRoundTrip(t *testing.T) {
	original := Event{
		Timestamp: time.Now(),
		SessionID: "session-3",
		Direction: DirectionIn,
		Layer:     LayerSession,
		Category:  CategoryState,
		StateChange: &StateChangeEvent{
			Entity:   StateEntitySession,
			OldState: "HANDSHAKING",
			NewState: "CONNECTED",
			Reason:   "handshake complete",
		},
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.StateChange == nil {
		t.Fatal("StateChange is nil after round trip")
	}
	if decoded.StateChange.Entity != StateEntitySession {
		t.Errorf("Entity: got %v, want %v", decoded.StateChange.Entity, StateEntitySession)
	}
	if decoded.StateChange.OldState != "HANDSHAKING" {
		t.Errorf("OldState: got %q, want %q", decoded.StateChange.OldState, "HANDSHAKING")
	}
	if decoded.StateChange.NewState != "CONNECTED" {
		t.Errorf("NewState: got %q, want %q", decoded.StateChange.NewState, "CONNECTED")
	}
	if decoded.StateChange.Reason != "handshake complete" {
		t.Errorf("Reason: got %q, want %q", decoded.StateChange.Reason, "handshake complete")
	}
}

func TestDispatchEventCBORRoundTrip(t *testing.T) {
	original := Event{
		Timestamp: time.Now(),
		SessionID: "session-4",
		Direction: DirectionIn,
		Layer:     LayerSession,
		Category:  CategoryDispatch,
		Dispatch: &DispatchEvent{
			EventType:   "DEVICE_ADDED",
			Subscribers: 3,
		},
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.Dispatch == nil {
		t.Fatal("Dispatch is nil after round trip")
	}
	if decoded.Dispatch.EventType != "DEVICE_ADDED" {
		t.Errorf("EventType: got %q, want %q", decoded.Dispatch.EventType, "DEVICE_ADDED")
	}
	if decoded.Dispatch.Subscribers != 3 {
		t.Errorf("Subscribers: got %d, want 3", decoded.Dispatch.Subscribers)
	}
}

func TestErrorEventCBORRoundTrip(t *testing.T) {
	code := wire.ErrorCodePing
	original := Event{
		Timestamp: time.Now(),
		SessionID: "session-5",
		Direction: DirectionIn,
		Layer:     LayerWire,
		Category:  CategoryError,
		Error: &ErrorEventData{
			Layer:   LayerWire,
			Message: "ping timeout exceeded",
			Code:    &code,
			Context: "keepalive",
		},
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.Error == nil {
		t.Fatal("Error is nil after round trip")
	}
	if decoded.Error.Message != "ping timeout exceeded" {
		t.Errorf("Error.Message: got %q, want %q", decoded.Error.Message, "ping timeout exceeded")
	}
	if decoded.Error.Code == nil || *decoded.Error.Code != wire.ErrorCodePing {
		t.Errorf("Error.Code: got %v, want %v", decoded.Error.Code, wire.ErrorCodePing)
	}
	if decoded.Error.Context != "keepalive" {
		t.Errorf("Error.Context: got %q, want %q", decoded.Error.Context, "keepalive")
	}
}

func TestOptionalFieldsOmitted(t *testing.T) {
	minimal := Event{
		Timestamp: time.Now(),
		SessionID: "session-6",
		Direction: DirectionIn,
		Layer:     LayerSession,
		Category:  CategoryState,
		StateChange: &StateChangeEvent{
			Entity:   StateEntityScanning,
			NewState: "STARTED",
		},
	}

	full := minimal
	full.ServerAddr = "ws://localhost:12345"
	index := uint32(7)
	full.DeviceIndex = &index

	minData, err := EncodeEvent(minimal)
	if err != nil {
		t.Fatalf("EncodeEvent(minimal) failed: %v", err)
	}
	fullData, err := EncodeEvent(full)
	if err != nil {
		t.Fatalf("EncodeEvent(full) failed: %v", err)
	}

	if len(minData) >= len(fullData) {
		t.Errorf("omitted optional fields should shrink encoding: minimal=%d full=%d",
			len(minData), len(fullData))
	}

	decoded, err := DecodeEvent(minData)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}
	if decoded.ServerAddr != "" {
		t.Errorf("ServerAddr: got %q, want empty", decoded.ServerAddr)
	}
	if decoded.DeviceIndex != nil {
		t.Errorf("DeviceIndex: got %v, want nil", decoded.DeviceIndex)
	}
	if decoded.Frame != nil || decoded.Message != nil || decoded.Error != nil {
		t.Error("unset payloads must decode as nil")
	}
}

func TestStreamingEncodeDecode(t *testing.T) {
	var buf bytes.Buffer
	encoder := NewEncoder(&buf)

	kinds := []string{"RequestServerInfo", "ServerInfo", "RequestDeviceList", "DeviceList", "DeviceAdded"}
	for i, kind := range kinds {
		event := Event{
			Timestamp: time.Now(),
			SessionID: "stream",
			Direction: Direction(i % 2),
			Layer:     LayerWire,
			Category:  CategoryMessage,
			Message:   &MessageEvent{Kind: kind, MessageID: uint32(i)},
		}
		if err := encoder.Encode(event); err != nil {
			t.Fatalf("Encode event %d failed: %v", i, err)
		}
	}

	decoder := NewDecoder(&buf)
	for i, kind := range kinds {
		var got Event
		if err := decoder.Decode(&got); err != nil {
			t.Fatalf("Decode event %d failed: %v", i, err)
		}
		if got.Message == nil || got.Message.Kind != kind {
			t.Errorf("event %d: got %+v, want kind %q", i, got.Message, kind)
		}
	}

	var extra Event
	if err := decoder.Decode(&extra); err == nil {
		t.Error("expected error decoding past the last event")
	}
}

func TestEncodingDeterministic(t *testing.T) {
	event := Event{
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		SessionID: "determinism",
		Direction: DirectionIn,
		Layer:     LayerWire,
		Category:  CategoryMessage,
		Message:   &MessageEvent{Kind: "Ok", MessageID: 7},
	}

	first, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	second, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("identical events must encode to identical bytes")
	}
}
