package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestSlogAdapterLogsFrameEvent(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	slogger := slog.New(handler)

	adapter := NewSlogAdapter(slogger)

	adapter.Log(Event{
		Timestamp: time.Now(),
		SessionID: "session-123",
		Direction: DirectionIn,
		Layer:     LayerTransport,
		Category:  CategoryMessage,
		Frame: &FrameEvent{
			Size: 256,
			Data: []byte(`[{"Ok":{"Id":1}}]`),
		},
	})

	output := buf.String()
	if output == "" {
		t.Fatal("no output produced")
	}

	var logEntry map[string]any
	if err := json.Unmarshal([]byte(output), &logEntry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}

	if logEntry["session_id"] != "session-123" {
		t.Errorf("session_id: got %v, want %q", logEntry["session_id"], "session-123")
	}
	if logEntry["direction"] != "IN" {
		t.Errorf("direction: got %v, want %q", logEntry["direction"], "IN")
	}
	if logEntry["layer"] != "TRANSPORT" {
		t.Errorf("layer: got %v, want %q", logEntry["layer"], "TRANSPORT")
	}
	if logEntry["frame_size"] != float64(256) {
		t.Errorf("frame_size: got %v, want %v", logEntry["frame_size"], 256)
	}
}

func TestSlogAdapterLogsMessageEvent(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	slogger := slog.New(handler)

	adapter := NewSlogAdapter(slogger)

	adapter.Log(Event{
		Timestamp: time.Now(),
		SessionID: "session-456",
		Direction: DirectionOut,
		Layer:     LayerWire,
		Category:  CategoryMessage,
		Message: &MessageEvent{
			Kind:      "VibrateCmd",
			MessageID: 42,
		},
	})

	output := buf.String()
	if output == "" {
		t.Fatal("no output produced")
	}

	var logEntry map[string]any
	if err := json.Unmarshal([]byte(output), &logEntry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}

	if logEntry["msg_id"] != float64(42) {
		t.Errorf("msg_id: got %v, want %v", logEntry["msg_id"], 42)
	}
	if logEntry["msg_kind"] != "VibrateCmd" {
		t.Errorf("msg_kind: got %v, want %q", logEntry["msg_kind"], "VibrateCmd")
	}
}

func TestSlogAdapterIncludesSessionID(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	slogger := slog.New(handler)

	adapter := NewSlogAdapter(slogger)

	adapter.Log(Event{
		Timestamp: time.Now(),
		SessionID: "abc12345-def6-7890",
		Direction: DirectionIn,
		Layer:     LayerSession,
		Category:  CategoryState,
		StateChange: &StateChangeEvent{
			Entity:   StateEntitySession,
			NewState: "CONNECTED",
		},
	})

	output := buf.String()
	if !strings.Contains(output, "abc12345-def6-7890") {
		t.Error("output does not contain session ID")
	}
}

func TestSlogAdapterInterfaceSatisfaction(t *testing.T) {
	var _ Logger = (*SlogAdapter)(nil)
}
