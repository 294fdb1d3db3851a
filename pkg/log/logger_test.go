package log

import (
	"testing"
	"time"
)

// mockLogger records events for testing
type mockLogger struct {
	events []Event
}

func (m *mockLogger) Log(event Event) {
	m.events = append(m.events, event)
}

func TestNoopLoggerDoesNotPanic(t *testing.T) {
	logger := NoopLogger{}

	// Should not panic with any event type
	event := Event{
		Timestamp: time.Now(),
		SessionID: "test-session",
		Direction: DirectionIn,
		Layer:     LayerTransport,
		Category:  CategoryMessage,
	}

	// Test with nil payloads
	logger.Log(event)

	// Test with frame payload
	event.Frame = &FrameEvent{Size: 100, Data: []byte(`[{"Ok":{"Id":1}}]`)}
	logger.Log(event)

	// Test with message payload
	event.Frame = nil
	event.Message = &MessageEvent{Kind: "Ping", MessageID: 1}
	logger.Log(event)

	// Test with state change payload
	event.Message = nil
	event.StateChange = &StateChangeEvent{Entity: StateEntitySession, NewState: "CONNECTED"}
	logger.Log(event)

	// Test with dispatch payload
	event.StateChange = nil
	event.Dispatch = &DispatchEvent{EventType: "DEVICE_ADDED", Subscribers: 1}
	logger.Log(event)

	// Test with error payload
	event.Dispatch = nil
	event.Error = &ErrorEventData{Message: "test error"}
	logger.Log(event)
}

func TestNoopLoggerIsZeroValue(t *testing.T) {
	// NoopLogger should be usable as zero value
	var logger NoopLogger
	logger.Log(Event{})
}

func TestMultiLoggerCallsAll(t *testing.T) {
	mock1 := &mockLogger{}
	mock2 := &mockLogger{}
	mock3 := &mockLogger{}

	multi := NewMultiLogger(mock1, mock2, mock3)

	event := Event{
		Timestamp: time.Now(),
		SessionID: "session-123",
		Direction: DirectionIn,
		Layer:     LayerTransport,
		Category:  CategoryMessage,
	}

	multi.Log(event)

	// All loggers should have received the event
	for i, mock := range []*mockLogger{mock1, mock2, mock3} {
		if len(mock.events) != 1 {
			t.Errorf("logger %d: got %d events, want 1", i, len(mock.events))
			continue
		}
		if mock.events[0].SessionID != "session-123" {
			t.Errorf("logger %d: SessionID = %q, want %q", i, mock.events[0].SessionID, "session-123")
		}
	}
}

func TestMultiLoggerDropsNil(t *testing.T) {
	mock := &mockLogger{}

	multi := NewMultiLogger(nil, mock, nil)
	if len(multi) != 1 {
		t.Fatalf("got %d loggers, want 1", len(multi))
	}

	multi.Log(Event{SessionID: "session-nil"})

	if len(mock.events) != 1 {
		t.Fatalf("got %d events, want 1", len(mock.events))
	}
}

func TestMultiLoggerEmptyList(t *testing.T) {
	multi := NewMultiLogger()

	// Should not panic with empty logger list
	event := Event{
		Timestamp: time.Now(),
		SessionID: "session-123",
		Direction: DirectionIn,
		Layer:     LayerTransport,
		Category:  CategoryMessage,
	}

	multi.Log(event)
}

func TestMultiLoggerPreservesOrder(t *testing.T) {
	var order []int
	first := loggerFunc(func(Event) { order = append(order, 1) })
	second := loggerFunc(func(Event) { order = append(order, 2) })

	multi := NewMultiLogger(first, second)
	multi.Log(Event{})

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("loggers invoked out of order: %v", order)
	}
}

// loggerFunc adapts a function to the Logger interface.
type loggerFunc func(Event)

func (f loggerFunc) Log(event Event) { f(event) }

func TestLoggerInterfaceSatisfaction(t *testing.T) {
	var _ Logger = NoopLogger{}
	var _ Logger = &NoopLogger{}
	var _ Logger = MultiLogger{}
}
