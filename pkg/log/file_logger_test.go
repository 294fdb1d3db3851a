package log

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestFileLoggerCreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.bplog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	// File should exist
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("trace file was not created")
	}
}

func TestFileLoggerWritesCBOR(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.bplog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	event := Event{
		Timestamp: time.Now(),
		SessionID: "session-123",
		Direction: DirectionIn,
		Layer:     LayerTransport,
		Category:  CategoryMessage,
		Frame: &FrameEvent{
			Size: 100,
			Data: []byte(`[{"DeviceList":{"Id":2,"Devices":[]}}]`),
		},
	}

	logger.Log(event)
	logger.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read trace file: %v", err)
	}

	if len(data) == 0 {
		t.Fatal("trace file is empty")
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}

	if decoded.SessionID != event.SessionID {
		t.Errorf("SessionID: got %q, want %q", decoded.SessionID, event.SessionID)
	}
	if decoded.Frame == nil {
		t.Error("Frame is nil")
	} else if decoded.Frame.Size != event.Frame.Size {
		t.Errorf("Frame.Size: got %d, want %d", decoded.Frame.Size, event.Frame.Size)
	}
}

func TestFileLoggerAppends(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.bplog")

	// Write first event
	logger1, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	logger1.Log(Event{
		Timestamp: time.Now(),
		SessionID: "session-1",
		Direction: DirectionIn,
		Layer:     LayerTransport,
		Category:  CategoryMessage,
	})
	logger1.Close()

	// Open again and write second event
	logger2, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger second open failed: %v", err)
	}

	logger2.Log(Event{
		Timestamp: time.Now(),
		SessionID: "session-2",
		Direction: DirectionOut,
		Layer:     LayerWire,
		Category:  CategoryMessage,
	})
	logger2.Close()

	// Read all events back
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read trace file: %v", err)
	}

	decoder := NewDecoder(bytes.NewReader(data))
	var events []Event
	for {
		var event Event
		if err := decoder.Decode(&event); err != nil {
			break
		}
		events = append(events, event)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	if events[0].SessionID != "session-1" {
		t.Errorf("first event SessionID: got %q, want %q", events[0].SessionID, "session-1")
	}
	if events[1].SessionID != "session-2" {
		t.Errorf("second event SessionID: got %q, want %q", events[1].SessionID, "session-2")
	}
}

func TestFileLoggerThreadSafe(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.bplog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	const numGoroutines = 10
	const eventsPerGoroutine = 100

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < eventsPerGoroutine; j++ {
				logger.Log(Event{
					Timestamp: time.Now(),
					SessionID: "session-" + string(rune('A'+id)),
					Direction: DirectionIn,
					Layer:     LayerTransport,
					Category:  CategoryMessage,
				})
			}
		}(i)
	}

	wg.Wait()
	logger.Close()

	// Count events in file
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read trace file: %v", err)
	}

	decoder := NewDecoder(bytes.NewReader(data))
	count := 0
	for {
		var event Event
		if err := decoder.Decode(&event); err != nil {
			break
		}
		count++
	}

	expectedCount := numGoroutines * eventsPerGoroutine
	if count != expectedCount {
		t.Errorf("event count: got %d, want %d", count, expectedCount)
	}
}

func TestFileLoggerClose(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.bplog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	logger.Log(Event{
		Timestamp: time.Now(),
		SessionID: "session-123",
		Direction: DirectionIn,
		Layer:     LayerTransport,
		Category:  CategoryMessage,
	})

	// Close should not error
	if err := logger.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}

	// Double close should not panic or error
	if err := logger.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	// Logging after close should not panic
	logger.Log(Event{
		Timestamp: time.Now(),
		SessionID: "session-456",
		Direction: DirectionIn,
		Layer:     LayerTransport,
		Category:  CategoryMessage,
	})
}

func TestFileLoggerCountAndPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.bplog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	if logger.Path() != path {
		t.Errorf("Path() = %q, want %q", logger.Path(), path)
	}
	if logger.Count() != 0 {
		t.Errorf("Count() = %d before any writes", logger.Count())
	}

	for i := 0; i < 3; i++ {
		logger.Log(Event{
			Timestamp: time.Now(),
			SessionID: "session-123",
			Direction: DirectionIn,
			Layer:     LayerTransport,
			Category:  CategoryMessage,
		})
	}

	if logger.Count() != 3 {
		t.Errorf("Count() = %d, want 3", logger.Count())
	}

	// Events after close are not written and not counted.
	logger.Close()
	logger.Log(Event{SessionID: "dropped"})
	if logger.Count() != 3 {
		t.Errorf("Count() = %d after close, want 3", logger.Count())
	}
}

func TestFileLoggerInterfaceSatisfaction(t *testing.T) {
	var _ Logger = (*FileLogger)(nil)
}
