package commands

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/Siege-Wizard/buttplug-go/pkg/log"
)

func TestFilterBySessionID(t *testing.T) {
	ts := time.Date(2026, 3, 12, 10, 15, 32, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, SessionID: "session-1", Category: log.CategoryMessage},
		{Timestamp: ts, SessionID: "session-2", Category: log.CategoryMessage},
		{Timestamp: ts, SessionID: "session-1", Category: log.CategoryMessage},
	}

	path := createTestTraceFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.bplog")

	err := RunFilter(path, FilterOptions{
		Output:    outPath,
		SessionID: "session-1",
	})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	// Verify output
	reader, err := log.NewReader(outPath)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer reader.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("failed to read event: %v", err)
		}
		if event.SessionID != "session-1" {
			t.Errorf("expected session-1, got %s", event.SessionID)
		}
		count++
	}

	if count != 2 {
		t.Errorf("expected 2 events, got %d", count)
	}
}

func TestFilterByKind(t *testing.T) {
	ts := time.Date(2026, 3, 12, 10, 15, 32, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, Category: log.CategoryMessage, Message: &log.MessageEvent{Kind: "ScalarCmd", MessageID: 1}},
		{Timestamp: ts, Category: log.CategoryMessage, Message: &log.MessageEvent{Kind: "Ok", MessageID: 1}},
		{Timestamp: ts, Category: log.CategoryMessage, Message: &log.MessageEvent{Kind: "ScalarCmd", MessageID: 2}},
	}

	path := createTestTraceFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.bplog")

	err := RunFilter(path, FilterOptions{
		Output: outPath,
		Kind:   "ScalarCmd",
	})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	reader, err := log.NewReader(outPath)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer reader.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("failed to read event: %v", err)
		}
		if event.Message == nil || event.Message.Kind != "ScalarCmd" {
			t.Errorf("expected ScalarCmd event, got %+v", event.Message)
		}
		count++
	}

	if count != 2 {
		t.Errorf("expected 2 events, got %d", count)
	}
}

func TestFilterByDeviceIndex(t *testing.T) {
	ts := time.Date(2026, 3, 12, 10, 15, 32, 0, time.UTC)
	idx1 := uint32(1)
	idx2 := uint32(2)
	events := []log.Event{
		{Timestamp: ts, Category: log.CategoryMessage, DeviceIndex: &idx1},
		{Timestamp: ts, Category: log.CategoryMessage, DeviceIndex: &idx2},
		{Timestamp: ts, Category: log.CategoryMessage},
	}

	path := createTestTraceFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.bplog")

	err := RunFilter(path, FilterOptions{
		Output:      outPath,
		DeviceIndex: "2",
	})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	reader, err := log.NewReader(outPath)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer reader.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("failed to read event: %v", err)
		}
		if event.DeviceIndex == nil || *event.DeviceIndex != 2 {
			t.Errorf("expected device index 2, got %v", event.DeviceIndex)
		}
		count++
	}

	if count != 1 {
		t.Errorf("expected 1 event, got %d", count)
	}
}

func TestFilterByTimeRange(t *testing.T) {
	base := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: base, SessionID: "session-1", Category: log.CategoryMessage},
		{Timestamp: base.Add(time.Hour), SessionID: "session-1", Category: log.CategoryMessage},
		{Timestamp: base.Add(2 * time.Hour), SessionID: "session-1", Category: log.CategoryMessage},
	}

	path := createTestTraceFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.bplog")

	err := RunFilter(path, FilterOptions{
		Output:    outPath,
		TimeStart: base.Add(30 * time.Minute).Format(time.RFC3339),
		TimeEnd:   base.Add(90 * time.Minute).Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	// Only the 11:00 event falls inside the window
	reader, err := log.NewReader(outPath)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer reader.Close()

	count := 0
	for {
		_, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("failed to read event: %v", err)
		}
		count++
	}

	if count != 1 {
		t.Errorf("expected 1 event, got %d", count)
	}
}

func TestFilterCommandByLayer(t *testing.T) {
	ts := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, Layer: log.LayerTransport, Category: log.CategoryMessage},
		{Timestamp: ts, Layer: log.LayerWire, Category: log.CategoryMessage},
		{Timestamp: ts, Layer: log.LayerSession, Category: log.CategoryMessage},
	}

	path := createTestTraceFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.bplog")

	err := RunFilter(path, FilterOptions{
		Output: outPath,
		Layer:  "wire",
	})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	reader, err := log.NewReader(outPath)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer reader.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("failed to read event: %v", err)
		}
		if event.Layer != log.LayerWire {
			t.Errorf("expected wire layer, got %v", event.Layer)
		}
		count++
	}

	if count != 1 {
		t.Errorf("expected 1 event, got %d", count)
	}
}

func TestFilterInvalidDeviceIndex(t *testing.T) {
	ts := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, Category: log.CategoryMessage},
	}

	path := createTestTraceFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.bplog")

	err := RunFilter(path, FilterOptions{
		Output:      outPath,
		DeviceIndex: "not-a-number",
	})
	if err == nil {
		t.Error("expected error for invalid device index")
	}
}

func TestFilterOutputReadable(t *testing.T) {
	ts := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, SessionID: "session-1", Category: log.CategoryMessage},
	}

	path := createTestTraceFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.bplog")

	err := RunFilter(path, FilterOptions{
		Output: outPath,
	})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	// The output must round-trip through the reader
	reader, err := log.NewReader(outPath)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer reader.Close()

	event, err := reader.Next()
	if err != nil {
		t.Fatalf("failed to read event: %v", err)
	}

	if event.SessionID != "session-1" {
		t.Errorf("expected session-1, got %s", event.SessionID)
	}
}
