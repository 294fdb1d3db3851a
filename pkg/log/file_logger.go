package log

import (
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// FileLogger appends trace events to a capture file as a stream of CBOR
// items, one item per event. Reader streams the same format back.
// FileLogger is safe for concurrent use from multiple goroutines.
type FileLogger struct {
	path string

	mu      sync.Mutex
	file    *os.File
	encoder *cbor.Encoder
	count   uint64
	closed  bool
}

// NewFileLogger opens a capture file for appending, creating it with
// mode 0644 when missing. Appending lets a reconnecting client keep all
// its sessions in one capture.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &FileLogger{
		path:    path,
		file:    f,
		encoder: NewEncoder(f),
	}, nil
}

// Log appends an event to the capture file.
// Encoding errors are swallowed; tracing must not disrupt the session.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	if err := l.encoder.Encode(event); err == nil {
		l.count++
	}
}

// Count reports how many events this logger has written since it opened.
func (l *FileLogger) Count() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// Path returns the capture file path.
func (l *FileLogger) Path() string {
	return l.path
}

// Close closes the capture file. It is safe to call Close more than
// once; Log calls after Close are silently ignored.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	l.closed = true
	return l.file.Close()
}

// Compile-time interface satisfaction check.
var _ Logger = (*FileLogger)(nil)
