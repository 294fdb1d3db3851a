package log

// Logger is the interface applications implement to receive trace events.
// Pass nil or NoopLogger to disable tracing.
type Logger interface {
	// Log records a trace event. Implementations must be thread-safe.
	// The event should be processed quickly or queued; blocking stalls
	// the session's inbound loop.
	Log(event Event)
}

// NoopLogger discards all events. Use when tracing is disabled.
// NoopLogger is safe for concurrent use and usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// MultiLogger fans each event out to several loggers in order, letting
// a session trace to a capture file and mirror to slog at once.
type MultiLogger []Logger

// NewMultiLogger combines loggers into one. Nil entries are dropped, so
// callers can pass optional loggers without checking them first.
func NewMultiLogger(loggers ...Logger) MultiLogger {
	combined := make(MultiLogger, 0, len(loggers))
	for _, l := range loggers {
		if l != nil {
			combined = append(combined, l)
		}
	}
	return combined
}

// Log forwards the event to every logger.
func (m MultiLogger) Log(event Event) {
	for _, l := range m {
		l.Log(event)
	}
}

// Compile-time interface satisfaction checks.
var (
	_ Logger = NoopLogger{}
	_ Logger = MultiLogger{}
)
