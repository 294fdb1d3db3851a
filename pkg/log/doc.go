// Package log provides structured protocol trace capture.
//
// This package defines the Logger interface and Event types for recording
// protocol-level activity at multiple layers (transport, wire, session).
// It is separate from operational logging (slog). A trace is a complete
// machine-readable record of one or more client sessions, suitable for
// replaying a bug report or auditing what a server actually sent.
//
// # Basic Usage
//
// Applications configure tracing by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.Trace = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.Trace, _ = log.NewFileLogger("session.bplog")
//
//	// Both: use MultiLogger
//	cfg.Trace = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
// Events are captured at multiple layers:
//   - Transport: raw frame text (FrameEvent)
//   - Wire: decoded messages (MessageEvent)
//   - Session: state transitions (StateChangeEvent) and event fan-out
//     to subscribers (DispatchEvent)
//
// Errors at any layer use ErrorEventData.
//
// # File Format
//
// Trace files use CBOR encoding with the .bplog extension. The bp-trace
// CLI tool provides viewing, filtering, and export capabilities.
package log
