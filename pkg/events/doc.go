// Package events fans server pushes out to application subscribers.
//
// The server sends unsolicited messages with identifier 0 (device
// arrivals, scan completion, sensor readings, log lines). The session
// turns each one into an Event and publishes it; the dispatcher
// delivers it to every subscriber before the next inbound message is
// processed.
//
// # Delivery Guarantees
//
// Events are delivered in strict arrival order. Handlers run on the
// inbound-processing goroutine, so a blocking handler stalls delivery
// of later events; handlers are expected to be quick or to hand work
// off to their own goroutine.
//
// # Failure Isolation
//
// A panicking handler does not stop delivery to the remaining handlers
// and does not take down the session. The panic is reported to the
// sink installed with OnPanic and otherwise swallowed for that event.
//
// # Lifecycle
//
// Subscriptions survive connection loss. A dropped connection is itself
// delivered as an event (TypeDisconnected), so handlers observe the
// full session history including reconnects.
package events
