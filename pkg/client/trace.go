package client

import (
	"time"

	"github.com/Siege-Wizard/buttplug-go/pkg/events"
	"github.com/Siege-Wizard/buttplug-go/pkg/log"
	"github.com/Siege-Wizard/buttplug-go/pkg/wire"
)

// traceFrameLimit caps how much frame text a single trace event
// carries. Larger frames are truncated, not dropped.
const traceFrameLimit = 1024

// traceBase returns an event pre-filled with the session coordinates.
func (c *Client) traceBase(layer log.Layer, category log.Category) log.Event {
	c.mu.RLock()
	sessionID := c.sessionID
	c.mu.RUnlock()

	return log.Event{
		Timestamp:  time.Now(),
		SessionID:  sessionID,
		Layer:      layer,
		Category:   category,
		ServerAddr: c.serverAddr,
	}
}

// traceFrame records one raw frame crossing the transport.
func (c *Client) traceFrame(dir log.Direction, data []byte) {
	if c.trace == nil {
		return
	}

	frame := &log.FrameEvent{Size: len(data)}
	if len(data) > traceFrameLimit {
		frame.Data = append([]byte(nil), data[:traceFrameLimit]...)
		frame.Truncated = true
	} else {
		frame.Data = append([]byte(nil), data...)
	}

	ev := c.traceBase(log.LayerTransport, log.CategoryMessage)
	ev.Direction = dir
	ev.Frame = frame
	c.trace.Log(ev)
}

// traceMessage records one protocol message. rtt is the request round
// trip for replies, nil otherwise.
func (c *Client) traceMessage(dir log.Direction, m wire.Message, rtt *time.Duration) {
	if c.trace == nil {
		return
	}

	me := &log.MessageEvent{
		Kind:      m.Kind().String(),
		MessageID: m.MessageID(),
		RoundTrip: rtt,
	}
	if e, ok := m.(*wire.Error); ok {
		code := e.ErrorCode
		me.ErrorCode = &code
	}

	ev := c.traceBase(log.LayerWire, log.CategoryMessage)
	ev.Direction = dir
	ev.Message = me
	c.trace.Log(ev)
}

// traceState records a session state transition.
func (c *Client) traceState(entity log.StateEntity, from, to, reason string) {
	if c.trace == nil {
		return
	}

	ev := c.traceBase(log.LayerSession, log.CategoryState)
	ev.StateChange = &log.StateChangeEvent{
		Entity:   entity,
		OldState: from,
		NewState: to,
		Reason:   reason,
	}
	c.trace.Log(ev)
}

// traceDevice records a device joining or leaving the registry.
func (c *Client) traceDevice(index uint32, state, reason string) {
	if c.trace == nil {
		return
	}

	ev := c.traceBase(log.LayerSession, log.CategoryState)
	ev.DeviceIndex = &index
	ev.StateChange = &log.StateChangeEvent{
		Entity:   log.StateEntityDevice,
		NewState: state,
		Reason:   reason,
	}
	c.trace.Log(ev)
}

// traceScanning records scanning turning on or off.
func (c *Client) traceScanning(active bool, reason string) {
	if c.trace == nil {
		return
	}

	state := "IDLE"
	if active {
		state = "SCANNING"
	}
	ev := c.traceBase(log.LayerSession, log.CategoryState)
	ev.StateChange = &log.StateChangeEvent{
		Entity:   log.StateEntityScanning,
		NewState: state,
		Reason:   reason,
	}
	c.trace.Log(ev)
}

// traceDispatch records one event fan-out.
func (c *Client) traceDispatch(ev events.Event) {
	if c.trace == nil {
		return
	}

	te := c.traceBase(log.LayerSession, log.CategoryDispatch)
	te.Dispatch = &log.DispatchEvent{
		EventType:   ev.Type.String(),
		Subscribers: c.dispatcher.Count(),
	}
	c.trace.Log(te)
}

// traceError records a fault that did not surface as a reply.
func (c *Client) traceError(layer log.Layer, err error, context string) {
	if c.trace == nil {
		return
	}

	ev := c.traceBase(layer, log.CategoryError)
	ev.Error = &log.ErrorEventData{
		Layer:   layer,
		Message: err.Error(),
		Context: context,
	}
	c.trace.Log(ev)
}
