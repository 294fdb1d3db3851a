package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Siege-Wizard/buttplug-go/pkg/connection"
	"github.com/Siege-Wizard/buttplug-go/pkg/device"
	"github.com/Siege-Wizard/buttplug-go/pkg/events"
	"github.com/Siege-Wizard/buttplug-go/pkg/interaction"
	"github.com/Siege-Wizard/buttplug-go/pkg/log"
	"github.com/Siege-Wizard/buttplug-go/pkg/transport"
	"github.com/Siege-Wizard/buttplug-go/pkg/version"
	"github.com/Siege-Wizard/buttplug-go/pkg/wire"
)

// Client is a Buttplug client session over a single connection.
type Client struct {
	mu sync.RWMutex

	config    Config
	connector transport.Connector

	// Session state
	state       SessionState
	info        ClientInfo
	spec        version.Spec // schema version frames are coded at
	scanning    bool
	sessionID   string
	closing     bool // local disconnect requested
	established bool // session reached StateConnected

	// Per-session goroutine plumbing
	readDone chan struct{}
	loopStop chan struct{}

	// Shared components, stable across reconnects
	correlator *interaction.Correlator
	registry   *device.Registry
	dispatcher *events.Dispatcher

	// Reconnection loop, nil while idle
	retryManager *connection.Manager
	retryCancel  context.CancelFunc

	// User panic sink, called after internal logging
	panicSink func(ev events.Event, recovered any)

	serverAddr string

	// Logger for debug output (optional)
	logger *slog.Logger

	// Protocol logger for structured event capture (optional)
	trace log.Logger
}

// NewClient creates a client that will talk through the given
// connector. The connector must not be shared with anything else.
func NewClient(connector transport.Connector, config Config) (*Client, error) {
	if connector == nil {
		return nil, fmt.Errorf("%w: connector is required", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	c := &Client{
		config:     config,
		connector:  connector,
		state:      StateDisconnected,
		correlator: interaction.NewCorrelator(config.RequestTimeout),
		registry:   device.NewRegistry(),
		dispatcher: events.NewDispatcher(),
		logger:     config.Logger,
		trace:      config.Trace,
	}
	if a, ok := connector.(interface{ URL() string }); ok {
		c.serverAddr = a.URL()
	}
	c.dispatcher.OnPanic(c.handlerPanicked)
	return c, nil
}

// Connect establishes the transport, runs the handshake, and seeds the
// device registry. On return the session is in StateConnected and
// requests may be sent from any goroutine.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateDisconnected {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w: session is %s", ErrAlreadyConnected, state)
	}
	c.state = StateConnecting
	c.closing = false
	c.established = false
	c.sessionID = uuid.NewString()
	c.spec = c.config.MaxVersion
	c.mu.Unlock()

	c.traceState(log.StateEntitySession, StateDisconnected.String(), StateConnecting.String(), "connect requested")
	if c.logger != nil {
		c.logger.Debug("connecting", "server", c.serverAddr, "max_version", c.config.MaxVersion.String())
	}

	if err := c.connector.Open(ctx); err != nil {
		c.setState(StateDisconnected, "transport open failed")
		c.traceError(log.LayerTransport, err, "open")
		return err
	}

	readDone := make(chan struct{})
	c.mu.Lock()
	c.readDone = readDone
	c.mu.Unlock()
	go c.readLoop(c.connector.Inbound(), readDone)

	c.setState(StateHandshaking, "transport open")

	hctx := ctx
	if c.config.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		hctx, cancel = context.WithTimeout(ctx, c.config.HandshakeTimeout)
		defer cancel()
	}
	info, err := c.handshake(hctx)
	if err != nil {
		c.abortSession(readDone)
		return err
	}

	c.mu.Lock()
	c.info = info
	c.established = true
	c.state = StateConnected
	c.loopStop = make(chan struct{})
	loopStop := c.loopStop
	c.mu.Unlock()

	c.traceState(log.StateEntitySession, StateHandshaking.String(), StateConnected.String(), "handshake complete")
	if c.logger != nil {
		c.logger.Info("connected",
			"server", info.ServerName,
			"version", info.MessageVersion.String(),
			"devices", c.registry.Len())
	}

	go c.sweepLoop(loopStop)
	if info.MaxPingTime > 0 {
		go c.pingLoop(loopStop, info.MaxPingTime/2)
	}
	return nil
}

// handshake runs the RequestServerInfo exchange and the initial device
// list synchronization. The returned info reflects the negotiated
// schema version.
func (c *Client) handshake(ctx context.Context) (ClientInfo, error) {
	reply, err := c.roundTrip(ctx, func(id uint32) wire.Message {
		return &wire.RequestServerInfo{
			Base:           wire.Base{ID: id},
			ClientName:     c.config.ClientName,
			MessageVersion: c.config.MaxVersion,
		}
	}, wire.KindServerInfo)
	if err != nil {
		return ClientInfo{}, fmt.Errorf("%w: %v", ErrHandshakeFailed, err)
	}
	si := reply.(*wire.ServerInfo)

	if si.MessageVersion > c.config.MaxVersion {
		return ClientInfo{}, fmt.Errorf("%w: server speaks %s, client caps at %s",
			ErrIncompatibleVersion, si.MessageVersion, c.config.MaxVersion)
	}

	info := ClientInfo{
		ServerName:     si.ServerName,
		MessageVersion: si.MessageVersion,
		MaxPingTime:    time.Duration(si.MaxPingTime) * time.Millisecond,
	}
	if si.MajorVersion != 0 || si.MinorVersion != 0 || si.BuildVersion != 0 {
		info.ServerVersion = fmt.Sprintf("%d.%d.%d", si.MajorVersion, si.MinorVersion, si.BuildVersion)
	}

	c.mu.Lock()
	c.spec = si.MessageVersion
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Debug("handshake reply",
			"server", si.ServerName,
			"negotiated", si.MessageVersion.String(),
			"max_ping_time", info.MaxPingTime)
	}

	reply, err = c.roundTrip(ctx, func(id uint32) wire.Message {
		return &wire.RequestDeviceList{Base: wire.Base{ID: id}}
	}, wire.KindDeviceList)
	if err != nil {
		return ClientInfo{}, fmt.Errorf("%w: device list: %v", ErrHandshakeFailed, err)
	}
	c.registry.ApplyDeviceList(reply.(*wire.DeviceList).Devices)

	return info, nil
}

// abortSession tears the transport down after a failed handshake. No
// disconnect event is published; the session never reached Connected.
func (c *Client) abortSession(readDone chan struct{}) {
	c.mu.Lock()
	c.closing = true
	c.mu.Unlock()

	_ = c.connector.Close(context.Background())
	<-readDone
}

// Disconnect closes the session. Outstanding requests fail, the device
// registry empties, and subscribers receive a TypeDisconnected event
// with a nil Err. An active reconnection loop is cancelled; in that
// case Disconnect returns nil even when no session was up.
func (c *Client) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	retrying := c.retryCancel != nil
	if retrying {
		c.retryCancel()
		c.retryCancel = nil
		c.retryManager = nil
	}
	if c.state != StateConnected {
		c.mu.Unlock()
		if retrying {
			return nil
		}
		return ErrNotConnected
	}
	c.closing = true
	c.state = StateDisconnecting
	readDone := c.readDone
	c.mu.Unlock()

	c.traceState(log.StateEntitySession, StateConnected.String(), StateDisconnecting.String(), "disconnect requested")
	if c.logger != nil {
		c.logger.Debug("disconnecting", "server", c.serverAddr)
	}

	if err := c.connector.Close(ctx); err != nil && c.logger != nil {
		c.logger.Debug("transport close failed", "error", err)
	}

	select {
	case <-readDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reconnect makes one immediate connection attempt, bypassing any
// backoff schedule. It composes with an active reconnection loop: on
// success the loop's next attempt finds the session up and stops.
func (c *Client) Reconnect(ctx context.Context) error {
	return c.Connect(ctx)
}

// State returns the current session state.
func (c *Client) State() SessionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// IsConnected reports whether the session is established.
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// Info returns the negotiated server details. The zero value is
// returned while disconnected.
func (c *Client) Info() ClientInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.info
}

// IsScanning reports whether a device scan is in progress.
func (c *Client) IsScanning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scanning
}

// Subscribe registers a handler for push events. Handlers run on the
// session's read goroutine in subscription order and should not block.
func (c *Client) Subscribe(handler events.Handler) events.Handle {
	return c.dispatcher.Subscribe(handler)
}

// Unsubscribe removes a subscription.
func (c *Client) Unsubscribe(h events.Handle) {
	c.dispatcher.Unsubscribe(h)
}

// OnHandlerPanic installs a callback receiving panics recovered from
// event handlers. The session itself never stops on a handler panic.
func (c *Client) OnHandlerPanic(fn func(ev events.Event, recovered any)) {
	c.mu.Lock()
	c.panicSink = fn
	c.mu.Unlock()
}

func (c *Client) handlerPanicked(ev events.Event, recovered any) {
	if c.logger != nil {
		c.logger.Error("event handler panicked",
			"event", ev.Type.String(),
			"panic", recovered)
	}
	c.traceError(log.LayerSession, fmt.Errorf("event handler panic: %v", recovered), ev.Type.String())

	c.mu.RLock()
	sink := c.panicSink
	c.mu.RUnlock()
	if sink != nil {
		sink(ev, recovered)
	}
}

// version returns the schema version the session currently codes at.
func (c *Client) version() version.Spec {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.spec
}

// setState transitions the session state, logging and tracing the
// change.
func (c *Client) setState(next SessionState, reason string) {
	c.mu.Lock()
	old := c.state
	c.state = next
	c.mu.Unlock()

	if old == next {
		return
	}
	if c.logger != nil {
		c.logger.Debug("session state changed",
			"from", old.String(), "to", next.String(), "reason", reason)
	}
	c.traceState(log.StateEntitySession, old.String(), next.String(), reason)
}

// roundTrip submits a request, sends it, and waits for the reply. The
// identifier is stamped by the correlator; send and encode failures
// fail the pending entry so no orphan is left behind.
func (c *Client) roundTrip(ctx context.Context, build func(id uint32) wire.Message, want ...wire.Kind) (wire.Message, error) {
	p := c.correlator.Submit(build, want...)

	data, err := wire.Encode(p.Request(), c.version())
	if err != nil {
		c.correlator.Fail(p.ID(), err)
		return nil, err
	}

	c.traceMessage(log.DirectionOut, p.Request(), nil)
	c.traceFrame(log.DirectionOut, data)
	if err := c.connector.Send(ctx, data); err != nil {
		c.correlator.Fail(p.ID(), err)
		return nil, err
	}

	return p.Await(ctx)
}

// request is roundTrip gated on an established session.
func (c *Client) request(ctx context.Context, build func(id uint32) wire.Message, want ...wire.Kind) (wire.Message, error) {
	c.mu.RLock()
	connected := c.state == StateConnected
	c.mu.RUnlock()
	if !connected {
		return nil, ErrNotConnected
	}
	return c.roundTrip(ctx, build, want...)
}

// readLoop drains the inbound channel for one session. It exits when
// the channel closes, which is the uniform signal for connection drop,
// then finishes session teardown.
func (c *Client) readLoop(inbound <-chan []byte, done chan struct{}) {
	defer close(done)
	for data := range inbound {
		c.handleFrame(data)
	}
	c.sessionEnded()
}

// handleFrame decodes one inbound frame and routes its messages in
// arrival order.
func (c *Client) handleFrame(data []byte) {
	c.traceFrame(log.DirectionIn, data)

	msgs, err := wire.Decode(data, c.version())
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("dropping undecodable frame", "error", err, "size", len(data))
		}
		c.traceError(log.LayerWire, err, "inbound frame")
		return
	}
	for _, m := range msgs {
		c.route(m)
	}
}

// route hands one inbound message to its consumer. A message carrying
// a request identifier resolves that request; identifier 0 marks a
// server push. Replies to identifiers nothing waits on are stale and
// dropped.
func (c *Client) route(m wire.Message) {
	if id := m.MessageID(); id != wire.PushID {
		age, pending := c.correlator.Age(id)
		if !pending {
			if c.logger != nil {
				c.logger.Debug("dropping stale reply", "kind", m.Kind().String(), "id", id)
			}
			return
		}
		c.traceMessage(log.DirectionIn, m, &age)
		c.correlator.Resolve(id, m)
		return
	}

	c.traceMessage(log.DirectionIn, m, nil)
	c.handlePush(m)
}

// handlePush applies a pushed message to the registry where relevant
// and publishes the matching event.
func (c *Client) handlePush(m wire.Message) {
	switch msg := m.(type) {
	case *wire.DeviceAdded:
		d := c.registry.ApplyDeviceAdded(msg.Device)
		c.traceDevice(d.Index(), "CONNECTED", d.Name())
		c.publish(events.Event{Type: events.TypeDeviceAdded, Device: d, DeviceIndex: d.Index(), Message: m})

	case *wire.DeviceRemoved:
		d, _ := c.registry.ApplyDeviceRemoved(msg.DeviceIndex)
		c.traceDevice(msg.DeviceIndex, "DISCONNECTED", "")
		c.publish(events.Event{Type: events.TypeDeviceRemoved, Device: d, DeviceIndex: msg.DeviceIndex, Message: m})

	case *wire.DeviceList:
		devices := c.registry.ApplyDeviceList(msg.Devices)
		c.publish(events.Event{Type: events.TypeDeviceList, Devices: devices, Message: m})

	case *wire.ScanningFinished:
		c.mu.Lock()
		c.scanning = false
		c.mu.Unlock()
		c.traceScanning(false, "server finished")
		c.publish(events.Event{Type: events.TypeScanningFinished, Message: m})

	case *wire.SensorReading:
		c.publish(events.Event{
			Type:        events.TypeSensorReading,
			DeviceIndex: msg.DeviceIndex,
			SensorIndex: msg.SensorIndex,
			SensorType:  msg.SensorType,
			Data:        msg.Data,
			Message:     m,
		})

	case *wire.Log:
		c.publish(events.Event{Type: events.TypeServerLog, LogLevel: msg.LogLevel, LogMessage: msg.LogMessage, Message: m})

	case *wire.Error:
		err := &interaction.ServerError{Code: msg.ErrorCode, Message: msg.ErrorMessage}
		if c.logger != nil {
			c.logger.Warn("server error push", "code", msg.ErrorCode.String(), "message", msg.ErrorMessage)
		}
		c.publish(events.Event{Type: events.TypeServerError, Err: err, Message: m})

	case *wire.Ok:
		// An Ok addressed to nobody carries no information.

	default:
		c.publish(events.Event{Type: events.TypeUnrecognized, Message: m})
	}
}

// publish traces and delivers one event to subscribers.
func (c *Client) publish(ev events.Event) {
	c.traceDispatch(ev)
	c.dispatcher.Publish(ev)
}

// sessionEnded finishes the teardown after the read loop drains. It
// runs for every session end: local disconnect, failed handshake, and
// unexpected loss.
func (c *Client) sessionEnded() {
	c.mu.Lock()
	old := c.state
	established := c.established
	graceful := c.closing
	c.state = StateDisconnected
	c.established = false
	c.info = ClientInfo{}
	c.scanning = false
	c.stopLoopsLocked()
	policy := c.config.Reconnect
	c.mu.Unlock()

	failed := c.correlator.FailAll(ErrConnectionLost)
	c.registry.Clear()

	if old != StateDisconnected {
		c.traceState(log.StateEntitySession, old.String(), StateDisconnected.String(), endReason(established, graceful))
	}
	if c.logger != nil {
		c.logger.Debug("session ended", "graceful", graceful, "failed_requests", failed)
	}

	if !established {
		return
	}
	if graceful {
		c.publish(events.Event{Type: events.TypeDisconnected})
		return
	}

	if c.logger != nil {
		c.logger.Warn("connection lost", "server", c.serverAddr)
	}
	c.publish(events.Event{Type: events.TypeDisconnected, Err: ErrConnectionLost})
	if policy.AutoReconnect {
		c.startAutoReconnect()
	}
}

func endReason(established, graceful bool) string {
	switch {
	case !established:
		return "handshake aborted"
	case graceful:
		return "local disconnect"
	default:
		return "connection lost"
	}
}

// stopLoopsLocked stops the ping and sweep goroutines. Callers hold
// c.mu.
func (c *Client) stopLoopsLocked() {
	if c.loopStop != nil {
		close(c.loopStop)
		c.loopStop = nil
	}
}

// startAutoReconnect launches the reconnection loop. A loop already
// running is superseded: each unexpected loss gets the policy's full
// attempt budget.
func (c *Client) startAutoReconnect() {
	mgr := connection.NewManager(c.config.Reconnect, func(ctx context.Context) error {
		err := c.Connect(ctx)
		if errors.Is(err, ErrAlreadyConnected) {
			return nil
		}
		return err
	})
	mgr.OnAttempt(func(attempt int, delay time.Duration) {
		if c.logger != nil {
			c.logger.Info("reconnect attempt", "attempt", attempt, "delay", delay)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	prev := c.retryCancel
	c.retryManager = mgr
	c.retryCancel = cancel
	c.mu.Unlock()
	if prev != nil {
		prev()
	}

	go func() {
		err := mgr.Run(ctx)

		c.mu.Lock()
		if c.retryManager == mgr {
			c.retryManager = nil
			c.retryCancel = nil
		}
		c.mu.Unlock()

		switch {
		case err == nil:
			if c.logger != nil {
				c.logger.Info("reconnected", "server", c.serverAddr)
			}
		case ctx.Err() != nil:
			// Cancelled by Disconnect or a newer loop.
		case errors.Is(err, connection.ErrReconnectExhausted):
			if c.logger != nil {
				c.logger.Warn("reconnect gave up", "error", err)
			}
			c.publish(events.Event{Type: events.TypeDisconnected, Err: err})
		}
	}()
}

// pingLoop keeps the connection alive against the server's ping
// timeout. A failed ping means the session is already dead; closing
// the transport hands cleanup to the read loop.
func (c *Client) pingLoop(stop <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			_, err := c.request(ctx, func(id uint32) wire.Message {
				return &wire.Ping{Base: wire.Base{ID: id}}
			}, wire.KindOk)
			cancel()

			if err == nil {
				continue
			}
			if errors.Is(err, ErrNotConnected) {
				return
			}
			if c.logger != nil {
				c.logger.Warn("ping failed", "error", err)
			}
			c.traceError(log.LayerSession, err, "keepalive ping")
			_ = c.connector.Close(context.Background())
			return
		}
	}
}

// sweepLoop periodically fails requests that outlived the advisory
// timeout without their caller noticing.
func (c *Client) sweepLoop(stop <-chan struct{}) {
	interval := c.config.RequestTimeout
	if interval <= 0 {
		interval = interaction.DefaultTimeout
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if n := c.correlator.SweepExpired(); n > 0 && c.logger != nil {
				c.logger.Debug("swept expired requests", "count", n)
			}
		}
	}
}
