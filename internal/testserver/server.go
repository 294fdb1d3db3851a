// Package testserver provides a scripted in-process Buttplug server
// for exercising client sessions without a network.
package testserver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Siege-Wizard/buttplug-go/pkg/transport"
	"github.com/Siege-Wizard/buttplug-go/pkg/version"
	"github.com/Siege-Wizard/buttplug-go/pkg/wire"
)

// Handler produces the replies to one received message. Returning no
// messages means no reply. Replies carry whatever identifier the
// handler stamps on them.
type Handler func(msg wire.Message) []wire.Message

// Server scripts the server side of Buttplug sessions. Every session
// runs over an in-memory pipe; the Connector from Connector() hands a
// fresh session to the client under test on each Open.
type Server struct {
	mu sync.Mutex

	// ServerName is announced in the handshake.
	ServerName string

	// Version is the newest schema version the server speaks. The
	// session runs at the client's version when it is lower.
	Version version.Spec

	// MaxPingTime is announced in ServerInfo, in milliseconds. Zero
	// disables the ping requirement.
	MaxPingTime uint32

	// Devices is the set answered to RequestDeviceList.
	Devices []wire.Device

	// SensorData is the reading answered to SensorReadCmd.
	SensorData []int32

	handlers map[wire.Kind]Handler
	received []wire.Message
	sessions int
	current  *transport.Pipe
}

// NewServer creates a server with one-size-fits-most defaults.
func NewServer() *Server {
	return &Server{
		ServerName: "Test Server",
		Version:    version.Latest,
		SensorData: []int32{0},
		handlers:   make(map[wire.Kind]Handler),
	}
}

// Handle overrides the scripted reply for one message kind.
func (s *Server) Handle(kind wire.Kind, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[kind] = h
}

// Received returns every message received so far, across sessions, in
// arrival order.
func (s *Server) Received() []wire.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]wire.Message, len(s.received))
	copy(out, s.received)
	return out
}

// CountKind returns how many messages of the given kind arrived.
func (s *Server) CountKind(kind wire.Kind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.received {
		if m.Kind() == kind {
			n++
		}
	}
	return n
}

// WaitFor blocks until at least n messages of the given kind arrived
// or the timeout elapses. It reports whether the count was reached.
func (s *Server) WaitFor(kind wire.Kind, n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if s.CountKind(kind) >= n {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// Sessions returns how many sessions were opened against the server.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions
}

// Push sends a message on the current session with whatever identifier
// it carries. Pushes use identifier 0.
func (s *Server) Push(msg wire.Message) error {
	s.mu.Lock()
	p := s.current
	spec := s.Version
	s.mu.Unlock()

	if p == nil {
		return fmt.Errorf("no active session")
	}
	return sendOn(p, msg, spec)
}

// Drop closes the current session from the server side, which the
// client observes as unexpected connection loss.
func (s *Server) Drop() {
	s.mu.Lock()
	p := s.current
	s.current = nil
	s.mu.Unlock()

	if p != nil {
		_ = p.Close(context.Background())
	}
}

// Close tears the server down. Equivalent to Drop; reads better in a
// deferred cleanup.
func (s *Server) Close() {
	s.Drop()
}

// Connector returns a transport connector that opens sessions against
// this server.
func (s *Server) Connector() *Connector {
	return &Connector{srv: s}
}

// attach starts serving one session on the given pipe end.
func (s *Server) attach(p *transport.Pipe) {
	s.mu.Lock()
	s.sessions++
	s.current = p
	s.mu.Unlock()

	go s.serve(p)
}

// serve handles one session until its pipe closes. The coding version
// starts at the server's own and drops to the negotiated one after the
// handshake.
func (s *Server) serve(p *transport.Pipe) {
	s.mu.Lock()
	spec := s.Version
	s.mu.Unlock()

	for data := range p.Inbound() {
		msgs, err := wire.Decode(data, spec)
		if err != nil {
			// Real servers answer unparseable input with a pushed Error.
			_ = sendOn(p, &wire.Error{ErrorCode: wire.ErrorCodeMessage, ErrorMessage: err.Error()}, spec)
			continue
		}
		for _, m := range msgs {
			replies, negotiated := s.handle(m, spec)
			spec = negotiated
			for _, r := range replies {
				_ = sendOn(p, r, spec)
			}
		}
	}
}

// handle records the message and produces the scripted replies. The
// returned version reflects handshake negotiation.
func (s *Server) handle(m wire.Message, spec version.Spec) ([]wire.Message, version.Spec) {
	s.mu.Lock()
	s.received = append(s.received, m)
	custom := s.handlers[m.Kind()]
	name := s.ServerName
	maxPing := s.MaxPingTime
	devices := s.Devices
	sensorData := s.SensorData
	own := s.Version
	s.mu.Unlock()

	if custom != nil {
		if rsi, ok := m.(*wire.RequestServerInfo); ok && rsi.MessageVersion < spec {
			spec = rsi.MessageVersion
		}
		return custom(m), spec
	}

	id := m.MessageID()
	switch msg := m.(type) {
	case *wire.RequestServerInfo:
		negotiated := own
		if msg.MessageVersion < negotiated {
			negotiated = msg.MessageVersion
		}
		si := &wire.ServerInfo{
			Base:           wire.Base{ID: id},
			ServerName:     name,
			MessageVersion: negotiated,
			MaxPingTime:    maxPing,
		}
		if !negotiated.Supports(version.V3) {
			si.MajorVersion, si.MinorVersion, si.BuildVersion = 1, 0, 0
		}
		return []wire.Message{si}, negotiated

	case *wire.RequestDeviceList:
		return []wire.Message{&wire.DeviceList{Base: wire.Base{ID: id}, Devices: devices}}, spec

	case *wire.SensorReadCmd:
		return []wire.Message{&wire.SensorReading{
			Base:        wire.Base{ID: id},
			DeviceIndex: msg.DeviceIndex,
			SensorIndex: msg.SensorIndex,
			SensorType:  msg.SensorType,
			Data:        sensorData,
		}}, spec

	case *wire.Ping, *wire.StartScanning, *wire.StopScanning, *wire.StopDeviceCmd,
		*wire.StopAllDevices, *wire.VibrateCmd, *wire.ScalarCmd, *wire.RotateCmd,
		*wire.LinearCmd, *wire.SensorSubscribeCmd, *wire.SensorUnsubscribeCmd,
		*wire.RequestLog:
		return []wire.Message{&wire.Ok{Base: wire.Base{ID: id}}}, spec

	default:
		return []wire.Message{&wire.Error{
			Base:         wire.Base{ID: id},
			ErrorCode:    wire.ErrorCodeMessage,
			ErrorMessage: fmt.Sprintf("unhandled message %s", m.Kind()),
		}}, spec
	}
}

func sendOn(p *transport.Pipe, msg wire.Message, spec version.Spec) error {
	data, err := wire.Encode(msg, spec)
	if err != nil {
		return err
	}
	return p.Send(context.Background(), data)
}

// Connector yields a fresh in-memory session to the same server on
// every Open, which is what a reconnecting client needs.
type Connector struct {
	mu       sync.Mutex
	srv      *Server
	pipe     *transport.Pipe
	failures int
	opens    int
}

var _ transport.Connector = (*Connector)(nil)

// FailNext makes the next n Open calls fail without reaching the
// server.
func (c *Connector) FailNext(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = n
}

// Opens returns how many times Open was called, including failed ones.
func (c *Connector) Opens() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opens
}

// Open creates a fresh pipe pair and hands the far end to the server.
func (c *Connector) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.opens++
	if c.failures > 0 {
		c.failures--
		return fmt.Errorf("%w: scripted open failure", transport.ErrConnectionFailed)
	}

	local, remote := transport.NewPipe()
	if err := local.Open(ctx); err != nil {
		return err
	}
	if err := remote.Open(ctx); err != nil {
		return err
	}
	c.pipe = local
	c.srv.attach(remote)
	return nil
}

// Send transmits one frame on the current session.
func (c *Connector) Send(ctx context.Context, data []byte) error {
	c.mu.Lock()
	p := c.pipe
	c.mu.Unlock()

	if p == nil {
		return fmt.Errorf("%w: not open", transport.ErrSendFailed)
	}
	return p.Send(ctx, data)
}

// Inbound returns the current session's inbound channel.
func (c *Connector) Inbound() <-chan []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pipe == nil {
		return nil
	}
	return c.pipe.Inbound()
}

// Close closes the current session.
func (c *Connector) Close(ctx context.Context) error {
	c.mu.Lock()
	p := c.pipe
	c.pipe = nil
	c.mu.Unlock()

	if p == nil {
		return nil
	}
	return p.Close(ctx)
}
