package transport

import (
	"context"
	"fmt"
	"sync"
)

// PipeBuffer is the per-end inbound capacity of a pipe. Sends beyond a
// full buffer fail rather than block, so a stalled reader cannot wedge
// its peer.
const PipeBuffer = 64

// Pipe is an in-process Connector wired directly to a peer end. Frames
// sent on one end arrive on the other. A pipe models a single
// connection: closing either end closes both, and a closed pipe cannot
// be opened again.
type Pipe struct {
	peer *Pipe

	mu      sync.Mutex
	opened  bool
	closed  bool
	inbound chan []byte
}

// NewPipe returns two connected pipe ends.
func NewPipe() (*Pipe, *Pipe) {
	a := &Pipe{inbound: make(chan []byte, PipeBuffer)}
	b := &Pipe{inbound: make(chan []byte, PipeBuffer)}
	a.peer, b.peer = b, a
	return a, b
}

// Open marks the end ready for traffic.
func (p *Pipe) Open(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return fmt.Errorf("%w: pipe is closed", ErrConnectionFailed)
	}
	if p.opened {
		return ErrAlreadyOpen
	}
	p.opened = true
	return nil
}

// Send delivers one frame to the peer end.
func (p *Pipe) Send(ctx context.Context, data []byte) error {
	p.mu.Lock()
	opened, closed := p.opened, p.closed
	p.mu.Unlock()
	if !opened || closed {
		return fmt.Errorf("%w: pipe is not open", ErrSendFailed)
	}

	frame := make([]byte, len(data))
	copy(frame, data)

	// The peer's mutex orders this send against the channel close in
	// closeEnd, so a frame is never sent on a closed channel.
	peer := p.peer
	peer.mu.Lock()
	defer peer.mu.Unlock()
	if peer.closed {
		return fmt.Errorf("%w: peer end is closed", ErrSendFailed)
	}
	select {
	case peer.inbound <- frame:
		return nil
	default:
		return fmt.Errorf("%w: peer inbound buffer is full", ErrSendFailed)
	}
}

// Inbound returns the channel of frames sent by the peer end.
func (p *Pipe) Inbound() <-chan []byte {
	return p.inbound
}

// Close closes both ends. Each end's inbound channel closes so both
// readers observe the drop.
func (p *Pipe) Close(ctx context.Context) error {
	p.closeEnd()
	p.peer.closeEnd()
	return nil
}

func (p *Pipe) closeEnd() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	close(p.inbound)
}
