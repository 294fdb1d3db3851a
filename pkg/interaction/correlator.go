package interaction

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Siege-Wizard/buttplug-go/pkg/wire"
)

// Correlator errors.
var (
	ErrRequestTimedOut = errors.New("request timed out")
	ErrUnexpectedReply = errors.New("unexpected reply")
)

// DefaultTimeout is the advisory request timeout used when none is
// configured. It is housekeeping against abandoned entries, not a
// protocol deadline.
const DefaultTimeout = 30 * time.Second

// ServerError represents an Error message received in reply to a request.
type ServerError struct {
	Code    wire.ErrorCode
	Message string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code.String()
}

// serverError creates an error from an Error reply.
func serverError(msg *wire.Error) error {
	return &ServerError{Code: msg.ErrorCode, Message: msg.ErrorMessage}
}

// result carries the outcome of a pending request.
type result struct {
	msg wire.Message
	err error
}

// Pending tracks a single in-flight request until its reply arrives.
type Pending struct {
	id   uint32
	req  wire.Message
	want []wire.Kind
	sent time.Time

	c    *Correlator
	done chan result
}

// ID returns the message identifier reserved for the request.
func (p *Pending) ID() uint32 { return p.id }

// Request returns the message built at submission, ready to send.
func (p *Pending) Request() wire.Message { return p.req }

// Await suspends until the reply arrives, the context is cancelled, or
// the correlator timeout elapses. A reply whose kind is not among the
// awaited ones yields ErrUnexpectedReply.
func (p *Pending) Await(ctx context.Context) (wire.Message, error) {
	select {
	case <-ctx.Done():
		p.c.forget(p.id)
		return nil, ctx.Err()
	case <-time.After(p.c.timeout):
		p.c.forget(p.id)
		return nil, fmt.Errorf("%w: no reply to %s (id %d)", ErrRequestTimedOut, p.req.Kind(), p.id)
	case res := <-p.done:
		if res.err != nil {
			return nil, res.err
		}
		if !p.expects(res.msg.Kind()) {
			return nil, fmt.Errorf("%w: %s to %s (id %d)", ErrUnexpectedReply, res.msg.Kind(), p.req.Kind(), p.id)
		}
		return res.msg, nil
	}
}

func (p *Pending) expects(k wire.Kind) bool {
	if len(p.want) == 0 {
		return true
	}
	for _, w := range p.want {
		if w == k {
			return true
		}
	}
	return false
}

// complete hands the outcome to the awaiting caller. The channel is
// buffered so the first outcome sticks and later ones are dropped.
func (p *Pending) complete(res result) {
	select {
	case p.done <- res:
	default:
	}
}

// Correlator matches replies to their originating requests by message
// identifier. Identifiers start at 1 and increase monotonically; 0 is
// reserved for server-pushed events and never allocated.
type Correlator struct {
	mu      sync.Mutex
	pending map[uint32]*Pending
	nextID  uint32

	timeout time.Duration
}

// NewCorrelator creates a correlator with the given advisory timeout.
// A non-positive timeout selects DefaultTimeout.
func NewCorrelator(timeout time.Duration) *Correlator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Correlator{
		pending: make(map[uint32]*Pending),
		timeout: timeout,
	}
}

// Submit reserves a fresh identifier, builds the request with it, and
// registers the in-flight entry. want lists the reply kinds the caller
// considers valid; empty means any. Sending the built message is the
// caller's job.
func (c *Correlator) Submit(build func(id uint32) wire.Message, want ...wire.Kind) *Pending {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.reserveID()
	p := &Pending{
		id:   id,
		req:  build(id),
		want: want,
		sent: time.Now(),
		c:    c,
		done: make(chan result, 1),
	}
	c.pending[id] = p
	return p
}

// reserveID returns the next free identifier. Wraps past MaxUint32,
// skipping 0 and identifiers still in flight. Callers hold c.mu.
func (c *Correlator) reserveID() uint32 {
	for {
		c.nextID++
		if c.nextID == wire.PushID {
			c.nextID = 1
		}
		if _, busy := c.pending[c.nextID]; !busy {
			return c.nextID
		}
	}
}

// Resolve completes the pending request matching id with the reply. An
// Error reply fails the request with a *ServerError instead. The return
// value reports whether anything was waiting on the identifier; replies
// to unknown identifiers are stale and safe to drop.
func (c *Correlator) Resolve(id uint32, msg wire.Message) bool {
	c.mu.Lock()
	p, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.mu.Unlock()

	if !ok {
		return false
	}
	if e, isErr := msg.(*wire.Error); isErr {
		p.complete(result{err: serverError(e)})
	} else {
		p.complete(result{msg: msg})
	}
	return true
}

// Fail completes the pending request matching id with err. Used when a
// request could not be sent after its identifier was reserved.
func (c *Correlator) Fail(id uint32, err error) bool {
	c.mu.Lock()
	p, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.mu.Unlock()

	if !ok {
		return false
	}
	p.complete(result{err: err})
	return true
}

// FailAll completes every outstanding request with err and returns how
// many were failed. Called once per disconnect so no caller is left
// suspended on a dead connection.
func (c *Correlator) FailAll(err error) int {
	c.mu.Lock()
	orphans := make([]*Pending, 0, len(c.pending))
	for _, p := range c.pending {
		orphans = append(orphans, p)
	}
	c.pending = make(map[uint32]*Pending)
	c.mu.Unlock()

	for _, p := range orphans {
		p.complete(result{err: err})
	}
	return len(orphans)
}

// SweepExpired fails entries older than the correlator timeout with
// ErrRequestTimedOut and returns how many were swept. Awaiting callers
// normally hit their own timeout first; the sweep catches entries whose
// caller never awaited.
func (c *Correlator) SweepExpired() int {
	cutoff := time.Now().Add(-c.timeout)

	c.mu.Lock()
	var expired []*Pending
	for id, p := range c.pending {
		if p.sent.Before(cutoff) {
			delete(c.pending, id)
			expired = append(expired, p)
		}
	}
	c.mu.Unlock()

	for _, p := range expired {
		p.complete(result{err: fmt.Errorf("%w: no reply to %s (id %d)", ErrRequestTimedOut, p.req.Kind(), p.id)})
	}
	return len(expired)
}

// PendingCount returns the number of requests currently in flight.
func (c *Correlator) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Age reports how long the request with the given identifier has been
// in flight. The second return is false when nothing is pending under
// the identifier.
func (c *Correlator) Age(id uint32) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[id]
	if !ok {
		return 0, false
	}
	return time.Since(p.sent), true
}

// forget drops a pending entry without completing it. Used when the
// awaiting caller gives up; a late reply then resolves to nothing.
func (c *Correlator) forget(id uint32) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}
