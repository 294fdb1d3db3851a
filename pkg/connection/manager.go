package connection

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// ErrReconnectExhausted reports that every allowed reconnect attempt
// failed and the session stays disconnected.
var ErrReconnectExhausted = errors.New("reconnect attempts exhausted")

// Policy configures automatic reconnection after unexpected loss.
type Policy struct {
	// AutoReconnect enables reconnection attempts when the transport
	// drops without a local disconnect request.
	AutoReconnect bool

	// MaxAttempts caps consecutive failed attempts before giving up.
	// Zero means unbounded.
	MaxAttempts int

	// Backoff is the delay schedule between attempts. Attempts beyond
	// the schedule reuse its last entry. Empty selects
	// DefaultSchedule.
	Backoff []time.Duration

	// Jitter is the maximum random extension applied to each delay,
	// as a fraction of the base value. Zero applies none, which keeps
	// tests deterministic.
	Jitter float64
}

// DefaultPolicy returns the policy used when the caller supplies none:
// reconnect forever on the default schedule with jitter.
func DefaultPolicy() Policy {
	return Policy{
		AutoReconnect: true,
		MaxAttempts:   0,
		Backoff:       DefaultSchedule(),
		Jitter:        JitterFactor,
	}
}

// ConnectFunc re-establishes a session. Implementations run the full
// handshake and device-list resynchronization; the registry from
// before the drop is never merged.
type ConnectFunc func(ctx context.Context) error

// Manager executes a reconnection policy through an injected connect
// function.
type Manager struct {
	mu sync.Mutex

	policy  Policy
	connect ConnectFunc
	rng     *rand.Rand

	onAttempt func(attempt int, delay time.Duration)
}

// NewManager creates a manager for the given policy. An empty backoff
// schedule is replaced with DefaultSchedule.
func NewManager(policy Policy, connect ConnectFunc) *Manager {
	if len(policy.Backoff) == 0 {
		policy.Backoff = DefaultSchedule()
	}
	return &Manager{
		policy:  policy,
		connect: connect,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Policy returns the normalized policy the manager runs.
func (m *Manager) Policy() Policy {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.policy
}

// OnAttempt sets a callback invoked before each attempt with the
// 1-based attempt number and the delay about to be waited.
func (m *Manager) OnAttempt(fn func(attempt int, delay time.Duration)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onAttempt = fn
}

// Run waits out the schedule and retries the connect function until an
// attempt succeeds, the context is cancelled, or MaxAttempts
// consecutive failures occur. It does not consult AutoReconnect; the
// caller decides whether to start it.
func (m *Manager) Run(ctx context.Context) error {
	m.mu.Lock()
	policy := m.policy
	onAttempt := m.onAttempt
	m.mu.Unlock()

	for attempt := 1; ; attempt++ {
		if policy.MaxAttempts > 0 && attempt > policy.MaxAttempts {
			return fmt.Errorf("%w after %d attempts", ErrReconnectExhausted, policy.MaxAttempts)
		}

		delay := m.delayFor(policy, attempt)
		if onAttempt != nil {
			onAttempt(attempt, delay)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		if err := m.connect(ctx); err == nil {
			return nil
		}
	}
}

// delayFor returns the jittered delay preceding the given attempt.
func (m *Manager) delayFor(policy Policy, attempt int) time.Duration {
	idx := attempt - 1
	if idx >= len(policy.Backoff) {
		idx = len(policy.Backoff) - 1
	}
	base := policy.Backoff[idx]

	m.mu.Lock()
	defer m.mu.Unlock()
	return jitterDuration(m.rng, base, policy.Jitter)
}
