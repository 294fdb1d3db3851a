package connection

import (
	"math/rand"
	"time"
)

// Default backoff parameters.
const (
	// InitialBackoff is the delay before the first reconnect attempt.
	InitialBackoff = 1 * time.Second

	// MaxBackoff caps the delay between attempts.
	MaxBackoff = 60 * time.Second

	// BackoffMultiplier is the factor by which the delay grows.
	BackoffMultiplier = 2.0

	// JitterFactor is the default maximum random extension applied to
	// each delay, as a fraction of the base value.
	JitterFactor = 0.25

	// DefaultScheduleLength is the number of entries in the default
	// schedule, enough to grow from InitialBackoff to MaxBackoff.
	DefaultScheduleLength = 7
)

// BackoffConfig customizes schedule derivation.
type BackoffConfig struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
}

// Backoff derives geometric delay schedules for reconnect policies.
type Backoff struct {
	initial    time.Duration
	max        time.Duration
	multiplier float64
}

// NewBackoff creates a schedule builder with default parameters.
func NewBackoff() *Backoff {
	return &Backoff{
		initial:    InitialBackoff,
		max:        MaxBackoff,
		multiplier: BackoffMultiplier,
	}
}

// NewBackoffWithConfig creates a schedule builder with custom
// parameters. Out-of-range values fall back to the defaults.
func NewBackoffWithConfig(cfg BackoffConfig) *Backoff {
	if cfg.Initial <= 0 {
		cfg.Initial = InitialBackoff
	}
	if cfg.Max <= 0 {
		cfg.Max = MaxBackoff
	}
	if cfg.Multiplier <= 1 {
		cfg.Multiplier = BackoffMultiplier
	}
	return &Backoff{
		initial:    cfg.Initial,
		max:        cfg.Max,
		multiplier: cfg.Multiplier,
	}
}

// Schedule returns the first n base delays, growing geometrically from
// the initial value and capped at the maximum.
func (b *Backoff) Schedule(n int) []time.Duration {
	if n <= 0 {
		return nil
	}
	sched := make([]time.Duration, n)
	current := b.initial
	for i := range sched {
		sched[i] = current
		next := time.Duration(float64(current) * b.multiplier)
		if next > b.max {
			next = b.max
		}
		current = next
	}
	return sched
}

// DefaultSchedule returns the schedule reconnection uses when the
// policy does not supply one: 1s 2s 4s 8s 16s 32s 60s.
func DefaultSchedule() []time.Duration {
	return NewBackoff().Schedule(DefaultScheduleLength)
}

// jitterDuration extends d by a random amount up to frac of its value.
func jitterDuration(rng *rand.Rand, d time.Duration, frac float64) time.Duration {
	if frac <= 0 {
		return d
	}
	return d + time.Duration(float64(d)*frac*rng.Float64())
}
