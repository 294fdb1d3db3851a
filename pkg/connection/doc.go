// Package connection implements the reconnection policy.
//
// A session that loses its transport unexpectedly may try to win it
// back. The policy object says whether to try at all, how many
// consecutive failures to tolerate, and how long to wait between
// attempts. Keeping the policy explicit, a value with a literal delay
// schedule, lets tests drive reconnection deterministically instead of
// racing ambient retry logic.
//
// # Backoff Schedules
//
// Schedules are plain []time.Duration. The Backoff builder derives
// geometric ones:
//
//	sched := connection.NewBackoff().Schedule(7)
//	// 1s 2s 4s 8s 16s 32s 60s
//
// Attempts past the end of the schedule reuse the last entry. An
// optional jitter fraction stretches each delay randomly so a fleet of
// clients does not hammer a recovering server in lockstep.
//
// # Running the Policy
//
// The Manager executes attempts through an injected connect function,
// which is expected to re-run the full handshake and device-list
// resynchronization:
//
//	mgr := connection.NewManager(policy, sessionConnect)
//	err := mgr.Run(ctx)
//
// Run returns nil once an attempt succeeds, the context error on
// cancellation, or ErrReconnectExhausted after MaxAttempts consecutive
// failures.
package connection
