// Package schedule holds the work/break timer state and the pure command
// dispatch that mutates it.
//
// State is owned exclusively by the scheduler loop; there is no internal
// locking because the daemon is single-threaded by design. Dispatch is a
// plain (State, Command) -> (Disposition, reply) transformation so that the
// state machine can be exercised without any transport.
package schedule
