// Package service runs the break scheduler: a single-threaded loop that
// alternates working and break phases, blocking on the daemon's datagram
// socket with a timeout recomputed from the phase clock on every pass.
// Commands arriving on the socket are dispatched against the schedule
// state; when a phase ends, the configured desktop collaborators
// (notification, sound, monitor power, popup) are driven in sequence.
//
// The loop owns the socket and the schedule state exclusively. No other
// goroutine touches either, so the package needs no locking.
package service
