// Package transport provides the unix datagram socket layer shared by the
// daemon and the helper.
//
// Both sides agree on well-known socket paths under the runtime directory
// without negotiation: the daemon receives commands on SocketName and the
// helper binds HelperSocketName as its return address. Receives block with
// an explicit per-call timeout; the error classification helpers map the
// transport errors onto the scheduler's taxonomy (timeout is expected and
// drives the expiry check, an interrupted call triggers the suspend
// heuristic, a missing daemon socket means the daemon is not running).
package transport
