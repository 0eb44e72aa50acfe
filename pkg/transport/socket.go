package transport

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// Well-known socket file names under the runtime directory.
const (
	// SocketName is the daemon's command socket.
	SocketName = "breaktimed.socket"

	// HelperSocketName is the helper's transient reply socket.
	HelperSocketName = "breaktimed-helper.socket"
)

// MaxDatagramSize bounds a single command or reply datagram. The wire
// vocabulary is a few bytes; this leaves generous headroom.
const MaxDatagramSize = 300

// Transport errors.
var (
	ErrSocketClosed   = errors.New("socket closed")
	ErrNoReplyAddress = errors.New("no reply address: sender socket is unbound")
	ErrWrongSocketType = errors.New("socket is not a unix datagram socket")
)

// SocketPath returns the daemon's command socket path.
func SocketPath(runtimeDir string) string {
	return filepath.Join(runtimeDir, SocketName)
}

// HelperSocketPath returns the helper's reply socket path.
func HelperSocketPath(runtimeDir string) string {
	return filepath.Join(runtimeDir, HelperSocketName)
}

// ReplyAddr is the return address recovered from an inbound datagram. It
// is valid for exactly one reply and never retained across datagrams.
type ReplyAddr struct {
	addr *net.UnixAddr
}

// Bound reports whether the sender had a filesystem address a reply can be
// sent to. Datagrams from unbound sockets carry no usable return address.
func (r *ReplyAddr) Bound() bool {
	return r != nil && r.addr != nil && r.addr.Name != "" && !strings.HasPrefix(r.addr.Name, "@")
}

// String returns the sender path, or "<unbound>".
func (r *ReplyAddr) String() string {
	if !r.Bound() {
		return "<unbound>"
	}
	return r.addr.Name
}

// Socket is a unix datagram socket. It is not safe for concurrent use;
// the daemon owns one socket from a single goroutine and the helper is a
// one-shot process.
type Socket struct {
	conn *net.UnixConn

	// path is the bound filesystem path, empty for sockets handed over by
	// socket activation (the supervisor owns that path).
	path string
}

// Listen binds a datagram socket at the given filesystem path.
func Listen(path string) (*Socket, error) {
	conn, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: path, Net: "unixgram"})
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", path, err)
	}
	return &Socket{conn: conn, path: path}, nil
}

// FromPacketConn wraps a pre-bound datagram socket, typically one handed
// over by socket activation. Returns ErrWrongSocketType if the descriptor
// is not a unix datagram socket.
func FromPacketConn(pc net.PacketConn) (*Socket, error) {
	conn, ok := pc.(*net.UnixConn)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrWrongSocketType, pc)
	}
	if la, ok := conn.LocalAddr().(*net.UnixAddr); !ok || la.Net != "unixgram" {
		return nil, fmt.Errorf("%w: %s", ErrWrongSocketType, conn.LocalAddr().Network())
	}
	return &Socket{conn: conn}, nil
}

// LocalPath returns the bound filesystem path, if any.
func (s *Socket) LocalPath() string {
	if s.path != "" {
		return s.path
	}
	if la, ok := s.conn.LocalAddr().(*net.UnixAddr); ok {
		return la.Name
	}
	return ""
}

// Receive blocks for up to timeout and returns one datagram together with
// its reply address. Timeout expiry is reported through an error matched
// by IsTimeout; it is expected, not exceptional.
func (s *Socket) Receive(timeout time.Duration) ([]byte, *ReplyAddr, error) {
	if s.conn == nil {
		return nil, nil, ErrSocketClosed
	}
	if err := s.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, nil, fmt.Errorf("arm receive timeout: %w", err)
	}

	buf := make([]byte, MaxDatagramSize)
	n, from, err := s.conn.ReadFromUnix(buf)
	if err != nil {
		return nil, nil, err
	}
	return buf[:n], &ReplyAddr{addr: from}, nil
}

// SendTo sends one datagram to the socket bound at path.
func (s *Socket) SendTo(data []byte, path string) error {
	if s.conn == nil {
		return ErrSocketClosed
	}
	_, err := s.conn.WriteToUnix(data, &net.UnixAddr{Name: path, Net: "unixgram"})
	return err
}

// Reply sends one datagram back to the sender of a received datagram.
// Returns ErrNoReplyAddress when the sender was unbound.
func (s *Socket) Reply(to *ReplyAddr, data []byte) error {
	if !to.Bound() {
		return ErrNoReplyAddress
	}
	if s.conn == nil {
		return ErrSocketClosed
	}
	_, err := s.conn.WriteToUnix(data, to.addr)
	return err
}

// Interrupt wakes a Receive blocked on this socket by expiring its read
// deadline. The woken Receive reports a timeout. This is the only method
// safe to call from another goroutine.
func (s *Socket) Interrupt() error {
	if s.conn == nil {
		return ErrSocketClosed
	}
	return s.conn.SetReadDeadline(time.Now())
}

// Close closes the socket without touching the socket file.
func (s *Socket) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// CloseAndUnlink closes the socket and removes its socket file. Used by
// the helper, which must clean up its reply socket on every exit path.
func (s *Socket) CloseAndUnlink() error {
	err := s.Close()
	if s.path != "" {
		if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}
	return err
}

// BindHelper binds the helper's reply socket. A stale socket file left by
// a crashed prior invocation is unlinked once and the bind retried; a
// second failure is returned to the caller, which cannot proceed without
// its reply channel.
func BindHelper(runtimeDir string) (*Socket, error) {
	path := HelperSocketPath(runtimeDir)

	sock, err := Listen(path)
	if err == nil {
		return sock, nil
	}
	if !IsAddrInUse(err) {
		return nil, err
	}

	if rmErr := os.Remove(path); rmErr != nil {
		return nil, fmt.Errorf("unlink stale helper socket: %w", rmErr)
	}
	sock, err = Listen(path)
	if err != nil {
		return nil, fmt.Errorf("bind helper socket after unlinking stale file: %w", err)
	}
	return sock, nil
}

// IsTimeout reports whether err is a receive-timeout ("would block"). This
// drives the natural-expiry check and is not an error condition.
func IsTimeout(err error) bool {
	return errors.Is(err, os.ErrDeadlineExceeded)
}

// IsInterrupted reports whether a blocking call was interrupted. The
// scheduler treats this as the system waking from suspension.
func IsInterrupted(err error) bool {
	return errors.Is(err, unix.EINTR)
}

// IsNotRunning reports whether a send failed because nothing is bound at
// the daemon's socket path: either the path does not exist or the socket
// file is orphaned.
func IsNotRunning(err error) bool {
	return errors.Is(err, os.ErrNotExist) || errors.Is(err, unix.ECONNREFUSED)
}

// IsAddrInUse reports whether a bind failed because the path is taken.
func IsAddrInUse(err error) bool {
	return errors.Is(err, unix.EADDRINUSE)
}
