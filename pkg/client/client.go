// Package client implements the helper side of the daemon protocol: bind
// a reply socket, send a command datagram, optionally wait for the reply.
// A Client is a one-shot object for a single command exchange.
package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/wlbreaktime/breaktime-go/pkg/transport"
	"github.com/wlbreaktime/breaktime-go/pkg/wire"
)

// DefaultReplyTimeout bounds the wait for a daemon reply.
const DefaultReplyTimeout = 3 * time.Second

var (
	// ErrDaemonNotRunning indicates the daemon socket does not exist or
	// nothing listens on it.
	ErrDaemonNotRunning = errors.New("daemon does not seem to be running")

	// ErrNoReply indicates the daemon did not answer in time.
	ErrNoReply = errors.New("no reply from the daemon")
)

// Client is a bound helper socket talking to one daemon socket.
type Client struct {
	sock         *transport.Socket
	daemonPath   string
	replyTimeout time.Duration
}

// New binds the helper reply socket in runtimeDir. Close must be called
// on every exit path, otherwise the socket file lingers and the next
// invocation has to unlink it.
func New(runtimeDir string) (*Client, error) {
	sock, err := transport.BindHelper(runtimeDir)
	if err != nil {
		return nil, err
	}
	return &Client{
		sock:         sock,
		daemonPath:   transport.SocketPath(runtimeDir),
		replyTimeout: DefaultReplyTimeout,
	}, nil
}

// Close unbinds the helper socket and removes its socket file.
func (c *Client) Close() error {
	return c.sock.CloseAndUnlink()
}

// SetReplyTimeout overrides the reply wait.
func (c *Client) SetReplyTimeout(d time.Duration) {
	c.replyTimeout = d
}

// send delivers one datagram to the daemon, classifying a missing or
// dead socket as ErrDaemonNotRunning.
func (c *Client) send(payload []byte) error {
	err := c.sock.SendTo(payload, c.daemonPath)
	if err == nil {
		return nil
	}
	if transport.IsNotRunning(err) {
		return ErrDaemonNotRunning
	}
	return fmt.Errorf("send to %s: %w", c.daemonPath, err)
}

// receiveSeconds waits for the daemon's decimal-seconds reply.
func (c *Client) receiveSeconds() (uint64, error) {
	data, _, err := c.sock.Receive(c.replyTimeout)
	if err != nil {
		if transport.IsTimeout(err) {
			return 0, ErrNoReply
		}
		return 0, fmt.Errorf("receive reply: %w", err)
	}
	seconds, err := wire.ParseSeconds(data)
	if err != nil {
		return 0, fmt.Errorf("bad reply: %w", err)
	}
	return seconds, nil
}

// Break asks the daemon to start a break now.
func (c *Client) Break() error {
	return c.send([]byte(wire.TokenBreak))
}

// Skip asks the daemon to end the current break.
func (c *Client) Skip() error {
	return c.send([]byte(wire.TokenSkip))
}

// Set changes the work interval to the given minutes. The exchange is
// two datagrams: the token, then the decimal value.
func (c *Client) Set(minutes uint16) error {
	if err := c.send([]byte(wire.TokenSet)); err != nil {
		return err
	}
	return c.send(wire.EncodeMinutes(minutes))
}

// Get returns the seconds remaining until the next break.
func (c *Client) Get() (uint64, error) {
	if err := c.send([]byte(wire.TokenGet)); err != nil {
		return 0, err
	}
	return c.receiveSeconds()
}

// Reset restores the default work interval and returns it in seconds.
func (c *Client) Reset() (uint64, error) {
	if err := c.send([]byte(wire.TokenReset)); err != nil {
		return 0, err
	}
	return c.receiveSeconds()
}

// FormatRemaining renders a remaining-time reply for display. Short mode
// prints whole minutes only, as status bars expect.
func FormatRemaining(seconds uint64, short bool) string {
	if short {
		return fmt.Sprintf("%dm", seconds/60)
	}
	if seconds > 60 {
		return fmt.Sprintf("%d minutes and %d seconds remain until the next break!",
			seconds/60, seconds%60)
	}
	return fmt.Sprintf("%d seconds remain until the next break!", seconds)
}
