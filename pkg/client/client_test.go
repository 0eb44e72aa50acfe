package client

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wlbreaktime/breaktime-go/pkg/transport"
)

// fakeDaemon binds the daemon socket and answers scripted replies.
type fakeDaemon struct {
	sock *transport.Socket
}

func newFakeDaemon(t *testing.T, dir string) *fakeDaemon {
	t.Helper()
	sock, err := transport.Listen(transport.SocketPath(dir))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sock.CloseAndUnlink() })
	return &fakeDaemon{sock: sock}
}

func (d *fakeDaemon) recv(t *testing.T) (string, *transport.ReplyAddr) {
	t.Helper()
	data, from, err := d.sock.Receive(2 * time.Second)
	require.NoError(t, err)
	return string(data), from
}

func (d *fakeDaemon) reply(t *testing.T, to *transport.ReplyAddr, payload string) {
	t.Helper()
	require.NoError(t, d.sock.Reply(to, []byte(payload)))
}

func newClient(t *testing.T, dir string) *Client {
	t.Helper()
	c, err := New(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestBreakAndSkip(t *testing.T) {
	dir := t.TempDir()
	daemon := newFakeDaemon(t, dir)
	c := newClient(t, dir)

	require.NoError(t, c.Break())
	got, _ := daemon.recv(t)
	assert.Equal(t, "break", got)

	require.NoError(t, c.Skip())
	got, _ = daemon.recv(t)
	assert.Equal(t, "skip", got)
}

func TestSetSendsTwoDatagrams(t *testing.T) {
	dir := t.TempDir()
	daemon := newFakeDaemon(t, dir)
	c := newClient(t, dir)

	require.NoError(t, c.Set(45))

	got, _ := daemon.recv(t)
	assert.Equal(t, "set", got)
	got, _ = daemon.recv(t)
	assert.Equal(t, "45", got)
}

func TestGetReceivesReply(t *testing.T) {
	dir := t.TempDir()
	daemon := newFakeDaemon(t, dir)
	c := newClient(t, dir)

	done := make(chan struct{})
	go func() {
		defer close(done)
		got, from := daemon.recv(t)
		assert.Equal(t, "get", got)
		require.True(t, from.Bound())
		daemon.reply(t, from, "1723")
	}()

	seconds, err := c.Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(1723), seconds)
	<-done
}

func TestResetReceivesReply(t *testing.T) {
	dir := t.TempDir()
	daemon := newFakeDaemon(t, dir)
	c := newClient(t, dir)

	done := make(chan struct{})
	go func() {
		defer close(done)
		got, from := daemon.recv(t)
		assert.Equal(t, "reset", got)
		daemon.reply(t, from, "1800")
	}()

	seconds, err := c.Reset()
	require.NoError(t, err)
	assert.Equal(t, uint64(1800), seconds)
	<-done
}

func TestGetTimesOutWithoutReply(t *testing.T) {
	dir := t.TempDir()
	newFakeDaemon(t, dir)
	c := newClient(t, dir)
	c.SetReplyTimeout(100 * time.Millisecond)

	_, err := c.Get()
	assert.ErrorIs(t, err, ErrNoReply)
}

func TestDaemonNotRunning(t *testing.T) {
	dir := t.TempDir()
	c := newClient(t, dir)

	assert.ErrorIs(t, c.Break(), ErrDaemonNotRunning)
}

func TestCloseRemovesSocketFile(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir)
	require.NoError(t, err)

	path := transport.HelperSocketPath(dir)
	_, err = os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, c.Close())
	_, err = os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStaleHelperSocketIsReplaced(t *testing.T) {
	dir := t.TempDir()

	// A crashed helper leaves its socket file behind. The next
	// invocation unlinks it and binds fresh.
	first, err := New(dir)
	require.NoError(t, err)
	// Close without unlink simulates the crash.
	_ = first.sock.Close()

	second, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		name    string
		seconds uint64
		short   bool
		want    string
	}{
		{"short rounds down", 1723, true, "28m"},
		{"short under a minute", 59, true, "0m"},
		{"long form", 1723, false, "28 minutes and 43 seconds remain until the next break!"},
		{"exactly a minute", 60, false, "60 seconds remain until the next break!"},
		{"seconds only", 42, false, "42 seconds remain until the next break!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRemaining(tt.seconds, tt.short))
		})
	}
}
