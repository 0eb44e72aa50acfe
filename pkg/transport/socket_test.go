package transport

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func listenAt(t *testing.T, path string) *Socket {
	t.Helper()
	sock, err := Listen(path)
	if err != nil {
		t.Fatalf("Listen(%s) failed: %v", path, err)
	}
	t.Cleanup(func() { sock.CloseAndUnlink() })
	return sock
}

func TestSendReceive(t *testing.T) {
	dir := t.TempDir()
	daemon := listenAt(t, SocketPath(dir))
	helper := listenAt(t, HelperSocketPath(dir))

	if err := helper.SendTo([]byte("get"), daemon.LocalPath()); err != nil {
		t.Fatalf("SendTo failed: %v", err)
	}

	data, from, err := daemon.Receive(time.Second)
	if err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if string(data) != "get" {
		t.Errorf("payload = %q, want %q", data, "get")
	}
	if !from.Bound() {
		t.Fatalf("sender reported unbound, addr = %s", from)
	}

	if err := daemon.Reply(from, []byte("1800")); err != nil {
		t.Fatalf("Reply failed: %v", err)
	}
	reply, _, err := helper.Receive(time.Second)
	if err != nil {
		t.Fatalf("helper Receive failed: %v", err)
	}
	if string(reply) != "1800" {
		t.Errorf("reply = %q, want %q", reply, "1800")
	}
}

func TestReceiveTimeout(t *testing.T) {
	dir := t.TempDir()
	daemon := listenAt(t, SocketPath(dir))

	start := time.Now()
	_, _, err := daemon.Receive(100 * time.Millisecond)
	if !IsTimeout(err) {
		t.Fatalf("expected timeout classification, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("receive returned after %v, before the timeout", elapsed)
	}
}

func TestUnboundSenderHasNoReplyAddress(t *testing.T) {
	dir := t.TempDir()
	daemon := listenAt(t, SocketPath(dir))

	conn, err := net.DialUnix("unixgram", nil, &net.UnixAddr{Name: daemon.LocalPath(), Net: "unixgram"})
	if err != nil {
		t.Fatalf("DialUnix failed: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("get")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	_, from, err := daemon.Receive(time.Second)
	if err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if from.Bound() {
		t.Errorf("unbound sender reported bound address %s", from)
	}
	if err := daemon.Reply(from, []byte("0")); !errors.Is(err, ErrNoReplyAddress) {
		t.Errorf("Reply to unbound sender: expected ErrNoReplyAddress, got %v", err)
	}
}

func TestSendToMissingDaemon(t *testing.T) {
	dir := t.TempDir()
	helper := listenAt(t, HelperSocketPath(dir))

	err := helper.SendTo([]byte("get"), SocketPath(dir))
	if !IsNotRunning(err) {
		t.Errorf("expected not-running classification, got %v", err)
	}
}

func TestSendToOrphanedSocketFile(t *testing.T) {
	dir := t.TempDir()
	path := SocketPath(dir)

	// Bind and close, leaving the socket file with no listener behind it.
	dead, err := Listen(path)
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	dead.Close()

	helper := listenAt(t, HelperSocketPath(dir))
	err = helper.SendTo([]byte("get"), path)
	if !IsNotRunning(err) {
		t.Errorf("expected not-running classification, got %v", err)
	}
}

func TestBindHelperStaleSocketRetry(t *testing.T) {
	dir := t.TempDir()
	path := HelperSocketPath(dir)

	// Simulate a crashed helper: the socket file exists but nothing is
	// bound behind it after the process died.
	stale, err := Listen(path)
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	stale.Close() // closes the descriptor, leaves the file

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stale socket file missing: %v", err)
	}

	sock, err := BindHelper(dir)
	if err != nil {
		t.Fatalf("BindHelper failed on the stale-socket path: %v", err)
	}
	if err := sock.CloseAndUnlink(); err != nil {
		t.Fatalf("CloseAndUnlink failed: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("helper socket file still exists after cleanup")
	}
}

func TestCloseAndUnlinkIdempotentCleanup(t *testing.T) {
	dir := t.TempDir()
	sock := listenAt(t, filepath.Join(dir, "cleanup.socket"))

	if err := sock.CloseAndUnlink(); err != nil {
		t.Fatalf("first CloseAndUnlink failed: %v", err)
	}
	// Second call must not fail even though file and conn are gone.
	if err := sock.CloseAndUnlink(); err != nil {
		t.Errorf("second CloseAndUnlink failed: %v", err)
	}
}

func TestFromPacketConn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "activated.socket")

	conn, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: path, Net: "unixgram"})
	if err != nil {
		t.Fatalf("ListenUnixgram failed: %v", err)
	}
	defer conn.Close()

	sock, err := FromPacketConn(conn)
	if err != nil {
		t.Fatalf("FromPacketConn failed: %v", err)
	}
	if sock.LocalPath() != path {
		t.Errorf("LocalPath = %q, want %q", sock.LocalPath(), path)
	}
}

func TestFromPacketConnWrongType(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenPacket failed: %v", err)
	}
	defer pc.Close()

	if _, err := FromPacketConn(pc); !errors.Is(err, ErrWrongSocketType) {
		t.Errorf("expected ErrWrongSocketType, got %v", err)
	}
}

func TestReplyAddrString(t *testing.T) {
	var nilAddr *ReplyAddr
	if got := nilAddr.String(); got != "<unbound>" {
		t.Errorf("nil addr String = %q", got)
	}
	if nilAddr.Bound() {
		t.Error("nil addr reported bound")
	}
}
