// Package activation handles the startup handshake with the init system.
//
// The daemon never binds its command socket itself: a supervising systemd
// instance pre-binds the unix datagram socket and hands the descriptor
// over at startup. The daemon asserts that exactly one descriptor of the
// expected kind was passed and signals readiness once its collaborators
// are set up.
package activation

import (
	"errors"
	"fmt"
	"net"

	sdactivation "github.com/coreos/go-systemd/v22/activation"
	sddaemon "github.com/coreos/go-systemd/v22/daemon"
	sdutil "github.com/coreos/go-systemd/v22/util"

	"github.com/wlbreaktime/breaktime-go/pkg/transport"
)

// Activation errors.
var (
	// ErrNotActivated - no descriptors were passed; the daemon was started
	// outside its socket unit.
	ErrNotActivated = errors.New("not socket-activated: no descriptors passed")

	// ErrTooManyDescriptors - the socket unit passed more than one
	// descriptor, which means it is misconfigured.
	ErrTooManyDescriptors = errors.New("more than one descriptor passed: socket unit misconfigured")

	// ErrNotifyFailed - the readiness notification was not delivered,
	// usually because the service unit is not Type=notify.
	ErrNotifyFailed = errors.New("readiness notification not sent: service unit is not Type=notify")
)

// Booted reports whether the system was booted with systemd. The daemon
// exits early when it was not.
func Booted() bool {
	return sdutil.IsRunningSystemd()
}

// Socket receives the pre-bound command socket from the supervisor.
// Exactly one unix datagram descriptor must have been passed.
func Socket() (*transport.Socket, error) {
	files := sdactivation.Files(true)
	switch {
	case len(files) == 0:
		return nil, ErrNotActivated
	case len(files) > 1:
		return nil, fmt.Errorf("%w: got %d", ErrTooManyDescriptors, len(files))
	}

	pc, err := net.FilePacketConn(files[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", transport.ErrWrongSocketType, err)
	}
	files[0].Close()

	return transport.FromPacketConn(pc)
}

// NotifyReady signals the supervisor that initial setup is complete.
func NotifyReady() error {
	sent, err := sddaemon.SdNotify(false, sddaemon.SdNotifyReady)
	if err != nil {
		return fmt.Errorf("notify ready: %w", err)
	}
	if !sent {
		return ErrNotifyFailed
	}
	return nil
}
