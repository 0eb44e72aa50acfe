package activation

import (
	"errors"
	"testing"
)

func TestSocketNotActivated(t *testing.T) {
	// Make sure no activation environment leaks into the test.
	t.Setenv("LISTEN_FDS", "")
	t.Setenv("LISTEN_PID", "")

	if _, err := Socket(); !errors.Is(err, ErrNotActivated) {
		t.Errorf("expected ErrNotActivated, got %v", err)
	}
}

func TestNotifyReadyWithoutSupervisor(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")

	if err := NotifyReady(); !errors.Is(err, ErrNotifyFailed) {
		t.Errorf("expected ErrNotifyFailed, got %v", err)
	}
}
