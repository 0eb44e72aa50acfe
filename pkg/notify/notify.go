// Package notify issues desktop notifications over the session bus.
package notify

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	notificationService   = "org.freedesktop.Notifications"
	notificationPath      = "/org/freedesktop/Notifications"
	notificationInterface = "org.freedesktop.Notifications.Notify"
)

// DesktopNotifier sends notifications through the freedesktop
// notification service on the user's session bus.
type DesktopNotifier struct {
	conn    *dbus.Conn
	appName string
}

// NewDesktopNotifier connects to the session bus. The returned notifier
// must be closed when the daemon shuts down.
func NewDesktopNotifier(appName string) (*DesktopNotifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	return &DesktopNotifier{conn: conn, appName: appName}, nil
}

// Notify shows a transient notification with the server's default expiry.
func (n *DesktopNotifier) Notify(summary, body string) error {
	obj := n.conn.Object(notificationService, notificationPath)
	call := obj.Call(notificationInterface, 0,
		n.appName,                 // app_name
		uint32(0),                 // replaces_id
		"",                        // app_icon
		summary,                   // summary
		body,                      // body
		[]string{},                // actions
		map[string]dbus.Variant{}, // hints
		int32(-1),                 // expire_timeout: server default
	)
	if call.Err != nil {
		return fmt.Errorf("notify: %w", call.Err)
	}
	return nil
}

// Close releases the bus connection.
func (n *DesktopNotifier) Close() error {
	return n.conn.Close()
}
