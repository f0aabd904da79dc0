// Package notify delivers export summaries to the desktop.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
)

// Notifier announces a completed export run.
type Notifier interface {
	ExportFinished(ctx context.Context, exported, total int) error
}

// Noop discards notifications. Used when desktop notifications are
// disabled or no session bus is available.
type Noop struct{}

// ExportFinished implements Notifier.
func (Noop) ExportFinished(context.Context, int, int) error { return nil }

const (
	notificationsService   = "org.freedesktop.Notifications"
	notificationsPath      = "/org/freedesktop/Notifications"
	notificationsInterface = "org.freedesktop.Notifications.Notify"

	expireMillis = 5000
)

// Desktop sends notifications over the D-Bus session bus using the
// org.freedesktop.Notifications interface.
type Desktop struct {
	conn   *dbus.Conn
	logger *slog.Logger
}

// NewDesktop connects to the session bus. Callers should fall back to
// Noop when the connection fails (headless hosts have no session bus).
func NewDesktop(logger *slog.Logger) (*Desktop, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	return &Desktop{conn: conn, logger: logger}, nil
}

// Close releases the bus connection.
func (d *Desktop) Close() error {
	return d.conn.Close()
}

// ExportFinished implements Notifier.
func (d *Desktop) ExportFinished(ctx context.Context, exported, total int) error {
	body := fmt.Sprintf("%d of %d photos exported", exported, total)
	if exported == total {
		body = fmt.Sprintf("All %d photos exported", total)
	}

	obj := d.conn.Object(notificationsService, notificationsPath)
	call := obj.CallWithContext(ctx, notificationsInterface, 0,
		"SnapTag",            // app_name
		uint32(0),            // replaces_id
		"",                   // app_icon
		"Export complete",    // summary
		body,                 // body
		[]string{},           // actions
		map[string]dbus.Variant{}, // hints
		int32(expireMillis),
	)
	if call.Err != nil {
		return fmt.Errorf("send notification: %w", call.Err)
	}

	d.logger.Debug("desktop notification sent", "exported", exported, "total", total)
	return nil
}
