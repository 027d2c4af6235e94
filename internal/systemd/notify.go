// Package systemd reports service readiness, status and watchdog pings to
// systemd through sd_notify. Outside a systemd unit every call is a no-op.
package systemd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/smazurov/campreview/internal/events"
)

// Notifier sends sd_notify messages.
type Notifier struct {
	logger   *slog.Logger
	notify   func(state string) (bool, error)
	watchdog func() (time.Duration, error)
	unsub    func()
}

// NewNotifier creates a notifier talking to $NOTIFY_SOCKET.
func NewNotifier(logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		logger: logger,
		notify: func(state string) (bool, error) {
			return daemon.SdNotify(false, state)
		},
		watchdog: func() (time.Duration, error) {
			return daemon.SdWatchdogEnabled(false)
		},
	}
}

func (n *Notifier) send(state string) {
	sent, err := n.notify(state)
	if err != nil {
		n.logger.Warn("sd_notify failed", "state", state, "error", err)
		return
	}
	if sent {
		n.logger.Debug("sd_notify sent", "state", state)
	}
}

// Ready tells systemd the service finished starting.
func (n *Notifier) Ready() { n.send(daemon.SdNotifyReady) }

// Stopping tells systemd the service is shutting down.
func (n *Notifier) Stopping() { n.send(daemon.SdNotifyStopping) }

// Status sets the free-form status line shown by systemctl status.
func (n *Notifier) Status(text string) { n.send("STATUS=" + text) }

// FollowSession mirrors session state changes into the status line.
func (n *Notifier) FollowSession(bus *events.Bus) {
	n.unsub = bus.Subscribe(func(e events.SessionStateChangedEvent) {
		n.Status(sessionStatus(e))
	})
}

// Stop stops following the session.
func (n *Notifier) Stop() {
	if n.unsub != nil {
		n.unsub()
		n.unsub = nil
	}
}

func sessionStatus(e events.SessionStateChangedEvent) string {
	if e.CameraID == "" {
		return fmt.Sprintf("session %s", e.To)
	}
	return fmt.Sprintf("session %s on %s", e.To, e.CameraID)
}

// RunWatchdog pings the watchdog at half the configured interval while
// healthy reports true, until ctx is done. It returns immediately when the
// unit has no WatchdogSec.
func (n *Notifier) RunWatchdog(ctx context.Context, healthy func() bool) {
	interval, err := n.watchdog()
	if err != nil {
		n.logger.Warn("Failed to read watchdog settings", "error", err)
		return
	}
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval / 2)
	defer ticker.Stop()
	n.logger.Info("systemd watchdog enabled", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if healthy == nil || healthy() {
				n.send(daemon.SdNotifyWatchdog)
			} else {
				n.logger.Warn("Skipping watchdog ping, service unhealthy")
			}
		}
	}
}
