// Package notifier provides cross-platform desktop notification support.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
)

// Message is a notification as handed to a backend.
type Message struct {
	Title string
	Body  string
	Icon  string
	Tag   string
	// Clickable asks the backend to report clicks.
	Clickable bool
	Hints     map[string]any
}

// Backend displays notifications on the desktop.
type Backend interface {
	Name() string
	// Send shows msg and returns its system ID. Backends that cannot track
	// notifications return 0.
	Send(ctx context.Context, msg Message) (uint32, error)
	// Dismiss removes a notification previously returned by Send.
	Dismiss(id uint32) error
	// Close releases the backend.
	Close() error
}

// Clicker is implemented by backends that report notification clicks.
type Clicker interface {
	OnClick(id uint32, fn func())
}

// Open returns the backend called kind. "auto" prefers D-Bus on Linux and
// falls back to beeep.
func Open(kind, appName string, log *slog.Logger) (Backend, error) {
	if log == nil {
		log = slog.Default()
	}
	switch kind {
	case "dbus":
		b, err := NewDBus(appName, log)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "beeep":
		return NewBeeep(), nil
	case "exec":
		return NewExec(appName), nil
	case "", "auto":
		if runtime.GOOS == "linux" {
			b, err := NewDBus(appName, log)
			if err == nil {
				return b, nil
			}
			log.Debug("dbus unavailable, using beeep", slog.Any("err", err))
		}
		return NewBeeep(), nil
	default:
		return nil, fmt.Errorf("unknown notification backend: %s", kind)
	}
}

// Notification is a notification shown through a Backend.
type Notification struct {
	id      uint32
	tag     string
	backend Backend
	closed  atomic.Bool
}

// ID returns the system ID, 0 when the backend does not track notifications.
func (n *Notification) ID() uint32 { return n.id }

// Tag returns the tag the notification was shown with.
func (n *Notification) Tag() string { return n.tag }

// SetOnClick registers fn for clicks when the backend supports them.
func (n *Notification) SetOnClick(fn func()) {
	if c, ok := n.backend.(Clicker); ok && n.id != 0 {
		c.OnClick(n.id, fn)
	}
}

// Close dismisses the notification. Only the first call reaches the backend.
func (n *Notification) Close() error {
	if !n.closed.CompareAndSwap(false, true) {
		return nil
	}
	if n.id == 0 {
		return nil
	}
	return n.backend.Dismiss(n.id)
}
