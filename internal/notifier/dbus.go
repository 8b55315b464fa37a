package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
)

// See https://specifications.freedesktop.org/notification-spec/latest/
const (
	dbusDest      = "org.freedesktop.Notifications"
	dbusPath      = dbus.ObjectPath("/org/freedesktop/Notifications")
	dbusInterface = "org.freedesktop.Notifications"

	signalActionInvoked      = dbusInterface + ".ActionInvoked"
	signalNotificationClosed = dbusInterface + ".NotificationClosed"

	defaultActionKey = "default"
)

// DBus talks to the freedesktop notification server on the session bus.
type DBus struct {
	appName string
	conn    *dbus.Conn
	obj     dbus.BusObject
	log     *slog.Logger

	signals chan *dbus.Signal
	done    chan struct{}
	wg      sync.WaitGroup

	mu      sync.Mutex
	onClick map[uint32]func()

	closeOnce sync.Once
	closeErr  error
}

// NewDBus connects to the session bus and starts listening for clicks.
func NewDBus(appName string, log *slog.Logger) (*DBus, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connecting to session bus: %w", err)
	}

	d := newDBus(appName, conn, log)
	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(dbusPath),
		dbus.WithMatchInterface(dbusInterface),
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribing to notification signals: %w", err)
	}
	conn.Signal(d.signals)

	d.wg.Add(1)
	go d.listen()
	return d, nil
}

func newDBus(appName string, conn *dbus.Conn, log *slog.Logger) *DBus {
	d := &DBus{
		appName: appName,
		conn:    conn,
		log:     log,
		signals: make(chan *dbus.Signal, 100),
		done:    make(chan struct{}),
		onClick: make(map[uint32]func()),
	}
	if conn != nil {
		d.obj = conn.Object(dbusDest, dbusPath)
	}
	return d
}

// Name implements Backend.
func (d *DBus) Name() string { return "dbus" }

// Send implements Backend.
func (d *DBus) Send(ctx context.Context, msg Message) (uint32, error) {
	var actions []string
	if msg.Clickable {
		actions = []string{defaultActionKey, "Open"}
	}

	var id uint32
	call := d.obj.CallWithContext(ctx, dbusInterface+".Notify", 0,
		d.appName,      // app_name
		uint32(0),      // replaces_id
		msg.Icon,       // app_icon
		msg.Title,      // summary
		msg.Body,       // body
		actions,        // actions
		dbusHints(msg), // hints
		int32(-1),      // expire_timeout, server default
	)
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("failed to send notification: %w", err)
	}
	return id, nil
}

// Dismiss implements Backend.
func (d *DBus) Dismiss(id uint32) error {
	d.forget(id)
	if err := d.obj.Call(dbusInterface+".CloseNotification", 0, id).Err; err != nil {
		return fmt.Errorf("failed to close notification %d: %w", id, err)
	}
	return nil
}

// OnClick implements Clicker.
func (d *DBus) OnClick(id uint32, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if fn == nil {
		delete(d.onClick, id)
		return
	}
	d.onClick[id] = fn
}

// Close implements Backend.
func (d *DBus) Close() error {
	d.closeOnce.Do(func() {
		close(d.done)
		d.wg.Wait()
		if d.conn != nil {
			d.conn.RemoveSignal(d.signals)
			d.closeErr = d.conn.Close()
		}
	})
	return d.closeErr
}

func (d *DBus) listen() {
	defer d.wg.Done()
	for {
		select {
		case <-d.done:
			return
		case sig, ok := <-d.signals:
			if !ok {
				return
			}
			d.handleSignal(sig)
		}
	}
}

func (d *DBus) handleSignal(sig *dbus.Signal) {
	if sig == nil || len(sig.Body) == 0 {
		return
	}
	id, ok := sig.Body[0].(uint32)
	if !ok {
		d.log.Debug("notify: unexpected signal body", slog.String("signal", sig.Name))
		return
	}

	switch sig.Name {
	case signalActionInvoked:
		d.mu.Lock()
		fn := d.onClick[id]
		d.mu.Unlock()
		if fn != nil {
			d.log.Debug("notify: notification clicked", slog.Uint64("id", uint64(id)))
			fn()
		}
	case signalNotificationClosed:
		d.forget(id)
	}
}

func (d *DBus) forget(id uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.onClick, id)
}

func dbusHints(msg Message) map[string]dbus.Variant {
	hints := make(map[string]dbus.Variant, len(msg.Hints)+1)
	for k, v := range msg.Hints {
		if variant, ok := hintVariant(v); ok {
			hints[k] = variant
		}
	}
	if msg.Tag != "" {
		// Servers that honor it replace earlier notifications with the same tag.
		hints["x-canonical-private-synchronous"] = dbus.MakeVariant(msg.Tag)
	}
	return hints
}

// hintVariant wraps v for the wire. Values godbus has no signature for, such
// as nil or funcs, are reported as not ok.
func hintVariant(v any) (variant dbus.Variant, ok bool) {
	if v == nil {
		return dbus.Variant{}, false
	}
	defer func() {
		if recover() != nil {
			variant, ok = dbus.Variant{}, false
		}
	}()
	return dbus.MakeVariant(v), true
}
