// Package webnotify is a small facade over a desktop notification platform.
//
// It normalizes the ShowNotification call signature, gates display on the
// platform permission (requesting it when allowed), fills in defaults and
// dispatches either to the platform directly or to a worker Registration.
package webnotify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Facade wraps a Platform. The zero value is not usable, call New.
type Facade struct {
	lib         Platform
	log         *slog.Logger
	defaultIcon string
	now         func() time.Time

	allowRequest atomic.Bool

	inflight sync.WaitGroup
}

// Option configures a Facade.
type Option func(*Facade)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(f *Facade) {
		if log != nil {
			f.log = log
		}
	}
}

// WithAllowRequest sets the initial value of AllowRequest.
func WithAllowRequest(allow bool) Option {
	return func(f *Facade) { f.allowRequest.Store(allow) }
}

// WithDefaultIcon overrides DefaultIcon.
func WithDefaultIcon(icon string) Option {
	return func(f *Facade) {
		if icon != "" {
			f.defaultIcon = icon
		}
	}
}

// WithClock sets the time source used for synthesized tags.
func WithClock(now func() time.Time) Option {
	return func(f *Facade) {
		if now != nil {
			f.now = now
		}
	}
}

// New creates a Facade over lib. AllowRequest starts out true.
func New(lib Platform, opts ...Option) *Facade {
	f := &Facade{
		lib:         lib,
		log:         slog.Default(),
		defaultIcon: DefaultIcon,
		now:         time.Now,
	}
	f.allowRequest.Store(true)
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Reinit returns a fresh Facade over another platform. Logger, default icon
// and clock carry over; AllowRequest starts over.
func (f *Facade) Reinit(lib Platform) *Facade {
	return New(lib, WithLogger(f.log), WithDefaultIcon(f.defaultIcon), WithClock(f.now))
}

// Lib returns the wrapped platform.
func (f *Facade) Lib() Platform {
	return f.lib
}

// PermissionGranted reports whether the platform permission is granted.
func (f *Facade) PermissionGranted() bool {
	return f.lib.Permission() == PermissionGranted
}

// AllowRequest reports whether ShowNotification may prompt for permission.
func (f *Facade) AllowRequest() bool {
	return f.allowRequest.Load()
}

// SetAllowRequest toggles automatic permission prompts.
func (f *Facade) SetAllowRequest(allow bool) {
	f.allowRequest.Store(allow)
}

// Wait blocks until every pending callback has been delivered.
func (f *Facade) Wait() {
	f.inflight.Wait()
}

// RequestPermission asks the platform for permission unless it is already
// granted, then calls cb with the resulting state. A nil cb is a no-op.
// AllowRequest does not apply here.
func (f *Facade) RequestPermission(cb func(granted bool)) {
	if cb == nil {
		return
	}
	if f.PermissionGranted() {
		cb(true)
		return
	}

	f.inflight.Add(1)
	go func() {
		defer f.inflight.Done()
		f.askPlatform(context.Background())
		cb(f.PermissionGranted())
	}()
}

// Request is the blocking permission gate used before display. It only
// prompts when AllowRequest is set.
func (f *Facade) Request(ctx context.Context) bool {
	if f.PermissionGranted() {
		return true
	}
	if !f.AllowRequest() {
		return false
	}
	f.askPlatform(ctx)
	return f.PermissionGranted()
}

func (f *Facade) askPlatform(ctx context.Context) {
	// The outcome is read back from Permission; the returned state is informational.
	state, err := f.lib.RequestPermission(ctx)
	if err != nil {
		f.log.Debug("permission request failed", slog.Any("err", err))
		return
	}
	f.log.Debug("permission request done", slog.String("state", string(state)))
}

// ShowNotification displays a notification without blocking the caller.
//
// Accepted forms, each with an optional trailing Callback:
//
//	ShowNotification()
//	ShowNotification(title)
//	ShowNotification(options)
//	ShowNotification(title, options)
//
// The callback runs exactly once, with (nil, hide) on success or (err, nil)
// on failure. Calls with more than three arguments are ignored and the
// callback is never run.
func (f *Facade) ShowNotification(args ...any) {
	call := ParseArgs(args)
	if call.Shape == ShapeTooMany {
		f.log.Debug("show notification ignored: too many arguments", slog.Int("args", len(args)))
		return
	}

	f.inflight.Add(1)
	go func() {
		defer f.inflight.Done()
		hide, err := f.Show(context.Background(), call.Title, call.Options)
		call.Callback(err, hide)
	}()
}

// Show is the blocking form of ShowNotification.
func (f *Facade) Show(ctx context.Context, title string, opts Options) (HideFunc, error) {
	if !f.Request(ctx) {
		return nil, ErrNotEnabled
	}

	if opts.Icon == "" {
		opts.Icon = f.defaultIcon
	}
	if opts.Registration != nil {
		return f.showViaRegistration(ctx, title, opts)
	}
	return f.showDirect(title, opts)
}

func (f *Facade) showDirect(title string, opts Options) (hide HideFunc, err error) {
	defer func() {
		if r := recover(); r != nil {
			hide = nil
			err = fmt.Errorf("creating notification: %v", r)
		}
	}()

	inst, err := f.lib.New(title, opts)
	if err != nil {
		return nil, err
	}
	if inst == nil {
		return nil, errNoInstance
	}
	return f.track(inst, opts), nil
}

func (f *Facade) showViaRegistration(ctx context.Context, title string, opts Options) (HideFunc, error) {
	reg := opts.Registration
	opts.Registration = nil

	if opts.Tag == "" {
		opts.Tag = f.nextTag()
	}

	if err := reg.ShowNotification(ctx, title, opts); err != nil {
		return nil, err
	}
	list, err := reg.GetNotifications(ctx, Filter{Tag: opts.Tag})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 || list[0] == nil {
		return nil, ErrNotFound
	}
	return f.track(list[0], opts), nil
}

// tagCounter is shared by every Facade so that facades feeding the same
// Registration never synthesize the same tag.
var tagCounter atomic.Uint64

// nextTag returns a tag unique within the process.
func (f *Facade) nextTag() string {
	n := tagCounter.Add(1)
	return fmt.Sprintf("webnotification-%d-%d", f.now().UnixMilli(), n)
}

// track wires the click handler and builds the hide function, scheduling
// it when AutoClose is set.
func (f *Facade) track(inst Instance, opts Options) HideFunc {
	if opts.OnClick != nil {
		inst.SetOnClick(opts.OnClick)
	}

	var (
		once  sync.Once
		timer atomic.Pointer[time.Timer]
	)
	hide := func() {
		once.Do(func() {
			if t := timer.Load(); t != nil {
				t.Stop()
			}
			if err := inst.Close(); err != nil {
				f.log.Warn("closing notification failed", slog.Any("err", err))
			}
		})
	}

	if opts.AutoClose > 0 {
		timer.Store(time.AfterFunc(opts.AutoClose, hide))
	}
	return hide
}
