package webnotify

import (
	"context"
	"fmt"
	"time"
)

// Permission is the platform-tracked consent level for showing notifications.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// ParsePermission converts a stored permission string. An empty string reads as default.
func ParsePermission(s string) (Permission, error) {
	switch Permission(s) {
	case "", PermissionDefault:
		return PermissionDefault, nil
	case PermissionGranted:
		return PermissionGranted, nil
	case PermissionDenied:
		return PermissionDenied, nil
	default:
		return PermissionDefault, fmt.Errorf("invalid permission state: %q", s)
	}
}

// DefaultIcon is used when a notification has no icon.
const DefaultIcon = "/favicon.ico"

// Instance is a displayed notification.
type Instance interface {
	SetOnClick(fn func())
	Close() error
}

// Platform is the notification capability the facade wraps.
type Platform interface {
	// Permission returns the current permission state.
	Permission() Permission
	// RequestPermission runs the platform's permission flow and returns once
	// it has resolved.
	RequestPermission(ctx context.Context) (Permission, error)
	// New displays a notification. It may fail synchronously.
	New(title string, opts Options) (Instance, error)
}

// Filter selects notifications held by a Registration.
type Filter struct {
	Tag string
}

// Registration is a background worker that can display notifications on
// behalf of the caller and list the ones it currently holds.
type Registration interface {
	ShowNotification(ctx context.Context, title string, opts Options) error
	GetNotifications(ctx context.Context, filter Filter) ([]Instance, error)
}

// Options holds the notification data.
type Options struct {
	Body string
	// Icon defaults to DefaultIcon when empty.
	Icon string
	Tag  string
	// AutoClose hides the notification after the given duration. Zero disables it.
	AutoClose time.Duration
	OnClick   func()
	// Registration routes the notification through a background worker
	// instead of the platform directly.
	Registration Registration
	// Extra holds platform specific fields that are passed through untouched.
	Extra map[string]any
}

// HideFunc closes a displayed notification. Calling it more than once is a no-op.
type HideFunc func()

// Callback receives the outcome of ShowNotification. On failure hide is nil.
type Callback func(err error, hide HideFunc)
