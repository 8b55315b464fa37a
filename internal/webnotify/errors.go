package webnotify

import "errors"

var (
	// ErrNotEnabled is reported when permission is not granted.
	ErrNotEnabled = errors.New("Notifications are not enabled.") //nolint:staticcheck // user facing message

	// ErrNotFound is reported when a registration cannot locate the
	// notification it just displayed.
	ErrNotFound = errors.New("Unable to find notification.") //nolint:staticcheck // user facing message

	errNoInstance = errors.New("platform returned no notification")
)
