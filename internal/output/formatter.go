package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Shown describes a notification that was displayed.
type Shown struct {
	Title       string `json:"title"`
	Tag         string `json:"tag,omitempty"`
	Backend     string `json:"backend"`
	Worker      bool   `json:"worker"`
	AutoCloseMS int64  `json:"auto_close_ms,omitempty"`
}

// PermissionStatus describes the stored permission decision.
type PermissionStatus struct {
	State     string     `json:"state"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// PrintShown reports a displayed notification.
func PrintShown(w io.Writer, s Shown, asJSON bool) error {
	if asJSON {
		return printJSON(w, s)
	}
	_, err := fmt.Fprintln(w, "Notification shown.")
	return err
}

// PrintPermission reports the permission state.
func PrintPermission(w io.Writer, p PermissionStatus, asJSON bool) error {
	if asJSON {
		return printJSON(w, p)
	}
	if p.UpdatedAt == nil {
		_, err := fmt.Fprintln(w, p.State)
		return err
	}
	_, err := fmt.Fprintf(w, "%s (since %s)\n", p.State, p.UpdatedAt.Local().Format("2006-01-02 15:04"))
	return err
}

// PrintGranted reports the outcome of a permission request.
func PrintGranted(w io.Writer, granted bool, asJSON bool) error {
	if asJSON {
		return printJSON(w, struct {
			Granted bool `json:"granted"`
		}{granted})
	}
	if granted {
		_, err := fmt.Fprintln(w, "Permission Granted.")
		return err
	}
	_, err := fmt.Fprintln(w, "Permission Not Granted.")
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
