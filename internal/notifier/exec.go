package notifier

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Exec sends notifications by shelling out to the platform's notification tool.
// It cannot dismiss what it shows.
type Exec struct {
	appName string
	goos    string
	run     func(ctx context.Context, name string, args ...string) error
}

// NewExec creates an Exec backend for the running OS.
func NewExec(appName string) *Exec {
	return &Exec{appName: appName, goos: runtime.GOOS, run: runCommand}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Name implements Backend.
func (e *Exec) Name() string { return "exec" }

// Send implements Backend.
func (e *Exec) Send(ctx context.Context, msg Message) (uint32, error) {
	name, args, err := e.command(msg)
	if err != nil {
		return 0, err
	}
	if err := e.run(ctx, name, args...); err != nil {
		return 0, fmt.Errorf("failed to send notification: %w", err)
	}
	return 0, nil
}

// Dismiss implements Backend.
func (e *Exec) Dismiss(uint32) error { return nil }

// Close implements Backend.
func (e *Exec) Close() error { return nil }

func (e *Exec) command(msg Message) (string, []string, error) {
	switch e.goos {
	case "linux":
		args := []string{"--app-name", e.appName}
		if msg.Icon != "" {
			args = append(args, "--icon", msg.Icon)
		}
		args = append(args, msg.Title, msg.Body)
		return "notify-send", args, nil
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeQuotes(msg.Body), escapeQuotes(msg.Title))
		return "osascript", []string{"-e", script}, nil
	case "windows":
		return "powershell", []string{"-Command", windowsScript(msg.Title, msg.Body)}, nil
	default:
		return "", nil, fmt.Errorf("notifications not supported on %s", e.goos)
	}
}

func windowsScript(title, body string) string {
	// Keep the tray icon alive long enough for the balloon to appear.
	return fmt.Sprintf(`
Add-Type -AssemblyName System.Windows.Forms
$notify = New-Object System.Windows.Forms.NotifyIcon
$notify.Icon = [System.Drawing.SystemIcons]::Information
$notify.Visible = $true
$notify.ShowBalloonTip(10000, "%s", "%s", [System.Windows.Forms.ToolTipIcon]::None)
Start-Sleep -s 5
$notify.Visible = $false
$notify.Dispose()
`, escapeQuotes(title), escapeQuotes(body))
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
