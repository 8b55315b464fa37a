package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Daniel-42-z/webnotify/internal/output"
	"github.com/Daniel-42-z/webnotify/internal/webnotify"
	"github.com/Daniel-42-z/webnotify/internal/worker"

	"github.com/spf13/cobra"
)

var (
	showBody      string
	showIcon      string
	showTag       string
	showAutoClose time.Duration
	showWorker    bool
	showNoRequest bool
	showWait      bool
)

var showCmd = &cobra.Command{
	Use:   "show [title]",
	Short: "Show a desktop notification",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVarP(&showBody, "body", "b", "", "notification text")
	showCmd.Flags().StringVarP(&showIcon, "icon", "i", "", "notification icon (default is the configured default_icon)")
	showCmd.Flags().StringVar(&showTag, "tag", "", "tag identifying the notification")
	showCmd.Flags().DurationVarP(&showAutoClose, "auto-close", "a", 0, "close the notification after this duration (default is the configured auto_close)")
	showCmd.Flags().BoolVarP(&showWorker, "worker", "w", false, "show the notification through the background worker")
	showCmd.Flags().BoolVar(&showNoRequest, "no-request", false, "never prompt for permission")
	showCmd.Flags().BoolVar(&showWait, "wait", false, "keep running until the notification is clicked or interrupted, then close it")

	rootCmd.AddCommand(showCmd)
}

type showResult struct {
	err  error
	hide webnotify.HideFunc
}

func runShow(cmd *cobra.Command, args []string) error {
	autoClose := showAutoClose
	if !cmd.Flags().Changed("auto-close") {
		var err error
		autoClose, err = cfg.AutoCloseDuration()
		if err != nil {
			return err
		}
	}

	platform, err := openPlatform()
	if err != nil {
		return err
	}
	defer platform.Backend.Close()

	facade := webnotify.New(platform,
		webnotify.WithLogger(log),
		webnotify.WithAllowRequest(cfg.AllowRequest && !showNoRequest),
		webnotify.WithDefaultIcon(cfg.DefaultIcon),
	)

	clicked := make(chan struct{}, 1)
	opts := webnotify.Options{
		Body:      showBody,
		Icon:      showIcon,
		Tag:       showTag,
		AutoClose: autoClose,
		OnClick: func() {
			select {
			case clicked <- struct{}{}:
			default:
			}
		},
	}

	var reg *worker.Registration
	if showWorker {
		reg = worker.New(platform, log)
		defer reg.Stop()
		opts.Registration = reg
	}

	done := make(chan showResult, 1)
	onShow := webnotify.Callback(func(err error, hide webnotify.HideFunc) {
		done <- showResult{err: err, hide: hide}
	})

	// 1. Show
	if len(args) == 1 {
		facade.ShowNotification(args[0], opts, onShow)
	} else {
		facade.ShowNotification(opts, onShow)
	}
	res := <-done
	if res.err != nil {
		return fmt.Errorf("unable to show notification: %w", res.err)
	}
	shown := output.Shown{
		Tag:         shownTag(opts.Tag, reg),
		Backend:     platform.Backend.Name(),
		Worker:      showWorker,
		AutoCloseMS: autoClose.Milliseconds(),
	}
	if len(args) == 1 {
		shown.Title = args[0]
	}
	if err := output.PrintShown(os.Stdout, shown, jsonFmt); err != nil {
		return err
	}

	// 2. Wait for click, auto close or interrupt
	if !showWait && autoClose == 0 {
		return nil
	}
	return waitAndHide(cmd.Context(), res.hide, clicked, autoClose)
}

// shownTag is the requested tag, or the one synthesized for the worker.
func shownTag(requested string, reg *worker.Registration) string {
	if requested != "" || reg == nil {
		return requested
	}
	if tags := reg.Tags(); len(tags) > 0 {
		return tags[len(tags)-1]
	}
	return ""
}

func waitAndHide(ctx context.Context, hide webnotify.HideFunc, clicked <-chan struct{}, autoClose time.Duration) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var expired <-chan time.Time
	if autoClose > 0 {
		timer := time.NewTimer(autoClose)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-clicked:
		log.Info("notification clicked")
	case <-expired:
		log.Debug("notification auto closed", slog.Duration("after", autoClose))
	case <-ctx.Done():
		log.Debug("interrupted, hiding notification")
	}
	hide()
	return nil
}
