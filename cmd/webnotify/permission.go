package main

import (
	"fmt"
	"os"

	"github.com/Daniel-42-z/webnotify/internal/output"
	"github.com/Daniel-42-z/webnotify/internal/webnotify"

	"github.com/spf13/cobra"
)

var permissionCmd = &cobra.Command{
	Use:   "permission",
	Short: "Show the notification permission state",
	Args:  cobra.NoArgs,
	RunE:  runPermissionStatus,
}

var permissionRequestCmd = &cobra.Command{
	Use:   "request",
	Short: "Ask for permission to show notifications",
	Args:  cobra.NoArgs,
	RunE:  runPermissionRequest,
}

var permissionResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the stored permission decision",
	Args:  cobra.NoArgs,
	RunE:  runPermissionReset,
}

func init() {
	permissionCmd.AddCommand(permissionRequestCmd, permissionResetCmd)
	rootCmd.AddCommand(permissionCmd)
}

func runPermissionStatus(cmd *cobra.Command, args []string) error {
	store, err := permissionStore()
	if err != nil {
		return err
	}
	state, err := store.Get()
	if err != nil {
		return fmt.Errorf("failed to read permission: %w", err)
	}
	at, err := store.UpdatedAt()
	if err != nil {
		return err
	}

	status := output.PermissionStatus{State: string(state)}
	if !at.IsZero() {
		status.UpdatedAt = &at
	}
	return output.PrintPermission(os.Stdout, status, jsonFmt)
}

func runPermissionRequest(cmd *cobra.Command, args []string) error {
	platform, err := openPlatform()
	if err != nil {
		return err
	}
	defer platform.Backend.Close()

	facade := webnotify.New(platform, webnotify.WithLogger(log))
	done := make(chan bool, 1)
	facade.RequestPermission(func(granted bool) { done <- granted })

	return output.PrintGranted(os.Stdout, <-done, jsonFmt)
}

func runPermissionReset(cmd *cobra.Command, args []string) error {
	store, err := permissionStore()
	if err != nil {
		return err
	}
	if err := store.Reset(); err != nil {
		return err
	}
	fmt.Println("Permission reset.")
	return nil
}
