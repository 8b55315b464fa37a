// Package main provides the command-line interface for webnotify.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Daniel-42-z/webnotify/internal/config"
	"github.com/Daniel-42-z/webnotify/internal/logging"
	"github.com/Daniel-42-z/webnotify/internal/notifier"
	"github.com/Daniel-42-z/webnotify/internal/permission"
	"github.com/Daniel-42-z/webnotify/internal/prompt"

	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
	jsonFmt  bool

	cfg *config.Config
	log *slog.Logger

	// Build information
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:               "webnotify",
	Short:             "Show desktop notifications",
	Long:              `webnotify shows desktop notifications, asking for permission first when needed.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("webnotify %s\ncommit: %s\nbuilt at: %s\n", version, commit, date))

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $XDG_CONFIG_HOME/webnotify/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&jsonFmt, "json", "j", false, "output in JSON format")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	// 1. Resolve config file path
	var err error
	if cfgFile == "" {
		cfgFile, err = config.FindOrCreateDefault()
		if err != nil {
			return err
		}
	}

	// 2. Load Config
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 3. Logging
	log, err = logging.Setup(cfg.LogLevel)
	if err != nil {
		return err
	}
	log.Debug("config loaded", slog.String("path", cfgFile), slog.String("backend", cfg.Backend))
	return nil
}

func permissionStore() (*permission.Store, error) {
	path, err := cfg.PermissionPath()
	if err != nil {
		return nil, err
	}
	return permission.NewStore(path), nil
}

func prompter() prompt.Prompter {
	switch cfg.Prompt {
	case "grant":
		return prompt.Always(true)
	case "deny":
		return prompt.Always(false)
	default:
		return prompt.TUI{In: os.Stdin, Out: os.Stderr}
	}
}

// openPlatform builds the desktop platform. The caller closes the backend.
func openPlatform() (*notifier.Platform, error) {
	store, err := permissionStore()
	if err != nil {
		return nil, err
	}
	backend, err := notifier.Open(cfg.Backend, cfg.AppName, log)
	if err != nil {
		return nil, err
	}
	return &notifier.Platform{
		AppName:  cfg.AppName,
		Backend:  backend,
		Store:    store,
		Prompter: prompter(),
		Log:      log,
	}, nil
}
