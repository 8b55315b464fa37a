package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/Daniel-42-z/webnotify/internal/logging"
	"github.com/Daniel-42-z/webnotify/internal/webnotify"
)

// Config represents the top-level configuration structure.
type Config struct {
	AppName        string `toml:"app_name"`
	Backend        string `toml:"backend"`
	AllowRequest   bool   `toml:"allow_request"`
	DefaultIcon    string `toml:"default_icon"`
	AutoClose      string `toml:"auto_close"`
	PermissionFile string `toml:"permission_file"`
	LogLevel       string `toml:"log_level"`
	Prompt         string `toml:"prompt"`

	// path is the file the config was loaded from.
	path string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		AppName:      "webnotify",
		Backend:      "auto",
		AllowRequest: true,
		DefaultIcon:  webnotify.DefaultIcon,
		AutoClose:    "0s",
		LogLevel:     "info",
		Prompt:       "tui",
	}
}

// Dir returns the directory holding webnotify's files
// ($XDG_CONFIG_HOME/webnotify, falling back to ~/.config/webnotify).
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "webnotify"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "webnotify"), nil
}

// FindOrCreateDefault returns the default config path, writing a default
// config there if none exists yet.
func FindOrCreateDefault() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := toml.Marshal(Default())
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write default config: %w", err)
	}
	return path, nil
}

// Load reads a TOML configuration file. Missing keys keep their defaults.
func Load(path string) (*Config, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".toml" {
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := Default()
	dec := toml.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return nil, err
	}
	cfg.path = path
	return cfg, nil
}

// PermissionPath resolves where the permission state is stored. Relative
// paths are taken relative to the config file.
func (c *Config) PermissionPath() (string, error) {
	p := expandHome(c.PermissionFile)
	if p == "" {
		if c.path != "" {
			return filepath.Join(filepath.Dir(c.path), "permission.toml"), nil
		}
		dir, err := Dir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "permission.toml"), nil
	}
	if !filepath.IsAbs(p) && c.path != "" {
		p = filepath.Join(filepath.Dir(c.path), p)
	}
	return p, nil
}

// AutoCloseDuration parses auto_close.
func (c *Config) AutoCloseDuration() (time.Duration, error) {
	return ParseDurationField("auto_close", c.AutoClose)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.AppName) == "" {
		return fmt.Errorf("app_name must not be empty")
	}
	switch c.Backend {
	case "auto", "dbus", "beeep", "exec":
	default:
		return fmt.Errorf("invalid backend %q (expected auto, dbus, beeep or exec)", c.Backend)
	}
	switch c.Prompt {
	case "tui", "grant", "deny":
	default:
		return fmt.Errorf("invalid prompt %q (expected tui, grant or deny)", c.Prompt)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if _, err := c.AutoCloseDuration(); err != nil {
		return err
	}
	return nil
}

// ParseDurationField parses a non-negative duration. Empty means zero.
func ParseDurationField(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
