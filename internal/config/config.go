// Package config handles TOML-based preference loading and validation.
// Precedence: built-in defaults < user config file < centrally managed
// overrides < CLI flags (applied by cmd).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"marquee/internal/content"
	"marquee/internal/registry"
)

// Config holds all kiosk preferences.
type Config struct {
	Locator         string `toml:"locator"`
	Kind            string `toml:"kind"`   // optional override, "" = classify by locator
	Player          string `toml:"player"` // "" = first declared player for the kind
	Loop            bool   `toml:"loop"`
	SlideInterval   int    `toml:"slide_interval"`   // seconds, built-in slideshow advance
	RefreshInterval int    `toml:"refresh_interval"` // seconds, built-in website reload, 0 = never
	Lockdown        bool   `toml:"lockdown"`
	HideCursor      bool   `toml:"hide_cursor"`
	PreventSleep    bool   `toml:"prevent_sleep"`
	Autostart       bool   `toml:"autostart"`
	Display         string `toml:"display"` // "main", "all", or a display index
	Debug           bool   `toml:"debug"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Loop:            true,
		SlideInterval:   5,
		RefreshInterval: 0,
		Lockdown:        true,
		HideCursor:      true,
		PreventSleep:    true,
		Display:         "main",
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "marquee"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "marquee"), nil
}

// ConfigPath returns the path to the user config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// managedPath returns the centrally managed overrides file. The environment
// override exists for tests and non-standard deployments.
func managedPath() string {
	if p := os.Getenv("MARQUEE_MANAGED_CONFIG"); p != "" {
		return p
	}
	return "/Library/Managed Preferences/marquee/config.toml"
}

// Load reads the user config file and the managed overrides, merged over
// defaults. A missing file at either layer is not an error.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		if err := mergeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := mergeFile(managedPath(), cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func mergeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// Managed reports whether a key is forced by the managed overrides file and
// therefore not editable by the user.
func Managed(key string) bool {
	data, err := os.ReadFile(managedPath())
	if err != nil {
		return false
	}
	var raw map[string]interface{}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}
	_, ok := raw[key]
	return ok
}

// Reset removes the user config file, returning all keys to defaults.
// Managed overrides are untouched.
func Reset() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing config: %w", err)
	}
	return nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	if c.SlideInterval < 1 {
		return fmt.Errorf("slide_interval must be at least 1 second, got %d", c.SlideInterval)
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("refresh_interval cannot be negative, got %d", c.RefreshInterval)
	}

	if c.Kind != "" {
		if _, err := content.ParseKind(c.Kind); err != nil {
			return err
		}
	}

	if c.Player != "" && c.Player != registry.BuiltInID {
		if !knownPlayer(c.Player) {
			return fmt.Errorf("unknown player %q", c.Player)
		}
	}

	switch strings.ToLower(c.Display) {
	case "main", "all":
	default:
		if _, err := strconv.Atoi(c.Display); err != nil {
			return fmt.Errorf("display must be \"main\", \"all\" or an index, got %q", c.Display)
		}
	}

	return nil
}

func knownPlayer(id string) bool {
	for _, kind := range []content.Kind{content.Video, content.PDF, content.Website, content.Slides} {
		if _, ok := registry.Find(kind, id); ok {
			return true
		}
	}
	return false
}

// JournalPath returns the path to the session journal.
func JournalPath() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "marquee", "journal.tsv"), nil
}
