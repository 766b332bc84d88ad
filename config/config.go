// Package config handles loading the lemoncello config.toml file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

const appDir = "lemoncello"

// Config represents the config.toml file after defaults are applied.
type Config struct {
	// StateFile is the JSON document holding blocks, tasks and sessions.
	StateFile string `toml:"state-file"`
	// LogFile receives the log while the TUI owns the terminal. Empty disables logging there.
	LogFile  string   `toml:"log-file"`
	Timer    Timer    `toml:"timer"`
	Notify   Notify   `toml:"notify"`
	WakeLock WakeLock `toml:"wakelock"`
}

type Timer struct {
	// TickInterval is a Go duration string, "1s" by default.
	TickInterval string `toml:"tick-interval"`
	// MaxMinimized caps parked timers. 0 means unbounded.
	MaxMinimized int `toml:"max-minimized"`
}

type Notify struct {
	Enabled bool `toml:"enabled"`
	Bell    bool `toml:"bell"`
}

type WakeLock struct {
	Enabled bool `toml:"enabled"`
}

// Interval returns the parsed tick interval.
func (c *Config) Interval() time.Duration {
	d, err := time.ParseDuration(c.Timer.TickInterval)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}

// DefaultPath returns the config file location under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get config directory: %w", err)
	}
	return filepath.Join(dir, appDir, "config.toml"), nil
}

// Default returns the configuration used when no file exists.
func Default() (*Config, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("get config directory: %w", err)
	}
	return &Config{
		StateFile: filepath.Join(dir, appDir, "state.json"),
		Timer:     Timer{TickInterval: "1s"},
		Notify:    Notify{Enabled: true, Bell: true},
		WakeLock:  WakeLock{Enabled: true},
	}, nil
}

// Load reads path, falling back to DefaultPath when path is empty.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	var file Config
	meta, err := toml.Decode(string(data), &file)
	if err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown key %q in %s", ErrInvalid, undecoded[0].String(), path)
	}

	merge(cfg, &file, meta, filepath.Dir(path))
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// merge copies every key defined in the file over the defaults.
// Relative paths are resolved against the config file's directory.
func merge(cfg, file *Config, meta toml.MetaData, base string) {
	if meta.IsDefined("state-file") && strings.TrimSpace(file.StateFile) != "" {
		cfg.StateFile = resolvePath(base, file.StateFile)
	}
	if meta.IsDefined("log-file") {
		cfg.LogFile = ""
		if strings.TrimSpace(file.LogFile) != "" {
			cfg.LogFile = resolvePath(base, file.LogFile)
		}
	}
	if meta.IsDefined("timer", "tick-interval") {
		cfg.Timer.TickInterval = strings.TrimSpace(file.Timer.TickInterval)
	}
	if meta.IsDefined("timer", "max-minimized") {
		cfg.Timer.MaxMinimized = file.Timer.MaxMinimized
	}
	if meta.IsDefined("notify", "enabled") {
		cfg.Notify.Enabled = file.Notify.Enabled
	}
	if meta.IsDefined("notify", "bell") {
		cfg.Notify.Bell = file.Notify.Bell
	}
	if meta.IsDefined("wakelock", "enabled") {
		cfg.WakeLock.Enabled = file.WakeLock.Enabled
	}
}

func (c *Config) validate() error {
	d, err := time.ParseDuration(c.Timer.TickInterval)
	if err != nil {
		return fmt.Errorf("%w: tick-interval %q: %v", ErrInvalid, c.Timer.TickInterval, err)
	}
	if d <= 0 {
		return fmt.Errorf("%w: tick-interval must be positive", ErrInvalid)
	}
	if c.Timer.MaxMinimized < 0 {
		return fmt.Errorf("%w: max-minimized must not be negative", ErrInvalid)
	}
	return nil
}

func resolvePath(base, path string) string {
	path = strings.TrimSpace(path)
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
