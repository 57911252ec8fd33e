// Package config defines the RunningText configuration format and helpers for
// loading or saving it to disk.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

const (
	// AppID is the stable application identifier used for config storage.
	AppID = "runningtext"
	// AppConfigSubdir is the OS-specific directory that holds the config file.
	AppConfigSubdir = "RunningText"
	// AppConfigName is the JSON file stored on disk.
	AppConfigName = "config.json"

	// DefaultText is shown when nothing else is configured.
	DefaultText = "This is a demo running text :)"
	// DefaultSpeed is the scroll speed in pixels per frame.
	DefaultSpeed = 2
	// DefaultSpacing is the requested gap between repetitions in pixels.
	DefaultSpacing = 48
	// DefaultTextSize of 0 means "use the theme text size".
	DefaultTextSize = 0
	// DefaultWidth is the preferred window width when no persisted value exists.
	DefaultWidth = 480
	// MinWindowWidth keeps the fading edges and controls visible.
	MinWindowWidth = 240
	// MaxSpeed caps the scroll speed; faster text is unreadable.
	MaxSpeed = 40
)

// ErrInvalidConfig marks values that can not be used even after defaults.
var ErrInvalidConfig = errors.New("invalid config")

// Config aggregates every user-facing preference persisted between sessions.
type Config struct {
	Text         string  `json:"text"`
	Source       string  `json:"source,omitempty"`
	Speed        float32 `json:"speed"`
	Spacing      float32 `json:"spacing"`
	TextSize     float32 `json:"textSize,omitempty"`
	OverflowOnly bool    `json:"overflowOnly,omitempty"`
	Paused       bool    `json:"paused,omitempty"`
	WindowW      int     `json:"windowW"`

	path string
}

// ConfigDir resolves the writable directory that should contain the config file.
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppConfigSubdir), nil
}

// ConfigPath is a helper that returns the full path to config.json.
func ConfigPath() (string, error) {
	d, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, AppConfigName), nil
}

// Load reads the config from the user config directory, creating it with
// defaults when it does not exist yet.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the config at path. A missing file yields defaults, which
// are saved there on a best-effort basis.
func LoadFile(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.path = path
			// Try saving an initial config, but still return defaults even if it fails.
			_ = cfg.Save()
			return cfg, nil
		}
		return nil, err
	}

	// keys missing from the file keep these values; an explicit 0 still pauses
	cfg := &Config{Speed: DefaultSpeed, Spacing: DefaultSpacing, path: path}
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config parse error: %w", err)
	}
	cfg.applyRuntimeDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save persists the configuration to the file it was loaded from (or the
// default location), creating directories as needed.
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Path returns the file backing the config, empty for in-memory configs.
func (c *Config) Path() string { return c.path }

// Default builds an in-memory config populated with safe defaults.
func Default() *Config {
	cfg := &Config{
		Text:    DefaultText,
		Speed:   DefaultSpeed,
		Spacing: DefaultSpacing,
		WindowW: DefaultWidth,
	}
	cfg.applyRuntimeDefaults()
	return cfg
}

// applyRuntimeDefaults normalizes values after a load so the UI always
// receives sane inputs.
func (c *Config) applyRuntimeDefaults() {
	c.Text = strings.TrimSpace(c.Text)
	if c.Text == "" && strings.TrimSpace(c.Source) == "" {
		c.Text = DefaultText
	}
	if c.Speed > MaxSpeed {
		c.Speed = MaxSpeed
	}
	if c.WindowW == 0 {
		c.WindowW = DefaultWidth
	}
	if c.WindowW < MinWindowWidth {
		c.WindowW = MinWindowWidth
	}
}

// Validate rejects values no default can repair.
func (c *Config) Validate() error {
	switch {
	case !finite(c.Speed) || c.Speed < 0:
		return fmt.Errorf("%w: speed %v", ErrInvalidConfig, c.Speed)
	case !finite(c.Spacing) || c.Spacing < 0:
		return fmt.Errorf("%w: spacing %v", ErrInvalidConfig, c.Spacing)
	case !finite(c.TextSize) || c.TextSize < 0:
		return fmt.Errorf("%w: text size %v", ErrInvalidConfig, c.TextSize)
	}
	return nil
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
