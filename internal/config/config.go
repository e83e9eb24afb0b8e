// Package config loads and validates the slimwm configuration: the launcher
// command, desktop and icon parameters, key bindings, and per-class window
// actions.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// HotkeyTarget selects which window a keyboard action applies to.
type HotkeyTarget string

const (
	// TargetFocus applies keyboard actions to the focused client.
	TargetFocus HotkeyTarget = "focus"
	// TargetMouse applies keyboard actions to the client under the pointer.
	TargetMouse HotkeyTarget = "mouse"
)

// ClassAction describes what happens to a newly managed window whose class
// matches. An explicit relative position overrides a configured snap when
// both are set.
type ClassAction struct {
	Stick    bool     `yaml:"stick,omitempty"`
	Maximize bool     `yaml:"maximize,omitempty"`
	Layer    int      `yaml:"layer,omitempty"` // 0 leaves the layer alone
	Snap     string   `yaml:"snap,omitempty"`  // left, right, top or bottom
	XRel     *float64 `yaml:"x_relative,omitempty"`
	YRel     *float64 `yaml:"y_relative,omitempty"`
}

// Config holds the application configuration.
type Config struct {
	Shell        string                 `yaml:"shell"`
	Desktops     int                    `yaml:"desktops"`
	IconWidth    int                    `yaml:"icon_width"`
	IconHeight   int                    `yaml:"icon_height"`
	BorderWidth  int                    `yaml:"border_width"`
	ShowIcons    *bool                  `yaml:"show_icons"`
	HotkeyTarget HotkeyTarget           `yaml:"hotkey_target"`
	LogLevel     string                 `yaml:"log_level"`
	NoAutofocus  []string               `yaml:"no_autofocus"`
	Bindings     map[string]string      `yaml:"bindings"`
	ClassActions map[string]ClassAction `yaml:"class_actions"`
}

// ValidationError reports an invalid configuration value by its YAML path.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Shell:        "xterm",
		Desktops:     5,
		IconWidth:    75,
		IconHeight:   20,
		BorderWidth:  2,
		HotkeyTarget: TargetFocus,
		LogLevel:     "info",
		Bindings:     map[string]string{},
		ClassActions: map[string]ClassAction{},
	}
}

// GetShowIcons returns the effective value, defaulting to true.
func (c *Config) GetShowIcons() bool {
	if c == nil || c.ShowIcons == nil {
		return true
	}
	return *c.ShowIcons
}

// DefaultConfigPath returns the standard config file location.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "slimwm", "config.yaml"), nil
}

// Load reads the configuration from the standard location. A missing file
// yields the defaults.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads and validates the configuration at path. A missing file
// yields the defaults; unknown keys are rejected.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var raw Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.merge(&raw)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// merge overlays the values present in src onto c. Zero values in src mean
// "not set" and leave the default in place; bindings and class actions are
// merged per key.
func (c *Config) merge(src *Config) {
	if src.Shell != "" {
		c.Shell = src.Shell
	}
	if src.Desktops != 0 {
		c.Desktops = src.Desktops
	}
	if src.IconWidth != 0 {
		c.IconWidth = src.IconWidth
	}
	if src.IconHeight != 0 {
		c.IconHeight = src.IconHeight
	}
	if src.BorderWidth != 0 {
		c.BorderWidth = src.BorderWidth
	}
	if src.ShowIcons != nil {
		c.ShowIcons = src.ShowIcons
	}
	if src.HotkeyTarget != "" {
		c.HotkeyTarget = src.HotkeyTarget
	}
	if src.LogLevel != "" {
		c.LogLevel = src.LogLevel
	}
	if src.NoAutofocus != nil {
		c.NoAutofocus = src.NoAutofocus
	}
	for action, key := range src.Bindings {
		c.Bindings[action] = key
	}
	for class, act := range src.ClassActions {
		c.ClassActions[class] = act
	}
}

// Validate checks the effective configuration and returns a ValidationError
// naming the first offending field.
func (c *Config) Validate() error {
	if c.Shell == "" {
		return &ValidationError{Path: "shell", Err: fmt.Errorf("must not be empty")}
	}
	if c.Desktops < 1 {
		return &ValidationError{Path: "desktops", Err: fmt.Errorf("must be at least 1, got %d", c.Desktops)}
	}
	if c.IconWidth < 1 {
		return &ValidationError{Path: "icon_width", Err: fmt.Errorf("must be at least 1, got %d", c.IconWidth)}
	}
	if c.IconHeight < 1 {
		return &ValidationError{Path: "icon_height", Err: fmt.Errorf("must be at least 1, got %d", c.IconHeight)}
	}
	if c.BorderWidth < 0 {
		return &ValidationError{Path: "border_width", Err: fmt.Errorf("must not be negative, got %d", c.BorderWidth)}
	}
	switch c.HotkeyTarget {
	case TargetFocus, TargetMouse:
	default:
		return &ValidationError{Path: "hotkey_target", Err: fmt.Errorf("must be %q or %q, got %q", TargetFocus, TargetMouse, c.HotkeyTarget)}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("must be one of debug, info, warn, error; got %q", c.LogLevel)}
	}

	for action, key := range c.Bindings {
		if !IsAction(action) {
			return &ValidationError{Path: "bindings." + action, Err: fmt.Errorf("unknown action")}
		}
		if key == "" {
			return &ValidationError{Path: "bindings." + action, Err: fmt.Errorf("key must not be empty")}
		}
	}

	for class, act := range c.ClassActions {
		switch act.Snap {
		case "", "left", "right", "top", "bottom":
		default:
			return &ValidationError{Path: "class_actions." + class + ".snap", Err: fmt.Errorf("must be left, right, top or bottom; got %q", act.Snap)}
		}
		if act.Layer != 0 && (act.Layer < 1 || act.Layer > 9) {
			return &ValidationError{Path: "class_actions." + class + ".layer", Err: fmt.Errorf("must be between 1 and 9, got %d", act.Layer)}
		}
		if act.XRel != nil && (*act.XRel < 0 || *act.XRel > 1) {
			return &ValidationError{Path: "class_actions." + class + ".x_relative", Err: fmt.Errorf("must be between 0 and 1, got %v", *act.XRel)}
		}
		if act.YRel != nil && (*act.YRel < 0 || *act.YRel > 1) {
			return &ValidationError{Path: "class_actions." + class + ".y_relative", Err: fmt.Errorf("must be between 0 and 1, got %v", *act.YRel)}
		}
	}
	return nil
}
