// Package config loads the daemon configuration.
//
// Configuration is read once at startup, before the scheduler loop begins.
// Two YAML files are layered: the system file under /etc, then the user
// file under the XDG config directory; values from the user file override
// the system file, which overrides the built-in defaults. A missing file
// is not an error.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppDir is the configuration subdirectory name.
const AppDir = "breaktimed"

// ConfigFileName is the configuration file name inside AppDir.
const ConfigFileName = "config.yaml"

// Built-in defaults.
const (
	DefaultWorkInterval  = 1800 * time.Second
	DefaultBreakDuration = 80 * time.Second
)

// ErrInvalidDuration indicates a duration value that is not positive or
// cannot be parsed.
var ErrInvalidDuration = errors.New("invalid duration value")

// Duration is a time.Duration that unmarshals from YAML as either a bare
// integer (seconds) or a string with an s or m suffix ("90s", "30m").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: expected scalar, got %v", ErrInvalidDuration, value.Kind)
	}
	parsed, err := ParseDuration(value.Value)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// ParseDuration parses "1800", "90s" or "30m" into a duration of whole
// seconds.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	unit := time.Second
	switch {
	case strings.HasSuffix(s, "m"):
		unit = time.Minute
		s = strings.TrimSuffix(s, "m")
	case strings.HasSuffix(s, "s"):
		s = strings.TrimSuffix(s, "s")
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	return time.Duration(n) * unit, nil
}

// Config holds the daemon configuration. WorkInterval and BreakDuration
// feed the timer state; the toggles and commands select which collaborators
// fire at phase transitions.
type Config struct {
	// WorkInterval is the default working interval between breaks.
	WorkInterval Duration `yaml:"work_interval"`

	// BreakDuration is the break length, fixed for the process lifetime.
	BreakDuration Duration `yaml:"break_duration"`

	// ShowPopup shows the fullscreen popup during breaks.
	ShowPopup bool `yaml:"show_popup"`

	// PlaySound plays the sound cue when a break starts and ends.
	PlaySound bool `yaml:"play_sound"`

	// ShowNotification sends a desktop notification shortly before a
	// naturally scheduled break.
	ShowNotification bool `yaml:"show_notification"`

	// TurnOffMonitors powers the attached displays off during breaks.
	TurnOffMonitors bool `yaml:"turn_off_monitors"`

	// SoundCommand is the external command playing the sound cue.
	SoundCommand []string `yaml:"sound_command"`

	// PopupCommand is the external command rendering the popup surface.
	// Empty means no popup process; the break is a plain wait.
	PopupCommand []string `yaml:"popup_command"`

	// MonitorOffCommand and MonitorOnCommand control display power.
	MonitorOffCommand []string `yaml:"monitor_off_command"`
	MonitorOnCommand  []string `yaml:"monitor_on_command"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		WorkInterval:      Duration(DefaultWorkInterval),
		BreakDuration:     Duration(DefaultBreakDuration),
		ShowPopup:         true,
		PlaySound:         true,
		ShowNotification:  true,
		TurnOffMonitors:   false,
		SoundCommand:      []string{"paplay", "/usr/share/sounds/freedesktop/stereo/complete.oga"},
		MonitorOffCommand: []string{"niri", "msg", "action", "power-off-monitors"},
		MonitorOnCommand:  []string{"niri", "msg", "action", "power-on-monitors"},
	}
}

// Load reads the layered configuration: defaults, then the system file,
// then the user file. Missing files are ignored; any other read or parse
// error is returned.
func Load() (Config, error) {
	cfg := Default()

	if err := mergeFile(&cfg, filepath.Join("/etc", AppDir, ConfigFileName)); err != nil {
		return Config{}, err
	}

	userDir, err := os.UserConfigDir()
	if err != nil {
		return Config{}, fmt.Errorf("locate user config dir: %w", err)
	}
	if err := mergeFile(&cfg, filepath.Join(userDir, AppDir, ConfigFileName)); err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

// LoadFile reads a single configuration file over the defaults. Used when
// the daemon is started with an explicit -config flag.
func LoadFile(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		return Config{}, fmt.Errorf("config file %s: %w", path, err)
	}
	cfg := Default()
	if err := mergeFile(&cfg, path); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate checks invariants the timer state depends on.
func (c *Config) Validate() error {
	if c.WorkInterval.Std() < time.Second {
		return fmt.Errorf("%w: work_interval must be at least 1s", ErrInvalidDuration)
	}
	if c.BreakDuration.Std() < time.Second {
		return fmt.Errorf("%w: break_duration must be at least 1s", ErrInvalidDuration)
	}
	return nil
}

// mergeFile unmarshals path into cfg, keeping existing values for absent
// keys. A missing file leaves cfg untouched.
func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}
