package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/YordanOpenShield/pc-activity-simulator/internal/platform"
)

// FileName is the TOML config file for user preferences
const FileName = "config.toml"

// UserConfig represents user-facing configuration in TOML format.
// Zero values mean "use the default"; the accessor methods apply them so a
// partially filled config file behaves sensibly.
type UserConfig struct {
	// Activity selects what the periodic loop does: "mouse" (small cursor
	// jiggle) or "editor" (type into the tagged editor tab)
	Activity string `toml:"activity"`

	// IntervalMinutes is the pause between activities (default: 4)
	IntervalMinutes float64 `toml:"interval_minutes"`

	// PreventSleep asks the OS to stay awake while the loop runs
	PreventSleep *bool `toml:"prevent_sleep"`

	// Editor configures the target application and session discovery
	Editor EditorSettings `toml:"editor"`

	// Mouse configures the mouse jiggle activity
	Mouse MouseSettings `toml:"mouse"`

	// Typing configures the symbol typing activity
	Typing TypingSettings `toml:"typing"`

	// Logs configures debug logging
	Logs LogSettings `toml:"logs"`
}

// EditorSettings tunes session discovery inside the target editor.
type EditorSettings struct {
	// Executable is the editor binary; empty selects the platform default
	// (notepad.exe on Windows, TextEdit on macOS, gedit elsewhere)
	Executable string `toml:"executable"`

	// WindowHint is the substring identifying the editor's windows.
	// Derived from the executable name when empty.
	WindowHint string `toml:"window_hint"`

	// Marker is the tag embedded in the session tab's title
	// (default: "[Activity Simulation]")
	Marker string `toml:"marker"`

	// TimeoutSeconds bounds the wait for a window after launch (default: 5)
	TimeoutSeconds float64 `toml:"timeout_seconds"`

	// SettleDelayMS is the UI settle delay between gestures (default: 150)
	SettleDelayMS int `toml:"settle_delay_ms"`

	// MaxCycles caps the tab-cycling loop (default: 50)
	MaxCycles int `toml:"max_cycles"`

	// ForceClose escalates teardown to forced kills (default: false)
	ForceClose bool `toml:"force_close"`

	// CreateIfMissing creates the tagged tab when absent (default: true)
	CreateIfMissing *bool `toml:"create_if_missing"`
}

// MouseSettings tunes the mouse jiggle.
type MouseSettings struct {
	// MaxOffset is the largest per-move cursor displacement in pixels
	// (default: 5)
	MaxOffset int `toml:"max_offset"`
}

// TypingSettings tunes the symbol typing activity.
type TypingSettings struct {
	// Count is how many random symbols to type per activity (default: 8)
	Count int `toml:"count"`

	// KeyIntervalMS is the delay between key presses (default: 10)
	KeyIntervalMS int `toml:"key_interval_ms"`

	// EraseAfter removes the typed symbols again after each run
	EraseAfter bool `toml:"erase_after"`
}

// LogSettings configures the debug log.
type LogSettings struct {
	// Level is "debug", "info", "warn" or "error" (default: "info")
	Level string `toml:"level"`

	// MaxSizeMB caps a log file before rotation (default: 10)
	MaxSizeMB int `toml:"max_size_mb"`

	// MaxBackups is rotated files to keep (default: 5)
	MaxBackups int `toml:"max_backups"`
}

// GetActivity returns the configured activity kind.
func (c *UserConfig) GetActivity() string {
	switch c.Activity {
	case "mouse", "editor":
		return c.Activity
	}
	return "mouse"
}

// GetInterval returns the pause between activities.
func (c *UserConfig) GetInterval() time.Duration {
	if c.IntervalMinutes <= 0 {
		return 4 * time.Minute
	}
	d := time.Duration(c.IntervalMinutes * float64(time.Minute))
	// Anything shorter than a few seconds hammers the foreground window.
	if d < 5*time.Second {
		return 5 * time.Second
	}
	return d
}

// GetPreventSleep returns whether to hold the OS awake (default true).
func (c *UserConfig) GetPreventSleep() bool {
	if c.PreventSleep == nil {
		return true
	}
	return *c.PreventSleep
}

// GetExecutable returns the editor binary.
func (e *EditorSettings) GetExecutable() string {
	if e.Executable == "" {
		return platform.DefaultEditor()
	}
	return e.Executable
}

// GetMarker returns the session tag.
func (e *EditorSettings) GetMarker() string {
	if e.Marker == "" {
		return "[Activity Simulation]"
	}
	return e.Marker
}

// GetTimeout returns the window-appearance timeout.
func (e *EditorSettings) GetTimeout() time.Duration {
	if e.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(e.TimeoutSeconds * float64(time.Second))
}

// GetSettleDelay returns the gesture settle delay.
func (e *EditorSettings) GetSettleDelay() time.Duration {
	if e.SettleDelayMS <= 0 {
		return 150 * time.Millisecond
	}
	return time.Duration(e.SettleDelayMS) * time.Millisecond
}

// GetMaxCycles returns the tab-cycling cap.
func (e *EditorSettings) GetMaxCycles() int {
	if e.MaxCycles <= 0 {
		return 50
	}
	return e.MaxCycles
}

// GetCreateIfMissing returns whether to create the tagged tab (default true).
func (e *EditorSettings) GetCreateIfMissing() bool {
	if e.CreateIfMissing == nil {
		return true
	}
	return *e.CreateIfMissing
}

// GetMaxOffset returns the jiggle amplitude.
func (m *MouseSettings) GetMaxOffset() int {
	if m.MaxOffset <= 0 {
		return 5
	}
	return m.MaxOffset
}

// GetCount returns the symbols-per-activity count.
func (t *TypingSettings) GetCount() int {
	if t.Count <= 0 {
		return 8
	}
	return t.Count
}

// GetKeyInterval returns the inter-key delay.
func (t *TypingSettings) GetKeyInterval() time.Duration {
	if t.KeyIntervalMS <= 0 {
		return 10 * time.Millisecond
	}
	return time.Duration(t.KeyIntervalMS) * time.Millisecond
}

// Dir returns the per-user config/state directory, creating it if needed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home dir: %w", err)
	}
	dir := filepath.Join(home, ".pc-activity-simulator")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating config dir: %w", err)
	}
	return dir, nil
}

// Load reads the config file from dir. A missing file yields the zero
// config (all defaults), not an error.
func Load(dir string) (*UserConfig, error) {
	var cfg UserConfig
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes the config file to dir.
func Save(dir string, cfg *UserConfig) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
