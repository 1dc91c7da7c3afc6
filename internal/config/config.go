// Package config provides YAML-based engine configuration with embedded
// defaults and the usual search order (flag, home directory, working
// directory, embedded file).
package config

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/gridrunner/internal/core"
)

// Config is the full gridrunner configuration.
type Config struct {
	Engine     EngineConfig        `yaml:"engine"`
	Game       string              `yaml:"game"`
	LevelsDir  string              `yaml:"levels_dir"`
	StartLevel string              `yaml:"start_level"`
	LogLevel   string              `yaml:"log_level"`
	DBPath     string              `yaml:"db_path"`
	Sound      SoundConfig         `yaml:"sound"`
	Dialog     DialogConfig        `yaml:"dialog"`
	Server     ServerConfig        `yaml:"server"`
	Keys       map[string][]string `yaml:"keys"`
}

// EngineConfig holds the timing parameters. They are read once when a
// session starts.
type EngineConfig struct {
	TickDelayMS    int   `yaml:"tick_delay_ms"`
	IntermissionMS int   `yaml:"intermission_ms"`
	RefreshHz      int   `yaml:"refresh_hz"`
	Seed           int64 `yaml:"seed"` // 0 = random based on time
}

// SoundConfig selects the sound backends.
type SoundConfig struct {
	Enabled bool     `yaml:"enabled"`
	Bell    []string `yaml:"bell"` // sounds that ring the terminal bell
}

// DialogConfig tunes level dialogs.
type DialogConfig struct {
	CharsPerTick int `yaml:"chars_per_tick"`
	AutoAdvance  int `yaml:"auto_advance_ticks"` // 0 = wait for confirm
}

// ServerConfig configures the SSH server.
type ServerConfig struct {
	Address        string `yaml:"address"`
	HostKeyPath    string `yaml:"host_key"`
	IdleTimeoutMin int    `yaml:"idle_timeout_min"`
}

// TickDelay returns the game thread delay.
func (c Config) TickDelay() time.Duration {
	return time.Duration(c.Engine.TickDelayMS) * time.Millisecond
}

// Intermission returns the pause between levels.
func (c Config) Intermission() time.Duration {
	return time.Duration(c.Engine.IntermissionMS) * time.Millisecond
}

// Runtime converts the engine section into a core.RuntimeConfig for a
// screen of the given size.
func (c Config) Runtime(screenW, screenH int) core.RuntimeConfig {
	return core.RuntimeConfig{
		ScreenW:      screenW,
		ScreenH:      screenH,
		TickDelay:    c.TickDelay(),
		Intermission: c.Intermission(),
		RefreshRate:  c.Engine.RefreshHz,
		Seed:         c.Engine.Seed,
	}
}

// Level parses LogLevel, falling back to info.
func (c Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Engine.TickDelayMS <= 0 {
		return fmt.Errorf("config: engine.tick_delay_ms must be positive, got %d", c.Engine.TickDelayMS)
	}
	if c.Engine.IntermissionMS < 0 {
		return fmt.Errorf("config: engine.intermission_ms must not be negative, got %d", c.Engine.IntermissionMS)
	}
	if c.Engine.RefreshHz <= 0 || c.Engine.RefreshHz > 120 {
		return fmt.Errorf("config: engine.refresh_hz must be in 1..120, got %d", c.Engine.RefreshHz)
	}
	if c.Dialog.CharsPerTick < 0 || c.Dialog.AutoAdvance < 0 {
		return fmt.Errorf("config: dialog values must not be negative")
	}
	if c.LogLevel != "" {
		if _, err := log.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("config: log_level: %w", err)
		}
	}
	for action, keys := range c.Keys {
		if len(keys) == 0 {
			return fmt.Errorf("config: keys.%s has no keys", action)
		}
	}
	return nil
}
