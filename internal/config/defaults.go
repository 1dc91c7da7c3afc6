package config

import (
	_ "embed"

	"github.com/vovakirdan/gridrunner/internal/core"
)

//go:embed defaults/gridrunner.yaml
var defaultYAML []byte

// DefaultConfig returns the hardcoded configuration, used when even the
// embedded file cannot be parsed.
func DefaultConfig() Config {
	rt := core.DefaultConfig()
	return Config{
		Engine: EngineConfig{
			TickDelayMS:    int(rt.TickDelay.Milliseconds()),
			IntermissionMS: int(rt.Intermission.Milliseconds()),
			RefreshHz:      rt.RefreshRate,
		},
		Game:     "maze",
		LogLevel: "info",
		DBPath:   "~/.gridrunner/runs.db",
		Sound: SoundConfig{
			Enabled: true,
			Bell:    []string{"caught"},
		},
		Dialog: DialogConfig{
			CharsPerTick: 2,
			AutoAdvance:  50,
		},
		Server: ServerConfig{
			Address:        ":23234",
			IdleTimeoutMin: 30,
		},
		Keys: DefaultKeys(),
	}
}

// DefaultKeys maps action names to key strings as Bubble Tea reports them.
func DefaultKeys() map[string][]string {
	return map[string][]string{
		core.ActionUp:      {"up", "k", "w"},
		core.ActionDown:    {"down", "j", "s"},
		core.ActionLeft:    {"left", "h", "a"},
		core.ActionRight:   {"right", "l", "d"},
		core.ActionFire:    {"space"},
		core.ActionConfirm: {"enter"},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}
