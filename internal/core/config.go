package core

import "time"

// RuntimeConfig contains the values the engine reads once when a session and
// its game thread are constructed. They are treated as constant afterwards.
type RuntimeConfig struct {
	ScreenW      int           // Screen width in characters
	ScreenH      int           // Screen height in characters
	TickDelay    time.Duration // Fixed sleep between two session updates
	Intermission time.Duration // Environment-free pause between levels
	RefreshRate  int           // View repaints per second
	Seed         int64         // RNG seed for deterministic gameplay
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:      80,
		ScreenH:      24,
		TickDelay:    40 * time.Millisecond,
		Intermission: 5 * time.Second,
		RefreshRate:  25,
		Seed:         0, // 0 means use current time in platform layer
	}
}

// RefreshInterval returns the delay between two repaints.
func (c RuntimeConfig) RefreshInterval() time.Duration {
	rate := c.RefreshRate
	if rate <= 0 {
		rate = 25
	}
	return time.Second / time.Duration(rate)
}
