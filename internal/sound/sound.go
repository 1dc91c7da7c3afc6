// Package sound adapts sound backends to engine.SoundEngine. Backends may
// fail; Safe makes sure failures never reach the simulation.
package sound

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/zyedidia/generic/mapset"

	"github.com/vovakirdan/gridrunner/internal/engine"
)

// Player is a backend that can fail.
type Player interface {
	Play(name string) error
	Loop(name string) error
}

// Safe wraps p so that errors and panics are logged and dropped.
func Safe(p Player, logger *log.Logger) *SafeEngine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &SafeEngine{player: p, log: logger.WithPrefix("sound")}
}

// SafeEngine implements engine.SoundEngine on top of a Player.
type SafeEngine struct {
	player Player
	log    *log.Logger
}

// PlaySound implements engine.SoundEngine.
func (s *SafeEngine) PlaySound(name string) {
	s.call("play", name, s.player.Play)
}

// LoopSound implements engine.SoundEngine.
func (s *SafeEngine) LoopSound(name string) {
	s.call("loop", name, s.player.Loop)
}

func (s *SafeEngine) call(op, name string, f func(string) error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Warn("sound backend panicked", "op", op, "sound", name, "panic", r)
		}
	}()
	if err := f(name); err != nil {
		s.log.Warn("sound failed", "op", op, "sound", name, "err", err)
	}
}

// Bell rings the terminal bell for a chosen set of sounds. Other sounds are
// ignored; loops ring once.
type Bell struct {
	mu    sync.Mutex
	w     io.Writer
	names mapset.Set[string]
}

// NewBell creates a bell writing to w that rings for the given sound names.
func NewBell(w io.Writer, names ...string) *Bell {
	set := mapset.New[string]()
	for _, n := range names {
		set.Put(n)
	}
	return &Bell{w: w, names: set}
}

// Play implements Player.
func (b *Bell) Play(name string) error {
	if !b.names.Has(name) {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := io.WriteString(b.w, "\a"); err != nil {
		return fmt.Errorf("sound: bell: %w", err)
	}
	return nil
}

// Loop implements Player.
func (b *Bell) Loop(name string) error {
	return b.Play(name)
}

// Log records sounds in the log instead of playing them.
type Log struct {
	log *log.Logger
}

// NewLog creates a Log player.
func NewLog(logger *log.Logger) *Log {
	return &Log{log: logger}
}

// Play implements Player.
func (l *Log) Play(name string) error {
	l.log.Debug("play", "sound", name)
	return nil
}

// Loop implements Player.
func (l *Log) Loop(name string) error {
	l.log.Debug("loop", "sound", name)
	return nil
}

// Multi plays every sound on all players, collecting the first error.
type Multi []Player

// Play implements Player.
func (m Multi) Play(name string) error {
	var first error
	for _, p := range m {
		if err := p.Play(name); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Loop implements Player.
func (m Multi) Loop(name string) error {
	var first error
	for _, p := range m {
		if err := p.Loop(name); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Mute discards every sound.
type Mute struct{}

// PlaySound implements engine.SoundEngine.
func (Mute) PlaySound(string) {}

// LoopSound implements engine.SoundEngine.
func (Mute) LoopSound(string) {}

var (
	_ engine.SoundEngine = (*SafeEngine)(nil)
	_ engine.SoundEngine = Mute{}
)
