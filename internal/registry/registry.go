// Package registry maps symbolic keys to constructors. Games register
// themselves in init() functions so the platform can build them by the id
// given on the command line or in the configuration file, and games use the
// same tables to build the objects their level files name.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/gridrunner/internal/core"
	"github.com/vovakirdan/gridrunner/internal/engine"
	"github.com/vovakirdan/gridrunner/internal/env"
	"github.com/vovakirdan/gridrunner/internal/level"
)

// Table is a concurrency-safe map from symbolic keys to constructors of
// type F. The zero value is not usable; call NewTable.
type Table[F any] struct {
	what    string // used in error messages, e.g. "game"
	mu      sync.RWMutex
	entries map[string]F
}

// NewTable creates an empty table. what names the kind of entry.
func NewTable[F any](what string) *Table[F] {
	return &Table[F]{what: what, entries: make(map[string]F)}
}

// Register adds f under key. Registering a key twice is a wiring error and
// panics.
func (t *Table[F]) Register(key string, f F) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.entries[key]; exists {
		panic(fmt.Sprintf("registry: %s %q already registered", t.what, key))
	}
	t.entries[key] = f
}

// Lookup returns the constructor registered under key.
func (t *Table[F]) Lookup(key string) (F, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	f, ok := t.entries[key]
	if !ok {
		var zero F
		return zero, fmt.Errorf("registry: unknown %s %q", t.what, key)
	}
	return f, nil
}

// Has reports whether key is registered.
func (t *Table[F]) Has(key string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.entries[key]
	return ok
}

// Keys returns the registered keys in sorted order.
func (t *Table[F]) Keys() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	keys := make([]string, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (t *Table[F]) remove(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, key)
}

// Game is what a game package contributes to the engine: its levels, the
// environments built from them, and how cells and objects look.
type Game interface {
	// ID returns a unique identifier for this game (e.g., "maze").
	// Used for CLI commands and run storage.
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Levels returns the level manager. An empty dir selects the levels
	// built into the game; otherwise level files are read from dir.
	Levels(dir, start string) (level.Manager, error)

	// NewEnvironment builds the environment of one level.
	engine.EnvironmentFactory

	// CellGlyph returns how a cell is drawn.
	CellGlyph(c env.CellContents) core.ScreenCell

	// ObjectGlyph returns how an object is drawn.
	ObjectGlyph(obj env.Object) core.ScreenCell
}

// GameInfo contains metadata about a registered game.
type GameInfo struct {
	ID    string
	Title string
}

// Factory creates a new instance of a game.
type Factory func() Game

var (
	games  = NewTable[Factory]("game")
	titles sync.Map // id -> title, filled on registration
)

// Register adds a game factory. Typically called from a game's init().
// Panics if a game with the same ID is already registered.
func Register(id string, f Factory) {
	games.Register(id, f)
	titles.Store(id, f().Title())
}

// List returns information about all registered games, sorted by ID.
func List() []GameInfo {
	ids := games.Keys()
	result := make([]GameInfo, 0, len(ids))
	for _, id := range ids {
		title, _ := titles.Load(id)
		s, _ := title.(string)
		result = append(result, GameInfo{ID: id, Title: s})
	}
	return result
}

// Create instantiates a new game by its ID.
func Create(id string) (Game, error) {
	f, err := games.Lookup(id)
	if err != nil {
		return nil, err
	}
	return f(), nil
}

// Exists checks if a game with the given ID is registered.
func Exists(id string) bool {
	return games.Has(id)
}

// unregister removes a game. Only tests use it.
func unregister(id string) {
	games.remove(id)
	titles.Delete(id)
}
