// Package maze is the bundled demo game: collect coins, avoid the guards and
// find the exit of every level.
package maze

import (
	"embed"
	"math/rand"
	"strconv"

	"github.com/vovakirdan/gridrunner/internal/core"
	"github.com/vovakirdan/gridrunner/internal/engine"
	"github.com/vovakirdan/gridrunner/internal/env"
	"github.com/vovakirdan/gridrunner/internal/level"
	"github.com/vovakirdan/gridrunner/internal/registry"
	"github.com/vovakirdan/gridrunner/internal/sound"
)

//go:embed levels/*.yaml
var levelFS embed.FS

// Sound names played by the maze.
const (
	SoundCoin   = "coin"
	SoundCaught = "caught"
)

// Tunables shared by every level unless a spawn overrides them.
const (
	DefaultCoinValue   = 10
	DefaultChaserSight = 5 // cells
	DefaultChaserEvery = 2 // ticks per base-unit step
	DefaultSpawnEvery  = 300
	DefaultSpawnMax    = 3
)

// Game implements registry.Game for the maze.
type Game struct {
	coinValue float64
}

// New creates a maze game.
func New() *Game {
	return &Game{coinValue: DefaultCoinValue}
}

func init() {
	registry.Register("maze", func() registry.Game { return New() })
}

// ID returns the game identifier.
func (g *Game) ID() string { return "maze" }

// Title returns the display name.
func (g *Game) Title() string { return "Maze Runner" }

// Levels returns the built-in levels, or the level files under dir.
func (g *Game) Levels(dir, start string) (level.Manager, error) {
	if dir == "" {
		return level.NewFSLoader(levelFS, "levels").Manager(start)
	}
	return level.LoadDir(dir, start)
}

// NewEnvironment builds the environment of one level. Objects come from
// markers in the layout, from the level's spawn list, and from the "coins"
// metadata entry which scatters that many coins on random free cells.
func (g *Game) NewEnvironment(lvl *level.GameLevel, ctx engine.EnvContext) (*env.CellEnvironment, error) {
	const op = "maze.NewEnvironment"

	cells := env.NewCellEnvironment(env.CellConfig{
		Width:    lvl.Width(),
		Height:   lvl.Height(),
		CellSize: lvl.CellSize,
		Fill:     CellWall,
		Seed:     ctx.Seed,
	}, env.CellRulesFunc(allowed))
	cells.SetLevel(lvl)

	w := &world{
		cells:     cells,
		sound:     ctx.Sound,
		rng:       rand.New(rand.NewSource(ctx.Seed)),
		coinValue: g.coinValue,
	}
	if w.sound == nil {
		w.sound = sound.Mute{}
	}
	if ctx.Session != nil {
		w.session = ctx.Session
	}

	if start, ok := cells.FindFirstCellLocationMatchingContents(markPlayer); ok {
		w.player = w.newPlayer(start)
		cells.SetCell(start.X, start.Y, CellFloor)
		cells.AddObject(w.player)
	}

	for cy, n := 0, cells.CellHeight(); cy < n; cy++ {
		for cx, n := 0, cells.CellWidth(); cx < n; cx++ {
			at := core.L(cx, cy)
			switch cells.Cell(cx, cy) {
			case markCoin:
				cells.AddObject(w.newCoin(at, g.coinValue))
			case markChaser:
				cells.AddObject(w.newChaser(at, DefaultChaserSight, DefaultChaserEvery))
			case markSpawner:
				cells.AddObject(w.newSpawner(at, DefaultSpawnEvery, DefaultSpawnMax))
			case markPlayer:
				return nil, core.Errorf(op, "level %q has more than one player start", lvl.ID)
			default:
				continue
			}
			cells.SetCell(cx, cy, CellFloor)
		}
	}

	for _, sp := range lvl.Spawns {
		if err := w.spawn(sp); err != nil {
			return nil, core.Wrap(err, op, "level %q", lvl.ID)
		}
	}

	for _, l := range lvl.Links {
		switch l.Kind {
		case level.LinkExit:
			cells.SetCell(l.At.X, l.At.Y, CellExit)
		case level.LinkJump:
			cells.SetCell(l.At.X, l.At.Y, CellTeleport)
		}
	}

	if w.player == nil {
		return nil, core.Errorf(op, "level %q has no player start", lvl.ID)
	}
	if err := cells.SetControlled(w.player); err != nil {
		return nil, core.Wrap(err, op, "level %q", lvl.ID)
	}

	coins, err := metaInt(lvl.Metadata, "coins", 0)
	if err != nil {
		return nil, core.Wrap(err, op, "level %q", lvl.ID)
	}
	w.scatterCoins(coins)

	return cells, nil
}

// spawnFunc builds the object a level file names at sp.At.
type spawnFunc func(w *world, sp level.Spawn) error

// spawnKinds holds the object kinds level files may spawn.
var spawnKinds = registry.NewTable[spawnFunc]("spawn kind")

func init() {
	spawnKinds.Register("player", func(w *world, sp level.Spawn) error {
		if w.player != nil {
			return core.Errorf("maze.spawn", "second player at %s", sp.At)
		}
		w.player = w.newPlayer(sp.At)
		w.cells.AddObject(w.player)
		return nil
	})
	spawnKinds.Register("coin", func(w *world, sp level.Spawn) error {
		value, err := metaInt(sp.Args, "value", int(w.coinValue))
		if err != nil {
			return err
		}
		w.cells.AddObject(w.newCoin(sp.At, float64(value)))
		return nil
	})
	spawnKinds.Register("chaser", func(w *world, sp level.Spawn) error {
		sight, err := metaInt(sp.Args, "sight", DefaultChaserSight)
		if err != nil {
			return err
		}
		every, err := metaInt(sp.Args, "every", DefaultChaserEvery)
		if err != nil {
			return err
		}
		w.cells.AddObject(w.newChaser(sp.At, sight, every))
		return nil
	})
	spawnKinds.Register("spawner", func(w *world, sp level.Spawn) error {
		every, err := metaInt(sp.Args, "every", DefaultSpawnEvery)
		if err != nil {
			return err
		}
		limit, err := metaInt(sp.Args, "max", DefaultSpawnMax)
		if err != nil {
			return err
		}
		w.cells.AddObject(w.newSpawner(sp.At, every, limit))
		return nil
	})
}

// SpawnKinds lists the object kinds a level file may spawn.
func SpawnKinds() []string { return spawnKinds.Keys() }

// spawn places one object listed in the level file.
func (w *world) spawn(sp level.Spawn) error {
	if !w.cells.IsValidCell(sp.At.X, sp.At.Y) {
		return core.Errorf("maze.spawn", "%s at %s is off the grid", sp.Kind, sp.At)
	}
	build, err := spawnKinds.Lookup(sp.Kind)
	if err != nil {
		return core.Wrap(err, "maze.spawn", "cannot spawn at %s", sp.At)
	}
	return build(w, sp)
}

func metaInt(m map[string]string, key string, def int) (int, error) {
	raw, ok := m[key]
	if !ok || raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, core.Wrap(err, "maze.metaInt", "bad %s value %q", key, raw)
	}
	if n < 0 {
		return 0, core.Errorf("maze.metaInt", "%s must not be negative, got %d", key, n)
	}
	return n, nil
}

// CellGlyph returns how a cell is drawn.
func (g *Game) CellGlyph(c env.CellContents) core.ScreenCell {
	switch c {
	case CellWall:
		return core.ScreenCell{Rune: '█', Color: core.ColorBlue}
	case CellFloor, CellBlank:
		return core.ScreenCell{Rune: ' '}
	case CellDoor:
		return core.ScreenCell{Rune: '+', Color: core.ColorOrange}
	case CellExit:
		return core.ScreenCell{Rune: '>', Color: core.ColorBrightGreen}
	case CellTeleport:
		return core.ScreenCell{Rune: '*', Color: core.ColorBrightMagenta}
	default:
		return core.ScreenCell{Rune: rune(c), Color: core.ColorGray}
	}
}

// ObjectGlyph returns how an object is drawn.
func (g *Game) ObjectGlyph(obj env.Object) core.ScreenCell {
	switch o := obj.(type) {
	case *Player:
		return core.ScreenCell{Rune: '@', Color: core.ColorBrightYellow}
	case *Coin:
		return core.ScreenCell{Rune: 'o', Color: core.ColorYellow}
	case *Chaser:
		if o.Chasing() {
			return core.ScreenCell{Rune: 'M', Color: core.ColorBrightRed}
		}
		return core.ScreenCell{Rune: 'm', Color: core.ColorRed}
	case *Spawner:
		return core.ScreenCell{Rune: '%', Color: core.ColorMagenta}
	default:
		return core.ScreenCell{Rune: '?', Color: core.ColorWhite}
	}
}

var _ registry.Game = (*Game)(nil)
