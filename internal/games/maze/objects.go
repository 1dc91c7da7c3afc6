package maze

import (
	"math/rand"

	"github.com/vovakirdan/gridrunner/internal/core"
	"github.com/vovakirdan/gridrunner/internal/engine"
	"github.com/vovakirdan/gridrunner/internal/env"
	"github.com/vovakirdan/gridrunner/internal/fsm"
	"github.com/vovakirdan/gridrunner/internal/pathfind"
)

type ender interface {
	End(reason string)
}

// world is the state shared by the objects of one level.
type world struct {
	cells     *env.CellEnvironment
	sound     engine.SoundEngine
	session   ender
	rng       *rand.Rand
	player    *Player
	coinValue float64
	caught    bool
}

func (w *world) at(cell core.Location) (int, int) {
	p := cell.Scale(w.cells.CellSize())
	return p.X, p.Y
}

func (w *world) newPlayer(cell core.Location) *Player {
	x, y := w.at(cell)
	return &Player{
		ControllableBase: env.NewControllableBase(w.cells.IDs().Next(), "player", x, y, w.cells.CellSize()),
		w:                w,
	}
}

func (w *world) newCoin(cell core.Location, value float64) *Coin {
	x, y := w.at(cell)
	c := &Coin{Base: env.NewBase(w.cells.IDs().Next(), "coin", x, y, w.cells.CellSize())}
	c.Properties().Set("value", int(value))
	return c
}

func (w *world) newChaser(cell core.Location, sight, every int) *Chaser {
	x, y := w.at(cell)
	if every < 1 {
		every = 1
	}
	c := &Chaser{
		AgentBase: env.NewAgentBase(w.cells.IDs().Next(), "chaser", x, y, w.cells.CellSize()),
		w:         w,
		brain:     newChaserBrain(),
		finder:    pathfind.New(w.cells),
		sight:     sight,
		every:     every,
	}
	return c
}

func (w *world) newSpawner(cell core.Location, every, limit int) *Spawner {
	x, y := w.at(cell)
	if every < 1 {
		every = 1
	}
	return &Spawner{
		Base:  env.NewBase(w.cells.IDs().Next(), "spawner", x, y, w.cells.CellSize()),
		w:     w,
		every: every,
		limit: limit,
	}
}

// scatterCoins drops n coins on random free cells. Cells already holding an
// object, an exit or a teleport are skipped.
func (w *world) scatterCoins(n int) {
	probe := &Coin{Base: env.NewBase(0, "coin", 0, 0, w.cells.CellSize())}
	for placed, tries := 0, 0; placed < n && tries < env.MaxRandomTries; tries++ {
		cell, ok := w.cells.FindRandomAllowedLocationForObject(probe)
		if !ok {
			return
		}
		if w.cells.Cell(cell.X, cell.Y) != CellFloor || w.occupied(cell) {
			continue
		}
		w.cells.AddObject(w.newCoin(cell, w.coinValue))
		placed++
	}
}

func (w *world) occupied(cell core.Location) bool {
	size := w.cells.CellSize()
	box := core.NewRect(cell.X*size, cell.Y*size, size, size)
	return len(w.cells.ObjectsIntersecting(box, 0)) > 0
}

func (w *world) chasers() int {
	n := 0
	for _, obj := range w.cells.Objects() {
		if _, ok := obj.(*Chaser); ok {
			n++
		}
	}
	return n
}

// catch ends the run the first time a chaser touches the player.
func (w *world) catch() {
	if w.caught {
		return
	}
	w.caught = true
	w.sound.PlaySound(SoundCaught)
	if w.session != nil {
		w.session.End(engine.EndCaught)
	}
}

// Player is the controllable runner. It keeps moving in its heading until a
// wall stops it; a requested turn is remembered until it becomes possible.
type Player struct {
	env.ControllableBase
	w       *world
	heading core.Direction
	queued  core.Direction
}

// Heading returns the direction the player is moving in.
func (p *Player) Heading() core.Direction { return p.heading }

// Behave consumes the pending actions and picks the heading.
func (p *Player) Behave() {
	actions := p.Actions()
	for _, d := range core.Cardinals {
		if actions.Has(d.String()) {
			p.queued = d
		}
	}
	actions.ForgetAll()

	cells := p.w.cells
	if p.queued != core.DirNone && p.queued == p.heading.Opposite() {
		p.heading, p.queued = p.queued, core.DirNone
	}
	if !cells.IsCellAligned(p) {
		return
	}
	if canStep(cells, p, p.queued) {
		p.heading, p.queued = p.queued, core.DirNone
	}
	if !canStep(cells, p, p.heading) {
		p.heading = core.DirNone
	}
}

// Evolve moves one base unit and resolves what the player runs into.
func (p *Player) Evolve() {
	if canStep(p.w.cells, p, p.heading) {
		p.Step(p.heading, 1)
	}

	for _, obj := range p.w.cells.ObjectsIntersecting(p.Bounds(), p.ID()) {
		switch o := obj.(type) {
		case *Coin:
			if p.w.cells.IsMarkedForRemoval(o) {
				continue
			}
			p.AddReward(float64(o.Value()))
			p.w.cells.MarkObjectForRemoval(o)
			p.w.sound.PlaySound(SoundCoin)
		case *Chaser:
			p.w.catch()
		}
	}
}

// Coin is collected by the player for its value.
type Coin struct {
	env.Base
}

// Value returns the reward the coin is worth.
func (c *Coin) Value() int {
	return c.Properties().Int("value")
}

// Chaser states and the facts that move between them.
const (
	StateWander fsm.State = "WANDER"
	StateChase  fsm.State = "CHASE"

	factSpotted fsm.Fact = "spotted"
	factLost    fsm.Fact = "lost"
)

func newChaserBrain() *fsm.Machine {
	m := fsm.New()
	m.NewState(StateWander)
	m.NewState(StateChase)
	m.MustTransition(StateWander, StateChase, factSpotted)
	m.MustTransition(StateChase, StateWander, factLost)
	if err := m.SetInitial(StateWander); err != nil {
		panic(err)
	}
	return m
}

// Chaser wanders until the player comes within sight, then follows the
// shortest path to the player's cell. It gives up once the player is a few
// cells beyond its sight.
type Chaser struct {
	env.AgentBase
	w       *world
	brain   *fsm.Machine
	finder  *pathfind.Finder
	sight   int
	every   int
	wait    int
	heading core.Direction
}

// Chasing reports whether the chaser is hunting the player.
func (c *Chaser) Chasing() bool {
	return c.brain.IsInState(StateChase)
}

// Heading returns the direction chosen at the last cell.
func (c *Chaser) Heading() core.Direction { return c.heading }

// State returns the chaser's machine state.
func (c *Chaser) State() fsm.State {
	return c.brain.Current()
}

// Behave chooses a heading whenever the chaser stands exactly on a cell.
func (c *Chaser) Behave() {
	cells := c.w.cells
	if !cells.IsCellAligned(c) {
		return
	}

	player := c.w.player
	if player != nil {
		dist := cells.CellOf(c).Manhattan(cells.CellOf(player))
		switch {
		case c.Chasing() && dist > c.sight+3:
			c.brain.AddFact(factLost)
		case !c.Chasing() && dist <= c.sight:
			c.brain.AddFact(factSpotted)
		}
		c.brain.Process()
	}

	if c.Chasing() {
		d, err := c.finder.NextStep(c, cells.CellOf(player))
		if err == nil && d != core.DirNone {
			c.heading = d
			return
		}
	}
	c.heading = c.wander()
}

// wander keeps going straight most of the time and never turns back unless
// it is in a dead end.
func (c *Chaser) wander() core.Direction {
	cells := c.w.cells
	if canStep(cells, c, c.heading) && c.w.rng.Intn(4) != 0 {
		return c.heading
	}
	var options []core.Direction
	for _, d := range core.Cardinals {
		if d != c.heading.Opposite() && canStep(cells, c, d) {
			options = append(options, d)
		}
	}
	if len(options) == 0 {
		if back := c.heading.Opposite(); canStep(cells, c, back) {
			return back
		}
		return core.DirNone
	}
	return options[c.w.rng.Intn(len(options))]
}

// Evolve moves one base unit every few ticks and catches the player on
// contact.
func (c *Chaser) Evolve() {
	c.wait++
	if c.wait >= c.every {
		c.wait = 0
		if canStep(c.w.cells, c, c.heading) {
			c.Step(c.heading, 1)
		}
	}
	if p := c.w.player; p != nil && c.Bounds().Intersects(p.Bounds()) {
		c.w.catch()
	}
}

// Spawner releases a new chaser at its cell every few hundred ticks while
// fewer than its limit are alive.
type Spawner struct {
	env.Base
	w     *world
	every int
	limit int
	ticks int
}

// Evolve queues a chaser for the next tick when it is time.
func (s *Spawner) Evolve() {
	s.ticks++
	if s.ticks%s.every != 0 || s.w.chasers() >= s.limit {
		return
	}
	s.w.cells.PreAddObject(s.w.newChaser(s.w.cells.CellOf(s), DefaultChaserSight, DefaultChaserEvery))
}
