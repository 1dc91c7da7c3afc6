package env

import (
	"math/rand"

	"github.com/vovakirdan/gridrunner/internal/core"
	"github.com/vovakirdan/gridrunner/internal/level"
)

// MaxRandomTries caps FindRandomAllowedLocationForObject.
const MaxRandomTries = 10000

// CellContents tags the static content of one cell. Games define the values.
type CellContents byte

// CellGrid is the read-only view of a cell environment used by path finding.
type CellGrid interface {
	CellWidth() int
	CellHeight() int
	CellSize() int
	IsObjectAllowedAtCell(obj Object, cx, cy int) bool
}

// CellRules decides whether obj may occupy a cell. Implementations must be
// pure: the same answer for the same arguments within a tick.
type CellRules interface {
	IsObjectAllowedAtCell(e *CellEnvironment, obj Object, cx, cy int) bool
}

// CellRulesFunc adapts a function to CellRules.
type CellRulesFunc func(e *CellEnvironment, obj Object, cx, cy int) bool

// IsObjectAllowedAtCell implements CellRules.
func (f CellRulesFunc) IsObjectAllowedAtCell(e *CellEnvironment, obj Object, cx, cy int) bool {
	return f(e, obj, cx, cy)
}

// LinkHandler receives level links reached by objects.
type LinkHandler interface {
	// ReachExit is called when the controlled object stands on an exit.
	ReachExit(obj Object, levelID string)
	// LocationJump is called after obj was moved to dest (cell coordinates).
	LocationJump(obj Object, dest core.Location)
}

// CellConfig sizes a CellEnvironment.
type CellConfig struct {
	Width    int // cells
	Height   int // cells
	CellSize int // base units per cell side
	Fill     CellContents
	Seed     int64
}

// CellEnvironment is an Environment laid over a grid of static cells.
type CellEnvironment struct {
	*Environment

	width, height, size int
	fill                CellContents
	cells               [][]CellContents
	rules               CellRules
	rng                 *rand.Rand

	level    *level.GameLevel
	links    LinkHandler
	parked   map[ID]core.Location // link cell each object last triggered
	cleanups []func()
}

// NewCellEnvironment creates a grid filled with cfg.Fill. A nil rules value
// allows every valid cell.
func NewCellEnvironment(cfg CellConfig, rules CellRules) *CellEnvironment {
	if cfg.CellSize <= 0 {
		cfg.CellSize = 1
	}
	if rules == nil {
		rules = CellRulesFunc(func(e *CellEnvironment, _ Object, cx, cy int) bool {
			return e.IsValidCell(cx, cy)
		})
	}
	ce := &CellEnvironment{
		Environment: NewEnvironment(),
		width:       cfg.Width,
		height:      cfg.Height,
		size:        cfg.CellSize,
		fill:        cfg.Fill,
		rules:       rules,
		rng:         rand.New(rand.NewSource(cfg.Seed)),
		parked:      make(map[ID]core.Location),
	}
	ce.cells = make([][]CellContents, cfg.Height)
	for y := range ce.cells {
		ce.cells[y] = make([]CellContents, cfg.Width)
		for x := range ce.cells[y] {
			ce.cells[y][x] = cfg.Fill
		}
	}
	ce.SetSpecific(ce)
	return ce
}

// CellWidth returns the number of cell columns.
func (e *CellEnvironment) CellWidth() int { return e.width }

// CellHeight returns the number of cell rows.
func (e *CellEnvironment) CellHeight() int { return e.height }

// CellSize returns the side of a cell in base units.
func (e *CellEnvironment) CellSize() int { return e.size }

// Level returns the level loaded with SetLevel, or nil.
func (e *CellEnvironment) Level() *level.GameLevel { return e.level }

// IsValidCell reports whether (cx, cy) lies on the grid.
func (e *CellEnvironment) IsValidCell(cx, cy int) bool {
	return cx >= 0 && cy >= 0 && cx < e.width && cy < e.height
}

// Cell returns the contents at (cx, cy), or the fill value off the grid.
func (e *CellEnvironment) Cell(cx, cy int) CellContents {
	if !e.IsValidCell(cx, cy) {
		return e.fill
	}
	return e.cells[cy][cx]
}

// SetCell replaces the contents at (cx, cy). Off-grid writes are ignored.
func (e *CellEnvironment) SetCell(cx, cy int, c CellContents) {
	if !e.IsValidCell(cx, cy) {
		return
	}
	e.cells[cy][cx] = c
}

// LoadLayout copies rows of cell bytes onto the grid. Short rows keep the
// fill value; extra rows and columns are ignored.
func (e *CellEnvironment) LoadLayout(rows []string) {
	for cy := 0; cy < e.height && cy < len(rows); cy++ {
		row := rows[cy]
		for cx := 0; cx < e.width && cx < len(row); cx++ {
			e.cells[cy][cx] = CellContents(row[cx])
		}
	}
}

// IsObjectInBounds reports whether a one-cell object at base-unit (x, y)
// lies entirely on the grid.
func (e *CellEnvironment) IsObjectInBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x+e.size <= e.width*e.size && y+e.size <= e.height*e.size
}

// IsObjectAllowedAtCell asks the rules whether obj may occupy (cx, cy).
// Off-grid cells are never allowed.
func (e *CellEnvironment) IsObjectAllowedAtCell(obj Object, cx, cy int) bool {
	if !e.IsValidCell(cx, cy) {
		return false
	}
	return e.rules.IsObjectAllowedAtCell(e, obj, cx, cy)
}

// IsObjectAllowedAtLocation reports whether a one-cell object at base-unit
// (x, y) may stand there: every cell its box touches must be allowed.
func (e *CellEnvironment) IsObjectAllowedAtLocation(obj Object, x, y int) bool {
	if !e.IsObjectInBounds(x, y) {
		return false
	}
	first, last, ok := core.Square(core.L(x, y), e.size).CellSpan(e.size)
	if !ok {
		return false
	}
	for cy := first.Y; cy <= last.Y; cy++ {
		for cx := first.X; cx <= last.X; cx++ {
			if !e.IsObjectAllowedAtCell(obj, cx, cy) {
				return false
			}
		}
	}
	return true
}

// IsCellAligned reports whether obj sits exactly on a cell.
func (e *CellEnvironment) IsCellAligned(obj Object) bool {
	loc := obj.Location()
	return loc.X%e.size == 0 && loc.Y%e.size == 0
}

// CellOf returns the cell containing obj's top-left corner.
func (e *CellEnvironment) CellOf(obj Object) core.Location {
	loc := obj.Location()
	return core.L(core.FloorDiv(loc.X, e.size), core.FloorDiv(loc.Y, e.size))
}

// PlaceAtCell moves obj to the top-left corner of (cx, cy).
func (e *CellEnvironment) PlaceAtCell(obj Object, cx, cy int) {
	obj.MoveTo(cx*e.size, cy*e.size)
}

// FindRandomAllowedLocationForObject picks random cells until one is allowed
// for obj, giving up after MaxRandomTries. It returns cell coordinates.
func (e *CellEnvironment) FindRandomAllowedLocationForObject(obj Object) (core.Location, bool) {
	if e.width == 0 || e.height == 0 {
		return core.Location{}, false
	}
	for i := 0; i < MaxRandomTries; i++ {
		cx, cy := e.rng.Intn(e.width), e.rng.Intn(e.height)
		if e.IsObjectAllowedAtCell(obj, cx, cy) {
			return core.L(cx, cy), true
		}
	}
	return core.Location{}, false
}

// FindFirstCellLocationMatchingContents scans rows top to bottom, left to
// right, and returns the first cell holding c.
func (e *CellEnvironment) FindFirstCellLocationMatchingContents(c CellContents) (core.Location, bool) {
	for cy := 0; cy < e.height; cy++ {
		for cx := 0; cx < e.width; cx++ {
			if e.cells[cy][cx] == c {
				return core.L(cx, cy), true
			}
		}
	}
	return core.Location{}, false
}

// SetLevel loads lvl's layout and activates its links.
func (e *CellEnvironment) SetLevel(lvl *level.GameLevel) {
	e.level = lvl
	e.LoadLayout(lvl.Layout)
}

// SetLinkHandler installs the receiver of exit and jump events.
func (e *CellEnvironment) SetLinkHandler(h LinkHandler) {
	e.links = h
}

// OnCleanUp registers f to run when the environment is cleaned up.
func (e *CellEnvironment) OnCleanUp(f func()) {
	e.cleanups = append(e.cleanups, f)
}

// SpecificEvolve applies level links to cell-aligned objects.
func (e *CellEnvironment) SpecificEvolve() {
	if e.level == nil || len(e.level.Links) == 0 {
		return
	}
	for _, obj := range e.Objects() {
		if !e.IsCellAligned(obj) {
			continue
		}
		cell := e.CellOf(obj)
		link, ok := e.level.LinkAt(cell)
		if !ok {
			delete(e.parked, obj.ID())
			continue
		}
		if at, parked := e.parked[obj.ID()]; parked && at == cell {
			continue
		}
		e.parked[obj.ID()] = cell

		switch link.Kind {
		case level.LinkExit:
			if e.IsControlled(obj) && e.links != nil {
				e.links.ReachExit(obj, link.TargetLevel)
			}
		case level.LinkJump:
			e.PlaceAtCell(obj, link.Destination.X, link.Destination.Y)
			e.parked[obj.ID()] = link.Destination
			if e.links != nil {
				e.links.LocationJump(obj, link.Destination)
			}
		}
	}
}

// SpecificCleanUp runs the registered clean-up functions in reverse order.
func (e *CellEnvironment) SpecificCleanUp() {
	for i := len(e.cleanups) - 1; i >= 0; i-- {
		e.cleanups[i]()
	}
	e.cleanups = nil
	e.links = nil
}

var _ CellGrid = (*CellEnvironment)(nil)
