// Package pathfind computes single-step directions toward target cells with
// a wavefront (breadth-first value propagation) over a cell grid.
//
// A search is Reset, seeded with one or more targets, propagated for the
// moving object, then queried from the object's current cell. The field
// depends on the object because occupancy rules may differ per object.
package pathfind

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/vovakirdan/gridrunner/internal/core"
	"github.com/vovakirdan/gridrunner/internal/env"
)

// TargetValue is the value seeded at target cells. A cell at distance d from
// the nearest target ends up with TargetValue - d.
const TargetValue = 9999

// Finder holds the value field and the search lists for one grid.
type Finder struct {
	grid   env.CellGrid
	w, h   int
	values [][]int
	open   []core.Location
	closed mapset.Set[core.Location]
}

// New creates a finder sized to grid.
func New(grid env.CellGrid) *Finder {
	f := &Finder{
		grid: grid,
		w:    grid.CellWidth(),
		h:    grid.CellHeight(),
	}
	f.values = make([][]int, f.h)
	for y := range f.values {
		f.values[y] = make([]int, f.w)
	}
	f.closed = mapset.New[core.Location]()
	return f
}

// Reset zeroes the field and clears both lists.
func (f *Finder) Reset() {
	for y := range f.values {
		clear(f.values[y])
	}
	f.open = f.open[:0]
	f.closed = mapset.New[core.Location]()
}

// SetTarget seeds a target cell. Off-grid targets are ignored.
func (f *Finder) SetTarget(cell core.Location) {
	if !f.inside(cell.X, cell.Y) {
		return
	}
	f.values[cell.Y][cell.X] = TargetValue
	f.open = append(f.open, cell)
}

// Propagate floods values outward from the seeded targets through cells obj
// is allowed to occupy.
func (f *Finder) Propagate(obj env.Object) {
	for len(f.open) > 0 {
		cur := f.open[0]
		f.open = f.open[1:]
		f.closed.Put(cur)

		next := f.values[cur.Y][cur.X] - 1
		for _, d := range core.Cardinals {
			n := cur.Step(d)
			if !f.inside(n.X, n.Y) || f.closed.Has(n) {
				continue
			}
			if !f.grid.IsObjectAllowedAtCell(obj, n.X, n.Y) {
				continue
			}
			if f.values[n.Y][n.X] < next {
				f.values[n.Y][n.X] = next
				f.open = append(f.open, n)
			}
		}
	}
}

// FindBetterDirection returns the direction of the allowed neighbour with the
// highest value, provided it beats the object's own cell. Ties go to the
// first neighbour in Up, Right, Down, Left order. DirNone with a nil error
// means no neighbour is better; an error means obj is not cell aligned.
func (f *Finder) FindBetterDirection(obj env.Object) (core.Direction, error) {
	size := f.grid.CellSize()
	loc := obj.Location()
	if loc.X%size != 0 || loc.Y%size != 0 {
		return core.DirNone, core.Errorf("pathfind.FindBetterDirection",
			"object #%d at %s is not aligned to %d-unit cells", obj.ID(), loc, size)
	}
	cx, cy := loc.X/size, loc.Y/size

	best := core.DirNone
	bestValue := f.Value(cx, cy)
	for _, d := range core.Cardinals {
		dx, dy := d.Delta()
		nx, ny := cx+dx, cy+dy
		if !f.inside(nx, ny) || !f.grid.IsObjectAllowedAtCell(obj, nx, ny) {
			continue
		}
		if v := f.values[ny][nx]; v > bestValue {
			best, bestValue = d, v
		}
	}
	return best, nil
}

// NextStep runs a complete search toward target for obj.
func (f *Finder) NextStep(obj env.Object, target core.Location) (core.Direction, error) {
	f.Reset()
	f.SetTarget(target)
	f.Propagate(obj)
	return f.FindBetterDirection(obj)
}

// Value returns the propagated value of a cell, 0 off the grid.
func (f *Finder) Value(cx, cy int) int {
	if !f.inside(cx, cy) {
		return 0
	}
	return f.values[cy][cx]
}

func (f *Finder) inside(cx, cy int) bool {
	return cx >= 0 && cy >= 0 && cx < f.w && cy < f.h
}
