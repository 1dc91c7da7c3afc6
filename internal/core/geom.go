// Package core provides fundamental types shared by every layer of the runtime:
// grid locations and directions, collision rectangles, the screen buffer the
// views draw into, the per-controllable action store and the engine error type.
// It contains no terminal dependencies so game logic stays pure and testable.
package core

// Rect is a collision box in base units. The right and bottom edges are
// exclusive, so two boxes that only share an edge do not collide.
type Rect struct {
	X, Y int
	W, H int
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Square returns the size x size box whose top-left corner is at loc.
func Square(loc Location, size int) Rect {
	return Rect{X: loc.X, Y: loc.Y, W: size, H: size}
}

// Origin returns the top-left corner.
func (r Rect) Origin() Location {
	return Location{X: r.X, Y: r.Y}
}

// Right returns the x-coordinate just past the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate just past the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Empty reports whether the box has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Intersects reports whether the two boxes overlap. Empty boxes never do.
func (r Rect) Intersects(other Rect) bool {
	if r.Empty() || other.Empty() {
		return false
	}
	return r.X < other.Right() && other.X < r.Right() &&
		r.Y < other.Bottom() && other.Y < r.Bottom()
}

// Contains reports whether loc lies inside the box.
func (r Rect) Contains(loc Location) bool {
	return loc.X >= r.X && loc.X < r.Right() && loc.Y >= r.Y && loc.Y < r.Bottom()
}

// Translate returns the rectangle moved by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// CellSpan returns the first and last cell, inclusive, touched by the box on
// a grid of size x size cells. An empty box spans nothing and ok is false.
func (r Rect) CellSpan(size int) (first, last Location, ok bool) {
	if r.Empty() || size <= 0 {
		return Location{}, Location{}, false
	}
	first = Location{X: FloorDiv(r.X, size), Y: FloorDiv(r.Y, size)}
	last = Location{X: FloorDiv(r.Right()-1, size), Y: FloorDiv(r.Bottom()-1, size)}
	return first, last, true
}

// Abs returns the absolute value of an integer.
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// FloorDiv divides a by b rounding toward negative infinity, so base-unit
// coordinates left of or above the grid map to negative cells.
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
