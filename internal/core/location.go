package core

import (
	"fmt"
	"sync"
)

// Location is an immutable integer coordinate pair. Depending on the caller it
// is either a cell coordinate or a base-unit coordinate; the type does not care.
// Locations are plain values, so two locations with the same coordinates
// compare equal with ==.
type Location struct {
	X int
	Y int
}

// L is a convenience constructor for Location.
func L(x, y int) Location {
	return Location{X: x, Y: y}
}

// String returns a string representation of the location.
func (l Location) String() string {
	return fmt.Sprintf("(%d,%d)", l.X, l.Y)
}

// Add returns a new Location offset by (dx, dy).
func (l Location) Add(dx, dy int) Location {
	return Location{X: l.X + dx, Y: l.Y + dy}
}

// Step returns the neighbouring location in the given direction.
func (l Location) Step(d Direction) Location {
	dx, dy := d.Delta()
	return l.Add(dx, dy)
}

// Scale multiplies both coordinates by n (cell to base-unit conversion).
func (l Location) Scale(n int) Location {
	return Location{X: l.X * n, Y: l.Y * n}
}

// Manhattan returns the Manhattan distance to another location.
func (l Location) Manhattan(other Location) int {
	return Abs(l.X-other.X) + Abs(l.Y-other.Y)
}

var interned = struct {
	sync.Mutex
	m map[Location]*Location
}{m: make(map[Location]*Location)}

// Intern returns the canonical pointer for the coordinate pair, so that equal
// coordinates share one identity. The pointee must never be modified.
func Intern(x, y int) *Location {
	key := Location{X: x, Y: y}

	interned.Lock()
	defer interned.Unlock()

	if p, ok := interned.m[key]; ok {
		return p
	}
	p := &key
	interned.m[key] = p
	return p
}
