package core

// GridMobile is a mutable position owned by the object that moves itself.
type GridMobile struct {
	X, Y int
}

// Location returns the current position as an immutable Location.
func (m *GridMobile) Location() Location {
	return Location{X: m.X, Y: m.Y}
}

// MoveTo places the mobile at (x, y).
func (m *GridMobile) MoveTo(x, y int) {
	m.X = x
	m.Y = y
}

// Translate moves the mobile by (dx, dy).
func (m *GridMobile) Translate(dx, dy int) {
	m.X += dx
	m.Y += dy
}

// Step moves the mobile n units in direction d.
func (m *GridMobile) Step(d Direction, n int) {
	dx, dy := d.Delta()
	m.Translate(dx*n, dy*n)
}

// OrientedGridMobile is a GridMobile that also remembers which way it faces.
type OrientedGridMobile struct {
	GridMobile
	Orientation Direction
}

// Step moves the mobile and turns it to face d.
func (m *OrientedGridMobile) Step(d Direction, n int) {
	if d == DirNone {
		return
	}
	m.Orientation = d
	m.GridMobile.Step(d, n)
}
