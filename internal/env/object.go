// Package env implements the object environments that own a level's live
// objects: the generic tick protocol (Environment) and its cell grid
// specialization (CellEnvironment).
//
// Objects are composed from small capability interfaces rather than a deep
// hierarchy. Concrete game objects embed Base (or AgentBase, ControllableBase)
// and override the hooks they need.
package env

import (
	"fmt"
	"sync/atomic"

	"github.com/vovakirdan/gridrunner/internal/core"
)

// ID identifies an object within its environment.
type ID int64

// Identified is anything with a stable id.
type Identified interface {
	ID() ID
}

// Named objects carry a mutable display name.
type Named interface {
	Name() string
	SetName(name string)
}

// Positioned objects have a base-unit location, a facing and a collision box.
type Positioned interface {
	Location() core.Location
	MoveTo(x, y int)
	Orientation() core.Direction
	Bounds() core.Rect
}

// Evolvable objects advance their own state once per tick.
type Evolvable interface {
	Evolve()
}

// Propertied objects expose an open-ended property bag.
type Propertied interface {
	Properties() *Properties
}

// Object is anything that can live in an Environment.
type Object interface {
	Identified
	Named
	Positioned
	Evolvable
	Propertied
}

// IDAllocator hands out monotonically increasing ids. Each environment owns
// one, so ids are deterministic per environment and per test.
type IDAllocator struct {
	last atomic.Int64
}

// NewIDAllocator creates an allocator whose first id is 1.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

// Next returns a fresh id.
func (a *IDAllocator) Next() ID {
	return ID(a.last.Add(1))
}

// Reset restarts numbering at 1.
func (a *IDAllocator) Reset() {
	a.last.Store(0)
}

// Base implements Object. Size is the side of the square collision box in
// base units.
type Base struct {
	core.OrientedGridMobile

	id    ID
	name  string
	size  int
	props *Properties
}

// NewBase creates the embedded state of an object at base-unit (x, y).
func NewBase(id ID, name string, x, y, size int) Base {
	b := Base{id: id, name: name, size: size, props: NewProperties()}
	b.X, b.Y = x, y
	return b
}

// ID implements Identified.
func (b *Base) ID() ID { return b.id }

// Name implements Named.
func (b *Base) Name() string { return b.name }

// SetName implements Named.
func (b *Base) SetName(name string) { b.name = name }

// Orientation returns the direction the object last moved in.
func (b *Base) Orientation() core.Direction { return b.OrientedGridMobile.Orientation }

// SetOrientation turns the object without moving it.
func (b *Base) SetOrientation(d core.Direction) { b.OrientedGridMobile.Orientation = d }

// Size returns the side of the collision box.
func (b *Base) Size() int { return b.size }

// Bounds implements Positioned.
func (b *Base) Bounds() core.Rect {
	return core.Square(b.Location(), b.size)
}

// Properties implements Propertied.
func (b *Base) Properties() *Properties {
	if b.props == nil {
		b.props = NewProperties()
	}
	return b.props
}

// Evolve is a no-op; static objects need nothing more.
func (b *Base) Evolve() {}

// String describes the object for dumps and logs.
func (b *Base) String() string {
	return fmt.Sprintf("#%d %s @%s facing %s", b.id, b.name, b.Location(), b.Orientation())
}
