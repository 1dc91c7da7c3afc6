package env

import (
	"fmt"
	"io"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/zyedidia/generic/mapset"

	"github.com/vovakirdan/gridrunner/internal/core"
)

// Observer is notified once at the end of every tick.
type Observer interface {
	EnvironmentUpdated(e *Environment)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(e *Environment)

// EnvironmentUpdated implements Observer.
func (f ObserverFunc) EnvironmentUpdated(e *Environment) { f(e) }

// Controller feeds actions into the controlled object. It also observes the
// environment it is bound to.
type Controller interface {
	Observer
	RegisterControlListener(c Controllable)
	UnRegisterControlListener(c Controllable)
}

// Specific supplies the per-tick and clean-up hooks of a specialized
// environment.
type Specific interface {
	SpecificEvolve()
	SpecificCleanUp()
}

// Environment owns the live objects of one level and runs the tick protocol:
// behave and evolve every live object, flush removals, flush additions, run
// the specific hook, notify observers.
type Environment struct {
	mu sync.RWMutex

	objects  []Object
	toAdd    []Object
	toRemove mapset.Set[ID]

	controlled Controllable
	controller Controller
	observers  []Observer

	specific Specific
	ids      *IDAllocator
	tick     atomic.Uint64
}

// NewEnvironment creates an empty environment.
func NewEnvironment() *Environment {
	return &Environment{
		toRemove: mapset.New[ID](),
		ids:      NewIDAllocator(),
	}
}

// SetSpecific installs the specialization hooks.
func (e *Environment) SetSpecific(s Specific) {
	e.specific = s
}

// IDs returns the allocator objects of this environment draw ids from.
func (e *Environment) IDs() *IDAllocator {
	return e.ids
}

// Tick returns the number of completed updates.
func (e *Environment) Tick() uint64 {
	return e.tick.Load()
}

// AddObject appends obj to the live list immediately. Use it while building
// a level; objects spawned during a tick go through PreAddObject.
func (e *Environment) AddObject(obj Object) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.objects = append(e.objects, obj)
}

// PreAddObject queues obj; it joins the live list after the current tick's
// evolve phase.
func (e *Environment) PreAddObject(obj Object) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.toAdd = append(e.toAdd, obj)
}

// MarkObjectForRemoval queues obj for removal after the current tick's
// evolve phase.
func (e *Environment) MarkObjectForRemoval(obj Object) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.toRemove.Put(obj.ID())
}

// IsMarkedForRemoval reports whether obj will disappear at the next flush.
func (e *Environment) IsMarkedForRemoval(obj Object) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.toRemove.Has(obj.ID())
}

// Objects returns a copy of the live list in insertion order.
func (e *Environment) Objects() []Object {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.objects)
}

// Len returns the number of live objects.
func (e *Environment) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.objects)
}

// ObjectByID returns the live object with the given id.
func (e *Environment) ObjectByID(id ID) (Object, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, o := range e.objects {
		if o.ID() == id {
			return o, true
		}
	}
	return nil, false
}

// FindByName returns the first live object with the given name.
func (e *Environment) FindByName(name string) (Object, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, o := range e.objects {
		if o.Name() == name {
			return o, true
		}
	}
	return nil, false
}

// ObjectsIntersecting returns the live objects whose bounds intersect r,
// skipping the object with id except.
func (e *Environment) ObjectsIntersecting(r core.Rect, except ID) []Object {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var hits []Object
	for _, o := range e.objects {
		if o.ID() != except && o.Bounds().Intersects(r) {
			hits = append(hits, o)
		}
	}
	return hits
}

// Update runs one tick.
func (e *Environment) Update() {
	for _, obj := range e.Objects() {
		if a, ok := obj.(Agent); ok {
			a.Behave()
		}
		obj.Evolve()
	}

	e.flushRemovals()
	e.flushAdditions()

	if e.specific != nil {
		e.specific.SpecificEvolve()
	}

	e.tick.Add(1)
	e.notify()
}

func (e *Environment) flushRemovals() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.toRemove.Size() == 0 {
		return
	}

	kept := e.objects[:0]
	for _, o := range e.objects {
		if !e.toRemove.Has(o.ID()) {
			kept = append(kept, o)
			continue
		}
		if e.controlled != nil && e.controlled.ID() == o.ID() {
			if e.controller != nil {
				e.controller.UnRegisterControlListener(e.controlled)
			}
			e.controlled = nil
		}
	}
	clear(e.objects[len(kept):])
	e.objects = kept
	e.toRemove = mapset.New[ID]()
}

func (e *Environment) flushAdditions() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.toAdd) == 0 {
		return
	}
	e.objects = append(e.objects, e.toAdd...)
	e.toAdd = nil
}

func (e *Environment) notify() {
	e.mu.RLock()
	observers := slices.Clone(e.observers)
	e.mu.RUnlock()
	for _, o := range observers {
		o.EnvironmentUpdated(e)
	}
}

// SetControlled binds the single controlled object. Binding a second one
// while another is bound is a wiring error.
func (e *Environment) SetControlled(c Controllable) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.controlled != nil {
		return core.Errorf("env.SetControlled",
			"object #%d is already controlled, cannot bind #%d", e.controlled.ID(), c.ID())
	}
	e.controlled = c
	if e.controller != nil {
		e.controller.RegisterControlListener(c)
	}
	return nil
}

// Controlled returns the controlled object, or nil.
func (e *Environment) Controlled() Controllable {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.controlled
}

// IsControlled reports whether obj is the controlled object.
func (e *Environment) IsControlled(obj Object) bool {
	c := e.Controlled()
	return c != nil && c.ID() == obj.ID()
}

// ClearControlled unbinds the controlled object, detaching it from the
// controller.
func (e *Environment) ClearControlled() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.controlled != nil && e.controller != nil {
		e.controller.UnRegisterControlListener(e.controlled)
	}
	e.controlled = nil
}

// SetController registers c as an observer and binds it to the controlled
// object in one step. A previously set controller is removed first.
func (e *Environment) SetController(c Controller) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.detachControllerLocked()
	e.controller = c
	e.observers = append(e.observers, c)
	if e.controlled != nil {
		c.RegisterControlListener(e.controlled)
	}
}

// Controller returns the bound controller, or nil.
func (e *Environment) Controller() Controller {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.controller
}

// RemoveController undoes SetController.
func (e *Environment) RemoveController() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.detachControllerLocked()
}

func (e *Environment) detachControllerLocked() {
	if e.controller == nil {
		return
	}
	if e.controlled != nil {
		e.controller.UnRegisterControlListener(e.controlled)
	}
	e.observers = slices.DeleteFunc(e.observers, func(o Observer) bool {
		return o == Observer(e.controller)
	})
	e.controller = nil
}

// AddObserver registers o for end-of-tick notifications.
func (e *Environment) AddObserver(o Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, o)
}

// RemoveObserver unregisters o.
func (e *Environment) RemoveObserver(o Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = slices.DeleteFunc(e.observers, func(x Observer) bool { return x == o })
}

// CleanUp runs the specific clean-up hook and detaches the controller and
// every observer. The environment must not be updated afterwards.
func (e *Environment) CleanUp() {
	if e.specific != nil {
		e.specific.SpecificCleanUp()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.detachControllerLocked()
	e.observers = nil
	e.toAdd = nil
	e.toRemove = mapset.New[ID]()
}

// Dump writes the live list, one object per line.
func (e *Environment) Dump(w io.Writer) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if _, err := fmt.Fprintf(w, "tick %d, %d objects, %d pending add, %d pending removal\n",
		e.tick.Load(), len(e.objects), len(e.toAdd), e.toRemove.Size()); err != nil {
		return err
	}
	for _, o := range e.objects {
		marker := " "
		if e.controlled != nil && e.controlled.ID() == o.ID() {
			marker = "*"
		}
		if _, err := fmt.Fprintf(w, "%s #%d %-12s %s %s\n", marker, o.ID(), o.Name(), o.Location(), o.Orientation()); err != nil {
			return err
		}
	}
	return nil
}
