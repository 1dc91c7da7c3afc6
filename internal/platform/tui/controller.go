package tui

import (
	"sync"

	"github.com/zyedidia/generic/mapset"

	"github.com/vovakirdan/gridrunner/internal/engine"
	"github.com/vovakirdan/gridrunner/internal/env"
)

// KeyController feeds key presses to the controlled object of the live
// environment. Presses arrive on the UI goroutine and are queued; the queue
// is handed to the object's action store from the game thread after each
// environment update, so the store is only touched by one goroutine.
type KeyController struct {
	mu      sync.Mutex
	target  env.Controllable
	pending mapset.Set[string]
	frames  uint64
}

// NewKeyController creates an unbound controller.
func NewKeyController() *KeyController {
	return &KeyController{pending: mapset.New[string]()}
}

// RegisterControlListener implements engine.Controller.
func (c *KeyController) RegisterControlListener(obj env.Controllable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = obj
}

// UnRegisterControlListener implements engine.Controller. Queued presses are
// dropped with the binding.
func (c *KeyController) UnRegisterControlListener(obj env.Controllable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.target == obj {
		c.target = nil
		c.pending = mapset.New[string]()
	}
}

// EnvironmentUpdated implements env.Observer. It delivers queued presses.
func (c *KeyController) EnvironmentUpdated(*env.Environment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames++
	if c.target == nil || c.pending.Size() == 0 {
		return
	}
	actions := c.target.Actions()
	c.pending.Each(func(name string) {
		actions.AddAction(name)
	})
	c.pending = mapset.New[string]()
}

// Press queues action for the bound object. It reports whether an object is
// bound to receive it.
func (c *KeyController) Press(action string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.target == nil {
		return false
	}
	c.pending.Put(action)
	return true
}

// Pending returns the number of queued actions.
func (c *KeyController) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending.Size()
}

// Bound reports whether a controllable is registered.
func (c *KeyController) Bound() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target != nil
}

// Frames returns how many environment updates the controller has seen.
func (c *KeyController) Frames() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}

var _ engine.Controller = (*KeyController)(nil)
