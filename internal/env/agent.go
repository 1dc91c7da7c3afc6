package env

import "github.com/vovakirdan/gridrunner/internal/core"

// Agent is an object that decides what to do before it evolves.
type Agent interface {
	Object
	Behave()
	Reward() float64
	AddReward(r float64)
}

// Controllable is an object that receives named actions from a controller.
type Controllable interface {
	Object
	Actions() *core.ActionStore
}

// AgentBase implements Agent on top of Base. Behave is a no-op.
type AgentBase struct {
	Base
	reward float64
}

// NewAgentBase creates the embedded state of an agent.
func NewAgentBase(id ID, name string, x, y, size int) AgentBase {
	return AgentBase{Base: NewBase(id, name, x, y, size)}
}

// Behave is a no-op.
func (a *AgentBase) Behave() {}

// Reward returns the accumulated reward.
func (a *AgentBase) Reward() float64 { return a.reward }

// AddReward adds r to the accumulated reward.
func (a *AgentBase) AddReward(r float64) { a.reward += r }

// ControllableBase implements an Agent that is also Controllable.
type ControllableBase struct {
	AgentBase
	actions *core.ActionStore
}

// NewControllableBase creates the embedded state of a controllable agent.
func NewControllableBase(id ID, name string, x, y, size int) ControllableBase {
	return ControllableBase{
		AgentBase: NewAgentBase(id, name, x, y, size),
		actions:   core.NewActionStore(),
	}
}

// Actions implements Controllable.
func (c *ControllableBase) Actions() *core.ActionStore {
	if c.actions == nil {
		c.actions = core.NewActionStore()
	}
	return c.actions
}
