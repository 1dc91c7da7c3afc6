// Package fsm provides a small deterministic finite-state machine driven by
// facts. States and facts are plain identifiers; a transition fires when its
// guarding fact is pending while the machine sits in the transition's source
// state. The machine is not safe for concurrent use.
package fsm

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/vovakirdan/gridrunner/internal/core"
)

// State identifies a machine state.
type State string

// Fact is an external stimulus that may trigger a transition.
type Fact string

type edge struct {
	fact   Fact
	target *Node
}

// Node is the machine's record of one registered state and its outgoing edges.
type Node struct {
	state State
	edges []edge // registration order
}

// State returns the state bound to this node.
func (n *Node) State() State {
	return n.state
}

// Machine is a deterministic finite-state machine.
type Machine struct {
	nodes   map[State]*Node
	initial *Node
	current *Node
	pending mapset.Set[Fact]
}

// New creates an empty machine.
func New() *Machine {
	return &Machine{
		nodes:   make(map[State]*Node),
		pending: mapset.New[Fact](),
	}
}

// NewState registers a state and returns its node. Registering the same state
// again replaces the earlier node; transitions already pointing at the old
// node keep pointing at it.
func (m *Machine) NewState(s State) *Node {
	n := &Node{state: s}
	m.nodes[s] = n
	return n
}

// NewTransition adds an edge from one registered state to another, guarded by
// fact. Both states must have been registered with NewState; otherwise an
// error is returned and the transition table is left untouched.
func (m *Machine) NewTransition(from, to State, fact Fact) error {
	src, ok := m.nodes[from]
	if !ok {
		return core.Errorf("fsm.NewTransition", "source state %q is not registered", from)
	}
	dst, ok := m.nodes[to]
	if !ok {
		return core.Errorf("fsm.NewTransition", "target state %q is not registered", to)
	}

	for i := range src.edges {
		if src.edges[i].fact == fact {
			src.edges[i].target = dst
			return nil
		}
	}
	src.edges = append(src.edges, edge{fact: fact, target: dst})
	return nil
}

// MustTransition is NewTransition for static wiring; it panics on error.
func (m *Machine) MustTransition(from, to State, fact Fact) {
	if err := m.NewTransition(from, to, fact); err != nil {
		panic(err)
	}
}

// SetInitial selects the state Reset returns to and resets the machine.
func (m *Machine) SetInitial(s State) error {
	n, ok := m.nodes[s]
	if !ok {
		return core.Errorf("fsm.SetInitial", "state %q is not registered", s)
	}
	m.initial = n
	m.Reset()
	return nil
}

// Reset moves the machine to its initial state and drops pending facts.
func (m *Machine) Reset() {
	m.current = m.initial
	m.pending = mapset.New[Fact]()
}

// AddFact queues a fact. Adding a fact that is already pending is a no-op.
func (m *Machine) AddFact(f Fact) {
	m.pending.Put(f)
}

// Process consumes every pending fact that guards an outgoing edge of the
// current state. Edges are scanned in registration order and the last
// matching edge decides the next state. Facts without a matching edge stay
// pending for later calls. Reports whether the state changed.
func (m *Machine) Process() bool {
	if m.current == nil {
		return false
	}

	var next *Node
	for _, e := range m.current.edges {
		if m.pending.Has(e.fact) {
			m.pending.Remove(e.fact)
			next = e.target
		}
	}
	if next == nil {
		return false
	}

	m.current = next
	return true
}

// IsInState reports whether the current node is bound to s.
func (m *Machine) IsInState(s State) bool {
	return m.current != nil && m.current.state == s
}

// Current returns the current state, or "" before SetInitial.
func (m *Machine) Current() State {
	if m.current == nil {
		return ""
	}
	return m.current.state
}

// Pending returns the number of facts not yet consumed.
func (m *Machine) Pending() int {
	return m.pending.Size()
}
