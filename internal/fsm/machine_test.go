package fsm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/gridrunner/internal/core"
)

const (
	unplugged State = "UNPLUGGED"
	off       State = "OFF"
	on        State = "ON"

	plug      Fact = "PLUG"
	unplug    Fact = "UNPLUG"
	switchOn  Fact = "SWITCH_ON"
	switchOff Fact = "SWITCH_OFF"
)

func newLamp(t *testing.T) *Machine {
	t.Helper()

	m := New()
	m.NewState(unplugged)
	m.NewState(off)
	m.NewState(on)
	require.NoError(t, m.NewTransition(unplugged, off, plug))
	require.NoError(t, m.NewTransition(off, unplugged, unplug))
	require.NoError(t, m.NewTransition(off, on, switchOn))
	require.NoError(t, m.NewTransition(on, off, switchOff))
	require.NoError(t, m.NewTransition(on, unplugged, unplug))
	require.NoError(t, m.SetInitial(unplugged))
	return m
}

func TestTransitionRequiresRegisteredStates(t *testing.T) {
	m := New()
	m.NewState(off)
	require.NoError(t, m.SetInitial(off))

	err := m.NewTransition(off, on, switchOn)
	require.Error(t, err)
	var coreErr *core.Error
	assert.True(t, errors.As(err, &coreErr))

	err = m.NewTransition(unplugged, off, plug)
	require.Error(t, err)

	// Nothing was wired: the fact cannot move the machine.
	m.AddFact(switchOn)
	assert.False(t, m.Process())
	assert.True(t, m.IsInState(off))
}

func TestMustTransitionPanics(t *testing.T) {
	m := New()
	m.NewState(off)
	assert.Panics(t, func() { m.MustTransition(off, on, switchOn) })
}

func TestLampSequence(t *testing.T) {
	m := newLamp(t)
	require.True(t, m.IsInState(unplugged))

	steps := []struct {
		fact     Fact
		expected State
	}{
		{plug, off},
		{switchOn, on},
		{switchOff, off},
		{unplug, unplugged},
	}

	for _, step := range steps {
		m.AddFact(step.fact)
		m.Process()
		assert.Equal(t, step.expected, m.Current(), "after %s", step.fact)
	}
}

func TestReplayIsDeterministic(t *testing.T) {
	sequence := []Fact{plug, switchOn, unplug, plug, switchOn, switchOff, switchOn}

	run := func(m *Machine) State {
		for _, f := range sequence {
			m.AddFact(f)
			m.Process()
		}
		return m.Current()
	}

	m := newLamp(t)
	first := run(m)
	m.Reset()
	second := run(m)

	assert.Equal(t, first, second)
	assert.Equal(t, on, first)
}

func TestUnmatchedFactIsNoop(t *testing.T) {
	m := newLamp(t)
	m.AddFact(plug)
	m.Process()
	require.True(t, m.IsInState(off))

	m.AddFact(switchOff)
	assert.NotPanics(t, func() { m.Process() })
	assert.True(t, m.IsInState(off))
	assert.Equal(t, 1, m.Pending(), "unmatched fact stays pending")

	// The stale fact fires once the machine reaches a state that accepts it.
	m.AddFact(switchOn)
	m.Process()
	require.True(t, m.IsInState(on))
	m.Process()
	assert.True(t, m.IsInState(off))
	assert.Equal(t, 0, m.Pending())
}

func TestAddFactIsSetLike(t *testing.T) {
	m := newLamp(t)
	m.AddFact(plug)
	m.AddFact(plug)
	assert.Equal(t, 1, m.Pending())

	m.Process()
	assert.True(t, m.IsInState(off))
	assert.Equal(t, 0, m.Pending())
}

func TestLastMatchingEdgeWins(t *testing.T) {
	m := newLamp(t)
	m.AddFact(plug)
	m.Process()

	// OFF has edges UNPLUG (registered first) and SWITCH_ON.
	m.AddFact(switchOn)
	m.AddFact(unplug)
	require.True(t, m.Process())

	assert.True(t, m.IsInState(on))
	assert.Equal(t, 0, m.Pending(), "every matching fact is consumed")
}

func TestResetClearsFacts(t *testing.T) {
	m := newLamp(t)
	m.AddFact(plug)
	m.Process()
	m.AddFact(switchOff)

	m.Reset()
	assert.True(t, m.IsInState(unplugged))
	assert.Equal(t, 0, m.Pending())
}

func TestProcessBeforeInitial(t *testing.T) {
	m := New()
	m.NewState(off)
	m.AddFact(plug)
	assert.False(t, m.Process())
	assert.Equal(t, State(""), m.Current())
	assert.Error(t, m.SetInitial(on))
}
