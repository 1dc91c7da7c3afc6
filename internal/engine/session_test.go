package engine

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/gridrunner/internal/core"
	"github.com/vovakirdan/gridrunner/internal/env"
	"github.com/vovakirdan/gridrunner/internal/level"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// runner walks right one cell per tick and collects a point per tick.
type runner struct {
	env.ControllableBase
	ticks int
}

func (r *runner) Behave() {
	r.AddReward(1)
}

func (r *runner) Evolve() {
	r.ticks++
	r.Step(core.DirRight, 1)
}

type corridorFactory struct {
	built   []string
	runners []*runner
	fail    bool
}

func (f *corridorFactory) NewEnvironment(lvl *level.GameLevel, ctx EnvContext) (*env.CellEnvironment, error) {
	if f.fail {
		return nil, errors.New("factory broke")
	}
	e := env.NewCellEnvironment(env.CellConfig{
		Width: lvl.Width(), Height: lvl.Height(), CellSize: lvl.CellSize, Fill: '#', Seed: ctx.Seed,
	}, nil)
	e.SetLevel(lvl)
	r := &runner{ControllableBase: env.NewControllableBase(e.IDs().Next(), "runner", 0, 0, 1)}
	e.AddObject(r)
	if err := e.SetControlled(r); err != nil {
		return nil, err
	}
	f.built = append(f.built, lvl.ID)
	f.runners = append(f.runners, r)
	return e, nil
}

type scriptedDialog struct {
	lines   []string
	updates int
}

func (d *scriptedDialog) Show(lines ...string)               { d.lines = append(d.lines, lines...) }
func (d *scriptedDialog) Active() bool                       { return len(d.lines) > 0 }
func (d *scriptedDialog) Update()                            { d.updates++; d.lines = d.lines[1:] }
func (d *scriptedDialog) DialogController() DialogController { return d }

type listener struct {
	started  []string
	finished []string
	rewards  []float64
	runs     []RunSummary
}

func (l *listener) LevelStarted(id string) { l.started = append(l.started, id) }
func (l *listener) LevelFinished(id string, reward float64) {
	l.finished = append(l.finished, id)
	l.rewards = append(l.rewards, reward)
}
func (l *listener) SessionEnded(run RunSummary) { l.runs = append(l.runs, run) }

type sounds struct{ played []string }

func (s *sounds) PlaySound(name string) { s.played = append(s.played, name) }
func (s *sounds) LoopSound(string)      {}

type recordingView struct{ sessions []*Session }

func (v *recordingView) SetSession(s *Session) { v.sessions = append(v.sessions, s) }

func corridors(t *testing.T) *level.MemoryManager {
	t.Helper()
	m, err := level.NewMemoryManager(
		&level.GameLevel{
			ID: "one", CellSize: 1, Layout: []string{"....."},
			Links: []level.Link{{Kind: level.LinkExit, At: core.L(3, 0), TargetLevel: "two"}},
		},
		&level.GameLevel{
			ID: "two", CellSize: 1, Layout: []string{"....."},
			Dialog: []string{"hello", "again"},
			Links:  []level.Link{{Kind: level.LinkExit, At: core.L(2, 0), TargetLevel: FinishLevelID}},
		},
	)
	require.NoError(t, err)
	return m
}

type fixture struct {
	session  *Session
	clock    *fakeClock
	factory  *corridorFactory
	dialog   *scriptedDialog
	listener *listener
	sounds   *sounds
	view     *recordingView
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		clock:    &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		factory:  &corridorFactory{},
		dialog:   &scriptedDialog{},
		listener: &listener{},
		sounds:   &sounds{},
		view:     &recordingView{},
	}
	s, err := NewSession(SessionConfig{GameID: "corridor", Intermission: 5 * time.Second}, Deps{
		Levels:   corridors(t),
		Factory:  f.factory,
		View:     f.view,
		Dialogs:  f.dialog,
		Sound:    f.sounds,
		Listener: f.listener,
		Clock:    f.clock.Now,
	})
	require.NoError(t, err)
	f.session = s
	return f
}

func TestNewSessionRequiresDeps(t *testing.T) {
	_, err := NewSession(SessionConfig{}, Deps{})
	assert.Error(t, err)
	_, err = NewSession(SessionConfig{}, Deps{Levels: corridors(t)})
	assert.Error(t, err)
}

func TestSessionLevelChangeAndIntermission(t *testing.T) {
	f := newFixture(t)
	s := f.session
	require.NoError(t, s.Start())
	assert.Equal(t, "one", s.CurrentLevelID())
	assert.Equal(t, []*Session{s}, f.view.sessions)
	assert.Equal(t, []string{"one"}, f.listener.started)

	// Runner reaches the exit at x=3 on the third tick.
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Update())
	}
	assert.Equal(t, "two", s.TargetLevelID())
	assert.True(t, s.InIntermission())
	require.NotNil(t, s.Environment(), "environment lives until the next tick")

	// Next tick tears down and starts the intermission, nothing else.
	require.NoError(t, s.Update())
	assert.Nil(t, s.Environment())
	assert.Equal(t, []string{"one"}, f.listener.finished)
	assert.Equal(t, []float64{3}, f.listener.rewards)
	assert.Equal(t, []string{SoundIntermission}, f.sounds.played)
	assert.Equal(t, 5*time.Second, s.IntermissionRemaining())

	f.clock.Advance(4 * time.Second)
	require.NoError(t, s.Update())
	assert.Nil(t, s.Environment(), "still in intermission")
	assert.Equal(t, time.Second, s.IntermissionRemaining())

	f.clock.Advance(time.Second)
	require.NoError(t, s.Update())
	require.NotNil(t, s.Environment())
	assert.Equal(t, "two", s.CurrentLevelID())
	assert.False(t, s.InIntermission())
	assert.Equal(t, []string{"one", "two"}, f.factory.built)
	assert.Equal(t, []string{"one", "two"}, f.listener.started)
}

func TestSessionDialogInterceptsTicks(t *testing.T) {
	f := newFixture(t)
	s := f.session
	require.NoError(t, s.Start())
	for i := 0; i < 4; i++ {
		require.NoError(t, s.Update())
	}
	f.clock.Advance(5 * time.Second)

	// Building level two queues two dialog lines; this tick and the next
	// go to the dialog instead of the environment.
	require.NoError(t, s.Update())
	two := f.factory.runners[1]
	assert.Equal(t, 0, two.ticks)
	assert.Equal(t, 1, f.dialog.updates)

	require.NoError(t, s.Update())
	assert.Equal(t, 0, two.ticks)
	assert.Equal(t, 2, f.dialog.updates)

	require.NoError(t, s.Update())
	assert.Equal(t, 1, two.ticks, "environment resumes once the dialog is over")
}

func TestSessionFinishEndsRun(t *testing.T) {
	f := newFixture(t)
	s := f.session
	s.AddPlayer("ada")
	require.NoError(t, s.Start())
	for i := 0; i < 4; i++ {
		require.NoError(t, s.Update())
	}
	f.clock.Advance(5 * time.Second)
	// Two dialog ticks, then two runner ticks reach the finish exit at x=2.
	for i := 0; i < 4; i++ {
		require.NoError(t, s.Update())
	}
	require.True(t, s.IsEnded())
	assert.Equal(t, EndCompleted, s.EndReason())

	require.Len(t, f.listener.runs, 1)
	run := f.listener.runs[0]
	assert.Equal(t, "corridor", run.GameID)
	assert.Equal(t, "ada", run.Player)
	assert.Equal(t, []string{"one", "two"}, run.Levels)
	assert.Equal(t, run.Levels, s.Levels())
	assert.InDelta(t, 5, run.Reward, 1e-9)
	assert.Equal(t, 5*time.Second, run.Duration())

	s.End(EndQuit)
	assert.Len(t, f.listener.runs, 1, "End reports once")

	s.CleanUp()
	assert.Nil(t, s.Environment())
	assert.Nil(t, f.view.sessions[len(f.view.sessions)-1])
}

func TestSessionUnknownLevel(t *testing.T) {
	f := newFixture(t)
	s := f.session
	require.NoError(t, s.Start())

	s.PrepareLevelChange("attic")
	require.NoError(t, s.Update())
	f.clock.Advance(5 * time.Second)

	err := s.Update()
	var engineErr *core.Error
	require.True(t, errors.As(err, &engineErr))
	assert.Contains(t, err.Error(), "attic")
}

func TestSessionFactoryFailure(t *testing.T) {
	f := newFixture(t)
	f.factory.fail = true
	err := f.session.Start()
	assert.ErrorContains(t, err, "factory broke")
}

func TestSessionDrivenByThread(t *testing.T) {
	f := newFixture(t)
	s := f.session
	require.NoError(t, s.Start())

	th := NewGameThread(s, time.Millisecond, nil)
	died := make(chan error, 1)
	th.SetObserver(ThreadObserverFunc(func(err error) { died <- err }))
	th.Start()

	require.Eventually(t, func() bool { return s.InIntermission() }, time.Second, time.Millisecond)
	s.End(EndQuit)

	select {
	case err := <-died:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("thread did not stop after the session ended")
	}
}
