package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/gridrunner/internal/config"
	"github.com/vovakirdan/gridrunner/internal/core"
	"github.com/vovakirdan/gridrunner/internal/engine"
	"github.com/vovakirdan/gridrunner/internal/env"
	"github.com/vovakirdan/gridrunner/internal/games/maze"
	"github.com/vovakirdan/gridrunner/internal/level"
	"github.com/vovakirdan/gridrunner/internal/storage"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestKeyMapOrderAndLookup(t *testing.T) {
	keys := config.DefaultKeys()
	keys["zap"] = []string{"Z"}
	keys["none"] = []string{"  "}
	km := NewKeyMap(keys)

	assert.Equal(t, []string{"up", "down", "left", "right", "fire", "confirm", "zap"}, km.Actions())

	tests := []struct {
		msg  tea.KeyMsg
		want string
		ok   bool
	}{
		{tea.KeyMsg{Type: tea.KeyUp}, core.ActionUp, true},
		{runes("j"), core.ActionDown, true},
		{runes("a"), core.ActionLeft, true},
		{runes(" "), core.ActionFire, true},
		{tea.KeyMsg{Type: tea.KeyEnter}, core.ActionConfirm, true},
		{runes("z"), "zap", true},
		{runes("x"), "", false},
	}
	for _, tt := range tests {
		got, ok := km.Action(tt.msg)
		assert.Equal(t, tt.ok, ok, tt.msg.String())
		assert.Equal(t, tt.want, got, tt.msg.String())
	}

	assert.Len(t, km.FullHelp(), 2)
	assert.Len(t, km.ShortHelp(), 3)
}

func TestMapKeyToMenuAction(t *testing.T) {
	tests := []struct {
		msg  tea.KeyMsg
		want MenuAction
	}{
		{runes("q"), MenuActionQuit},
		{tea.KeyMsg{Type: tea.KeyUp}, MenuActionUp},
		{runes("j"), MenuActionDown},
		{tea.KeyMsg{Type: tea.KeyEnter}, MenuActionSelect},
		{tea.KeyMsg{Type: tea.KeyEsc}, MenuActionBack},
		{tea.KeyMsg{Type: tea.KeyTab}, MenuActionRuns},
		{runes("x"), MenuActionNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MapKeyToMenuAction(tt.msg), tt.msg.String())
	}
}

func TestKeyControllerDeliversAfterUpdate(t *testing.T) {
	c := NewKeyController()
	assert.False(t, c.Press(core.ActionUp), "nothing bound yet")

	obj := env.NewControllableBase(1, "p", 0, 0, 1)
	c.RegisterControlListener(&obj)
	require.True(t, c.Bound())

	assert.True(t, c.Press(core.ActionUp))
	assert.True(t, c.Press(core.ActionUp))
	assert.True(t, c.Press(core.ActionFire))
	assert.Equal(t, 2, c.Pending())
	assert.Equal(t, 0, obj.Actions().Len(), "presses wait for the game thread")

	c.EnvironmentUpdated(nil)
	assert.True(t, obj.Actions().Has(core.ActionUp))
	assert.True(t, obj.Actions().Has(core.ActionFire))
	assert.Equal(t, 0, c.Pending())
	assert.Equal(t, uint64(1), c.Frames())

	c.Press(core.ActionDown)
	c.UnRegisterControlListener(&obj)
	assert.False(t, c.Bound())
	assert.Equal(t, 0, c.Pending())
}

func TestWrap(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  []string
	}{
		{"", 10, []string{""}},
		{"hello world", 20, []string{"hello world"}},
		{"hello world", 5, []string{"hello", "world"}},
		{"the quick brown fox", 9, []string{"the quick", "brown fox"}},
		{"abcdefgh", 3, []string{"abc", "def", "gh"}},
		{"no limit", 0, []string{"no limit"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, wrap(tt.text, tt.width), tt.text)
	}
}

func TestDrawEnvironment(t *testing.T) {
	g := maze.New()
	lvl := &level.GameLevel{ID: "t", Name: "t", CellSize: 2, Layout: []string{"#@o#"}}
	cells, err := g.NewEnvironment(lvl, engine.EnvContext{Seed: 1})
	require.NoError(t, err)

	w, h := EnvironmentSize(cells)
	assert.Equal(t, 8, w)
	assert.Equal(t, 1, h)

	scr := core.NewScreen(w, h)
	DrawEnvironment(scr, cells, g, 0, 0)
	assert.Equal(t, "██@ o ██", scr.Row(0))
}

func TestDrawDialogAndGameOver(t *testing.T) {
	scr := core.NewScreen(40, 10)
	DrawDialog(scr, "Collect every coin before the exit", true)
	assert.Contains(t, scr.String(), "Collect every coin")
	assert.Contains(t, scr.String(), "▼")

	DrawGameOver(scr, engine.EndCompleted, 40, 3)
	assert.Contains(t, scr.String(), "YOU MADE IT")
	assert.Contains(t, scr.String(), "Reward: 40")
	assert.NotContains(t, scr.String(), "Collect")
}

func TestRenderStatus(t *testing.T) {
	line := renderStatus("1-entry", 20, 42, true, 60)
	assert.Contains(t, line, "1-entry")
	assert.Contains(t, line, "reward 20")
	assert.Contains(t, line, "PAUSED")
	assert.Contains(t, line, "frame 42")
}

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.Engine.TickDelayMS = 1
	cfg.Engine.IntermissionMS = 0
	cfg.Engine.Seed = 1
	cfg.Sound.Enabled = false
	return cfg
}

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPlayRecordsRun(t *testing.T) {
	store := openStore(t)
	play, err := NewPlay(PlayOptions{
		Config: testConfig(),
		Game:   maze.New(),
		Store:  store,
		Player: "alice",
	})
	require.NoError(t, err)
	require.NoError(t, play.Start())

	require.Eventually(t, func() bool {
		return play.Thread().Ticks() > 3
	}, 2*time.Second, time.Millisecond)

	scr := core.NewScreen(60, 20)
	st := play.Paint(scr)
	assert.Equal(t, "1-entry", st.Level)
	assert.False(t, st.Ended)

	play.Stop(engine.EndQuit)
	play.Stop(engine.EndQuit)

	st = play.Paint(scr)
	assert.True(t, st.Ended)
	assert.Equal(t, engine.EndQuit, st.Reason)
	assert.Contains(t, scr.String(), "GAME OVER")

	runs, err := store.RecentRuns(5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "alice", runs[0].Player)
	assert.Equal(t, "maze", runs[0].GameID)
	assert.Equal(t, engine.EndQuit, runs[0].EndReason)
	assert.Len(t, play.Recorder().Saved(), 1)
}

func TestPlayUnknownStartLevel(t *testing.T) {
	_, err := NewPlay(PlayOptions{Config: testConfig(), Game: maze.New(), StartLevel: "nowhere"})
	assert.Error(t, err)

	_, err = NewPlay(PlayOptions{Config: testConfig()})
	assert.Error(t, err)
}

func TestEmbeddedModelReturnsToMenu(t *testing.T) {
	cfg := testConfig()
	play, err := NewPlay(PlayOptions{Config: cfg, Game: maze.New()})
	require.NoError(t, err)

	m := NewModel(play, NewKeyMap(cfg.Keys), 10*time.Millisecond, 60, 20).Embedded()
	require.NotNil(t, m.Init())

	next, _ := m.Update(tea.WindowSizeMsg{Width: 70, Height: 22})
	next, _ = next.Update(RefreshMsg(time.Now()))
	assert.Equal(t, "1-entry", next.(Model).Status().Level)
	assert.True(t, strings.Contains(next.View(), "1-entry"))

	_, cmd := next.Update(runes("q"))
	require.NotNil(t, cmd)
	done, ok := cmd().(GameDoneMsg)
	require.True(t, ok)
	assert.True(t, done.Status.Ended)
	assert.Equal(t, engine.EndQuit, done.Status.Reason)
}

func TestMenuListsLevels(t *testing.T) {
	m := NewMenuModel(testConfig(), 80, 24)
	require.GreaterOrEqual(t, len(m.items), 3)
	assert.Equal(t, "1-entry", m.items[0].LevelID)
	assert.True(t, m.items[0].Start)
	assert.Contains(t, m.View(), "Maze Runner: 1-entry (start)")

	next, _ := m.Update(runes("j"))
	next, cmd := next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	res := next.(MenuModel).Result()
	assert.False(t, res.Quit)
	assert.Equal(t, "maze", res.GameID)
	assert.Equal(t, "2-vault", res.LevelID)

	next, _ = NewMenuModel(testConfig(), 80, 24).Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.True(t, next.(MenuModel).Result().WantsRuns)
}

func TestRunsModelShowsBestRuns(t *testing.T) {
	store := openStore(t)
	_, err := store.SaveRun(
		storage.Run{GameID: "maze", Player: "bob", Reward: 30, Levels: 2, EndReason: engine.EndCaught, DurationMS: 65000},
		[]storage.LevelVisit{{LevelID: "1-entry", Reward: 10}, {LevelID: "2-vault", Reward: 20}},
	)
	require.NoError(t, err)

	m := NewRunsModel(store, 120, 30)
	require.Len(t, m.runs, 1)
	view := m.View()
	assert.Contains(t, view, "BEST RUNS - Maze Runner")
	assert.Contains(t, view, "bob")
	assert.Contains(t, view, "1:05")
	assert.Contains(t, view, "1 runs")
	assert.Contains(t, view, "Route")
	assert.Contains(t, view, "2-vault")

	next, _ := m.Update(runes("v"))
	view = next.View()
	assert.Contains(t, view, "Levels")
	assert.Contains(t, view, "1x")

	narrow := NewRunsModel(store, 80, 30).View()
	assert.NotContains(t, narrow, "Route")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, next.(RunsModel).IsGoingBack())
}
