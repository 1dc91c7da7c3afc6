package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/gridrunner/internal/core"
	"github.com/vovakirdan/gridrunner/internal/engine"
)

// GameDoneMsg is sent by an embedded Model when its run is over and the
// player pressed quit.
type GameDoneMsg struct {
	Status Status
}

// Model is the Bubble Tea model for one running session.
type Model struct {
	play       *Play
	keymap     KeyMap
	help       help.Model
	screen     *core.Screen
	refresh    time.Duration
	status     Status
	threadErr  error
	quitting   bool
	standalone bool // quit the program instead of returning to a menu
}

// NewModel creates a model for play. The play must not be started yet; Init
// starts it.
func NewModel(play *Play, keymap KeyMap, refresh time.Duration, width, height int) Model {
	h := help.New()
	h.ShowAll = false
	return Model{
		play:       play,
		keymap:     keymap,
		help:       h,
		screen:     core.NewScreen(width, max(1, height-2)),
		refresh:    refresh,
		standalone: true,
	}
}

// Embedded returns a copy of m that reports GameDoneMsg instead of quitting.
func (m Model) Embedded() Model {
	m.standalone = false
	return m
}

// Init starts the run, the repaint loop and the watch on the game thread.
func (m Model) Init() tea.Cmd {
	if err := m.play.Start(); err != nil {
		return func() tea.Msg { return ThreadDiedMsg{Err: err} }
	}
	t := m.play.Thread()
	return tea.Batch(refreshCmd(m.refresh), waitThread(t.Done(), t.Err))
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.screen.Resize(msg.Width, max(1, msg.Height-2))
		m.help.Width = msg.Width
		return m, nil

	case RefreshMsg:
		m.status = m.play.Paint(m.screen)
		return m, refreshCmd(m.refresh)

	case ThreadDiedMsg:
		m.threadErr = msg.Err
		m.status = m.play.Paint(m.screen)
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m.quit()
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keymap.Pause):
		m.play.Thread().Pause()
		return m, nil
	case msg.String() == "ctrl+s":
		m.saveScreenshot()
		return m, nil
	}

	action, ok := m.keymap.Action(msg)
	if !ok {
		return m, nil
	}
	if action == core.ActionConfirm && m.play.Dialog().Active() {
		m.play.Dialog().Confirm()
		return m, nil
	}
	m.play.Keys().Press(action)
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.play.Stop(engine.EndQuit)
	m.status = m.play.Paint(m.screen)
	if m.standalone {
		m.quitting = true
		return m, tea.Quit
	}
	st := m.status
	return m, func() tea.Msg { return GameDoneMsg{Status: st} }
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	dir := filepath.Join(os.Getenv("HOME"), ".gridrunner", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.txt", m.play.game.ID(), timestamp)
	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(filepath.Join(dir, filename), []byte(m.screen.String()), 0o600)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(RenderScreen(m.screen))
	sb.WriteRune('\n')
	sb.WriteString(renderStatus(m.status.Level, m.status.Reward, m.status.Frames, m.play.Thread().Paused(), m.screen.Width()))
	if m.threadErr != nil {
		sb.WriteString("\n" + statusDimStyle.Render("error: "+m.threadErr.Error()))
	} else {
		sb.WriteString("\n" + m.help.View(m.keymap))
	}
	return sb.String()
}

// Status returns the state shown by the last repaint.
func (m Model) Status() Status {
	return m.status
}

// Run plays a session in the local terminal until the player quits.
func Run(opts PlayOptions, width, height int) (Status, error) {
	play, err := NewPlay(opts)
	if err != nil {
		return Status{}, err
	}
	cfg := opts.Config
	model := NewModel(play, NewKeyMap(cfg.Keys), cfg.Runtime(width, height).RefreshInterval(), width, height)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	final, err := p.Run()
	// A killed program never saw the quit key.
	play.Stop(engine.EndQuit)
	if err != nil {
		return Status{}, err
	}
	if fm, ok := final.(Model); ok {
		return fm.Status(), nil
	}
	return Status{}, nil
}
