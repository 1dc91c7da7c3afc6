package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/gridrunner/internal/config"
	"github.com/vovakirdan/gridrunner/internal/level"
	"github.com/vovakirdan/gridrunner/internal/registry"
)

// MenuItem is one place a run can start from.
type MenuItem struct {
	GameID  string
	Title   string
	LevelID string
	Start   bool // the level a run normally starts with
}

// MenuModel is the Bubble Tea model for the start menu. It lists the levels
// of every registered game.
type MenuModel struct {
	items    []MenuItem
	cursor   int
	width    int
	height   int
	err      error
	quitting bool
	selected *MenuItem // Set when user selects a level
	openRuns bool      // True if user pressed Tab for the runs board
}

// NewMenuModel creates a new menu model.
func NewMenuModel(cfg config.Config, width, height int) MenuModel {
	m := MenuModel{width: width, height: height}
	for _, info := range registry.List() {
		g, err := registry.Create(info.ID)
		if err != nil {
			m.err = err
			continue
		}
		levels, err := g.Levels(cfg.LevelsDir, cfg.StartLevel)
		if err != nil {
			m.err = err
			continue
		}
		start := levels.StartLevelID()
		for _, id := range LevelIDs(levels) {
			m.items = append(m.items, MenuItem{
				GameID:  info.ID,
				Title:   info.Title,
				LevelID: id,
				Start:   id == start,
			})
		}
	}
	return m
}

// LevelIDs lists the levels of m with the start level first. Managers that
// cannot enumerate their levels yield only the start level.
func LevelIDs(m level.Manager) []string {
	start := m.StartLevelID()
	ids := []string{start}
	lister, ok := m.(interface{ SortedIDs() []string })
	if !ok {
		return ids
	}
	for _, id := range lister.SortedIDs() {
		if id != start {
			ids = append(ids, id)
		}
	}
	return ids
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch MapKeyToMenuAction(msg) {
	case MenuActionQuit, MenuActionBack:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionSelect:
		if len(m.items) > 0 {
			selected := m.items[m.cursor]
			m.selected = &selected
			return m, tea.Quit // Exit menu to start game
		}

	case MenuActionRuns:
		m.openRuns = true
		return m, tea.Quit // Exit menu to show the runs board
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText("  G R I D R U N N E R  ", m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Pick a level", m.width))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(centerText("No levels found.", m.width))
		b.WriteString("\n")
	}
	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		start := ""
		if item.Start {
			start = " (start)"
		}
		line := fmt.Sprintf("%s%s: %s%s", cursor, item.Title, item.LevelID, start)
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(centerText(statusDimStyle.Render(m.err.Error()), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Up/Down: Navigate  |  Enter: Play  |  Tab: Runs  |  Q: Quit"
	b.WriteString(centerText(controls, m.width))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// WantsRuns returns true if user requested the runs board.
func (m MenuModel) WantsRuns() bool {
	return m.openRuns
}

// Size returns the last known terminal size.
func (m MenuModel) Size() (int, int) {
	return m.width, m.height
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	if len(text) >= width {
		return text
	}
	padding := (width - len(text)) / 2
	return strings.Repeat(" ", padding) + text
}

// MenuResult holds the result of running the menu.
type MenuResult struct {
	GameID    string
	LevelID   string
	Width     int
	Height    int
	WantsRuns bool
	Quit      bool
}

// RunMenu runs the menu and returns the selection result.
func RunMenu(cfg config.Config, width, height int) (MenuResult, error) {
	p := tea.NewProgram(
		NewMenuModel(cfg, width, height),
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return MenuResult{Width: width, Height: height}, err
	}

	m, ok := finalModel.(MenuModel)
	if !ok {
		return MenuResult{Width: width, Height: height, Quit: true}, nil
	}
	return m.Result(), nil
}

// Result summarizes what the player chose.
func (m MenuModel) Result() MenuResult {
	result := MenuResult{Width: m.width, Height: m.height}
	switch {
	case m.WantsRuns():
		result.WantsRuns = true
	case m.IsQuitting() || m.Selected() == nil:
		result.Quit = true
	default:
		result.GameID = m.Selected().GameID
		result.LevelID = m.Selected().LevelID
	}
	return result
}
