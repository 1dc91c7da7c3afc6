package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/gridrunner/internal/registry"
	"github.com/vovakirdan/gridrunner/internal/storage"
)

const (
	minWidthForPanel = 100 // narrower terminals get no detail panel
	panelWidth       = 28
	maxRuns          = 100
)

// Detail panel contents.
type panelMode int

const (
	panelRoute  panelMode = iota // levels of the selected run
	panelLevels                  // totals per level for the game
)

// RunsKeyMap defines the key bindings for the runs board.
type RunsKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	NextGame key.Binding
	PrevGame key.Binding
	Panel    key.Binding
	Back     key.Binding
	Quit     key.Binding
}

// ShortHelp implements help.KeyMap.
func (k RunsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextGame, k.Panel, k.Back}
}

// FullHelp implements help.KeyMap.
func (k RunsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextGame, k.PrevGame},
		{k.Panel, k.Back, k.Quit},
	}
}

// DefaultRunsKeyMap returns default key bindings.
func DefaultRunsKeyMap() RunsKeyMap {
	return RunsKeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		NextGame: key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "next game")),
		PrevGame: key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("S-tab", "prev game")),
		Panel:    key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "route/levels")),
		Back:     key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc/b", "back")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// RunsModel shows the best recorded runs of each game. On wide terminals a
// side panel shows the route of the selected run or per-level totals.
type RunsModel struct {
	store *storage.Store
	games []registry.GameInfo
	game  int

	runs   []storage.Run
	stats  *storage.GameStats
	levels []storage.LevelStats
	route  []storage.LevelVisit
	err    error

	table table.Model
	help  help.Model
	keys  RunsKeyMap
	panel panelMode

	width, height int
	quitting      bool
	goingBack     bool
}

// NewRunsModel creates a runs board over store. A nil store shows an empty
// board.
func NewRunsModel(store *storage.Store, width, height int) RunsModel {
	m := RunsModel{
		store:  store,
		games:  registry.List(),
		keys:   DefaultRunsKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}
	m.table = m.newTable()
	m.load()
	return m
}

func (m RunsModel) wide() bool { return m.width >= minWidthForPanel }

func (m RunsModel) newTable() table.Model {
	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Player", Width: 10},
		{Title: "Reward", Width: 7},
		{Title: "Levels", Width: 6},
		{Title: "End", Width: 9},
		{Title: "Time", Width: 6},
		{Title: "Date", Width: 12},
	}
	avail := m.width - 6
	if m.wide() {
		avail -= panelWidth + 4
	}
	for _, c := range columns {
		avail -= c.Width + 2
	}
	if avail > 0 {
		columns[1].Width += min(avail, 14)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(3, m.height-9)),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

// load fetches runs and totals of the selected game.
func (m *RunsModel) load() {
	m.runs, m.stats, m.levels, m.route, m.err = nil, nil, nil, nil, nil
	if m.store != nil && len(m.games) > 0 {
		id := m.games[m.game].ID
		m.runs, m.err = m.store.BestRuns(id, maxRuns)
		if m.err == nil {
			m.stats, m.err = m.store.GetGameStats(id)
		}
		if m.err == nil {
			m.levels, m.err = m.store.GetLevelStats(id)
		}
	}

	rows := make([]table.Row, len(m.runs))
	for i, r := range m.runs {
		rows[i] = table.Row{
			fmt.Sprint(i + 1),
			r.Player,
			fmt.Sprintf("%.0f", r.Reward),
			fmt.Sprint(r.Levels),
			r.EndReason,
			formatDuration(r.Duration()),
			r.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
	m.loadRoute()
}

// loadRoute fetches the levels of the run under the cursor.
func (m *RunsModel) loadRoute() {
	m.route = nil
	i := m.table.Cursor()
	if m.store == nil || i < 0 || i >= len(m.runs) {
		return
	}
	route, err := m.store.RunLevels(m.runs[i].ID)
	if err != nil {
		m.err = err
		return
	}
	m.route = route
}

func (m *RunsModel) switchGame(delta int) {
	if len(m.games) == 0 {
		return
	}
	m.game = (m.game + delta + len(m.games)) % len(m.games)
	m.load()
}

// Init implements tea.Model.
func (m RunsModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m RunsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.NextGame):
			m.switchGame(1)
			return m, nil
		case key.Matches(msg, m.keys.PrevGame):
			m.switchGame(-1)
			return m, nil
		case key.Matches(msg, m.keys.Panel):
			m.panel = 1 - m.panel
			return m, nil
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		m.loadRoute()
		return m, cmd

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		cursor := m.table.Cursor()
		rows := m.table.Rows()
		m.table = m.newTable()
		m.table.SetRows(rows)
		m.table.SetCursor(cursor)
		return m, nil
	}
	return m, nil
}

var (
	boardTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	boardBoxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	boardEmptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true).Padding(2, 4)
	boardTabStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1)
	boardActiveTab  = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)
)

// View implements tea.Model.
func (m RunsModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	title := "BEST RUNS"
	if len(m.games) > 0 {
		title += " - " + m.games[m.game].Title
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(boardTitleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n")
	if len(m.games) > 1 {
		b.WriteString(centerText(m.tabs(), m.width))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	body := boardBoxStyle.Render(m.tableView())
	if m.wide() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, "  ", boardBoxStyle.Width(panelWidth).Render(m.panelView()))
	}
	b.WriteString(body)

	if line := m.statsLine(); line != "" {
		b.WriteString("\n")
		b.WriteString(centerText(line, m.width))
	}
	b.WriteString("\n")
	b.WriteString(statusDimStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m RunsModel) tabs() string {
	tabs := make([]string, len(m.games))
	for i, g := range m.games {
		if i == m.game {
			tabs[i] = boardActiveTab.Render(g.Title)
		} else {
			tabs[i] = boardTabStyle.Render(g.Title)
		}
	}
	line := strings.Join(tabs, " ")
	if lipgloss.Width(line) > m.width-4 {
		return fmt.Sprintf("< %s >", m.games[m.game].Title)
	}
	return line
}

func (m RunsModel) tableView() string {
	switch {
	case m.err != nil:
		return boardEmptyStyle.Render("Cannot load runs:\n" + m.err.Error())
	case len(m.runs) == 0:
		return boardEmptyStyle.Render("No runs recorded yet.\nFinish a run to get on the board!")
	}
	return m.table.View()
}

// panelView lists the route of the selected run, or how each level of the
// game has gone so far.
func (m RunsModel) panelView() string {
	var b strings.Builder
	switch m.panel {
	case panelRoute:
		b.WriteString("Route\n")
		if len(m.route) == 0 {
			b.WriteString(statusDimStyle.Render("no levels"))
		}
		for _, v := range m.route {
			fmt.Fprintf(&b, "%2d. %-14s %5.0f\n", v.Seq+1, truncate(v.LevelID, 14), v.Reward)
		}
	case panelLevels:
		b.WriteString("Levels\n")
		if len(m.levels) == 0 {
			b.WriteString(statusDimStyle.Render("no visits"))
		}
		for _, l := range m.levels {
			fmt.Fprintf(&b, "%-14s %3dx %5.0f\n", truncate(l.LevelID, 14), l.Visits, l.BestReward)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// statsLine summarizes all runs of the selected game.
func (m RunsModel) statsLine() string {
	if m.stats == nil || m.stats.RunsCount == 0 {
		return ""
	}
	return statusDimStyle.Render(fmt.Sprintf("%d runs  |  %d completed  |  best %.0f  |  average %.1f",
		m.stats.RunsCount, m.stats.Completed, m.stats.BestReward, m.stats.AvgReward))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// formatDuration renders d as m:ss.
func formatDuration(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// IsGoingBack reports whether the player asked to return to the menu.
func (m RunsModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting reports whether the player asked to quit.
func (m RunsModel) IsQuitting() bool {
	return m.quitting
}

// RunRunsBoard shows the runs board in its own program. goBack is true when
// the player left with back rather than quit.
func RunRunsBoard(store *storage.Store, width, height int) (goBack bool, err error) {
	final, err := tea.NewProgram(NewRunsModel(store, width, height), tea.WithAltScreen()).Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(RunsModel)
	return ok && m.IsGoingBack(), nil
}
