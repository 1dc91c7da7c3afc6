package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/gridrunner/internal/config"
	"github.com/vovakirdan/gridrunner/internal/engine"
	"github.com/vovakirdan/gridrunner/internal/registry"
	"github.com/vovakirdan/gridrunner/internal/storage"
)

// SSHServer serves one game session per SSH connection through Wish. All
// sessions share the run store.
type SSHServer struct {
	config config.Config
	server *ssh.Server
	store  *storage.Store
	logger *log.Logger
}

// NewSSHServer creates a new SSH server. store may be nil, in which case runs
// are not recorded. A nil logger writes to stderr.
func NewSSHServer(cfg config.Config, store *storage.Store, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "gridrunner-ssh",
		})
	}

	srv := &SSHServer{
		config: cfg,
		store:  store,
		logger: logger,
	}

	// Resolve host key path
	hostKeyPath := cfg.Server.HostKeyPath
	if hostKeyPath == "" || hostKeyPath[0] == '~' {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("tui: cannot get home directory: %w", homeErr)
		}
		if hostKeyPath == "" {
			hostKeyPath = filepath.Join(home, ".gridrunner", "host_key")
		} else {
			hostKeyPath = filepath.Join(home, hostKeyPath[1:])
		}
	}

	// Ensure host key directory exists
	hostKeyDir := filepath.Dir(hostKeyPath)
	if mkdirErr := os.MkdirAll(hostKeyDir, 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("tui: cannot create host key directory: %w", mkdirErr)
	}

	// Create Wish server options
	opts := []ssh.Option{
		wish.WithAddress(cfg.Server.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(time.Duration(cfg.Server.IdleTimeoutMin) * time.Minute),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	// Create the server
	server, err := wish.NewServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("tui: cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	plays := &playTracker{}
	go func() {
		<-sshSession.Context().Done()
		plays.stop()
	}()

	// Create session model that handles menu + game flow
	model := NewSessionModel(SessionOptions{
		Config: s.config,
		Store:  s.store,
		Player: sshSession.User(),
		Bell:   sshSession,
		Logger: s.logger.With("user", sshSession.User()),
		Width:  pty.Window.Width,
		Height: pty.Window.Height,
		plays:  plays,
	})

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Server.Address)

	// Setup signal handling for graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Server.Address
}

// SessionOptions configure a SessionModel.
type SessionOptions struct {
	Config config.Config
	Store  *storage.Store
	Player string
	Bell   io.Writer
	Logger *log.Logger
	Width  int
	Height int

	// plays tracks the run in progress so a dropped connection can end it.
	plays *playTracker
}

type playTracker struct {
	mu   sync.Mutex
	play *Play
}

func (t *playTracker) set(p *Play) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.play = p
}

// stop ends the tracked run, if any.
func (t *playTracker) stop() {
	if t == nil {
		return
	}
	t.mu.Lock()
	p := t.play
	t.play = nil
	t.mu.Unlock()
	if p != nil {
		p.Stop(engine.EndQuit)
	}
}

// SessionModel manages the full flow of one connection: menu -> game ->
// menu, with the runs board one key away.
type SessionModel struct {
	opts     SessionOptions
	width    int
	height   int
	menu     MenuModel
	runs     *RunsModel
	game     *Model
	lastRun  Status
	err      error
	quitting bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(opts SessionOptions) SessionModel {
	return SessionModel{
		opts:   opts,
		width:  opts.Width,
		height: opts.Height,
		menu:   NewMenuModel(opts.Config, opts.Width, opts.Height),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle window resize globally
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = wsm.Width
		m.height = wsm.Height
	}

	switch {
	case m.game != nil:
		return m.updateGame(msg)
	case m.runs != nil:
		return m.updateRuns(msg)
	}
	return m.updateMenu(msg)
}

// updateMenu handles updates when in menu mode. The menu quits its own
// program when done; here the flags are read instead.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	switch {
	case m.menu.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.menu.WantsRuns():
		runs := NewRunsModel(m.opts.Store, m.width, m.height)
		m.runs = &runs
		return m, runs.Init()

	case m.menu.Selected() != nil:
		return m.startGame(*m.menu.Selected())
	}

	return m, cmd
}

func (m SessionModel) startGame(item MenuItem) (tea.Model, tea.Cmd) {
	m.menu = NewMenuModel(m.opts.Config, m.width, m.height)

	game, err := registry.Create(item.GameID)
	if err != nil {
		m.err = err
		return m, nil
	}
	play, err := NewPlay(PlayOptions{
		Config:     m.opts.Config,
		Game:       game,
		Store:      m.opts.Store,
		Player:     m.opts.Player,
		StartLevel: item.LevelID,
		Bell:       m.opts.Bell,
		Logger:     m.opts.Logger,
	})
	if err != nil {
		m.err = err
		return m, nil
	}

	m.err = nil
	m.opts.plays.set(play)
	cfg := m.opts.Config
	gm := NewModel(play, NewKeyMap(cfg.Keys), cfg.Runtime(m.width, m.height).RefreshInterval(), m.width, m.height).Embedded()
	m.game = &gm
	return m, gm.Init()
}

// updateGame handles updates when in game mode.
func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	if done, ok := msg.(GameDoneMsg); ok {
		m.lastRun = done.Status
		m.game = nil
		m.opts.plays.set(nil)
		return m, nil
	}

	newModel, cmd := m.game.Update(msg)
	if gameModel, ok := newModel.(Model); ok {
		m.game = &gameModel
	}
	return m, cmd
}

// updateRuns handles updates when the runs board is open.
func (m SessionModel) updateRuns(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.runs.Update(msg)
	if runs, ok := newModel.(RunsModel); ok {
		m.runs = &runs
	}

	switch {
	case m.runs.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.runs.IsGoingBack():
		m.runs = nil
		m.menu = NewMenuModel(m.opts.Config, m.width, m.height)
		return m, nil
	}
	return m, cmd
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch {
	case m.game != nil:
		return m.game.View()
	case m.runs != nil:
		return m.runs.View()
	}

	view := m.menu.View()
	if m.err != nil {
		view += "\n" + centerText(statusDimStyle.Render(m.err.Error()), m.width)
	} else if m.lastRun.Reason != "" {
		view += "\n" + centerText(statusDimStyle.Render(fmt.Sprintf("last run: %s, reward %.0f, %d levels",
			m.lastRun.Reason, m.lastRun.Reward, m.lastRun.Levels)), m.width)
	}
	return view
}
