package engine

import (
	"io"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/gridrunner/internal/core"
	"github.com/vovakirdan/gridrunner/internal/env"
	"github.com/vovakirdan/gridrunner/internal/level"
)

// FinishLevelID is the exit target that completes the game instead of
// loading another level.
const FinishLevelID = "finish"

// SessionConfig holds the values read once when a session is created.
type SessionConfig struct {
	GameID       string
	Intermission time.Duration
	Seed         int64
}

// Deps are the collaborators of a session. Levels and Factory are required.
type Deps struct {
	Levels     level.Manager
	Factory    EnvironmentFactory
	Controller Controller
	View       View
	Dialogs    DialogEngine
	Sound      SoundEngine
	Listener   LevelListener
	Clock      func() time.Time
	Logger     *log.Logger
}

// Session sequences the levels of one game.
type Session struct {
	cfg  SessionConfig
	deps Deps
	log  *log.Logger

	mu              sync.Mutex
	env             *env.CellEnvironment
	currentLevel    string
	targetLevel     string
	changeRequested bool
	intermission    bool
	intermissionEnd time.Time
	players         []string
	visited         []string
	started         time.Time

	levelReward float64
	totalReward float64

	ended     atomic.Bool
	endOnce   sync.Once
	endReason string
	frames    atomic.Uint64
}

// NewSession validates deps and creates an idle session. Call Start to build
// the first level.
func NewSession(cfg SessionConfig, deps Deps) (*Session, error) {
	if deps.Levels == nil {
		return nil, core.Errorf("engine.NewSession", "no level manager")
	}
	if deps.Factory == nil {
		return nil, core.Errorf("engine.NewSession", "no environment factory")
	}
	if deps.Levels.Size() == 0 {
		return nil, core.Errorf("engine.NewSession", "level manager is empty")
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard)
	}
	return &Session{
		cfg:  cfg,
		deps: deps,
		log:  deps.Logger.WithPrefix("session"),
	}, nil
}

// Start builds the environment of the start level and hands the session to
// the view.
func (s *Session) Start() error {
	s.mu.Lock()
	s.started = s.deps.Clock()
	start := s.deps.Levels.StartLevelID()
	s.targetLevel = start
	err := s.buildEnvironmentLocked(start)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.log.Info("session started", "game", s.cfg.GameID, "level", start)
	if s.deps.Listener != nil {
		s.deps.Listener.LevelStarted(start)
	}
	if s.deps.View != nil {
		s.deps.View.SetSession(s)
	}
	return nil
}

// Update runs one tick. The order is fixed: a requested level change tears
// down the environment and starts the intermission; an elapsed intermission
// builds the target level; an active dialog swallows the tick; otherwise the
// environment updates.
func (s *Session) Update() error {
	if s.IsEnded() {
		return nil
	}

	s.mu.Lock()
	if s.changeRequested {
		s.changeRequested = false
		finished := s.currentLevel
		s.destroyEnvironmentLocked()
		s.intermission = true
		s.intermissionEnd = s.deps.Clock().Add(s.cfg.Intermission)
		reward := s.totalReward
		target := s.targetLevel
		s.mu.Unlock()

		s.enterIntermission(finished, target, reward)
		return nil
	}

	started := ""
	if s.intermission && !s.deps.Clock().Before(s.intermissionEnd) {
		s.intermission = false
		if err := s.buildEnvironmentLocked(s.targetLevel); err != nil {
			s.mu.Unlock()
			return err
		}
		started = s.currentLevel
	}
	e := s.env
	s.mu.Unlock()

	if started != "" {
		s.log.Info("level started", "level", started)
		if s.deps.Listener != nil {
			s.deps.Listener.LevelStarted(started)
		}
	}

	if dc := s.dialogController(); dc != nil && dc.Active() {
		dc.Update()
		return nil
	}
	if e != nil {
		e.Update()
	}
	return nil
}

func (s *Session) enterIntermission(finished, target string, reward float64) {
	s.log.Info("intermission", "finished", finished, "next", target, "reward", reward)
	if s.deps.Listener != nil {
		s.deps.Listener.LevelFinished(finished, reward)
	}
	if s.deps.Sound != nil {
		s.deps.Sound.PlaySound(SoundIntermission)
	}
}

func (s *Session) dialogController() DialogController {
	if s.deps.Dialogs == nil {
		return nil
	}
	return s.deps.Dialogs.DialogController()
}

func (s *Session) buildEnvironmentLocked(id string) error {
	lvl, err := s.deps.Levels.Level(id)
	if err != nil {
		return core.Wrap(err, "engine.Session", "cannot load level %q", id)
	}
	e, err := s.deps.Factory.NewEnvironment(lvl, EnvContext{
		Session: s,
		Sound:   s.deps.Sound,
		Seed:    s.cfg.Seed + int64(len(s.visited)),
	})
	if err != nil {
		return core.Wrap(err, "engine.Session", "cannot build level %q", id)
	}

	e.SetLinkHandler(s)
	e.AddObserver(s)
	if s.deps.Controller != nil {
		e.SetController(s.deps.Controller)
	}

	s.env = e
	s.currentLevel = id
	s.levelReward = 0
	s.visited = append(s.visited, id)

	if len(lvl.Dialog) > 0 {
		if script, ok := s.deps.Dialogs.(DialogScript); ok {
			script.Show(lvl.Dialog...)
		}
	}
	return nil
}

func (s *Session) destroyEnvironmentLocked() {
	if s.env == nil {
		return
	}
	s.syncLevelRewardLocked()
	s.env.CleanUp()
	s.env = nil
	s.totalReward += s.levelReward
	s.levelReward = 0
}

// syncLevelRewardLocked reads the controlled agent's reward. The cached
// value survives the agent being removed from its environment.
func (s *Session) syncLevelRewardLocked() {
	if s.env == nil {
		return
	}
	if a, ok := s.env.Controlled().(env.Agent); ok {
		s.levelReward = a.Reward()
	}
}

// PrepareLevelChange asks for the level to switch to id at the next tick.
// The finish id ends the session instead.
func (s *Session) PrepareLevelChange(id string) {
	if id == FinishLevelID {
		s.End(EndCompleted)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targetLevel = id
	s.changeRequested = true
}

// ReachExit implements env.LinkHandler.
func (s *Session) ReachExit(obj env.Object, levelID string) {
	s.log.Debug("exit reached", "object", obj.Name(), "target", levelID)
	s.PrepareLevelChange(levelID)
}

// LocationJump implements env.LinkHandler.
func (s *Session) LocationJump(obj env.Object, dest core.Location) {
	s.log.Debug("location jump", "object", obj.Name(), "to", dest)
	if s.deps.Sound != nil {
		s.deps.Sound.PlaySound(SoundJump)
	}
}

// EnvironmentUpdated implements env.Observer.
func (s *Session) EnvironmentUpdated(*env.Environment) {
	s.frames.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLevelRewardLocked()
}

// Frames returns how many environment updates the session has observed.
func (s *Session) Frames() uint64 {
	return s.frames.Load()
}

// InIntermission reports whether the session is between levels.
func (s *Session) InIntermission() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.intermission || s.changeRequested
}

// IntermissionRemaining returns the time left before the next level starts.
func (s *Session) IntermissionRemaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.intermission {
		return 0
	}
	return max(s.intermissionEnd.Sub(s.deps.Clock()), 0)
}

// CurrentLevelID returns the id of the last level built.
func (s *Session) CurrentLevelID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLevel
}

// TargetLevelID returns the id of the level being switched to.
func (s *Session) TargetLevelID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.targetLevel
}

// Environment returns the live environment, nil during an intermission.
func (s *Session) Environment() *env.CellEnvironment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.env
}

// AddPlayer records a player name.
func (s *Session) AddPlayer(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players = append(s.players, name)
}

// Players returns the recorded player names.
func (s *Session) Players() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.players)
}

// Levels returns the ids of the levels built so far, in order.
func (s *Session) Levels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.visited)
}

// GameID returns the configured game id.
func (s *Session) GameID() string {
	return s.cfg.GameID
}

// Reward returns the reward collected so far by controlled objects, as of
// the last completed tick.
func (s *Session) Reward() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalReward + s.levelReward
}

// End stops the session. Only the first call has an effect; it reports the
// run to the listener.
func (s *Session) End(reason string) {
	s.endOnce.Do(func() {
		s.mu.Lock()
		s.endReason = reason
		s.syncLevelRewardLocked()
		run := RunSummary{
			GameID:   s.cfg.GameID,
			Levels:   slices.Clone(s.visited),
			Reward:   s.totalReward + s.levelReward,
			Reason:   reason,
			Started:  s.started,
			Finished: s.deps.Clock(),
		}
		if len(s.players) > 0 {
			run.Player = s.players[0]
		}
		s.mu.Unlock()

		s.ended.Store(true)
		s.log.Info("session ended", "reason", reason, "levels", len(run.Levels), "reward", run.Reward)
		if s.deps.Listener != nil {
			s.deps.Listener.SessionEnded(run)
		}
	})
}

// IsEnded reports whether End was called.
func (s *Session) IsEnded() bool {
	return s.ended.Load()
}

// EndReason returns the reason given to End.
func (s *Session) EndReason() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endReason
}

// CleanUp destroys the live environment and detaches the view.
func (s *Session) CleanUp() {
	s.mu.Lock()
	s.destroyEnvironmentLocked()
	s.mu.Unlock()
	if s.deps.View != nil {
		s.deps.View.SetSession(nil)
	}
}

var _ env.LinkHandler = (*Session)(nil)
var _ env.Observer = (*Session)(nil)
