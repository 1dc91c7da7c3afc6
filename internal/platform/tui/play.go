package tui

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/gridrunner/internal/config"
	"github.com/vovakirdan/gridrunner/internal/core"
	"github.com/vovakirdan/gridrunner/internal/dialog"
	"github.com/vovakirdan/gridrunner/internal/engine"
	"github.com/vovakirdan/gridrunner/internal/registry"
	"github.com/vovakirdan/gridrunner/internal/sound"
	"github.com/vovakirdan/gridrunner/internal/storage"
)

// PlayOptions describe one run of a game.
type PlayOptions struct {
	Config     config.Config
	Game       registry.Game
	Store      *storage.Store // optional; nil skips recording
	Player     string
	StartLevel string    // overrides Config.StartLevel
	Bell       io.Writer // terminal for the bell backend; nil disables it
	Logger     *log.Logger
}

// Play wires a session, its game thread and the input and dialog adapters
// for one run.
type Play struct {
	game     registry.Game
	session  *engine.Session
	thread   *engine.GameThread
	dialog   *dialog.Engine
	keys     *KeyController
	view     *viewer
	recorder *storage.RunRecorder
	log      *log.Logger

	mu      sync.Mutex
	started bool
}

// NewPlay builds the session of a run without starting it.
func NewPlay(opts PlayOptions) (*Play, error) {
	if opts.Game == nil {
		return nil, core.Errorf("tui.NewPlay", "no game")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	cfg := opts.Config

	start := opts.StartLevel
	if start == "" {
		start = cfg.StartLevel
	}
	levels, err := opts.Game.Levels(cfg.LevelsDir, start)
	if err != nil {
		return nil, core.Wrap(err, "tui.NewPlay", "cannot load levels of %s", opts.Game.ID())
	}

	dlg := dialog.New(dialog.Options{
		CharsPerTick: cfg.Dialog.CharsPerTick,
		AutoAdvance:  cfg.Dialog.AutoAdvance,
		Logger:       logger,
	})

	var snd engine.SoundEngine = sound.Mute{}
	if cfg.Sound.Enabled {
		players := sound.Multi{sound.NewLog(logger.WithPrefix("sound"))}
		if opts.Bell != nil {
			players = append(players, sound.NewBell(opts.Bell, cfg.Sound.Bell...))
		}
		snd = sound.Safe(players, logger)
	}

	seed := cfg.Engine.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	p := &Play{
		game:   opts.Game,
		dialog: dlg,
		keys:   NewKeyController(),
		view:   &viewer{},
		log:    logger.WithPrefix("play"),
	}
	deps := engine.Deps{
		Levels:     levels,
		Factory:    opts.Game,
		Controller: p.keys,
		View:       p.view,
		Dialogs:    dlg,
		Sound:      snd,
		Logger:     logger,
	}
	if opts.Store != nil {
		p.recorder = storage.NewRunRecorder(opts.Store, logger)
		deps.Listener = p.recorder
	}

	p.session, err = engine.NewSession(engine.SessionConfig{
		GameID:       opts.Game.ID(),
		Intermission: cfg.Intermission(),
		Seed:         seed,
	}, deps)
	if err != nil {
		return nil, err
	}
	if opts.Player != "" {
		p.session.AddPlayer(opts.Player)
	}

	p.thread = engine.NewGameThread(p.session, cfg.TickDelay(), logger)
	p.thread.SetObserver(engine.ThreadObserverFunc(func(err error) {
		if err != nil {
			p.log.Error("game thread died", "err", err)
			p.session.End(engine.EndError)
		}
	}))
	return p, nil
}

// Start builds the first level and launches the game thread.
func (p *Play) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return nil
	}
	if err := p.session.Start(); err != nil {
		return err
	}
	p.thread.Start()
	p.started = true
	return nil
}

// Stop ends the run with reason unless it already ended, stops the thread
// and releases the environment. It is safe to call more than once.
func (p *Play) Stop(reason string) {
	p.thread.Terminate()
	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if started {
		<-p.thread.Done()
	}
	p.session.End(reason)
	p.session.CleanUp()
}

// Session returns the running session.
func (p *Play) Session() *engine.Session { return p.session }

// Thread returns the game thread.
func (p *Play) Thread() *engine.GameThread { return p.thread }

// Dialog returns the dialog engine.
func (p *Play) Dialog() *dialog.Engine { return p.dialog }

// Keys returns the key controller.
func (p *Play) Keys() *KeyController { return p.keys }

// Recorder returns the run recorder, or nil without a store.
func (p *Play) Recorder() *storage.RunRecorder { return p.recorder }

// Status is what the status bar shows.
type Status struct {
	Level  string
	Reward float64
	Frames uint64
	Ended  bool
	Reason string
	Levels int
}

// Paint draws the current state of the run into dst. It runs between two
// ticks so objects are never read mid-update.
func (p *Play) Paint(dst *core.Screen) Status {
	var st Status
	p.thread.Inspect(func() {
		s := p.view.Session()
		if s == nil {
			s = p.session
		}
		st = Status{
			Level:  s.CurrentLevelID(),
			Reward: s.Reward(),
			Frames: s.Frames(),
			Ended:  s.IsEnded(),
			Levels: len(s.Levels()),
		}
		if st.Ended {
			st.Reason = s.EndReason()
			DrawGameOver(dst, st.Reason, st.Reward, st.Levels)
			return
		}
		if s.InIntermission() {
			DrawIntermission(dst, s.CurrentLevelID(), s.TargetLevelID(), st.Reward, s.IntermissionRemaining())
			return
		}

		dst.Clear()
		if cells := s.Environment(); cells != nil {
			w, h := EnvironmentSize(cells)
			DrawEnvironment(dst, cells, p.game, max(0, (dst.Width()-w)/2), max(0, (dst.Height()-h)/2))
		}
		if text, ok := p.dialog.Text(); ok {
			DrawDialog(dst, text, p.dialog.Waiting())
		}
	})
	return st
}

// viewer implements engine.View. It only remembers the session it was given.
type viewer struct {
	mu      sync.Mutex
	session *engine.Session
}

func (v *viewer) SetSession(s *engine.Session) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.session = s
}

func (v *viewer) Session() *engine.Session {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.session
}

var _ engine.View = (*viewer)(nil)
