// Package engine sequences levels and drives the simulation clock.
//
// A Session owns the single live environment, moves between levels through
// a timed intermission and lets an active dialog take over ticks. A
// GameThread calls Session.Update at a fixed delay on its own goroutine.
// Everything else (input, drawing, sound, dialogs, persistence) is reached
// through the small interfaces declared here.
package engine

import (
	"time"

	"github.com/vovakirdan/gridrunner/internal/env"
	"github.com/vovakirdan/gridrunner/internal/level"
)

// View draws a session. It is handed the session when a game starts and nil
// when it stops; it only reads.
type View interface {
	SetSession(s *Session)
}

// Controller feeds input into the controlled object of the live environment.
type Controller = env.Controller

// SoundEngine plays named sounds. Implementations must not fail the caller;
// wrap unreliable engines with sound.Safe.
type SoundEngine interface {
	PlaySound(name string)
	LoopSound(name string)
}

// DialogController runs an in-progress dialog. While Active reports true the
// session hands every tick to Update instead of the environment.
type DialogController interface {
	Active() bool
	Update()
}

// DialogEngine exposes the dialog controller of a game.
type DialogEngine interface {
	DialogController() DialogController
}

// DialogScript is implemented by dialog engines that can show the opening
// lines of a level.
type DialogScript interface {
	Show(lines ...string)
}

// ThreadObserver is told once when a GameThread stops. err is nil after a
// normal stop.
type ThreadObserver interface {
	ThreadDied(err error)
}

// ThreadObserverFunc adapts a function to ThreadObserver.
type ThreadObserverFunc func(err error)

// ThreadDied implements ThreadObserver.
func (f ThreadObserverFunc) ThreadDied(err error) { f(err) }

// EnvContext is what a game needs to populate a level.
type EnvContext struct {
	Session *Session
	Sound   SoundEngine
	Seed    int64
}

// EnvironmentFactory builds the environment of a level. Games implement it.
type EnvironmentFactory interface {
	NewEnvironment(lvl *level.GameLevel, ctx EnvContext) (*env.CellEnvironment, error)
}

// RunSummary describes a finished session.
type RunSummary struct {
	GameID   string
	Player   string
	Levels   []string
	Reward   float64
	Reason   string
	Started  time.Time
	Finished time.Time
}

// Duration returns how long the run lasted.
func (r RunSummary) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// LevelListener follows the progress of a session.
type LevelListener interface {
	LevelStarted(levelID string)
	LevelFinished(levelID string, reward float64)
	SessionEnded(run RunSummary)
}

// End reasons reported in RunSummary.Reason.
const (
	EndCompleted = "completed"
	EndCaught    = "caught"
	EndQuit      = "quit"
	EndError     = "error"
)

// Sounds requested by the engine itself.
const (
	SoundIntermission = "intermission"
	SoundJump         = "jump"
)
