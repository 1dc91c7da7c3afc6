package storage

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/gridrunner/internal/engine"
)

// RunRecorder implements engine.LevelListener and saves every finished
// session as a run. Save failures are logged; they never stop a game.
type RunRecorder struct {
	store *Store
	log   *log.Logger

	mu     sync.Mutex
	visits []LevelVisit
	saved  []int64
}

// NewRunRecorder creates a recorder writing to store.
func NewRunRecorder(store *Store, logger *log.Logger) *RunRecorder {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &RunRecorder{store: store, log: logger.WithPrefix("storage")}
}

// LevelStarted implements engine.LevelListener.
func (r *RunRecorder) LevelStarted(string) {}

// LevelFinished implements engine.LevelListener. reward is the run total so
// far; the visit stores the share earned in this level.
func (r *RunRecorder) LevelFinished(levelID string, reward float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := 0.0
	for _, v := range r.visits {
		prev += v.Reward
	}
	r.visits = append(r.visits, LevelVisit{LevelID: levelID, Reward: reward - prev})
}

// SessionEnded implements engine.LevelListener.
func (r *RunRecorder) SessionEnded(run engine.RunSummary) {
	r.mu.Lock()
	visits := r.visits
	r.visits = nil
	r.mu.Unlock()

	// The last level never finished through an intermission.
	if n := len(run.Levels); n > len(visits) {
		prev := 0.0
		for _, v := range visits {
			prev += v.Reward
		}
		visits = append(visits, LevelVisit{LevelID: run.Levels[n-1], Reward: run.Reward - prev})
	}

	id, err := r.store.SaveRun(Run{
		GameID:     run.GameID,
		Player:     run.Player,
		Reward:     run.Reward,
		Levels:     len(run.Levels),
		EndReason:  run.Reason,
		DurationMS: run.Duration().Milliseconds(),
	}, visits)
	if err != nil {
		r.log.Error("cannot record run", "game", run.GameID, "err", err)
		return
	}

	r.mu.Lock()
	r.saved = append(r.saved, id)
	r.mu.Unlock()
	r.log.Info("run recorded", "id", id, "game", run.GameID, "reward", run.Reward, "reason", run.Reason)
}

// Saved returns the ids of the runs recorded so far.
func (r *RunRecorder) Saved() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.saved...)
}

var _ engine.LevelListener = (*RunRecorder)(nil)
