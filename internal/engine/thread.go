package engine

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/gridrunner/internal/core"
)

// Updater is what a GameThread drives. *Session implements it.
type Updater interface {
	Update() error
	IsEnded() bool
}

// GameThread calls Update on its own goroutine, sleeping a fixed delay after
// every iteration, until terminated or the session ends. A failing or
// panicking Update stops the thread.
type GameThread struct {
	session Updater
	delay   time.Duration
	log     *log.Logger

	observer ThreadObserver
	paused   atomic.Bool
	ticks    atomic.Uint64

	// mu is held for the whole of each iteration's work so Terminate
	// returns only once no Update is in flight.
	mu         sync.Mutex
	terminated bool

	stop      chan struct{}
	stopOnce  sync.Once
	startOnce sync.Once
	done      chan struct{}
	err       error
}

// NewGameThread creates a stopped thread. A nil logger discards output.
func NewGameThread(session Updater, delay time.Duration, logger *log.Logger) *GameThread {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &GameThread{
		session: session,
		delay:   delay,
		log:     logger.WithPrefix("thread"),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// SetObserver registers the observer told when the thread stops. Call it
// before Start.
func (t *GameThread) SetObserver(o ThreadObserver) {
	t.observer = o
}

// Start launches the loop. Further calls do nothing.
func (t *GameThread) Start() {
	t.startOnce.Do(func() {
		go t.run()
	})
}

// Pause toggles pausing and returns the new state. A paused thread keeps
// its rhythm but skips Update.
func (t *GameThread) Pause() bool {
	for {
		old := t.paused.Load()
		if t.paused.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Paused reports whether Update is being skipped.
func (t *GameThread) Paused() bool {
	return t.paused.Load()
}

// Terminate stops the loop. An Update already running completes first; none
// starts after Terminate returns.
func (t *GameThread) Terminate() {
	t.mu.Lock()
	t.terminated = true
	t.mu.Unlock()
	t.stopOnce.Do(func() { close(t.stop) })
}

// Inspect runs f between two updates. Views use it to read environment
// state the game thread mutates.
func (t *GameThread) Inspect(f func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	f()
}

// Done is closed once the loop has exited and the observer was notified.
func (t *GameThread) Done() <-chan struct{} {
	return t.done
}

// Err returns the error that stopped the thread. Valid after Done closes.
func (t *GameThread) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Ticks returns the number of Update calls made.
func (t *GameThread) Ticks() uint64 {
	return t.ticks.Load()
}

func (t *GameThread) run() {
	defer close(t.done)

	t.log.Debug("game thread started", "delay", t.delay)
	err := t.loop()
	t.err = err
	if err != nil {
		t.log.Error("game thread died", "err", err, "ticks", t.ticks.Load())
	} else {
		t.log.Debug("game thread stopped", "ticks", t.ticks.Load())
	}
	if t.observer != nil {
		t.observer.ThreadDied(err)
	}
}

func (t *GameThread) loop() error {
	timer := time.NewTimer(t.delay)
	defer timer.Stop()

	for {
		stop, err := t.iterate()
		if stop || err != nil {
			return err
		}

		timer.Reset(t.delay)
		select {
		case <-t.stop:
			return nil
		case <-timer.C:
		}
	}
}

func (t *GameThread) iterate() (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.terminated || t.session.IsEnded() {
		return true, nil
	}
	if t.paused.Load() {
		return false, nil
	}
	t.ticks.Add(1)
	return false, t.safeUpdate()
}

func (t *GameThread) safeUpdate() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = core.Errorf("engine.GameThread", "update panicked: %v", r)
		}
	}()
	return t.session.Update()
}
