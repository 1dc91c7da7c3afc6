// Package dialog provides a scripted dialog engine. Lines are revealed a few
// characters per tick, then wait for confirmation (or a timeout) before the
// next line. The flow is a small state machine:
//
//	IDLE --open--> TYPING --line_done/confirm--> WAITING
//	WAITING --confirm--> TYPING, WAITING --exhausted--> IDLE
package dialog

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/gridrunner/internal/engine"
	"github.com/vovakirdan/gridrunner/internal/fsm"
)

// Dialog states.
const (
	StateIdle    fsm.State = "IDLE"
	StateTyping  fsm.State = "TYPING"
	StateWaiting fsm.State = "WAITING"
)

const (
	factOpen      fsm.Fact = "open"
	factLineDone  fsm.Fact = "line_done"
	factConfirm   fsm.Fact = "confirm"
	factExhausted fsm.Fact = "exhausted"
)

// Options tune an Engine.
type Options struct {
	// CharsPerTick is how many characters appear per tick. Zero shows whole
	// lines at once.
	CharsPerTick int
	// AutoAdvance confirms a fully shown line after this many ticks. Zero
	// waits for Confirm forever.
	AutoAdvance int
	Logger      *log.Logger
}

// Engine queues lines and plays them back. It implements both
// engine.DialogEngine and engine.DialogController.
type Engine struct {
	mu       sync.Mutex
	opts     Options
	log      *log.Logger
	machine  *fsm.Machine
	lines    []string
	revealed int
	waited   int
	shown    int
}

// New creates an idle dialog engine.
func New(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	m := fsm.New()
	m.NewState(StateIdle)
	m.NewState(StateTyping)
	m.NewState(StateWaiting)
	m.MustTransition(StateIdle, StateTyping, factOpen)
	m.MustTransition(StateTyping, StateWaiting, factLineDone)
	m.MustTransition(StateTyping, StateWaiting, factConfirm)
	m.MustTransition(StateWaiting, StateTyping, factConfirm)
	m.MustTransition(StateWaiting, StateIdle, factExhausted)
	if err := m.SetInitial(StateIdle); err != nil {
		panic(err)
	}

	return &Engine{
		opts:    opts,
		log:     opts.Logger.WithPrefix("dialog"),
		machine: m,
	}
}

// DialogController implements engine.DialogEngine.
func (e *Engine) DialogController() engine.DialogController {
	return e
}

// Show queues lines. An idle engine opens on the next tick.
func (e *Engine) Show(lines ...string) {
	if len(lines) == 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lines = append(e.lines, lines...)
	if e.machine.IsInState(StateIdle) {
		e.machine.AddFact(factOpen)
	}
	e.log.Debug("dialog queued", "lines", len(lines), "pending", len(e.lines))
}

// Active implements engine.DialogController.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.machine.IsInState(StateIdle) || len(e.lines) > 0
}

// Update implements engine.DialogController.
func (e *Engine) Update() {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.machine.Current() {
	case StateTyping:
		if e.opts.CharsPerTick <= 0 {
			e.revealed = e.lineLen()
		} else {
			e.revealed = min(e.revealed+e.opts.CharsPerTick, e.lineLen())
		}
		if e.revealed >= e.lineLen() {
			e.machine.AddFact(factLineDone)
		}
	case StateWaiting:
		e.waited++
		if e.opts.AutoAdvance > 0 && e.waited >= e.opts.AutoAdvance {
			e.confirmLocked()
		}
	}

	if e.machine.Process() {
		e.waited = 0
	}
	if e.machine.IsInState(StateIdle) && len(e.lines) > 0 {
		e.machine.AddFact(factOpen)
	}
}

// Confirm skips the typing of the current line or moves on to the next one.
// The change is applied on the next Update.
func (e *Engine) Confirm() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.confirmLocked()
}

func (e *Engine) confirmLocked() {
	switch e.machine.Current() {
	case StateTyping:
		e.revealed = e.lineLen()
		e.machine.AddFact(factConfirm)
	case StateWaiting:
		// One line per tick: a confirm already queued wins.
		if len(e.lines) == 0 || e.machine.Pending() > 0 {
			return
		}
		e.lines = e.lines[1:]
		e.revealed = 0
		e.shown++
		if len(e.lines) == 0 {
			e.machine.AddFact(factExhausted)
		} else {
			e.machine.AddFact(factConfirm)
		}
	}
}

// Text returns the visible part of the current line.
func (e *Engine) Text() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.machine.IsInState(StateIdle) || len(e.lines) == 0 {
		return "", false
	}
	return e.lines[0][:min(e.revealed, len(e.lines[0]))], true
}

// Waiting reports whether the current line is fully shown.
func (e *Engine) Waiting() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.machine.IsInState(StateWaiting)
}

// State returns the current state.
func (e *Engine) State() fsm.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.machine.Current()
}

// Shown returns how many lines were dismissed.
func (e *Engine) Shown() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shown
}

func (e *Engine) lineLen() int {
	if len(e.lines) == 0 {
		return 0
	}
	return len(e.lines[0])
}

var (
	_ engine.DialogEngine = (*Engine)(nil)
	_ engine.DialogScript = (*Engine)(nil)
)
