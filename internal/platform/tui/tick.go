// Package tui provides the Bubble Tea integration for gridrunner. It paints
// the running session, turns key presses into actions, and serves the same
// experience over SSH.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// RefreshMsg asks the model to repaint.
type RefreshMsg time.Time

// ThreadDiedMsg reports that the game thread has stopped.
type ThreadDiedMsg struct {
	Err error
}

// refreshCmd returns a Bubble Tea command that sends a refresh message after
// interval.
func refreshCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return RefreshMsg(t)
	})
}

// waitThread blocks until done is closed and reports the thread's error.
func waitThread(done <-chan struct{}, errf func() error) tea.Cmd {
	return func() tea.Msg {
		<-done
		return ThreadDiedMsg{Err: errf()}
	}
}
