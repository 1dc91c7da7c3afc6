package tui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/gridrunner/internal/core"
)

// KeyMap translates Bubble Tea key messages to action names. Game actions
// come from configuration; Pause, Help and Quit are fixed.
type KeyMap struct {
	actions []actionBinding
	Pause   key.Binding
	Help    key.Binding
	Quit    key.Binding
}

type actionBinding struct {
	action  string
	binding key.Binding
}

// actionOrder fixes the help order of the well-known actions. Unknown
// actions follow in alphabetical order.
var actionOrder = map[string]int{
	core.ActionUp:      0,
	core.ActionDown:    1,
	core.ActionLeft:    2,
	core.ActionRight:   3,
	core.ActionFire:    4,
	core.ActionConfirm: 5,
}

// NewKeyMap builds a key map from action name -> key strings.
func NewKeyMap(keys map[string][]string) KeyMap {
	names := make([]string, 0, len(keys))
	for name := range keys {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		oi, iok := actionOrder[names[i]]
		oj, jok := actionOrder[names[j]]
		switch {
		case iok && jok:
			return oi < oj
		case iok != jok:
			return iok
		}
		return names[i] < names[j]
	})

	km := KeyMap{
		Pause: key.NewBinding(
			key.WithKeys("p", "esc"),
			key.WithHelp("p/esc", "pause"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
	for _, name := range names {
		ks := normalizeKeys(keys[name])
		if len(ks) == 0 {
			continue
		}
		km.actions = append(km.actions, actionBinding{
			action: name,
			binding: key.NewBinding(
				key.WithKeys(ks...),
				key.WithHelp(strings.Join(ks, "/"), name),
			),
		})
	}
	return km
}

// normalizeKeys maps config spellings to what tea.KeyMsg.String returns.
func normalizeKeys(ks []string) []string {
	out := make([]string, 0, len(ks))
	for _, k := range ks {
		if k != " " {
			k = strings.ToLower(strings.TrimSpace(k))
		}
		switch k {
		case "":
			continue
		case "space", " ":
			// Bubble Tea spells the space bar either way depending on the
			// terminal input path.
			out = append(out, " ", "space")
			continue
		case "return":
			k = "enter"
		}
		out = append(out, k)
	}
	return out
}

// Action returns the action bound to msg.
func (k KeyMap) Action(msg tea.KeyMsg) (string, bool) {
	for _, ab := range k.actions {
		if key.Matches(msg, ab.binding) {
			return ab.action, true
		}
	}
	return "", false
}

// Actions returns the bound action names in help order.
func (k KeyMap) Actions() []string {
	names := make([]string, len(k.actions))
	for i, ab := range k.actions {
		names[i] = ab.action
	}
	return names
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	bindings := make([]key.Binding, len(k.actions))
	for i, ab := range k.actions {
		bindings[i] = ab.binding
	}
	return [][]key.Binding{bindings, {k.Pause, k.Help, k.Quit}}
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionRuns
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "enter", " ", "space":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	case "tab":
		return MenuActionRuns
	}
	return MenuActionNone
}
