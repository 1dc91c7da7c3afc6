// Package level describes game levels: their static cell layout, the links
// that lead out of them and the objects spawned when they start. Levels are
// immutable once loaded and are handed out by a Manager.
package level

import (
	"fmt"

	"github.com/vovakirdan/gridrunner/internal/core"
)

// LinkKind distinguishes the two kinds of level link.
type LinkKind int

const (
	// LinkExit leads to another level.
	LinkExit LinkKind = iota
	// LinkJump moves the object to another cell of the same level.
	LinkJump
)

// String returns the YAML name of the link kind.
func (k LinkKind) String() string {
	switch k {
	case LinkExit:
		return "exit"
	case LinkJump:
		return "jump"
	default:
		return "unknown"
	}
}

// Link is a located trigger inside a level. At and Destination are cell
// coordinates.
type Link struct {
	Kind        LinkKind
	At          core.Location
	TargetLevel string        // LinkExit only
	Destination core.Location // LinkJump only
}

// Spawn asks the game to create an object of Kind at a cell when the level's
// environment is built. Kinds are game specific.
type Spawn struct {
	Kind string
	At   core.Location
	Args map[string]string
}

// GameLevel is the static description of one level.
type GameLevel struct {
	ID       string
	Name     string
	CellSize int
	Layout   []string // one string per row, one byte per cell
	Links    []Link
	Spawns   []Spawn
	Dialog   []string // lines shown when the level starts
	Metadata map[string]string
	FilePath string
}

// Width returns the number of cell columns (the longest layout row).
func (l *GameLevel) Width() int {
	w := 0
	for _, row := range l.Layout {
		w = max(w, len(row))
	}
	return w
}

// Height returns the number of cell rows.
func (l *GameLevel) Height() int {
	return len(l.Layout)
}

// LinkAt returns the link located at the given cell.
func (l *GameLevel) LinkAt(cell core.Location) (Link, bool) {
	for _, link := range l.Links {
		if link.At == cell {
			return link, true
		}
	}
	return Link{}, false
}

// Exits returns the exit links of the level.
func (l *GameLevel) Exits() []Link {
	var exits []Link
	for _, link := range l.Links {
		if link.Kind == LinkExit {
			exits = append(exits, link)
		}
	}
	return exits
}

// Validate checks the level for content errors: links and spawns outside the
// layout, or jumps leaving the grid.
func (l *GameLevel) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("level has no id")
	}
	if l.Height() == 0 || l.Width() == 0 {
		return fmt.Errorf("level %q has an empty layout", l.ID)
	}
	if l.CellSize <= 0 {
		return fmt.Errorf("level %q has invalid cell size %d", l.ID, l.CellSize)
	}

	inside := func(c core.Location) bool {
		return c.X >= 0 && c.Y >= 0 && c.X < l.Width() && c.Y < l.Height()
	}
	for _, link := range l.Links {
		if !inside(link.At) {
			return fmt.Errorf("level %q: %s link at %v is outside the layout", l.ID, link.Kind, link.At)
		}
		switch link.Kind {
		case LinkExit:
			if link.TargetLevel == "" {
				return fmt.Errorf("level %q: exit at %v has no target level", l.ID, link.At)
			}
		case LinkJump:
			if !inside(link.Destination) {
				return fmt.Errorf("level %q: jump at %v leads outside the layout", l.ID, link.At)
			}
		}
	}
	for _, s := range l.Spawns {
		if !inside(s.At) {
			return fmt.Errorf("level %q: spawn %q at %v is outside the layout", l.ID, s.Kind, s.At)
		}
	}
	return nil
}
