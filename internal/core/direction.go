package core

import (
	"fmt"
	"strings"
)

// Direction is one of the four cardinal directions, or DirNone.
type Direction int

const (
	DirNone Direction = iota
	DirUp
	DirRight
	DirDown
	DirLeft
)

// Cardinals lists the four directions in enumeration order.
// Path finding breaks ties by this order.
var Cardinals = [4]Direction{DirUp, DirRight, DirDown, DirLeft}

// Delta returns the unit offset for the direction. Y grows downward.
func (d Direction) Delta() (int, int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirRight:
		return 1, 0
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	default:
		return 0, 0
	}
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirRight:
		return DirLeft
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	default:
		return DirNone
	}
}

// String returns the lower-case name of the direction, which is also the
// action name used by controllers ("up", "right", ...).
func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirRight:
		return "right"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	default:
		return "none"
	}
}

// ParseDirection converts a direction name back into a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "north":
		return DirUp, nil
	case "right", "east":
		return DirRight, nil
	case "down", "south":
		return DirDown, nil
	case "left", "west":
		return DirLeft, nil
	case "", "none":
		return DirNone, nil
	}
	return DirNone, fmt.Errorf("unknown direction %q", s)
}
