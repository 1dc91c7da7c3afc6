package maze

import (
	"github.com/vovakirdan/gridrunner/internal/core"
	"github.com/vovakirdan/gridrunner/internal/env"
)

// Cell contents. Level layouts use the same bytes; object markers are
// replaced by CellFloor once the object is placed.
const (
	CellFloor    env.CellContents = '.'
	CellBlank    env.CellContents = ' '
	CellWall     env.CellContents = '#'
	CellDoor     env.CellContents = 'D'
	CellExit     env.CellContents = 'E'
	CellTeleport env.CellContents = 'T'

	markPlayer  env.CellContents = '@'
	markCoin    env.CellContents = 'o'
	markChaser  env.CellContents = 'C'
	markSpawner env.CellContents = 'S'
)

// allowed is the maze's occupancy rule: walls block everyone and doors only
// let the player through.
func allowed(e *env.CellEnvironment, obj env.Object, cx, cy int) bool {
	switch e.Cell(cx, cy) {
	case CellWall:
		return false
	case CellDoor:
		_, isPlayer := obj.(*Player)
		return isPlayer
	}
	return true
}

// canStep reports whether obj may move one base unit in d.
func canStep(e *env.CellEnvironment, obj env.Object, d core.Direction) bool {
	if d == core.DirNone {
		return false
	}
	next := obj.Location().Step(d)
	return e.IsObjectAllowedAtLocation(obj, next.X, next.Y)
}
