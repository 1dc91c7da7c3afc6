package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/gridrunner/internal/core"
	"github.com/vovakirdan/gridrunner/internal/level"
)

const (
	floor CellContents = '.'
	wall  CellContents = '#'
)

var wallRules = CellRulesFunc(func(e *CellEnvironment, _ Object, cx, cy int) bool {
	return e.Cell(cx, cy) != wall
})

func newRoom(t *testing.T, size int, rows ...string) *CellEnvironment {
	t.Helper()
	e := NewCellEnvironment(CellConfig{
		Width:    len(rows[0]),
		Height:   len(rows),
		CellSize: size,
		Fill:     wall,
		Seed:     7,
	}, wallRules)
	e.LoadLayout(rows)
	return e
}

type linkLog struct {
	exits []string
	jumps []core.Location
}

func (l *linkLog) ReachExit(_ Object, levelID string)        { l.exits = append(l.exits, levelID) }
func (l *linkLog) LocationJump(_ Object, dest core.Location) { l.jumps = append(l.jumps, dest) }

func TestCellGrid(t *testing.T) {
	e := newRoom(t, 4,
		"#####",
		"#...#",
		"#####",
	)

	assert.Equal(t, 5, e.CellWidth())
	assert.Equal(t, 3, e.CellHeight())
	assert.Equal(t, 4, e.CellSize())
	assert.True(t, e.IsValidCell(4, 2))
	assert.False(t, e.IsValidCell(5, 0))
	assert.False(t, e.IsValidCell(0, -1))
	assert.Equal(t, wall, e.Cell(-1, 0), "off-grid reads return the fill")

	e.SetCell(2, 1, 'D')
	assert.Equal(t, CellContents('D'), e.Cell(2, 1))
	e.SetCell(9, 9, 'D')
}

func TestObjectPlacement(t *testing.T) {
	e := newRoom(t, 4,
		"#####",
		"#...#",
		"#####",
	)
	obj := newPawn(e.Environment, "p")

	assert.True(t, e.IsObjectInBounds(16, 8))
	assert.False(t, e.IsObjectInBounds(17, 8))
	assert.False(t, e.IsObjectInBounds(-1, 0))

	assert.True(t, e.IsObjectAllowedAtCell(obj, 1, 1))
	assert.False(t, e.IsObjectAllowedAtCell(obj, 0, 1))
	assert.False(t, e.IsObjectAllowedAtCell(obj, 7, 1))

	assert.True(t, e.IsObjectAllowedAtLocation(obj, 4, 4), "aligned on a floor cell")
	assert.True(t, e.IsObjectAllowedAtLocation(obj, 6, 4), "straddles two floor cells")
	assert.False(t, e.IsObjectAllowedAtLocation(obj, 2, 4), "touches the left wall")
	assert.False(t, e.IsObjectAllowedAtLocation(obj, 4, 5), "touches the bottom wall")

	obj.MoveTo(8, 4)
	assert.True(t, e.IsCellAligned(obj))
	assert.Equal(t, core.L(2, 1), e.CellOf(obj))
	obj.MoveTo(9, 4)
	assert.False(t, e.IsCellAligned(obj))
}

func TestFindCells(t *testing.T) {
	e := newRoom(t, 1,
		"#D#",
		"#.D",
	)
	obj := newPawn(e.Environment, "p")

	loc, ok := e.FindFirstCellLocationMatchingContents('D')
	require.True(t, ok)
	assert.Equal(t, core.L(1, 0), loc)

	_, ok = e.FindFirstCellLocationMatchingContents('X')
	assert.False(t, ok)

	for i := 0; i < 20; i++ {
		loc, ok = e.FindRandomAllowedLocationForObject(obj)
		require.True(t, ok)
		assert.NotEqual(t, wall, e.Cell(loc.X, loc.Y))
	}
}

func TestRandomSearchGivesUp(t *testing.T) {
	e := newRoom(t, 1, "###", "###")
	_, ok := e.FindRandomAllowedLocationForObject(newPawn(e.Environment, "p"))
	assert.False(t, ok)
}

func TestLinks(t *testing.T) {
	e := newRoom(t, 2,
		"#######",
		"#.....#",
		"#######",
	)
	lvl := &level.GameLevel{
		ID:       "hall",
		CellSize: 2,
		Layout:   []string{"#######", "#.....#", "#######"},
		Links: []level.Link{
			{Kind: level.LinkJump, At: core.L(1, 1), Destination: core.L(4, 1)},
			{Kind: level.LinkJump, At: core.L(4, 1), Destination: core.L(1, 1)},
			{Kind: level.LinkExit, At: core.L(5, 1), TargetLevel: "cellar"},
		},
	}
	e.SetLevel(lvl)
	log := &linkLog{}
	e.SetLinkHandler(log)

	player := newPawn(e.Environment, "player")
	ghost := newPawn(e.Environment, "ghost")
	e.AddObject(player)
	e.AddObject(ghost)
	require.NoError(t, e.SetControlled(player))

	e.PlaceAtCell(player, 2, 1)
	e.PlaceAtCell(ghost, 1, 1)
	e.Update()
	assert.Equal(t, core.L(4, 1), e.CellOf(ghost), "jump moves any object")
	assert.Equal(t, []core.Location{core.L(4, 1)}, log.jumps)

	e.Update()
	assert.Equal(t, core.L(4, 1), e.CellOf(ghost), "no jump back while standing on the arrival cell")

	e.PlaceAtCell(ghost, 5, 1)
	e.Update()
	assert.Empty(t, log.exits, "exits only fire for the controlled object")

	e.PlaceAtCell(ghost, 4, 1)
	e.Update()
	assert.Equal(t, core.L(1, 1), e.CellOf(ghost), "stepping onto a jump from another link cell triggers it")

	e.PlaceAtCell(player, 5, 1)
	e.Update()
	assert.Equal(t, []string{"cellar"}, log.exits)
	e.Update()
	assert.Len(t, log.exits, 1, "exit fires once per arrival")

	player.MoveTo(9, 2)
	e.Update()
	assert.Len(t, log.exits, 1, "mis-aligned objects do not trigger links")
}

func TestCellCleanUp(t *testing.T) {
	e := newRoom(t, 1, "...")
	ran := []int{}
	e.OnCleanUp(func() { ran = append(ran, 1) })
	e.OnCleanUp(func() { ran = append(ran, 2) })

	e.CleanUp()
	assert.Equal(t, []int{2, 1}, ran)
}
