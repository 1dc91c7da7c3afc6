package pathfind

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/gridrunner/internal/core"
	"github.com/vovakirdan/gridrunner/internal/env"
)

type walker struct {
	env.Base
}

func grid(size int, rows ...string) *env.CellEnvironment {
	e := env.NewCellEnvironment(env.CellConfig{
		Width:    len(rows[0]),
		Height:   len(rows),
		CellSize: size,
		Fill:     '#',
	}, env.CellRulesFunc(func(e *env.CellEnvironment, _ env.Object, cx, cy int) bool {
		return e.Cell(cx, cy) != '#'
	}))
	e.LoadLayout(rows)
	return e
}

func newWalker(e *env.CellEnvironment, cx, cy int) *walker {
	w := &walker{Base: env.NewBase(e.IDs().Next(), "walker", 0, 0, e.CellSize())}
	e.PlaceAtCell(w, cx, cy)
	return w
}

func TestPropagateValues(t *testing.T) {
	e := grid(1,
		".....",
		".###.",
		".#...",
		".#.#.",
	)
	f := New(e)
	w := newWalker(e, 0, 0)

	f.Reset()
	f.SetTarget(core.L(0, 0))
	f.Propagate(w)

	// Distance from (0,0) around the wall block.
	want := [][]int{
		{0, 1, 2, 3, 4},
		{1, -1, -1, -1, 5},
		{2, -1, 8, 7, 6},
		{3, -1, 9, -1, 7},
	}
	for y, row := range want {
		for x, d := range row {
			if d < 0 {
				assert.Zerof(t, f.Value(x, y), "blocked cell (%d,%d) keeps 0", x, y)
				continue
			}
			assert.Equalf(t, TargetValue-d, f.Value(x, y), "cell (%d,%d)", x, y)
		}
	}
}

func TestUnreachableCellsStayZero(t *testing.T) {
	e := grid(1,
		"..#..",
		"..#..",
	)
	f := New(e)
	w := newWalker(e, 0, 0)

	f.SetTarget(core.L(0, 0))
	f.Propagate(w)

	assert.Equal(t, TargetValue-1, f.Value(1, 0))
	assert.Zero(t, f.Value(3, 0))
	assert.Zero(t, f.Value(4, 1))
}

func TestMultipleTargets(t *testing.T) {
	e := grid(1, ".......")
	f := New(e)
	w := newWalker(e, 3, 0)

	f.SetTarget(core.L(0, 0))
	f.SetTarget(core.L(6, 0))
	f.Propagate(w)

	assert.Equal(t, TargetValue-3, f.Value(3, 0))
	assert.Equal(t, TargetValue-1, f.Value(5, 0))
}

func TestFollowingDirectionsReachesTarget(t *testing.T) {
	e := grid(3,
		"......",
		"......",
		"......",
		"......",
		"......",
	)
	target := core.L(4, 1)
	f := New(e)

	for sy, n := 0, e.CellHeight(); sy < n; sy++ {
		for sx, n := 0, e.CellWidth(); sx < n; sx++ {
			start := core.L(sx, sy)
			if start == target {
				continue
			}
			w := newWalker(e, sx, sy)
			f.Reset()
			f.SetTarget(target)
			f.Propagate(w)

			steps := 0
			for e.CellOf(w) != target {
				cell := e.CellOf(w)
				d, err := f.FindBetterDirection(w)
				require.NoError(t, err)
				require.NotEqual(t, core.DirNone, d, "stuck at %s", cell)

				next := cell.Step(d)
				require.Greater(t, f.Value(next.X, next.Y), f.Value(cell.X, cell.Y))
				w.Step(d, e.CellSize())
				steps++
				require.LessOrEqual(t, steps, 100)
			}
			assert.Equal(t, start.Manhattan(target), steps, "from %s", start)
		}
	}
}

func TestTieBreaksInCardinalOrder(t *testing.T) {
	e := grid(1,
		"...",
		"...",
		"...",
	)
	f := New(e)
	w := newWalker(e, 0, 0)

	// (1,0) and (0,1) are both one step from (1,1); Right precedes Down.
	d, err := f.NextStep(w, core.L(1, 1))
	require.NoError(t, err)
	assert.Equal(t, core.DirRight, d)
}

func TestNoBetterDirection(t *testing.T) {
	e := grid(1, ".#.")
	f := New(e)
	w := newWalker(e, 0, 0)

	d, err := f.NextStep(w, core.L(2, 0))
	require.NoError(t, err)
	assert.Equal(t, core.DirNone, d)

	d, err = f.NextStep(w, core.L(0, 0))
	require.NoError(t, err)
	assert.Equal(t, core.DirNone, d, "already on the target")
}

func TestMisalignedObject(t *testing.T) {
	e := grid(4, "...")
	f := New(e)
	w := newWalker(e, 0, 0)
	w.MoveTo(2, 0)

	d, err := f.NextStep(w, core.L(2, 0))
	assert.Equal(t, core.DirNone, d)
	var engineErr *core.Error
	require.True(t, errors.As(err, &engineErr))
	assert.Equal(t, "pathfind.FindBetterDirection", engineErr.Op)
}

func TestResetClearsField(t *testing.T) {
	e := grid(1, "...")
	f := New(e)
	w := newWalker(e, 0, 0)

	f.SetTarget(core.L(2, 0))
	f.Propagate(w)
	require.Equal(t, TargetValue, f.Value(2, 0))

	f.Reset()
	for x := 0; x < 3; x++ {
		assert.Zero(t, f.Value(x, 0))
	}
	assert.Zero(t, f.Value(-1, 0))
}
