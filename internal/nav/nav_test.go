package nav

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/arena/internal/core/geom"
	"github.com/l1jgo/arena/internal/data"
)

// 10x10 arena with a wall at x in [4,6], y in [0,7].
func walledArena() *data.ArenaInfo {
	return &data.ArenaInfo{
		Width:    10,
		Height:   10,
		CellSize: 1,
		Blocked:  []data.Rect{{X: 4, Y: 0, W: 2, H: 7}},
	}
}

func TestGridRasterizes(t *testing.T) {
	g := NewGrid(walledArena())
	assert.Equal(t, 10, g.Width)
	assert.Equal(t, 10, g.Height)
	assert.True(t, g.Walkable(0, 0))
	assert.False(t, g.Walkable(4, 3))
	assert.False(t, g.Walkable(5, 6))
	assert.True(t, g.Walkable(5, 7))
	assert.False(t, g.Walkable(-1, 0))
	assert.False(t, g.Walkable(10, 0))
}

func TestStraightPathWhenVisible(t *testing.T) {
	g := NewGrid(walledArena())
	path := g.FindPath(geom.V(1, 1), geom.V(2, 8))
	assert.Equal(t, []geom.Vec2{geom.V(2, 8)}, path)
}

func TestPathAroundWall(t *testing.T) {
	g := NewGrid(walledArena())
	from, to := geom.V(1.5, 1.5), geom.V(8.5, 1.5)
	assert.False(t, g.LineOfSight(from, to))

	path := g.FindPath(from, to)
	require.NotEmpty(t, path)
	assert.Equal(t, to, path[len(path)-1])
	assert.Greater(t, len(path), 1)

	prev := from
	for _, c := range path {
		assert.True(t, g.LineOfSight(prev, c), "segment %v -> %v", prev, c)
		prev = c
	}
	// the route has to pass below the wall
	maxY := 0.0
	for _, c := range path {
		if c.Y > maxY {
			maxY = c.Y
		}
	}
	assert.GreaterOrEqual(t, maxY, 7.0)
}

func TestBlockedGoalSnapsToOpenCell(t *testing.T) {
	g := NewGrid(walledArena())
	path := g.FindPath(geom.V(1.5, 1.5), geom.V(4.5, 3.5))
	require.NotEmpty(t, path)
	last := path[len(path)-1]
	x, y := g.CellOf(last)
	assert.True(t, g.Walkable(x, y))
}

func TestGoalOffGridSnapsInside(t *testing.T) {
	g := NewGrid(walledArena())
	path := g.FindPath(geom.V(1.5, 8.5), geom.V(500, 8.5))
	require.NotEmpty(t, path)
	last := path[len(path)-1]
	assert.True(t, g.Contains(last))
	assert.Equal(t, g.Center(9, 8), last)
}

func TestNonFiniteEnds(t *testing.T) {
	g := NewGrid(walledArena())
	assert.Nil(t, g.FindPath(geom.V(1.5, 1.5), geom.V(math.NaN(), math.NaN())))
	assert.Nil(t, g.FindPath(geom.V(1.5, 1.5), geom.V(math.Inf(1), 5)))
	assert.False(t, g.LineOfSight(geom.V(1.5, 1.5), geom.V(math.Inf(1), 1.5)))
	assert.False(t, g.Contains(geom.V(math.NaN(), 1)))
}

func TestUnreachable(t *testing.T) {
	arena := &data.ArenaInfo{
		Width:    10,
		Height:   10,
		CellSize: 1,
		Blocked:  []data.Rect{{X: 4, Y: 0, W: 2, H: 10}},
	}
	g := NewGrid(arena)
	assert.Nil(t, g.FindPath(geom.V(1.5, 1.5), geom.V(8.5, 1.5)))
}

func TestHeuristicIsOctile(t *testing.T) {
	assert.Equal(t, 0, heuristic(2, 2, 2, 2))
	assert.Equal(t, 30, heuristic(0, 0, 3, 0))
	assert.Equal(t, 42, heuristic(0, 0, 3, 3))
	assert.Equal(t, 24, heuristic(0, 0, 2, 1))
}

func TestMinHeapOrdersByCost(t *testing.T) {
	var h minHeap
	for _, f := range []int{5, 1, 4, 2, 3} {
		h.push(heapEntry{idx: f, f: f})
	}
	var got []int
	for len(h) > 0 {
		got = append(got, h.pop().f)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, got)
}
