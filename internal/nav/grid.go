package nav

import (
	"math"

	"github.com/l1jgo/arena/internal/core/geom"
	"github.com/l1jgo/arena/internal/data"
)

// Weighted edge costs: cardinal = 10, diagonal = 14 (≈10√2).
const (
	costCardinal = 10
	costDiagonal = 14
)

var dirVectors = [8][2]int{
	{0, -1}, {1, -1}, {1, 0}, {1, 1},
	{0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}

// Grid is the arena's walkability mesh: square cells of CellSize units,
// blocked where any obstacle covers the cell center.
type Grid struct {
	Width, Height int
	CellSize      float64
	blocked       []bool
}

// NewGrid rasterizes the arena's obstacles.
func NewGrid(arena *data.ArenaInfo) *Grid {
	cell := arena.CellSize
	if cell <= 0 {
		cell = 1
	}
	w := int(math.Ceil(arena.Width / cell))
	h := int(math.Ceil(arena.Height / cell))
	g := &Grid{Width: w, Height: h, CellSize: cell, blocked: make([]bool, w*h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := g.Center(x, y)
			g.blocked[y*w+x] = !arena.Walkable(c.X, c.Y)
		}
	}
	return g
}

func (g *Grid) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

// Walkable reports whether cell (x, y) exists and is open.
func (g *Grid) Walkable(x, y int) bool {
	return g.inBounds(x, y) && !g.blocked[y*g.Width+x]
}

// CellOf returns the cell containing p, clamped to the grid.
func (g *Grid) CellOf(p geom.Vec2) (int, int) {
	x := int(math.Floor(p.X / g.CellSize))
	y := int(math.Floor(p.Y / g.CellSize))
	return clamp(x, 0, g.Width-1), clamp(y, 0, g.Height-1)
}

// Contains reports whether p lies inside a grid cell. The far edges
// belong to no cell.
func (g *Grid) Contains(p geom.Vec2) bool {
	return p.Finite() && p.X >= 0 && p.Y >= 0 &&
		p.X < float64(g.Width)*g.CellSize && p.Y < float64(g.Height)*g.CellSize
}

// Center returns the world position of a cell's center.
func (g *Grid) Center(x, y int) geom.Vec2 {
	return geom.V((float64(x)+0.5)*g.CellSize, (float64(y)+0.5)*g.CellSize)
}

// LineOfSight reports whether the segment a-b crosses only walkable cells.
// The segment is sampled at quarter-cell steps.
func (g *Grid) LineOfSight(a, b geom.Vec2) bool {
	if !a.Finite() || !b.Finite() {
		return false
	}
	d := b.Sub(a)
	steps := int(math.Ceil(d.Len()/(g.CellSize/4))) + 1
	for i := 0; i <= steps; i++ {
		p := a.Add(d.Scale(float64(i) / float64(steps)))
		x := int(math.Floor(p.X / g.CellSize))
		y := int(math.Floor(p.Y / g.CellSize))
		if !g.Walkable(x, y) {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
