package world

import (
	"math"

	"github.com/l1jgo/arena/internal/core/ecs"
	"github.com/l1jgo/arena/internal/core/geom"
)

// AOIGrid is a cell-based spatial index over entity positions. It is
// rebuilt lazily after positions change, so queries cost a handful of
// cells instead of a scan over every entity.
// Accessed only from the game loop goroutine, no locks.
type AOIGrid struct {
	cellSize float64
	cells    map[cellKey][]ecs.EntityID
}

type cellKey struct {
	cx int32
	cy int32
}

func NewAOIGrid(cellSize float64) *AOIGrid {
	if cellSize <= 0 {
		cellSize = 8
	}
	return &AOIGrid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]ecs.EntityID),
	}
}

func (g *AOIGrid) key(p geom.Vec2) cellKey {
	return cellKey{
		cx: int32(math.Floor(p.X / g.cellSize)),
		cy: int32(math.Floor(p.Y / g.cellSize)),
	}
}

// Reset empties every cell, keeping the backing slices.
func (g *AOIGrid) Reset() {
	for k, ids := range g.cells {
		g.cells[k] = ids[:0]
	}
}

// Add places an entity into the cell containing p.
func (g *AOIGrid) Add(id ecs.EntityID, p geom.Vec2) {
	k := g.key(p)
	g.cells[k] = append(g.cells[k], id)
}

// NearbyInto appends every id in the cells overlapping the square of
// half-width radius around p. Caller does fine-grained distance filtering.
func (g *AOIGrid) NearbyInto(p geom.Vec2, radius float64, buf []ecs.EntityID) []ecs.EntityID {
	lo := g.key(geom.V(p.X-radius, p.Y-radius))
	hi := g.key(geom.V(p.X+radius, p.Y+radius))
	for cx := lo.cx; cx <= hi.cx; cx++ {
		for cy := lo.cy; cy <= hi.cy; cy++ {
			buf = append(buf, g.cells[cellKey{cx: cx, cy: cy}]...)
		}
	}
	return buf
}
