package nav

import (
	"github.com/l1jgo/arena/internal/core/geom"
)

// --- Min-heap for A* ---

type heapEntry struct {
	idx int // flat grid index (y*width + x)
	f   int // g + heuristic
}

type minHeap []heapEntry

func (h *minHeap) push(e heapEntry) {
	*h = append(*h, e)
	i := len(*h) - 1
	for i > 0 {
		parent := (i - 1) / 2
		if (*h)[parent].f <= (*h)[i].f {
			break
		}
		(*h)[parent], (*h)[i] = (*h)[i], (*h)[parent]
		i = parent
	}
}

func (h *minHeap) pop() heapEntry {
	old := *h
	n := len(old)
	e := old[0]
	old[0] = old[n-1]
	*h = old[:n-1]

	i := 0
	for {
		left := 2*i + 1
		if left >= len(*h) {
			break
		}
		smallest := left
		if right := left + 1; right < len(*h) && (*h)[right].f < (*h)[left].f {
			smallest = right
		}
		if (*h)[i].f <= (*h)[smallest].f {
			break
		}
		(*h)[i], (*h)[smallest] = (*h)[smallest], (*h)[i]
		i = smallest
	}
	return e
}

// octile distance in weighted cost units
func heuristic(ax, ay, bx, by int) int {
	dx := abs(ax - bx)
	dy := abs(ay - by)
	if dx < dy {
		dx, dy = dy, dx
	}
	return costCardinal*(dx-dy) + costDiagonal*dy
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// FindPath returns the corner list from from to to, ending exactly at to.
// A goal off the grid is snapped to the closest edge cell and a blocked
// goal to the nearest open cell. It returns nil when no route exists or
// either end is not a finite point. The start cell may be blocked (e.g.
// after a dash).
func (g *Grid) FindPath(from, to geom.Vec2) []geom.Vec2 {
	if !from.Finite() || !to.Finite() {
		return nil
	}
	gx, gy := g.CellOf(to)
	if !g.Contains(to) {
		to = g.Center(gx, gy)
	}
	if !g.Walkable(gx, gy) {
		var ok bool
		gx, gy, ok = g.nearestOpen(gx, gy, 4)
		if !ok {
			return nil
		}
		to = g.Center(gx, gy)
	}
	if g.LineOfSight(from, to) {
		return []geom.Vec2{to}
	}

	sx, sy := g.CellOf(from)
	cells := g.search(sx, sy, gx, gy)
	if cells == nil {
		return nil
	}
	return g.smooth(from, to, cells)
}

// search runs A* and returns the cell indexes from start to goal inclusive.
func (g *Grid) search(sx, sy, gx, gy int) []int {
	n := g.Width * g.Height
	start := sy*g.Width + sx
	goal := gy*g.Width + gx

	cost := make([]int, n)
	parent := make([]int, n)
	closed := make([]bool, n)
	for i := range cost {
		cost[i] = -1
		parent[i] = -1
	}
	cost[start] = 0

	open := minHeap{{idx: start, f: heuristic(sx, sy, gx, gy)}}
	for len(open) > 0 {
		cur := open.pop()
		if closed[cur.idx] {
			continue
		}
		if cur.idx == goal {
			return walkBack(parent, goal)
		}
		closed[cur.idx] = true
		cx, cy := cur.idx%g.Width, cur.idx/g.Width

		for d, v := range dirVectors {
			nx, ny := cx+v[0], cy+v[1]
			if !g.Walkable(nx, ny) {
				continue
			}
			step := costCardinal
			if d%2 == 1 {
				// no corner cutting
				if !g.Walkable(cx+v[0], cy) || !g.Walkable(cx, cy+v[1]) {
					continue
				}
				step = costDiagonal
			}
			ni := ny*g.Width + nx
			if closed[ni] {
				continue
			}
			nc := cost[cur.idx] + step
			if cost[ni] >= 0 && nc >= cost[ni] {
				continue
			}
			cost[ni] = nc
			parent[ni] = cur.idx
			open.push(heapEntry{idx: ni, f: nc + heuristic(nx, ny, gx, gy)})
		}
	}
	return nil
}

func walkBack(parent []int, goal int) []int {
	var rev []int
	for i := goal; i >= 0; i = parent[i] {
		rev = append(rev, i)
	}
	out := make([]int, len(rev))
	for i := range rev {
		out[i] = rev[len(rev)-1-i]
	}
	return out
}

// smooth string-pulls the cell path: from each anchor it skips ahead to
// the farthest cell center still in line of sight.
func (g *Grid) smooth(from, to geom.Vec2, cells []int) []geom.Vec2 {
	points := make([]geom.Vec2, 0, len(cells))
	for _, idx := range cells[1:] {
		points = append(points, g.Center(idx%g.Width, idx/g.Width))
	}
	if len(points) == 0 {
		return []geom.Vec2{to}
	}
	points[len(points)-1] = to

	var corners []geom.Vec2
	anchor := from
	i := 0
	for i < len(points) {
		j := len(points) - 1
		for j > i && !g.LineOfSight(anchor, points[j]) {
			j--
		}
		corners = append(corners, points[j])
		anchor = points[j]
		i = j + 1
	}
	return corners
}

// nearestOpen scans square rings around (x, y) up to radius cells.
func (g *Grid) nearestOpen(x, y, radius int) (int, int, bool) {
	for r := 1; r <= radius; r++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if abs(dx) != r && abs(dy) != r {
					continue
				}
				if g.Walkable(x+dx, y+dy) {
					return x + dx, y + dy, true
				}
			}
		}
	}
	return 0, 0, false
}
