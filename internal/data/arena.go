package data

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// Point is a position in arena units.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Rect is an axis-aligned blocked area in arena units.
type Rect struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

// Contains reports whether (x, y) lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// Camp places neutrals when the match starts.
type Camp struct {
	Neutral string  `yaml:"neutral"`
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Count   int     `yaml:"count"`
}

// ArenaInfo is the map: bounds, navigation grid resolution, obstacles,
// per-team spawn points and neutral camps.
type ArenaInfo struct {
	Name     string          `yaml:"name"`
	Width    float64         `yaml:"width"`
	Height   float64         `yaml:"height"`
	CellSize float64         `yaml:"cell_size"`
	Blocked  []Rect          `yaml:"blocked"`
	Spawns   map[int][]Point `yaml:"spawns"` // team id -> spawn points
	Camps    []Camp          `yaml:"camps"`
}

// SpawnPoint returns the n-th spawn point of team, cycling through the
// team's list. Teams without points fall back to the arena center.
func (a *ArenaInfo) SpawnPoint(team uint8, n int) Point {
	pts := a.Spawns[int(team)]
	if len(pts) == 0 {
		return Point{X: a.Width / 2, Y: a.Height / 2}
	}
	if n < 0 {
		n = -n
	}
	return pts[n%len(pts)]
}

// Clamp limits (x, y) to the arena rectangle.
func (a *ArenaInfo) Clamp(x, y float64) (float64, float64) {
	return math.Min(math.Max(x, 0), a.Width), math.Min(math.Max(y, 0), a.Height)
}

// Walkable reports whether (x, y) is inside the arena and not blocked.
func (a *ArenaInfo) Walkable(x, y float64) bool {
	if !(x >= 0 && y >= 0 && x <= a.Width && y <= a.Height) {
		return false
	}
	for _, r := range a.Blocked {
		if r.Contains(x, y) {
			return false
		}
	}
	return true
}

type arenaFile struct {
	Arena ArenaInfo `yaml:"arena"`
}

// ParseArena decodes arena.yaml content.
func ParseArena(raw []byte) (*ArenaInfo, error) {
	var f arenaFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse arena: %w", err)
	}
	a := &f.Arena
	if a.Width <= 0 || a.Height <= 0 {
		return nil, fmt.Errorf("arena %q: width and height must be positive", a.Name)
	}
	if a.CellSize <= 0 {
		a.CellSize = 1
	}
	for i, c := range a.Camps {
		if c.Count <= 0 {
			a.Camps[i].Count = 1
		}
	}
	return a, nil
}
