package component

import (
	"github.com/l1jgo/arena/internal/core/geom"
)

// StrategyKind names a movement strategy on the wire and in content.
type StrategyKind uint8

const (
	StrategyNone StrategyKind = iota
	StrategySeek
	StrategyLinear
	StrategyPath
)

// ParseStrategy maps a content name to a strategy kind.
func ParseStrategy(name string) (StrategyKind, bool) {
	switch name {
	case "seek", "":
		return StrategySeek, true
	case "linear":
		return StrategyLinear, true
	case "path":
		return StrategyPath, true
	default:
		return StrategyNone, false
	}
}

// MoveStrategy advances a transform according to movement state. Each
// entity owns its strategy instance.
type MoveStrategy interface {
	StrategyKind() StrategyKind
	SetDestination(t *Transform, m *Movement, dst geom.Vec2)
	Step(t *Transform, m *Movement, dt float64)
}

// PathPlanner produces corner lists between two points.
type PathPlanner interface {
	FindPath(from, to geom.Vec2) []geom.Vec2
}

// NewStrategy builds a fresh strategy of the given kind. planner is only
// used by StrategyPath and may be nil (straight-line fallback).
func NewStrategy(kind StrategyKind, planner PathPlanner) MoveStrategy {
	switch kind {
	case StrategySeek:
		return &Seek{}
	case StrategyLinear:
		return &Linear{}
	case StrategyPath:
		return &PathFollow{Planner: planner}
	default:
		return nil
	}
}

// Seek walks straight to the destination and snaps onto it on arrival.
type Seek struct{}

func (*Seek) StrategyKind() StrategyKind { return StrategySeek }

func (*Seek) SetDestination(t *Transform, m *Movement, dst geom.Vec2) {
	m.Destination = dst
	m.HasDestination = true
	t.FaceToward(dst)
}

func (*Seek) Step(t *Transform, m *Movement, dt float64) {
	if !m.HasDestination {
		m.Velocity = geom.Vec2{}
		return
	}
	prev := t.Pos
	next, arrived := geom.MoveToward(t.Pos, m.Destination, m.Speed*dt)
	t.FaceToward(m.Destination)
	t.Pos = next
	if arrived {
		m.Stop()
		return
	}
	if dt > 0 {
		m.Velocity = next.Sub(prev).Scale(1 / dt)
	}
}

// Linear moves along a fixed velocity until stopped. Setting a
// destination only picks the heading.
type Linear struct{}

func (*Linear) StrategyKind() StrategyKind { return StrategyLinear }

func (*Linear) SetDestination(t *Transform, m *Movement, dst geom.Vec2) {
	dir := dst.Sub(t.Pos).Normalize()
	if dir.IsZero() {
		dir = t.Forward()
	}
	m.Destination = dst
	m.Velocity = dir.Scale(m.Speed)
	t.Facing = dir.Angle()
}

func (*Linear) Step(t *Transform, m *Movement, dt float64) {
	t.Pos = t.Pos.Add(m.Velocity.Scale(dt))
}

// PathFollow walks a corner list from the planner. A tick's travel budget
// (speed × dt) carries across corners, so a fast mover may pass several
// corners in one step.
type PathFollow struct {
	Planner PathPlanner
	Corners []geom.Vec2
	next    int
}

func (*PathFollow) StrategyKind() StrategyKind { return StrategyPath }

func (p *PathFollow) SetDestination(t *Transform, m *Movement, dst geom.Vec2) {
	var corners []geom.Vec2
	if p.Planner != nil {
		corners = p.Planner.FindPath(t.Pos, dst)
	} else {
		corners = []geom.Vec2{dst}
	}
	p.Corners = corners
	p.next = 0
	m.Destination = dst
	m.HasDestination = len(corners) > 0
	if len(corners) > 0 {
		t.FaceToward(corners[0])
	}
}

func (p *PathFollow) Step(t *Transform, m *Movement, dt float64) {
	if !m.HasDestination || p.next >= len(p.Corners) {
		m.Stop()
		return
	}
	prev := t.Pos
	budget := m.Speed * dt
	for budget > 0 && p.next < len(p.Corners) {
		corner := p.Corners[p.next]
		dist := t.Pos.Dist(corner)
		t.FaceToward(corner)
		pos, arrived := geom.MoveToward(t.Pos, corner, budget)
		t.Pos = pos
		if !arrived {
			break
		}
		budget -= dist
		p.next++
	}
	if p.next >= len(p.Corners) {
		p.Corners = nil
		p.next = 0
		m.Stop()
		return
	}
	if dt > 0 {
		m.Velocity = t.Pos.Sub(prev).Scale(1 / dt)
	}
}

// Remaining returns the corners not yet reached.
func (p *PathFollow) Remaining() []geom.Vec2 {
	if p.next >= len(p.Corners) {
		return nil
	}
	return p.Corners[p.next:]
}
