package system

import (
	"sort"
	"time"

	"github.com/l1jgo/arena/internal/component"
	"github.com/l1jgo/arena/internal/core/ecs"
	"github.com/l1jgo/arena/internal/core/geom"
	coresys "github.com/l1jgo/arena/internal/core/system"
	"github.com/l1jgo/arena/internal/world"
)

// CollisionSystem tests every pair of bodies. Overlapping pairs run the
// collision hook of both sides; two solid bodies are then pushed apart
// along the line between their centers.
// Phase 6 (Collision).
type CollisionSystem struct {
	world  *world.State
	bodies []body
}

type body struct {
	e   *ecs.Entity
	t   *component.Transform
	col *component.Collision
}

func NewCollisionSystem(ws *world.State) *CollisionSystem {
	return &CollisionSystem{world: ws}
}

func (s *CollisionSystem) Phase() coresys.Phase { return coresys.PhaseCollision }

func (s *CollisionSystem) Update(_ time.Duration) {
	s.bodies = s.bodies[:0]
	ecs.Each2(s.world.ECS, func(e *ecs.Entity, t *component.Transform, col *component.Collision) {
		s.bodies = append(s.bodies, body{e: e, t: t, col: col})
	})
	sort.Slice(s.bodies, func(i, j int) bool { return s.bodies[i].e.ID < s.bodies[j].e.ID })

	moved := false
	for i := 0; i < len(s.bodies); i++ {
		a := s.bodies[i]
		for j := i + 1; j < len(s.bodies); j++ {
			if a.e.Doomed() {
				break
			}
			b := s.bodies[j]
			if b.e.Doomed() {
				continue
			}
			reach := a.col.Radius + b.col.Radius
			if a.t.Pos.DistSq(b.t.Pos) > reach*reach {
				continue
			}
			s.hook(a.e, b.e)
			s.hook(b.e, a.e)
			if s.separate(a, b) {
				moved = true
			}
		}
	}
	if moved {
		s.world.MarkMoved()
	}
}

// hook runs self's collision callback: a carrier delegates to the
// ability that spawned it.
func (s *CollisionSystem) hook(self, other *ecs.Entity) {
	if self.Doomed() || other.Doomed() {
		return
	}
	p, ok := ecs.Get[*component.Payload](self)
	if !ok {
		return
	}
	ability, ok := s.world.Lib.Ability(p.AbilityID)
	if !ok {
		return
	}
	s.world.Guard("ability.collision", self, func() { ability.OnCollision(s.world, self, other) })
}

func (s *CollisionSystem) separate(a, b body) bool {
	if a.col.Trigger || b.col.Trigger || a.e.Doomed() || b.e.Doomed() {
		return false
	}
	if dead(a.e) || dead(b.e) {
		return false
	}
	delta := b.t.Pos.Sub(a.t.Pos)
	dist := delta.Len()
	overlap := a.col.Radius + b.col.Radius - dist
	if overlap <= 0 {
		return false
	}
	dir := geom.V(1, 0)
	if dist > 0 {
		dir = delta.Scale(1 / dist)
	}
	push := dir.Scale(overlap / 2)
	if p := a.t.Pos.Sub(push); s.world.Walkable(p) {
		a.t.Pos = p
	}
	if p := b.t.Pos.Add(push); s.world.Walkable(p) {
		b.t.Pos = p
	}
	return true
}

func dead(e *ecs.Entity) bool {
	h, ok := ecs.Get[*component.Health](e)
	return ok && h.Dead
}
