package system

import (
	"time"

	"github.com/l1jgo/arena/internal/component"
	"github.com/l1jgo/arena/internal/core/ecs"
	"github.com/l1jgo/arena/internal/core/geom"
	coresys "github.com/l1jgo/arena/internal/core/system"
	"github.com/l1jgo/arena/internal/net/protocol"
	"github.com/l1jgo/arena/internal/world"
)

// MovementSystem advances every entity's movement strategy. Entities with
// a disabled movement or a dead body hold still. Projectiles report their
// position every tick through an unreliable ProjectileTick event.
// Phase 1 (Movement).
type MovementSystem struct {
	world *world.State
}

func NewMovementSystem(ws *world.State) *MovementSystem {
	return &MovementSystem{world: ws}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseMovement }

func (s *MovementSystem) Update(dt time.Duration) {
	sec := dt.Seconds()
	ecs.Each2(s.world.ECS, func(e *ecs.Entity, t *component.Transform, m *component.Movement) {
		if h, ok := ecs.Get[*component.Health](e); ok && h.Dead {
			return
		}
		if !m.Active() {
			m.Velocity = geom.Vec2{}
			return
		}
		s.world.Guard("movement", e, func() { m.Step(t, sec) })
		if e.Type == ecs.TypeProjectile {
			s.world.Emit(&protocol.ProjectileTick{
				Header:   protocol.Header{Source: e.Archetype},
				EntityID: uint32(e.ID),
				X:        float32(t.Pos.X),
				Y:        float32(t.Pos.Y),
			})
		}
	})
	s.world.MarkMoved()
}
