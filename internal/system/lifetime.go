package system

import (
	"time"

	"github.com/l1jgo/arena/internal/component"
	"github.com/l1jgo/arena/internal/core/ecs"
	coresys "github.com/l1jgo/arena/internal/core/system"
	"github.com/l1jgo/arena/internal/world"
)

// LifetimeSystem despawns transient entities once their time is up.
// Phase 7 (Lifetime).
type LifetimeSystem struct {
	world *world.State
}

func NewLifetimeSystem(ws *world.State) *LifetimeSystem {
	return &LifetimeSystem{world: ws}
}

func (s *LifetimeSystem) Phase() coresys.Phase { return coresys.PhaseLifetime }

func (s *LifetimeSystem) Update(dt time.Duration) {
	sec := dt.Seconds()
	ecs.Each(s.world.ECS, func(e *ecs.Entity, l *component.Lifetime) {
		l.Remaining -= sec
		if l.Remaining <= 0 {
			s.world.Despawn(e.ID)
		}
	})
}
