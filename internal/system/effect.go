package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/arena/internal/component"
	"github.com/l1jgo/arena/internal/core/ecs"
	coresys "github.com/l1jgo/arena/internal/core/system"
	"github.com/l1jgo/arena/internal/world"
)

// EffectSystem ticks every active status effect once per tick. A new
// instance fires its start hook before any time is consumed; every tick
// fires the tick hook; an instance is removed, through its remove hook,
// once its time is up and it has lived through at least one tick. So a
// zero-duration effect always starts before it is removed.
// Phase 5 (Effect).
type EffectSystem struct {
	world *world.State
	log   *zap.Logger
}

func NewEffectSystem(ws *world.State, log *zap.Logger) *EffectSystem {
	return &EffectSystem{world: ws, log: log}
}

func (s *EffectSystem) Phase() coresys.Phase { return coresys.PhaseEffect }

func (s *EffectSystem) Update(dt time.Duration) {
	sec := dt.Seconds()
	ecs.Each(s.world.ECS, func(e *ecs.Entity, se *component.StatusEffects) {
		if len(se.Effects) == 0 {
			return
		}
		// hooks may apply new effects to the same entity; those join the
		// list after this tick's pass
		current := se.Effects
		se.Effects = nil
		kept := make([]*component.ActiveEffect, 0, len(current))
		for _, ae := range current {
			if s.tickOne(e, ae, sec) {
				kept = append(kept, ae)
			}
		}
		se.Effects = append(kept, se.Effects...)
	})
	s.world.MarkMoved()
}

// tickOne advances one instance and reports whether it stays active.
func (s *EffectSystem) tickOne(e *ecs.Entity, ae *component.ActiveEffect, sec float64) bool {
	eff, ok := s.world.Lib.Effect(ae.EffectID)
	if !ok {
		s.log.Error("效果不存在，移除實例",
			zap.Uint32("entity", uint32(e.ID)),
			zap.String("effect", ae.EffectID),
		)
		return false
	}

	if ae.JustStarted {
		s.world.Guard("effect.start", e, func() { eff.OnStart(s.world, e, ae) })
	}
	s.world.Guard("effect.tick", e, func() { eff.OnTick(s.world, e, ae, sec) })
	ae.Remaining -= sec

	if ae.Remaining <= 0 && !ae.JustStarted {
		s.world.Guard("effect.remove", e, func() { eff.OnRemove(s.world, e, ae) })
		return false
	}
	ae.JustStarted = false
	return true
}
