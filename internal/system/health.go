package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/arena/internal/component"
	"github.com/l1jgo/arena/internal/core/ecs"
	coresys "github.com/l1jgo/arena/internal/core/system"
	"github.com/l1jgo/arena/internal/net/protocol"
	"github.com/l1jgo/arena/internal/world"
)

// HealthSystem resolves deaths and respawns. Heroes soft-die: they stay
// in the world, dead, until the respawn timer runs out. Everything else
// is despawned the tick its health reaches zero.
// Phase 2 (Health).
type HealthSystem struct {
	world *world.State
	log   *zap.Logger
}

func NewHealthSystem(ws *world.State, log *zap.Logger) *HealthSystem {
	return &HealthSystem{world: ws, log: log}
}

func (s *HealthSystem) Phase() coresys.Phase { return coresys.PhaseHealth }

func (s *HealthSystem) Update(dt time.Duration) {
	sec := dt.Seconds()
	ecs.Each(s.world.ECS, func(e *ecs.Entity, h *component.Health) {
		if h.Dead {
			if e.Type != ecs.TypeHero {
				return
			}
			h.RespawnTimer -= sec
			if h.RespawnTimer <= 0 {
				s.world.RespawnHero(e)
				s.log.Debug("英雄復活", zap.Uint32("entity", uint32(e.ID)))
			}
			return
		}
		if h.Current > 0 {
			return
		}
		s.kill(e, h)
	})
}

func (s *HealthSystem) kill(e *ecs.Entity, h *component.Health) {
	s.world.Emit(&protocol.Death{
		Header:   protocol.Header{CasterID: uint32(h.LastAttacker), Source: e.Archetype},
		EntityID: uint32(e.ID),
		KillerID: uint32(h.LastAttacker),
	})

	if e.Type != ecs.TypeHero {
		s.world.Despawn(e.ID)
		return
	}

	cfg := s.world.Config()
	h.Dead = true
	h.RespawnTimer = s.world.Scripts.RespawnDelay(cfg.Mode, cfg.RespawnSeconds)
	s.world.Interrupt(e.ID)
	s.world.ClearEffects(e)
	if m, ok := ecs.Get[*component.Movement](e); ok {
		m.Stop()
	}
	s.log.Debug("英雄死亡",
		zap.Uint32("entity", uint32(e.ID)),
		zap.Uint32("killer", uint32(h.LastAttacker)),
		zap.Float64("respawn", h.RespawnTimer),
	)
}
