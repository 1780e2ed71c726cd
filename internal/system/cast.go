package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/arena/internal/component"
	"github.com/l1jgo/arena/internal/content"
	"github.com/l1jgo/arena/internal/core/ecs"
	"github.com/l1jgo/arena/internal/core/geom"
	coresys "github.com/l1jgo/arena/internal/core/system"
	"github.com/l1jgo/arena/internal/net/protocol"
	"github.com/l1jgo/arena/internal/world"
)

// CastSystem ticks cooldowns, completes casts whose cast time elapsed and
// then resolves this tick's queued cast requests. A rejected request
// changes nothing and consumes no cooldown.
// Phase 4 (Cast).
type CastSystem struct {
	world *world.State
	log   *zap.Logger
}

func NewCastSystem(ws *world.State, log *zap.Logger) *CastSystem {
	return &CastSystem{world: ws, log: log}
}

func (s *CastSystem) Phase() coresys.Phase { return coresys.PhaseCast }

func (s *CastSystem) Update(dt time.Duration) {
	sec := dt.Seconds()

	ecs.Each(s.world.ECS, func(_ *ecs.Entity, cd *component.Cooldown) {
		cd.Tick(sec)
	})
	ecs.Each(s.world.ECS, func(_ *ecs.Entity, c *component.Combat) {
		c.Tick(sec)
	})

	ecs.Each(s.world.ECS, func(e *ecs.Entity, c *component.Casting) {
		if !c.Active() {
			return
		}
		c.Elapsed += sec
		if c.Done() {
			s.finish(e, c)
		}
	})

	for _, req := range s.world.DrainCasts() {
		s.tryCast(req)
	}
}

// tryCast validates a request: bound slot, cooldown ready, combat not
// disabled, no blocking cast in progress, and the ability's own check
// (range, target). Instant casts execute immediately.
func (s *CastSystem) tryCast(req world.CastRequest) {
	e, ok := s.world.Entity(req.Caster)
	if !ok || e.Doomed() {
		return
	}
	if h, ok := ecs.Get[*component.Health](e); ok && h.Dead {
		return
	}
	slot := int(req.Slot)
	ability := s.world.Book(e.ID).Get(slot)
	if ability == nil {
		s.reject(e, req, "未綁定技能")
		return
	}
	cd, ok := ecs.Get[*component.Cooldown](e)
	if !ok || !cd.Ready(slot) {
		s.reject(e, req, "冷卻中")
		return
	}
	if c, ok := ecs.Get[*component.Combat](e); ok && !c.Active() {
		s.reject(e, req, "無法施法")
		return
	}
	casting, _ := ecs.Get[*component.Casting](e)
	if casting != nil && casting.Active() {
		if current, ok := s.world.Lib.Ability(casting.AbilityID); ok && current.Info().Blocking {
			s.reject(e, req, "施法中")
			return
		}
	}

	valid := false
	s.world.Guard("ability.validate", e, func() { valid = ability.Validate(s.world, e, req.Target) })
	if !valid {
		s.reject(e, req, "距離或目標無效")
		return
	}

	if casting != nil && casting.Active() {
		s.world.Interrupt(e.ID)
	}

	info := ability.Info()
	s.world.Emit(&protocol.Cast{
		Header:   protocol.Header{CasterID: uint32(e.ID), Source: info.ID},
		Slot:     req.Slot,
		TargetX:  float32(req.Target.X),
		TargetY:  float32(req.Target.Y),
		CastTime: float32(info.CastTime),
	})

	if info.CastTime <= 0 || casting == nil {
		s.execute(e, ability, req.Slot, req.Target)
		return
	}

	*casting = component.Casting{
		AbilityID: info.ID,
		Slot:      req.Slot,
		Total:     info.CastTime,
		Target:    req.Target,
	}
	if info.RootWhileCasting {
		if m, ok := ecs.Get[*component.Movement](e); ok {
			m.Disable()
			m.Stop()
			casting.Rooted = true
		}
	}
}

// finish executes a cast whose cast time has elapsed.
func (s *CastSystem) finish(e *ecs.Entity, c *component.Casting) {
	ability, ok := s.world.Lib.Ability(c.AbilityID)
	slot, target := c.Slot, c.Target
	s.world.Interrupt(e.ID)
	if !ok {
		s.log.Error("施法技能不存在", zap.String("ability", c.AbilityID))
		return
	}
	s.execute(e, ability, slot, target)
}

func (s *CastSystem) execute(e *ecs.Entity, ability content.Ability, slot uint8, target geom.Vec2) {
	info := ability.Info()
	s.world.Guard("ability.cast", e, func() { ability.Cast(s.world, e, target) })

	if cd, ok := ecs.Get[*component.Cooldown](e); ok {
		cd.Start(int(slot), info.Cooldown)
	}
	s.world.Emit(&protocol.CooldownStarted{
		Header:   protocol.Header{CasterID: uint32(e.ID), Source: info.ID},
		EntityID: uint32(e.ID),
		Slot:     slot,
		Duration: float32(info.Cooldown),
	})
}

func (s *CastSystem) reject(e *ecs.Entity, req world.CastRequest, reason string) {
	s.log.Debug("施法被拒絕",
		zap.Uint32("entity", uint32(e.ID)),
		zap.Uint8("slot", req.Slot),
		zap.String("reason", reason),
	)
}
