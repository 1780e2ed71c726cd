package system

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/arena/internal/component"
	"github.com/l1jgo/arena/internal/core/ecs"
	"github.com/l1jgo/arena/internal/core/geom"
	coresys "github.com/l1jgo/arena/internal/core/system"
	"github.com/l1jgo/arena/internal/net/protocol"
	"github.com/l1jgo/arena/internal/world"
)

// homeArrival is how close a returning neutral must get to its home.
const homeArrival = 0.5

// AISystem drives neutrals: acquire the nearest hostile hero within aggro
// radius, chase it with a throttled re-path, attack on cooldown once in
// range, and walk home when the target dies or leaves the leash.
// Phase 3 (AI).
type AISystem struct {
	world *world.State
	log   *zap.Logger
}

func NewAISystem(ws *world.State, log *zap.Logger) *AISystem {
	return &AISystem{world: ws, log: log}
}

func (s *AISystem) Phase() coresys.Phase { return coresys.PhaseAI }

func (s *AISystem) Update(dt time.Duration) {
	sec := dt.Seconds()
	ecs.Each(s.world.ECS, func(e *ecs.Entity, ai *component.AI) {
		if dead(e) {
			return
		}
		t, ok := ecs.Get[*component.Transform](e)
		if !ok {
			return
		}
		s.world.Guard("ai", e, func() { s.think(e, ai, t, sec) })
	})
}

func (s *AISystem) think(e *ecs.Entity, ai *component.AI, t *component.Transform, sec float64) {
	m, _ := ecs.Get[*component.Movement](e)

	target := s.validTarget(e, ai)
	if target == nil {
		if ai.Target != 0 {
			ai.Drop()
			ai.State = component.AIReturn
			moveTo(m, t, ai.Home)
		}
		if ai.State == component.AIReturn && t.Pos.Dist(ai.Home) <= homeArrival {
			ai.State = component.AIIdle
			if m != nil {
				m.Stop()
			}
		}
		if ai.State == component.AIReturn {
			if m != nil && !m.HasDestination {
				moveTo(m, t, ai.Home)
			}
			return
		}
		target = s.acquire(e, ai, t)
		if target == nil {
			return
		}
		ai.Target = target.ID
		ai.RepathTimer = 0
	}

	tt, _ := ecs.Get[*component.Transform](target)
	dist := t.Pos.Dist(tt.Pos)
	if dist <= ai.AttackRange {
		ai.State = component.AIAttack
		if m != nil {
			m.Stop()
		}
		t.FaceToward(tt.Pos)
		s.attack(e, target, tt.Pos)
		return
	}

	ai.State = component.AIChase
	ai.RepathTimer -= sec
	if ai.RepathTimer <= 0 {
		ai.RepathTimer = ai.RepathInterval
		moveTo(m, t, tt.Pos)
	}
}

// validTarget returns the locked target while it is alive, hostile and
// inside the leash around home.
func (s *AISystem) validTarget(e *ecs.Entity, ai *component.AI) *ecs.Entity {
	if ai.Target == 0 {
		return nil
	}
	target, ok := s.world.Entity(ai.Target)
	if !ok || target.Doomed() || dead(target) {
		return nil
	}
	tt, ok := ecs.Get[*component.Transform](target)
	if !ok || tt.Pos.Dist(ai.Home) > ai.LeashRadius {
		return nil
	}
	if !s.world.Hostile(e.ID, target.ID) {
		return nil
	}
	return target
}

// acquire picks the nearest live hostile hero within aggro radius.
func (s *AISystem) acquire(e *ecs.Entity, ai *component.AI, t *component.Transform) *ecs.Entity {
	var best *ecs.Entity
	bestDist := math.MaxFloat64
	for _, c := range s.world.Near(t.Pos, ai.AggroRadius) {
		if c.Type != ecs.TypeHero || dead(c) || !s.world.Hostile(e.ID, c.ID) {
			continue
		}
		ct, _ := ecs.Get[*component.Transform](c)
		if d := ct.Pos.Dist(t.Pos); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// attack applies the neutral's attack ability effects straight to the
// target (no carrier), or a plain hit for its combat damage, whenever
// combat is off cooldown.
func (s *AISystem) attack(e, target *ecs.Entity, at geom.Vec2) {
	c, ok := ecs.Get[*component.Combat](e)
	if !ok || !c.Ready() {
		return
	}
	c.Remaining = c.Cooldown

	if info := s.world.Lib.Neutral(e.Archetype); info != nil && info.Attack != "" {
		if ability, ok := s.world.Lib.Ability(info.Attack); ok {
			s.world.Emit(&protocol.Cast{
				Header:  protocol.Header{CasterID: uint32(e.ID), Source: info.Attack},
				TargetX: float32(at.X),
				TargetY: float32(at.Y),
			})
			for _, id := range ability.Info().Effects {
				s.world.ApplyEffect(target.ID, e.ID, id, info.Attack)
			}
			return
		}
	}
	s.world.Damage(target.ID, e.ID, c.Damage, e.Archetype)
}

func moveTo(m *component.Movement, t *component.Transform, dst geom.Vec2) {
	if m == nil || !m.Active() {
		return
	}
	m.SetDestination(t, dst)
}
