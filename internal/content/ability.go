package content

import (
	"math"

	"github.com/l1jgo/arena/internal/component"
	"github.com/l1jgo/arena/internal/core/ecs"
	"github.com/l1jgo/arena/internal/core/geom"
	"github.com/l1jgo/arena/internal/data"
)

// TargetPickRadius is how close to the target point a unit must stand to
// be picked by a targeted ability.
const TargetPickRadius = 1.5

// rangeSlack absorbs float32 rounding of positions sent by clients.
const rangeSlack = 1e-3

func newAbility(info *data.AbilityInfo) (Ability, error) {
	base := baseAbility{info: info}
	switch info.Kind {
	case data.AbilityProjectile:
		return &projectileAbility{base}, nil
	case data.AbilityMelee:
		return &meleeAbility{base}, nil
	case data.AbilityArea:
		return &areaAbility{base}, nil
	case data.AbilitySelf:
		return &selfAbility{base}, nil
	case data.AbilityTarget:
		return &targetAbility{base}, nil
	default:
		return nil, errUnknownAbilityKind(info)
	}
}

// baseAbility carries the shared range check and payload collision.
type baseAbility struct {
	info *data.AbilityInfo
}

func (a *baseAbility) Info() *data.AbilityInfo { return a.info }

// Validate checks the target point against the ability's range. An
// ability without range is centred on the caster and ignores the point.
func (a *baseAbility) Validate(_ World, caster *ecs.Entity, target geom.Vec2) bool {
	t, ok := ecs.Get[*component.Transform](caster)
	if !ok {
		return false
	}
	if a.info.Range <= 0 {
		return true
	}
	return t.Pos.Dist(target) <= a.info.Range+rangeSlack
}

// OnCollision applies the payload once per target and despawns the
// carrier when its hits are used up.
func (a *baseAbility) OnCollision(w World, carrier, other *ecs.Entity) {
	p, ok := ecs.Get[*component.Payload](carrier)
	if !ok || other.ID == p.CasterID || other.Doomed() {
		return
	}
	if h, ok := ecs.Get[*component.Health](other); !ok || h.Dead {
		return
	}
	if !w.Hostile(carrier.ID, other.ID) {
		return
	}
	if !p.MarkHit(other.ID) {
		return
	}
	for _, id := range p.Effects {
		w.ApplyEffect(other.ID, p.CasterID, id, a.info.ID)
	}
	if p.Spent() {
		w.Despawn(carrier.ID)
	}
}

func (a *baseAbility) applySelf(w World, caster *ecs.Entity) {
	for _, id := range a.info.SelfEffects {
		w.ApplyEffect(caster.ID, caster.ID, id, a.info.ID)
	}
}

func (a *baseAbility) carrier(caster *ecs.Entity, typ ecs.EntityType, pos geom.Vec2, facing float64) Carrier {
	return Carrier{
		Type:      typ,
		AbilityID: a.info.ID,
		Owner:     caster.Owner,
		Caster:    caster.ID,
		Pos:       pos,
		Facing:    facing,
		Radius:    a.info.Radius,
		Lifetime:  a.info.Lifetime,
		Effects:   a.info.Effects,
		MaxHits:   a.info.MaxHits,
	}
}

// aim turns the caster toward target and returns its transform.
func aim(caster *ecs.Entity, target geom.Vec2) *component.Transform {
	t, ok := ecs.Get[*component.Transform](caster)
	if !ok {
		return &component.Transform{Pos: target}
	}
	t.FaceToward(target)
	return t
}

// projectileAbility launches a moving carrier toward the target point.
type projectileAbility struct{ baseAbility }

func (a *projectileAbility) Cast(w World, caster *ecs.Entity, target geom.Vec2) {
	t := aim(caster, target)
	pos := t.Pos.Add(t.Forward().Scale(a.info.Offset))
	c := a.carrier(caster, ecs.TypeProjectile, pos, t.Facing)
	c.Speed = a.info.Speed
	c.Strategy = component.StrategyLinear
	if k, ok := component.ParseStrategy(a.info.Strategy); ok && a.info.Strategy != "" {
		c.Strategy = k
	}
	c.Destination = target
	if c.Lifetime <= 0 && c.Speed > 0 {
		c.Lifetime = a.info.Range / c.Speed
	}
	w.SpawnCarrier(c)
	a.applySelf(w, caster)
}

// meleeAbility places a short-lived swing volume in front of the caster.
type meleeAbility struct{ baseAbility }

func (a *meleeAbility) Cast(w World, caster *ecs.Entity, target geom.Vec2) {
	t := aim(caster, target)
	pos := t.Pos.Add(t.Forward().Scale(a.info.Offset))
	w.SpawnCarrier(a.carrier(caster, ecs.TypeMelee, pos, t.Facing))
	a.applySelf(w, caster)
}

// areaAbility drops a pulse at the target point, or on the caster when
// the ability has no range.
type areaAbility struct{ baseAbility }

func (a *areaAbility) Cast(w World, caster *ecs.Entity, target geom.Vec2) {
	t := aim(caster, target)
	pos := target
	if a.info.Range <= 0 {
		pos = t.Pos
	}
	w.SpawnCarrier(a.carrier(caster, ecs.TypeAreaEffect, pos, t.Facing))
	a.applySelf(w, caster)
}

// selfAbility applies its effects to the caster, facing the target
// point first so dashes and flashes travel that way.
type selfAbility struct{ baseAbility }

func (a *selfAbility) Cast(w World, caster *ecs.Entity, target geom.Vec2) {
	aim(caster, target)
	a.applySelf(w, caster)
}

// targetAbility applies its effects directly to the hostile unit nearest
// the target point.
type targetAbility struct{ baseAbility }

func (a *targetAbility) Validate(w World, caster *ecs.Entity, target geom.Vec2) bool {
	if !a.baseAbility.Validate(w, caster, target) {
		return false
	}
	return pickTarget(w, caster, target) != nil
}

func (a *targetAbility) Cast(w World, caster *ecs.Entity, target geom.Vec2) {
	aim(caster, target)
	if victim := pickTarget(w, caster, target); victim != nil {
		for _, id := range a.info.Effects {
			w.ApplyEffect(victim.ID, caster.ID, id, a.info.ID)
		}
	}
	a.applySelf(w, caster)
}

// pickTarget finds the live hostile entity closest to point within
// TargetPickRadius.
func pickTarget(w World, caster *ecs.Entity, point geom.Vec2) *ecs.Entity {
	var best *ecs.Entity
	bestDist := math.MaxFloat64
	for _, e := range w.Near(point, TargetPickRadius) {
		if e.ID == caster.ID || e.Doomed() {
			continue
		}
		h, ok := ecs.Get[*component.Health](e)
		if !ok || h.Dead {
			continue
		}
		if !w.Hostile(caster.ID, e.ID) {
			continue
		}
		t, _ := ecs.Get[*component.Transform](e)
		if d := t.Pos.Dist(point); d < bestDist {
			best, bestDist = e, d
		}
	}
	return best
}
