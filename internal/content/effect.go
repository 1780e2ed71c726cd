package content

import (
	"github.com/l1jgo/arena/internal/component"
	"github.com/l1jgo/arena/internal/core/ecs"
	"github.com/l1jgo/arena/internal/data"
	"github.com/l1jgo/arena/internal/net/protocol"
)

// pulseEpsilon absorbs float drift when accumulating tick deltas.
const pulseEpsilon = 1e-9

func newEffect(info *data.EffectInfo) (Effect, error) {
	base := baseEffect{info: info}
	switch info.Kind {
	case data.EffectDamage:
		return &instantEffect{baseEffect: base}, nil
	case data.EffectHeal:
		return &instantEffect{baseEffect: base, heal: true}, nil
	case data.EffectDamageOverTime:
		return &overTimeEffect{baseEffect: base}, nil
	case data.EffectHealOverTime:
		return &overTimeEffect{baseEffect: base, heal: true}, nil
	case data.EffectStun:
		return &disableEffect{baseEffect: base, movement: true, combat: true, interrupt: true}, nil
	case data.EffectRoot:
		return &disableEffect{baseEffect: base, movement: true}, nil
	case data.EffectSilence:
		return &disableEffect{baseEffect: base, combat: true, interrupt: true}, nil
	case data.EffectSlow:
		return &slowEffect{base}, nil
	case data.EffectDash:
		return &dashEffect{base}, nil
	case data.EffectFlash:
		return &flashEffect{base}, nil
	default:
		return nil, errUnknownEffectKind(info)
	}
}

type baseEffect struct {
	info *data.EffectInfo
}

func (e *baseEffect) Info() *data.EffectInfo { return e.info }

func (*baseEffect) OnStart(World, *ecs.Entity, *component.ActiveEffect)         {}
func (*baseEffect) OnTick(World, *ecs.Entity, *component.ActiveEffect, float64) {}
func (*baseEffect) OnRemove(World, *ecs.Entity, *component.ActiveEffect)        {}

// instantEffect deals or restores Amount once, on start.
type instantEffect struct {
	baseEffect
	heal bool
}

func (e *instantEffect) OnStart(w World, target *ecs.Entity, ae *component.ActiveEffect) {
	apply(w, e.heal, target, ae, e.info.Amount)
}

// overTimeEffect spreads Amount across Duration, either every tick or in
// Interval-sized pulses. A zero duration applies everything on start.
type overTimeEffect struct {
	baseEffect
	heal bool
}

func (e *overTimeEffect) OnStart(w World, target *ecs.Entity, ae *component.ActiveEffect) {
	if e.info.Duration <= 0 {
		apply(w, e.heal, target, ae, e.info.Amount)
	}
}

func (e *overTimeEffect) OnTick(w World, target *ecs.Entity, ae *component.ActiveEffect, dt float64) {
	if e.info.Duration <= 0 {
		return
	}
	rate := e.info.Amount / e.info.Duration
	if e.info.Interval <= 0 {
		apply(w, e.heal, target, ae, rate*dt)
		return
	}
	ae.Accumulator += dt
	for ae.Accumulator+pulseEpsilon >= e.info.Interval {
		ae.Accumulator -= e.info.Interval
		apply(w, e.heal, target, ae, rate*e.info.Interval)
	}
}

func apply(w World, heal bool, target *ecs.Entity, ae *component.ActiveEffect, amount float64) {
	if heal {
		w.Heal(target.ID, ae.CasterID, amount, ae.Source)
	} else {
		w.Damage(target.ID, ae.CasterID, amount, ae.Source)
	}
}

// disableEffect holds movement and/or combat disable references for its
// lifetime. Stacked disables compose through the reference counts.
type disableEffect struct {
	baseEffect
	movement  bool
	combat    bool
	interrupt bool
}

func (e *disableEffect) OnStart(w World, target *ecs.Entity, _ *component.ActiveEffect) {
	if e.movement {
		if m, ok := ecs.Get[*component.Movement](target); ok {
			m.Disable()
			m.Stop()
		}
	}
	if e.combat {
		if c, ok := ecs.Get[*component.Combat](target); ok {
			c.Disable()
		}
	}
	if e.interrupt {
		w.Interrupt(target.ID)
	}
}

func (e *disableEffect) OnRemove(_ World, target *ecs.Entity, _ *component.ActiveEffect) {
	if e.movement {
		if m, ok := ecs.Get[*component.Movement](target); ok {
			m.Enable()
		}
	}
	if e.combat {
		if c, ok := ecs.Get[*component.Combat](target); ok {
			c.Enable()
		}
	}
}

// slowEffect scales movement speed by Factor while active.
type slowEffect struct{ baseEffect }

func (e *slowEffect) OnStart(_ World, target *ecs.Entity, _ *component.ActiveEffect) {
	if m, ok := ecs.Get[*component.Movement](target); ok {
		m.Speed *= e.info.Factor
	}
}

func (e *slowEffect) OnRemove(_ World, target *ecs.Entity, _ *component.ActiveEffect) {
	if m, ok := ecs.Get[*component.Movement](target); ok {
		m.Speed /= e.info.Factor
	}
}

// dashEffect drives the target forward along its facing at Speed for the
// effect's duration. Steering is disabled meanwhile; walls stop it.
type dashEffect struct{ baseEffect }

func (e *dashEffect) OnStart(w World, target *ecs.Entity, ae *component.ActiveEffect) {
	t, ok := ecs.Get[*component.Transform](target)
	if !ok {
		return
	}
	if m, ok := ecs.Get[*component.Movement](target); ok {
		m.Disable()
		m.Stop()
	}
	to := t.Pos.Add(t.Forward().Scale(e.info.Speed * e.info.Duration))
	w.Emit(&protocol.Dash{
		Header:   protocol.Header{CasterID: uint32(ae.CasterID), Source: ae.Source},
		EntityID: uint32(target.ID),
		FromX:    float32(t.Pos.X),
		FromY:    float32(t.Pos.Y),
		ToX:      float32(to.X),
		ToY:      float32(to.Y),
	})
}

func (e *dashEffect) OnTick(w World, target *ecs.Entity, _ *component.ActiveEffect, dt float64) {
	t, ok := ecs.Get[*component.Transform](target)
	if !ok {
		return
	}
	next := t.Pos.Add(t.Forward().Scale(e.info.Speed * dt))
	if w.Walkable(next) {
		t.Pos = next
	}
}

func (e *dashEffect) OnRemove(_ World, target *ecs.Entity, _ *component.ActiveEffect) {
	if m, ok := ecs.Get[*component.Movement](target); ok {
		m.Enable()
	}
}

// flashEffect teleports the target Distance units along its facing on
// its first tick, stopping at the last walkable point.
type flashEffect struct{ baseEffect }

const flashStep = 0.25

func (e *flashEffect) OnStart(_ World, target *ecs.Entity, _ *component.ActiveEffect) {
	if m, ok := ecs.Get[*component.Movement](target); ok {
		m.Disable()
		m.Stop()
	}
}

func (e *flashEffect) OnTick(w World, target *ecs.Entity, ae *component.ActiveEffect, _ float64) {
	if ae.Accumulator > 0 {
		return
	}
	ae.Accumulator = 1
	t, ok := ecs.Get[*component.Transform](target)
	if !ok {
		return
	}
	from := t.Pos
	fwd := t.Forward()
	dest := from
	for d := flashStep; d <= e.info.Distance+pulseEpsilon; d += flashStep {
		p := from.Add(fwd.Scale(d))
		if !w.Walkable(p) {
			break
		}
		dest = p
	}
	t.Pos = dest
	w.Emit(&protocol.Dash{
		Header:   protocol.Header{CasterID: uint32(ae.CasterID), Source: ae.Source},
		EntityID: uint32(target.ID),
		FromX:    float32(from.X),
		FromY:    float32(from.Y),
		ToX:      float32(dest.X),
		ToY:      float32(dest.Y),
	})
}

func (e *flashEffect) OnRemove(_ World, target *ecs.Entity, _ *component.ActiveEffect) {
	if m, ok := ecs.Get[*component.Movement](target); ok {
		m.Enable()
	}
}
