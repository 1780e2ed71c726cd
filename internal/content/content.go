package content

import (
	"github.com/l1jgo/arena/internal/component"
	"github.com/l1jgo/arena/internal/core/ecs"
	"github.com/l1jgo/arena/internal/core/geom"
	"github.com/l1jgo/arena/internal/data"
	"github.com/l1jgo/arena/internal/net/protocol"
)

// World is the part of the game world that content hooks may touch. All
// calls happen on the game loop goroutine.
type World interface {
	Entity(id ecs.EntityID) (*ecs.Entity, bool)
	Near(p geom.Vec2, radius float64) []*ecs.Entity
	SpawnCarrier(c Carrier) (*ecs.Entity, error)
	Despawn(id ecs.EntityID)
	Damage(target, source ecs.EntityID, amount float64, sourceID string) float64
	Heal(target, source ecs.EntityID, amount float64, sourceID string) float64
	ApplyEffect(target, caster ecs.EntityID, effectID, sourceID string) bool
	Hostile(a, b ecs.EntityID) bool
	Interrupt(id ecs.EntityID)
	Walkable(p geom.Vec2) bool
	Emit(ev protocol.Event)
}

// Carrier describes an entity spawned by a cast to deliver effects:
// a projectile, a melee swing volume or an area pulse.
type Carrier struct {
	Type        ecs.EntityType
	AbilityID   string
	Owner       ecs.PlayerID
	Caster      ecs.EntityID
	Pos         geom.Vec2
	Facing      float64
	Radius      float64
	Lifetime    float64
	Speed       float64
	Strategy    component.StrategyKind
	Destination geom.Vec2
	Effects     []string
	MaxHits     int
}

// Ability is an immutable cast definition shared by every caster.
type Ability interface {
	Info() *data.AbilityInfo
	// Validate reports whether caster may cast at target. A false result
	// rejects the cast without any state change.
	Validate(w World, caster *ecs.Entity, target geom.Vec2) bool
	// Cast executes the ability: spawn a carrier or apply effects.
	Cast(w World, caster *ecs.Entity, target geom.Vec2)
	// OnCollision runs when a carrier spawned by this ability overlaps
	// another entity.
	OnCollision(w World, carrier, other *ecs.Entity)
}

// Effect is an immutable status effect definition. Hooks receive the
// running instance so per-target state stays out of the definition.
type Effect interface {
	Info() *data.EffectInfo
	OnStart(w World, target *ecs.Entity, ae *component.ActiveEffect)
	OnTick(w World, target *ecs.Entity, ae *component.ActiveEffect, dt float64)
	OnRemove(w World, target *ecs.Entity, ae *component.ActiveEffect)
}
