package ecs

import "fmt"

// EntityID identifies an entity for the lifetime of a match. Ids are never
// reused: dynamic ids grow monotonically from the reserved boundary and
// forced ids (hero id == player id) are retired on removal.
type EntityID uint32

// PlayerID is a connection-registry player id. 0 means "no owner".
type PlayerID uint32

// HeroID returns the entity id reserved for a player's hero.
func HeroID(p PlayerID) EntityID { return EntityID(p) }

// EntityType is the coarse category tag carried on the wire.
type EntityType uint8

const (
	TypeHero EntityType = iota + 1
	TypeNeutral
	TypeProjectile
	TypeAreaEffect
	TypeMelee
)

func (t EntityType) String() string {
	switch t {
	case TypeHero:
		return "Hero"
	case TypeNeutral:
		return "Neutral"
	case TypeProjectile:
		return "Projectile"
	case TypeAreaEffect:
		return "AreaEffect"
	case TypeMelee:
		return "Melee"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(t))
	}
}

// Entity is a handle into the World's component stores. Components live
// in the per-kind dense stores; the entity only records which kinds it has.
type Entity struct {
	ID        EntityID
	Type      EntityType
	Owner     PlayerID
	Archetype string

	world   *World
	kinds   uint32
	doomed  bool
	removed bool
}

// AddComponent attaches c, replacing any component of the same kind.
func (e *Entity) AddComponent(c Component) {
	if e.removed {
		return
	}
	kind := c.Kind()
	if e.world.registry.Store(kind).Set(e.ID, c) && e.world.OnReplace != nil {
		e.world.OnReplace(e, kind)
	}
	e.kinds |= 1 << kind
}

// RemoveComponent detaches the component of the given kind, if present.
func (e *Entity) RemoveComponent(kind ComponentKind) {
	if e.kinds&(1<<kind) == 0 {
		return
	}
	e.world.registry.Store(kind).Remove(e.ID)
	e.kinds &^= 1 << kind
}

func (e *Entity) HasComponent(kind ComponentKind) bool {
	return e.kinds&(1<<kind) != 0
}

// GetComponentByType returns the component of the given kind.
func (e *Entity) GetComponentByType(kind ComponentKind) (Component, bool) {
	if e.kinds&(1<<kind) == 0 {
		return nil, false
	}
	s, ok := e.world.registry.Lookup(kind)
	if !ok {
		return nil, false
	}
	return s.Get(e.ID)
}

// Components returns every attached component in ascending kind order.
func (e *Entity) Components() []Component {
	out := make([]Component, 0, 8)
	for k := ComponentKind(0); k < MaxKinds; k++ {
		if e.kinds&(1<<k) == 0 {
			continue
		}
		if c, ok := e.GetComponentByType(k); ok {
			out = append(out, c)
		}
	}
	return out
}

// Doomed reports whether the entity is queued for destruction. Systems
// skip doomed entities for the rest of the tick.
func (e *Entity) Doomed() bool { return e.doomed }

// Removed reports whether the entity has been detached from its world.
func (e *Entity) Removed() bool { return e.removed }

// Get is the typed TryGetComponent: it returns e's component of T's kind.
func Get[T Component](e *Entity) (T, bool) {
	var zero T
	c, ok := e.GetComponentByType(zero.Kind())
	if !ok {
		return zero, false
	}
	t, ok := c.(T)
	return t, ok
}
