package ecs

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrIDInUse       = errors.New("entity id already in use")
	ErrForcedIDRange = errors.New("forced entity id outside reserved range")
)

// World is the top-level ECS container. It owns the id allocator, the
// component registry, the type index, and a deferred destruction queue
// flushed by CleanupSystem each tick.
type World struct {
	registry     *Registry
	entities     map[EntityID]*Entity
	byType       map[EntityType]map[EntityID]*Entity
	retired      map[EntityID]struct{}
	reserved     EntityID
	nextID       EntityID
	destroyQueue []EntityID

	// OnReplace, if set, is called when AddComponent overwrites an
	// existing component of the same kind.
	OnReplace func(e *Entity, kind ComponentKind)
}

// NewWorld creates a world whose ids in [1, reserved) are reserved for
// forced allocation and dynamic ids start at reserved.
func NewWorld(reserved uint32) *World {
	if reserved < 1 {
		reserved = 1
	}
	return &World{
		registry:     NewRegistry(),
		entities:     make(map[EntityID]*Entity, 256),
		byType:       make(map[EntityType]map[EntityID]*Entity),
		retired:      make(map[EntityID]struct{}),
		reserved:     EntityID(reserved),
		nextID:       EntityID(reserved),
		destroyQueue: make([]EntityID, 0, 64),
	}
}

func (w *World) Registry() *Registry { return w.registry }

// CreateEntity allocates an entity. A non-zero forced id is used verbatim
// and must lie in the reserved range and never have been used before.
func (w *World) CreateEntity(t EntityType, forced EntityID) (*Entity, error) {
	id := forced
	if forced != 0 {
		if forced >= w.reserved {
			return nil, fmt.Errorf("create %s %d: %w", t, forced, ErrForcedIDRange)
		}
		if _, ok := w.entities[forced]; ok {
			return nil, fmt.Errorf("create %s %d: %w", t, forced, ErrIDInUse)
		}
		if _, ok := w.retired[forced]; ok {
			return nil, fmt.Errorf("create %s %d: %w", t, forced, ErrIDInUse)
		}
	} else {
		id = w.nextID
		w.nextID++
	}

	e := &Entity{ID: id, Type: t, world: w}
	w.entities[id] = e
	idx := w.byType[t]
	if idx == nil {
		idx = make(map[EntityID]*Entity)
		w.byType[t] = idx
	}
	idx[id] = e
	return e, nil
}

func (w *World) TryGet(id EntityID) (*Entity, bool) {
	e, ok := w.entities[id]
	return e, ok
}

// GetByType returns the entities of type t ordered by id.
func (w *World) GetByType(t EntityType) []*Entity {
	idx := w.byType[t]
	out := make([]*Entity, 0, len(idx))
	for _, e := range idx {
		out = append(out, e)
	}
	sortByID(out)
	return out
}

// Entities returns every entity ordered by id.
func (w *World) Entities() []*Entity {
	out := make([]*Entity, 0, len(w.entities))
	for _, e := range w.entities {
		out = append(out, e)
	}
	sortByID(out)
	return out
}

func (w *World) Len() int { return len(w.entities) }

// Remove detaches the entity from the id and type indexes and drops all
// of its components.
func (w *World) Remove(id EntityID) {
	e, ok := w.entities[id]
	if !ok {
		return
	}
	w.registry.RemoveAll(id)
	delete(w.entities, id)
	if idx := w.byType[e.Type]; idx != nil {
		delete(idx, id)
	}
	if id < w.reserved {
		w.retired[id] = struct{}{}
	}
	e.kinds = 0
	e.removed = true
}

// MarkForDestruction queues an entity for end-of-tick cleanup. Returns
// false when the entity is unknown or already queued.
func (w *World) MarkForDestruction(id EntityID) bool {
	e, ok := w.entities[id]
	if !ok || e.doomed {
		return false
	}
	e.doomed = true
	w.destroyQueue = append(w.destroyQueue, id)
	return true
}

// FlushDestroyQueue removes all queued entities and returns their ids.
// Called by CleanupSystem once per tick.
func (w *World) FlushDestroyQueue() []EntityID {
	if len(w.destroyQueue) == 0 {
		return nil
	}
	flushed := make([]EntityID, len(w.destroyQueue))
	copy(flushed, w.destroyQueue)
	for _, id := range flushed {
		w.Remove(id)
	}
	w.destroyQueue = w.destroyQueue[:0]
	return flushed
}

func sortByID(es []*Entity) {
	sort.Slice(es, func(i, j int) bool { return es[i].ID < es[j].ID })
}
