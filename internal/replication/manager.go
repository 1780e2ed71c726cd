package replication

import (
	"sort"

	"go.uber.org/zap"

	"github.com/l1jgo/arena/internal/component"
	"github.com/l1jgo/arena/internal/core/ecs"
	"github.com/l1jgo/arena/internal/net/protocol"
)

const (
	// DefaultInterestRadius is the culling distance around a player's hero.
	DefaultInterestRadius = 20.0
	DefaultMaxPending     = 1024
)

type clientState struct {
	lastAck  uint32
	pending  []protocol.Event // reliable events not yet acknowledged, oldest first
	overflow bool
}

// Manager owns per-client replication bookkeeping. It never owns entity
// data: packets are built from the world on demand. Accessed only from
// the game loop goroutine.
type Manager struct {
	clients        map[ecs.PlayerID]*clientState
	interestRadius float64
	maxPending     int
	log            *zap.Logger
}

// NewManager creates a manager. maxPending bounds each client's unacked
// reliable backlog; a client past it stops receiving new reliable events
// and is reported by Overflowed.
func NewManager(interestRadius float64, maxPending int, log *zap.Logger) *Manager {
	if interestRadius <= 0 {
		interestRadius = DefaultInterestRadius
	}
	if maxPending <= 0 {
		maxPending = DefaultMaxPending
	}
	return &Manager{
		clients:        make(map[ecs.PlayerID]*clientState),
		interestRadius: interestRadius,
		maxPending:     maxPending,
		log:            log,
	}
}

// RegisterClient starts tracking a player. Registering twice keeps the
// existing state.
func (m *Manager) RegisterClient(id ecs.PlayerID) {
	if _, ok := m.clients[id]; ok {
		return
	}
	m.clients[id] = &clientState{}
}

func (m *Manager) UnregisterClient(id ecs.PlayerID) {
	delete(m.clients, id)
}

func (m *Manager) Registered(id ecs.PlayerID) bool {
	_, ok := m.clients[id]
	return ok
}

// Clients returns the registered player ids in ascending order.
func (m *Manager) Clients() []ecs.PlayerID {
	out := make([]ecs.PlayerID, 0, len(m.clients))
	for id := range m.clients {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ProcessAck advances the client's acknowledged tick and prunes every
// pending reliable event at or before it. Acks that would move the tick
// backwards are ignored.
func (m *Manager) ProcessAck(id ecs.PlayerID, ackTick uint32) {
	c, ok := m.clients[id]
	if !ok {
		return
	}
	if ackTick <= c.lastAck {
		return
	}
	c.lastAck = ackTick
	keep := c.pending[:0]
	for _, ev := range c.pending {
		if ev.Head().Tick > ackTick {
			keep = append(keep, ev)
		}
	}
	for i := len(keep); i < len(c.pending); i++ {
		c.pending[i] = nil
	}
	c.pending = keep
}

// LastAck returns the newest tick the client acknowledged.
func (m *Manager) LastAck(id ecs.PlayerID) uint32 {
	if c, ok := m.clients[id]; ok {
		return c.lastAck
	}
	return 0
}

// EnqueueReliableEvent appends ev to every registered client's pending
// queue. Unreliable events are ignored. A client whose queue is full is
// marked overflowed instead.
func (m *Manager) EnqueueReliableEvent(ev protocol.Event) {
	if !ev.EventType().Reliable() {
		return
	}
	for id, c := range m.clients {
		if len(c.pending) >= m.maxPending {
			if !c.overflow {
				c.overflow = true
				m.log.Warn("可靠事件積壓過多",
					zap.Uint32("player", uint32(id)),
					zap.Int("pending", len(c.pending)),
					zap.Uint32("last_ack", c.lastAck),
				)
			}
			continue
		}
		c.pending = append(c.pending, ev)
	}
}

// Overflowed returns the clients whose reliable backlog hit the limit,
// in ascending order. They can no longer be kept consistent.
func (m *Manager) Overflowed() []ecs.PlayerID {
	var out []ecs.PlayerID
	for id, c := range m.clients {
		if c.overflow {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Pending returns the client's unacknowledged reliable events.
func (m *Manager) Pending(id ecs.PlayerID) []protocol.Event {
	if c, ok := m.clients[id]; ok {
		return c.pending
	}
	return nil
}

// BuildPacket assembles the tick packet for one client: interest-culled
// entity state plus this tick's events and every older reliable event
// the client has not acknowledged. It returns false for unregistered
// players.
func (m *Manager) BuildPacket(id ecs.PlayerID, w *ecs.World, tick uint32, frame []protocol.Event) (*protocol.TickPacket, bool) {
	c, ok := m.clients[id]
	if !ok {
		return nil, false
	}

	var center *component.Transform
	if hero, ok := w.TryGet(ecs.HeroID(id)); ok && !hero.Doomed() {
		if t, ok := ecs.Get[*component.Transform](hero); ok {
			center = t
		}
	}

	pkt := &protocol.TickPacket{Tick: tick}
	for _, e := range w.Entities() {
		if e.Doomed() {
			continue
		}
		if center != nil && e.Owner != id && !m.interested(center, e) {
			continue
		}
		pkt.States = append(pkt.States, snapshot(e, tick))
	}

	pkt.Events = make([]protocol.Event, 0, len(frame)+len(c.pending))
	pkt.Events = append(pkt.Events, frame...)
	for _, ev := range c.pending {
		if ev.Head().Tick < tick {
			pkt.Events = append(pkt.Events, ev)
		}
	}
	return pkt, true
}

func (m *Manager) interested(center *component.Transform, e *ecs.Entity) bool {
	t, ok := ecs.Get[*component.Transform](e)
	if !ok {
		return true
	}
	return t.Pos.DistSq(center.Pos) <= m.interestRadius*m.interestRadius
}

func snapshot(e *ecs.Entity, tick uint32) protocol.EntityState {
	st := protocol.EntityState{
		EntityID:   uint32(e.ID),
		EntityType: uint8(e.Type),
		Archetype:  e.Archetype,
		Tick:       tick,
	}
	comps := e.Components()
	st.Components = make([]protocol.ComponentData, 0, len(comps))
	for _, c := range comps {
		codec, ok := c.(component.Codec)
		if !ok {
			continue
		}
		st.Components = append(st.Components, protocol.ComponentData{
			Kind: uint8(c.Kind()),
			Data: component.Marshal(codec),
		})
	}
	return st
}
