package system

import (
	"time"

	coresys "github.com/l1jgo/arena/internal/core/system"
	"github.com/l1jgo/arena/internal/handler"
	"github.com/l1jgo/arena/internal/net/protocol"
)

// OutputSystem hands this tick's reliable events to the replication
// manager, then builds and sends one tick packet per registered client.
// A pending lobby change is broadcast afterwards.
// Phase 9 (Output).
type OutputSystem struct {
	deps  *handler.Deps
	frame []protocol.Event
}

func NewOutputSystem(deps *handler.Deps) *OutputSystem {
	return &OutputSystem{deps: deps}
}

func (s *OutputSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *OutputSystem) Update(_ time.Duration) {
	ws := s.deps.World
	repl := s.deps.Replication
	tick := ws.Tick()

	s.frame = s.frame[:0]
	for _, ev := range ws.Bus.Frame() {
		pe, ok := ev.(protocol.Event)
		if !ok {
			continue
		}
		s.frame = append(s.frame, pe)
		if pe.EventType().Reliable() {
			repl.EnqueueReliableEvent(pe)
		}
	}

	for _, id := range repl.Clients() {
		endpoint, ok := s.deps.Sessions.Endpoint(id)
		if !ok {
			continue
		}
		pkt, ok := repl.BuildPacket(id, ws.ECS, tick, s.frame)
		if !ok {
			continue
		}
		s.deps.Net.Send(endpoint, pkt)
	}

	if s.deps.Lobby.TakeDirty() {
		handler.BroadcastLobby(s.deps)
	}
}
