package system

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/arena/internal/core/ecs"
	"github.com/l1jgo/arena/internal/handler"
	"github.com/l1jgo/arena/internal/net"
	"github.com/l1jgo/arena/internal/net/protocol"
	"github.com/l1jgo/arena/internal/replication"
	"github.com/l1jgo/arena/internal/session"
)

type fakeInbox struct {
	queue []net.Inbound
}

func (f *fakeInbox) Drain(max int) []net.Inbound {
	n := len(f.queue)
	if max > 0 && n > max {
		n = max
	}
	out := f.queue[:n]
	f.queue = f.queue[n:]
	return out
}

var (
	alice = netip.MustParseAddrPort("10.0.0.1:5000")
	bob   = netip.MustParseAddrPort("10.0.0.2:5000")
)

func (m *match) join(t *testing.T, from netip.AddrPort, name, hero string) *session.Player {
	t.Helper()
	p, created, err := m.deps.Sessions.EnsurePlayer(from, &protocol.JoinRequest{Name: name, HeroID: hero}, time.Now())
	require.NoError(t, err)
	require.True(t, created)
	m.deps.Replication.RegisterClient(p.ID)
	return p
}

func TestOutputSendsTickPackets(t *testing.T) {
	m := newMatch(t)
	m.pipe.Register(NewOutputSystem(m.deps))
	p := m.join(t, alice, "alice", "ranger")
	m.deps.Lobby.MarkDirty()

	m.begin()
	_, err := m.ws.SpawnHero(p.ID, "ranger", p.Team)
	require.NoError(t, err)
	m.step(1)

	pkts := sentOf[*protocol.TickPacket](m.net)
	require.Len(t, pkts, 1)
	assert.Equal(t, uint32(1), pkts[0].Tick)
	require.Len(t, pkts[0].States, 1)
	assert.Equal(t, uint32(p.ID), pkts[0].States[0].EntityID)
	require.Len(t, sentOf[*protocol.LobbyUpdate](m.net), 1)
	for _, s := range m.net.sent {
		assert.Equal(t, alice, s.to)
	}

	// the spawn is resent until acknowledged
	m.step(1)
	pkts = sentOf[*protocol.TickPacket](m.net)
	require.Len(t, pkts, 2)
	require.Len(t, pkts[1].Events, 1)
	assert.Equal(t, protocol.EventSpawn, pkts[1].Events[0].EventType())

	m.deps.Replication.ProcessAck(p.ID, 2)
	m.step(1)
	pkts = sentOf[*protocol.TickPacket](m.net)
	require.Len(t, pkts, 3)
	assert.Empty(t, pkts[2].Events)
	assert.Len(t, sentOf[*protocol.LobbyUpdate](m.net), 1, "lobby is only broadcast when it changed")
}

func TestLobbyStartsWhenAllReady(t *testing.T) {
	m := newMatch(t)
	started := 0
	m.pipe.Register(NewLobbySystem(m.deps, func(n int) { started = n }, zap.NewNop()))
	a := m.join(t, alice, "alice", "knight")
	b := m.join(t, bob, "bob", "mage")
	require.NoError(t, m.deps.Sessions.SetReady(a.ID, true))

	m.step(1)
	assert.False(t, m.deps.Lobby.Running())
	assert.Empty(t, m.ws.ECS.GetByType(ecs.TypeHero))

	require.NoError(t, m.deps.Sessions.SetReady(b.ID, true))
	m.step(1)
	assert.True(t, m.deps.Lobby.Running())
	assert.Equal(t, 2, started)
	assert.Len(t, m.ws.ECS.GetByType(ecs.TypeHero), 2)
	assert.Len(t, m.ws.ECS.GetByType(ecs.TypeNeutral), 5)
	assert.True(t, m.deps.Lobby.TakeDirty())
}

func TestLobbySpawnsLateJoiner(t *testing.T) {
	m := newMatch(t)
	m.pipe.Register(NewLobbySystem(m.deps, nil, zap.NewNop()))
	a := m.join(t, alice, "alice", "knight")
	require.NoError(t, m.deps.Sessions.SetReady(a.ID, true))
	m.step(1)
	require.True(t, m.deps.Lobby.Running())

	b := m.join(t, bob, "bob", "")
	require.NoError(t, m.deps.Sessions.SetReady(b.ID, true))
	m.step(1)
	_, ok := m.ws.Entity(ecs.HeroID(b.ID))
	assert.False(t, ok, "no hero picked yet")

	require.NoError(t, m.deps.Sessions.UpdateHero(b.ID, "mage"))
	m.step(1)
	hero, ok := m.ws.Entity(ecs.HeroID(b.ID))
	require.True(t, ok)
	assert.Equal(t, "mage", hero.Archetype)
	assert.Len(t, m.ws.ECS.GetByType(ecs.TypeNeutral), 5, "camps spawn once")
}

func TestInputSystemDispatches(t *testing.T) {
	m := newMatch(t)
	reg := handler.NewRegistry(zap.NewNop())
	handler.RegisterAll(reg, m.deps)
	inbox := &fakeInbox{}
	m.pipe.Register(NewInputSystem(inbox, reg, m.deps, 2, zap.NewNop()))

	now := time.Now()
	inbox.queue = []net.Inbound{
		{From: alice, Msg: &protocol.JoinRequest{Name: "alice"}, At: now},
		{From: bob, Msg: &protocol.Input{Seq: 1}, At: now},
		{From: bob, Msg: &protocol.JoinRequest{Name: "bob"}, At: now},
	}
	m.step(1)
	require.Len(t, inbox.queue, 1, "at most maxPerTick messages per tick")
	resp := sentOf[*protocol.JoinResponse](m.net)
	require.Len(t, resp, 1)
	assert.True(t, resp[0].Accepted)
	assert.Equal(t, 1, m.deps.Sessions.Len(), "input before join is refused")

	m.step(1)
	assert.Equal(t, 2, m.deps.Sessions.Len())
}

func TestSessionSystemDropsIdlePlayers(t *testing.T) {
	m := newMatch(t)
	idle := NewSessionSystem(m.deps, 15*time.Second)
	m.pipe.Register(idle)

	now := time.Now()
	p, _, err := m.deps.Sessions.EnsurePlayer(alice, &protocol.JoinRequest{Name: "alice"}, now)
	require.NoError(t, err)
	m.deps.Replication.RegisterClient(p.ID)
	_, err = m.ws.SpawnHero(p.ID, "knight", 0)
	require.NoError(t, err)

	idle.now = func() time.Time { return now.Add(10 * time.Second) }
	m.step(1)
	assert.Equal(t, 1, m.deps.Sessions.Len())

	idle.now = func() time.Time { return now.Add(16 * time.Second) }
	m.step(1)
	assert.Zero(t, m.deps.Sessions.Len())
	assert.False(t, m.deps.Replication.Registered(p.ID))

	hero, ok := m.ws.Entity(ecs.HeroID(p.ID))
	require.True(t, ok, "hero lingers after disconnect")
	assert.False(t, hero.Doomed())
}

func TestSessionSystemDropsBackloggedPlayers(t *testing.T) {
	m := newMatch(t)
	m.deps.Replication = replication.NewManager(20, 3, zap.NewNop())
	m.pipe.Register(NewSessionSystem(m.deps, time.Hour))

	p, _, err := m.deps.Sessions.EnsurePlayer(alice, &protocol.JoinRequest{Name: "alice"}, time.Now())
	require.NoError(t, err)
	m.deps.Replication.RegisterClient(p.ID)

	// the client never acks
	for i := 0; i < 4; i++ {
		m.deps.Replication.EnqueueReliableEvent(&protocol.Despawn{Header: protocol.Header{Tick: 1}, EntityID: uint32(2000 + i)})
	}
	require.Len(t, m.deps.Replication.Pending(p.ID), 3)
	require.Equal(t, []ecs.PlayerID{p.ID}, m.deps.Replication.Overflowed())

	m.step(1)
	assert.Zero(t, m.deps.Sessions.Len())
	assert.False(t, m.deps.Replication.Registered(p.ID))
	assert.Empty(t, m.deps.Replication.Overflowed())
}
