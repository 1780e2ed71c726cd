package system

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/arena/internal/config"
	"github.com/l1jgo/arena/internal/content"
	coresys "github.com/l1jgo/arena/internal/core/system"
	"github.com/l1jgo/arena/internal/data"
	"github.com/l1jgo/arena/internal/handler"
	"github.com/l1jgo/arena/internal/net/protocol"
	"github.com/l1jgo/arena/internal/replication"
	"github.com/l1jgo/arena/internal/session"
	"github.com/l1jgo/arena/internal/world"
)

const dt = 50 * time.Millisecond

// frameTap copies every tick's events before the bus clears them.
type frameTap struct {
	ws     *world.State
	events []protocol.Event
}

func (f *frameTap) Phase() coresys.Phase { return coresys.PhaseOutput }

func (f *frameTap) Update(time.Duration) {
	for _, ev := range f.ws.Bus.Frame() {
		if pe, ok := ev.(protocol.Event); ok {
			f.events = append(f.events, pe)
		}
	}
}

func collected[T protocol.Event](f *frameTap) []T {
	var out []T
	for _, ev := range f.events {
		if v, ok := ev.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

type sentMsg struct {
	to  netip.AddrPort
	msg protocol.Message
}

type fakeNet struct {
	sent []sentMsg
}

func (f *fakeNet) Send(to netip.AddrPort, m protocol.Message) {
	f.sent = append(f.sent, sentMsg{to: to, msg: m})
}

func sentOf[T protocol.Message](f *fakeNet) []T {
	var out []T
	for _, s := range f.sent {
		if v, ok := s.msg.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

type match struct {
	ws   *world.State
	pipe *Pipeline
	tap  *frameTap
	deps *handler.Deps
	net  *fakeNet
}

func newMatch(t *testing.T) *match {
	t.Helper()
	b, err := data.LoadBundle("../../data/yaml")
	require.NoError(t, err)
	lib, err := content.NewLibrary(b)
	require.NoError(t, err)

	cfg := config.Defaults()
	log := zap.NewNop()
	ws := world.NewState(cfg.Match, lib, nil, log)
	fn := &fakeNet{}
	deps := &handler.Deps{
		Config:      cfg,
		Log:         log,
		World:       ws,
		Sessions:    session.NewRegistry(cfg.Match.ReservedEntityIDs, cfg.Match.TeamCount),
		Replication: replication.NewManager(cfg.Match.InterestRadius, cfg.Network.MaxPending, log),
		Net:         fn,
		Lobby:       handler.NewLobby(),
		MatchID:     "test",
	}
	tap := &frameTap{ws: ws}
	pipe := NewPipeline(ws, Gameplay(ws, log)...)
	pipe.Register(tap)
	return &match{ws: ws, pipe: pipe, tap: tap, deps: deps, net: fn}
}

func (m *match) step(n int) {
	for i := 0; i < n; i++ {
		m.pipe.Step(dt)
	}
}

// begin opens a tick for set-up calls that emit events.
func (m *match) begin() {
	m.ws.Bus.BeginTick(m.pipe.Tick())
}
