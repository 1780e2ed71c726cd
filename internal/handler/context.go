package handler

import (
	"net/netip"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/arena/internal/config"
	"github.com/l1jgo/arena/internal/net/protocol"
	"github.com/l1jgo/arena/internal/replication"
	"github.com/l1jgo/arena/internal/session"
	"github.com/l1jgo/arena/internal/world"
)

// Sender is the outbound half of the transport.
type Sender interface {
	Send(to netip.AddrPort, m protocol.Message)
}

// Deps holds dependencies shared by all handlers.
type Deps struct {
	Config      *config.Config
	Log         *zap.Logger
	World       *world.State
	Sessions    *session.Registry
	Replication *replication.Manager
	Net         Sender
	Lobby       *Lobby
	MatchID     string
}

// Context is one message's dispatch context. Player is nil until the
// sender has joined.
type Context struct {
	Deps   *Deps
	From   netip.AddrPort
	At     time.Time
	Player *session.Player
}

// RegisterAll registers all message handlers into the registry.
func RegisterAll(reg *Registry, deps *Deps) {
	reg.Register(protocol.MsgJoinRequest,
		[]SessionState{StateUnjoined, StateJoined},
		func(c *Context, m protocol.Message) {
			HandleJoin(c, m.(*protocol.JoinRequest))
		},
	)
	reg.Register(protocol.MsgInput,
		[]SessionState{StateJoined},
		func(c *Context, m protocol.Message) {
			HandleInput(c, m.(*protocol.Input))
		},
	)
	reg.Register(protocol.MsgLobbyAction,
		[]SessionState{StateJoined},
		func(c *Context, m protocol.Message) {
			HandleLobbyAction(c, m.(*protocol.LobbyAction))
		},
	)
	reg.Register(protocol.MsgLeave,
		[]SessionState{StateJoined},
		func(c *Context, _ protocol.Message) {
			HandleLeave(c)
		},
	)
}
