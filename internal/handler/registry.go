package handler

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/l1jgo/arena/internal/net"
	"github.com/l1jgo/arena/internal/net/protocol"
)

// SessionState is the sender's protocol phase.
type SessionState int

const (
	StateUnjoined SessionState = iota // endpoint has no player id yet
	StateJoined
)

func (s SessionState) String() string {
	switch s {
	case StateUnjoined:
		return "Unjoined"
	case StateJoined:
		return "Joined"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// HandlerFunc is the callback signature for message handlers.
type HandlerFunc func(c *Context, m protocol.Message)

type handlerEntry struct {
	fn            HandlerFunc
	allowedStates map[SessionState]bool
}

// Registry maps message types to handlers with state-based access control.
type Registry struct {
	handlers map[protocol.MsgType]*handlerEntry
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[protocol.MsgType]*handlerEntry),
		log:      log,
	}
}

// Register maps a message type to a handler, restricted to the given states.
func (reg *Registry) Register(t protocol.MsgType, states []SessionState, fn HandlerFunc) {
	allowed := make(map[SessionState]bool, len(states))
	for _, s := range states {
		allowed[s] = true
	}
	reg.handlers[t] = &handlerEntry{
		fn:            fn,
		allowedStates: allowed,
	}
}

// DispatchInbound resolves the sender of a queued message and runs its
// handler.
func (reg *Registry) DispatchInbound(deps *Deps, in net.Inbound) error {
	c := &Context{Deps: deps, From: in.From, At: in.At}
	state := StateUnjoined
	if p, ok := deps.Sessions.Lookup(in.From); ok {
		deps.Sessions.Touch(in.From, in.At)
		c.Player = p
		state = StateJoined
	}
	return reg.Dispatch(c, state, in.Msg)
}

// Dispatch finds the handler for the message type, validates the session
// state, and calls the handler. Unknown types are ignored.
func (reg *Registry) Dispatch(c *Context, state SessionState, m protocol.Message) error {
	t := m.Type()
	reg.log.Debug("收到訊息",
		zap.Stringer("type", t),
		zap.String("from", c.From.String()),
		zap.String("state", state.String()),
	)

	entry, ok := reg.handlers[t]
	if !ok {
		reg.log.Debug("未註冊的訊息類型", zap.Stringer("type", t))
		return nil
	}

	if !entry.allowedStates[state] {
		reg.log.Debug("訊息在此狀態下不允許",
			zap.Stringer("type", t),
			zap.String("state", state.String()),
		)
		return fmt.Errorf("message %s not allowed in state %s", t, state)
	}

	return reg.safeCall(entry.fn, c, m)
}

// safeCall executes a handler with panic recovery so a single bad
// message cannot crash the game loop.
func (reg *Registry) safeCall(fn HandlerFunc, c *Context, m protocol.Message) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("處理器 panic 已恢復",
				zap.Stringer("type", m.Type()),
				zap.Any("panic", rec),
			)
			err = fmt.Errorf("handler panic for %s: %v", m.Type(), rec)
		}
	}()
	fn(c, m)
	return nil
}
