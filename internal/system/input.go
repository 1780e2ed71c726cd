package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/l1jgo/arena/internal/core/system"
	"github.com/l1jgo/arena/internal/handler"
	"github.com/l1jgo/arena/internal/net"
)

// Inbox is the inbound queue filled by the transport's receive loop.
type Inbox interface {
	Drain(max int) []net.Inbound
}

// InputSystem drains the inbound queue and dispatches every message
// through the handler registry, in arrival order. It never blocks.
// Phase 0 (Input).
type InputSystem struct {
	inbox      Inbox
	registry   *handler.Registry
	deps       *handler.Deps
	maxPerTick int
	log        *zap.Logger
}

func NewInputSystem(inbox Inbox, registry *handler.Registry, deps *handler.Deps, maxPerTick int, log *zap.Logger) *InputSystem {
	return &InputSystem{
		inbox:      inbox,
		registry:   registry,
		deps:       deps,
		maxPerTick: maxPerTick,
		log:        log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	for _, in := range s.inbox.Drain(s.maxPerTick) {
		if err := s.registry.DispatchInbound(s.deps, in); err != nil {
			s.log.Debug("訊息處理失敗",
				zap.String("from", in.From.String()),
				zap.Error(err),
			)
		}
	}
}

// SessionSystem disconnects players that sent nothing for longer than
// the idle timeout, and players whose reliable backlog overflowed.
// Phase 0 (Input), after InputSystem.
type SessionSystem struct {
	deps    *handler.Deps
	timeout time.Duration
	now     func() time.Time
}

func NewSessionSystem(deps *handler.Deps, timeout time.Duration) *SessionSystem {
	return &SessionSystem{deps: deps, timeout: timeout, now: time.Now}
}

func (s *SessionSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *SessionSystem) Update(_ time.Duration) {
	for _, id := range s.deps.Sessions.Idle(s.now(), s.timeout) {
		handler.Disconnect(s.deps, id, "timeout")
	}
	for _, id := range s.deps.Replication.Overflowed() {
		handler.Disconnect(s.deps, id, "backlog")
	}
}
