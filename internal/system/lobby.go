package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/arena/internal/core/ecs"
	coresys "github.com/l1jgo/arena/internal/core/system"
	"github.com/l1jgo/arena/internal/handler"
	"github.com/l1jgo/arena/internal/session"
)

// LobbySystem runs the match flow. In the lobby phase it starts the match
// once enough players are connected and every one of them is ready with
// a hero picked; starting spawns the neutral camps and every hero. While
// running, players who ready up later spawn right away.
// Phase 0 (Input), after SessionSystem.
type LobbySystem struct {
	deps    *handler.Deps
	onStart func(players int)
	log     *zap.Logger
}

// NewLobbySystem creates the match flow system. onStart, if set, is
// called once when the match starts.
func NewLobbySystem(deps *handler.Deps, onStart func(players int), log *zap.Logger) *LobbySystem {
	return &LobbySystem{deps: deps, onStart: onStart, log: log}
}

func (s *LobbySystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *LobbySystem) Update(_ time.Duration) {
	if !s.deps.Lobby.Running() {
		if s.canStart() {
			s.start()
		}
		return
	}
	for _, p := range s.deps.Sessions.Players() {
		if p.Ready && p.HeroID != "" {
			if _, ok := s.deps.World.Entity(ecs.HeroID(p.ID)); !ok {
				s.spawn(p)
			}
		}
	}
}

func (s *LobbySystem) canStart() bool {
	players := s.deps.Sessions.Players()
	min := s.deps.Config.Match.MinPlayers
	if min < 1 {
		min = 1
	}
	if len(players) < min {
		return false
	}
	for _, p := range players {
		if !p.Ready || p.HeroID == "" {
			return false
		}
	}
	return true
}

func (s *LobbySystem) start() {
	s.deps.Lobby.Start()
	camps := s.deps.World.SpawnCamps()
	players := s.deps.Sessions.Players()
	for _, p := range players {
		s.spawn(p)
	}
	s.log.Info("對戰開始",
		zap.String("match", s.deps.MatchID),
		zap.Int("players", len(players)),
		zap.Int("neutrals", camps),
	)
	if s.onStart != nil {
		s.onStart(len(players))
	}
}

func (s *LobbySystem) spawn(p *session.Player) {
	if _, err := s.deps.World.SpawnHero(p.ID, p.HeroID, p.Team); err != nil {
		s.log.Error("英雄生成失敗", zap.Uint32("player", uint32(p.ID)), zap.Error(err))
		// unready so the failure is not retried every tick
		_ = s.deps.Sessions.SetReady(p.ID, false)
		s.deps.Lobby.MarkDirty()
	}
}
