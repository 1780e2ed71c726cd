package handler

import (
	"go.uber.org/zap"

	"github.com/l1jgo/arena/internal/net/protocol"
)

// Lobby tracks the match phase and whether lobby state changed since the
// last broadcast. Accessed only from the game loop goroutine.
type Lobby struct {
	phase protocol.LobbyPhase
	dirty bool
}

func NewLobby() *Lobby {
	return &Lobby{phase: protocol.PhaseLobby}
}

func (l *Lobby) Phase() protocol.LobbyPhase { return l.phase }

func (l *Lobby) Running() bool { return l.phase == protocol.PhaseRunning }

// Start moves the match into the running phase.
func (l *Lobby) Start() {
	l.phase = protocol.PhaseRunning
	l.dirty = true
}

func (l *Lobby) MarkDirty() { l.dirty = true }

// TakeDirty reports whether a broadcast is due and clears the flag.
func (l *Lobby) TakeDirty() bool {
	d := l.dirty
	l.dirty = false
	return d
}

// HandleLobbyAction applies a hero pick, ready toggle or team change.
// Hero and team are locked once the player's hero is in the world.
func HandleLobbyAction(c *Context, a *protocol.LobbyAction) {
	d := c.Deps
	id := c.Player.ID
	_, spawned := d.World.Entity(heroEntity(id))

	var err error
	switch a.Action {
	case protocol.LobbySelectHero:
		if spawned {
			return
		}
		if d.World.Lib.Hero(a.HeroID) == nil {
			d.Log.Debug("選擇了不存在的英雄", zap.Uint32("player", uint32(id)), zap.String("hero", a.HeroID))
			return
		}
		err = d.Sessions.UpdateHero(id, a.HeroID)
	case protocol.LobbySetReady:
		err = d.Sessions.SetReady(id, a.Ready)
	case protocol.LobbySetTeam:
		if spawned {
			return
		}
		err = d.Sessions.SetTeam(id, a.Team)
	default:
		d.Log.Debug("未知大廳動作", zap.Uint8("action", uint8(a.Action)))
		return
	}
	if err != nil {
		d.Log.Debug("大廳動作失敗", zap.Uint32("player", uint32(id)), zap.Error(err))
		return
	}
	d.Lobby.MarkDirty()
}

// BroadcastLobby sends the lobby snapshot to every joined player.
func BroadcastLobby(d *Deps) {
	msg := &protocol.LobbyUpdate{
		Phase:   d.Lobby.Phase(),
		Players: d.Sessions.LobbyInfo(),
	}
	for _, p := range d.Sessions.Players() {
		d.Net.Send(p.Endpoint, msg)
	}
}
