package handler

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/l1jgo/arena/internal/core/ecs"
	"github.com/l1jgo/arena/internal/net/protocol"
	"github.com/l1jgo/arena/internal/session"
)

// Join rejection reasons sent back in JoinResponse.Reason.
const (
	ReasonBadPassword = "wrong password"
	ReasonFull        = "server full"
)

// HandleJoin assigns the sender a player id, or repeats the existing
// assignment for an endpoint that already joined.
func HandleJoin(c *Context, req *protocol.JoinRequest) {
	d := c.Deps
	if c.Player != nil {
		d.Net.Send(c.From, joinAccepted(d, c.Player))
		return
	}

	if hash := d.Config.Lobby.PasswordHash; hash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
			d.Log.Warn("加入被拒絕：密碼錯誤", zap.String("addr", c.From.String()))
			d.Net.Send(c.From, &protocol.JoinResponse{Reason: ReasonBadPassword})
			return
		}
	}

	pick := *req
	if pick.HeroID != "" && d.World.Lib.Hero(pick.HeroID) == nil {
		pick.HeroID = ""
	}
	p, created, err := d.Sessions.EnsurePlayer(c.From, &pick, c.At)
	if err != nil {
		if errors.Is(err, session.ErrFull) {
			d.Log.Warn("加入被拒絕：玩家已滿", zap.String("addr", c.From.String()))
		}
		d.Net.Send(c.From, &protocol.JoinResponse{Reason: ReasonFull})
		return
	}
	if created {
		d.Replication.RegisterClient(p.ID)
		d.Lobby.MarkDirty()
		d.Log.Info("玩家加入",
			zap.Uint32("player", uint32(p.ID)),
			zap.String("name", p.Name),
			zap.Uint8("team", p.Team),
			zap.String("addr", c.From.String()),
		)
	}
	d.Net.Send(c.From, joinAccepted(d, p))
}

func joinAccepted(d *Deps, p *session.Player) *protocol.JoinResponse {
	rate := uint16(0)
	if tr := d.Config.Network.TickRate; tr > 0 {
		rate = uint16(time.Second / tr)
	}
	return &protocol.JoinResponse{
		Accepted:    true,
		PlayerID:    uint32(p.ID),
		Team:        p.Team,
		TickRate:    rate,
		ContentHash: d.World.Lib.Fingerprint(),
		MatchID:     d.MatchID,
	}
}

func heroEntity(id ecs.PlayerID) ecs.EntityID { return ecs.HeroID(id) }
