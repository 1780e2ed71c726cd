package handler

import (
	"go.uber.org/zap"

	"github.com/l1jgo/arena/internal/component"
	"github.com/l1jgo/arena/internal/core/ecs"
	"github.com/l1jgo/arena/internal/core/geom"
	"github.com/l1jgo/arena/internal/net/protocol"
	"github.com/l1jgo/arena/internal/world"
)

// HandleInput acknowledges the client's last received tick and applies
// the movement and cast commands to the player's hero. Inputs older than
// the newest seen sequence number are dropped, as are inputs carrying a
// non-finite coordinate. Move targets outside the arena are clamped to its
// edge.
func HandleInput(c *Context, in *protocol.Input) {
	d := c.Deps
	p := c.Player
	if !in.Finite() {
		d.Log.Warn("丟棄非法座標輸入", zap.Uint32("player", uint32(p.ID)), zap.Uint32("seq", in.Seq))
		return
	}
	if p.LastSeq != 0 && in.Seq <= p.LastSeq {
		d.Log.Debug("丟棄過期輸入", zap.Uint32("player", uint32(p.ID)), zap.Uint32("seq", in.Seq))
		return
	}
	p.LastSeq = in.Seq
	d.Replication.ProcessAck(p.ID, in.LastTick)

	hero, ok := d.World.Entity(heroEntity(p.ID))
	if !ok || hero.Doomed() {
		return
	}
	if h, ok := ecs.Get[*component.Health](hero); ok && h.Dead {
		return
	}

	if in.Has(protocol.InputStop) {
		d.World.Interrupt(hero.ID)
		if m, ok := ecs.Get[*component.Movement](hero); ok {
			m.Stop()
		}
	}
	if in.Has(protocol.InputMove) {
		move(d.World, hero, clampToArena(d.World, in.MoveX, in.MoveY))
	}
	if in.Has(protocol.InputCast) {
		d.World.QueueCast(world.CastRequest{
			Caster: hero.ID,
			Slot:   in.Slot,
			Target: geom.V(float64(in.TargetX), float64(in.TargetY)),
		})
	}
}

// move steers the hero toward dst. A cast in progress is interrupted when
// its ability allows it; a rooting cast swallows the command.
func move(ws *world.State, hero *ecs.Entity, dst geom.Vec2) {
	if c, ok := ecs.Get[*component.Casting](hero); ok && c.Active() {
		a, found := ws.Lib.Ability(c.AbilityID)
		switch {
		case found && a.Info().MoveInterrupts:
			ws.Interrupt(hero.ID)
		case c.Rooted:
			return
		}
	}
	m, ok := ecs.Get[*component.Movement](hero)
	if !ok || !m.Active() {
		return
	}
	t, ok := ecs.Get[*component.Transform](hero)
	if !ok {
		return
	}
	m.SetDestination(t, dst)
}

func clampToArena(ws *world.State, x, y float32) geom.Vec2 {
	cx, cy := ws.Lib.Arena().Clamp(float64(x), float64(y))
	return geom.V(cx, cy)
}
