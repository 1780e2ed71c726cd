package handler

import (
	"go.uber.org/zap"

	"github.com/l1jgo/arena/internal/component"
	"github.com/l1jgo/arena/internal/core/ecs"
)

// HandleLeave disconnects the sender.
func HandleLeave(c *Context) {
	Disconnect(c.Deps, c.Player.ID, "leave")
}

// Disconnect forgets a player: replication stops, the endpoint mapping is
// removed, and the hero lingers for match.hero_linger seconds before it
// despawns. Soft death and respawn keep applying while it lingers.
func Disconnect(d *Deps, id ecs.PlayerID, reason string) {
	p, ok := d.Sessions.Remove(id)
	if !ok {
		return
	}
	d.Replication.UnregisterClient(id)

	if hero, ok := d.World.Entity(heroEntity(id)); ok && !hero.Doomed() {
		if linger := d.Config.Match.HeroLinger; linger > 0 {
			hero.AddComponent(&component.Lifetime{Remaining: linger})
			d.World.Interrupt(hero.ID)
			if m, ok := ecs.Get[*component.Movement](hero); ok {
				m.Stop()
			}
		} else {
			d.World.Despawn(hero.ID)
		}
	}
	d.Lobby.MarkDirty()
	d.Log.Info("玩家離線",
		zap.Uint32("player", uint32(id)),
		zap.String("name", p.Name),
		zap.String("reason", reason),
	)
}
