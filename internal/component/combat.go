package component

import (
	"github.com/l1jgo/arena/internal/core/ecs"
	"github.com/l1jgo/arena/internal/net/packet"
)

// Combat holds basic-attack stats. Attacks and casts are suppressed while
// DisableCount > 0.
type Combat struct {
	Damage       float64
	Range        float64
	Cooldown     float64
	Remaining    float64
	DisableCount int
}

func (*Combat) Kind() ecs.ComponentKind { return KindCombat }

func (c *Combat) Active() bool { return c.DisableCount == 0 }

func (c *Combat) Disable() { c.DisableCount++ }

func (c *Combat) Enable() {
	if c.DisableCount > 0 {
		c.DisableCount--
	}
}

// Ready reports whether the basic attack is off cooldown and not disabled.
func (c *Combat) Ready() bool { return c.Active() && c.Remaining <= 0 }

// Tick counts the attack cooldown down, never below zero.
func (c *Combat) Tick(dt float64) {
	c.Remaining -= dt
	if c.Remaining < 0 {
		c.Remaining = 0
	}
}

func (c *Combat) Encode(w *packet.Writer) {
	w.WriteF(float32(c.Damage))
	w.WriteF(float32(c.Range))
	w.WriteF(float32(c.Cooldown))
	w.WriteF(float32(c.Remaining))
	w.WriteH(uint16(c.DisableCount))
}

func (c *Combat) Decode(r *packet.Reader) {
	c.Damage = float64(r.ReadF())
	c.Range = float64(r.ReadF())
	c.Cooldown = float64(r.ReadF())
	c.Remaining = float64(r.ReadF())
	c.DisableCount = int(r.ReadH())
}

// NeutralTeam is the sentinel team id of creeps and unaligned entities.
const NeutralTeam uint8 = 0xFF

// Team is an entity's allegiance.
type Team struct {
	ID           uint8
	FriendlyFire bool
}

func (*Team) Kind() ecs.ComponentKind { return KindTeam }

// IsEnemy reports whether t, as the checking side, treats o as hostile:
// either side is neutral, the ids differ, or t has friendly fire enabled.
func (t *Team) IsEnemy(o *Team) bool {
	if t.ID == NeutralTeam || o.ID == NeutralTeam {
		return true
	}
	if t.ID != o.ID {
		return true
	}
	return t.FriendlyFire
}

func (t *Team) Encode(w *packet.Writer) {
	w.WriteC(t.ID)
	w.WriteBool(t.FriendlyFire)
}

func (t *Team) Decode(r *packet.Reader) {
	t.ID = r.ReadC()
	t.FriendlyFire = r.ReadBool()
}
