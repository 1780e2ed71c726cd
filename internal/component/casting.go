package component

import (
	"github.com/l1jgo/arena/internal/core/ecs"
	"github.com/l1jgo/arena/internal/core/geom"
	"github.com/l1jgo/arena/internal/net/packet"
)

// Slots is the number of ability keys bound per caster.
const Slots = 4

// Casting is an in-progress cast with a non-zero cast time.
type Casting struct {
	AbilityID string
	Slot      uint8
	Elapsed   float64
	Total     float64
	Target    geom.Vec2
	Rooted    bool // the cast holds a movement disable reference
}

func (*Casting) Kind() ecs.ComponentKind { return KindCasting }

func (c *Casting) Active() bool { return c.AbilityID != "" }

// Done reports whether the cast time has fully elapsed.
func (c *Casting) Done() bool { return c.Active() && c.Elapsed >= c.Total }

// Clear resets the cast slot to idle.
func (c *Casting) Clear() {
	*c = Casting{}
}

func (c *Casting) Encode(w *packet.Writer) {
	w.WriteS(c.AbilityID)
	w.WriteC(c.Slot)
	w.WriteF(float32(c.Elapsed))
	w.WriteF(float32(c.Total))
	writeVec(w, c.Target)
}

func (c *Casting) Decode(r *packet.Reader) {
	c.AbilityID = r.ReadS()
	c.Slot = r.ReadC()
	c.Elapsed = float64(r.ReadF())
	c.Total = float64(r.ReadF())
	c.Target = readVec(r)
}

// Cooldown tracks the four ability slots' remaining and full durations.
type Cooldown struct {
	Remaining [Slots]float64
	Max       [Slots]float64
}

func (*Cooldown) Kind() ecs.ComponentKind { return KindCooldown }

// Ready reports whether slot may be cast. Out-of-range slots are never ready.
func (c *Cooldown) Ready(slot int) bool {
	if slot < 0 || slot >= Slots {
		return false
	}
	return c.Remaining[slot] <= 0
}

// Start puts slot on cooldown for d seconds.
func (c *Cooldown) Start(slot int, d float64) {
	if slot < 0 || slot >= Slots {
		return
	}
	c.Remaining[slot] = d
	c.Max[slot] = d
}

// Tick counts every slot down linearly, never below zero.
func (c *Cooldown) Tick(dt float64) {
	for i := range c.Remaining {
		c.Remaining[i] -= dt
		if c.Remaining[i] < 0 {
			c.Remaining[i] = 0
		}
	}
}

func (c *Cooldown) Encode(w *packet.Writer) {
	for i := 0; i < Slots; i++ {
		w.WriteF(float32(c.Remaining[i]))
		w.WriteF(float32(c.Max[i]))
	}
}

func (c *Cooldown) Decode(r *packet.Reader) {
	for i := 0; i < Slots; i++ {
		c.Remaining[i] = float64(r.ReadF())
		c.Max[i] = float64(r.ReadF())
	}
}
