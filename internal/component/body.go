package component

import (
	"github.com/l1jgo/arena/internal/core/ecs"
	"github.com/l1jgo/arena/internal/net/packet"
)

// Collision is a circular body. Triggers report overlaps but are never
// pushed apart.
type Collision struct {
	Radius  float64
	Trigger bool
}

func (*Collision) Kind() ecs.ComponentKind { return KindCollision }

func (c *Collision) Encode(w *packet.Writer) {
	w.WriteF(float32(c.Radius))
	w.WriteBool(c.Trigger)
}

func (c *Collision) Decode(r *packet.Reader) {
	c.Radius = float64(r.ReadF())
	c.Trigger = r.ReadBool()
}

// Lifetime despawns a transient entity when Remaining reaches zero.
type Lifetime struct {
	Remaining float64
}

func (*Lifetime) Kind() ecs.ComponentKind { return KindLifetime }

func (l *Lifetime) Encode(w *packet.Writer) {
	w.WriteF(float32(l.Remaining))
}

func (l *Lifetime) Decode(r *packet.Reader) {
	l.Remaining = float64(r.ReadF())
}
