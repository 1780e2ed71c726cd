package component

import (
	"github.com/l1jgo/arena/internal/core/ecs"
	"github.com/l1jgo/arena/internal/net/packet"
)

// Health tracks hit points. Heroes soft-die: Dead is set and RespawnTimer
// counts down instead of the entity being removed.
type Health struct {
	Current      float64
	Max          float64
	Dead         bool
	RespawnTimer float64
	LastAttacker ecs.EntityID // kill credit, not replicated
}

func (*Health) Kind() ecs.ComponentKind { return KindHealth }

func NewHealth(max float64) *Health {
	return &Health{Current: max, Max: max}
}

func (h *Health) Alive() bool { return !h.Dead }

// Damage lowers Current by amount, clamped at zero, and returns the
// amount actually removed.
func (h *Health) Damage(amount float64) float64 {
	if h.Dead || amount <= 0 {
		return 0
	}
	if amount > h.Current {
		amount = h.Current
	}
	h.Current -= amount
	return amount
}

// Heal raises Current by amount, clamped at Max, and returns the amount
// actually restored.
func (h *Health) Heal(amount float64) float64 {
	if h.Dead || amount <= 0 {
		return 0
	}
	if h.Current+amount > h.Max {
		amount = h.Max - h.Current
	}
	h.Current += amount
	return amount
}

func (h *Health) Encode(w *packet.Writer) {
	w.WriteF(float32(h.Current))
	w.WriteF(float32(h.Max))
	w.WriteBool(h.Dead)
	w.WriteF(float32(h.RespawnTimer))
}

func (h *Health) Decode(r *packet.Reader) {
	h.Current = float64(r.ReadF())
	h.Max = float64(r.ReadF())
	h.Dead = r.ReadBool()
	h.RespawnTimer = float64(r.ReadF())
}
