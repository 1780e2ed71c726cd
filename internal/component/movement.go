package component

import (
	"github.com/l1jgo/arena/internal/core/ecs"
	"github.com/l1jgo/arena/internal/core/geom"
	"github.com/l1jgo/arena/internal/net/packet"
)

// Movement holds locomotion state. The strategy decides how the entity
// advances each tick; movement is suppressed while DisableCount > 0.
type Movement struct {
	Speed          float64
	Velocity       geom.Vec2
	Destination    geom.Vec2
	HasDestination bool
	Strategy       MoveStrategy
	DisableCount   int
}

func (*Movement) Kind() ecs.ComponentKind { return KindMovement }

// Active reports whether no effect currently suppresses movement.
func (m *Movement) Active() bool { return m.DisableCount == 0 }

func (m *Movement) Disable() { m.DisableCount++ }

// Enable releases one disable reference. The count never goes negative.
func (m *Movement) Enable() {
	if m.DisableCount > 0 {
		m.DisableCount--
	}
}

// SetDestination hands dst to the strategy.
func (m *Movement) SetDestination(t *Transform, dst geom.Vec2) {
	if m.Strategy == nil {
		m.Strategy = &Seek{}
	}
	m.Strategy.SetDestination(t, m, dst)
}

// Stop clears any pending destination and velocity.
func (m *Movement) Stop() {
	m.HasDestination = false
	m.Velocity = geom.Vec2{}
}

// Step advances t by one tick of dt seconds.
func (m *Movement) Step(t *Transform, dt float64) {
	if m.Strategy == nil {
		return
	}
	m.Strategy.Step(t, m, dt)
}

func (m *Movement) Encode(w *packet.Writer) {
	w.WriteF(float32(m.Speed))
	writeVec(w, m.Velocity)
	writeVec(w, m.Destination)
	w.WriteBool(m.HasDestination)
	kind := StrategyNone
	if m.Strategy != nil {
		kind = m.Strategy.StrategyKind()
	}
	w.WriteC(byte(kind))
	w.WriteH(uint16(m.DisableCount))
}

func (m *Movement) Decode(r *packet.Reader) {
	m.Speed = float64(r.ReadF())
	m.Velocity = readVec(r)
	m.Destination = readVec(r)
	m.HasDestination = r.ReadBool()
	m.Strategy = NewStrategy(StrategyKind(r.ReadC()), nil)
	m.DisableCount = int(r.ReadH())
}
