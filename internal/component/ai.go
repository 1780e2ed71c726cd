package component

import (
	"github.com/l1jgo/arena/internal/core/ecs"
	"github.com/l1jgo/arena/internal/core/geom"
	"github.com/l1jgo/arena/internal/net/packet"
)

type AIState uint8

const (
	AIIdle AIState = iota
	AIChase
	AIAttack
	AIReturn
)

// AI drives a neutral: acquire the nearest hero in aggro range, chase it
// with a throttled re-path, attack on cooldown, and return home once the
// target leaves the leash radius.
type AI struct {
	State          AIState
	AggroRadius    float64
	LeashRadius    float64
	AttackRange    float64
	Target         ecs.EntityID
	RepathTimer    float64
	RepathInterval float64
	Home           geom.Vec2
}

func (*AI) Kind() ecs.ComponentKind { return KindAI }

// Drop forgets the current target.
func (a *AI) Drop() {
	a.Target = 0
	a.RepathTimer = 0
}

func (a *AI) Encode(w *packet.Writer) {
	w.WriteC(byte(a.State))
	w.WriteDU(uint32(a.Target))
}

func (a *AI) Decode(r *packet.Reader) {
	a.State = AIState(r.ReadC())
	a.Target = ecs.EntityID(r.ReadDU())
}
