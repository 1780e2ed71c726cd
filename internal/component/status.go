package component

import (
	"github.com/l1jgo/arena/internal/core/ecs"
	"github.com/l1jgo/arena/internal/net/packet"
)

// ActiveEffect is one running instance of a content effect on a target.
type ActiveEffect struct {
	EffectID    string
	Source      string // ability that applied it, may be empty
	CasterID    ecs.EntityID
	Remaining   float64
	Accumulator float64
	// JustStarted is set on apply and cleared after the first tick. The
	// start hook fires while it is set, and the instance cannot be
	// removed on that same tick.
	JustStarted bool
}

// StatusEffects is the list of effects currently running on an entity.
type StatusEffects struct {
	Effects []*ActiveEffect
}

func (*StatusEffects) Kind() ecs.ComponentKind { return KindStatusEffect }

// Add appends a fresh instance and returns it.
func (s *StatusEffects) Add(effectID, source string, caster ecs.EntityID, duration float64) *ActiveEffect {
	ae := &ActiveEffect{
		EffectID:    effectID,
		Source:      source,
		CasterID:    caster,
		Remaining:   duration,
		JustStarted: true,
	}
	s.Effects = append(s.Effects, ae)
	return ae
}

// Has reports whether an instance of effectID is running.
func (s *StatusEffects) Has(effectID string) bool {
	for _, ae := range s.Effects {
		if ae.EffectID == effectID {
			return true
		}
	}
	return false
}

func (s *StatusEffects) Encode(w *packet.Writer) {
	w.WriteCount(len(s.Effects))
	for _, ae := range s.Effects {
		w.WriteS(ae.EffectID)
		w.WriteS(ae.Source)
		w.WriteDU(uint32(ae.CasterID))
		w.WriteF(float32(ae.Remaining))
	}
}

func (s *StatusEffects) Decode(r *packet.Reader) {
	n := r.ReadCount(1 + 1 + 4 + 4)
	s.Effects = make([]*ActiveEffect, 0, n)
	for i := 0; i < n; i++ {
		ae := &ActiveEffect{}
		ae.EffectID = r.ReadS()
		ae.Source = r.ReadS()
		ae.CasterID = ecs.EntityID(r.ReadDU())
		ae.Remaining = float64(r.ReadF())
		s.Effects = append(s.Effects, ae)
	}
}
