package component

import (
	"github.com/l1jgo/arena/internal/core/ecs"
	"github.com/l1jgo/arena/internal/net/packet"
)

// Payload is carried by projectile, melee and area entities spawned from a
// cast. Hits is the per-cast hit set: a target is affected at most once
// per payload.
type Payload struct {
	AbilityID string
	CasterID  ecs.EntityID
	Effects   []string
	Hits      map[ecs.EntityID]struct{}
	MaxHits   int // 0 means unlimited; reaching it despawns the carrier
}

func (*Payload) Kind() ecs.ComponentKind { return KindPayload }

func NewPayload(abilityID string, caster ecs.EntityID, effects []string, maxHits int) *Payload {
	return &Payload{
		AbilityID: abilityID,
		CasterID:  caster,
		Effects:   effects,
		Hits:      make(map[ecs.EntityID]struct{}),
		MaxHits:   maxHits,
	}
}

// MarkHit records target and reports whether it was a new hit.
func (p *Payload) MarkHit(target ecs.EntityID) bool {
	if p.Hits == nil {
		p.Hits = make(map[ecs.EntityID]struct{})
	}
	if _, ok := p.Hits[target]; ok {
		return false
	}
	p.Hits[target] = struct{}{}
	return true
}

// Spent reports whether the payload has used up its hits.
func (p *Payload) Spent() bool {
	return p.MaxHits > 0 && len(p.Hits) >= p.MaxHits
}

func (p *Payload) Encode(w *packet.Writer) {
	w.WriteS(p.AbilityID)
	w.WriteDU(uint32(p.CasterID))
}

func (p *Payload) Decode(r *packet.Reader) {
	p.AbilityID = r.ReadS()
	p.CasterID = ecs.EntityID(r.ReadDU())
}
