package world

import (
	"errors"
	"math/rand"
	"sort"

	"go.uber.org/zap"

	"github.com/l1jgo/arena/internal/component"
	"github.com/l1jgo/arena/internal/config"
	"github.com/l1jgo/arena/internal/content"
	"github.com/l1jgo/arena/internal/core/ecs"
	"github.com/l1jgo/arena/internal/core/event"
	"github.com/l1jgo/arena/internal/core/geom"
	"github.com/l1jgo/arena/internal/nav"
	"github.com/l1jgo/arena/internal/net/protocol"
	"github.com/l1jgo/arena/internal/scripting"
)

var (
	ErrUnknownHero    = errors.New("unknown hero archetype")
	ErrUnknownNeutral = errors.New("unknown neutral archetype")
)

// AbilityBook binds a caster's input slots to abilities. Resolved from the
// archetype at spawn and kept for the entity's lifetime.
type AbilityBook struct {
	Slots [component.Slots]content.Ability
}

// Get returns the ability bound to slot, or nil.
func (b *AbilityBook) Get(slot int) content.Ability {
	if b == nil || slot < 0 || slot >= len(b.Slots) {
		return nil
	}
	return b.Slots[slot]
}

// CastRequest is one cast input waiting for the cast phase.
type CastRequest struct {
	Caster ecs.EntityID
	Slot   uint8
	Target geom.Vec2
}

// State is the match world: the entity store plus everything systems
// share. It implements content.World for ability and effect hooks.
// Accessed only from the game loop goroutine, no locks needed.
type State struct {
	ECS     *ecs.World
	Bus     *event.Bus
	Lib     *content.Library
	Grid    *nav.Grid
	Scripts *scripting.Engine // may be nil

	cfg config.MatchConfig
	log *zap.Logger
	rng *rand.Rand

	books      map[ecs.EntityID]*AbilityBook
	casts      []CastRequest
	spawnCount map[uint8]int

	aoi      *AOIGrid
	aoiDirty bool
	nearBuf  []ecs.EntityID
}

// NewState builds an empty world for one match. Mode, team count and
// friendly fire are fixed for the world's lifetime.
func NewState(cfg config.MatchConfig, lib *content.Library, scripts *scripting.Engine, log *zap.Logger) *State {
	s := &State{
		ECS:        ecs.NewWorld(cfg.ReservedEntityIDs),
		Bus:        event.NewBus(),
		Lib:        lib,
		Grid:       nav.NewGrid(lib.Arena()),
		Scripts:    scripts,
		cfg:        cfg,
		log:        log,
		rng:        rand.New(rand.NewSource(int64(lib.Fingerprint()))),
		books:      make(map[ecs.EntityID]*AbilityBook),
		spawnCount: make(map[uint8]int),
		aoi:        NewAOIGrid(8),
		aoiDirty:   true,
	}
	s.ECS.OnReplace = s.componentReplaced
	return s
}

// componentReplaced flags a second add of the same component kind, which
// means a spawn path attached a component twice.
func (s *State) componentReplaced(e *ecs.Entity, kind ecs.ComponentKind) {
	s.log.Warn("元件重複加入",
		zap.Uint32("entity", uint32(e.ID)),
		zap.String("archetype", e.Archetype),
		zap.Uint8("kind", uint8(kind)),
	)
}

func (s *State) Config() config.MatchConfig { return s.cfg }

func (s *State) Log() *zap.Logger { return s.log }

// Tick returns the tick currently being simulated.
func (s *State) Tick() uint32 { return s.Bus.Tick() }

// Book returns the ability book of an entity, or nil.
func (s *State) Book(id ecs.EntityID) *AbilityBook { return s.books[id] }

// QueueCast stores a cast request for the next cast phase.
func (s *State) QueueCast(r CastRequest) {
	s.casts = append(s.casts, r)
}

// DrainCasts returns and clears the queued cast requests in arrival order.
func (s *State) DrainCasts() []CastRequest {
	out := s.casts
	s.casts = nil
	return out
}

// MarkMoved invalidates the spatial index after positions change.
func (s *State) MarkMoved() { s.aoiDirty = true }

// Guard runs fn and converts a panic into an error log, so one bad
// content hook cannot abort the rest of the tick.
func (s *State) Guard(what string, e *ecs.Entity, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("內容掛鉤 panic",
				zap.String("hook", what),
				zap.Uint32("entity", uint32(e.ID)),
				zap.String("archetype", e.Archetype),
				zap.Any("error", r),
			)
		}
	}()
	fn()
}

// --- content.World ---

func (s *State) Entity(id ecs.EntityID) (*ecs.Entity, bool) {
	return s.ECS.TryGet(id)
}

// Near returns the live entities with a Transform within radius of p,
// ordered by id.
func (s *State) Near(p geom.Vec2, radius float64) []*ecs.Entity {
	s.ensureIndex()
	s.nearBuf = s.aoi.NearbyInto(p, radius, s.nearBuf[:0])
	rsq := radius * radius
	var out []*ecs.Entity
	for _, id := range s.nearBuf {
		e, ok := s.ECS.TryGet(id)
		if !ok || e.Doomed() {
			continue
		}
		t, ok := ecs.Get[*component.Transform](e)
		if !ok || t.Pos.DistSq(p) > rsq {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *State) ensureIndex() {
	if !s.aoiDirty {
		return
	}
	s.aoi.Reset()
	ecs.Each(s.ECS, func(e *ecs.Entity, t *component.Transform) {
		if !e.Doomed() {
			s.aoi.Add(e.ID, t.Pos)
		}
	})
	s.aoiDirty = false
}

// Despawn queues an entity for end-of-tick removal. The despawn event is
// emitted once, however many times the entity is despawned this tick.
func (s *State) Despawn(id ecs.EntityID) {
	e, ok := s.ECS.TryGet(id)
	if !ok || !s.ECS.MarkForDestruction(id) {
		return
	}
	s.Interrupt(id)
	s.aoiDirty = true
	s.Emit(&protocol.Despawn{
		Header:   protocol.Header{Source: e.Archetype},
		EntityID: uint32(id),
	})
}

// Damage lowers the target's health through the damage formula and
// emits a Damage event. Returns the amount actually removed.
func (s *State) Damage(target, source ecs.EntityID, amount float64, sourceID string) float64 {
	e, ok := s.ECS.TryGet(target)
	if !ok || e.Doomed() {
		return 0
	}
	h, ok := ecs.Get[*component.Health](e)
	if !ok || h.Dead {
		return 0
	}
	ctx := scripting.DamageContext{
		Amount:      amount,
		Source:      sourceID,
		Mode:        s.cfg.Mode,
		TargetType:  e.Type.String(),
		TargetHP:    h.Current,
		TargetMaxHP: h.Max,
	}
	if src, ok := s.ECS.TryGet(source); ok {
		ctx.AttackerType = src.Type.String()
	}
	dealt := h.Damage(s.Scripts.CalcDamage(ctx))
	if dealt <= 0 {
		return 0
	}
	if source != 0 && source != target {
		h.LastAttacker = source
	}
	s.Emit(&protocol.Damage{
		Header:    protocol.Header{CasterID: uint32(source), Source: sourceID},
		TargetID:  uint32(target),
		Amount:    float32(dealt),
		Remaining: float32(h.Current),
	})
	return dealt
}

// Heal restores health up to the maximum. Returns the amount restored.
func (s *State) Heal(target, _ ecs.EntityID, amount float64, _ string) float64 {
	e, ok := s.ECS.TryGet(target)
	if !ok || e.Doomed() {
		return 0
	}
	h, ok := ecs.Get[*component.Health](e)
	if !ok {
		return 0
	}
	return h.Heal(amount)
}

// ApplyEffect attaches a new instance of effectID to target. Its start
// hook fires on the next effect phase. A missing effect is a content
// fault: it is logged and skipped.
func (s *State) ApplyEffect(target, caster ecs.EntityID, effectID, sourceID string) bool {
	eff, ok := s.Lib.Effect(effectID)
	if !ok {
		s.log.Error("效果不存在", zap.String("effect", effectID), zap.String("source", sourceID))
		return false
	}
	e, ok := s.ECS.TryGet(target)
	if !ok || e.Doomed() {
		return false
	}
	if h, ok := ecs.Get[*component.Health](e); ok && h.Dead {
		return false
	}
	se, ok := ecs.Get[*component.StatusEffects](e)
	if !ok {
		se = &component.StatusEffects{}
		e.AddComponent(se)
	}
	duration := eff.Info().Duration
	se.Add(effectID, sourceID, caster, duration)
	s.Emit(&protocol.EffectApplied{
		Header:   protocol.Header{CasterID: uint32(caster), Source: sourceID},
		TargetID: uint32(target),
		EffectID: effectID,
		Duration: float32(duration),
	})
	return true
}

// Hostile reports whether a may hit b. Entities without a Team are
// hostile to everyone.
func (s *State) Hostile(a, b ecs.EntityID) bool {
	ea, okA := s.ECS.TryGet(a)
	eb, okB := s.ECS.TryGet(b)
	if !okA || !okB {
		return false
	}
	ta, okA := ecs.Get[*component.Team](ea)
	tb, okB := ecs.Get[*component.Team](eb)
	if !okA || !okB {
		return true
	}
	return ta.IsEnemy(tb)
}

// Interrupt cancels an in-progress cast without consuming its cooldown.
func (s *State) Interrupt(id ecs.EntityID) {
	e, ok := s.ECS.TryGet(id)
	if !ok {
		return
	}
	c, ok := ecs.Get[*component.Casting](e)
	if !ok || !c.Active() {
		return
	}
	if c.Rooted {
		if m, ok := ecs.Get[*component.Movement](e); ok {
			m.Enable()
		}
	}
	c.Clear()
}

func (s *State) Walkable(p geom.Vec2) bool {
	return s.Lib.Arena().Walkable(p.X, p.Y)
}

// Emit stamps ev with the current tick and adds it to the frame.
func (s *State) Emit(ev protocol.Event) {
	s.Bus.Emit(ev)
}

// ClearEffects removes every status effect from e, running the remove
// hook of each effect that already started.
func (s *State) ClearEffects(e *ecs.Entity) {
	se, ok := ecs.Get[*component.StatusEffects](e)
	if !ok {
		return
	}
	effects := se.Effects
	se.Effects = nil
	for _, ae := range effects {
		if ae.JustStarted {
			continue
		}
		eff, ok := s.Lib.Effect(ae.EffectID)
		if !ok {
			continue
		}
		s.Guard("effect.remove", e, func() { eff.OnRemove(s, e, ae) })
	}
}
