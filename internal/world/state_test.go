package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/l1jgo/arena/internal/component"
	"github.com/l1jgo/arena/internal/config"
	"github.com/l1jgo/arena/internal/content"
	"github.com/l1jgo/arena/internal/core/ecs"
	"github.com/l1jgo/arena/internal/core/geom"
	"github.com/l1jgo/arena/internal/data"
	"github.com/l1jgo/arena/internal/net/protocol"
)

func newTestState(t *testing.T) *State {
	t.Helper()
	b, err := data.LoadBundle("../../data/yaml")
	require.NoError(t, err)
	lib, err := content.NewLibrary(b)
	require.NoError(t, err)
	s := NewState(config.Defaults().Match, lib, nil, zap.NewNop())
	s.Bus.BeginTick(1)
	return s
}

func framed[T protocol.Event](s *State) []T {
	var out []T
	for _, ev := range s.Bus.Frame() {
		if v, ok := ev.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func TestSpawnHero(t *testing.T) {
	s := newTestState(t)
	e, err := s.SpawnHero(3, "ranger", 0)
	require.NoError(t, err)

	assert.Equal(t, ecs.EntityID(3), e.ID)
	assert.Equal(t, ecs.PlayerID(3), e.Owner)
	for _, kind := range []ecs.ComponentKind{
		component.KindTransform, component.KindMovement, component.KindHealth,
		component.KindCombat, component.KindTeam, component.KindCasting,
		component.KindCooldown, component.KindCollision, component.KindStatusEffect,
	} {
		assert.True(t, e.HasComponent(kind), "kind %d", kind)
	}
	tr, _ := ecs.Get[*component.Transform](e)
	assert.Equal(t, geom.V(5, 5), tr.Pos)

	book := s.Book(e.ID)
	require.NotNil(t, book)
	assert.Equal(t, "arrow", book.Get(0).Info().ID)
	assert.Equal(t, "volley", book.Get(3).Info().ID)
	assert.Nil(t, book.Get(4))

	spawns := framed[*protocol.Spawn](s)
	require.Len(t, spawns, 1)
	assert.Equal(t, uint32(3), spawns[0].EntityID)
	assert.Equal(t, "ranger", spawns[0].Archetype)

	second, err := s.SpawnHero(4, "knight", 0)
	require.NoError(t, err)
	tr2, _ := ecs.Get[*component.Transform](second)
	assert.Equal(t, geom.V(8, 5), tr2.Pos, "spawn points rotate per team")
}

func TestSpawnHeroErrors(t *testing.T) {
	s := newTestState(t)
	_, err := s.SpawnHero(1, "bard", 0)
	require.ErrorIs(t, err, ErrUnknownHero)

	_, err = s.SpawnHero(1, "mage", 1)
	require.NoError(t, err)
	_, err = s.SpawnHero(1, "mage", 1)
	require.ErrorIs(t, err, ecs.ErrIDInUse)
}

func TestSpawnCamps(t *testing.T) {
	s := newTestState(t)
	assert.Equal(t, 5, s.SpawnCamps())
	neutrals := s.ECS.GetByType(ecs.TypeNeutral)
	require.Len(t, neutrals, 5)
	for _, n := range neutrals {
		ai, ok := ecs.Get[*component.AI](n)
		require.True(t, ok)
		tm, _ := ecs.Get[*component.Team](n)
		assert.Equal(t, component.NeutralTeam, tm.ID)
		tr, _ := ecs.Get[*component.Transform](n)
		assert.Equal(t, ai.Home, tr.Pos)
		assert.GreaterOrEqual(t, uint32(n.ID), config.Defaults().Match.ReservedEntityIDs)
	}
}

func TestDespawnEmitsOnce(t *testing.T) {
	s := newTestState(t)
	n, err := s.SpawnNeutral("wolf", geom.V(10, 10))
	require.NoError(t, err)

	s.Despawn(n.ID)
	s.Despawn(n.ID)
	despawns := framed[*protocol.Despawn](s)
	require.Len(t, despawns, 1)
	assert.Equal(t, uint32(n.ID), despawns[0].EntityID)
	assert.True(t, n.Doomed())
	assert.Empty(t, s.Near(geom.V(10, 10), 2), "doomed entities are not near anything")
}

func TestDamageAndHeal(t *testing.T) {
	s := newTestState(t)
	hero, _ := s.SpawnHero(1, "knight", 0)
	wolf, _ := s.SpawnNeutral("wolf", geom.V(10, 10))

	dealt := s.Damage(hero.ID, wolf.ID, 100, "bite")
	assert.Equal(t, 100.0, dealt)
	h, _ := ecs.Get[*component.Health](hero)
	assert.Equal(t, 620.0, h.Current)
	assert.Equal(t, wolf.ID, h.LastAttacker)

	dmg := framed[*protocol.Damage](s)
	require.Len(t, dmg, 1)
	assert.Equal(t, float32(620), dmg[0].Remaining)
	assert.Equal(t, "bite", dmg[0].Source)

	assert.Equal(t, 50.0, s.Heal(hero.ID, hero.ID, 50, "potion"))
	assert.Equal(t, 50.0, s.Heal(hero.ID, hero.ID, 500, "potion"), "clamped at max")

	h.Dead = true
	assert.Zero(t, s.Damage(hero.ID, wolf.ID, 10, "bite"))
}

func TestApplyEffect(t *testing.T) {
	s := newTestState(t)
	hero, _ := s.SpawnHero(1, "mage", 0)

	assert.False(t, s.ApplyEffect(hero.ID, hero.ID, "no_such_effect", "x"))
	require.True(t, s.ApplyEffect(hero.ID, 7, "stunned", "shield_bash"))

	se, _ := ecs.Get[*component.StatusEffects](hero)
	require.Len(t, se.Effects, 1)
	ae := se.Effects[0]
	assert.True(t, ae.JustStarted)
	assert.Equal(t, ecs.EntityID(7), ae.CasterID)
	assert.Equal(t, "shield_bash", ae.Source)

	applied := framed[*protocol.EffectApplied](s)
	require.Len(t, applied, 1)
	assert.Equal(t, "stunned", applied[0].EffectID)
}

func TestHostility(t *testing.T) {
	s := newTestState(t)
	a, _ := s.SpawnHero(1, "mage", 0)
	b, _ := s.SpawnHero(2, "mage", 0)
	c, _ := s.SpawnHero(3, "mage", 1)
	wolf, _ := s.SpawnNeutral("wolf", geom.V(10, 10))

	assert.False(t, s.Hostile(a.ID, b.ID))
	assert.True(t, s.Hostile(a.ID, c.ID))
	assert.True(t, s.Hostile(a.ID, wolf.ID))
	assert.True(t, s.Hostile(wolf.ID, wolf.ID))
	assert.False(t, s.Hostile(a.ID, 999))
}

func TestCarrierInheritsTeam(t *testing.T) {
	s := newTestState(t)
	hero, _ := s.SpawnHero(1, "ranger", 1)
	arrow, _ := s.Lib.Ability("arrow")
	arrow.Cast(s, hero, geom.V(55, 40))

	projs := s.ECS.GetByType(ecs.TypeProjectile)
	require.Len(t, projs, 1)
	p := projs[0]
	assert.Equal(t, ecs.PlayerID(1), p.Owner)
	tm, ok := ecs.Get[*component.Team](p)
	require.True(t, ok)
	assert.Equal(t, uint8(1), tm.ID)
	col, _ := ecs.Get[*component.Collision](p)
	assert.True(t, col.Trigger)
	m, _ := ecs.Get[*component.Movement](p)
	assert.InDelta(t, 25, m.Velocity.Len(), 1e-9)
	lt, _ := ecs.Get[*component.Lifetime](p)
	assert.Equal(t, 1.2, lt.Remaining)
}

func TestInterruptReleasesRoot(t *testing.T) {
	s := newTestState(t)
	hero, _ := s.SpawnHero(1, "mage", 0)
	c, _ := ecs.Get[*component.Casting](hero)
	m, _ := ecs.Get[*component.Movement](hero)
	*c = component.Casting{AbilityID: "meteor", Total: 1, Rooted: true}
	m.Disable()

	s.Interrupt(hero.ID)
	assert.False(t, c.Active())
	assert.True(t, m.Active())
	s.Interrupt(hero.ID)
	assert.Equal(t, 0, m.DisableCount)
}

func TestRespawnHero(t *testing.T) {
	s := newTestState(t)
	hero, _ := s.SpawnHero(1, "knight", 1)
	h, _ := ecs.Get[*component.Health](hero)
	tr, _ := ecs.Get[*component.Transform](hero)
	h.Damage(h.Max)
	h.Dead = true
	tr.Pos = geom.V(30, 5)

	s.RespawnHero(hero)
	assert.Equal(t, h.Max, h.Current)
	assert.False(t, h.Dead)
	assert.True(t, s.Walkable(tr.Pos))
	assert.Len(t, framed[*protocol.Respawn](s), 1)
}

func TestNear(t *testing.T) {
	s := newTestState(t)
	a, _ := s.SpawnNeutral("wolf", geom.V(10, 10))
	b, _ := s.SpawnNeutral("wolf", geom.V(12, 10))
	_, _ = s.SpawnNeutral("wolf", geom.V(40, 40))

	got := s.Near(geom.V(10, 10), 2)
	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, b.ID, got[1].ID)

	tr, _ := ecs.Get[*component.Transform](b)
	tr.Pos = geom.V(20, 20)
	s.MarkMoved()
	assert.Len(t, s.Near(geom.V(10, 10), 2), 1)
}

func TestGuardRecovers(t *testing.T) {
	s := newTestState(t)
	e, _ := s.SpawnNeutral("golem", geom.V(30, 30))
	ran := false
	s.Guard("test", e, func() { panic("bad content") })
	s.Guard("test", e, func() { ran = true })
	assert.True(t, ran)
}

func TestDuplicateComponentIsLogged(t *testing.T) {
	b, err := data.LoadBundle("../../data/yaml")
	require.NoError(t, err)
	lib, err := content.NewLibrary(b)
	require.NoError(t, err)
	core, logs := observer.New(zapcore.WarnLevel)
	s := NewState(config.Defaults().Match, lib, nil, zap.New(core))
	s.Bus.BeginTick(1)

	e, err := s.SpawnHero(1, "knight", 0)
	require.NoError(t, err)
	assert.Zero(t, logs.FilterMessage("元件重複加入").Len(), "a clean spawn attaches each kind once")

	e.AddComponent(&component.Transform{Pos: geom.V(1, 1)})
	entries := logs.FilterMessage("元件重複加入").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, uint32(1), fields["entity"])
	assert.Equal(t, "knight", fields["archetype"])
	assert.Equal(t, uint8(component.KindTransform), fields["kind"])
}
