package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/arena/internal/core/ecs"
	"github.com/l1jgo/arena/internal/core/geom"
)

func TestTeamIsEnemy(t *testing.T) {
	cases := []struct {
		name string
		a, b Team
		want bool
	}{
		{"same team", Team{ID: 1}, Team{ID: 1}, false},
		{"different teams", Team{ID: 1}, Team{ID: 2}, true},
		{"neutral checker", Team{ID: NeutralTeam}, Team{ID: 1}, true},
		{"neutral other", Team{ID: 1}, Team{ID: NeutralTeam}, true},
		{"friendly fire on checker", Team{ID: 1, FriendlyFire: true}, Team{ID: 1}, true},
		{"friendly fire on other only", Team{ID: 1}, Team{ID: 1, FriendlyFire: true}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.IsEnemy(&tc.b))
		})
	}
}

func TestDisableCountStacks(t *testing.T) {
	m := &Movement{Speed: 5}
	m.Disable() // stun
	m.Disable() // root
	assert.False(t, m.Active())
	m.Enable()
	assert.False(t, m.Active(), "one disable still held")
	m.Enable()
	assert.True(t, m.Active())
	m.Enable()
	assert.Equal(t, 0, m.DisableCount)

	c := &Combat{}
	c.Disable()
	assert.False(t, c.Ready())
	c.Enable()
	assert.True(t, c.Ready())
}

func TestCooldown(t *testing.T) {
	var cd Cooldown
	require.True(t, cd.Ready(0))
	cd.Start(0, 2)
	assert.False(t, cd.Ready(0))
	assert.Equal(t, 2.0, cd.Max[0])

	cd.Tick(0.5)
	assert.InDelta(t, 1.5, cd.Remaining[0], 1e-9)
	cd.Tick(5)
	assert.Equal(t, 0.0, cd.Remaining[0])
	assert.True(t, cd.Ready(0))

	assert.False(t, cd.Ready(-1))
	assert.False(t, cd.Ready(Slots))
}

func TestHealthClamps(t *testing.T) {
	h := NewHealth(100)
	assert.Equal(t, 30.0, h.Damage(30))
	assert.Equal(t, 70.0, h.Current)
	assert.Equal(t, 70.0, h.Damage(500))
	assert.Equal(t, 0.0, h.Current)
	h.Current = 90
	assert.Equal(t, 10.0, h.Heal(50))
	h.Dead = true
	assert.Equal(t, 0.0, h.Damage(10))
}

func TestSeekSnapsOnArrival(t *testing.T) {
	tr := &Transform{}
	m := &Movement{Speed: 10, Strategy: &Seek{}}
	m.SetDestination(tr, geom.V(3, 4))
	m.Step(tr, 0.1)
	assert.InDelta(t, 1.0, tr.Pos.Len(), 1e-9)
	assert.True(t, m.HasDestination)

	m.Step(tr, 1)
	assert.Equal(t, geom.V(3, 4), tr.Pos)
	assert.False(t, m.HasDestination)
	assert.True(t, m.Velocity.IsZero())
}

func TestLinearKeepsVelocity(t *testing.T) {
	tr := &Transform{}
	m := &Movement{Speed: 20, Strategy: &Linear{}}
	m.SetDestination(tr, geom.V(0, 1))
	m.Step(tr, 0.5)
	m.Step(tr, 0.5)
	assert.InDelta(t, 0, tr.Pos.X, 1e-9)
	assert.InDelta(t, 20, tr.Pos.Y, 1e-9)
}

type fixedPlanner []geom.Vec2

func (p fixedPlanner) FindPath(_, _ geom.Vec2) []geom.Vec2 { return p }

func TestPathFollowCrossesCorners(t *testing.T) {
	tr := &Transform{}
	corners := fixedPlanner{geom.V(1, 0), geom.V(1, 1), geom.V(5, 1)}
	m := &Movement{Speed: 3, Strategy: NewStrategy(StrategyPath, corners)}
	m.SetDestination(tr, geom.V(5, 1))

	// budget 3: 1 to the first corner, 1 to the second, 1 toward the third
	m.Step(tr, 1)
	assert.InDelta(t, 2, tr.Pos.X, 1e-9)
	assert.InDelta(t, 1, tr.Pos.Y, 1e-9)
	pf := m.Strategy.(*PathFollow)
	assert.Len(t, pf.Remaining(), 1)

	m.Step(tr, 2)
	assert.Equal(t, geom.V(5, 1), tr.Pos)
	assert.False(t, m.HasDestination)
}

func TestPayloadHitSet(t *testing.T) {
	p := NewPayload("fireball", 1, []string{"burn"}, 1)
	assert.False(t, p.Spent())
	assert.True(t, p.MarkHit(7))
	assert.False(t, p.MarkHit(7))
	assert.True(t, p.Spent())

	unlimited := NewPayload("cleave", 1, nil, 0)
	unlimited.MarkHit(2)
	unlimited.MarkHit(3)
	assert.False(t, unlimited.Spent())
}

func TestCodecRoundTrip(t *testing.T) {
	in := []Codec{
		&Transform{Pos: geom.V(1.5, -2), Facing: 0.5},
		&Movement{Speed: 6, Velocity: geom.V(1, 0), Destination: geom.V(4, 4), HasDestination: true, Strategy: &Seek{}, DisableCount: 2},
		&Health{Current: 40, Max: 100, Dead: true, RespawnTimer: 3},
		&Combat{Damage: 12, Range: 2, Cooldown: 1, Remaining: 0.5, DisableCount: 1},
		&Team{ID: 2, FriendlyFire: true},
		&Casting{AbilityID: "meteor", Slot: 3, Elapsed: 0.25, Total: 1, Target: geom.V(9, 9)},
		&Cooldown{Remaining: [Slots]float64{1, 0, 0, 2}, Max: [Slots]float64{4, 0, 0, 8}},
		&Collision{Radius: 0.5, Trigger: true},
		&Lifetime{Remaining: 2},
		&StatusEffects{Effects: []*ActiveEffect{{EffectID: "stun", Source: "bash", CasterID: 3, Remaining: 1}}},
		&AI{State: AIChase, Target: 4},
		&Payload{AbilityID: "fireball", CasterID: 1},
	}
	for _, c := range in {
		data := Marshal(c)
		out, err := Unmarshal(c.Kind(), data)
		require.NoError(t, err, "kind %d", c.Kind())
		assert.Equal(t, data, Marshal(out), "kind %d", c.Kind())
	}
}

func TestUnmarshalUnknownKind(t *testing.T) {
	_, err := Unmarshal(ecs.ComponentKind(31), nil)
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestUnmarshalTruncated(t *testing.T) {
	data := Marshal(&Transform{Pos: geom.V(1, 2)})
	_, err := Unmarshal(KindTransform, data[:5])
	require.Error(t, err)
}
