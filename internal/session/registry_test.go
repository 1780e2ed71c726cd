package session

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/arena/internal/core/ecs"
	"github.com/l1jgo/arena/internal/net/protocol"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func ep(s string) netip.AddrPort { return netip.MustParseAddrPort(s) }

func TestEnsurePlayerIsIdempotent(t *testing.T) {
	r := NewRegistry(1024, 2)
	a, created, err := r.EnsurePlayer(ep("10.0.0.1:5000"), &protocol.JoinRequest{Name: "Lina"}, t0)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, ecs.PlayerID(1), a.ID)

	again, created, err := r.EnsurePlayer(ep("10.0.0.1:5000"), &protocol.JoinRequest{Name: "Other"}, t0)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, a.ID, again.ID)
	assert.Equal(t, "Lina", again.Name)

	b, _, err := r.EnsurePlayer(ep("10.0.0.2:5000"), &protocol.JoinRequest{}, t0)
	require.NoError(t, err)
	assert.Equal(t, ecs.PlayerID(2), b.ID)
	assert.Equal(t, "Player2", b.Name)
}

func TestIDsAreNeverReused(t *testing.T) {
	r := NewRegistry(1024, 2)
	a, _, _ := r.EnsurePlayer(ep("10.0.0.1:1"), &protocol.JoinRequest{}, t0)
	_, ok := r.Remove(a.ID)
	require.True(t, ok)

	b, created, err := r.EnsurePlayer(ep("10.0.0.1:1"), &protocol.JoinRequest{}, t0)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, ecs.PlayerID(2), b.ID)
}

func TestIDSpaceExhausted(t *testing.T) {
	r := NewRegistry(3, 1)
	_, _, err := r.EnsurePlayer(ep("10.0.0.1:1"), &protocol.JoinRequest{}, t0)
	require.NoError(t, err)
	_, _, err = r.EnsurePlayer(ep("10.0.0.1:2"), &protocol.JoinRequest{}, t0)
	require.NoError(t, err)
	_, _, err = r.EnsurePlayer(ep("10.0.0.1:3"), &protocol.JoinRequest{}, t0)
	require.ErrorIs(t, err, ErrFull)
}

func TestTeamsBalance(t *testing.T) {
	r := NewRegistry(1024, 2)
	var teams []uint8
	for _, addr := range []string{"10.0.0.1:1", "10.0.0.1:2", "10.0.0.1:3", "10.0.0.1:4"} {
		p, _, err := r.EnsurePlayer(ep(addr), &protocol.JoinRequest{}, t0)
		require.NoError(t, err)
		teams = append(teams, p.Team)
	}
	assert.Equal(t, []uint8{0, 1, 0, 1}, teams)
}

func TestLobbyMutations(t *testing.T) {
	r := NewRegistry(1024, 2)
	p, _, _ := r.EnsurePlayer(ep("10.0.0.1:1"), &protocol.JoinRequest{Name: "Lina"}, t0)

	require.NoError(t, r.UpdateHero(p.ID, "ranger"))
	require.NoError(t, r.SetReady(p.ID, true))
	require.NoError(t, r.SetTeam(p.ID, 1))
	require.Error(t, r.SetTeam(p.ID, 2))
	require.ErrorIs(t, r.SetReady(99, true), ErrNotFound)

	assert.Equal(t, "ranger", r.HeroID(p.ID))
	assert.Equal(t, "Lina", r.PlayerName(p.ID))
	assert.Equal(t, uint8(1), r.Team(p.ID))
	assert.Equal(t, "", r.HeroID(99))

	assert.Equal(t, []protocol.LobbyPlayer{
		{PlayerID: 1, Name: "Lina", HeroID: "ranger", Ready: true, Team: 1},
	}, r.LobbyInfo())
}

func TestRemoveDropsEndpoint(t *testing.T) {
	r := NewRegistry(1024, 2)
	p, _, _ := r.EnsurePlayer(ep("10.0.0.1:1"), &protocol.JoinRequest{}, t0)
	r.Remove(p.ID)
	_, ok := r.Lookup(ep("10.0.0.1:1"))
	assert.False(t, ok)
	_, ok = r.Endpoint(p.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestIdle(t *testing.T) {
	r := NewRegistry(1024, 2)
	a, _, _ := r.EnsurePlayer(ep("10.0.0.1:1"), &protocol.JoinRequest{}, t0)
	b, _, _ := r.EnsurePlayer(ep("10.0.0.1:2"), &protocol.JoinRequest{}, t0)
	r.Touch(b.Endpoint, t0.Add(10*time.Second))

	idle := r.Idle(t0.Add(12*time.Second), 5*time.Second)
	assert.Equal(t, []ecs.PlayerID{a.ID}, idle)
	assert.Nil(t, r.Idle(t0.Add(time.Hour), 0))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "Lina", NormalizeName("  Ｌｉｎａ\t"))
	assert.Equal(t, "ab", NormalizeName("a\x00b"))
	assert.Equal(t, "abcdefghijklmnop", NormalizeName("abcdefghijklmnopqrstuvwxyz"))
	assert.Equal(t, "", NormalizeName("   "))
}
