package session

import (
	"errors"
	"fmt"
	"net/netip"
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/l1jgo/arena/internal/core/ecs"
	"github.com/l1jgo/arena/internal/net/protocol"
)

var (
	ErrNotFound = errors.New("player not found")
	ErrFull     = errors.New("player id space exhausted")
)

// MaxNameRunes caps display names after normalization.
const MaxNameRunes = 16

// Player is one connected endpoint's session and lobby state.
type Player struct {
	ID       ecs.PlayerID
	Endpoint netip.AddrPort
	Name     string
	HeroID   string // selected hero archetype
	Ready    bool
	Team     uint8
	JoinedAt time.Time
	LastSeen time.Time
	LastSeq  uint32
}

// Registry maps transport endpoints to stable player ids. Accessed only
// from the game loop goroutine, no locks needed.
type Registry struct {
	byEndpoint map[netip.AddrPort]*Player
	byID       map[ecs.PlayerID]*Player
	nextID     ecs.PlayerID
	limit      ecs.PlayerID
	teamCount  int
}

// NewRegistry creates a registry assigning ids in [1, limit). limit is the
// reserved entity id boundary so that a hero's entity id can equal its
// player id.
func NewRegistry(limit uint32, teamCount int) *Registry {
	if teamCount < 1 {
		teamCount = 1
	}
	return &Registry{
		byEndpoint: make(map[netip.AddrPort]*Player),
		byID:       make(map[ecs.PlayerID]*Player),
		nextID:     1,
		limit:      ecs.PlayerID(limit),
		teamCount:  teamCount,
	}
}

// EnsurePlayer returns the player bound to endpoint, creating one from req
// if the endpoint is new. The second result reports creation. Ids are
// sequential from 1 and never reused.
func (r *Registry) EnsurePlayer(endpoint netip.AddrPort, req *protocol.JoinRequest, now time.Time) (*Player, bool, error) {
	if p, ok := r.byEndpoint[endpoint]; ok {
		p.LastSeen = now
		return p, false, nil
	}
	if r.limit > 0 && r.nextID >= r.limit {
		return nil, false, fmt.Errorf("join from %s: %w", endpoint, ErrFull)
	}
	id := r.nextID
	r.nextID++

	p := &Player{
		ID:       id,
		Endpoint: endpoint,
		Name:     NormalizeName(req.Name),
		HeroID:   req.HeroID,
		Team:     r.pickTeam(),
		JoinedAt: now,
		LastSeen: now,
	}
	if p.Name == "" {
		p.Name = fmt.Sprintf("Player%d", id)
	}
	r.byEndpoint[endpoint] = p
	r.byID[id] = p
	return p, true, nil
}

// pickTeam puts a new player on the smallest team, lowest id first.
func (r *Registry) pickTeam() uint8 {
	counts := make([]int, r.teamCount)
	for _, p := range r.byID {
		if int(p.Team) < r.teamCount {
			counts[p.Team]++
		}
	}
	best := 0
	for t := 1; t < r.teamCount; t++ {
		if counts[t] < counts[best] {
			best = t
		}
	}
	return uint8(best)
}

// Lookup resolves the sender of a datagram.
func (r *Registry) Lookup(endpoint netip.AddrPort) (*Player, bool) {
	p, ok := r.byEndpoint[endpoint]
	return p, ok
}

func (r *Registry) Get(id ecs.PlayerID) (*Player, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// Touch records traffic from endpoint for idle detection.
func (r *Registry) Touch(endpoint netip.AddrPort, now time.Time) {
	if p, ok := r.byEndpoint[endpoint]; ok {
		p.LastSeen = now
	}
}

// HeroID returns the player's selected hero archetype, or "".
func (r *Registry) HeroID(id ecs.PlayerID) string {
	if p, ok := r.byID[id]; ok {
		return p.HeroID
	}
	return ""
}

// PlayerName returns the display name, or "".
func (r *Registry) PlayerName(id ecs.PlayerID) string {
	if p, ok := r.byID[id]; ok {
		return p.Name
	}
	return ""
}

// Team returns the player's team, or 0 when unknown.
func (r *Registry) Team(id ecs.PlayerID) uint8 {
	if p, ok := r.byID[id]; ok {
		return p.Team
	}
	return 0
}

// Endpoint returns the transport address of a connected player.
func (r *Registry) Endpoint(id ecs.PlayerID) (netip.AddrPort, bool) {
	if p, ok := r.byID[id]; ok {
		return p.Endpoint, true
	}
	return netip.AddrPort{}, false
}

func (r *Registry) UpdateHero(id ecs.PlayerID, heroID string) error {
	p, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("update hero %d: %w", id, ErrNotFound)
	}
	p.HeroID = heroID
	return nil
}

func (r *Registry) SetReady(id ecs.PlayerID, ready bool) error {
	p, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("set ready %d: %w", id, ErrNotFound)
	}
	p.Ready = ready
	return nil
}

// SetTeam moves a player to team. Out-of-range teams are rejected.
func (r *Registry) SetTeam(id ecs.PlayerID, team uint8) error {
	p, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("set team %d: %w", id, ErrNotFound)
	}
	if int(team) >= r.teamCount {
		return fmt.Errorf("set team %d: team %d of %d", id, team, r.teamCount)
	}
	p.Team = team
	return nil
}

// Remove forgets a player and its endpoint mapping. The id is not reused.
func (r *Registry) Remove(id ecs.PlayerID) (*Player, bool) {
	p, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	delete(r.byID, id)
	delete(r.byEndpoint, p.Endpoint)
	return p, true
}

// Idle returns the players that have been silent for longer than timeout.
func (r *Registry) Idle(now time.Time, timeout time.Duration) []ecs.PlayerID {
	if timeout <= 0 {
		return nil
	}
	var out []ecs.PlayerID
	for id, p := range r.byID {
		if now.Sub(p.LastSeen) > timeout {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Players returns every connected player ordered by id.
func (r *Registry) Players() []*Player {
	out := make([]*Player, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) Len() int { return len(r.byID) }

// LobbyInfo snapshots lobby state for broadcast.
func (r *Registry) LobbyInfo() []protocol.LobbyPlayer {
	players := r.Players()
	out := make([]protocol.LobbyPlayer, 0, len(players))
	for _, p := range players {
		out = append(out, protocol.LobbyPlayer{
			PlayerID: uint32(p.ID),
			Name:     p.Name,
			HeroID:   p.HeroID,
			Ready:    p.Ready,
			Team:     p.Team,
		})
	}
	return out
}

// NormalizeName applies NFKC, strips control characters and surrounding
// space, and truncates to MaxNameRunes.
func NormalizeName(name string) string {
	name = norm.NFKC.String(name)
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	runes := []rune(name)
	if len(runes) > MaxNameRunes {
		name = strings.TrimSpace(string(runes[:MaxNameRunes]))
	}
	return name
}
