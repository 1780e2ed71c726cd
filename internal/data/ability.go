package data

import (
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

var ErrUnknownKind = errors.New("unknown content kind")

// Ability kinds.
const (
	AbilityProjectile = "projectile"
	AbilityMelee      = "melee"
	AbilityArea       = "area"
	AbilitySelf       = "self"
	AbilityTarget     = "target"
)

// AbilityInfo holds one ability's balance data.
type AbilityInfo struct {
	ID               string
	Name             string
	Kind             string
	Range            float64  // max distance from caster to target point
	CastTime         float64  // seconds; 0 = instant
	Cooldown         float64  // seconds
	MoveInterrupts   bool     // a move order cancels the cast
	RootWhileCasting bool     // the caster cannot move while casting
	Blocking         bool     // no other cast may start while this one runs
	Effects          []string // applied to each hit target
	SelfEffects      []string // applied to the caster on commit
	Speed            float64  // projectile speed
	Radius           float64  // body radius of the spawned entity
	Lifetime         float64  // seconds the spawned entity lives
	MaxHits          int      // 0 = unlimited
	Offset           float64  // spawn distance in front of the caster
	Strategy         string   // movement strategy of the spawned entity
}

// AbilityTable holds all abilities indexed by ID.
type AbilityTable struct {
	abilities map[string]*AbilityInfo
}

// Get returns an ability by ID, or nil if not found.
func (t *AbilityTable) Get(id string) *AbilityInfo {
	return t.abilities[id]
}

func (t *AbilityTable) Count() int {
	return len(t.abilities)
}

// All returns every ability ordered by ID.
func (t *AbilityTable) All() []*AbilityInfo {
	out := make([]*AbilityInfo, 0, len(t.abilities))
	for _, a := range t.abilities {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --- YAML loading ---

type abilityEntry struct {
	ID               string   `yaml:"id"`
	Name             string   `yaml:"name"`
	Kind             string   `yaml:"kind"`
	Range            float64  `yaml:"range"`
	CastTime         float64  `yaml:"cast_time"`
	Cooldown         float64  `yaml:"cooldown"`
	MoveInterrupts   bool     `yaml:"move_interrupts"`
	RootWhileCasting bool     `yaml:"root_while_casting"`
	Blocking         bool     `yaml:"blocking"`
	Effects          []string `yaml:"effects"`
	SelfEffects      []string `yaml:"self_effects"`
	Speed            float64  `yaml:"speed"`
	Radius           float64  `yaml:"radius"`
	Lifetime         float64  `yaml:"lifetime"`
	MaxHits          int      `yaml:"max_hits"`
	Offset           float64  `yaml:"offset"`
	Strategy         string   `yaml:"strategy"`
}

type abilityListFile struct {
	Abilities []abilityEntry `yaml:"abilities"`
}

// ParseAbilityTable decodes abilities.yaml content.
func ParseAbilityTable(raw []byte) (*AbilityTable, error) {
	var f abilityListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse abilities: %w", err)
	}
	t := &AbilityTable{abilities: make(map[string]*AbilityInfo, len(f.Abilities))}
	for i := range f.Abilities {
		e := &f.Abilities[i]
		if e.ID == "" {
			return nil, fmt.Errorf("ability #%d: missing id", i)
		}
		if _, dup := t.abilities[e.ID]; dup {
			return nil, fmt.Errorf("ability %q: duplicate id", e.ID)
		}
		switch e.Kind {
		case AbilityProjectile, AbilityMelee, AbilityArea, AbilitySelf, AbilityTarget:
		default:
			return nil, fmt.Errorf("ability %q kind %q: %w", e.ID, e.Kind, ErrUnknownKind)
		}
		t.abilities[e.ID] = &AbilityInfo{
			ID:               e.ID,
			Name:             e.Name,
			Kind:             e.Kind,
			Range:            e.Range,
			CastTime:         e.CastTime,
			Cooldown:         e.Cooldown,
			MoveInterrupts:   e.MoveInterrupts,
			RootWhileCasting: e.RootWhileCasting,
			Blocking:         e.Blocking,
			Effects:          e.Effects,
			SelfEffects:      e.SelfEffects,
			Speed:            e.Speed,
			Radius:           e.Radius,
			Lifetime:         e.Lifetime,
			MaxHits:          e.MaxHits,
			Offset:           e.Offset,
			Strategy:         e.Strategy,
		}
	}
	return t, nil
}
