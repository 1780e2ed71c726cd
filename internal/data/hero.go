package data

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// HeroInfo is a playable archetype. Abilities binds input slots 0-3.
type HeroInfo struct {
	ID             string
	Name           string
	MaxHP          float64
	Speed          float64
	Radius         float64
	Damage         float64
	AttackRange    float64
	AttackCooldown float64
	Abilities      []string
	Strategy       string
}

// NeutralInfo is a creep archetype driven by the AI system.
type NeutralInfo struct {
	ID             string
	Name           string
	MaxHP          float64
	Speed          float64
	Radius         float64
	Damage         float64
	AttackRange    float64
	AttackCooldown float64
	AggroRadius    float64
	LeashRadius    float64
	RepathInterval float64
	Attack         string // ability used for basic attacks; empty hits with Damage directly
	Strategy       string
}

// HeroTable holds hero and neutral archetypes.
type HeroTable struct {
	heroes   map[string]*HeroInfo
	neutrals map[string]*NeutralInfo
}

// Hero returns a hero archetype, or nil if not found.
func (t *HeroTable) Hero(id string) *HeroInfo {
	return t.heroes[id]
}

// Neutral returns a neutral archetype, or nil if not found.
func (t *HeroTable) Neutral(id string) *NeutralInfo {
	return t.neutrals[id]
}

func (t *HeroTable) HeroCount() int    { return len(t.heroes) }
func (t *HeroTable) NeutralCount() int { return len(t.neutrals) }

// Heroes returns every hero ordered by ID.
func (t *HeroTable) Heroes() []*HeroInfo {
	out := make([]*HeroInfo, 0, len(t.heroes))
	for _, h := range t.heroes {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Neutrals returns every neutral ordered by ID.
func (t *HeroTable) Neutrals() []*NeutralInfo {
	out := make([]*NeutralInfo, 0, len(t.neutrals))
	for _, n := range t.neutrals {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --- YAML loading ---

type unitEntry struct {
	ID             string   `yaml:"id"`
	Name           string   `yaml:"name"`
	MaxHP          float64  `yaml:"max_hp"`
	Speed          float64  `yaml:"speed"`
	Radius         float64  `yaml:"radius"`
	Damage         float64  `yaml:"damage"`
	AttackRange    float64  `yaml:"attack_range"`
	AttackCooldown float64  `yaml:"attack_cooldown"`
	Abilities      []string `yaml:"abilities"`
	Strategy       string   `yaml:"strategy"`
	AggroRadius    float64  `yaml:"aggro_radius"`
	LeashRadius    float64  `yaml:"leash_radius"`
	RepathInterval float64  `yaml:"repath_interval"`
	Attack         string   `yaml:"attack"`
}

type heroListFile struct {
	Heroes []unitEntry `yaml:"heroes"`
}

type neutralListFile struct {
	Neutrals []unitEntry `yaml:"neutrals"`
}

// MaxAbilitySlots is the number of input keys a hero binds.
const MaxAbilitySlots = 4

// ParseHeroTable decodes heroes.yaml and neutrals.yaml content.
func ParseHeroTable(heroesRaw, neutralsRaw []byte) (*HeroTable, error) {
	var hf heroListFile
	if err := yaml.Unmarshal(heroesRaw, &hf); err != nil {
		return nil, fmt.Errorf("parse heroes: %w", err)
	}
	var nf neutralListFile
	if err := yaml.Unmarshal(neutralsRaw, &nf); err != nil {
		return nil, fmt.Errorf("parse neutrals: %w", err)
	}

	t := &HeroTable{
		heroes:   make(map[string]*HeroInfo, len(hf.Heroes)),
		neutrals: make(map[string]*NeutralInfo, len(nf.Neutrals)),
	}
	for i := range hf.Heroes {
		e := &hf.Heroes[i]
		if err := checkUnit("hero", i, e); err != nil {
			return nil, err
		}
		if _, dup := t.heroes[e.ID]; dup {
			return nil, fmt.Errorf("hero %q: duplicate id", e.ID)
		}
		if len(e.Abilities) > MaxAbilitySlots {
			return nil, fmt.Errorf("hero %q: %d abilities, max %d", e.ID, len(e.Abilities), MaxAbilitySlots)
		}
		t.heroes[e.ID] = &HeroInfo{
			ID:             e.ID,
			Name:           e.Name,
			MaxHP:          e.MaxHP,
			Speed:          e.Speed,
			Radius:         e.Radius,
			Damage:         e.Damage,
			AttackRange:    e.AttackRange,
			AttackCooldown: e.AttackCooldown,
			Abilities:      e.Abilities,
			Strategy:       e.Strategy,
		}
	}
	for i := range nf.Neutrals {
		e := &nf.Neutrals[i]
		if err := checkUnit("neutral", i, e); err != nil {
			return nil, err
		}
		if _, dup := t.neutrals[e.ID]; dup {
			return nil, fmt.Errorf("neutral %q: duplicate id", e.ID)
		}
		n := &NeutralInfo{
			ID:             e.ID,
			Name:           e.Name,
			MaxHP:          e.MaxHP,
			Speed:          e.Speed,
			Radius:         e.Radius,
			Damage:         e.Damage,
			AttackRange:    e.AttackRange,
			AttackCooldown: e.AttackCooldown,
			AggroRadius:    e.AggroRadius,
			LeashRadius:    e.LeashRadius,
			RepathInterval: e.RepathInterval,
			Attack:         e.Attack,
			Strategy:       e.Strategy,
		}
		if n.LeashRadius < n.AggroRadius {
			n.LeashRadius = n.AggroRadius
		}
		if n.RepathInterval <= 0 {
			n.RepathInterval = 0.5
		}
		t.neutrals[e.ID] = n
	}
	return t, nil
}

func checkUnit(what string, i int, e *unitEntry) error {
	if e.ID == "" {
		return fmt.Errorf("%s #%d: missing id", what, i)
	}
	if e.MaxHP <= 0 {
		return fmt.Errorf("%s %q: max_hp must be positive", what, e.ID)
	}
	return nil
}
