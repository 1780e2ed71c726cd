package data

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Effect kinds.
const (
	EffectDamage         = "damage"
	EffectDamageOverTime = "damage_over_time"
	EffectHeal           = "heal"
	EffectHealOverTime   = "heal_over_time"
	EffectStun           = "stun"
	EffectRoot           = "root"
	EffectSilence        = "silence"
	EffectSlow           = "slow"
	EffectDash           = "dash"
	EffectFlash          = "flash"
)

// EffectInfo holds one status effect template.
type EffectInfo struct {
	ID       string
	Name     string
	Kind     string
	Duration float64 // seconds; 0 still runs one start/tick cycle
	Amount   float64 // instant amount, or total for over-time kinds
	Interval float64 // seconds between over-time pulses
	Speed    float64 // dash speed
	Distance float64 // flash distance
	Factor   float64 // slow multiplier applied to speed
}

// EffectTable holds all effects indexed by ID.
type EffectTable struct {
	effects map[string]*EffectInfo
}

// Get returns an effect by ID, or nil if not found.
func (t *EffectTable) Get(id string) *EffectInfo {
	return t.effects[id]
}

func (t *EffectTable) Count() int {
	return len(t.effects)
}

// All returns every effect ordered by ID.
func (t *EffectTable) All() []*EffectInfo {
	out := make([]*EffectInfo, 0, len(t.effects))
	for _, e := range t.effects {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --- YAML loading ---

type effectEntry struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"name"`
	Kind     string  `yaml:"kind"`
	Duration float64 `yaml:"duration"`
	Amount   float64 `yaml:"amount"`
	Interval float64 `yaml:"interval"`
	Speed    float64 `yaml:"speed"`
	Distance float64 `yaml:"distance"`
	Factor   float64 `yaml:"factor"`
}

type effectListFile struct {
	Effects []effectEntry `yaml:"effects"`
}

// ParseEffectTable decodes effects.yaml content.
func ParseEffectTable(raw []byte) (*EffectTable, error) {
	var f effectListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse effects: %w", err)
	}
	t := &EffectTable{effects: make(map[string]*EffectInfo, len(f.Effects))}
	for i := range f.Effects {
		e := &f.Effects[i]
		if e.ID == "" {
			return nil, fmt.Errorf("effect #%d: missing id", i)
		}
		if _, dup := t.effects[e.ID]; dup {
			return nil, fmt.Errorf("effect %q: duplicate id", e.ID)
		}
		switch e.Kind {
		case EffectDamage, EffectDamageOverTime, EffectHeal, EffectHealOverTime,
			EffectStun, EffectRoot, EffectSilence, EffectSlow, EffectDash, EffectFlash:
		default:
			return nil, fmt.Errorf("effect %q kind %q: %w", e.ID, e.Kind, ErrUnknownKind)
		}
		if e.Duration < 0 {
			return nil, fmt.Errorf("effect %q: negative duration", e.ID)
		}
		info := &EffectInfo{
			ID:       e.ID,
			Name:     e.Name,
			Kind:     e.Kind,
			Duration: e.Duration,
			Amount:   e.Amount,
			Interval: e.Interval,
			Speed:    e.Speed,
			Distance: e.Distance,
			Factor:   e.Factor,
		}
		if info.Kind == EffectSlow && info.Factor <= 0 {
			info.Factor = 0.5
		}
		t.effects[e.ID] = info
	}
	return t, nil
}
