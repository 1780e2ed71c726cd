package content

import (
	"errors"
	"fmt"

	"github.com/l1jgo/arena/internal/data"
)

var ErrMissingRef = errors.New("missing content reference")

func errUnknownAbilityKind(info *data.AbilityInfo) error {
	return fmt.Errorf("ability %q kind %q: %w", info.ID, info.Kind, data.ErrUnknownKind)
}

func errUnknownEffectKind(info *data.EffectInfo) error {
	return fmt.Errorf("effect %q kind %q: %w", info.ID, info.Kind, data.ErrUnknownKind)
}

// Library is the loaded, validated content set. It is read-only after
// NewLibrary returns and may be shared freely.
type Library struct {
	bundle    *data.Bundle
	abilities map[string]Ability
	effects   map[string]Effect
}

// NewLibrary builds the ability and effect variants and checks every
// cross reference: hero abilities, neutral attacks, ability effects and
// camp neutrals must all exist.
func NewLibrary(b *data.Bundle) (*Library, error) {
	lib := &Library{
		bundle:    b,
		abilities: make(map[string]Ability, b.Abilities.Count()),
		effects:   make(map[string]Effect, b.Effects.Count()),
	}
	for _, info := range b.Effects.All() {
		e, err := newEffect(info)
		if err != nil {
			return nil, err
		}
		lib.effects[info.ID] = e
	}
	for _, info := range b.Abilities.All() {
		for _, id := range info.Effects {
			if _, ok := lib.effects[id]; !ok {
				return nil, fmt.Errorf("ability %q effect %q: %w", info.ID, id, ErrMissingRef)
			}
		}
		for _, id := range info.SelfEffects {
			if _, ok := lib.effects[id]; !ok {
				return nil, fmt.Errorf("ability %q self effect %q: %w", info.ID, id, ErrMissingRef)
			}
		}
		a, err := newAbility(info)
		if err != nil {
			return nil, err
		}
		lib.abilities[info.ID] = a
	}
	for _, h := range b.Heroes.Heroes() {
		for _, id := range h.Abilities {
			if _, ok := lib.abilities[id]; !ok && id != "" {
				return nil, fmt.Errorf("hero %q ability %q: %w", h.ID, id, ErrMissingRef)
			}
		}
	}
	for _, n := range b.Heroes.Neutrals() {
		if _, ok := lib.abilities[n.Attack]; !ok && n.Attack != "" {
			return nil, fmt.Errorf("neutral %q attack %q: %w", n.ID, n.Attack, ErrMissingRef)
		}
	}
	for _, c := range b.Arena.Camps {
		if b.Heroes.Neutral(c.Neutral) == nil {
			return nil, fmt.Errorf("camp neutral %q: %w", c.Neutral, ErrMissingRef)
		}
	}
	return lib, nil
}

func (l *Library) Ability(id string) (Ability, bool) {
	a, ok := l.abilities[id]
	return a, ok
}

func (l *Library) Effect(id string) (Effect, bool) {
	e, ok := l.effects[id]
	return e, ok
}

// Hero returns a hero archetype, or nil.
func (l *Library) Hero(id string) *data.HeroInfo { return l.bundle.Heroes.Hero(id) }

// Neutral returns a neutral archetype, or nil.
func (l *Library) Neutral(id string) *data.NeutralInfo { return l.bundle.Heroes.Neutral(id) }

func (l *Library) Heroes() []*data.HeroInfo { return l.bundle.Heroes.Heroes() }

func (l *Library) Arena() *data.ArenaInfo { return l.bundle.Arena }

func (l *Library) Fingerprint() uint64 { return l.bundle.Fingerprint() }

func (l *Library) AbilityCount() int { return len(l.abilities) }

func (l *Library) EffectCount() int { return len(l.effects) }
