package data

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
)

// Content files, in fingerprint order.
const (
	AbilitiesFile = "abilities.yaml"
	EffectsFile   = "effects.yaml"
	HeroesFile    = "heroes.yaml"
	NeutralsFile  = "neutrals.yaml"
	ArenaFile     = "arena.yaml"
)

var bundleFiles = []string{AbilitiesFile, EffectsFile, HeroesFile, NeutralsFile, ArenaFile}

// Bundle is every content table loaded from one directory.
type Bundle struct {
	Abilities *AbilityTable
	Effects   *EffectTable
	Heroes    *HeroTable
	Arena     *ArenaInfo

	fingerprint uint64
}

// LoadBundle reads and parses the content directory.
func LoadBundle(dir string) (*Bundle, error) {
	raw := make(map[string][]byte, len(bundleFiles))
	for _, name := range bundleFiles {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		raw[name] = b
	}
	return ParseBundle(raw)
}

// ParseBundle parses content from in-memory files keyed by file name.
func ParseBundle(raw map[string][]byte) (*Bundle, error) {
	abilities, err := ParseAbilityTable(raw[AbilitiesFile])
	if err != nil {
		return nil, err
	}
	effects, err := ParseEffectTable(raw[EffectsFile])
	if err != nil {
		return nil, err
	}
	heroes, err := ParseHeroTable(raw[HeroesFile], raw[NeutralsFile])
	if err != nil {
		return nil, err
	}
	arena, err := ParseArena(raw[ArenaFile])
	if err != nil {
		return nil, err
	}

	d := xxhash.New()
	for _, name := range bundleFiles {
		d.WriteString(name)
		d.Write(raw[name])
	}
	return &Bundle{
		Abilities:   abilities,
		Effects:     effects,
		Heroes:      heroes,
		Arena:       arena,
		fingerprint: d.Sum64(),
	}, nil
}

// Fingerprint is an xxhash64 over the raw content files. Clients compare
// it against their own copy on join.
func (b *Bundle) Fingerprint() uint64 {
	return b.fingerprint
}
